package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/halvard/stockledger/internal/asset/domain"
	"github.com/halvard/stockledger/internal/asset/usecase/command"
	"github.com/halvard/stockledger/internal/asset/usecase/query"
	catalogdomain "github.com/halvard/stockledger/internal/catalog/domain"
	locationdomain "github.com/halvard/stockledger/internal/location/domain"
	stockdomain "github.com/halvard/stockledger/internal/stock/domain"
	"github.com/halvard/stockledger/kafka"
	"github.com/halvard/stockledger/pkg/logger"
)

// AssetHandler handles HTTP requests for assets and installation edges
type AssetHandler struct {
	// Command handlers
	createHandler   *command.CreateAssetHandler
	relocateHandler *command.RelocateAssetHandler
	updateHandler   *command.UpdateAssetHandler
	deleteHandler   *command.DeleteAssetHandler

	// Query handlers
	getHandler         *query.GetAssetHandler
	listHandler        *query.ListAssetsHandler
	byContainerHandler *query.ByContainerHandler
	warrantyHandler    *query.UnderWarrantyHandler
	historyHandler     *query.EdgeHistoryHandler

	kafkaPublisher *kafka.Publisher
}

// NewAssetHandler creates a new asset handler. kafkaPublisher may be nil
// when event publishing is disabled.
func NewAssetHandler(
	assets domain.AssetRepository,
	edges domain.EdgeRepository,
	catalog catalogdomain.CatalogRepository,
	locations locationdomain.LocationRepository,
	movements stockdomain.MovementRepository,
	kafkaPublisher *kafka.Publisher,
) *AssetHandler {
	return &AssetHandler{
		createHandler:      command.NewCreateAssetHandler(assets, edges, catalog, locations, movements),
		relocateHandler:    command.NewRelocateAssetHandler(assets, edges, locations, movements),
		updateHandler:      command.NewUpdateAssetHandler(assets),
		deleteHandler:      command.NewDeleteAssetHandler(assets, edges),
		getHandler:         query.NewGetAssetHandler(assets),
		listHandler:        query.NewListAssetsHandler(assets),
		byContainerHandler: query.NewByContainerHandler(assets, edges),
		warrantyHandler:    query.NewUnderWarrantyHandler(assets),
		historyHandler:     query.NewEdgeHistoryHandler(edges),
		kafkaPublisher:     kafkaPublisher,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateAsset handles POST /api/assets
func (h *AssetHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID        uint       `json:"item_id"`
		Serial        string     `json:"serial"`
		Condition     string     `json:"condition"`
		LocationID    *uint      `json:"location_id"`
		PurchaseCost  string     `json:"purchase_cost"`
		PurchasedAt   *time.Time `json:"purchased_at"`
		WarrantyUntil *time.Time `json:"warranty_until"`
		Notes         string     `json:"notes"`
		Actor         string     `json:"actor"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	cost := decimal.Zero
	if req.PurchaseCost != "" {
		parsed, err := decimal.NewFromString(req.PurchaseCost)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid purchase cost"})
			return
		}
		cost = parsed
	}

	asset, err := h.createHandler.Handle(command.CreateAssetCommand{
		ItemID:        req.ItemID,
		Serial:        req.Serial,
		Condition:     req.Condition,
		LocationID:    req.LocationID,
		PurchaseCost:  cost,
		PurchasedAt:   req.PurchasedAt,
		WarrantyUntil: req.WarrantyUntil,
		Notes:         req.Notes,
		Actor:         req.Actor,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Uint("item_id", req.ItemID).Msg("Failed to create asset")
		respondJSON(w, statusFor(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Asset created successfully",
		Data:    asset,
	})
}

// RelocateAsset handles POST /api/assets/{id}/relocate
func (h *AssetHandler) RelocateAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req struct {
		LocationID  *uint      `json:"location_id"`
		EffectiveAt *time.Time `json:"effective_at"`
		Reason      string     `json:"reason"`
		Actor       string     `json:"actor"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	result, err := h.relocateHandler.Handle(command.RelocateAssetCommand{
		AssetID:       id,
		NewLocationID: req.LocationID,
		EffectiveAt:   req.EffectiveAt,
		Reason:        req.Reason,
		Actor:         req.Actor,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Uint("asset_id", id).Msg("Failed to relocate asset")
		respondJSON(w, statusFor(err), Response{Success: false, Error: err.Error()})
		return
	}

	// Publish asset relocated event to Kafka (with tracing)
	if h.kafkaPublisher != nil && result.Movement != nil {
		event := kafka.AssetRelocatedEvent{
			AssetID:        result.Asset.ID,
			FromLocationID: result.Movement.FromLocationID,
			ToLocationID:   result.Movement.ToLocationID,
			Actor:          req.Actor,
		}
		if err := h.kafkaPublisher.PublishAssetRelocated(r.Context(), event); err != nil {
			logger.Logger.Warn().Err(err).Uint("asset_id", id).
				Msg("Failed to publish asset relocated event")
		}
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Asset relocated",
		Data:    result,
	})
}

// UpdateAsset handles PATCH /api/assets/{id}
func (h *AssetHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req struct {
		Condition     string     `json:"condition"`
		Status        string     `json:"status"`
		Serial        string     `json:"serial"`
		Notes         string     `json:"notes"`
		WarrantyUntil *time.Time `json:"warranty_until"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	asset, err := h.updateHandler.Handle(command.UpdateAssetCommand{
		ID:            id,
		Condition:     req.Condition,
		Status:        req.Status,
		Serial:        req.Serial,
		Notes:         req.Notes,
		WarrantyUntil: req.WarrantyUntil,
	})
	if err != nil {
		respondJSON(w, statusFor(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Asset updated", Data: asset})
}

// DeleteAsset handles DELETE /api/assets/{id}
func (h *AssetHandler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.deleteHandler.Handle(command.DeleteAssetCommand{ID: id})
	if err != nil {
		logger.Logger.Error().Err(err).Uint("asset_id", id).Msg("Failed to delete asset")
		respondJSON(w, statusFor(err), Response{Success: false, Error: err.Error()})
		return
	}

	if !found {
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Asset not found"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Asset deleted"})
}

// GetAsset handles GET /api/assets/{id}
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	asset, err := h.getHandler.Handle(query.GetAssetQuery{ID: id})
	if err != nil {
		respondJSON(w, statusFor(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: asset})
}

// ListAssets handles GET /api/assets
func (h *AssetHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	assets, err := h.listHandler.Handle(query.ListAssetsQuery{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("q"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list assets")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list assets"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: assets})
}

// ListByContainer handles GET /api/containers/{id}/assets
func (h *AssetHandler) ListByContainer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var at time.Time
	if v := r.URL.Query().Get("at"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid timestamp"})
			return
		}
		at = parsed
	}

	assets, err := h.byContainerHandler.Handle(query.ByContainerQuery{ContainerID: id, At: at})
	if err != nil {
		respondJSON(w, statusFor(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: assets})
}

// ListUnderWarranty handles GET /api/assets/warranty
func (h *AssetHandler) ListUnderWarranty(w http.ResponseWriter, r *http.Request) {
	var asOf time.Time
	if v := r.URL.Query().Get("as_of"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid timestamp"})
			return
		}
		asOf = parsed
	}

	assets, err := h.warrantyHandler.Handle(query.UnderWarrantyQuery{AsOf: asOf})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list assets under warranty")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list assets"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: assets})
}

// GetHistory handles GET /api/assets/{id}/history
func (h *AssetHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	edges, err := h.historyHandler.Handle(query.EdgeHistoryQuery{AssetID: id})
	if err != nil {
		respondJSON(w, statusFor(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: edges})
}

// RegisterRoutes registers all asset routes
func (h *AssetHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/assets", h.ListAssets).Methods("GET")
	router.HandleFunc("/api/assets", h.CreateAsset).Methods("POST")
	router.HandleFunc("/api/assets/warranty", h.ListUnderWarranty).Methods("GET")
	router.HandleFunc("/api/assets/{id}", h.GetAsset).Methods("GET")
	router.HandleFunc("/api/assets/{id}", h.UpdateAsset).Methods("PATCH")
	router.HandleFunc("/api/assets/{id}", h.DeleteAsset).Methods("DELETE")
	router.HandleFunc("/api/assets/{id}/relocate", h.RelocateAsset).Methods("POST")
	router.HandleFunc("/api/assets/{id}/history", h.GetHistory).Methods("GET")
	router.HandleFunc("/api/containers/{id}/assets", h.ListByContainer).Methods("GET")
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, locationdomain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
