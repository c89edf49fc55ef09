package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/halvard/stockledger/internal/catalog/domain"
	"github.com/halvard/stockledger/internal/catalog/usecase/command"
	"github.com/halvard/stockledger/internal/catalog/usecase/query"
	"github.com/halvard/stockledger/pkg/logger"
)

// CatalogHandler handles HTTP requests for the SKU registry
type CatalogHandler struct {
	resolveHandler *command.ResolveSkuHandler
	getHandler     *query.GetSkuHandler
	listHandler    *query.ListSkusHandler
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(repo domain.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{
		resolveHandler: command.NewResolveSkuHandler(repo),
		getHandler:     query.NewGetSkuHandler(repo),
		listHandler:    query.NewListSkusHandler(repo),
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ResolveSku handles POST /api/catalog/resolve
func (h *CatalogHandler) ResolveSku(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Domain     string `json:"domain"`
		Kind       string `json:"kind"`
		Name       string `json:"name"`
		Category   string `json:"category"`
		PartNumber string `json:"part_number"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	item, err := h.resolveHandler.Handle(command.ResolveSkuCommand{
		Domain:     req.Domain,
		Kind:       req.Kind,
		Name:       req.Name,
		Category:   req.Category,
		PartNumber: req.PartNumber,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Str("domain", req.Domain).Msg("Failed to resolve sku")
		respondJSON(w, statusFor(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: item})
}

// GetSku handles GET /api/catalog/{id}
func (h *CatalogHandler) GetSku(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid catalog item ID"})
		return
	}

	item, err := h.getHandler.Handle(query.GetSkuQuery{ID: uint(id)})
	if err != nil {
		respondJSON(w, statusFor(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: item})
}

// ListSkus handles GET /api/catalog
func (h *CatalogHandler) ListSkus(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	category := r.URL.Query().Get("category")

	items, err := h.listHandler.Handle(query.ListSkusQuery{
		Category: category,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list catalog items")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list catalog items"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: items})
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/catalog", h.ListSkus).Methods("GET")
	router.HandleFunc("/api/catalog/resolve", h.ResolveSku).Methods("POST")
	router.HandleFunc("/api/catalog/{id}", h.GetSku).Methods("GET")
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
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
