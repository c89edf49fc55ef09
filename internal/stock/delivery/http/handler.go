package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/halvard/stockledger/internal/stock/domain"
	"github.com/halvard/stockledger/internal/stock/usecase/command"
	"github.com/halvard/stockledger/internal/stock/usecase/query"
	"github.com/halvard/stockledger/kafka"
	"github.com/halvard/stockledger/pkg/logger"
)

// StockHandler handles HTTP requests for the stock ledger and movement log
type StockHandler struct {
	// Command handlers
	adjustHandler   *command.AdjustStockHandler
	setLevelHandler *command.SetLevelHandler
	transferHandler *command.TransferStockHandler

	// Query handlers
	getStockHandler  *query.GetStockHandler
	availableHandler *query.AvailableQuantityHandler
	movementsHandler *query.ListMovementsHandler
	lowStockHandler  *query.LowStockHandler

	stocks         domain.StockRepository
	kafkaPublisher *kafka.Publisher

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	negativeStock  prometheus.Counter
}

// NewStockHandler creates a new stock handler. kafkaPublisher may be nil
// when event publishing is disabled.
func NewStockHandler(stocks domain.StockRepository, movements domain.MovementRepository, kafkaPublisher *kafka.Publisher) *StockHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_ledger_requests_total",
			Help: "Total number of requests to the stock ledger",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stock_ledger_request_duration_seconds",
			Help:    "Duration of stock ledger requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	negativeStock := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stock_ledger_negative_balance_total",
			Help: "Number of adjustments that left a negative on-hand balance",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(negativeStock)

	return &StockHandler{
		adjustHandler:    command.NewAdjustStockHandler(stocks, movements),
		setLevelHandler:  command.NewSetLevelHandler(stocks, movements),
		transferHandler:  command.NewTransferStockHandler(stocks, movements),
		getStockHandler:  query.NewGetStockHandler(stocks),
		availableHandler: query.NewAvailableQuantityHandler(stocks),
		movementsHandler: query.NewListMovementsHandler(movements),
		lowStockHandler:  query.NewLowStockHandler(stocks),
		stocks:           stocks,
		kafkaPublisher:   kafkaPublisher,
		requestCounter:   requestCounter,
		requestLatency:   requestLatency,
		negativeStock:    negativeStock,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AdjustStock handles POST /api/stock/adjust
func (h *StockHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		ItemID        uint   `json:"item_id"`
		LocationID    uint   `json:"location_id"`
		Delta         int    `json:"delta"`
		ReservedDelta int    `json:"reserved_delta"`
		Type          string `json:"type"`
		UnitCost      string `json:"unit_cost"`
		Reason        string `json:"reason"`
		Actor         string `json:"actor"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.observe("POST", "/api/stock/adjust", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	unitCost := decimal.Zero
	if req.UnitCost != "" {
		parsed, err := decimal.NewFromString(req.UnitCost)
		if err != nil {
			h.observe("POST", "/api/stock/adjust", http.StatusBadRequest, start)
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid unit cost"})
			return
		}
		unitCost = parsed
	}

	record, movement, err := h.adjustHandler.Handle(command.AdjustStockCommand{
		ItemID:        req.ItemID,
		LocationID:    req.LocationID,
		Delta:         req.Delta,
		ReservedDelta: req.ReservedDelta,
		Type:          req.Type,
		UnitCost:      unitCost,
		Reason:        req.Reason,
		Actor:         req.Actor,
	})
	if err != nil {
		status := statusFor(err)
		logger.Logger.Error().Err(err).Uint("item_id", req.ItemID).Msg("Failed to adjust stock")
		h.observe("POST", "/api/stock/adjust", status, start)
		respondJSON(w, status, Response{Success: false, Error: err.Error()})
		return
	}

	if record.Quantity < 0 {
		h.negativeStock.Inc()
		logger.Logger.Warn().
			Uint("item_id", req.ItemID).
			Uint("location_id", req.LocationID).
			Int("quantity", record.Quantity).
			Msg("Adjustment left a negative balance")
	}

	h.publishStockAdjusted(r, record, movement, req.Actor)

	h.observe("POST", "/api/stock/adjust", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Stock adjusted",
		Data: map[string]interface{}{
			"record":   record,
			"movement": movement,
		},
	})
}

// SetLevel handles PUT /api/stock/level
func (h *StockHandler) SetLevel(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		ItemID     uint   `json:"item_id"`
		LocationID uint   `json:"location_id"`
		Quantity   int    `json:"quantity"`
		Reason     string `json:"reason"`
		Actor      string `json:"actor"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.observe("PUT", "/api/stock/level", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	record, movement, err := h.setLevelHandler.Handle(command.SetLevelCommand{
		ItemID:     req.ItemID,
		LocationID: req.LocationID,
		Quantity:   req.Quantity,
		Reason:     req.Reason,
		Actor:      req.Actor,
	})
	if err != nil {
		status := statusFor(err)
		logger.Logger.Error().Err(err).Uint("item_id", req.ItemID).Msg("Failed to set stock level")
		h.observe("PUT", "/api/stock/level", status, start)
		respondJSON(w, status, Response{Success: false, Error: err.Error()})
		return
	}

	h.publishStockAdjusted(r, record, movement, req.Actor)

	h.observe("PUT", "/api/stock/level", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Stock level set",
		Data: map[string]interface{}{
			"record":   record,
			"movement": movement,
		},
	})
}

// TransferStock handles POST /api/stock/transfer
func (h *StockHandler) TransferStock(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req struct {
		ItemID         uint   `json:"item_id"`
		FromLocationID uint   `json:"from_location_id"`
		ToLocationID   uint   `json:"to_location_id"`
		Quantity       int    `json:"quantity"`
		Reason         string `json:"reason"`
		Actor          string `json:"actor"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.observe("POST", "/api/stock/transfer", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	result, err := h.transferHandler.Handle(command.TransferStockCommand{
		ItemID:         req.ItemID,
		FromLocationID: req.FromLocationID,
		ToLocationID:   req.ToLocationID,
		Quantity:       req.Quantity,
		Reason:         req.Reason,
		Actor:          req.Actor,
	})
	if err != nil {
		status := statusFor(err)
		logger.Logger.Error().Err(err).Uint("item_id", req.ItemID).Msg("Failed to transfer stock")
		h.observe("POST", "/api/stock/transfer", status, start)
		respondJSON(w, status, Response{Success: false, Error: err.Error()})
		return
	}

	for i := range result.Movements {
		m := result.Movements[i]
		record := result.Source
		if m.Quantity > 0 {
			record = result.Destination
		}
		h.publishStockAdjusted(r, record, &m, req.Actor)
	}

	h.observe("POST", "/api/stock/transfer", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Stock transferred",
		Data:    result,
	})
}

// GetStock handles GET /api/stock/{item_id}/{location_id}
func (h *StockHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	itemID, err1 := strconv.ParseUint(vars["item_id"], 10, 32)
	locationID, err2 := strconv.ParseUint(vars["location_id"], 10, 32)
	if err1 != nil || err2 != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid item or location ID"})
		return
	}

	record, err := h.getStockHandler.Handle(query.GetStockQuery{
		ItemID:     uint(itemID),
		LocationID: uint(locationID),
	})
	if err != nil {
		respondJSON(w, statusFor(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: record})
}

// GetAvailable handles GET /api/stock/{item_id}/{location_id}/available
func (h *StockHandler) GetAvailable(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	itemID, err1 := strconv.ParseUint(vars["item_id"], 10, 32)
	locationID, err2 := strconv.ParseUint(vars["location_id"], 10, 32)
	if err1 != nil || err2 != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid item or location ID"})
		return
	}

	available, err := h.availableHandler.Handle(query.GetStockQuery{
		ItemID:     uint(itemID),
		LocationID: uint(locationID),
	})
	if err != nil {
		respondJSON(w, statusFor(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    map[string]int{"available": available},
	})
}

// ListMovements handles GET /api/movements
func (h *StockHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	itemID, _ := strconv.ParseUint(r.URL.Query().Get("item_id"), 10, 32)

	var from, to time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		from, _ = time.Parse(time.RFC3339, v)
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, _ = time.Parse(time.RFC3339, v)
	}

	movements, err := h.movementsHandler.Handle(query.ListMovementsQuery{
		Type:   r.URL.Query().Get("type"),
		ItemID: uint(itemID),
		From:   from,
		To:     to,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list movements")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list movements"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: movements})
}

// ListLowStock handles GET /api/stock/low
func (h *StockHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	records, err := h.lowStockHandler.Handle()
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list low stock")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list low stock"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: records})
}

// RegisterRoutes registers all stock routes
func (h *StockHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/stock/adjust", h.AdjustStock).Methods("POST")
	router.HandleFunc("/api/stock/transfer", h.TransferStock).Methods("POST")
	router.HandleFunc("/api/stock/level", h.SetLevel).Methods("PUT")
	router.HandleFunc("/api/stock/low", h.ListLowStock).Methods("GET")
	router.HandleFunc("/api/stock/{item_id}/{location_id}", h.GetStock).Methods("GET")
	router.HandleFunc("/api/stock/{item_id}/{location_id}/available", h.GetAvailable).Methods("GET")
	router.HandleFunc("/api/movements", h.ListMovements).Methods("GET")
}

func (h *StockHandler) publishStockAdjusted(r *http.Request, record *domain.StockRecord, movement *domain.Movement, actor string) {
	if h.kafkaPublisher == nil || record == nil || movement == nil {
		return
	}

	locationID := record.LocationID
	event := kafka.StockAdjustedEvent{
		Reference:  movement.Reference,
		ItemID:     record.ItemID,
		LocationID: locationID,
		Delta:      movement.Quantity,
		Quantity:   record.Quantity,
		Actor:      actor,
	}
	if err := h.kafkaPublisher.PublishStockAdjusted(r.Context(), event); err != nil {
		// Publishing is best-effort; the movement row is the durable record
		logger.Logger.Warn().Err(err).Str("reference", movement.Reference).
			Msg("Failed to publish stock adjusted event")
	}
}

func (h *StockHandler) observe(method, endpoint string, status int, start time.Time) {
	h.requestCounter.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	h.requestLatency.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
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
