package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	assetdomain "github.com/halvard/stockledger/internal/asset/domain"
	"github.com/halvard/stockledger/internal/reporting/domain"
	"github.com/halvard/stockledger/internal/reporting/usecase/query"
	"github.com/halvard/stockledger/pkg/logger"
)

// reportCacheTTL bounds how stale a cached aggregate may get. Reports are
// derived data; 30 seconds of staleness is acceptable for every consumer we
// have.
const reportCacheTTL = 30 * time.Second

// ReportHandler handles HTTP requests for the reporting read surface
type ReportHandler struct {
	valuationHandler  *query.ValuationHandler
	byCategoryHandler *query.ValuationByCategoryHandler
	lowStockHandler   *query.LowStockHandler
	byTypeHandler     *query.MovementsByTypeHandler
	historyHandler    *query.AssetHistoryHandler

	// redisClient may be nil; reports are then computed on every request.
	redisClient *redis.Client

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	cacheHits      prometheus.Counter
}

// NewReportHandler creates a new report handler. redisClient may be nil when
// response caching is disabled.
func NewReportHandler(
	valuationHandler *query.ValuationHandler,
	byCategoryHandler *query.ValuationByCategoryHandler,
	lowStockHandler *query.LowStockHandler,
	byTypeHandler *query.MovementsByTypeHandler,
	historyHandler *query.AssetHistoryHandler,
	redisClient *redis.Client,
) *ReportHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reporting_requests_total",
			Help: "Total number of reporting requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reporting_request_duration_seconds",
			Help:    "Duration of reporting requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reporting_cache_hits_total",
			Help: "Number of reports served from the redis cache",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(cacheHits)

	return &ReportHandler{
		valuationHandler:  valuationHandler,
		byCategoryHandler: byCategoryHandler,
		lowStockHandler:   lowStockHandler,
		byTypeHandler:     byTypeHandler,
		historyHandler:    historyHandler,
		redisClient:       redisClient,
		requestCounter:    requestCounter,
		requestLatency:    requestLatency,
		cacheHits:         cacheHits,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// GetValuation handles GET /api/reports/valuation
func (h *ReportHandler) GetValuation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.serveCached(w, r) {
		h.observe("GET", "/api/reports/valuation", http.StatusOK, start)
		return
	}

	report, err := h.valuationHandler.Handle()
	if err != nil {
		status := statusFor(err)
		logger.Logger.Error().Err(err).Msg("Failed to compute valuation")
		h.observe("GET", "/api/reports/valuation", status, start)
		respondJSON(w, status, Response{Success: false, Error: err.Error()})
		return
	}

	h.observe("GET", "/api/reports/valuation", http.StatusOK, start)
	h.respondCached(w, r, Response{Success: true, Data: report})
}

// GetValuationByCategory handles GET /api/reports/valuation/categories
func (h *ReportHandler) GetValuationByCategory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.serveCached(w, r) {
		h.observe("GET", "/api/reports/valuation/categories", http.StatusOK, start)
		return
	}

	lines, err := h.byCategoryHandler.Handle()
	if err != nil {
		status := statusFor(err)
		logger.Logger.Error().Err(err).Msg("Failed to compute valuation by category")
		h.observe("GET", "/api/reports/valuation/categories", status, start)
		respondJSON(w, status, Response{Success: false, Error: err.Error()})
		return
	}

	h.observe("GET", "/api/reports/valuation/categories", http.StatusOK, start)
	h.respondCached(w, r, Response{Success: true, Data: lines})
}

// GetLowStock handles GET /api/reports/low-stock
func (h *ReportHandler) GetLowStock(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	lines, err := h.lowStockHandler.Handle()
	if err != nil {
		status := statusFor(err)
		logger.Logger.Error().Err(err).Msg("Failed to build low stock report")
		h.observe("GET", "/api/reports/low-stock", status, start)
		respondJSON(w, status, Response{Success: false, Error: err.Error()})
		return
	}

	h.observe("GET", "/api/reports/low-stock", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{Success: true, Data: lines})
}

// GetMovementsByType handles GET /api/reports/movements-by-type
func (h *ReportHandler) GetMovementsByType(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	from, err := parseTime(r.URL.Query().Get("from"))
	if err != nil {
		h.observe("GET", "/api/reports/movements-by-type", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid from timestamp"})
		return
	}
	to, err := parseTime(r.URL.Query().Get("to"))
	if err != nil {
		h.observe("GET", "/api/reports/movements-by-type", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid to timestamp"})
		return
	}

	totals, err := h.byTypeHandler.Handle(query.MovementsByTypeQuery{From: from, To: to})
	if err != nil {
		status := statusFor(err)
		logger.Logger.Error().Err(err).Msg("Failed to total movements by type")
		h.observe("GET", "/api/reports/movements-by-type", status, start)
		respondJSON(w, status, Response{Success: false, Error: err.Error()})
		return
	}

	h.observe("GET", "/api/reports/movements-by-type", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{Success: true, Data: totals})
}

// GetAssetHistory handles GET /api/reports/assets/{id}/movements
func (h *ReportHandler) GetAssetHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		h.observe("GET", "/api/reports/assets/{id}/movements", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid asset ID"})
		return
	}

	from, err := parseTime(r.URL.Query().Get("from"))
	if err != nil {
		h.observe("GET", "/api/reports/assets/{id}/movements", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid from timestamp"})
		return
	}
	to, err := parseTime(r.URL.Query().Get("to"))
	if err != nil {
		h.observe("GET", "/api/reports/assets/{id}/movements", http.StatusBadRequest, start)
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid to timestamp"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	movements, err := h.historyHandler.Handle(query.AssetHistoryQuery{
		AssetID: uint(id),
		From:    from,
		To:      to,
		Limit:   limit,
	})
	if err != nil {
		status := statusFor(err)
		logger.Logger.Error().Err(err).Uint64("asset_id", id).Msg("Failed to read asset history")
		h.observe("GET", "/api/reports/assets/{id}/movements", status, start)
		respondJSON(w, status, Response{Success: false, Error: err.Error()})
		return
	}

	h.observe("GET", "/api/reports/assets/{id}/movements", http.StatusOK, start)
	respondJSON(w, http.StatusOK, Response{Success: true, Data: movements})
}

// RegisterRoutes registers reporting routes on the router
func (h *ReportHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/reports/valuation", h.GetValuation).Methods("GET")
	router.HandleFunc("/api/reports/valuation/categories", h.GetValuationByCategory).Methods("GET")
	router.HandleFunc("/api/reports/low-stock", h.GetLowStock).Methods("GET")
	router.HandleFunc("/api/reports/movements-by-type", h.GetMovementsByType).Methods("GET")
	router.HandleFunc("/api/reports/assets/{id}/movements", h.GetAssetHistory).Methods("GET")
}

// serveCached replays a cached report body when one exists
func (h *ReportHandler) serveCached(w http.ResponseWriter, r *http.Request) bool {
	if h.redisClient == nil {
		return false
	}

	body, err := h.redisClient.Get(r.Context(), cacheKey(r)).Bytes()
	if err != nil || len(body) == 0 {
		return false
	}

	h.cacheHits.Inc()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "HIT")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
	return true
}

// respondCached writes the response and stores it for subsequent requests
func (h *ReportHandler) respondCached(w http.ResponseWriter, r *http.Request, payload Response) {
	body, err := json.Marshal(payload)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to encode report"})
		return
	}

	if h.redisClient != nil {
		if err := h.redisClient.Set(r.Context(), cacheKey(r), body, reportCacheTTL).Err(); err != nil {
			logger.Logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Failed to cache report")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func cacheKey(r *http.Request) string {
	return "report:" + r.URL.Path + "?" + r.URL.RawQuery
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}

func (h *ReportHandler) observe(method, endpoint string, status int, start time.Time) {
	h.requestCounter.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	h.requestLatency.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, assetdomain.ErrNotFound):
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
