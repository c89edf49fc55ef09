package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/halvard/stockledger/internal/location/domain"
	"github.com/halvard/stockledger/internal/location/usecase/command"
	"github.com/halvard/stockledger/internal/location/usecase/query"
	"github.com/halvard/stockledger/pkg/logger"
)

// LocationHandler handles HTTP requests for the location hierarchy
type LocationHandler struct {
	createHandler     *command.CreateLocationHandler
	deactivateHandler *command.DeactivateLocationHandler

	getPathHandler     *query.GetPathHandler
	getChildrenHandler *query.GetChildrenHandler
	getRootsHandler    *query.GetRootsHandler
	listHandler        *query.ListLocationsHandler

	repo domain.LocationRepository
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(repo domain.LocationRepository) *LocationHandler {
	return &LocationHandler{
		createHandler:      command.NewCreateLocationHandler(repo),
		deactivateHandler:  command.NewDeactivateLocationHandler(repo),
		getPathHandler:     query.NewGetPathHandler(repo),
		getChildrenHandler: query.NewGetChildrenHandler(repo),
		getRootsHandler:    query.NewGetRootsHandler(repo),
		listHandler:        query.NewListLocationsHandler(repo),
		repo:               repo,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateLocation handles POST /api/locations
func (h *LocationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string   `json:"name"`
		Type     string   `json:"type"`
		ParentID *uint    `json:"parent_id"`
		Tags     []string `json:"tags"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	location, err := h.createHandler.Handle(command.CreateLocationCommand{
		Name:     req.Name,
		Type:     req.Type,
		ParentID: req.ParentID,
		Tags:     req.Tags,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Str("name", req.Name).Msg("Failed to create location")
		respondJSON(w, statusFor(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Location created successfully",
		Data:    location,
	})
}

// GetLocation handles GET /api/locations/{id}
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	location, err := h.repo.FindByID(id)
	if err != nil {
		respondJSON(w, statusFor(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: location})
}

// GetPath handles GET /api/locations/{id}/path
func (h *LocationHandler) GetPath(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	chain, err := h.getPathHandler.Handle(query.GetPathQuery{ID: id})
	if err != nil {
		respondJSON(w, statusFor(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: chain})
}

// GetChildren handles GET /api/locations/{id}/children
func (h *LocationHandler) GetChildren(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	children, err := h.getChildrenHandler.Handle(query.GetChildrenQuery{ParentID: id})
	if err != nil {
		respondJSON(w, statusFor(err), Response{Success: false, Error: err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: children})
}

// GetRoots handles GET /api/locations/roots
func (h *LocationHandler) GetRoots(w http.ResponseWriter, r *http.Request) {
	roots, err := h.getRootsHandler.Handle()
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list root locations")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list roots"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: roots})
}

// ListLocations handles GET /api/locations
func (h *LocationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	locations, err := h.listHandler.Handle(query.ListLocationsQuery{Limit: limit, Offset: offset})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list locations")
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Failed to list locations"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: locations})
}

// DeactivateLocation handles DELETE /api/locations/{id}
func (h *LocationHandler) DeactivateLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	found, err := h.deactivateHandler.Handle(command.DeactivateLocationCommand{ID: id})
	if err != nil {
		logger.Logger.Error().Err(err).Uint("location_id", id).Msg("Failed to deactivate location")
		respondJSON(w, statusFor(err), Response{Success: false, Error: err.Error()})
		return
	}

	if !found {
		respondJSON(w, http.StatusNotFound, Response{Success: false, Error: "Location not found"})
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Location deactivated"})
}

// RegisterRoutes registers all location routes
func (h *LocationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/locations", h.ListLocations).Methods("GET")
	router.HandleFunc("/api/locations", h.CreateLocation).Methods("POST")
	router.HandleFunc("/api/locations/roots", h.GetRoots).Methods("GET")
	router.HandleFunc("/api/locations/{id}", h.GetLocation).Methods("GET")
	router.HandleFunc("/api/locations/{id}", h.DeactivateLocation).Methods("DELETE")
	router.HandleFunc("/api/locations/{id}/path", h.GetPath).Methods("GET")
	router.HandleFunc("/api/locations/{id}/children", h.GetChildren).Methods("GET")
}

func pathID(w http.ResponseWriter, r *http.Request, key string) (uint, bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars[key], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid location ID"})
		return 0, false
	}
	return uint(id), true
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
