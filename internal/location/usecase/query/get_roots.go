package query

import (
	"fmt"

	"github.com/halvard/stockledger/internal/location/domain"
)

// GetRootsHandler handles get roots query
type GetRootsHandler struct {
	repo domain.LocationRepository
}

// NewGetRootsHandler creates a new get roots handler
func NewGetRootsHandler(repo domain.LocationRepository) *GetRootsHandler {
	return &GetRootsHandler{repo: repo}
}

// Handle returns every location without a parent
func (h *GetRootsHandler) Handle() ([]domain.Location, error) {
	roots, err := h.repo.FindRoots()
	if err != nil {
		return nil, fmt.Errorf("failed to list roots: %w", err)
	}
	return roots, nil
}

// ListLocationsQuery represents the query to list locations
type ListLocationsQuery struct {
	Limit  int
	Offset int
}

// ListLocationsHandler handles list locations query
type ListLocationsHandler struct {
	repo domain.LocationRepository
}

// NewListLocationsHandler creates a new list locations handler
func NewListLocationsHandler(repo domain.LocationRepository) *ListLocationsHandler {
	return &ListLocationsHandler{repo: repo}
}

// Handle executes the list locations query
func (h *ListLocationsHandler) Handle(query ListLocationsQuery) ([]domain.Location, error) {
	if query.Limit == 0 {
		query.Limit = 10
	}

	if query.Limit > 100 {
		query.Limit = 100
	}

	locations, err := h.repo.FindAll(query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	return locations, nil
}
