package query

import (
	"fmt"

	"github.com/halvard/stockledger/internal/location/domain"
)

// GetChildrenQuery represents the query for a location's direct children
type GetChildrenQuery struct {
	ParentID uint
}

// GetChildrenHandler handles get children query
type GetChildrenHandler struct {
	repo domain.LocationRepository
}

// NewGetChildrenHandler creates a new get children handler
func NewGetChildrenHandler(repo domain.LocationRepository) *GetChildrenHandler {
	return &GetChildrenHandler{repo: repo}
}

// Handle executes the get children query
func (h *GetChildrenHandler) Handle(query GetChildrenQuery) ([]domain.Location, error) {
	if query.ParentID == 0 {
		return nil, fmt.Errorf("%w: parent id is required", domain.ErrValidation)
	}

	if _, err := h.repo.FindByID(query.ParentID); err != nil {
		return nil, fmt.Errorf("parent location %d: %w", query.ParentID, err)
	}

	children, err := h.repo.FindChildren(query.ParentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}

	return children, nil
}
