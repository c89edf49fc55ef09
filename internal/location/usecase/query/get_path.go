package query

import (
	"errors"
	"fmt"

	"github.com/halvard/stockledger/internal/location/domain"
)

// GetPathQuery represents the query for a location's ancestor chain
type GetPathQuery struct {
	ID uint
}

// GetPathHandler handles get path query
type GetPathHandler struct {
	repo domain.LocationRepository
}

// NewGetPathHandler creates a new get path handler
func NewGetPathHandler(repo domain.LocationRepository) *GetPathHandler {
	return &GetPathHandler{repo: repo}
}

// Handle resolves the chain from root to the requested location. The walk
// follows parent pointers leaf-to-root and reverses at the end. A missing
// parent or a cycle truncates the chain at the last resolvable ancestor;
// both are data defects upstream, not reasons to loop or fail the query.
func (h *GetPathHandler) Handle(query GetPathQuery) ([]domain.Location, error) {
	if query.ID == 0 {
		return nil, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}

	current, err := h.repo.FindByID(query.ID)
	if err != nil {
		return nil, fmt.Errorf("location %d: %w", query.ID, err)
	}

	chain := []domain.Location{*current}
	seen := map[uint]bool{current.ID: true}

	for current.ParentID != nil {
		parent, err := h.repo.FindByID(*current.ParentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Dangling parent reference: stop at the last ancestor
				// that resolved.
				break
			}
			return nil, fmt.Errorf("ancestor %d: %w", *current.ParentID, err)
		}
		if seen[parent.ID] {
			// Cycle in the hierarchy. Terminate rather than loop.
			break
		}
		seen[parent.ID] = true
		chain = append(chain, *parent)
		current = parent
	}

	// Reverse into root→leaf order
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	return chain, nil
}
