package query

import (
	"fmt"
	"time"

	"github.com/halvard/stockledger/internal/reporting/domain"
	stockdomain "github.com/halvard/stockledger/internal/stock/domain"
)

// MovementsByTypeQuery bounds the aggregation window. Zero bounds mean
// unbounded on that side.
type MovementsByTypeQuery struct {
	From time.Time
	To   time.Time
}

// MovementsByTypeHandler totals signed movement quantities per movement type
type MovementsByTypeHandler struct {
	movements stockdomain.MovementRepository
}

// NewMovementsByTypeHandler creates a new movements by type handler
func NewMovementsByTypeHandler(movements stockdomain.MovementRepository) *MovementsByTypeHandler {
	return &MovementsByTypeHandler{movements: movements}
}

// Handle executes the movements by type query
func (h *MovementsByTypeHandler) Handle(query MovementsByTypeQuery) (map[string]int64, error) {
	if !query.From.IsZero() && !query.To.IsZero() && query.To.Before(query.From) {
		return nil, fmt.Errorf("%w: window end precedes window start", domain.ErrValidation)
	}

	totals, err := h.movements.TotalsByType(query.From, query.To)
	if err != nil {
		return nil, fmt.Errorf("failed to total movements by type: %w", err)
	}
	return totals, nil
}
