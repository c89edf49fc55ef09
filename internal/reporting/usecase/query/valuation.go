package query

import (
	"fmt"

	"github.com/halvard/stockledger/internal/reporting/domain"
)

// ValuationHandler handles the total valuation query
type ValuationHandler struct {
	repo domain.ReportRepository
}

// NewValuationHandler creates a new valuation handler
func NewValuationHandler(repo domain.ReportRepository) *ValuationHandler {
	return &ValuationHandler{repo: repo}
}

// Handle executes the valuation query
func (h *ValuationHandler) Handle() (*domain.ValuationReport, error) {
	report, err := h.repo.Valuation()
	if err != nil {
		return nil, fmt.Errorf("failed to compute valuation: %w", err)
	}
	return report, nil
}

// ValuationByCategoryHandler handles the per-category valuation query
type ValuationByCategoryHandler struct {
	repo domain.ReportRepository
}

// NewValuationByCategoryHandler creates a new valuation by category handler
func NewValuationByCategoryHandler(repo domain.ReportRepository) *ValuationByCategoryHandler {
	return &ValuationByCategoryHandler{repo: repo}
}

// Handle executes the valuation by category query
func (h *ValuationByCategoryHandler) Handle() ([]domain.CategoryValuation, error) {
	lines, err := h.repo.ValuationByCategory()
	if err != nil {
		return nil, fmt.Errorf("failed to compute valuation by category: %w", err)
	}
	return lines, nil
}
