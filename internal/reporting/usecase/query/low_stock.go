package query

import (
	"fmt"

	"github.com/halvard/stockledger/internal/reporting/domain"
)

// LowStockHandler handles the low stock report query
type LowStockHandler struct {
	repo domain.ReportRepository
}

// NewLowStockHandler creates a new low stock handler
func NewLowStockHandler(repo domain.ReportRepository) *LowStockHandler {
	return &LowStockHandler{repo: repo}
}

// Handle executes the low stock report query
func (h *LowStockHandler) Handle() ([]domain.LowStockLine, error) {
	lines, err := h.repo.LowStock()
	if err != nil {
		return nil, fmt.Errorf("failed to build low stock report: %w", err)
	}
	return lines, nil
}
