package query

import (
	"fmt"
	"time"

	"github.com/halvard/stockledger/internal/stock/domain"
)

// ListMovementsQuery represents the query over the movement log
type ListMovementsQuery struct {
	Type   string
	ItemID uint
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// ListMovementsHandler handles list movements query
type ListMovementsHandler struct {
	repo domain.MovementRepository
}

// NewListMovementsHandler creates a new list movements handler
func NewListMovementsHandler(repo domain.MovementRepository) *ListMovementsHandler {
	return &ListMovementsHandler{repo: repo}
}

// Handle executes the list movements query
func (h *ListMovementsHandler) Handle(query ListMovementsQuery) ([]domain.Movement, error) {
	if query.Limit == 0 {
		query.Limit = 50
	}

	if query.Limit > 500 {
		query.Limit = 500
	}

	movements, err := h.repo.Find(domain.MovementFilter{
		Type:   query.Type,
		ItemID: query.ItemID,
		From:   query.From,
		To:     query.To,
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}

	return movements, nil
}

// LowStockHandler lists records sitting at or under their minimum threshold
type LowStockHandler struct {
	repo domain.StockRepository
}

// NewLowStockHandler creates a new low stock handler
func NewLowStockHandler(repo domain.StockRepository) *LowStockHandler {
	return &LowStockHandler{repo: repo}
}

// Handle executes the low stock query
func (h *LowStockHandler) Handle() ([]domain.StockRecord, error) {
	records, err := h.repo.FindLowStock()
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}
	return records, nil
}
