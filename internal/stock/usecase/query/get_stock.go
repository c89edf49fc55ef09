package query

import (
	"errors"
	"fmt"

	"github.com/halvard/stockledger/internal/stock/domain"
)

// GetStockQuery represents the query for one (item, location) record
type GetStockQuery struct {
	ItemID     uint
	LocationID uint
}

// GetStockHandler handles get stock query
type GetStockHandler struct {
	repo domain.StockRepository
}

// NewGetStockHandler creates a new get stock handler
func NewGetStockHandler(repo domain.StockRepository) *GetStockHandler {
	return &GetStockHandler{repo: repo}
}

// Handle executes the get stock query
func (h *GetStockHandler) Handle(query GetStockQuery) (*domain.StockRecord, error) {
	if query.ItemID == 0 || query.LocationID == 0 {
		return nil, fmt.Errorf("%w: item_id and location_id are required", domain.ErrValidation)
	}

	record, err := h.repo.FindByItemAndLocation(query.ItemID, query.LocationID)
	if err != nil {
		return nil, fmt.Errorf("stock for item %d at location %d: %w", query.ItemID, query.LocationID, err)
	}
	return record, nil
}

// AvailableQuantityHandler answers how much of an item is free at a location
type AvailableQuantityHandler struct {
	repo domain.StockRepository
}

// NewAvailableQuantityHandler creates a new available quantity handler
func NewAvailableQuantityHandler(repo domain.StockRepository) *AvailableQuantityHandler {
	return &AvailableQuantityHandler{repo: repo}
}

// Handle returns on-hand minus reserved, clamped at zero. A missing record
// reads as zero available rather than an error.
func (h *AvailableQuantityHandler) Handle(query GetStockQuery) (int, error) {
	if query.ItemID == 0 || query.LocationID == 0 {
		return 0, fmt.Errorf("%w: item_id and location_id are required", domain.ErrValidation)
	}

	record, err := h.repo.FindByItemAndLocation(query.ItemID, query.LocationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read stock: %w", err)
	}

	return record.Available(), nil
}
