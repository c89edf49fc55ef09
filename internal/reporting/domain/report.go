package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrValidation = errors.New("report validation error")
)

// ValuationReport totals the monetary value currently held in the system.
// StockValue prices fungible stock at the weighted-average purchase cost of
// each item; AssetValue sums the purchase cost of serialized assets that have
// not been disposed.
type ValuationReport struct {
	StockValue  decimal.Decimal `json:"stock_value"`
	AssetValue  decimal.Decimal `json:"asset_value"`
	Total       decimal.Decimal `json:"total"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// CategoryValuation is one category line of a valuation breakdown.
type CategoryValuation struct {
	Category   string          `json:"category"`
	StockValue decimal.Decimal `json:"stock_value"`
	AssetValue decimal.Decimal `json:"asset_value"`
	Total      decimal.Decimal `json:"total"`
}

// LowStockLine pairs a stock record that fell to or below its minimum level
// with the catalog identity of the item, so the report is readable without a
// second lookup.
type LowStockLine struct {
	ItemID     uint   `json:"item_id"`
	Key        string `json:"key"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	LocationID uint   `json:"location_id"`
	Quantity   int    `json:"quantity"`
	MinLevel   int    `json:"min_level"`
}

// ReportRepository is the read-only query surface behind reporting. It never
// writes; every aggregate is computed in the database.
type ReportRepository interface {
	Valuation() (*ValuationReport, error)
	ValuationByCategory() ([]CategoryValuation, error)
	LowStock() ([]LowStockLine, error)
}
