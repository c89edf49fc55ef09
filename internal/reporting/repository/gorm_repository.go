package repository

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	assetdomain "github.com/halvard/stockledger/internal/asset/domain"
	"github.com/halvard/stockledger/internal/reporting/domain"
	stockdomain "github.com/halvard/stockledger/internal/stock/domain"
)

// GormReportRepository implements ReportRepository with raw aggregate queries.
// Fungible stock is priced at the weighted-average unit cost of its purchase
// movements; asset movements (asset_id set) are excluded so serialized units
// are not priced twice.
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GORM report repository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

const avgCostSubquery = `
	SELECT item_id,
	       SUM(unit_cost * quantity) / NULLIF(SUM(quantity), 0) AS avg_cost
	FROM movements
	WHERE type = ? AND asset_id IS NULL AND quantity > 0
	GROUP BY item_id`

// Valuation totals stock value and asset value across the whole system
func (r *GormReportRepository) Valuation() (*domain.ValuationReport, error) {
	report := &domain.ValuationReport{GeneratedAt: time.Now().UTC()}

	var stockValue decimal.NullDecimal
	err := r.db.Raw(`
		SELECT SUM(s.quantity * ac.avg_cost)
		FROM stock_records s
		JOIN (`+avgCostSubquery+`) ac ON ac.item_id = s.item_id
		WHERE s.quantity > 0`, stockdomain.MovementPurchase,
	).Scan(&stockValue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute stock valuation: %w", err)
	}

	var assetValue decimal.NullDecimal
	err = r.db.Raw(`
		SELECT SUM(purchase_cost)
		FROM assets
		WHERE status <> ? AND deleted_at IS NULL`, assetdomain.StatusDisposed,
	).Scan(&assetValue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute asset valuation: %w", err)
	}

	report.StockValue = stockValue.Decimal
	report.AssetValue = assetValue.Decimal
	report.Total = report.StockValue.Add(report.AssetValue)
	return report, nil
}

// ValuationByCategory breaks the valuation down per catalog category. Items
// without a category land under the empty-string key rather than being
// dropped.
func (r *GormReportRepository) ValuationByCategory() ([]domain.CategoryValuation, error) {
	type row struct {
		Category   string
		StockValue decimal.NullDecimal
		AssetValue decimal.NullDecimal
	}

	var rows []row
	err := r.db.Raw(`
		SELECT c.category,
		       SUM(v.stock_value) AS stock_value,
		       SUM(v.asset_value) AS asset_value
		FROM catalog_skus c
		JOIN (
			SELECT s.item_id, s.quantity * ac.avg_cost AS stock_value, 0 AS asset_value
			FROM stock_records s
			JOIN (`+avgCostSubquery+`) ac ON ac.item_id = s.item_id
			WHERE s.quantity > 0
			UNION ALL
			SELECT a.item_id, 0, a.purchase_cost
			FROM assets a
			WHERE a.status <> ? AND a.deleted_at IS NULL
		) v ON v.item_id = c.id
		GROUP BY c.category
		ORDER BY c.category`, stockdomain.MovementPurchase, assetdomain.StatusDisposed,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute valuation by category: %w", err)
	}

	result := make([]domain.CategoryValuation, 0, len(rows))
	for _, line := range rows {
		result = append(result, domain.CategoryValuation{
			Category:   line.Category,
			StockValue: line.StockValue.Decimal,
			AssetValue: line.AssetValue.Decimal,
			Total:      line.StockValue.Decimal.Add(line.AssetValue.Decimal),
		})
	}
	return result, nil
}

// LowStock lists stock records at or below their minimum level, joined with
// the catalog identity of the item
func (r *GormReportRepository) LowStock() ([]domain.LowStockLine, error) {
	var lines []domain.LowStockLine
	err := r.db.Raw(`
		SELECT s.item_id, c.key, c.name, c.category,
		       s.location_id, s.quantity, s.min_level
		FROM stock_records s
		JOIN catalog_skus c ON c.id = s.item_id
		WHERE s.min_level > 0 AND s.quantity <= s.min_level
		ORDER BY s.quantity - s.min_level ASC`,
	).Scan(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}
	return lines, nil
}
