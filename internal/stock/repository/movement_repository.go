package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/halvard/stockledger/internal/stock/domain"
)

// GormMovementRepository implements MovementRepository using GORM. The log
// is append-only; this type intentionally has no update or delete method.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GORM movement repository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

func (r *GormMovementRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Movement{})
}

// Append writes one immutable movement row
func (r *GormMovementRepository) Append(movement *domain.Movement) error {
	if err := r.db.Create(movement).Error; err != nil {
		return fmt.Errorf("failed to append movement: %w", err)
	}
	return nil
}

// Find retrieves movements matching the filter, newest first
func (r *GormMovementRepository) Find(filter domain.MovementFilter) ([]domain.Movement, error) {
	query := r.db.Order("created_at DESC")

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.ItemID != 0 {
		query = query.Where("item_id = ?", filter.ItemID)
	}
	if filter.AssetID != 0 {
		query = query.Where("asset_id = ?", filter.AssetID)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at <= ?", filter.To)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var movements []domain.Movement
	if err := query.Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("failed to find movements: %w", err)
	}
	return movements, nil
}

// SumByItem returns the net signed delta for an item over the whole log.
// Used by reconciliation: the sum must match the item's total on-hand
// quantity across all locations. Serialized-asset movements describe a unit
// moving, not a stock delta, so they are excluded.
func (r *GormMovementRepository) SumByItem(itemID uint) (int64, error) {
	var total *int64
	err := r.db.Model(&domain.Movement{}).
		Where("item_id = ? AND asset_id IS NULL", itemID).
		Select("SUM(quantity)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum movements: %w", err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// TotalsByType aggregates quantities per movement type inside a window
func (r *GormMovementRepository) TotalsByType(from, to time.Time) (map[string]int64, error) {
	type row struct {
		Type  string
		Total int64
	}

	query := r.db.Model(&domain.Movement{}).
		Select("type, SUM(quantity) AS total").
		Group("type")
	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at <= ?", to)
	}

	var rows []row
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate movements: %w", err)
	}

	totals := make(map[string]int64, len(rows))
	for _, r := range rows {
		totals[r.Type] = r.Total
	}
	return totals, nil
}
