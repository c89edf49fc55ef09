package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/halvard/stockledger/internal/stock/domain"
)

// GormStockRepository implements StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GORM stock repository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

func (r *GormStockRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.StockRecord{})
}

// FindByItemAndLocation retrieves the single record for an (item, location) pair
func (r *GormStockRepository) FindByItemAndLocation(itemID, locationID uint) (*domain.StockRecord, error) {
	var record domain.StockRecord
	err := r.db.Where("item_id = ? AND location_id = ?", itemID, locationID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find stock record: %w", err)
	}
	return &record, nil
}

// FindByItem retrieves every record holding the item, across locations
func (r *GormStockRepository) FindByItem(itemID uint) ([]domain.StockRecord, error) {
	var records []domain.StockRecord
	if err := r.db.Where("item_id = ?", itemID).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to find stock records: %w", err)
	}
	return records, nil
}

// FindAll retrieves stock records with pagination
func (r *GormStockRepository) FindAll(limit, offset int) ([]domain.StockRecord, error) {
	var records []domain.StockRecord
	query := r.db.Order("item_id, location_id")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to find stock records: %w", err)
	}
	return records, nil
}

// FindLowStock retrieves records at or below their minimum threshold. Rows
// with no threshold set are never low, so the default zero-level records do
// not flood the result.
func (r *GormStockRepository) FindLowStock() ([]domain.StockRecord, error) {
	var records []domain.StockRecord
	if err := r.db.Where("min_level > 0 AND quantity <= min_level").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to find low stock records: %w", err)
	}
	return records, nil
}

// AdjustQuantities applies the deltas as a single upsert. ON CONFLICT on the
// (item, location) unique index turns a concurrent first write into an
// increment of the winner's row, so two racing adjusters never lose an
// update and never create a duplicate pair.
func (r *GormStockRepository) AdjustQuantities(itemID, locationID uint, delta, reservedDelta int) (*domain.StockRecord, error) {
	record := domain.StockRecord{
		ItemID:     itemID,
		LocationID: locationID,
		Quantity:   delta,
		Reserved:   reservedDelta,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "item_id"}, {Name: "location_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("stock_records.quantity + ?", delta),
			"reserved":   gorm.Expr("stock_records.reserved + ?", reservedDelta),
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(&record).Error
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	// The upsert does not report post-increment values, so read the row back
	return r.FindByItemAndLocation(itemID, locationID)
}

// SetLevel writes an absolute quantity with the same upsert semantics
func (r *GormStockRepository) SetLevel(itemID, locationID uint, quantity int) (*domain.StockRecord, error) {
	record := domain.StockRecord{
		ItemID:     itemID,
		LocationID: locationID,
		Quantity:   quantity,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "item_id"}, {Name: "location_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(&record).Error
	if err != nil {
		return nil, fmt.Errorf("failed to set stock level: %w", err)
	}

	return r.FindByItemAndLocation(itemID, locationID)
}

// Update saves threshold or reservation edits on an existing record
func (r *GormStockRepository) Update(record *domain.StockRecord) error {
	if err := r.db.Save(record).Error; err != nil {
		return fmt.Errorf("failed to update stock record: %w", err)
	}
	return nil
}
