package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/halvard/stockledger/internal/catalog/domain"
)

// GormCatalogRepository implements CatalogRepository using GORM
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GORM catalog repository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

func (r *GormCatalogRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.CatalogItem{})
}

// Resolve looks the key up and creates the row when missing. The insert uses
// ON CONFLICT DO NOTHING on the unique key index; when a concurrent resolver
// won the race the follow-up read returns its row. This re-read is the only
// internal retry the ledger performs.
func (r *GormCatalogRepository) Resolve(item *domain.CatalogItem) (*domain.CatalogItem, error) {
	var existing domain.CatalogItem
	err := r.db.Where("key = ?", item.Key).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up sku %s: %w", item.Key, err)
	}

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(item)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create sku %s: %w", item.Key, result.Error)
	}
	if result.RowsAffected > 0 {
		return item, nil
	}

	// Lost the race: somebody else inserted the key between the read and
	// the write. Re-read their row.
	if err := r.db.Where("key = ?", item.Key).First(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to re-read sku %s after conflict: %w", item.Key, err)
	}
	return &existing, nil
}

// FindByID retrieves a catalog item by ID
func (r *GormCatalogRepository) FindByID(id uint) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find catalog item: %w", err)
	}
	return &item, nil
}

// FindByKey retrieves a catalog item by its normalized key
func (r *GormCatalogRepository) FindByKey(key string) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	if err := r.db.Where("key = ?", key).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find catalog item: %w", err)
	}
	return &item, nil
}

// FindAll retrieves catalog items with pagination
func (r *GormCatalogRepository) FindAll(limit, offset int) ([]domain.CatalogItem, error) {
	var items []domain.CatalogItem
	query := r.db.Order("key")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to find catalog items: %w", err)
	}
	return items, nil
}

// FindByCategory retrieves catalog items by category with pagination
func (r *GormCatalogRepository) FindByCategory(category string, limit, offset int) ([]domain.CatalogItem, error) {
	var items []domain.CatalogItem
	query := r.db.Where("category = ?", category).Order("key")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to find catalog items by category: %w", err)
	}
	return items, nil
}
