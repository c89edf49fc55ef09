package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/halvard/stockledger/internal/asset/domain"
)

// GormAssetRepository implements AssetRepository using GORM
type GormAssetRepository struct {
	db *gorm.DB
}

// NewGormAssetRepository creates a new GORM asset repository
func NewGormAssetRepository(db *gorm.DB) *GormAssetRepository {
	return &GormAssetRepository{db: db}
}

func (r *GormAssetRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Asset{}, &domain.InstallationEdge{})
}

// Create inserts a new asset
func (r *GormAssetRepository) Create(asset *domain.Asset) error {
	if err := r.db.Create(asset).Error; err != nil {
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// FindByID retrieves an asset by ID
func (r *GormAssetRepository) FindByID(id uint) (*domain.Asset, error) {
	var asset domain.Asset
	if err := r.db.First(&asset, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find asset: %w", err)
	}
	return &asset, nil
}

// FindBySerial retrieves an asset by serial or batch code
func (r *GormAssetRepository) FindBySerial(serial string) (*domain.Asset, error) {
	var asset domain.Asset
	if err := r.db.Where("serial = ?", serial).First(&asset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find asset: %w", err)
	}
	return &asset, nil
}

// FindByLocation retrieves assets currently sitting in a location
func (r *GormAssetRepository) FindByLocation(locationID uint) ([]domain.Asset, error) {
	var assets []domain.Asset
	if err := r.db.Where("location_id = ?", locationID).Order("id").Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to find assets by location: %w", err)
	}
	return assets, nil
}

// FindUnderWarranty retrieves assets whose warranty covers the given instant
func (r *GormAssetRepository) FindUnderWarranty(asOf time.Time) ([]domain.Asset, error) {
	var assets []domain.Asset
	if err := r.db.Where("warranty_until >= ?", asOf).Order("warranty_until").Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to find assets under warranty: %w", err)
	}
	return assets, nil
}

// FindAll retrieves assets matching the filter, with pagination. Category
// and free-text search resolve through the catalog item the asset
// instantiates.
func (r *GormAssetRepository) FindAll(filter domain.AssetFilter) ([]domain.Asset, error) {
	query := r.db.Model(&domain.Asset{}).Order("assets.id")

	if filter.Status != "" {
		query = query.Where("assets.status = ?", filter.Status)
	}
	if filter.Category != "" || filter.Search != "" {
		query = query.Joins("JOIN catalog_skus ON catalog_skus.id = assets.item_id")
	}
	if filter.Category != "" {
		query = query.Where("catalog_skus.category = ?", filter.Category)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where(
			"catalog_skus.name ILIKE ? OR catalog_skus.part_number ILIKE ? OR catalog_skus.category ILIKE ? OR assets.serial ILIKE ?",
			term, term, term, term,
		)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var assets []domain.Asset
	if err := query.Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to find assets: %w", err)
	}
	return assets, nil
}

// Update saves an asset's mutable fields
func (r *GormAssetRepository) Update(asset *domain.Asset) error {
	if err := r.db.Save(asset).Error; err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	return nil
}

// Delete soft-deletes an asset. Returns false when the id is unknown, so
// callers get idempotent-delete semantics instead of an error.
func (r *GormAssetRepository) Delete(id uint) (bool, error) {
	result := r.db.Delete(&domain.Asset{}, id)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete asset: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
