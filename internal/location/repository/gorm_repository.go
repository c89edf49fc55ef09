package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/halvard/stockledger/internal/location/domain"
)

// GormLocationRepository implements LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GORM location repository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

func (r *GormLocationRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Location{})
}

// Create inserts a new location
func (r *GormLocationRepository) Create(location *domain.Location) error {
	if err := r.db.Create(location).Error; err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}

// FindByID retrieves a location by ID
func (r *GormLocationRepository) FindByID(id uint) (*domain.Location, error) {
	var location domain.Location
	if err := r.db.First(&location, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find location: %w", err)
	}
	return &location, nil
}

// FindChildren retrieves the direct children of a parent location
func (r *GormLocationRepository) FindChildren(parentID uint) ([]domain.Location, error) {
	var locations []domain.Location
	if err := r.db.Where("parent_id = ?", parentID).Order("name").Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to find children: %w", err)
	}
	return locations, nil
}

// FindRoots retrieves all locations without a parent
func (r *GormLocationRepository) FindRoots() ([]domain.Location, error) {
	var locations []domain.Location
	if err := r.db.Where("parent_id IS NULL").Order("name").Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to find roots: %w", err)
	}
	return locations, nil
}

// FindAll retrieves locations with pagination
func (r *GormLocationRepository) FindAll(limit, offset int) ([]domain.Location, error) {
	var locations []domain.Location
	query := r.db.Order("path")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to find locations: %w", err)
	}
	return locations, nil
}

// Update updates a location
func (r *GormLocationRepository) Update(location *domain.Location) error {
	if err := r.db.Save(location).Error; err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	return nil
}

// Deactivate soft-disables a location. Children and stock keep referencing
// it, so rows are never removed. Returns false when the id is unknown.
func (r *GormLocationRepository) Deactivate(id uint) (bool, error) {
	result := r.db.Model(&domain.Location{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return false, fmt.Errorf("failed to deactivate location: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
