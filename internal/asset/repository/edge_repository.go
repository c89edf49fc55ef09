package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/halvard/stockledger/internal/asset/domain"
)

// GormEdgeRepository implements EdgeRepository using GORM. Edges are opened
// and closed, never updated in place or deleted; history stays intact.
type GormEdgeRepository struct {
	db *gorm.DB
}

// NewGormEdgeRepository creates a new GORM edge repository
func NewGormEdgeRepository(db *gorm.DB) *GormEdgeRepository {
	return &GormEdgeRepository{db: db}
}

// Create opens a new installation edge
func (r *GormEdgeRepository) Create(edge *domain.InstallationEdge) error {
	if err := r.db.Create(edge).Error; err != nil {
		return fmt.Errorf("failed to create installation edge: %w", err)
	}
	return nil
}

// FindOpenByAsset retrieves every open edge pointing at the asset. The
// invariant says there is at most one; callers re-check rather than assume.
func (r *GormEdgeRepository) FindOpenByAsset(assetID uint) ([]domain.InstallationEdge, error) {
	var edges []domain.InstallationEdge
	err := r.db.Where("asset_id = ? AND removed_at IS NULL AND is_valid = true", assetID).
		Find(&edges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find open edges: %w", err)
	}
	return edges, nil
}

// Close sets RemovedAt on an edge, ending the containment interval
func (r *GormEdgeRepository) Close(edgeID uint, removedAt time.Time) error {
	err := r.db.Model(&domain.InstallationEdge{}).
		Where("id = ? AND removed_at IS NULL", edgeID).
		Update("removed_at", removedAt).Error
	if err != nil {
		return fmt.Errorf("failed to close installation edge: %w", err)
	}
	return nil
}

// FindByAsset retrieves the full containment history of an asset
func (r *GormEdgeRepository) FindByAsset(assetID uint) ([]domain.InstallationEdge, error) {
	var edges []domain.InstallationEdge
	err := r.db.Where("asset_id = ?", assetID).Order("installed_at DESC").Find(&edges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find edges by asset: %w", err)
	}
	return edges, nil
}

// FindByContainer retrieves edges for a container. With a non-zero instant
// it returns only edges whose interval covers it.
func (r *GormEdgeRepository) FindByContainer(containerID uint, at time.Time) ([]domain.InstallationEdge, error) {
	query := r.db.Where("container_id = ?", containerID).Order("installed_at DESC")
	if !at.IsZero() {
		query = query.Where("installed_at <= ? AND (removed_at IS NULL OR removed_at >= ?)", at, at)
	}

	var edges []domain.InstallationEdge
	if err := query.Find(&edges).Error; err != nil {
		return nil, fmt.Errorf("failed to find edges by container: %w", err)
	}
	return edges, nil
}
