package repository

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/halvard/stockledger/internal/asset/domain"
)

var tracer = otel.Tracer("asset-repository")

// GormAssetRepositoryWithTracing wraps GormAssetRepository with tracing
type GormAssetRepositoryWithTracing struct {
	*GormAssetRepository
}

// NewGormAssetRepositoryWithTracing creates a new repository with tracing
func NewGormAssetRepositoryWithTracing(db *gorm.DB) *GormAssetRepositoryWithTracing {
	return &GormAssetRepositoryWithTracing{
		GormAssetRepository: NewGormAssetRepository(db),
	}
}

// CreateWithContext creates an asset inside a span
func (r *GormAssetRepositoryWithTracing) CreateWithContext(ctx context.Context, asset *domain.Asset) error {
	_, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(
			attribute.Int("asset.item_id", int(asset.ItemID)),
			attribute.String("asset.serial", asset.Serial),
		),
	)
	defer span.End()

	err := r.GormAssetRepository.Create(asset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int("asset.id", int(asset.ID)))
	return nil
}

// FindByIDWithContext looks up an asset inside a span
func (r *GormAssetRepositoryWithTracing) FindByIDWithContext(ctx context.Context, id uint) (*domain.Asset, error) {
	_, span := tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(
			attribute.Int("asset.id", int(id)),
		),
	)
	defer span.End()

	asset, err := r.GormAssetRepository.FindByID(id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("asset.status", asset.Status))
	return asset, nil
}

// DeleteWithContext deletes an asset inside a span
func (r *GormAssetRepositoryWithTracing) DeleteWithContext(ctx context.Context, id uint) (bool, error) {
	_, span := tracer.Start(ctx, "repository.Delete",
		trace.WithAttributes(
			attribute.Int("asset.id", int(id)),
		),
	)
	defer span.End()

	found, err := r.GormAssetRepository.Delete(id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	span.SetAttributes(attribute.Bool("asset.found", found))
	return found, nil
}

// GormEdgeRepositoryWithTracing wraps GormEdgeRepository with tracing
type GormEdgeRepositoryWithTracing struct {
	*GormEdgeRepository
}

// NewGormEdgeRepositoryWithTracing creates a new edge repository with tracing
func NewGormEdgeRepositoryWithTracing(db *gorm.DB) *GormEdgeRepositoryWithTracing {
	return &GormEdgeRepositoryWithTracing{
		GormEdgeRepository: NewGormEdgeRepository(db),
	}
}

// CreateWithContext opens an edge inside a span
func (r *GormEdgeRepositoryWithTracing) CreateWithContext(ctx context.Context, edge *domain.InstallationEdge) error {
	_, span := tracer.Start(ctx, "repository.CreateEdge",
		trace.WithAttributes(
			attribute.Int("edge.container_id", int(edge.ContainerID)),
			attribute.Int("edge.asset_id", int(edge.AssetID)),
		),
	)
	defer span.End()

	if err := r.GormEdgeRepository.Create(edge); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int("edge.id", int(edge.ID)))
	return nil
}

// CloseWithContext closes an edge inside a span
func (r *GormEdgeRepositoryWithTracing) CloseWithContext(ctx context.Context, edgeID uint, removedAt time.Time) error {
	_, span := tracer.Start(ctx, "repository.CloseEdge",
		trace.WithAttributes(
			attribute.Int("edge.id", int(edgeID)),
		),
	)
	defer span.End()

	if err := r.GormEdgeRepository.Close(edgeID, removedAt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
