package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/halvard/stockledger/internal/location/domain"
)

var tracer = otel.Tracer("location-repository")

// GormLocationRepositoryWithTracing wraps GormLocationRepository with tracing
type GormLocationRepositoryWithTracing struct {
	*GormLocationRepository
}

// NewGormLocationRepositoryWithTracing creates a new repository with tracing
func NewGormLocationRepositoryWithTracing(db *gorm.DB) *GormLocationRepositoryWithTracing {
	return &GormLocationRepositoryWithTracing{
		GormLocationRepository: NewGormLocationRepository(db),
	}
}

// CreateWithContext creates a location inside a span
func (r *GormLocationRepositoryWithTracing) CreateWithContext(ctx context.Context, location *domain.Location) error {
	_, span := tracer.Start(ctx, "repository.Create",
		trace.WithAttributes(
			attribute.String("location.name", location.Name),
			attribute.String("location.type", location.Type),
		),
	)
	defer span.End()

	err := r.GormLocationRepository.Create(location)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int("location.id", int(location.ID)))
	return nil
}

// FindByIDWithContext looks up a location inside a span
func (r *GormLocationRepositoryWithTracing) FindByIDWithContext(ctx context.Context, id uint) (*domain.Location, error) {
	_, span := tracer.Start(ctx, "repository.FindByID",
		trace.WithAttributes(
			attribute.Int("location.id", int(id)),
		),
	)
	defer span.End()

	location, err := r.GormLocationRepository.FindByID(id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("location.path", location.Path))
	return location, nil
}

// DeactivateWithContext deactivates a location inside a span
func (r *GormLocationRepositoryWithTracing) DeactivateWithContext(ctx context.Context, id uint) (bool, error) {
	_, span := tracer.Start(ctx, "repository.Deactivate",
		trace.WithAttributes(
			attribute.Int("location.id", int(id)),
		),
	)
	defer span.End()

	found, err := r.GormLocationRepository.Deactivate(id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	span.SetAttributes(attribute.Bool("location.found", found))
	return found, nil
}
