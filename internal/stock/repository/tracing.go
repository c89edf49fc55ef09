package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/halvard/stockledger/internal/stock/domain"
)

var tracer = otel.Tracer("stock-repository")

// GormStockRepositoryWithTracing wraps GormStockRepository with tracing
type GormStockRepositoryWithTracing struct {
	*GormStockRepository
}

// NewGormStockRepositoryWithTracing creates a new repository with tracing
func NewGormStockRepositoryWithTracing(db *gorm.DB) *GormStockRepositoryWithTracing {
	return &GormStockRepositoryWithTracing{
		GormStockRepository: NewGormStockRepository(db),
	}
}

// AdjustQuantitiesWithContext adjusts a stock record inside a span
func (r *GormStockRepositoryWithTracing) AdjustQuantitiesWithContext(ctx context.Context, itemID, locationID uint, delta, reservedDelta int) (*domain.StockRecord, error) {
	_, span := tracer.Start(ctx, "repository.AdjustQuantities",
		trace.WithAttributes(
			attribute.Int("stock.item_id", int(itemID)),
			attribute.Int("stock.location_id", int(locationID)),
			attribute.Int("stock.delta", delta),
			attribute.Int("stock.reserved_delta", reservedDelta),
		),
	)
	defer span.End()

	record, err := r.GormStockRepository.AdjustQuantities(itemID, locationID, delta, reservedDelta)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("stock.quantity", record.Quantity))
	return record, nil
}

// FindByItemAndLocationWithContext looks up a stock record inside a span
func (r *GormStockRepositoryWithTracing) FindByItemAndLocationWithContext(ctx context.Context, itemID, locationID uint) (*domain.StockRecord, error) {
	_, span := tracer.Start(ctx, "repository.FindByItemAndLocation",
		trace.WithAttributes(
			attribute.Int("stock.item_id", int(itemID)),
			attribute.Int("stock.location_id", int(locationID)),
		),
	)
	defer span.End()

	record, err := r.GormStockRepository.FindByItemAndLocation(itemID, locationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return record, nil
}

// GormMovementRepositoryWithTracing wraps GormMovementRepository with tracing
type GormMovementRepositoryWithTracing struct {
	*GormMovementRepository
}

// NewGormMovementRepositoryWithTracing creates a new repository with tracing
func NewGormMovementRepositoryWithTracing(db *gorm.DB) *GormMovementRepositoryWithTracing {
	return &GormMovementRepositoryWithTracing{
		GormMovementRepository: NewGormMovementRepository(db),
	}
}

// AppendWithContext appends a movement inside a span
func (r *GormMovementRepositoryWithTracing) AppendWithContext(ctx context.Context, movement *domain.Movement) error {
	_, span := tracer.Start(ctx, "repository.AppendMovement",
		trace.WithAttributes(
			attribute.String("movement.type", movement.Type),
			attribute.Int("movement.item_id", int(movement.ItemID)),
			attribute.Int("movement.quantity", movement.Quantity),
		),
	)
	defer span.End()

	if err := r.GormMovementRepository.Append(movement); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.String("movement.reference", movement.Reference))
	return nil
}
