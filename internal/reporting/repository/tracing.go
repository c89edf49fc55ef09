package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/halvard/stockledger/internal/reporting/domain"
)

var tracer = otel.Tracer("reporting-repository")

// GormReportRepositoryWithTracing wraps GormReportRepository with tracing
type GormReportRepositoryWithTracing struct {
	*GormReportRepository
}

// NewGormReportRepositoryWithTracing creates a new repository with tracing
func NewGormReportRepositoryWithTracing(db *gorm.DB) *GormReportRepositoryWithTracing {
	return &GormReportRepositoryWithTracing{
		GormReportRepository: NewGormReportRepository(db),
	}
}

// ValuationWithContext computes the valuation report inside a span
func (r *GormReportRepositoryWithTracing) ValuationWithContext(ctx context.Context) (*domain.ValuationReport, error) {
	_, span := tracer.Start(ctx, "repository.Valuation")
	defer span.End()

	report, err := r.GormReportRepository.Valuation()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("report.total", report.Total.String()))
	return report, nil
}

// LowStockWithContext lists low-stock lines inside a span
func (r *GormReportRepositoryWithTracing) LowStockWithContext(ctx context.Context) ([]domain.LowStockLine, error) {
	_, span := tracer.Start(ctx, "repository.LowStock")
	defer span.End()

	lines, err := r.GormReportRepository.LowStock()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("report.low_stock_lines", len(lines)))
	return lines, nil
}
