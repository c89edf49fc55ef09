//go:build wireinject
// +build wireinject

package reporting

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	assetdomain "github.com/halvard/stockledger/internal/asset/domain"
	assetrepo "github.com/halvard/stockledger/internal/asset/repository"
	"github.com/halvard/stockledger/internal/reporting/delivery/http"
	"github.com/halvard/stockledger/internal/reporting/domain"
	"github.com/halvard/stockledger/internal/reporting/repository"
	"github.com/halvard/stockledger/internal/reporting/usecase/query"
	stockdomain "github.com/halvard/stockledger/internal/stock/domain"
	stockrepo "github.com/halvard/stockledger/internal/stock/repository"
)

// ProvideReportRepository provides the report repository
func ProvideReportRepository(db *gorm.DB) domain.ReportRepository {
	return repository.NewGormReportRepository(db)
}

// ProvideAssetRepository provides the asset repository
func ProvideAssetRepository(db *gorm.DB) assetdomain.AssetRepository {
	return assetrepo.NewGormAssetRepository(db)
}

// ProvideMovementRepository provides the movement repository
func ProvideMovementRepository(db *gorm.DB) stockdomain.MovementRepository {
	return stockrepo.NewGormMovementRepository(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideReportRepository,
	ProvideAssetRepository,
	ProvideMovementRepository,
)

var QuerySet = wire.NewSet(
	query.NewValuationHandler,
	query.NewValuationByCategoryHandler,
	query.NewLowStockHandler,
	query.NewMovementsByTypeHandler,
	query.NewAssetHistoryHandler,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies.
// redisClient may be nil when report caching is disabled.
func InitializeHTTPHandler(db *gorm.DB, redisClient *redis.Client) (*http.ReportHandler, error) {
	wire.Build(
		RepositorySet,
		QuerySet,
		http.NewReportHandler,
	)
	return nil, nil
}
