//go:build wireinject
// +build wireinject

package asset

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/halvard/stockledger/internal/asset/delivery/http"
	"github.com/halvard/stockledger/internal/asset/domain"
	"github.com/halvard/stockledger/internal/asset/repository"
	catalogdomain "github.com/halvard/stockledger/internal/catalog/domain"
	catalogrepo "github.com/halvard/stockledger/internal/catalog/repository"
	locationdomain "github.com/halvard/stockledger/internal/location/domain"
	locationrepo "github.com/halvard/stockledger/internal/location/repository"
	stockdomain "github.com/halvard/stockledger/internal/stock/domain"
	stockrepo "github.com/halvard/stockledger/internal/stock/repository"
	"github.com/halvard/stockledger/kafka"
)

// ProvideAssetRepository provides the asset repository
func ProvideAssetRepository(db *gorm.DB) domain.AssetRepository {
	return repository.NewGormAssetRepository(db)
}

// ProvideEdgeRepository provides the installation edge repository
func ProvideEdgeRepository(db *gorm.DB) domain.EdgeRepository {
	return repository.NewGormEdgeRepository(db)
}

// ProvideCatalogRepository provides the catalog repository
func ProvideCatalogRepository(db *gorm.DB) catalogdomain.CatalogRepository {
	return catalogrepo.NewGormCatalogRepository(db)
}

// ProvideLocationRepository provides the location repository
func ProvideLocationRepository(db *gorm.DB) locationdomain.LocationRepository {
	return locationrepo.NewGormLocationRepository(db)
}

// ProvideMovementRepository provides the movement repository
func ProvideMovementRepository(db *gorm.DB) stockdomain.MovementRepository {
	return stockrepo.NewGormMovementRepository(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideAssetRepository,
	ProvideEdgeRepository,
	ProvideCatalogRepository,
	ProvideLocationRepository,
	ProvideMovementRepository,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, publisher *kafka.Publisher) (*http.AssetHandler, error) {
	wire.Build(
		RepositorySet,
		http.NewAssetHandler,
	)
	return nil, nil
}
