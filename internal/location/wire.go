//go:build wireinject
// +build wireinject

package location

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/halvard/stockledger/internal/location/delivery/http"
	"github.com/halvard/stockledger/internal/location/domain"
	"github.com/halvard/stockledger/internal/location/repository"
)

// ProvideLocationRepository provides the location repository
func ProvideLocationRepository(db *gorm.DB) domain.LocationRepository {
	return repository.NewGormLocationRepository(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideLocationRepository,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB) (*http.LocationHandler, error) {
	wire.Build(
		RepositorySet,
		http.NewLocationHandler,
	)
	return nil, nil
}
