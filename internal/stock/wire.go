//go:build wireinject
// +build wireinject

package stock

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/halvard/stockledger/internal/stock/delivery/http"
	"github.com/halvard/stockledger/internal/stock/domain"
	"github.com/halvard/stockledger/internal/stock/repository"
	"github.com/halvard/stockledger/kafka"
)

// ProvideStockRepository provides the stock repository
func ProvideStockRepository(db *gorm.DB) domain.StockRepository {
	return repository.NewGormStockRepository(db)
}

// ProvideMovementRepository provides the movement repository
func ProvideMovementRepository(db *gorm.DB) domain.MovementRepository {
	return repository.NewGormMovementRepository(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideStockRepository,
	ProvideMovementRepository,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, publisher *kafka.Publisher) (*http.StockHandler, error) {
	wire.Build(
		RepositorySet,
		http.NewStockHandler,
	)
	return nil, nil
}
