package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"gorm.io/gorm"

	"github.com/halvard/stockledger/config"
	assetHTTP "github.com/halvard/stockledger/internal/asset/delivery/http"
	assetdomain "github.com/halvard/stockledger/internal/asset/domain"
	assetrepo "github.com/halvard/stockledger/internal/asset/repository"
	catalogHTTP "github.com/halvard/stockledger/internal/catalog/delivery/http"
	catalogdomain "github.com/halvard/stockledger/internal/catalog/domain"
	catalogrepo "github.com/halvard/stockledger/internal/catalog/repository"
	locationHTTP "github.com/halvard/stockledger/internal/location/delivery/http"
	locationdomain "github.com/halvard/stockledger/internal/location/domain"
	locationrepo "github.com/halvard/stockledger/internal/location/repository"
	reportingHTTP "github.com/halvard/stockledger/internal/reporting/delivery/http"
	reportingrepo "github.com/halvard/stockledger/internal/reporting/repository"
	reportingquery "github.com/halvard/stockledger/internal/reporting/usecase/query"
	stockHTTP "github.com/halvard/stockledger/internal/stock/delivery/http"
	stockdomain "github.com/halvard/stockledger/internal/stock/domain"
	stockrepo "github.com/halvard/stockledger/internal/stock/repository"
	"github.com/halvard/stockledger/kafka"
	"github.com/halvard/stockledger/pkg/database"
	"github.com/halvard/stockledger/pkg/logger"
	"github.com/halvard/stockledger/pkg/tracing"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Starting stock ledger service")

	tp, err := tracing.InitTracer(cfg.ServiceName)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Tracing disabled, continuing without exporter")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Warn().Err(err).Msg("Failed to shut down tracer")
			}
		}()
	}

	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	if err := db.AutoMigrate(
		&locationdomain.Location{},
		&catalogdomain.CatalogItem{},
		&stockdomain.StockRecord{},
		&stockdomain.Movement{},
		&assetdomain.Asset{},
		&assetdomain.InstallationEdge{},
	); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	var publisher *kafka.Publisher
	if cfg.Kafka.Enabled {
		publisher, err = kafka.NewPublisher(cfg.Kafka.Brokers)
		if err != nil {
			logger.Logger.Fatal().Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("Failed to connect to kafka")
		}
		defer publisher.Close()
		logger.Logger.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("Kafka publisher connected")
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		defer redisClient.Close()
		logger.Logger.Info().Str("addr", cfg.Redis.Addr).Msg("Redis report cache enabled")
	}

	router := buildRouter(db, sqlDB, publisher, redisClient)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: c.Handler(router),
	}

	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Forced shutdown")
	}
}

func buildRouter(db *gorm.DB, sqlDB *sql.DB, publisher *kafka.Publisher, redisClient *redis.Client) *mux.Router {
	locations := locationrepo.NewGormLocationRepository(db)
	catalog := catalogrepo.NewGormCatalogRepository(db)
	stocks := stockrepo.NewGormStockRepository(db)
	movements := stockrepo.NewGormMovementRepository(db)
	assets := assetrepo.NewGormAssetRepository(db)
	edges := assetrepo.NewGormEdgeRepository(db)
	reports := reportingrepo.NewGormReportRepository(db)

	router := mux.NewRouter()

	locationHTTP.NewLocationHandler(locations).RegisterRoutes(router)
	catalogHTTP.NewCatalogHandler(catalog).RegisterRoutes(router)
	stockHTTP.NewStockHandler(stocks, movements, publisher).RegisterRoutes(router)
	assetHTTP.NewAssetHandler(assets, edges, catalog, locations, movements, publisher).RegisterRoutes(router)
	reportingHTTP.NewReportHandler(
		reportingquery.NewValuationHandler(reports),
		reportingquery.NewValuationByCategoryHandler(reports),
		reportingquery.NewLowStockHandler(reports),
		reportingquery.NewMovementsByTypeHandler(movements),
		reportingquery.NewAssetHistoryHandler(assets, movements),
		redisClient,
	).RegisterRoutes(router)

	router.HandleFunc("/health", healthHandler(sqlDB)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler())

	return router
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.Logger.Error().Err(err).Msg("Health check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	}
}
