package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	"github.com/halvard/stockledger/api-gateway/config"
	"github.com/halvard/stockledger/api-gateway/middleware"
	"github.com/halvard/stockledger/api-gateway/routes"
	"github.com/halvard/stockledger/pkg/logger"
	"github.com/halvard/stockledger/pkg/tracing"
)

func main() {
	serviceName := getEnv("OTEL_SERVICE_NAME", "api-gateway")
	isDevelopment := getEnv("ENVIRONMENT", "development") == "development"
	logger.Init(serviceName, isDevelopment)
	logger.SetLevel(getEnv("LOG_LEVEL", "info"))

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", getEnv("ENVIRONMENT", "development")).
		Msg("Starting API gateway")

	tp, err := tracing.InitTracer(serviceName)
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

	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: getEnv("REDIS_PASSWORD", ""),
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Logger.Warn().
			Err(err).
			Str("redis_addr", redisAddr).
			Msg("Redis unreachable, rate limiting and caching disabled")
		redisClient = nil
	} else {
		logger.Logger.Info().Str("redis_addr", redisAddr).Msg("Connected to Redis")
	}

	cfg := config.LoadConfig()
	breaker := middleware.NewCircuitBreaker(cfg.Upstream.Name, 5, 30*time.Second)

	app := fiber.New(fiber.Config{
		AppName:      "Stock Ledger API Gateway",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		ErrorHandler: errorHandler,
	})

	setupMiddleware(app, redisClient)
	routes.SetupRoutes(app, cfg, breaker)

	go func() {
		logger.Logger.Info().
			Str("port", cfg.Port).
			Strs("upstream", cfg.Upstream.Instances).
			Msg("Gateway listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to start gateway")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down gateway...")
	if err := app.Shutdown(); err != nil {
		logger.Logger.Error().Err(err).Msg("Forced shutdown")
	}
}

// setupMiddleware wires the global middleware chain. Order matters: request
// id first, then tracing so the logger can pick the trace id up, then the
// redis-backed layers.
func setupMiddleware(app *fiber.App, redisClient *redis.Client) {
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.StructuredLoggingMiddleware())

	if redisClient != nil {
		cacheConfig := middleware.DefaultCacheConfig()
		app.Use(middleware.CacheMiddleware(redisClient, cacheConfig))
		logger.Logger.Info().
			Dur("ttl", cacheConfig.DefaultTTL).
			Msg("Response caching enabled")

		app.Use(middleware.GlobalRateLimiter(redisClient))
		logger.Logger.Info().Msg("Rate limiting enabled (100 req/min)")
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "*"),
		AllowMethods:  "GET,POST,PUT,DELETE,PATCH,OPTIONS,HEAD",
		AllowHeaders:  "Origin, Content-Type, Accept, X-Request-Id, traceparent, tracestate",
		ExposeHeaders: "X-Request-Id, X-Trace-Id, X-Cache, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset",
		MaxAge:        86400,
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":      err.Error(),
		"statusCode": code,
		"path":       c.Path(),
		"method":     c.Method(),
		"requestId":  c.Get("X-Request-Id"),
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
