package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/halvard/stockledger/api-gateway/config"
	"github.com/halvard/stockledger/api-gateway/health"
	"github.com/halvard/stockledger/api-gateway/middleware"
	"github.com/halvard/stockledger/api-gateway/proxy"
)

// RouteDefinition maps a path prefix to the ledger
type RouteDefinition struct {
	Prefix      string
	Description string
}

// Routes holds all proxied prefixes
var Routes = []RouteDefinition{
	{Prefix: "/api/locations", Description: "Location hierarchy"},
	{Prefix: "/api/catalog", Description: "SKU registry"},
	{Prefix: "/api/stock", Description: "Stock ledger"},
	{Prefix: "/api/movements", Description: "Movement log"},
	{Prefix: "/api/assets", Description: "Asset tracking"},
	{Prefix: "/api/containers", Description: "Container contents"},
	{Prefix: "/api/reports", Description: "Reporting"},
}

// SetupRoutes configures all gateway routes
func SetupRoutes(app *fiber.App, cfg *config.GatewayConfig, breaker *middleware.CircuitBreaker) {
	reverseProxy := proxy.NewReverseProxy(cfg, breaker)
	healthChecker := health.NewHealthChecker(cfg)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(healthChecker.QuickCheck())
	})

	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		status := healthChecker.CheckInstances(ctx)
		statusCode := fiber.StatusOK
		if status.Status == "unhealthy" {
			statusCode = fiber.StatusServiceUnavailable
		}
		return c.Status(statusCode).JSON(status)
	})

	app.Get("/circuit", func(c *fiber.Ctx) error {
		return c.JSON(breaker.Stats())
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Stock Ledger API Gateway",
			"routes":  Routes,
		})
	})

	for _, route := range Routes {
		group := app.Group(route.Prefix)
		group.All("/*", reverseProxy.Forward)
		app.All(route.Prefix, reverseProxy.Forward)
	}
}
