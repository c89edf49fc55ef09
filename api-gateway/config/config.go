package config

import (
	"os"
	"strings"
	"time"
)

// UpstreamConfig describes the ledger service instances behind the gateway
type UpstreamConfig struct {
	Name        string
	Instances   []string
	Timeout     time.Duration
	HealthCheck string
}

// GatewayConfig holds the gateway configuration
type GatewayConfig struct {
	Port     string
	Upstream UpstreamConfig
}

// LoadConfig loads the gateway configuration from environment variables.
// LEDGER_URLS takes a comma-separated list when the ledger runs more than
// one instance.
func LoadConfig() *GatewayConfig {
	return &GatewayConfig{
		Port: getEnv("GATEWAY_PORT", "8000"),
		Upstream: UpstreamConfig{
			Name:        "stock-ledger",
			Instances:   splitURLs(getEnv("LEDGER_URLS", "http://localhost:8080")),
			Timeout:     30 * time.Second,
			HealthCheck: "/health",
		},
	}
}

func splitURLs(value string) []string {
	var urls []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			urls = append(urls, strings.TrimSuffix(trimmed, "/"))
		}
	}
	return urls
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
