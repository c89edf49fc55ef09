package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/halvard/stockledger/pkg/database"
)

// Config holds all runtime configuration for the ledger service
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string
	HTTPPort    string

	Database database.Config
	Kafka    KafkaConfig
	Redis    RedisConfig
}

// KafkaConfig holds the movement event publisher settings
type KafkaConfig struct {
	Enabled bool
	Brokers []string
}

// RedisConfig holds redis settings (report cache and api-gateway)
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
}

// Load reads configuration from .env (if present) and environment variables
func Load() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	return &Config{
		ServiceName: getEnv("OTEL_SERVICE_NAME", "stock-ledger"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		Database: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "ledgerdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Enabled: getEnv("KAFKA_ENABLED", "false") == "true",
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		},
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ENABLED", "false") == "true",
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
	}
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
