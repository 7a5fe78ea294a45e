package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	DBConn        string
	LogLevel      string
	SearchTimeout time.Duration
	SweepSchedule string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBConn:        getEnv("DB_CONN", "host=localhost port=5432 user=test password=test dbname=expenses sslmode=disable"),
		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		SweepSchedule: getEnv("STALE_SWEEP_SCHEDULE", "0 6 * * *"),
	}

	timeout, err := time.ParseDuration(getEnv("FORECAST_SEARCH_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FORECAST_SEARCH_TIMEOUT: %w", err)
	}
	cfg.SearchTimeout = timeout

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.SearchTimeout <= 0 {
		return nil, fmt.Errorf("FORECAST_SEARCH_TIMEOUT must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
