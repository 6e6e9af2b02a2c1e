package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all configuration for binwatch
type Config struct {
	// Exchange API configuration
	APIKey    string
	APISecret string
	BaseURL   string

	// Account configuration
	AccountName string
	DataDir     string

	// Database configuration
	DBDriver   string
	DBName     string
	DBHost     string
	DBUser     string
	DBPassword string
	DBPort     string
	DBSSLMode  string

	// Sync configuration
	DayJump      float64
	TradeWorkers int

	// Request configuration
	RequestsPerSecond     float64
	RequestTimeoutSeconds int

	// Logging configuration
	LogLevel string

	// Metrics configuration
	MetricsPort int
}

// Load reads configuration from environment variables and validates it
func Load() (Config, error) {
	cfg := Config{
		APIKey:      getEnv("BINANCE_API_KEY", ""),
		APISecret:   getEnv("BINANCE_API_SECRET", ""),
		BaseURL:     getEnv("BINANCE_BASE_URL", ""),
		AccountName: getEnv("ACCOUNT_NAME", "default"),
		DataDir:     getEnv("DATA_DIR", ""),
		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DBName:      getEnv("DB_NAME", ""),
		DBHost:      getEnv("DB_HOST", ""),
		DBUser:      getEnv("DB_USER", ""),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBSSLMode:   getEnv("DB_SSL_MODE", "disable"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	var err error
	cfg.DayJump, err = parseFloatEnv("DAY_JUMP", 90)
	if err != nil {
		return cfg, fmt.Errorf("invalid DAY_JUMP: %w", err)
	}

	cfg.TradeWorkers, err = parseIntEnv("TRADE_WORKERS", 1)
	if err != nil {
		return cfg, fmt.Errorf("invalid TRADE_WORKERS: %w", err)
	}

	cfg.RequestsPerSecond, err = parseFloatEnv("REQUESTS_PER_SECOND", 8)
	if err != nil {
		return cfg, fmt.Errorf("invalid REQUESTS_PER_SECOND: %w", err)
	}

	cfg.RequestTimeoutSeconds, err = parseIntEnv("REQUEST_TIMEOUT_SECONDS", 30)
	if err != nil {
		return cfg, fmt.Errorf("invalid REQUEST_TIMEOUT_SECONDS: %w", err)
	}

	cfg.MetricsPort, err = parseIntEnv("METRICS_PORT", 9100)
	if err != nil {
		return cfg, fmt.Errorf("invalid METRICS_PORT: %w", err)
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".binwatch")
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks that the configuration is valid
func (c Config) validate() error {
	if c.AccountName == "" {
		return fmt.Errorf("ACCOUNT_NAME must not be empty")
	}

	switch c.DBDriver {
	case "sqlite":
	case "postgres":
		if c.DBName == "" {
			return fmt.Errorf("DB_NAME is required when DB_DRIVER is postgres")
		}
		if c.DBHost == "" {
			return fmt.Errorf("DB_HOST is required when DB_DRIVER is postgres")
		}
		if c.DBUser == "" {
			return fmt.Errorf("DB_USER is required when DB_DRIVER is postgres")
		}
	default:
		return fmt.Errorf("invalid DB_DRIVER: %s (must be one of: sqlite, postgres)", c.DBDriver)
	}

	if c.DayJump <= 0 || c.DayJump > 90 {
		return fmt.Errorf("DAY_JUMP must be between 0 and 90 days")
	}

	if c.TradeWorkers < 1 {
		return fmt.Errorf("TRADE_WORKERS must be at least 1")
	}

	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("REQUESTS_PER_SECOND must be positive")
	}

	if c.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be at least 1")
	}

	validLogLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
		"panic": true,
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid LOG_LEVEL: %s (must be one of: trace, debug, info, warn, error, fatal, panic)", c.LogLevel)
	}

	return nil
}

// SQLitePath returns the database file used for the configured account.
// Each account gets its own file so that several accounts never collide.
func (c Config) SQLitePath() string {
	return filepath.Join(c.DataDir, c.AccountName+"_db.sqlite")
}

// PostgresDSN builds the connection string for the postgres driver
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// getEnv retrieves an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv parses an integer environment variable with a default value
func parseIntEnv(key string, defaultValue int) (int, error) {
	str := os.Getenv(key)
	if str == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(str)
}

// parseFloatEnv parses a float environment variable with a default value
func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	str := os.Getenv(key)
	if str == "" {
		return defaultValue, nil
	}
	return strconv.ParseFloat(str, 64)
}
