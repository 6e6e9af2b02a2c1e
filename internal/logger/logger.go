package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New creates and configures a new zerolog logger
func New(logLevel string) zerolog.Logger {
	// Set global log level
	level, err := zerolog.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure console writer for human-readable output in development
	if os.Getenv("API_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Create structured logger with common fields
	logger := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", "binwatch").
		Logger()

	return logger
}

// WithAccount adds the account name to logger context
func WithAccount(logger zerolog.Logger, account string) zerolog.Logger {
	return logger.With().Str("account", account).Logger()
}

// WithStream adds the stream label to logger context
func WithStream(logger zerolog.Logger, stream string) zerolog.Logger {
	return logger.With().Str("stream", stream).Logger()
}

// WithSymbol adds the trading symbol to logger context
func WithSymbol(logger zerolog.Logger, symbol string) zerolog.Logger {
	return logger.With().Str("symbol", symbol).Logger()
}
