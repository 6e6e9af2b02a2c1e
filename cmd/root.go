package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wnt/binwatch/internal/binance"
	"github.com/wnt/binwatch/internal/config"
	"github.com/wnt/binwatch/internal/logger"
	"github.com/wnt/binwatch/internal/store"
	"github.com/wnt/binwatch/internal/syncer"
)

var (
	envFile string
	account string
)

var rootCmd = &cobra.Command{
	Use:   "binwatch",
	Short: "Incremental synchronization of exchange account activity into a local ledger",
	Long: `binwatch walks the activity history of a Binance account (trades, transfers,
deposits, withdrawals, dividends, dust conversions, margin loans, repays,
interests and lending records) and persists it into a local database.

Every run resumes from the records already stored, so repeated runs only
fetch what happened since the last one.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVar(&account, "account", "", "Account name, overrides ACCOUNT_NAME")
}

// loadConfig loads the environment file, the configuration and the logger
// shared by every subcommand.
func loadConfig() (config.Config, zerolog.Logger, error) {
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("No .env file found at %s, using environment variables", envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	if account != "" {
		cfg.AccountName = account
	}

	lg := logger.WithAccount(logger.New(cfg.LogLevel), cfg.AccountName)
	return cfg, lg, nil
}

// openStore opens the account database described by the configuration.
func openStore(cfg config.Config, lg zerolog.Logger) (*store.Store, error) {
	opts := store.Options{
		Driver: cfg.DBDriver,
		Logger: lg,
	}
	switch cfg.DBDriver {
	case store.DriverPostgres:
		opts.DSN = cfg.PostgresDSN()
	default:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		opts.Path = cfg.SQLitePath()
	}
	return store.Open(opts)
}

// buildSyncer assembles the exchange client, the rate limit guard and the
// syncer on top of an open store.
func buildSyncer(cfg config.Config, lg zerolog.Logger, st *store.Store) (*syncer.Syncer, error) {
	burst := int(cfg.RequestsPerSecond * 2)
	if burst < 1 {
		burst = 1
	}
	options := []binance.Option{
		binance.WithLogger(lg),
		binance.WithRateLimit(cfg.RequestsPerSecond, burst),
		binance.WithTimeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second),
	}
	if cfg.BaseURL != "" {
		options = append(options, binance.WithBaseURL(cfg.BaseURL))
	}

	client, err := binance.NewClient(cfg.APIKey, cfg.APISecret, options...)
	if err != nil {
		return nil, err
	}

	return syncer.New(client, st, binance.NewGuard(lg), lg, syncer.Options{
		DayJump:      cfg.DayJump,
		TradeWorkers: cfg.TradeWorkers,
	})
}
