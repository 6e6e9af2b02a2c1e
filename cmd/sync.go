package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wnt/binwatch/internal/metrics"
	"github.com/wnt/binwatch/internal/syncer"
)

var syncScopes = []string{"all", "spot", "cross-margin", "isolated-margin", "lending"}

var syncCmd = &cobra.Command{
	Use:       "sync [scope]",
	Short:     "Fetch the account activity recorded since the last run",
	Long:      "Fetch the account activity recorded since the last run. The optional scope restricts the sync to one wallet: spot, cross-margin, isolated-margin or lending. Without a scope every wallet is synced.",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: syncScopes,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := openStore(cfg, lg)
		if err != nil {
			return err
		}
		defer st.Close()

		s, err := buildSyncer(cfg, lg, st)
		if err != nil {
			return err
		}

		metrics.Serve(cfg.MetricsPort, lg)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		scope := "all"
		if len(args) == 1 {
			scope = args[0]
		}
		if err := runScope(ctx, s, scope); err != nil {
			return err
		}

		lg.Info().Str("scope", scope).Msg("account in sync")
		return nil
	},
}

func runScope(ctx context.Context, s *syncer.Syncer, scope string) error {
	switch scope {
	case "all":
		return s.SyncAll(ctx)
	case "spot":
		return s.SyncSpot(ctx)
	case "cross-margin":
		return s.SyncCrossMargin(ctx)
	case "isolated-margin":
		return s.SyncIsolatedMargin(ctx)
	case "lending":
		return s.SyncLending(ctx)
	default:
		return fmt.Errorf("unknown sync scope %q (must be one of: all, spot, cross-margin, isolated-margin, lending)", scope)
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
