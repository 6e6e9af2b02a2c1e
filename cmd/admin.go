package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wnt/binwatch/internal/models"
	"github.com/wnt/binwatch/internal/store"
)

var resetStreams []string

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear synced streams so the next run refetches them from scratch",
	Long:  "Clear synced streams so the next run refetches them from scratch. Without --streams every stream is cleared.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lg, err := loadConfig()
		if err != nil {
			return err
		}

		kinds, err := parseStreamKinds(resetStreams)
		if err != nil {
			return err
		}

		st, err := openStore(cfg, lg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Reset(kinds...); err != nil {
			return err
		}
		lg.Info().Msg("streams reset")
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Drop every table of the account database",
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

		if err := st.DropAll(); err != nil {
			return err
		}
		lg.Info().Msg("account database purged")
		return nil
	},
}

// parseStreamKinds validates the --streams values against the known stream
// kinds. An empty list selects every stream.
func parseStreamKinds(names []string) ([]models.StreamKind, error) {
	known := make(map[models.StreamKind]bool)
	for _, kind := range store.Kinds() {
		known[kind] = true
	}

	var kinds []models.StreamKind
	for _, name := range names {
		kind := models.StreamKind(strings.TrimSpace(name))
		if !known[kind] {
			return nil, fmt.Errorf("unknown stream %q (known streams: %s)", name, knownStreamList())
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func knownStreamList() string {
	kinds := store.Kinds()
	names := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		names = append(names, string(kind))
	}
	return strings.Join(names, ", ")
}

func init() {
	resetCmd.Flags().StringSliceVar(&resetStreams, "streams", nil, "Streams to clear, comma separated (default all)")
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(purgeCmd)
}
