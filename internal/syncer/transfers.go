package syncer

import (
	"context"
	"fmt"
	"strings"

	"github.com/wnt/binwatch/internal/binance"
	"github.com/wnt/binwatch/internal/models"
	"github.com/wnt/binwatch/internal/utils"
)

// universalRoutes enumerates every wallet-to-wallet route the universal
// transfer endpoint reports. Each route is its own stream with its own
// resume cursor.
var universalRoutes = []string{
	"MAIN_C2C", "MAIN_UMFUTURE", "MAIN_CMFUTURE", "MAIN_MARGIN", "MAIN_MINING",
	"C2C_MAIN", "C2C_UMFUTURE", "C2C_MINING", "C2C_MARGIN",
	"UMFUTURE_MAIN", "UMFUTURE_C2C", "UMFUTURE_MARGIN",
	"CMFUTURE_MAIN", "CMFUTURE_MARGIN",
	"MARGIN_MAIN", "MARGIN_UMFUTURE", "MARGIN_CMFUTURE", "MARGIN_MINING", "MARGIN_C2C",
	"MINING_MAIN", "MINING_UMFUTURE", "MINING_C2C", "MINING_MARGIN",
}

// SyncUniversalTransfers updates the universal transfer history. A non-empty
// routeFilter restricts the walk to routes containing it, so "MAIN" covers
// every route touching the spot wallet and "MARGIN" every route touching the
// cross margin wallet.
func (s *Syncer) SyncUniversalTransfers(ctx context.Context, routeFilter string) error {
	return s.timed("universal_transfers", func() error {
		routes := universalRoutes
		if routeFilter != "" {
			routes = utils.Filter(universalRoutes, func(route string) bool {
				return strings.Contains(route, routeFilter)
			})
		}
		for _, route := range routes {
			start := s.store.LastUniversalTransferMillis(route) + transferOffsetMillis
			err := syncPages(s, ctx, "universal_transfers", models.StreamTransfers, start,
				func(ctx context.Context, q binance.PageQuery) ([]binance.UniversalTransfer, error) {
					return s.api.UniversalTransfers(ctx, route, q)
				},
				func(transfer binance.UniversalTransfer) (models.Transfer, bool) {
					return models.Transfer{
						Kind:           models.TransferUniversal,
						TranID:         transfer.TranID,
						TransferType:   transfer.Type,
						TransferMillis: transfer.Timestamp,
						Asset:          transfer.Asset,
						Amount:         transfer.Amount,
					}, true
				})
			if err != nil {
				return fmt.Errorf("route %s: %w", route, err)
			}
		}
		return nil
	})
}

// SyncIsolatedTransfers updates the transfer history of every isolated
// margin pair.
func (s *Syncer) SyncIsolatedTransfers(ctx context.Context) error {
	return s.timed("isolated_transfers", func() error {
		pairs, err := s.listPairs(ctx, "isolated_pairs", s.catalog.IsolatedMarginPairs)
		if err != nil {
			return err
		}
		for _, pair := range pairs {
			if err := s.syncSymbolTransfers(ctx, pair.Symbol); err != nil {
				return fmt.Errorf("symbol %s: %w", pair.Symbol, err)
			}
		}
		return nil
	})
}

// syncSymbolTransfers updates the isolated transfer stream of one symbol.
func (s *Syncer) syncSymbolTransfers(ctx context.Context, symbol string) error {
	start := s.store.LastIsolatedTransferMillis(symbol) + transferOffsetMillis
	return syncPages(s, ctx, "isolated_transfers", models.StreamTransfers, start,
		func(ctx context.Context, q binance.PageQuery) ([]binance.IsolatedTransfer, error) {
			return s.api.IsolatedTransfers(ctx, symbol, q)
		},
		func(transfer binance.IsolatedTransfer) (models.Transfer, bool) {
			direction, ok := isolatedDirection(transfer)
			if !ok {
				s.log.Warn().
					Str("symbol", symbol).
					Int64("tran_id", transfer.TranID).
					Str("trans_from", transfer.TransFrom).
					Str("trans_to", transfer.TransTo).
					Msg("cannot derive transfer direction, skipping record")
				return models.Transfer{}, false
			}
			return models.Transfer{
				Kind:           models.TransferIsolated,
				TranID:         transfer.TranID,
				TransferType:   direction,
				Symbol:         symbol,
				TransferMillis: transfer.Timestamp,
				Asset:          transfer.Asset,
				Amount:         transfer.Amount,
			}, true
		})
}

// isolatedDirection derives the transfer direction from which endpoint names
// the isolated margin wallet. A record naming it on both ends or on neither
// end has no usable direction.
func isolatedDirection(transfer binance.IsolatedTransfer) (string, bool) {
	toIsolated := transfer.TransTo == binance.WalletIsolatedMargin
	fromIsolated := transfer.TransFrom == binance.WalletIsolatedMargin
	switch {
	case toIsolated && !fromIsolated:
		return models.DirectionIn, true
	case fromIsolated && !toIsolated:
		return models.DirectionOut, true
	default:
		return "", false
	}
}
