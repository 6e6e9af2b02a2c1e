package syncer

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/wnt/binwatch/internal/binance"
	"github.com/wnt/binwatch/internal/metrics"
	"github.com/wnt/binwatch/internal/models"
)

// tradeFetch retrieves one batch of trades for a symbol starting at fromID.
type tradeFetch func(ctx context.Context, symbol string, fromID int64, limit int) ([]binance.Trade, error)

// SyncAllSpotTrades walks every listed spot pair and fetches the trades
// executed after the highest trade id already stored for that pair.
func (s *Syncer) SyncAllSpotTrades(ctx context.Context) error {
	return s.timed("spot_trades", func() error {
		pairs, err := s.listPairs(ctx, "exchange_info", s.catalog.SpotPairs)
		if err != nil {
			return err
		}
		return s.syncTradeLanes(ctx, models.MarketSpot, pairs, s.api.SpotTrades)
	})
}

// SyncAllCrossMarginTrades walks every cross margin pair.
func (s *Syncer) SyncAllCrossMarginTrades(ctx context.Context) error {
	return s.timed("cross_margin_trades", func() error {
		pairs, err := s.listPairs(ctx, "margin_pairs", s.catalog.CrossMarginPairs)
		if err != nil {
			return err
		}
		fetch := func(ctx context.Context, symbol string, fromID int64, limit int) ([]binance.Trade, error) {
			return s.api.MarginTrades(ctx, symbol, false, fromID, limit)
		}
		return s.syncTradeLanes(ctx, models.MarketCrossMargin, pairs, fetch)
	})
}

// SyncAllIsolatedMarginTrades walks every isolated margin pair.
func (s *Syncer) SyncAllIsolatedMarginTrades(ctx context.Context) error {
	return s.timed("isolated_margin_trades", func() error {
		pairs, err := s.listPairs(ctx, "isolated_pairs", s.catalog.IsolatedMarginPairs)
		if err != nil {
			return err
		}
		fetch := func(ctx context.Context, symbol string, fromID int64, limit int) ([]binance.Trade, error) {
			return s.api.MarginTrades(ctx, symbol, true, fromID, limit)
		}
		return s.syncTradeLanes(ctx, models.MarketIsolatedMargin, pairs, fetch)
	})
}

// listPairs resolves a pair listing through the rate limit guard. The catalog
// caches listings, so most calls never reach the network.
func (s *Syncer) listPairs(ctx context.Context, op string, list func(context.Context) ([]binance.Pair, error)) ([]binance.Pair, error) {
	var pairs []binance.Pair
	err := s.guard.Do(ctx, op, func() error {
		var err error
		pairs, err = list(ctx)
		return err
	})
	return pairs, err
}

// syncTradeLanes runs one lane per pair, at most tradeWorkers at a time.
// Lanes are independent: each owns its own id cursor and commits its own
// pages, so one failing pair does not lose the progress of the others.
func (s *Syncer) syncTradeLanes(ctx context.Context, market string, pairs []binance.Pair, fetch tradeFetch) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(s.tradeWorkers)

	for _, pair := range pairs {
		group.Go(func() error {
			metrics.TradeLanesActive.Inc()
			defer metrics.TradeLanesActive.Dec()
			return s.syncPairTrades(ctx, market, pair, fetch)
		})
	}
	return group.Wait()
}

// syncPairTrades brings the trade history of one pair up to date. Batches are
// requested from the id after the stored maximum and committed one at a time;
// a batch shorter than the request limit signals exhaustion.
func (s *Syncer) syncPairTrades(ctx context.Context, market string, pair binance.Pair, fetch tradeFetch) error {
	lastID := s.store.MaxTradeID(market, pair.Asset, pair.RefAsset)

	for {
		var batch []binance.Trade
		err := s.guard.Do(ctx, "trades", func() error {
			var err error
			batch, err = fetch(ctx, pair.Symbol, lastID+1, tradeLimit)
			return err
		})
		if binance.IsUnknownSymbol(err) {
			// Pair listings routinely include symbols the trade endpoint
			// does not know about. Never traded means nothing to fetch.
			s.log.Debug().Str("symbol", pair.Symbol).Str("market", market).Msg("symbol unknown to trade endpoint, skipping")
			return nil
		}
		if err != nil {
			return err
		}

		if len(batch) > 0 {
			rows := make([]models.Trade, 0, len(batch))
			for _, trade := range batch {
				rows = append(rows, models.Trade{
					Market:      market,
					Asset:       pair.Asset,
					RefAsset:    pair.RefAsset,
					TradeID:     trade.ID,
					TradeMillis: trade.Time,
					Quantity:    trade.Qty,
					Price:       trade.Price,
					Fee:         trade.Commission,
					FeeAsset:    trade.CommissionAsset,
					IsBuyer:     trade.IsBuyer,
				})
				if trade.ID > lastID {
					lastID = trade.ID
				}
			}
			if err := persist(s, models.StreamTrades, rows); err != nil {
				return err
			}
		}
		if len(batch) < tradeLimit {
			return nil
		}
	}
}
