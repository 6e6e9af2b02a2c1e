package syncer

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnt/binwatch/internal/binance"
	"github.com/wnt/binwatch/internal/models"
	"github.com/wnt/binwatch/internal/store"
)

// tradeHistory simulates the per-symbol trade endpoint over a fixed id range.
func tradeHistory(total int64) func(symbol string, fromID int64, limit int) []binance.Trade {
	return func(symbol string, fromID int64, limit int) []binance.Trade {
		var batch []binance.Trade
		for id := fromID; id < total && len(batch) < limit; id++ {
			batch = append(batch, binance.Trade{
				Symbol:          symbol,
				ID:              id,
				Price:           decimal.NewFromInt(100),
				Qty:             decimal.NewFromInt(1),
				Commission:      decimal.NewFromFloat(0.001),
				CommissionAsset: "BNB",
				Time:            1500000000000 + id,
				IsBuyer:         id%2 == 0,
			})
		}
		return batch
	}
}

func TestSyncSpotTradesWalksFullHistory(t *testing.T) {
	history := tradeHistory(2500)
	var calls []int64
	api := &fakeAPI{
		exchangeSymbols: func(ctx context.Context) ([]binance.SymbolInfo, error) {
			return []binance.SymbolInfo{{Symbol: "BTCUSDT", BaseAsset: "BTC", QuoteAsset: "USDT"}}, nil
		},
		spotTrades: func(ctx context.Context, symbol string, fromID int64, limit int) ([]binance.Trade, error) {
			calls = append(calls, fromID)
			return history(symbol, fromID, limit), nil
		},
	}
	s, st := newTestSyncer(t, api)

	require.NoError(t, s.SyncAllSpotTrades(context.Background()))

	// Full batches keep the walk going, the short final batch ends it.
	assert.Equal(t, []int64{0, 1000, 2000}, calls)

	rows, err := st.Trades(store.TradeFilter{Market: models.MarketSpot, Asset: "BTC", RefAsset: "USDT"})
	require.NoError(t, err)
	require.Len(t, rows, 2500)
	assert.Equal(t, int64(2499), st.MaxTradeID(models.MarketSpot, "BTC", "USDT"))

	// No gaps: ids run contiguously from 0.
	for i, row := range rows {
		if row.TradeID != int64(i) {
			t.Fatalf("expected trade id %d at position %d, got %d", i, i, row.TradeID)
		}
	}
}

func TestSyncSpotTradesResumesPastStoredMax(t *testing.T) {
	history := tradeHistory(2500)
	var calls []int64
	api := &fakeAPI{
		exchangeSymbols: func(ctx context.Context) ([]binance.SymbolInfo, error) {
			return []binance.SymbolInfo{{Symbol: "BTCUSDT", BaseAsset: "BTC", QuoteAsset: "USDT"}}, nil
		},
		spotTrades: func(ctx context.Context, symbol string, fromID int64, limit int) ([]binance.Trade, error) {
			calls = append(calls, fromID)
			return history(symbol, fromID, limit), nil
		},
	}
	s, st := newTestSyncer(t, api)

	require.NoError(t, s.SyncAllSpotTrades(context.Background()))
	calls = nil

	require.NoError(t, s.SyncAllSpotTrades(context.Background()))
	assert.Equal(t, []int64{2500}, calls, "second run must resume after the stored maximum")

	rows, err := st.Trades(store.TradeFilter{Market: models.MarketSpot})
	require.NoError(t, err)
	assert.Len(t, rows, 2500, "replaying must not duplicate trades")
}

func TestSyncSpotTradesToleratesUnknownSymbols(t *testing.T) {
	history := tradeHistory(3)
	api := &fakeAPI{
		exchangeSymbols: func(ctx context.Context) ([]binance.SymbolInfo, error) {
			return []binance.SymbolInfo{
				{Symbol: "GHOSTUSDT", BaseAsset: "GHOST", QuoteAsset: "USDT"},
				{Symbol: "BTCUSDT", BaseAsset: "BTC", QuoteAsset: "USDT"},
			}, nil
		},
		spotTrades: func(ctx context.Context, symbol string, fromID int64, limit int) ([]binance.Trade, error) {
			if symbol == "GHOSTUSDT" {
				return nil, &binance.APIError{StatusCode: 400, Code: -1121, Message: "Invalid symbol."}
			}
			return history(symbol, fromID, limit), nil
		},
	}
	s, st := newTestSyncer(t, api)

	require.NoError(t, s.SyncAllSpotTrades(context.Background()))

	rows, err := st.Trades(store.TradeFilter{Market: models.MarketSpot})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, "BTC", row.Asset)
	}
}

func TestSyncMarginTradesTagMarketAndWallet(t *testing.T) {
	history := tradeHistory(2)
	type call struct {
		symbol   string
		isolated bool
	}
	var calls []call
	api := &fakeAPI{
		marginPairs: func(ctx context.Context) ([]binance.MarginPair, error) {
			return []binance.MarginPair{{Symbol: "BNBBTC", Base: "BNB", Quote: "BTC"}}, nil
		},
		isolatedPairs: func(ctx context.Context) ([]binance.MarginPair, error) {
			return []binance.MarginPair{{Symbol: "ETHUSDT", Base: "ETH", Quote: "USDT"}}, nil
		},
		marginTrades: func(ctx context.Context, symbol string, isolated bool, fromID int64, limit int) ([]binance.Trade, error) {
			calls = append(calls, call{symbol: symbol, isolated: isolated})
			return history(symbol, fromID, limit), nil
		},
	}
	s, st := newTestSyncer(t, api)

	require.NoError(t, s.SyncAllCrossMarginTrades(context.Background()))
	require.NoError(t, s.SyncAllIsolatedMarginTrades(context.Background()))

	require.Len(t, calls, 2)
	assert.Equal(t, call{symbol: "BNBBTC", isolated: false}, calls[0])
	assert.Equal(t, call{symbol: "ETHUSDT", isolated: true}, calls[1])

	cross, err := st.Trades(store.TradeFilter{Market: models.MarketCrossMargin})
	require.NoError(t, err)
	assert.Len(t, cross, 2)

	isolated, err := st.Trades(store.TradeFilter{Market: models.MarketIsolatedMargin})
	require.NoError(t, err)
	assert.Len(t, isolated, 2)
	assert.Equal(t, "ETH", isolated[0].Asset)
	assert.Equal(t, "USDT", isolated[0].RefAsset)
}

func TestTradeCursorsAreIndependentPerPair(t *testing.T) {
	perSymbol := map[string]int64{"BTCUSDT": 5, "ETHUSDT": 12}
	api := &fakeAPI{
		exchangeSymbols: func(ctx context.Context) ([]binance.SymbolInfo, error) {
			return []binance.SymbolInfo{
				{Symbol: "BTCUSDT", BaseAsset: "BTC", QuoteAsset: "USDT"},
				{Symbol: "ETHUSDT", BaseAsset: "ETH", QuoteAsset: "USDT"},
			}, nil
		},
		spotTrades: func(ctx context.Context, symbol string, fromID int64, limit int) ([]binance.Trade, error) {
			return tradeHistory(perSymbol[symbol])(symbol, fromID, limit), nil
		},
	}
	s, st := newTestSyncer(t, api)

	require.NoError(t, s.SyncAllSpotTrades(context.Background()))

	assert.Equal(t, int64(4), st.MaxTradeID(models.MarketSpot, "BTC", "USDT"))
	assert.Equal(t, int64(11), st.MaxTradeID(models.MarketSpot, "ETH", "USDT"))
}
