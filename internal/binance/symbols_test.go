package binance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePairSource struct {
	symbols       []SymbolInfo
	marginPairs   []MarginPair
	isolatedPairs []MarginPair
	exchangeErr   error

	exchangeCalls int
	marginCalls   int
	isolatedCalls int
}

func (f *fakePairSource) ExchangeSymbols(ctx context.Context) ([]SymbolInfo, error) {
	f.exchangeCalls++
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.symbols, nil
}

func (f *fakePairSource) MarginPairs(ctx context.Context) ([]MarginPair, error) {
	f.marginCalls++
	return f.marginPairs, nil
}

func (f *fakePairSource) IsolatedPairs(ctx context.Context) ([]MarginPair, error) {
	f.isolatedCalls++
	return f.isolatedPairs, nil
}

func TestCatalogCachesSpotPairs(t *testing.T) {
	src := &fakePairSource{symbols: []SymbolInfo{
		{Symbol: "BTCUSDT", BaseAsset: "BTC", QuoteAsset: "USDT"},
		{Symbol: "ETHBTC", BaseAsset: "ETH", QuoteAsset: "BTC"},
	}}
	catalog := NewCatalog(src)

	first, err := catalog.SpotPairs(context.Background())
	require.NoError(t, err)
	second, err := catalog.SpotPairs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, src.exchangeCalls, "second read must come from the cache")
	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, Pair{Symbol: "BTCUSDT", Asset: "BTC", RefAsset: "USDT"}, first[0])
}

func TestCatalogDoesNotCacheErrors(t *testing.T) {
	src := &fakePairSource{exchangeErr: errors.New("upstream down")}
	catalog := NewCatalog(src)

	_, err := catalog.SpotPairs(context.Background())
	require.Error(t, err)

	src.exchangeErr = nil
	src.symbols = []SymbolInfo{{Symbol: "BTCUSDT", BaseAsset: "BTC", QuoteAsset: "USDT"}}

	pairs, err := catalog.SpotPairs(context.Background())
	require.NoError(t, err)
	assert.Len(t, pairs, 1)
	assert.Equal(t, 2, src.exchangeCalls)
}

func TestCatalogNormalizesMarginListings(t *testing.T) {
	src := &fakePairSource{
		marginPairs:   []MarginPair{{Symbol: "BNBBTC", Base: "BNB", Quote: "BTC"}},
		isolatedPairs: []MarginPair{{Symbol: "ETHUSDT", Base: "ETH", Quote: "USDT"}},
	}
	catalog := NewCatalog(src)

	margin, err := catalog.CrossMarginPairs(context.Background())
	require.NoError(t, err)
	require.Len(t, margin, 1)
	assert.Equal(t, Pair{Symbol: "BNBBTC", Asset: "BNB", RefAsset: "BTC"}, margin[0])

	isolated, err := catalog.IsolatedMarginPairs(context.Background())
	require.NoError(t, err)
	require.Len(t, isolated, 1)
	assert.Equal(t, Pair{Symbol: "ETHUSDT", Asset: "ETH", RefAsset: "USDT"}, isolated[0])
}

func TestMarginAssetsDeduplicatedAndSorted(t *testing.T) {
	src := &fakePairSource{marginPairs: []MarginPair{
		{Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT"},
		{Symbol: "ETHUSDT", Base: "ETH", Quote: "USDT"},
		{Symbol: "ETHBTC", Base: "ETH", Quote: "BTC"},
	}}
	catalog := NewCatalog(src)

	assets, err := catalog.MarginAssets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC", "ETH", "USDT"}, assets)

	// The asset set rides on the cached pair listing.
	_, err = catalog.MarginAssets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.marginCalls)
}
