package binance

import (
	"context"
	"sort"
	"sync"
	"time"
)

// PairSource lists the trading pair universes the catalog caches.
type PairSource interface {
	ExchangeSymbols(ctx context.Context) ([]SymbolInfo, error)
	MarginPairs(ctx context.Context) ([]MarginPair, error)
	IsolatedPairs(ctx context.Context) ([]MarginPair, error)
}

// Pair is a normalized trading pair: Asset quoted in RefAsset.
type Pair struct {
	Symbol   string
	Asset    string
	RefAsset string
}

type pairListing struct {
	pairs      []Pair
	lastUpdate time.Time
}

// Catalog caches the exchange's pair listings so that per-pair sync lanes do
// not refetch the same universe. Listings refresh after the TTL elapses.
type Catalog struct {
	src PairSource
	ttl time.Duration

	mutex    sync.Mutex
	spot     pairListing
	margin   pairListing
	isolated pairListing
}

// NewCatalog creates a catalog over the given source. Listings are cached
// for an hour, which comfortably covers one sync run.
func NewCatalog(src PairSource) *Catalog {
	return &Catalog{
		src: src,
		ttl: time.Hour,
	}
}

// SpotPairs returns every tradable spot pair.
func (c *Catalog) SpotPairs(ctx context.Context) ([]Pair, error) {
	return c.cached(&c.spot, func() ([]Pair, error) {
		symbols, err := c.src.ExchangeSymbols(ctx)
		if err != nil {
			return nil, err
		}
		pairs := make([]Pair, 0, len(symbols))
		for _, s := range symbols {
			pairs = append(pairs, Pair{Symbol: s.Symbol, Asset: s.BaseAsset, RefAsset: s.QuoteAsset})
		}
		return pairs, nil
	})
}

// CrossMarginPairs returns every cross margin pair.
func (c *Catalog) CrossMarginPairs(ctx context.Context) ([]Pair, error) {
	return c.cached(&c.margin, func() ([]Pair, error) {
		listed, err := c.src.MarginPairs(ctx)
		if err != nil {
			return nil, err
		}
		return normalizeMarginPairs(listed), nil
	})
}

// IsolatedMarginPairs returns every isolated margin pair enabled for the
// account.
func (c *Catalog) IsolatedMarginPairs(ctx context.Context) ([]Pair, error) {
	return c.cached(&c.isolated, func() ([]Pair, error) {
		listed, err := c.src.IsolatedPairs(ctx)
		if err != nil {
			return nil, err
		}
		return normalizeMarginPairs(listed), nil
	})
}

// MarginAssets returns the deduplicated, sorted set of assets appearing on
// either side of a cross margin pair.
func (c *Catalog) MarginAssets(ctx context.Context) ([]string, error) {
	pairs, err := c.CrossMarginPairs(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var assets []string
	for _, p := range pairs {
		for _, asset := range []string{p.Asset, p.RefAsset} {
			if !seen[asset] {
				seen[asset] = true
				assets = append(assets, asset)
			}
		}
	}
	sort.Strings(assets)
	return assets, nil
}

// cached returns the listing when fresh, refreshing it through fetch
// otherwise. Errors are not cached.
func (c *Catalog) cached(listing *pairListing, fetch func() ([]Pair, error)) ([]Pair, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	needsUpdate := listing.lastUpdate.IsZero() || now.Sub(listing.lastUpdate) > c.ttl
	if !needsUpdate {
		return listing.pairs, nil
	}

	pairs, err := fetch()
	if err != nil {
		return nil, err
	}
	listing.pairs = pairs
	listing.lastUpdate = now
	return pairs, nil
}

func normalizeMarginPairs(listed []MarginPair) []Pair {
	pairs := make([]Pair, 0, len(listed))
	for _, p := range listed {
		pairs = append(pairs, Pair{Symbol: p.Symbol, Asset: p.Base, RefAsset: p.Quote})
	}
	return pairs
}
