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

type loanCall struct {
	asset    string
	symbol   string
	page     int
	start    int64
	archived bool
}

// TestCrossMarginLoansArchivedThenLive drives one asset through both loan
// history partitions: the walk drains the archive first, then recomputes its
// cursor from the committed rows and restarts against live history.
func TestCrossMarginLoansArchivedThenLive(t *testing.T) {
	const archivedMillis = int64(1489000000000)
	liveMillis := testNow.UnixMilli() - 1000000

	var calls []loanCall
	api := &fakeAPI{
		marginPairs: func(ctx context.Context) ([]binance.MarginPair, error) {
			return []binance.MarginPair{{Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT"}}, nil
		},
		marginLoans: func(ctx context.Context, asset, isolatedSymbol string, q binance.PageQuery) ([]binance.MarginLoan, error) {
			calls = append(calls, loanCall{asset: asset, symbol: isolatedSymbol, page: q.Page, start: q.StartTime, archived: q.Archived})
			if asset != "BTC" {
				return nil, nil
			}
			switch {
			case q.Archived && q.Page == 1:
				return []binance.MarginLoan{
					{TxID: 1, Asset: "BTC", Principal: decimal.NewFromInt(1), Timestamp: archivedMillis, Status: binance.StatusConfirmed},
					{TxID: 2, Asset: "BTC", Principal: decimal.NewFromInt(2), Timestamp: archivedMillis + 5000, Status: "FAILED"},
				}, nil
			case !q.Archived && q.Page == 1 && q.StartTime > store.AccountLaunchMillis+1000:
				return []binance.MarginLoan{
					{TxID: 3, Asset: "BTC", Principal: decimal.NewFromInt(3), Timestamp: liveMillis, Status: binance.StatusConfirmed},
				}, nil
			default:
				return nil, nil
			}
		},
	}
	s, st := newTestSyncer(t, api)

	require.NoError(t, s.SyncCrossMarginLoans(context.Background()))

	// BTC: archived pages 1 and 2, then live pages 1 and 2. USDT: one empty
	// archived page, one empty live page.
	require.Len(t, calls, 6)

	assert.Equal(t, loanCall{asset: "BTC", page: 1, start: store.AccountLaunchMillis + 1000, archived: true}, calls[0])
	assert.Equal(t, loanCall{asset: "BTC", page: 2, start: store.AccountLaunchMillis + 1000, archived: true}, calls[1])

	// The live phase resumes from the archived row that was actually
	// committed, not from the rejected one.
	assert.Equal(t, loanCall{asset: "BTC", page: 1, start: archivedMillis + 1000, archived: false}, calls[2])
	assert.Equal(t, loanCall{asset: "BTC", page: 2, start: archivedMillis + 1000, archived: false}, calls[3])

	assert.Equal(t, loanCall{asset: "USDT", page: 1, start: store.AccountLaunchMillis + 1000, archived: true}, calls[4])
	assert.Equal(t, loanCall{asset: "USDT", page: 1, start: store.AccountLaunchMillis + 1000, archived: false}, calls[5])

	rows, err := st.MarginLoans(store.MarginFilter{MarginType: models.MarginCross, Asset: "BTC"})
	require.NoError(t, err)
	require.Len(t, rows, 2, "only confirmed loans are persisted")
	assert.Equal(t, int64(1), rows[0].TxID)
	assert.Equal(t, int64(3), rows[1].TxID)
}

// TestCrossMarginLoansSkipRecentArchive seeds a cursor close to the current
// time so the walk starts directly against live history.
func TestCrossMarginLoansSkipRecentArchive(t *testing.T) {
	recent := testNow.UnixMilli() - 1000000

	var calls []loanCall
	api := &fakeAPI{
		marginPairs: func(ctx context.Context) ([]binance.MarginPair, error) {
			return []binance.MarginPair{{Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT"}}, nil
		},
		marginLoans: func(ctx context.Context, asset, isolatedSymbol string, q binance.PageQuery) ([]binance.MarginLoan, error) {
			calls = append(calls, loanCall{asset: asset, page: q.Page, archived: q.Archived})
			return nil, nil
		},
	}
	s, st := newTestSyncer(t, api)

	seed := models.MarginLoan{MarginType: models.MarginCross, TxID: 9, LoanMillis: recent, Asset: "BTC", Principal: decimal.NewFromInt(1)}
	require.NoError(t, store.Insert(st, &seed, store.Reject))

	require.NoError(t, s.SyncCrossMarginLoans(context.Background()))

	for _, c := range calls {
		if c.asset == "BTC" {
			assert.False(t, c.archived, "a cursor inside the live span must not trigger an archive walk")
		}
	}
}

// TestCrossMarginRepaysAdvanceOnRejectedPages feeds a page holding only a
// pending repay: nothing is persisted, yet the page count still advances.
func TestCrossMarginRepaysAdvanceOnRejectedPages(t *testing.T) {
	var pages []int
	api := &fakeAPI{
		marginPairs: func(ctx context.Context) ([]binance.MarginPair, error) {
			return []binance.MarginPair{{Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT"}}, nil
		},
		marginRepays: func(ctx context.Context, asset, isolatedSymbol string, q binance.PageQuery) ([]binance.MarginRepay, error) {
			if asset != "BTC" {
				return nil, nil
			}
			if q.Archived {
				pages = append(pages, q.Page)
				if q.Page == 1 {
					return []binance.MarginRepay{
						{TxID: 5, Asset: "BTC", Principal: decimal.NewFromInt(1), Interest: decimal.NewFromFloat(0.01), Timestamp: 1489000000000, Status: "PENDING"},
					}, nil
				}
			}
			return nil, nil
		},
	}
	s, st := newTestSyncer(t, api)

	require.NoError(t, s.SyncCrossMarginRepays(context.Background()))

	assert.Equal(t, []int{1, 2}, pages, "a fully filtered page still advances the walk")

	rows, err := st.MarginRepays(store.MarginFilter{MarginType: models.MarginCross})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestIsolatedMarginLoansWalkBothLegs(t *testing.T) {
	type scope struct {
		asset  string
		symbol string
	}
	seen := make(map[scope]int)
	api := &fakeAPI{
		isolatedPairs: func(ctx context.Context) ([]binance.MarginPair, error) {
			return []binance.MarginPair{{Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT"}}, nil
		},
		marginLoans: func(ctx context.Context, asset, isolatedSymbol string, q binance.PageQuery) ([]binance.MarginLoan, error) {
			seen[scope{asset: asset, symbol: isolatedSymbol}]++
			return nil, nil
		},
	}
	s, _ := newTestSyncer(t, api)

	require.NoError(t, s.SyncIsolatedMarginLoans(context.Background()))

	assert.Contains(t, seen, scope{asset: "BTC", symbol: "BTCUSDT"})
	assert.Contains(t, seen, scope{asset: "USDT", symbol: "BTCUSDT"})
	assert.Len(t, seen, 2)
}

func TestCrossMarginInterestsSingleAccountWideStream(t *testing.T) {
	var symbols []string
	api := &fakeAPI{
		marginInterests: func(ctx context.Context, isolatedSymbol string, q binance.PageQuery) ([]binance.MarginInterest, error) {
			symbols = append(symbols, isolatedSymbol)
			if !q.Archived && q.Page == 1 {
				return []binance.MarginInterest{
					{Asset: "BNB", Interest: decimal.NewFromFloat(0.002), InterestAccuredTime: 1600000000000, Type: "ON_BORROW"},
				}, nil
			}
			return nil, nil
		},
	}
	s, st := newTestSyncer(t, api)

	require.NoError(t, s.SyncCrossMarginInterests(context.Background()))

	for _, symbol := range symbols {
		assert.Empty(t, symbol, "the cross margin stream never scopes by symbol")
	}

	rows, err := st.MarginInterests(store.InterestFilter{MarginType: models.MarginCross})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ON_BORROW", rows[0].InterestType)
	assert.Equal(t, int64(1600000000000), rows[0].InterestMillis)
	assert.Empty(t, rows[0].Symbol)
}

func TestIsolatedMarginInterestsPerSymbol(t *testing.T) {
	var symbols []string
	api := &fakeAPI{
		isolatedPairs: func(ctx context.Context) ([]binance.MarginPair, error) {
			return []binance.MarginPair{
				{Symbol: "BTCUSDT", Base: "BTC", Quote: "USDT"},
				{Symbol: "ETHUSDT", Base: "ETH", Quote: "USDT"},
			}, nil
		},
		marginInterests: func(ctx context.Context, isolatedSymbol string, q binance.PageQuery) ([]binance.MarginInterest, error) {
			symbols = append(symbols, isolatedSymbol)
			return nil, nil
		},
	}
	s, _ := newTestSyncer(t, api)

	require.NoError(t, s.SyncIsolatedMarginInterests(context.Background()))

	assert.Contains(t, symbols, "BTCUSDT")
	assert.Contains(t, symbols, "ETHUSDT")
	for _, symbol := range symbols {
		assert.NotEmpty(t, symbol)
	}
}
