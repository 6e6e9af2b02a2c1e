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

func TestSyncLendingPurchasesKeepsOnlySuccessful(t *testing.T) {
	api := &fakeAPI{
		lendingPurchases: func(ctx context.Context, lendingType string, q binance.PageQuery) ([]binance.LendingPurchase, error) {
			if lendingType != models.LendingDaily || q.Page > 1 {
				return nil, nil
			}
			return []binance.LendingPurchase{
				{PurchaseID: 1, LendingType: models.LendingDaily, Asset: "USDT", Amount: decimal.NewFromInt(100), CreateTime: 1600000000000, Status: binance.StatusSuccess},
				{PurchaseID: 2, LendingType: models.LendingDaily, Asset: "USDT", Amount: decimal.NewFromInt(50), CreateTime: 1600000001000, Status: "CREATED"},
			}, nil
		},
	}
	s, st := newTestSyncer(t, api)

	require.NoError(t, s.SyncLendingPurchases(context.Background()))

	rows, err := st.LendingPurchases(store.LendingFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].PurchaseID)
	assert.Equal(t, models.LendingDaily, rows[0].LendingType)
}

func TestSyncLendingRedemptionsTagWalkedType(t *testing.T) {
	// Redemption records carry no lending type of their own, so the stored
	// rows take it from the walk.
	api := &fakeAPI{
		lendingRedemptions: func(ctx context.Context, lendingType string, q binance.PageQuery) ([]binance.LendingRedemption, error) {
			if lendingType != models.LendingActivity || q.Page > 1 {
				return nil, nil
			}
			return []binance.LendingRedemption{
				{Asset: "BUSD", Amount: decimal.NewFromInt(200), CreateTime: 1600000000000, Status: binance.StatusPaid},
				{Asset: "BUSD", Amount: decimal.NewFromInt(10), CreateTime: 1600000002000, Status: "CREATED"},
			}, nil
		},
	}
	s, st := newTestSyncer(t, api)

	require.NoError(t, s.SyncLendingRedemptions(context.Background()))

	rows, err := st.LendingRedemptions(store.LendingFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1, "only paid redemptions are persisted")
	assert.Equal(t, models.LendingActivity, rows[0].LendingType)
	assert.Equal(t, "BUSD", rows[0].Asset)
}

func TestSyncLendingInterestsResumeOneAccrualPast(t *testing.T) {
	seed := models.LendingInterest{
		LendingType:    models.LendingDaily,
		InterestMillis: 1600000000000,
		Asset:          "USDT",
		Interest:       decimal.NewFromFloat(0.01),
	}

	starts := make(map[string]int64)
	api := &fakeAPI{
		lendingInterests: func(ctx context.Context, lendingType string, q binance.PageQuery) ([]binance.LendingInterest, error) {
			starts[lendingType] = q.StartTime
			return nil, nil
		},
	}
	s, st := newTestSyncer(t, api)
	require.NoError(t, store.Insert(st, &seed, store.Reject))

	require.NoError(t, s.SyncLendingInterests(context.Background()))

	require.Len(t, starts, 3)
	// Interests accrue hourly, so the cursor jumps a full hour past the last
	// stored accrual.
	assert.Equal(t, int64(1600000000000+3600*1000), starts[models.LendingDaily])
	assert.Equal(t, store.AccountLaunchMillis+3600*1000, starts[models.LendingActivity])
	assert.Equal(t, store.AccountLaunchMillis+3600*1000, starts[models.LendingCustomizedFixed])
}

func TestSyncLendingPurchasesResumeJustPastStored(t *testing.T) {
	starts := make(map[string]int64)
	api := &fakeAPI{
		lendingPurchases: func(ctx context.Context, lendingType string, q binance.PageQuery) ([]binance.LendingPurchase, error) {
			starts[lendingType] = q.StartTime
			return nil, nil
		},
	}
	s, st := newTestSyncer(t, api)

	seed := models.LendingPurchase{PurchaseID: 7, LendingType: models.LendingActivity, PurchaseMillis: 1600000000000, Asset: "USDT", Amount: decimal.NewFromInt(5)}
	require.NoError(t, store.Insert(st, &seed, store.Reject))

	require.NoError(t, s.SyncLendingPurchases(context.Background()))

	assert.Equal(t, store.AccountLaunchMillis+1, starts[models.LendingDaily])
	assert.Equal(t, int64(1600000000001), starts[models.LendingActivity])
}
