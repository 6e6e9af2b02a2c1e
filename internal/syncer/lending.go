package syncer

import (
	"context"
	"fmt"

	"github.com/wnt/binwatch/internal/binance"
	"github.com/wnt/binwatch/internal/models"
)

// SyncLendingPurchases updates the purchase history of every lending product
// type. Only purchases that reached SUCCESS are persisted.
func (s *Syncer) SyncLendingPurchases(ctx context.Context) error {
	return s.timed("lending_purchases", func() error {
		for _, lendingType := range models.LendingTypes() {
			start := s.store.LastLendingPurchaseMillis(lendingType) + transferOffsetMillis
			err := syncPages(s, ctx, "lending_purchases", models.StreamLendingPurchases, start,
				func(ctx context.Context, q binance.PageQuery) ([]binance.LendingPurchase, error) {
					return s.api.LendingPurchases(ctx, lendingType, q)
				},
				func(purchase binance.LendingPurchase) (models.LendingPurchase, bool) {
					if purchase.Status != binance.StatusSuccess {
						return models.LendingPurchase{}, false
					}
					return models.LendingPurchase{
						PurchaseID:     purchase.PurchaseID,
						LendingType:    purchase.LendingType,
						PurchaseMillis: purchase.CreateTime,
						Asset:          purchase.Asset,
						Amount:         purchase.Amount,
					}, true
				})
			if err != nil {
				return fmt.Errorf("type %s: %w", lendingType, err)
			}
		}
		return nil
	})
}

// SyncLendingRedemptions updates the redemption history of every lending
// product type. Only redemptions that reached PAID are persisted.
func (s *Syncer) SyncLendingRedemptions(ctx context.Context) error {
	return s.timed("lending_redemptions", func() error {
		for _, lendingType := range models.LendingTypes() {
			start := s.store.LastLendingRedemptionMillis(lendingType) + transferOffsetMillis
			err := syncPages(s, ctx, "lending_redemptions", models.StreamLendingRedemptions, start,
				func(ctx context.Context, q binance.PageQuery) ([]binance.LendingRedemption, error) {
					return s.api.LendingRedemptions(ctx, lendingType, q)
				},
				func(redemption binance.LendingRedemption) (models.LendingRedemption, bool) {
					if redemption.Status != binance.StatusPaid {
						return models.LendingRedemption{}, false
					}
					return models.LendingRedemption{
						LendingType:      lendingType,
						RedemptionMillis: redemption.CreateTime,
						Asset:            redemption.Asset,
						Amount:           redemption.Amount,
					}, true
				})
			if err != nil {
				return fmt.Errorf("type %s: %w", lendingType, err)
			}
		}
		return nil
	})
}

// SyncLendingInterests updates the interest history of every lending product
// type. Interests accrue once per hour, so the resume cursor jumps a full
// hour past the last stored accrual to avoid refetching a bucket that was
// only partially elapsed when it was first seen.
func (s *Syncer) SyncLendingInterests(ctx context.Context) error {
	return s.timed("lending_interests", func() error {
		for _, lendingType := range models.LendingTypes() {
			start := s.store.LastLendingInterestMillis(lendingType) + lendingOffsetMillis
			err := syncPages(s, ctx, "lending_interests", models.StreamLendingInterests, start,
				func(ctx context.Context, q binance.PageQuery) ([]binance.LendingInterest, error) {
					return s.api.LendingInterests(ctx, lendingType, q)
				},
				func(interest binance.LendingInterest) (models.LendingInterest, bool) {
					return models.LendingInterest{
						LendingType:    interest.LendingType,
						InterestMillis: interest.Time,
						Asset:          interest.Asset,
						Interest:       interest.Interest,
					}, true
				})
			if err != nil {
				return fmt.Errorf("type %s: %w", lendingType, err)
			}
		}
		return nil
	})
}
