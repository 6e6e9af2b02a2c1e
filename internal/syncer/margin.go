package syncer

import (
	"context"
	"fmt"

	"github.com/wnt/binwatch/internal/binance"
	"github.com/wnt/binwatch/internal/models"
)

// SyncCrossMarginLoans updates the loan history of every cross margin asset.
func (s *Syncer) SyncCrossMarginLoans(ctx context.Context) error {
	return s.timed("cross_margin_loans", func() error {
		assets, err := s.marginAssets(ctx)
		if err != nil {
			return err
		}
		for _, asset := range assets {
			if err := s.syncAssetLoans(ctx, asset, ""); err != nil {
				return fmt.Errorf("asset %s: %w", asset, err)
			}
		}
		return nil
	})
}

// SyncIsolatedMarginLoans updates the loan history of both legs of every
// isolated margin pair.
func (s *Syncer) SyncIsolatedMarginLoans(ctx context.Context) error {
	return s.timed("isolated_margin_loans", func() error {
		pairs, err := s.listPairs(ctx, "isolated_pairs", s.catalog.IsolatedMarginPairs)
		if err != nil {
			return err
		}
		for _, pair := range pairs {
			for _, asset := range []string{pair.Asset, pair.RefAsset} {
				if err := s.syncAssetLoans(ctx, asset, pair.Symbol); err != nil {
					return fmt.Errorf("symbol %s asset %s: %w", pair.Symbol, asset, err)
				}
			}
		}
		return nil
	})
}

// syncAssetLoans updates the loans of one asset. An empty isolatedSymbol
// selects the cross margin account.
func (s *Syncer) syncAssetLoans(ctx context.Context, asset, isolatedSymbol string) error {
	marginType := models.MarginCross
	if isolatedSymbol != "" {
		marginType = models.MarginIsolated
	}
	return syncArchivedPages(s, ctx, "margin_loans", models.StreamMarginLoans,
		func() int64 {
			return s.store.LastLoanMillis(marginType, asset, isolatedSymbol)
		},
		func(ctx context.Context, q binance.PageQuery) ([]binance.MarginLoan, error) {
			return s.api.MarginLoans(ctx, asset, isolatedSymbol, q)
		},
		func(loan binance.MarginLoan) (models.MarginLoan, bool) {
			if loan.Status != binance.StatusConfirmed {
				return models.MarginLoan{}, false
			}
			return models.MarginLoan{
				MarginType: marginType,
				TxID:       loan.TxID,
				Symbol:     isolatedSymbol,
				LoanMillis: loan.Timestamp,
				Asset:      loan.Asset,
				Principal:  loan.Principal,
			}, true
		})
}

// SyncCrossMarginRepays updates the repay history of every cross margin asset.
func (s *Syncer) SyncCrossMarginRepays(ctx context.Context) error {
	return s.timed("cross_margin_repays", func() error {
		assets, err := s.marginAssets(ctx)
		if err != nil {
			return err
		}
		for _, asset := range assets {
			if err := s.syncAssetRepays(ctx, asset, ""); err != nil {
				return fmt.Errorf("asset %s: %w", asset, err)
			}
		}
		return nil
	})
}

// SyncIsolatedMarginRepays updates the repay history of both legs of every
// isolated margin pair.
func (s *Syncer) SyncIsolatedMarginRepays(ctx context.Context) error {
	return s.timed("isolated_margin_repays", func() error {
		pairs, err := s.listPairs(ctx, "isolated_pairs", s.catalog.IsolatedMarginPairs)
		if err != nil {
			return err
		}
		for _, pair := range pairs {
			for _, asset := range []string{pair.Asset, pair.RefAsset} {
				if err := s.syncAssetRepays(ctx, asset, pair.Symbol); err != nil {
					return fmt.Errorf("symbol %s asset %s: %w", pair.Symbol, asset, err)
				}
			}
		}
		return nil
	})
}

// syncAssetRepays updates the repays of one asset. An empty isolatedSymbol
// selects the cross margin account.
func (s *Syncer) syncAssetRepays(ctx context.Context, asset, isolatedSymbol string) error {
	marginType := models.MarginCross
	if isolatedSymbol != "" {
		marginType = models.MarginIsolated
	}
	return syncArchivedPages(s, ctx, "margin_repays", models.StreamMarginRepays,
		func() int64 {
			return s.store.LastRepayMillis(marginType, asset, isolatedSymbol)
		},
		func(ctx context.Context, q binance.PageQuery) ([]binance.MarginRepay, error) {
			return s.api.MarginRepays(ctx, asset, isolatedSymbol, q)
		},
		func(repay binance.MarginRepay) (models.MarginRepay, bool) {
			if repay.Status != binance.StatusConfirmed {
				return models.MarginRepay{}, false
			}
			return models.MarginRepay{
				MarginType:  marginType,
				TxID:        repay.TxID,
				Symbol:      isolatedSymbol,
				RepayMillis: repay.Timestamp,
				Asset:       repay.Asset,
				Principal:   repay.Principal,
				Interest:    repay.Interest,
			}, true
		})
}

// SyncCrossMarginInterests updates the single cross margin interest stream.
// Interests are account wide, not per asset.
func (s *Syncer) SyncCrossMarginInterests(ctx context.Context) error {
	return s.timed("cross_margin_interests", func() error {
		return s.syncMarginInterests(ctx, "")
	})
}

// SyncIsolatedMarginInterests updates the interest stream of every isolated
// margin pair.
func (s *Syncer) SyncIsolatedMarginInterests(ctx context.Context) error {
	return s.timed("isolated_margin_interests", func() error {
		pairs, err := s.listPairs(ctx, "isolated_pairs", s.catalog.IsolatedMarginPairs)
		if err != nil {
			return err
		}
		for _, pair := range pairs {
			if err := s.syncMarginInterests(ctx, pair.Symbol); err != nil {
				return fmt.Errorf("symbol %s: %w", pair.Symbol, err)
			}
		}
		return nil
	})
}

// syncMarginInterests updates one interest stream. An empty isolatedSymbol
// selects the cross margin account.
func (s *Syncer) syncMarginInterests(ctx context.Context, isolatedSymbol string) error {
	marginType := models.MarginCross
	if isolatedSymbol != "" {
		marginType = models.MarginIsolated
	}
	return syncArchivedPages(s, ctx, "margin_interests", models.StreamMarginInterests,
		func() int64 {
			return s.store.LastMarginInterestMillis(marginType, isolatedSymbol)
		},
		func(ctx context.Context, q binance.PageQuery) ([]binance.MarginInterest, error) {
			return s.api.MarginInterests(ctx, isolatedSymbol, q)
		},
		func(interest binance.MarginInterest) (models.MarginInterest, bool) {
			return models.MarginInterest{
				MarginType:     marginType,
				Symbol:         isolatedSymbol,
				InterestMillis: interest.InterestAccuredTime,
				Asset:          interest.Asset,
				Interest:       interest.Interest,
				InterestType:   interest.Type,
			}, true
		})
}

// marginAssets resolves the cross margin asset universe through the guard.
func (s *Syncer) marginAssets(ctx context.Context) ([]string, error) {
	var assets []string
	err := s.guard.Do(ctx, "margin_pairs", func() error {
		var err error
		assets, err = s.catalog.MarginAssets(ctx)
		return err
	})
	return assets, err
}
