package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/wnt/binwatch/internal/binance"
	"github.com/wnt/binwatch/internal/metrics"
	"github.com/wnt/binwatch/internal/models"
)

// dustTimeLayout is the zone-less timestamp format of dust conversion
// records. The exchange reports them in UTC.
const dustTimeLayout = "2006-01-02 15:04:05"

// SyncDeposits fetches the deposits arrived since the last stored one, one
// bounded time window per call. Only credited deposits are requested.
func (s *Syncer) SyncDeposits(ctx context.Context) error {
	return s.timed("deposits", func() error {
		window := s.windowMillis()
		start := s.store.LastDepositMillis() + transferOffsetMillis
		now := s.nowMillis()

		for start < now {
			var page []binance.Deposit
			endTime := start + window
			err := s.guard.Do(ctx, "deposits", func() error {
				var err error
				page, err = s.api.Deposits(ctx, start, endTime)
				return err
			})
			if err != nil {
				return err
			}
			if len(page) > 0 {
				rows := make([]models.Deposit, 0, len(page))
				for _, deposit := range page {
					rows = append(rows, models.Deposit{
						TxID:          deposit.TxID,
						DepositMillis: deposit.InsertTime,
						Asset:         deposit.Asset,
						Amount:        deposit.Amount,
					})
				}
				if err := persist(s, models.StreamDeposits, rows); err != nil {
					return err
				}
			}
			start += window
		}
		return nil
	})
}

// SyncWithdrawals fetches the withdrawals completed since the last stored
// one, one bounded time window per call. Only completed withdrawals are
// requested.
func (s *Syncer) SyncWithdrawals(ctx context.Context) error {
	return s.timed("withdrawals", func() error {
		window := s.windowMillis()
		start := s.store.LastWithdrawalMillis() + transferOffsetMillis
		now := s.nowMillis()

		for start < now {
			var page []binance.Withdrawal
			endTime := start + window
			err := s.guard.Do(ctx, "withdrawals", func() error {
				var err error
				page, err = s.api.Withdrawals(ctx, start, endTime)
				return err
			})
			if err != nil {
				return err
			}
			if len(page) > 0 {
				rows := make([]models.Withdrawal, 0, len(page))
				for _, withdrawal := range page {
					rows = append(rows, models.Withdrawal{
						WithdrawID:  withdrawal.ID,
						TxID:        withdrawal.TxID,
						ApplyMillis: withdrawal.ApplyTime,
						Asset:       withdrawal.Asset,
						Amount:      withdrawal.Amount,
						Fee:         withdrawal.TransactionFee,
					})
				}
				if err := persist(s, models.StreamWithdrawals, rows); err != nil {
					return err
				}
			}
			start += window
		}
		return nil
	})
}

// SyncDividends fetches the asset dividends distributed since the last
// stored one. The endpoint caps each call at 500 records, so a full page
// means the window was not exhausted: the cursor then resumes just past the
// newest record seen instead of jumping a whole window, which would skip
// whatever the cap cut off.
func (s *Syncer) SyncDividends(ctx context.Context) error {
	return s.timed("dividends", func() error {
		window := s.windowMillis()
		start := s.store.LastDividendMillis() + transferOffsetMillis
		now := s.nowMillis()

		for start < now {
			var page []binance.Dividend
			endTime := start + window
			err := s.guard.Do(ctx, "dividends", func() error {
				var err error
				page, err = s.api.Dividends(ctx, start, endTime, dividendLimit)
				return err
			})
			if err != nil {
				return err
			}

			if len(page) > 0 {
				rows := make([]models.Dividend, 0, len(page))
				var maxMillis int64
				for _, dividend := range page {
					rows = append(rows, models.Dividend{
						DivID:     dividend.TranID,
						DivMillis: dividend.DivTime,
						Asset:     dividend.Asset,
						Amount:    dividend.Amount,
					})
					if dividend.DivTime > maxMillis {
						maxMillis = dividend.DivTime
					}
				}
				if err := persist(s, models.StreamDividends, rows); err != nil {
					return err
				}
				if len(page) >= dividendLimit {
					start = maxMillis + 1
					continue
				}
			}
			start += window
		}
		return nil
	})
}

// SyncDusts rebuilds the dust conversion table from scratch. The endpoint
// exposes neither ids nor time filters, so incremental sync is impossible
// and the whole log is refetched on every run.
func (s *Syncer) SyncDusts(ctx context.Context) error {
	return s.timed("dusts", func() error {
		var dustLog *binance.DustLog
		err := s.guard.Do(ctx, "dusts", func() error {
			var err error
			dustLog, err = s.api.DustLog(ctx)
			return err
		})
		if err != nil {
			return err
		}

		var rows []models.Dust
		for _, conversion := range dustLog.Rows {
			for _, entry := range conversion.Logs {
				operated, err := time.ParseInLocation(dustTimeLayout, entry.OperateTime, time.UTC)
				if err != nil {
					return fmt.Errorf("failed to parse dust operate time %q: %w", entry.OperateTime, err)
				}
				rows = append(rows, models.Dust{
					TranID:      entry.TranID,
					DustMillis:  operated.UnixMilli(),
					Asset:       entry.FromAsset,
					AssetAmount: entry.Amount,
					BNBAmount:   entry.TransferedAmount,
					BNBFee:      entry.ServiceChargeAmount,
				})
			}
		}

		inserted, err := s.store.ReplaceDusts(rows)
		if err != nil {
			return err
		}
		metrics.RecordPersisted(string(models.StreamDusts), inserted)
		s.log.Debug().Int("rows", inserted).Msg("dust table rebuilt")
		return nil
	})
}
