package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wnt/binwatch/internal/binance"
	"github.com/wnt/binwatch/internal/metrics"
	"github.com/wnt/binwatch/internal/models"
	"github.com/wnt/binwatch/internal/store"
	"github.com/wnt/binwatch/internal/utils"
)

// Page size ceilings imposed by the exchange.
const (
	pageSize      = 100  // page-cursor history endpoints
	dividendLimit = 500  // dividends per window call
	tradeLimit    = 1000 // trades per request
)

// Cursor offsets: how far past the stored maximum each stream family resumes
// to avoid refetching the boundary record.
const (
	transferOffsetMillis = 1           // transfers, deposits, withdrawals, dividends, lending purchases/redemptions
	marginOffsetMillis   = 1000        // margin loans, repays and interests
	lendingOffsetMillis  = 3600 * 1000 // lending interests accrue hourly
)

// archiveThresholdMillis splits recent from archived history on the exchange
// side: anything older than roughly three months must be queried with the
// archived flag.
const archiveThresholdMillis = int64(1000 * 3600 * 24 * 30 * 3)

// Default run parameters.
const (
	DefaultDayJump      = 90.0
	DefaultTradeWorkers = 1
)

// AccountAPI is the slice of the exchange client the synchronizer consumes.
type AccountAPI interface {
	binance.PairSource

	SpotTrades(ctx context.Context, symbol string, fromID int64, limit int) ([]binance.Trade, error)
	MarginTrades(ctx context.Context, symbol string, isolated bool, fromID int64, limit int) ([]binance.Trade, error)

	UniversalTransfers(ctx context.Context, transferType string, q binance.PageQuery) ([]binance.UniversalTransfer, error)
	IsolatedTransfers(ctx context.Context, symbol string, q binance.PageQuery) ([]binance.IsolatedTransfer, error)

	MarginLoans(ctx context.Context, asset, isolatedSymbol string, q binance.PageQuery) ([]binance.MarginLoan, error)
	MarginRepays(ctx context.Context, asset, isolatedSymbol string, q binance.PageQuery) ([]binance.MarginRepay, error)
	MarginInterests(ctx context.Context, isolatedSymbol string, q binance.PageQuery) ([]binance.MarginInterest, error)

	LendingPurchases(ctx context.Context, lendingType string, q binance.PageQuery) ([]binance.LendingPurchase, error)
	LendingRedemptions(ctx context.Context, lendingType string, q binance.PageQuery) ([]binance.LendingRedemption, error)
	LendingInterests(ctx context.Context, lendingType string, q binance.PageQuery) ([]binance.LendingInterest, error)

	Deposits(ctx context.Context, startTime, endTime int64) ([]binance.Deposit, error)
	Withdrawals(ctx context.Context, startTime, endTime int64) ([]binance.Withdrawal, error)
	Dividends(ctx context.Context, startTime, endTime int64, limit int) ([]binance.Dividend, error)
	DustLog(ctx context.Context) (*binance.DustLog, error)
}

// Options tunes a sync run.
type Options struct {
	DayJump      float64 // time window size in days for windowed streams, max 90
	TradeWorkers int     // concurrent trade pair lanes
}

// Syncer walks every activity stream of one account forward from the resume
// cursor derived from already committed rows. Each fetched page is persisted
// in its own transaction, so an interrupted run loses at most the page in
// flight and the next run picks up where the last commit left off.
type Syncer struct {
	api     AccountAPI
	store   *store.Store
	guard   *binance.Guard
	catalog *binance.Catalog
	log     zerolog.Logger

	dayJump      float64
	tradeWorkers int

	// Overridable for tests.
	now func() time.Time
}

// New creates a syncer for one account.
func New(api AccountAPI, st *store.Store, guard *binance.Guard, log zerolog.Logger, opts Options) (*Syncer, error) {
	if api == nil {
		return nil, errors.New("account api is required")
	}
	if st == nil {
		return nil, errors.New("store is required")
	}
	if guard == nil {
		return nil, errors.New("rate limit guard is required")
	}

	dayJump := opts.DayJump
	if dayJump <= 0 || dayJump > 90 {
		dayJump = DefaultDayJump
	}
	workers := opts.TradeWorkers
	if workers < 1 {
		workers = DefaultTradeWorkers
	}

	return &Syncer{
		api:          api,
		store:        st,
		guard:        guard,
		catalog:      binance.NewCatalog(api),
		log:          log.With().Str("component", "syncer").Str("run_id", uuid.NewString()).Logger(),
		dayJump:      dayJump,
		tradeWorkers: workers,
		now:          time.Now,
	}, nil
}

// SyncAll brings every stream of the account up to date.
func (s *Syncer) SyncAll(ctx context.Context) error {
	if err := s.SyncSpot(ctx); err != nil {
		return err
	}
	if err := s.SyncCrossMargin(ctx); err != nil {
		return err
	}
	if err := s.SyncIsolatedMargin(ctx); err != nil {
		return err
	}
	return s.SyncLending(ctx)
}

// SyncSpot brings every spot wallet stream up to date.
func (s *Syncer) SyncSpot(ctx context.Context) error {
	if err := s.SyncAllSpotTrades(ctx); err != nil {
		return fmt.Errorf("spot trades: %w", err)
	}
	if err := s.SyncDeposits(ctx); err != nil {
		return fmt.Errorf("deposits: %w", err)
	}
	if err := s.SyncWithdrawals(ctx); err != nil {
		return fmt.Errorf("withdrawals: %w", err)
	}
	if err := s.SyncDusts(ctx); err != nil {
		return fmt.Errorf("dusts: %w", err)
	}
	if err := s.SyncDividends(ctx); err != nil {
		return fmt.Errorf("dividends: %w", err)
	}
	if err := s.SyncUniversalTransfers(ctx, "MAIN"); err != nil {
		return fmt.Errorf("universal transfers: %w", err)
	}
	return nil
}

// SyncCrossMargin brings every cross margin stream up to date.
func (s *Syncer) SyncCrossMargin(ctx context.Context) error {
	if err := s.SyncAllCrossMarginTrades(ctx); err != nil {
		return fmt.Errorf("cross margin trades: %w", err)
	}
	if err := s.SyncCrossMarginLoans(ctx); err != nil {
		return fmt.Errorf("cross margin loans: %w", err)
	}
	if err := s.SyncCrossMarginInterests(ctx); err != nil {
		return fmt.Errorf("cross margin interests: %w", err)
	}
	if err := s.SyncCrossMarginRepays(ctx); err != nil {
		return fmt.Errorf("cross margin repays: %w", err)
	}
	if err := s.SyncUniversalTransfers(ctx, "MARGIN"); err != nil {
		return fmt.Errorf("universal transfers: %w", err)
	}
	return nil
}

// SyncIsolatedMargin brings every isolated margin stream up to date.
func (s *Syncer) SyncIsolatedMargin(ctx context.Context) error {
	if err := s.SyncAllIsolatedMarginTrades(ctx); err != nil {
		return fmt.Errorf("isolated margin trades: %w", err)
	}
	if err := s.SyncIsolatedMarginLoans(ctx); err != nil {
		return fmt.Errorf("isolated margin loans: %w", err)
	}
	if err := s.SyncIsolatedMarginInterests(ctx); err != nil {
		return fmt.Errorf("isolated margin interests: %w", err)
	}
	if err := s.SyncIsolatedMarginRepays(ctx); err != nil {
		return fmt.Errorf("isolated margin repays: %w", err)
	}
	if err := s.SyncIsolatedTransfers(ctx); err != nil {
		return fmt.Errorf("isolated transfers: %w", err)
	}
	return nil
}

// SyncLending brings every lending stream up to date.
func (s *Syncer) SyncLending(ctx context.Context) error {
	if err := s.SyncLendingInterests(ctx); err != nil {
		return fmt.Errorf("lending interests: %w", err)
	}
	if err := s.SyncLendingPurchases(ctx); err != nil {
		return fmt.Errorf("lending purchases: %w", err)
	}
	if err := s.SyncLendingRedemptions(ctx); err != nil {
		return fmt.Errorf("lending redemptions: %w", err)
	}
	return nil
}

// nowMillis returns the current time in UTC milliseconds. Windowed streams
// capture it once per pass so that activity arriving mid-sync is left for
// the next run instead of being chased forever.
func (s *Syncer) nowMillis() int64 {
	return s.now().UTC().UnixMilli()
}

// windowMillis is the time-box width for windowed streams.
func (s *Syncer) windowMillis() int64 {
	days := s.dayJump
	if days > 90 {
		days = 90
	}
	return utils.DaysToMillis(days)
}

// timed wraps one stream pass with duration metrics and start/end logs.
func (s *Syncer) timed(label string, fn func() error) error {
	log := s.log.With().Str("stream", label).Logger()
	log.Info().Msg("syncing stream")

	start := time.Now()
	err := fn()
	metrics.RecordStreamSync(label, time.Since(start).Seconds())

	if err != nil {
		log.Error().Err(err).Msg("stream sync failed")
		return err
	}
	log.Info().Dur("duration", time.Since(start)).Msg("stream in sync")
	return nil
}

// persist commits one fetched page and records the insert count.
func persist[T any](s *Syncer, stream models.StreamKind, rows []T) error {
	inserted, err := store.SaveBatch(s.store, rows)
	if err != nil {
		return fmt.Errorf("failed to persist %s page: %w", stream, err)
	}
	metrics.RecordPersisted(string(stream), inserted)
	if inserted > 0 {
		s.log.Debug().
			Str("stream", string(stream)).
			Int("inserted", inserted).
			Int("fetched", len(rows)).
			Msg("page committed")
	}
	return nil
}
