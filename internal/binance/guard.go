package binance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wnt/binwatch/internal/metrics"
	"github.com/wnt/binwatch/internal/utils"
)

// maxRateLimitAttempts is how many times one operation may hit the rate
// limit before the guard gives up.
const maxRateLimitAttempts = 3

// Guard wraps exchange calls with the account level rate limit policy: rate
// limited calls wait and retry a bounded number of times, bans and every
// other error propagate immediately. A Guard holds no per-call state, so one
// instance is safe to share between concurrent sync lanes.
type Guard struct {
	maxAttempts int
	log         zerolog.Logger

	// Overridable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGuard creates a guard with the default attempt budget.
func NewGuard(log zerolog.Logger) *Guard {
	return &Guard{
		maxAttempts: maxRateLimitAttempts,
		log:         log.With().Str("component", "rate_guard").Logger(),
		now:         time.Now,
		sleep:       sleepContext,
	}
}

// Do runs fn until it succeeds, fails with a non-rate-limit error, or the
// attempt budget is spent.
func (g *Guard) Do(ctx context.Context, op string, fn func() error) error {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		if IsBanned(err) {
			g.log.Error().
				Err(err).
				Str("op", op).
				Int("retry_after_seconds", retryAfterSeconds(err)).
				Msg("api calls resulted in a ban")
			return err
		}
		if !IsRateLimited(err) {
			return err
		}
		if attempt == g.maxAttempts {
			break
		}

		wait := g.waitDuration(err)
		metrics.RecordRateLimitWait(op)
		g.log.Info().
			Str("op", op).
			Dur("wait", wait).
			Int("attempt", attempt).
			Msg("rate limit breached, waiting before retry")

		if err := g.sleep(ctx, wait); err != nil {
			return err
		}
	}

	return fmt.Errorf("rate limit breached %d times: %w", g.maxAttempts, ErrRateLimitBreached)
}

// waitDuration computes how long to pause after a rate limit response: the
// advertised Retry-After when present, otherwise until the next minute
// boundary where the request weight window resets. Both get one extra second
// of slack.
func (g *Guard) waitDuration(err error) time.Duration {
	if after := retryAfterSeconds(err); after > 0 {
		return time.Duration(after)*time.Second + time.Second
	}
	now := g.now()
	return utils.UpperMinute(now).Sub(now) + time.Second
}

func retryAfterSeconds(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.RetryAfter
	}
	return 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
