package binance

import (
	"errors"
	"fmt"
)

// Exchange error codes and statuses the sync engine reacts to. The exchange
// answers IP bans with HTTP 418.
const (
	codeRateLimited    = -1021
	codeInvalidSymbol  = -1121
	codeBadSymbolParam = -11001
	statusBanned       = 418
	statusTooMany      = 429
)

// ErrRateLimitBreached is returned once the rate limit guard has exhausted
// its retry budget. It is fatal and must not be retried further up.
var ErrRateLimitBreached = errors.New("api rate limit breached repeatedly")

// ErrMissingCredentials is returned when a client is built without an API
// key and secret.
var ErrMissingCredentials = errors.New("api key and secret are required")

// APIError is a non-2xx response from the exchange, carrying the error code
// and message from the response body.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	RetryAfter int // seconds, from the Retry-After header, 0 when absent
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d code %d: %s", e.StatusCode, e.Code, e.Message)
}

// IsRateLimited reports whether err is a retryable rate limit response.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == codeRateLimited || apiErr.StatusCode == statusTooMany
}

// IsBanned reports whether err is an IP ban response. Bans must never be
// retried, only waited out.
func IsBanned(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == statusBanned
}

// IsUnknownSymbol reports whether err means the exchange does not know the
// requested trading pair. Pairs that never traded answer this way and must
// be read as zero trades.
func IsUnknownSymbol(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == codeInvalidSymbol || apiErr.Code == codeBadSymbolParam
}
