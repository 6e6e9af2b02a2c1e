package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/wnt/binwatch/internal/metrics"
)

// DefaultBaseURL is the production REST endpoint of the exchange.
const DefaultBaseURL = "https://api.binance.com"

// security is the authentication level an endpoint requires.
type security int

const (
	secPublic security = iota // no key, no signature
	secKeyed                  // API key header only
	secSigned                 // API key header plus HMAC signature
)

// Client is a REST client for the account history endpoints the synchronizer
// walks. Signed endpoints carry an HMAC SHA256 signature over the query
// string, keyed with the account secret.
type Client struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different REST endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the timeout for the underlying HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger attaches a logger to the client.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log.With().Str("component", "exchange_client").Logger()
	}
}

// NewClient creates a client for one account's key pair.
func NewClient(apiKey, apiSecret string, options ...Option) (*Client, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, ErrMissingCredentials
	}

	client := &Client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// Rate limit to ~8 req/s to stay under the account weight budget
		limiter: rate.NewLimiter(rate.Limit(8.0), 16),
		log:     zerolog.Nop(),
		now:     time.Now,
	}

	for _, option := range options {
		option(client)
	}

	return client, nil
}

// doGet performs one GET request against the exchange and unmarshals the
// response into out.
func (c *Client) doGet(ctx context.Context, path string, params url.Values, sec security, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	query := params.Encode()
	if sec == secSigned {
		params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
		query = params.Encode()
		query += "&signature=" + c.sign(query)
	}

	reqURL := c.baseURL + path
	if query != "" {
		reqURL += "?" + query
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	if sec != secPublic {
		httpReq.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	duration := time.Since(startTime)

	if err != nil {
		metrics.RecordAPIRequest(path, "network_error")
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	metrics.RecordAPIRequest(path, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response from %s: %w", path, err)
	}

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Msg("exchange request completed")

	return nil
}

func (c *Client) sign(query string) string {
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// apiError builds an APIError from a non-2xx response, picking up the error
// code and message from the body and any Retry-After header.
func (c *Client) apiError(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Code    int    `json:"code"`
		Message string `json:"msg"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
	}

	if after := resp.Header.Get("Retry-After"); after != "" {
		if seconds, err := strconv.Atoi(after); err == nil {
			apiErr.RetryAfter = seconds
		}
	}

	return apiErr
}
