package metrics

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// APIRequestsTotal tracks exchange API requests by endpoint and status
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binwatch_api_requests_total",
			Help: "The total number of exchange API requests",
		},
		[]string{"endpoint", "status"},
	)

	// RateLimitWaitsTotal tracks pauses forced by exchange rate limiting
	RateLimitWaitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binwatch_rate_limit_waits_total",
			Help: "The total number of waits caused by rate limit responses",
		},
		[]string{"endpoint"},
	)

	// RecordsPersistedTotal tracks rows committed to the store by stream
	RecordsPersistedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binwatch_records_persisted_total",
			Help: "The total number of records persisted by stream",
		},
		[]string{"stream"},
	)

	// InsertConflictsTotal tracks inserts rejected by a unique constraint
	InsertConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "binwatch_insert_conflicts_total",
			Help: "The total number of inserts rejected as duplicates",
		},
		[]string{"table"},
	)

	// StreamSyncSeconds tracks time taken to sync one stream
	StreamSyncSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "binwatch_stream_sync_seconds",
			Help:    "Time taken to synchronize a stream in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.4min
		},
		[]string{"stream"},
	)

	// TradeLanesActive tracks the number of trade pair lanes currently running
	TradeLanesActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "binwatch_trade_lanes_active",
		Help: "The number of trade pair lanes currently syncing",
	})
)

// RecordAPIRequest records an exchange API request with its response status
func RecordAPIRequest(endpoint, status string) {
	APIRequestsTotal.WithLabelValues(endpoint, status).Inc()
}

// RecordRateLimitWait records a pause taken after a rate limit response
func RecordRateLimitWait(endpoint string) {
	RateLimitWaitsTotal.WithLabelValues(endpoint).Inc()
}

// RecordPersisted records rows committed to the store for a stream
func RecordPersisted(stream string, count int) {
	if count <= 0 {
		return
	}
	RecordsPersistedTotal.WithLabelValues(stream).Add(float64(count))
}

// RecordInsertConflict records an insert rejected by a unique constraint
func RecordInsertConflict(table string) {
	InsertConflictsTotal.WithLabelValues(table).Inc()
}

// RecordStreamSync records the time taken to sync a stream
func RecordStreamSync(stream string, duration float64) {
	StreamSyncSeconds.WithLabelValues(stream).Observe(duration)
}

// Serve exposes the Prometheus registry on /metrics in a background
// goroutine. A port of zero disables the listener.
func Serve(port int, log zerolog.Logger) {
	if port <= 0 {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		addr := fmt.Sprintf(":%d", port)
		log.Info().Str("addr", addr).Msg("serving metrics")
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
}
