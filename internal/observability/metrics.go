// Package observability provides metrics and tracing for the service.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Vote outcome labels for VotesCastTotal.
const (
	VoteOutcomeNew    = "new"
	VoteOutcomeFlip   = "flip"
	VoteOutcomeNoop   = "noop"
	VoteOutcomeFailed = "failed"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riptide_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "riptide_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedPagesTotal counts served feed pages by viewer kind.
	FeedPagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riptide_feed_pages_total",
		Help: "Total number of feed pages served",
	}, []string{"viewer"})

	// VotesCastTotal counts vote mutations by outcome (new, flip, noop, failed).
	VotesCastTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riptide_votes_cast_total",
		Help: "Total number of vote mutations by outcome",
	}, []string{"outcome"})

	// LoaderBatchSize observes how many keys each batch-loader flush carried.
	LoaderBatchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "riptide_loader_batch_size",
		Help:    "Number of keys coalesced into one bulk fetch",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
	}, []string{"loader"})

	// WebSocketConnectionsTotal is the gauge of active feed-event connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "riptide_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// FeedEventsTotal counts published feed events by type.
	FeedEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riptide_feed_events_total",
		Help: "Total feed events published by type",
	}, []string{"event_type"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		ObserveQuery(operation, table, start)
	}
}

// ObserveLoaderBatch records the size of one bulk fetch for the named loader.
func ObserveLoaderBatch(loader string, keys int) {
	LoaderBatchSize.WithLabelValues(loader).Observe(float64(keys))
}
