package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusfind_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campusfind_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ItemVerifications counts admin verification decisions by action.
	ItemVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusfind_item_verifications_total",
		Help: "Total number of item verification decisions by action",
	}, []string{"action"})

	// ClaimDecisions counts admin claim adjudications by outcome.
	ClaimDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusfind_claim_decisions_total",
		Help: "Total number of claim adjudications by outcome",
	}, []string{"outcome"})

	// PhotoUploadBytes records the size of accepted photo uploads.
	PhotoUploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "campusfind_photo_upload_bytes",
		Help:    "Size in bytes of accepted photo uploads",
		Buckets: prometheus.ExponentialBuckets(16*1024, 4, 8),
	})

	// PhotoUploadFailures counts rejected or failed photo uploads by reason.
	PhotoUploadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusfind_photo_upload_failures_total",
		Help: "Total number of rejected or failed photo uploads by reason",
	}, []string{"reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
