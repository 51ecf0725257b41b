// Package metrics exposes Prometheus instrumentation for replay decoding.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics with bounded cardinality (labels name collectors and entity ops,
// never demo files or players).
var (
	decodePasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demoscope_decode_passes_total",
		Help: "Total full decode passes over demo files",
	})

	decodeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "demoscope_decode_duration_seconds",
		Help:    "Wall time of one decode pass",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	messagesFanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demoscope_messages_fanned_total",
		Help: "Decoded messages fanned out to collectors",
	})

	entityOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "demoscope_entity_ops_total",
		Help: "Entity operations applied to the state table",
	}, []string{"op"}) // Bounded: "create", "update", "delete"

	checkpointsCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demoscope_checkpoints_captured_total",
		Help: "Checkpoints captured across all index builds",
	})

	collectorDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "demoscope_collector_dropped_total",
		Help: "Items dropped after a collector reached its cap",
	}, []string{"collector"}) // Bounded: collector names are a fixed set

	collectorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "demoscope_collector_failures_total",
		Help: "Collectors disabled mid-pass by a callback failure",
	}, []string{"collector"})

	enrichmentMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demoscope_enrichment_misses_total",
		Help: "Combat log entries whose hero level could not be resolved",
	})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demoscope_index_cache_hits_total",
		Help: "Index builds served from the persistent cache",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demoscope_index_cache_misses_total",
		Help: "Index builds that required a decode pass",
	})
)

// RecordDecodePass records one completed decode pass and its duration.
func RecordDecodePass(duration time.Duration) {
	decodePasses.Inc()
	decodeDuration.Observe(duration.Seconds())
}

// RecordMessage increments the fanned-out message counter.
func RecordMessage() {
	messagesFanned.Inc()
}

// RecordEntityOp records one entity operation.
// op must be one of: "create", "update", "delete".
func RecordEntityOp(op string) {
	entityOps.WithLabelValues(op).Inc()
}

// RecordCheckpoint records one captured checkpoint.
func RecordCheckpoint() {
	checkpointsCaptured.Inc()
}

// RecordDropped records an item dropped by a full collector.
func RecordDropped(collector string) {
	collectorDropped.WithLabelValues(collector).Inc()
}

// RecordCollectorFailure records a collector disabled by a panic.
func RecordCollectorFailure(collector string) {
	collectorFailures.WithLabelValues(collector).Inc()
}

// RecordEnrichmentMisses records combat log joins that found no hero level.
func RecordEnrichmentMisses(n int) {
	if n > 0 {
		enrichmentMisses.Add(float64(n))
	}
}

// RecordCacheHit records an index build served from cache.
func RecordCacheHit() {
	cacheHits.Inc()
}

// RecordCacheMiss records an index build that decoded the file.
func RecordCacheMiss() {
	cacheMisses.Inc()
}
