// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - Playback event intake and dispatch
// - Tracker registry population
// - Deferred metadata resolution outcomes
// - Persistence throughput (DuckDB)
// - Media server API health (circuit breaker)

var (
	// Event Intake Metrics
	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playback_events_received_total",
			Help: "Total number of playback events received from the host",
		},
		[]string{"kind"}, // "start", "progress", "stop"
	)

	EventsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playback_events_skipped_total",
			Help: "Total number of playback events skipped without state changes",
		},
		[]string{"reason"}, // "parse_failed", "no_media_info", "theme_media", "no_users", "no_key", "no_tracker"
	)

	// Tracker Registry Metrics
	TrackersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playback_trackers_active",
			Help: "Current number of in-flight playback trackers",
		},
	)

	TrackersReplaced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playback_trackers_replaced_total",
			Help: "Total number of stale trackers evicted by a duplicate start",
		},
	)

	// Deferred Metadata Resolver Metrics
	ResolverLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metadata_resolver_lookups_total",
			Help: "Total number of deferred metadata lookups by outcome",
		},
		[]string{"outcome"}, // "resolved", "not_found", "error", "discarded"
	)

	ResolverLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "metadata_resolver_lookup_duration_seconds",
			Help:    "Duration of live session lookups in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Persistence Metrics
	RecordsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playback_records_persisted_total",
			Help: "Total number of playback records handed to the persistence gateway",
		},
	)

	RecordsDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playback_records_discarded_total",
			Help: "Total number of finished sessions discarded without persistence",
		},
		[]string{"reason"}, // "below_min_duration"
	)

	PersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playback_persist_failures_total",
			Help: "Total number of records lost to persistence errors",
		},
	)

	BatchFlushDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "record_batch_flush_duration_seconds",
			Help:    "Duration of record batch flush operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "record_batch_size",
			Help:    "Number of records in each batch flush",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Media Server API Metrics
	SessionAPIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaserver_api_requests_total",
			Help: "Total number of media server API requests",
		},
		[]string{"status"}, // "ok", "not_found", "error"
	)

	SessionAPIDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mediaserver_api_request_duration_seconds",
			Help:    "Duration of media server API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Ops HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of ops HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
)

// RecordEventReceived records an incoming playback event.
func RecordEventReceived(kind string) {
	EventsReceived.WithLabelValues(kind).Inc()
}

// RecordEventSkipped records a playback event that produced no state change.
func RecordEventSkipped(reason string) {
	EventsSkipped.WithLabelValues(reason).Inc()
}

// SetActiveTrackers updates the in-flight tracker gauge.
func SetActiveTrackers(n int) {
	TrackersActive.Set(float64(n))
}

// RecordTrackerReplaced records a stale tracker evicted by a duplicate start.
func RecordTrackerReplaced() {
	TrackersReplaced.Inc()
}

// RecordResolverLookup records a deferred metadata lookup outcome.
func RecordResolverLookup(outcome string, duration time.Duration) {
	ResolverLookups.WithLabelValues(outcome).Inc()
	ResolverLookupDuration.Observe(duration.Seconds())
}

// RecordResolverDiscard records metadata dropped because the session already
// ended.
func RecordResolverDiscard() {
	ResolverLookups.WithLabelValues("discarded").Inc()
}

// RecordPersisted records a playback record handed to the persistence gateway.
func RecordPersisted() {
	RecordsPersisted.Inc()
}

// RecordDiscarded records a finished session dropped without persistence.
func RecordDiscarded(reason string) {
	RecordsDiscarded.WithLabelValues(reason).Inc()
}

// RecordPersistFailure records a record lost to a persistence error.
func RecordPersistFailure() {
	PersistFailures.Inc()
}

// RecordBatchFlush records the size and duration of a batch flush.
func RecordBatchFlush(size int, duration time.Duration) {
	BatchSize.Observe(float64(size))
	BatchFlushDuration.Observe(duration.Seconds())
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordSessionAPIRequest records a media server API request.
func RecordSessionAPIRequest(status string, duration time.Duration) {
	SessionAPIRequests.WithLabelValues(status).Inc()
	SessionAPIDuration.Observe(duration.Seconds())
}

// SetCircuitBreakerState updates the circuit breaker state gauge.
func SetCircuitBreakerState(name string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
}

// RecordCircuitBreakerTransition records a circuit breaker state change.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordHTTPRequest records an ops endpoint request.
func RecordHTTPRequest(method, endpoint, status string) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
}
