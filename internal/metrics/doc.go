// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package instruments the playback tracking pipeline end to end, exposing
metrics for event intake, tracker registry population, deferred metadata
resolution, persistence throughput, and media server API health.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8096/metrics

# Available Metrics

Event Intake:
  - playback_events_received_total: Events received from the host (counter)
    Labels: kind (start, progress, stop)
  - playback_events_skipped_total: Events skipped without state changes (counter)
    Labels: reason (parse_failed, no_media_info, theme_media, no_users, no_key, no_tracker)

Tracker Registry:
  - playback_trackers_active: In-flight trackers (gauge)
  - playback_trackers_replaced_total: Stale trackers evicted by duplicate starts (counter)

Deferred Metadata Resolver:
  - metadata_resolver_lookups_total: Lookup outcomes (counter)
    Labels: outcome (resolved, not_found, error, discarded)
  - metadata_resolver_lookup_duration_seconds: Lookup latency (histogram)

Persistence:
  - playback_records_persisted_total: Records handed to the gateway (counter)
  - playback_records_discarded_total: Sessions dropped without persistence (counter)
    Labels: reason (below_min_duration)
  - playback_persist_failures_total: Records lost to persistence errors (counter)
  - record_batch_flush_duration_seconds: Batch flush latency (histogram)
  - record_batch_size: Records per batch flush (histogram)

Database:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table

Media Server API:
  - mediaserver_api_requests_total: Session API requests (counter)
    Labels: status (ok, not_found, error)
  - mediaserver_api_request_duration_seconds: Session API latency (histogram)
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_state_transitions_total: State transitions (counter)
    Labels: name, from_state, to_state

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.

# Cardinality Management

Label values are drawn from small fixed vocabularies. Session, user, device,
and item identifiers never appear as labels.
*/
package metrics
