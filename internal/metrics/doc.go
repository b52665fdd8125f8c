// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

/*
Package metrics provides Prometheus instrumentation for pipeline runs.

The pipeline is a batch CLI, so nothing is scraped over HTTP. At the end of a
run the registry is written to a node_exporter textfile when
metrics.textfile_path is configured (see WriteTextfile).

# Available Metrics

Stage Metrics:
  - respawn_rows_total: rows emitted (counter)
    Labels: stage, kind
  - respawn_synthetic_fallbacks_total: kinds synthesized (counter)
    Labels: kind
  - respawn_row_issues_total: skip-ledger entries (counter)
    Labels: kind, reason
  - respawn_stage_duration_seconds: stage latency (histogram)
    Labels: stage
  - respawn_stage_errors_total: failed kinds (counter)
    Labels: stage, kind

Merge Metrics:
  - respawn_title_matches_total: title join results (counter)
    Labels: result (matched, unmatched)
  - respawn_duplicate_participants_removed_total (counter)

Database Metrics:
  - duckdb_query_duration_seconds (histogram)
    Labels: operation, table
  - duckdb_query_errors_total (counter)
    Labels: operation, table, error_type
  - respawn_loader_rows_written_total (counter)
    Labels: table

Fetch and Circuit Breaker Metrics:
  - respawn_fetch_requests_total (counter)
    Labels: client, status
  - respawn_fetch_duration_seconds (histogram)
    Labels: client
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total (counter)
    Labels: name, result
  - circuit_breaker_state_transitions_total (counter)
    Labels: name, from_state, to_state

# Example Queries

Synthetic share of the last run:

	sum(respawn_synthetic_fallbacks_total) / 7

Rows dropped by the reconciler:

	sum by (kind) (respawn_row_issues_total{reason="dropped"})
*/
package metrics
