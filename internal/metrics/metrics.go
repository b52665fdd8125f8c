// Respawn - Gaming Wellbeing Data Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respawn

package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline instrumentation:
// - rows read, written and skipped per stage and dataset kind
// - synthetic fallbacks
// - DuckDB load and query timing
// - title-merge match rates
// - collaborator fetch clients and their circuit breakers

var (
	// Stage Metrics
	RowsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respawn_rows_total",
			Help: "Total number of rows emitted by a pipeline stage",
		},
		[]string{"stage", "kind"},
	)

	SyntheticFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respawn_synthetic_fallbacks_total",
			Help: "Total number of dataset kinds synthesized because no source file was found",
		},
		[]string{"kind"},
	)

	RowIssues = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respawn_row_issues_total",
			Help: "Total number of row-level issues recorded in the skip ledger",
		},
		[]string{"kind", "reason"}, // reason: defaulted, dropped, duplicate, derived, invalid
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "respawn_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	StageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respawn_stage_errors_total",
			Help: "Total number of failed dataset kinds per stage",
		},
		[]string{"stage", "kind"},
	)

	// Merge Metrics
	TitleMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respawn_title_matches_total",
			Help: "Wellbeing rows matched or unmatched against game titles",
		},
		[]string{"result"}, // "matched", "unmatched"
	)

	DuplicatesRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "respawn_duplicate_participants_removed_total",
			Help: "Total number of participant rows removed by first-wins deduplication",
		},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB statements in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB statement errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	LoaderRowsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respawn_loader_rows_written_total",
			Help: "Total number of rows written to DuckDB per table",
		},
		[]string{"table"},
	)

	// Fetch Metrics
	FetchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "respawn_fetch_requests_total",
			Help: "Total number of collaborator API requests",
		},
		[]string{"client", "status"}, // status: "ok", "not_found", "error", "rejected"
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "respawn_fetch_duration_seconds",
			Help:    "Duration of collaborator API requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"client"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
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

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	LastRunTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "respawn_last_run_timestamp_seconds",
			Help: "Unix time of the last pipeline run per outcome",
		},
		[]string{"outcome"}, // "success", "failure"
	)
)

// RecordStage records a finished stage.
func RecordStage(stage string, duration time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordRows adds n rows emitted by stage for kind.
func RecordRows(stage, kind string, n int) {
	RowsProcessed.WithLabelValues(stage, kind).Add(float64(n))
}

// RecordRowIssue counts one skip-ledger entry.
func RecordRowIssue(kind, reason string) {
	RowIssues.WithLabelValues(kind, reason).Inc()
}

// RecordDBQuery records a DuckDB statement.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordFetch records a collaborator API request.
func RecordFetch(client string, duration time.Duration, err error) {
	FetchDuration.WithLabelValues(client).Observe(duration.Seconds())
	status := "ok"
	if err != nil {
		errorMsg := err.Error()
		switch {
		case strings.Contains(errorMsg, "circuit breaker"):
			status = "rejected"
		case strings.Contains(errorMsg, "not found"):
			status = "not_found"
		default:
			status = "error"
		}
	}
	FetchRequests.WithLabelValues(client, status).Inc()
}

// RecordRun marks the end of a pipeline run.
func RecordRun(version string, err error) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	LastRunTimestamp.WithLabelValues(outcome).Set(float64(time.Now().Unix()))
}

// WriteTextfile writes every registered metric to path in the Prometheus text
// format, for pickup by the node_exporter textfile collector.
func WriteTextfile(path string) error {
	return WriteTextfileFrom(prometheus.DefaultGatherer, path)
}

// WriteTextfileFrom writes the metrics of g to path.
func WriteTextfileFrom(g prometheus.Gatherer, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
