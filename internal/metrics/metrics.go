// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestRuns counts ingestion runs by outcome ("success", "directory_missing",
	// "empty_dataset"). Memoized cache hits are not counted as runs.
	IngestRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plantdash_ingest_runs_total",
		Help: "Number of ingestion runs by outcome.",
	}, []string{"outcome"})

	// RowsIngested reports the row count of each unified table after the
	// most recent successful run.
	RowsIngested = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "plantdash_rows_ingested",
		Help: "Rows in the unified tables after the last successful ingestion.",
	}, []string{"dataset"})

	// GroupWarnings counts recoverable per-group source failures.
	GroupWarnings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "plantdash_group_source_warnings_total",
		Help: "Recoverable per-group source failures by group.",
	}, []string{"group"})

	// HTTPDuration observes request latency by route and status class.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "plantdash_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})
)
