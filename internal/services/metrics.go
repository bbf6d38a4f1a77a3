package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// scanRuns counts completed reconciliation runs by final status.
	scanRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_scan_runs_total",
			Help: "Total number of alert reconciliation runs by status.",
		},
		[]string{"status"},
	)

	// scanDuration records how long a full reconciliation run takes.
	scanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alert_scan_duration_seconds",
			Help:    "Duration of alert reconciliation runs in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// alertWrites counts alert rows written during scans, split by outcome.
	alertWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_scan_writes_total",
			Help: "Alert rows written by reconciliation runs (created or refreshed).",
		},
		[]string{"outcome"},
	)

	// retentionRows counts rows affected by retention, split by phase.
	retentionRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_retention_rows_total",
			Help: "Alert rows soft-deleted or purged by retention runs.",
		},
		[]string{"phase"},
	)
)

func init() {
	prometheus.MustRegister(scanRuns, scanDuration, alertWrites, retentionRows)
}
