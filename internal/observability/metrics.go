// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingest metrics
	RowsParsed    prometheus.Counter
	RowsStored    prometheus.Counter
	ParseWarnings prometheus.Counter
	IngestErrors  *prometheus.CounterVec

	// Analysis metrics
	AnalysisRunsTotal *prometheus.CounterVec
	AnalysisDuration  prometheus.Histogram
	AnalyzedRecords   prometheus.Gauge
	SnapshotsStored   prometheus.Counter
	ReportsGenerated  prometheus.Counter
	StepErrors        prometheus.Counter

	// Segment gauges, refreshed on every run
	ProblemInventory *prometheus.GaugeVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulIngest   prometheus.Gauge
	LastSuccessfulAnalysis prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "retail_inventory_lab"
	}

	return &Metrics{
		RowsParsed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "rows_parsed_total",
			Help:      "Total number of CSV rows parsed into records",
		}),
		RowsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "rows_stored_total",
			Help:      "Total number of records stored to the database",
		}),
		ParseWarnings: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "parse_warnings_total",
			Help:      "Total number of CSV parse warnings",
		}),
		IngestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "errors_total",
			Help:      "Total number of ingest errors by type",
		}, []string{"error_type"}),

		AnalysisRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total number of analysis runs by status",
		}, []string{"status"}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Analysis run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}),
		AnalyzedRecords: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "analyzed_records",
			Help:      "Number of records in the last analysis run",
		}),
		SnapshotsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "snapshots_stored_total",
			Help:      "Total number of metric snapshots persisted",
		}),
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),
		StepErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "step_errors_total",
			Help:      "Total number of isolated analysis step errors",
		}),

		ProblemInventory: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "problem_inventory",
			Help:      "Problem inventory counts by segment from the last run",
		}, []string{"segment"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulIngest: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingest_timestamp",
			Help:      "Unix timestamp of last successful ingest",
		}),
		LastSuccessfulAnalysis: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_analysis_timestamp",
			Help:      "Unix timestamp of last successful analysis run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordIngest records one ingest pass.
func RecordIngest(parsed, stored, warnings int) {
	DefaultMetrics.RowsParsed.Add(float64(parsed))
	DefaultMetrics.RowsStored.Add(float64(stored))
	DefaultMetrics.ParseWarnings.Add(float64(warnings))
}

// RecordIngestError records an ingest error by type.
func RecordIngestError(errorType string) {
	DefaultMetrics.IngestErrors.WithLabelValues(errorType).Inc()
}

// RecordAnalysisRun records one analysis run.
func RecordAnalysisRun(status string, durationSeconds float64) {
	DefaultMetrics.AnalysisRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.AnalysisDuration.Observe(durationSeconds)
}

// RecordSegmentCounts refreshes the problem inventory gauges.
func RecordSegmentCounts(slowMoving, overstocked, deadStock int) {
	DefaultMetrics.ProblemInventory.WithLabelValues("slow_moving").Set(float64(slowMoving))
	DefaultMetrics.ProblemInventory.WithLabelValues("overstocked").Set(float64(overstocked))
	DefaultMetrics.ProblemInventory.WithLabelValues("dead_stock").Set(float64(deadStock))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
