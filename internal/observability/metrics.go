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
	// Ingestion metrics
	BarsIngested    *prometheus.CounterVec
	SymbolsIngested prometheus.Counter

	// Backtest metrics
	SymbolsProcessed  *prometheus.CounterVec
	SymbolsSkipped    *prometheus.CounterVec
	SymbolsFailed     *prometheus.CounterVec
	TradesGenerated   *prometheus.CounterVec
	CheckpointsSaved  *prometheus.CounterVec
	BacktestRunsTotal *prometheus.CounterVec
	BacktestDuration  *prometheus.HistogramVec

	// Analysis metrics
	ResultsComputed  prometheus.Counter
	ReportsGenerated prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "intraday_strategy_lab"
	}

	return &Metrics{
		// Ingestion metrics
		BarsIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "bars_ingested_total",
			Help:      "Total number of minute bars ingested by symbol",
		}, []string{"symbol"}),
		SymbolsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "symbols_ingested_total",
			Help:      "Total number of symbols ingested",
		}),

		// Backtest metrics
		SymbolsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "symbols_processed_total",
			Help:      "Total number of symbols processed by strategy",
		}, []string{"strategy"}),
		SymbolsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "symbols_skipped_total",
			Help:      "Total number of symbols skipped for missing data",
		}, []string{"strategy"}),
		SymbolsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "symbols_failed_total",
			Help:      "Total number of symbols that failed signal generation",
		}, []string{"strategy"}),
		TradesGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "trades_generated_total",
			Help:      "Total number of trades generated by strategy",
		}, []string{"strategy"}),
		CheckpointsSaved: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "checkpoints_saved_total",
			Help:      "Total number of ledger checkpoints persisted",
		}, []string{"strategy"}),
		BacktestRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "runs_total",
			Help:      "Total number of backtest runs by status",
		}, []string{"strategy", "status"}),
		BacktestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backtest",
			Name:      "duration_seconds",
			Help:      "Backtest run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"strategy"}),

		// Analysis metrics
		ResultsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "results_computed_total",
			Help:      "Total number of strategy results computed",
		}),
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),

		// Database metrics
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
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordBarsIngested increments the ingestion counters for a symbol.
func RecordBarsIngested(symbol string, count int) {
	DefaultMetrics.BarsIngested.WithLabelValues(symbol).Add(float64(count))
}

// RecordSymbolProcessed increments the symbols processed counter.
func RecordSymbolProcessed(strategy string) {
	DefaultMetrics.SymbolsProcessed.WithLabelValues(strategy).Inc()
}

// RecordSymbolSkipped increments the symbols skipped counter.
func RecordSymbolSkipped(strategy string) {
	DefaultMetrics.SymbolsSkipped.WithLabelValues(strategy).Inc()
}

// RecordSymbolFailed increments the symbols failed counter.
func RecordSymbolFailed(strategy string) {
	DefaultMetrics.SymbolsFailed.WithLabelValues(strategy).Inc()
}

// RecordTradesGenerated adds to the trades generated counter.
func RecordTradesGenerated(strategy string, count int) {
	DefaultMetrics.TradesGenerated.WithLabelValues(strategy).Add(float64(count))
}

// RecordCheckpoint increments the checkpoint counter.
func RecordCheckpoint(strategy string) {
	DefaultMetrics.CheckpointsSaved.WithLabelValues(strategy).Inc()
}

// RecordBacktestRun records a completed backtest run.
func RecordBacktestRun(strategy, status string, durationSeconds float64) {
	DefaultMetrics.BacktestRunsTotal.WithLabelValues(strategy, status).Inc()
	DefaultMetrics.BacktestDuration.WithLabelValues(strategy).Observe(durationSeconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
