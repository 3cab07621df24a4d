package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Export stage counters and histograms, partitioned by chain (+ stream where
// a chain walks more than one history).

var (
	// Fetcher
	FetcherPagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledgerexport",
		Subsystem: "fetcher",
		Name:      "pages_fetched_total",
		Help:      "Total pages fetched from explorer ledger sources",
	}, []string{"chain", "stream"})

	FetcherRecordsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledgerexport",
		Subsystem: "fetcher",
		Name:      "records_fetched_total",
		Help:      "Total raw records returned by explorer ledger sources",
	}, []string{"chain", "stream"})

	FetcherRecordsBeforeCutoff = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledgerexport",
		Subsystem: "fetcher",
		Name:      "records_before_cutoff_total",
		Help:      "Total records dropped for being older than the cutoff",
	}, []string{"chain", "stream"})

	FetcherOverlapDuplicates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledgerexport",
		Subsystem: "fetcher",
		Name:      "overlap_duplicates_total",
		Help:      "Total records collapsed by identifier dedup across overlapping pages",
	}, []string{"chain", "stream"})

	FetcherErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledgerexport",
		Subsystem: "fetcher",
		Name:      "errors_total",
		Help:      "Total terminal fetch failures",
	}, []string{"chain", "stream"})

	FetcherLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ledgerexport",
		Subsystem: "fetcher",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of a complete paginated fetch",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"chain", "stream"})

	// Classifier
	ClassifierEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledgerexport",
		Subsystem: "classifier",
		Name:      "entries_total",
		Help:      "Total statement entries produced per bucket",
	}, []string{"chain", "bucket"})

	ClassifierDuplicates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledgerexport",
		Subsystem: "classifier",
		Name:      "duplicates_suppressed_total",
		Help:      "Total records suppressed by per-bucket identifier dedup",
	}, []string{"chain", "bucket"})

	// Export
	ExportRowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledgerexport",
		Subsystem: "export",
		Name:      "rows_written_total",
		Help:      "Total CoinTracking rows written",
	}, []string{"chain"})

	ExportOverridesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledgerexport",
		Subsystem: "export",
		Name:      "overrides_applied_total",
		Help:      "Total known-transaction corrections applied to rows",
	}, []string{"chain"})

	ExportRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledgerexport",
		Subsystem: "export",
		Name:      "runs_total",
		Help:      "Total export runs by outcome",
	}, []string{"chain", "status"})

	// Reconciliation
	ReconciliationMismatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledgerexport",
		Subsystem: "reconciliation",
		Name:      "mismatches_total",
		Help:      "Total derived balances that differ from the explorer-reported balance",
	}, []string{"chain"})

	// Alerts
	AlertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledgerexport",
		Subsystem: "alert",
		Name:      "sent_total",
		Help:      "Total alerts delivered per channel and type",
	}, []string{"channel", "type"})

	AlertsCooldownSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledgerexport",
		Subsystem: "alert",
		Name:      "cooldown_skipped_total",
		Help:      "Total alerts suppressed because an identical alert was sent recently",
	}, []string{"channel", "type"})

	// Explorer transport
	ExplorerCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledgerexport",
		Subsystem: "explorer",
		Name:      "calls_total",
		Help:      "Total explorer HTTP calls by status class",
	}, []string{"chain", "endpoint", "status"})

	ExplorerCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ledgerexport",
		Subsystem: "explorer",
		Name:      "call_duration_seconds",
		Help:      "Explorer HTTP call duration",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"chain", "endpoint"})

	ExplorerRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledgerexport",
		Subsystem: "explorer",
		Name:      "retries_total",
		Help:      "Total transport-level retries of transient explorer failures",
	}, []string{"chain", "reason"})

	ExplorerRateLimitWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ledgerexport",
		Subsystem: "explorer",
		Name:      "rate_limit_waits_total",
		Help:      "Total explorer calls delayed by the client-side rate limiter",
	}, []string{"chain"})

	ExplorerCircuitState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ledgerexport",
		Subsystem: "explorer",
		Name:      "circuit_state",
		Help:      "Explorer circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"chain"})
)
