package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Backend metrics (badgerdb).
	BackendOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainkv_backend_ops_total",
			Help: "Total number of backend operations by kind and result.",
		},
		[]string{"backend", "op", "result"},
	)

	BackendOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chainkv_backend_op_duration_seconds",
			Help:    "Backend operation duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)

	// Journaling layer metrics.
	JournalSlowPathTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainkv_journal_slow_path_total",
			Help: "Total number of write_batch calls that took the journaled slow path.",
		},
		[]string{"namespace"},
	)

	JournalBlocksWrittenTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chainkv_journal_blocks_written_total",
			Help: "Total number of journal blocks written across all slow-path batches.",
		},
	)

	JournalRecoveryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainkv_journal_recovery_total",
			Help: "Total number of clear_journal calls that found a pending journal to resolve.",
		},
		[]string{"namespace"},
	)

	JournalWriteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chainkv_journal_write_batch_duration_seconds",
			Help:    "write_batch duration in seconds, fast and slow path combined.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// LRU cache layer metrics.
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainkv_cache_hits_total",
			Help: "Total number of LRU cache hits by kind (value, prefix).",
		},
		[]string{"kind"},
	)

	CacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chainkv_cache_misses_total",
			Help: "Total number of LRU cache misses by kind (value, prefix).",
		},
		[]string{"kind"},
	)

	CacheEntriesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chainkv_cache_entries",
			Help: "Current number of entries held in the LRU cache.",
		},
	)

	// Value-splitting layer metrics.
	SplitValuesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chainkv_split_values_total",
			Help: "Total number of values split across chunk keys because they exceeded the backend's max value size.",
		},
	)

	// Database façade metrics.
	OpenStoresGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chainkv_open_stores",
			Help: "Currently open Store handles by namespace and mode (shared, exclusive).",
		},
		[]string{"namespace", "mode"},
	)
)

func init() {
	prometheus.MustRegister(
		BackendOpsTotal,
		BackendOpDuration,
		JournalSlowPathTotal,
		JournalBlocksWrittenTotal,
		JournalRecoveryTotal,
		JournalWriteDuration,
		CacheHitsTotal,
		CacheMissesTotal,
		CacheEntriesGauge,
		SplitValuesTotal,
		OpenStoresGauge,
	)
}

// Handler returns the prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
