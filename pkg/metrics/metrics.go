// Package metrics provides Prometheus metrics for the tracker.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Manager owns the tracker's Prometheus metrics.
type Manager struct {
	namespace string
	registry  prometheus.Registerer

	roundsStarted prometheus.Counter
	roundsFailed  prometheus.Counter

	fetchFailures    *prometheus.CounterVec
	staleRetries     *prometheus.CounterVec
	snapshotsCreated *prometheus.CounterVec
	diffEntries      *prometheus.CounterVec
	ghostDownloads   *prometheus.CounterVec

	lastScoresTimestamp prometheus.Gauge
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the metrics namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithPrometheusRegistry substitutes the registry metrics register with.
func WithPrometheusRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// Custom registry so default Go runtime collectors stay out of the scrape.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "tmwrr",
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{Namespace: m.namespace, Name: name, Help: help}
	}

	m.roundsStarted = prometheus.NewCounter(factory("rounds_started_total", "Polling rounds started."))
	m.roundsFailed = prometheus.NewCounter(factory("rounds_failed_total", "Polling rounds where every fetch failed."))
	m.fetchFailures = prometheus.NewCounterVec(factory("fetch_failures_total", "Category fetches skipped for a round."), []string{"category"})
	m.staleRetries = prometheus.NewCounterVec(factory("stale_retries_total", "Fetch attempts retried because of stale data."), []string{"category"})
	m.snapshotsCreated = prometheus.NewCounterVec(factory("snapshots_created_total", "Snapshots persisted."), []string{"category"})
	m.diffEntries = prometheus.NewCounterVec(factory("diff_entries_total", "Diff entries computed, per bucket."), []string{"bucket"})
	m.ghostDownloads = prometheus.NewCounterVec(factory("ghost_downloads_total", "Replay evidence download outcomes."), []string{"result"})
	m.lastScoresTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "last_scores_timestamp_seconds",
		Help:      "Most recent scoreboard timestamp observed, as unix seconds.",
	})

	m.registry.MustRegister(
		m.roundsStarted, m.roundsFailed,
		m.fetchFailures, m.staleRetries, m.snapshotsCreated,
		m.diffEntries, m.ghostDownloads,
		m.lastScoresTimestamp,
	)
	return m
}

// Registry returns the gatherer backing the global manager, for the
// /metrics endpoint.
func Registry() *prometheus.Registry { return customRegistry }

// RecordRoundStarted counts a started polling round.
func RecordRoundStarted() { globalManager.roundsStarted.Inc() }

// RecordRoundFailed counts a round where every fetch failed.
func RecordRoundFailed() { globalManager.roundsFailed.Inc() }

// RecordFetchFailure counts a category skipped for a round.
func RecordFetchFailure(category string) {
	globalManager.fetchFailures.WithLabelValues(category).Inc()
}

// RecordStaleRetry counts a fetch attempt retried because of stale data.
func RecordStaleRetry(category string) {
	globalManager.staleRetries.WithLabelValues(category).Inc()
}

// RecordSnapshotCreated counts a persisted snapshot.
func RecordSnapshotCreated(category string) {
	globalManager.snapshotsCreated.WithLabelValues(category).Inc()
}

// RecordDiffEntries counts computed diff entries for one bucket.
func RecordDiffEntries(bucket string, n int) {
	if n > 0 {
		globalManager.diffEntries.WithLabelValues(bucket).Add(float64(n))
	}
}

// RecordGhostDownload counts one replay download outcome.
func RecordGhostDownload(ok bool) {
	result := "ok"
	if !ok {
		result = "missing"
	}
	globalManager.ghostDownloads.WithLabelValues(result).Inc()
}

// SetLastScoresTimestamp publishes the most recent scoreboard timestamp.
func SetLastScoresTimestamp(ts time.Time) {
	globalManager.lastScoresTimestamp.Set(float64(ts.Unix()))
}
