// Package metrics provides Prometheus metrics for the matching engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the matching service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Auction progress
	matchRuns       prometheus.Counter
	rounds          prometheus.Counter
	assignments     prometheus.Counter
	capHits         prometheus.Counter
	groupsGenerated prometheus.Counter
	bidsEvaluated   prometheus.Counter

	// Data quality
	invalidProfiles prometheus.Counter

	// Pool state
	poolSize  prometheus.Gauge
	openUnits prometheus.Gauge

	// Money and timing
	paymentAmount prometheus.Histogram
	runDuration   prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the subsystem for all metrics.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithMetricsEnabled enables or disables metrics collection.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithPrometheusRegistry sets a custom Prometheus registry.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "homebid",
		subsystem:        "auction",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.matchRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_runs_total",
		Help:      "Total number of matching runs executed",
	})

	m.rounds = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rounds_total",
		Help:      "Total number of auction rounds completed",
	})

	m.assignments = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assignments_total",
		Help:      "Total number of unit assignments recorded",
	})

	m.capHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "iteration_cap_hits_total",
		Help:      "Total number of runs terminated by the iteration cap (data anomaly indicator)",
	})

	m.groupsGenerated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "groups_generated_total",
		Help:      "Total number of candidate groups enumerated across rounds",
	})

	m.bidsEvaluated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "bids_evaluated_total",
		Help:      "Total number of (unit, group) bids evaluated across rounds",
	})

	m.invalidProfiles = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "invalid_profiles_total",
		Help:      "Total number of applicants excluded for undecodable or invalid preference profiles",
	})

	m.poolSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pool_size",
		Help:      "Number of unassigned applicants at the start of the latest run",
	})

	m.openUnits = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "open_units",
		Help:      "Number of units with remaining capacity at the start of the latest run",
	})

	m.paymentAmount = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "payment_amount",
		Help:      "Histogram of per-round total payments",
		Buckets:   prometheus.ExponentialBuckets(10, 2.5, 10),
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_milliseconds",
		Help:      "Histogram of full matching run duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers recording on the global manager.

// RecordMatchRun increments the matching-run counter.
func RecordMatchRun() {
	if globalManager != nil && globalManager.enabled {
		globalManager.matchRuns.Inc()
	}
}

// RecordRounds adds the number of rounds a run performed.
func RecordRounds(n int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.rounds.Add(float64(n))
	}
}

// RecordAssignment increments the assignment counter.
func RecordAssignment() {
	if globalManager != nil && globalManager.enabled {
		globalManager.assignments.Inc()
	}
}

// RecordCapHit increments the iteration-cap counter.
func RecordCapHit() {
	if globalManager != nil && globalManager.enabled {
		globalManager.capHits.Inc()
	}
}

// RecordGroupsGenerated adds to the generated-group counter.
func RecordGroupsGenerated(n int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.groupsGenerated.Add(float64(n))
	}
}

// RecordBidsEvaluated adds to the evaluated-bid counter.
func RecordBidsEvaluated(n int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.bidsEvaluated.Add(float64(n))
	}
}

// RecordInvalidProfile increments the excluded-applicant counter.
func RecordInvalidProfile() {
	if globalManager != nil && globalManager.enabled {
		globalManager.invalidProfiles.Inc()
	}
}

// UpdatePoolSize sets the unassigned-pool gauge.
func UpdatePoolSize(size int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.poolSize.Set(float64(size))
	}
}

// UpdateOpenUnits sets the open-unit gauge.
func UpdateOpenUnits(count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.openUnits.Set(float64(count))
	}
}

// RecordPayment observes one round's total payment.
func RecordPayment(amount float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.paymentAmount.Observe(amount)
	}
}

// RecordRunDuration observes a full run duration in milliseconds.
func RecordRunDuration(ms float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.runDuration.Observe(ms)
	}
}

// GetRegistry returns the custom Prometheus registry for embedding.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
