package instrument

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vireo-dev/vireo/pkg/vireo"
)

// MetricsConfig configures the Prometheus collector.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vireo").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush and effect durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collector.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "vireo",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// Metrics is a vireo.Observer that records engine activity in Prometheus.
//
// Metrics collected:
//   - vireo_flushes_total: Counter of scheduler flushes
//   - vireo_flush_duration_seconds: Histogram of flush duration
//   - vireo_flush_jobs: Histogram of effects run per flush
//   - vireo_effect_runs_total: Counter of individual effect runs
//   - vireo_effect_duration_seconds: Histogram of effect run duration
//   - vireo_triggers_total: Counter of write notifications
//   - vireo_notified_listeners_total: Counter of listeners notified by writes
type Metrics struct {
	flushesTotal    prometheus.Counter
	flushDuration   prometheus.Histogram
	flushJobs       prometheus.Histogram
	effectRunsTotal prometheus.Counter
	effectDuration  prometheus.Histogram
	triggersTotal   prometheus.Counter
	notifiedTotal   prometheus.Counter
}

// NewMetrics creates and registers the Prometheus collector.
//
// Registering two collectors with the same namespace on the same registry
// panics, as usual with promauto; use WithRegistry for isolated instances.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		flushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of scheduler flushes",
			ConstLabels: config.ConstLabels,
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Scheduler flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		flushJobs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_jobs",
			Help:        "Number of effects run per flush",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),

		effectRunsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of effect runs",
			ConstLabels: config.ConstLabels,
		}),

		effectDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_duration_seconds",
			Help:        "Effect run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		triggersTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "triggers_total",
			Help:        "Total number of write notifications dispatched",
			ConstLabels: config.ConstLabels,
		}),

		notifiedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notified_listeners_total",
			Help:        "Total number of listeners notified by writes",
			ConstLabels: config.ConstLabels,
		}),
	}
}

var _ vireo.Observer = (*Metrics)(nil)

// FlushStarted implements vireo.Observer.
func (m *Metrics) FlushStarted(queued int) {
	m.flushesTotal.Inc()
	m.flushJobs.Observe(float64(queued))
}

// FlushEnded implements vireo.Observer.
func (m *Metrics) FlushEnded(ran int, took time.Duration) {
	m.flushDuration.Observe(took.Seconds())
}

// EffectRan implements vireo.Observer.
func (m *Metrics) EffectRan(id uint64, took time.Duration) {
	m.effectRunsTotal.Inc()
	m.effectDuration.Observe(took.Seconds())
}

// Triggered implements vireo.Observer.
func (m *Metrics) Triggered(target uint64, key any, notified int) {
	m.triggersTotal.Inc()
	m.notifiedTotal.Add(float64(notified))
}
