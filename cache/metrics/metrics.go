package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/status-im/fetch-common/cache"
)

const (
	DefaultNamespace = "fetch"
	DefaultSubsystem = "cache"
)

// Ensure CacheMetrics implements cache.MetricsRecorder
var _ cache.MetricsRecorder = (*CacheMetrics)(nil)

// Config defines configuration for cache metrics
type Config struct {
	Namespace string // e.g. "scraper", "collector"
	Subsystem string // default: "cache"
	Registry  prometheus.Registerer
}

// CacheMetrics records cache behavior as Prometheus metrics
type CacheMetrics struct {
	Hits              *prometheus.CounterVec
	Misses            *prometheus.CounterVec
	Sets              *prometheus.CounterVec
	Errors            *prometheus.CounterVec
	BytesWritten      *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	ItemAge           *prometheus.HistogramVec
	Capacity          *prometheus.GaugeVec
	Used              *prometheus.GaugeVec
}

// New creates a CacheMetrics instance registered with the given registry
// (the default registry when unset)
func New(cfg Config) *CacheMetrics {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = DefaultSubsystem
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(cfg.Registry)

	m := &CacheMetrics{}

	m.Hits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "hits_total",
			Help:      "Total number of cache hits",
		},
		[]string{"backend"},
	)

	m.Misses = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "misses_total",
			Help:      "Total number of cache misses",
		},
		[]string{"backend"},
	)

	m.Sets = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "sets_total",
			Help:      "Total number of cache writes",
		},
		[]string{"backend"},
	)

	m.Errors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "errors_total",
			Help:      "Total number of cache errors by kind",
		},
		[]string{"backend", "kind"},
	)

	m.BytesWritten = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "bytes_written_total",
			Help:      "Total bytes written to the cache",
		},
		[]string{"backend"},
	)

	m.OperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "operation_duration_seconds",
			Help:      "Duration of cache operations",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "backend"},
	)

	m.ItemAge = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "item_age_seconds",
			Help:      "Age of replayed cache entries at hit time",
			Buckets:   []float64{1, 60, 600, 3600, 21600, 86400, 604800},
		},
		[]string{"backend"},
	)

	m.Capacity = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "capacity_bytes",
			Help:      "Configured cache capacity",
		},
		[]string{"backend"},
	)

	m.Used = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "used_bytes",
			Help:      "Approximate cache usage",
		},
		[]string{"backend"},
	)

	return m
}

func (m *CacheMetrics) RecordHit(backend string, itemAge time.Duration) {
	m.Hits.WithLabelValues(backend).Inc()
	m.ItemAge.WithLabelValues(backend).Observe(itemAge.Seconds())
}

func (m *CacheMetrics) RecordMiss(backend string) {
	m.Misses.WithLabelValues(backend).Inc()
}

func (m *CacheMetrics) RecordSet(backend string, dataSize int) {
	m.Sets.WithLabelValues(backend).Inc()
	m.BytesWritten.WithLabelValues(backend).Add(float64(dataSize))
}

func (m *CacheMetrics) RecordError(backend, kind string) {
	m.Errors.WithLabelValues(backend, kind).Inc()
}

func (m *CacheMetrics) UpdateCapacity(backend string, capacity, used int64) {
	m.Capacity.WithLabelValues(backend).Set(float64(capacity))
	m.Used.WithLabelValues(backend).Set(float64(used))
}

func (m *CacheMetrics) TimeOperation(operation, backend string) func() {
	start := time.Now()
	return func() {
		m.OperationDuration.WithLabelValues(operation, backend).Observe(time.Since(start).Seconds())
	}
}
