package proxy

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the proxy's Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "btp").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for codec duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// Gatherer serves /metrics.
	// Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer
}

// MetricsOption configures the proxy's Prometheus metrics.
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

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry registers metrics with reg and serves them from it.
func WithRegistry(reg *prometheus.Registry) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = reg
		c.Gatherer = reg
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "btp",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
		Gatherer:  prometheus.DefaultGatherer,
	}
}

// Metrics holds the proxy's Prometheus collectors.
type Metrics struct {
	framesDecoded   *prometheus.CounterVec
	batches         *prometheus.CounterVec
	codecDuration   *prometheus.HistogramVec
	websocketFrames *prometheus.CounterVec
	downgrades      prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics creates and registers the proxy metrics. Registering twice
// with the same registry panics, as with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		framesDecoded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_decoded_total",
			Help:        "Total number of BlazorPack messages decoded, by variant",
			ConstLabels: config.ConstLabels,
		}, []string{"variant"}),

		batches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batches_total",
			Help:        "Total number of batches decoded or encoded",
			ConstLabels: config.ConstLabels,
		}, []string{"direction", "status"}),

		codecDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "codec_duration_seconds",
			Help:        "Batch decode and encode duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"direction"}),

		websocketFrames: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_frames_total",
			Help:        "Total number of relayed WebSocket messages",
			ConstLabels: config.ConstLabels,
		}, []string{"direction"}),

		downgrades: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "downgrades_total",
			Help:        "Total number of negotiate responses stripped of WebSockets",
			ConstLabels: config.ConstLabels,
		}),

		gatherer: config.Gatherer,
	}
}

// Handler serves the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// The record methods accept a nil receiver so callers need not check
// whether metrics are enabled.

func (m *Metrics) recordBatch(direction string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.batches.WithLabelValues(direction, status).Inc()
	m.codecDuration.WithLabelValues(direction).Observe(time.Since(start).Seconds())
}

func (m *Metrics) recordVariant(variant string) {
	if m == nil {
		return
	}
	m.framesDecoded.WithLabelValues(variant).Inc()
}

func (m *Metrics) recordWebSocketFrame(direction string) {
	if m == nil {
		return
	}
	m.websocketFrames.WithLabelValues(direction).Inc()
}

func (m *Metrics) recordDowngrade() {
	if m == nil {
		return
	}
	m.downgrades.Inc()
}
