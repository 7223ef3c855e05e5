package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/escaper/internal/errors"
	"github.com/vango-dev/escaper/pkg/escape"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "escaper").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for operation duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
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

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "escaper",
		// Escaping is sub-millisecond; the default buckets start at 5ms.
		Buckets:  prometheus.ExponentialBuckets(0.00001, 4, 10),
		Registry: prometheus.DefaultRegisterer,
	}
}

// Metrics holds the escaper's Prometheus collectors.
type Metrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec
	rejectedURLs      *prometheus.CounterVec
	bytesIn           prometheus.Counter
	bytesOut          prometheus.Counter
	activeStreams     prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		operationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "operations_total",
			Help:        "Total number of escaping operations",
			ConstLabels: config.ConstLabels,
		}, []string{"op", "context", "status"}),

		operationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "operation_duration_seconds",
			Help:        "Escaping operation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"op"}),

		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "errors_total",
			Help:        "Total number of failed operations by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"op", "code"}),

		rejectedURLs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rejected_urls_total",
			Help:        "URLs replaced by the placeholder because of their scheme",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		bytesIn: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bytes_in_total",
			Help:        "Input bytes processed",
			ConstLabels: config.ConstLabels,
		}),

		bytesOut: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bytes_out_total",
			Help:        "Output bytes produced",
			ConstLabels: config.ConstLabels,
		}),

		activeStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_streams",
			Help:        "Number of open WebSocket escaping streams",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Middleware returns middleware recording every operation into m.
func (m *Metrics) Middleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, op Op) (string, error) {
			start := time.Now()
			out, err := next(ctx, op)
			m.operationDuration.WithLabelValues(op.Name).Observe(time.Since(start).Seconds())

			m.bytesIn.Add(float64(len(op.Input)))
			status := "success"
			if err != nil {
				status = "error"
				m.errorsTotal.WithLabelValues(op.Name, errorCode(err)).Inc()
			} else {
				m.bytesOut.Add(float64(len(out)))
				if rejected(op, out) {
					m.rejectedURLs.WithLabelValues(op.Name).Inc()
				}
			}
			m.operationsTotal.WithLabelValues(op.Name, op.Context, status).Inc()

			return out, err
		}
	}
}

// rejected reports whether a URL operation produced the placeholder for
// input that was something else.
func rejected(op Op, out string) bool {
	if out != escape.Placeholder || op.Input == escape.Placeholder {
		return false
	}
	return strings.Contains(op.Name, "url") || strings.Contains(op.Context, "url")
}

// errorCode keeps label cardinality bounded: only registered codes are used.
func errorCode(err error) string {
	code := errors.CodeOf(err)
	if code == "" {
		return "unknown"
	}
	if _, ok := errors.GetTemplate(code); !ok {
		return "unknown"
	}
	return code
}

// StreamOpened records a new WebSocket stream.
func (m *Metrics) StreamOpened() { m.activeStreams.Inc() }

// StreamClosed records a closed WebSocket stream.
func (m *Metrics) StreamClosed() { m.activeStreams.Dec() }
