package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Compile-time interface check.
var _ Metrics = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the Metrics interface using Prometheus.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	blockNumber    prometheus.Gauge
	blocksExecuted prometheus.Counter
	blocksRejected *prometheus.CounterVec
	extrinsics     *prometheus.CounterVec
	blockDuration  prometheus.Histogram
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance with
// its own registry.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),

		blockNumber: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "block_number",
				Help:      "Current block number",
			},
		),
		blocksExecuted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "blocks_executed_total",
				Help:      "Total number of blocks executed",
			},
		),
		blocksRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "blocks_rejected_total",
				Help:      "Total number of blocks rejected before execution",
			},
			[]string{"reason"},
		),
		extrinsics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "extrinsics_total",
				Help:      "Total number of extrinsics applied",
			},
			[]string{"pallet", "result"},
		),
		blockDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "block_duration_seconds",
				Help:      "Time spent executing a block",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
	}

	m.registry.MustRegister(
		m.blockNumber,
		m.blocksExecuted,
		m.blocksRejected,
		m.extrinsics,
		m.blockDuration,
	)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PrometheusMetrics) SetBlockNumber(n uint64) {
	m.blockNumber.Set(float64(n))
}

func (m *PrometheusMetrics) IncBlocksExecuted() {
	m.blocksExecuted.Inc()
}

func (m *PrometheusMetrics) IncBlocksRejected(reason string) {
	m.blocksRejected.WithLabelValues(reason).Inc()
}

func (m *PrometheusMetrics) IncExtrinsics(pallet, result string) {
	m.extrinsics.WithLabelValues(pallet, result).Inc()
}

func (m *PrometheusMetrics) ObserveBlockDuration(d time.Duration) {
	m.blockDuration.Observe(d.Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
