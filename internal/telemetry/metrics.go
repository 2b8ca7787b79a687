package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// Metrics records collection outcomes on the prometheus registry and, when
// an OTLP endpoint is configured, through the otel meter provider.
type Metrics struct {
	collectDuration prometheus.Histogram
	collectTotal    *prometheus.CounterVec
	cacheReads      *prometheus.CounterVec

	collectSeconds metric.Float64Histogram
}

func NewMetrics(reg prometheus.Registerer, mp metric.MeterProvider) (*Metrics, error) {
	m := &Metrics{
		collectDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "subtelemetry",
			Name:      "collect_duration_seconds",
			Help:      "Time taken to compute a telemetry snapshot.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		collectTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subtelemetry",
			Name:      "collect_total",
			Help:      "Telemetry collections by result.",
		}, []string{"result"}),
		cacheReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "subtelemetry",
			Name:      "cache_reads_total",
			Help:      "Telemetry reads by cache status.",
		}, []string{"status"}),
	}

	for _, c := range []prometheus.Collector{m.collectDuration, m.collectTotal, m.cacheReads} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	hist, err := mp.Meter(tracerName).Float64Histogram("subtelemetry.collect.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Time taken to compute a telemetry snapshot."),
	)
	if err != nil {
		return nil, err
	}
	m.collectSeconds = hist
	return m, nil
}

func (m *Metrics) observeCollect(ctx context.Context, result string, d time.Duration) {
	m.collectDuration.Observe(d.Seconds())
	m.collectTotal.WithLabelValues(result).Inc()
	m.collectSeconds.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("result", result)))
}

func (m *Metrics) cacheRead(status domain.CacheStatus) {
	m.cacheReads.WithLabelValues(string(status)).Inc()
}
