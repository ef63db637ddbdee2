package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks score event delivery.
type Metrics struct {
	Published      *prometheus.CounterVec
	PublishFailure *prometheus.CounterVec
	Dropped        prometheus.Counter
	Queued         prometheus.Gauge
}

// NewMetrics registers the event metrics on the default registry.
func NewMetrics() *Metrics {
	return newMetricsWith(promauto.With(prometheus.DefaultRegisterer))
}

// NewMetricsWithRegistry registers the metrics on reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	return newMetricsWith(promauto.With(reg))
}

func newMetricsWith(f promauto.Factory) *Metrics {
	return &Metrics{
		Published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "openscore_events_published_total",
			Help: "Score events delivered, by sink",
		}, []string{"sink"}),
		PublishFailure: f.NewCounterVec(prometheus.CounterOpts{
			Name: "openscore_events_publish_failures_total",
			Help: "Score events that could not be delivered, by sink",
		}, []string{"sink"}),
		Dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "openscore_events_dropped_total",
			Help: "Score events dropped because the delivery queue was full",
		}),
		Queued: f.NewGauge(prometheus.GaugeOpts{
			Name: "openscore_events_queued",
			Help: "Score events waiting for delivery",
		}),
	}
}

func (m *Metrics) IncPublished(sink string) {
	if m == nil {
		return
	}
	m.Published.WithLabelValues(sink).Inc()
}

func (m *Metrics) IncPublishFailure(sink string) {
	if m == nil {
		return
	}
	m.PublishFailure.WithLabelValues(sink).Inc()
}

func (m *Metrics) IncDropped() {
	if m == nil {
		return
	}
	m.Dropped.Inc()
}

func (m *Metrics) SetQueued(n int) {
	if m == nil {
		return
	}
	m.Queued.Set(float64(n))
}
