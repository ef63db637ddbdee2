package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics provides observability for document handling.
type Metrics struct {
	ExtractLatency  *prometheus.HistogramVec
	ExtractFailures *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
	CacheDegraded   prometheus.Gauge
	Uploads         *prometheus.CounterVec
}

// New registers the document metrics on the default registry.
func New() *Metrics {
	return newWith(promauto.With(prometheus.DefaultRegisterer))
}

// NewWithRegistry registers the metrics on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	return newWith(promauto.With(reg))
}

func newWith(f promauto.Factory) *Metrics {
	return &Metrics{
		ExtractLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "openscore_documents_extract_duration_seconds",
			Help:    "Duration of PDF text extraction by document kind",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"kind"}),
		ExtractFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "openscore_documents_extract_failures_total",
			Help: "PDF documents that could not be read, by document kind",
		}, []string{"kind"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "openscore_documents_text_cache_lookups_total",
			Help: "Extracted text cache lookups by result",
		}, []string{"result"}),
		CacheDegraded: f.NewGauge(prometheus.GaugeOpts{
			Name: "openscore_documents_text_cache_degraded",
			Help: "1 while the text cache serves from the in-process fallback",
		}),
		Uploads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "openscore_documents_uploads_total",
			Help: "Stored document uploads by document kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) ObserveExtract(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.ExtractLatency.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) IncrementExtractFailure(kind string) {
	if m == nil {
		return
	}
	m.ExtractFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) SetCacheDegraded(degraded bool) {
	if m == nil {
		return
	}
	if degraded {
		m.CacheDegraded.Set(1)
		return
	}
	m.CacheDegraded.Set(0)
}

func (m *Metrics) IncrementUpload(kind string) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(kind).Inc()
}
