package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the scoring module.
type Metrics struct {
	// Input gathering latencies by source
	InputLatency *prometheus.HistogramVec

	// Overall calculation latency
	CalculateLatency prometheus.Histogram

	// Distribution of produced credit scores
	CreditScores prometheus.Histogram

	// Document metrics that fell back to the neutral score
	NeutralFallbacks *prometheus.CounterVec

	// Calculation failures by error code
	CalculateFailures *prometheus.CounterVec
}

// New creates a new Metrics instance with all scoring metrics registered.
func New() *Metrics {
	return newWith(promauto.With(prometheus.DefaultRegisterer))
}

// NewWithRegistry registers the metrics on reg. Tests pass a fresh registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	return newWith(promauto.With(reg))
}

func newWith(f promauto.Factory) *Metrics {
	return &Metrics{
		InputLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "openscore_scoring_input_duration_seconds",
			Help:    "Duration of input gathering operations by source",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"source"}), // source: "transactions", "accounts", "investments", "income_statement", "balance_sheet"

		CalculateLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "openscore_scoring_calculate_duration_seconds",
			Help:    "Duration of a full score calculation including input gathering",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		CreditScores: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "openscore_scoring_credit_score",
			Help:    "Distribution of computed credit scores",
			Buckets: prometheus.LinearBuckets(10, 10, 9),
		}),

		NeutralFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "openscore_scoring_neutral_fallbacks_total",
			Help: "Total document metrics replaced by the neutral default, by metric",
		}, []string{"metric"}),

		CalculateFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "openscore_scoring_calculate_failures_total",
			Help: "Total failed score calculations by error code",
		}, []string{"code"}),
	}
}

// ObserveInputLatency records the duration of fetching one input.
func (m *Metrics) ObserveInputLatency(source string, d time.Duration) {
	if m != nil {
		m.InputLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// ObserveCalculateLatency records the total calculation duration.
func (m *Metrics) ObserveCalculateLatency(d time.Duration) {
	if m != nil {
		m.CalculateLatency.Observe(d.Seconds())
	}
}

// ObserveCreditScore records a produced score.
func (m *Metrics) ObserveCreditScore(score int) {
	if m != nil {
		m.CreditScores.Observe(float64(score))
	}
}

// IncrementNeutralFallback counts one metric defaulted to neutral.
func (m *Metrics) IncrementNeutralFallback(metric string) {
	if m != nil {
		m.NeutralFallbacks.WithLabelValues(metric).Inc()
	}
}

// IncrementFailure counts a failed calculation.
func (m *Metrics) IncrementFailure(code string) {
	if m != nil {
		m.CalculateFailures.WithLabelValues(code).Inc()
	}
}
