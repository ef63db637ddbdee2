package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync triggers.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// Metrics provides observability for aggregation-provider syncs.
type Metrics struct {
	SyncRuns         *prometheus.CounterVec
	SyncFailures     *prometheus.CounterVec
	SyncLatency      prometheus.Histogram
	SyncedRecords    *prometheus.CounterVec
	ItemsLinked      prometheus.Counter
	ProviderNotReady prometheus.Counter
}

// New registers the financial metrics on the default registry.
func New() *Metrics {
	return newWith(promauto.With(prometheus.DefaultRegisterer))
}

// NewWithRegistry registers the metrics on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	return newWith(promauto.With(reg))
}

func newWith(f promauto.Factory) *Metrics {
	return &Metrics{
		SyncRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "openscore_financial_sync_runs_total",
			Help: "Item syncs started, by trigger",
		}, []string{"trigger"}),
		SyncFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "openscore_financial_sync_failures_total",
			Help: "Item syncs that failed, by trigger",
		}, []string{"trigger"}),
		SyncLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "openscore_financial_sync_duration_seconds",
			Help:    "Duration of one item sync",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SyncedRecords: f.NewCounterVec(prometheus.CounterOpts{
			Name: "openscore_financial_synced_records_total",
			Help: "Records stored by syncs, by record type",
		}, []string{"type"}),
		ItemsLinked: f.NewCounter(prometheus.CounterOpts{
			Name: "openscore_financial_items_linked_total",
			Help: "Institutions linked through a public token exchange",
		}),
		ProviderNotReady: f.NewCounter(prometheus.CounterOpts{
			Name: "openscore_financial_provider_not_ready_total",
			Help: "Syncs that found provider data still being prepared",
		}),
	}
}

func (m *Metrics) IncrementSyncRun(trigger string) {
	if m == nil {
		return
	}
	m.SyncRuns.WithLabelValues(trigger).Inc()
}

func (m *Metrics) IncrementSyncFailure(trigger string) {
	if m == nil {
		return
	}
	m.SyncFailures.WithLabelValues(trigger).Inc()
}

func (m *Metrics) ObserveSync(d time.Duration) {
	if m == nil {
		return
	}
	m.SyncLatency.Observe(d.Seconds())
}

// AddSynced counts stored records of one sync.
func (m *Metrics) AddSynced(accounts, transactions, holdings, liabilities int) {
	if m == nil {
		return
	}
	m.SyncedRecords.WithLabelValues("accounts").Add(float64(accounts))
	m.SyncedRecords.WithLabelValues("transactions").Add(float64(transactions))
	m.SyncedRecords.WithLabelValues("holdings").Add(float64(holdings))
	m.SyncedRecords.WithLabelValues("liabilities").Add(float64(liabilities))
}

func (m *Metrics) IncrementItemsLinked() {
	if m == nil {
		return
	}
	m.ItemsLinked.Inc()
}

func (m *Metrics) IncrementProviderNotReady() {
	if m == nil {
		return
	}
	m.ProviderNotReady.Inc()
}
