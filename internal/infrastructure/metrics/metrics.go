package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/fundledger/internal/domain"
)

// Metrics holds the import pipeline's Prometheus metrics and implements
// usecase.ImportMetrics.
type Metrics struct {
	// Import metrics
	ImportBatches  *prometheus.CounterVec
	ImportRecords  *prometheus.CounterVec
	ImportDuration prometheus.Histogram

	// Rate cache metrics
	RateLookups      *prometheus.CounterVec
	ProviderFailures *prometheus.CounterVec
}

// New creates and registers all metrics with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	f := promauto.With(reg)

	return &Metrics{
		ImportBatches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundledger_import_batches_total",
				Help: "Total import batches by mode",
			},
			[]string{"mode"},
		),
		ImportRecords: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundledger_import_records_total",
				Help: "Total imported records by outcome",
			},
			[]string{"outcome"},
		),
		ImportDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundledger_import_duration_seconds",
			Help:    "Duration of import batches",
			Buckets: prometheus.DefBuckets,
		}),

		RateLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundledger_rate_lookups_total",
				Help: "Total exchange-rate lookups by resolving tier",
			},
			[]string{"tier"},
		),
		ProviderFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundledger_rate_provider_failures_total",
				Help: "Total rate provider failures",
			},
			[]string{"provider", "reason"},
		),
	}
}

// ObserveImport records one finished batch.
func (m *Metrics) ObserveImport(summary *domain.ImportSummary, duration time.Duration) {
	mode := "commit"
	if summary.DryRun {
		mode = "dry_run"
	}

	m.ImportBatches.WithLabelValues(mode).Inc()
	m.ImportRecords.WithLabelValues("imported").Add(float64(summary.Imported))
	m.ImportRecords.WithLabelValues("skipped").Add(float64(summary.Skipped))
	m.ImportRecords.WithLabelValues("failed").Add(float64(summary.Failed))
	m.ImportDuration.Observe(duration.Seconds())
}

// RateLookup counts a lookup resolved by tier.
func (m *Metrics) RateLookup(tier string) {
	m.RateLookups.WithLabelValues(tier).Inc()
}

// ProviderFailure counts a failed provider call.
func (m *Metrics) ProviderFailure(provider, reason string) {
	m.ProviderFailures.WithLabelValues(provider, reason).Inc()
}
