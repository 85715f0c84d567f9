package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for the enrichment pipeline.
//
// All metrics are prefixed with "peopleops_". Every recording method is safe
// to call on a nil receiver so services can run without metrics in tests.
//
// Metrics:
//   - peopleops_ingestions_total{action} - notifications ingested (created, updated, error)
//   - peopleops_praises_detected_total - recognition rows recorded
//   - peopleops_auto_links_total{outcome} - linker outcomes (linked, existing, none, error)
//   - peopleops_triggers_total{outcome} - extraction trigger dispatches (sent, failed)
//   - peopleops_extractions_total{outcome} - extraction runs (completed, error, rejected)
//   - peopleops_actions_extracted_total - action rows written
//   - peopleops_model_duration_seconds - language-model call latency
//   - peopleops_rate_limited_total - requests rejected by the rate limiter
type Metrics struct {
	IngestionsTotal       *prometheus.CounterVec
	PraisesDetectedTotal  prometheus.Counter
	AutoLinksTotal        *prometheus.CounterVec
	TriggersTotal         *prometheus.CounterVec
	ExtractionsTotal      *prometheus.CounterVec
	ActionsExtractedTotal prometheus.Counter
	ModelDuration         prometheus.Histogram
	RateLimitedTotal      prometheus.Counter
}

// NewMetrics creates and registers the metrics once per process
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			IngestionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "peopleops_ingestions_total",
					Help: "Total number of meeting notifications ingested",
				},
				[]string{"action"},
			),
			PraisesDetectedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "peopleops_praises_detected_total",
					Help: "Total number of recognitions recorded from meetings",
				},
			),
			AutoLinksTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "peopleops_auto_links_total",
					Help: "Total number of meeting to one-on-one link attempts",
				},
				[]string{"outcome"},
			),
			TriggersTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "peopleops_triggers_total",
					Help: "Total number of extraction trigger dispatches",
				},
				[]string{"outcome"},
			),
			ExtractionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "peopleops_extractions_total",
					Help: "Total number of transcript extraction runs",
				},
				[]string{"outcome"},
			),
			ActionsExtractedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "peopleops_actions_extracted_total",
					Help: "Total number of action items written",
				},
			),
			ModelDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "peopleops_model_duration_seconds",
					Help:    "Duration of language-model calls in seconds",
					Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
				},
			),
			RateLimitedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "peopleops_rate_limited_total",
					Help: "Total number of requests rejected by the rate limiter",
				},
			),
		}
	})
	return globalMetrics
}

// RecordIngestion counts one ingestion outcome
func (m *Metrics) RecordIngestion(action string) {
	if m == nil {
		return
	}
	m.IngestionsTotal.WithLabelValues(action).Inc()
}

// RecordPraises adds recorded recognitions
func (m *Metrics) RecordPraises(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PraisesDetectedTotal.Add(float64(n))
}

// RecordAutoLink counts one linker outcome
func (m *Metrics) RecordAutoLink(outcome string) {
	if m == nil {
		return
	}
	m.AutoLinksTotal.WithLabelValues(outcome).Inc()
}

// RecordTrigger counts one trigger dispatch outcome
func (m *Metrics) RecordTrigger(outcome string) {
	if m == nil {
		return
	}
	m.TriggersTotal.WithLabelValues(outcome).Inc()
}

// RecordExtraction counts one extraction outcome and its written actions
func (m *Metrics) RecordExtraction(outcome string, actions int) {
	if m == nil {
		return
	}
	m.ExtractionsTotal.WithLabelValues(outcome).Inc()
	if actions > 0 {
		m.ActionsExtractedTotal.Add(float64(actions))
	}
}

// ObserveModelDuration records language-model latency
func (m *Metrics) ObserveModelDuration(seconds float64) {
	if m == nil {
		return
	}
	m.ModelDuration.Observe(seconds)
}

// RecordRateLimited counts one rejected request
func (m *Metrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.RateLimitedTotal.Inc()
}
