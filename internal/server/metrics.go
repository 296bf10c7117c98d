package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/spigell/scholarship-matcher/internal/eligibility"
)

const namespace = "scholarship_matcher"

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	Passes   *prometheus.CounterVec
	Outcomes *prometheus.CounterVec
	Skipped  prometheus.Counter
	Duration prometheus.Histogram
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Passes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "passes_total",
				Help:      "Total number of evaluation passes by result",
			},
			[]string{"result"},
		),
		Outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outcomes_total",
				Help:      "Total number of scholarship verdicts by status",
			},
			[]string{"status"},
		),
		Skipped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "skipped_entries_total",
				Help:      "Total number of malformed catalog entries skipped during passes",
			},
		),
		Duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pass_duration_seconds",
				Help:      "Duration of evaluation passes in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
		),
	}
}

func (m *Metrics) observePass(pass *eligibility.Pass, err error, elapsed time.Duration) {
	m.Duration.Observe(elapsed.Seconds())
	if err != nil {
		m.Passes.WithLabelValues("error").Inc()
		return
	}
	m.Passes.WithLabelValues("ok").Inc()
	m.Skipped.Add(float64(len(pass.Skipped)))
	for _, r := range pass.Results {
		m.Outcomes.WithLabelValues(string(r.Status)).Inc()
	}
}
