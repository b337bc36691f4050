package parse

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	parsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bolinas_parses_total",
		Help: "Parse calls by input kind and outcome (success, failure, error)",
	}, []string{"kind", "outcome"})

	parseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bolinas_parse_duration_seconds",
		Help:    "Time spent in the deduction loop of one parse call",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
	}, []string{"kind"})

	itemsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bolinas_items_processed_total",
		Help: "Items popped from the agenda",
	}, []string{"kind"})

	completionChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bolinas_completion_checks_total",
		Help: "Item pairs tested for completion",
	}, []string{"kind"})

	extractionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bolinas_forest_consistency_errors_total",
		Help: "Forest extractions aborted by an inconsistent chart",
	})
)

func observe(kind string, c *Chart, err error) {
	outcome := "failure"
	switch {
	case err != nil:
		outcome = "error"
	case c.Success():
		outcome = "success"
	}
	parsesTotal.WithLabelValues(kind, outcome).Inc()
	if c == nil {
		return
	}
	parseDuration.WithLabelValues(kind).Observe(c.Stats.Duration.Seconds())
	itemsProcessed.WithLabelValues(kind).Add(float64(c.Stats.Items))
	completionChecks.WithLabelValues(kind).Add(float64(c.Stats.CompletionChecks))
}
