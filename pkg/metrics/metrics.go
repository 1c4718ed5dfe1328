// Package metrics exposes Prometheus instrumentation for the chat parsing
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Parse outcome labels.
const (
	OutcomeRecorded        = "recorded"
	OutcomeMissingAmount   = "missing_amount"
	OutcomeMissingCategory = "missing_category"
	OutcomeNotUnderstood   = "not_understood"
)

// Metrics holds the collectors for the chat parsing pipeline.
type Metrics struct {
	ParseOutcomes    *prometheus.CounterVec
	ParseConfidence  prometheus.Histogram
	ExpensesRecorded prometheus.Counter
	ChatMessages     prometheus.Counter
}

// New registers the collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ParseOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartspend",
			Subsystem: "chat",
			Name:      "parse_outcomes_total",
			Help:      "Parse results bucketed by what the bot did with them.",
		}, []string{"outcome"}),
		ParseConfidence: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "smartspend",
			Subsystem: "chat",
			Name:      "parse_confidence",
			Help:      "Confidence score distribution of parsed utterances.",
			Buckets:   []float64{0.1, 0.3, 0.5, 0.7, 0.8, 0.9, 1.0},
		}),
		ExpensesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "smartspend",
			Subsystem: "chat",
			Name:      "expenses_recorded_total",
			Help:      "Expenses auto-recorded from actionable parses.",
		}),
		ChatMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "smartspend",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "User messages handled by the chat service.",
		}),
	}
}
