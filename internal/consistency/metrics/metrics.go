package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for document consistency checks.
type Metrics struct {
	// Verdicts by aggregate status
	Outcomes *prometheus.CounterVec

	// Issues by field label and severity
	Issues *prometheus.CounterVec

	// Description comparisons by method: "semantic", "containment", "fallback"
	DescriptionChecks *prometheus.CounterVec

	// Full evaluation latency including any embedding calls
	EvaluateLatency prometheus.Histogram
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the consistency metrics on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "doccheck_validation_outcomes_total",
			Help: "Total document validations by aggregate status",
		}, []string{"status"}),

		Issues: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "doccheck_validation_issues_total",
			Help: "Total validation issues by field and severity",
		}, []string{"field", "severity"}),

		DescriptionChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "doccheck_description_checks_total",
			Help: "Product description comparisons by method",
		}, []string{"method"}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "doccheck_validation_duration_seconds",
			Help:    "Duration of a full document validation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncrementOutcome records an aggregate verdict.
func (m *Metrics) IncrementOutcome(status string) {
	if m != nil {
		m.Outcomes.WithLabelValues(status).Inc()
	}
}

// IncrementIssue records a single issue.
func (m *Metrics) IncrementIssue(field, severity string) {
	if m != nil {
		m.Issues.WithLabelValues(field, severity).Inc()
	}
}

// IncrementDescriptionCheck records which method graded a description.
func (m *Metrics) IncrementDescriptionCheck(method string) {
	if m != nil {
		m.DescriptionChecks.WithLabelValues(method).Inc()
	}
}

// ObserveEvaluateLatency records the total validation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
