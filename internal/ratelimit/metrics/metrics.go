package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Decisions by outcome: "allowed", "rejected", "error"
	Decisions *prometheus.CounterVec
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "doccheck_ratelimit_decisions_total",
			Help: "Rate limit decisions on validation endpoints by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementDecision(outcome string) {
	if m != nil {
		m.Decisions.WithLabelValues(outcome).Inc()
	}
}
