package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for embedding calls.
type Metrics struct {
	// Backend call latency by engine and result ("ok", "error")
	EncodeLatency *prometheus.HistogramVec

	// Cache lookups by result ("hit", "miss", "error")
	CacheLookups *prometheus.CounterVec

	// Calls rejected because the circuit was open
	CircuitRejections prometheus.Counter

	// Calls waiting on or holding a concurrency slot
	InFlight prometheus.Gauge
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the embedding metrics on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EncodeLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "doccheck_embedding_encode_duration_seconds",
			Help:    "Duration of embedding backend calls",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"engine", "result"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "doccheck_embedding_cache_lookups_total",
			Help: "Embedding cache lookups by result",
		}, []string{"result"}),

		CircuitRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "doccheck_embedding_circuit_rejections_total",
			Help: "Embedding calls rejected while the circuit breaker was open",
		}),

		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "doccheck_embedding_in_flight",
			Help: "Embedding calls currently holding a concurrency slot",
		}),
	}
}

// ObserveEncode records a backend call.
func (m *Metrics) ObserveEncode(engine string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.EncodeLatency.WithLabelValues(engine, result).Observe(d.Seconds())
}

// IncrementCacheLookup records a cache lookup result.
func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

// IncrementCircuitRejection records a call shed by the breaker.
func (m *Metrics) IncrementCircuitRejection() {
	if m != nil {
		m.CircuitRejections.Inc()
	}
}

// AddInFlight adjusts the in-flight gauge.
func (m *Metrics) AddInFlight(delta float64) {
	if m != nil {
		m.InFlight.Add(delta)
	}
}
