package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP-level Prometheus metrics.
type Metrics struct {
	RequestLatency *prometheus.HistogramVec
	Requests       *prometheus.CounterVec
}

// New creates and registers the metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "doccheck_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by route",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"method", "route"}),
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "doccheck_http_requests_total",
			Help: "HTTP requests by route and status class",
		}, []string{"method", "route", "status"}),
	}
}

// ObserveRequest records one completed request.
func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestLatency.WithLabelValues(method, route).Observe(d.Seconds())
	m.Requests.WithLabelValues(method, route, status).Inc()
}
