// Package metrics provides observability for the gateway core: proxied
// request outcomes, upstream failures, guard decisions, and session clears.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the ui-api.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	UpstreamErrors  *prometheus.CounterVec
	GuardDecisions  *prometheus.CounterVec
	SessionClears   *prometheus.CounterVec
}

// New registers all collectors on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers all collectors on the given registerer. Tests pass a
// fresh registry to avoid cross-test collisions.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uiapi_gateway_requests_total",
			Help: "Total proxied requests by endpoint, method, and status",
		}, []string{"endpoint", "method", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "uiapi_gateway_request_duration_seconds",
			Help:    "Duration of proxied requests (upstream round trip included)",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint", "method"}),
		UpstreamErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uiapi_gateway_upstream_errors_total",
			Help: "Upstream failures by reason",
		}, []string{"reason"}),
		GuardDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uiapi_guard_decisions_total",
			Help: "Access guard decisions by outcome",
		}, []string{"decision"}),
		SessionClears: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "uiapi_session_clears_total",
			Help: "Session clears by cause",
		}, []string{"cause"}),
	}
}

// ObserveRequest records one proxied request outcome.
func (m *Metrics) ObserveRequest(endpoint, method string, status int, d time.Duration) {
	m.Requests.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(endpoint, method).Observe(d.Seconds())
}

// ObserveGuardDecision records one guard decision outcome.
func (m *Metrics) ObserveGuardDecision(decision string) {
	m.GuardDecisions.WithLabelValues(decision).Inc()
}
