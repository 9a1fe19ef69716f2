package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Adapter call metrics
	AdapterCalls    *prometheus.CounterVec
	AdapterAttempts *prometheus.CounterVec
	AdapterDuration *prometheus.HistogramVec

	// Circuit breaker metrics
	BreakerState      *prometheus.GaugeVec
	BreakerRejections *prometheus.CounterVec

	// Health monitor metrics
	HealthChecks  *prometheus.CounterVec
	SystemHealthy prometheus.Gauge

	// Pipeline metrics
	PipelineSteps *prometheus.CounterVec
}

// NewMetrics creates a new metrics collector on its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		AdapterCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adapterhub_adapter_calls_total",
				Help: "Total number of logical adapter calls",
			},
			[]string{"adapter", "type", "status"},
		),
		AdapterAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adapterhub_adapter_attempts_total",
				Help: "Total number of network attempts against adapters",
			},
			[]string{"adapter", "outcome"},
		),
		AdapterDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "adapterhub_adapter_call_duration_seconds",
				Help:    "Adapter call duration in seconds, retries included",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"adapter"},
		),

		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "adapterhub_breaker_state",
				Help: "Circuit breaker state per adapter (0 closed, 1 half-open, 2 open)",
			},
			[]string{"adapter"},
		),
		BreakerRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adapterhub_breaker_rejections_total",
				Help: "Calls rejected by an open circuit breaker",
			},
			[]string{"adapter"},
		),

		HealthChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adapterhub_health_checks_total",
				Help: "Total number of system health probes",
			},
			[]string{"status"},
		),
		SystemHealthy: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "adapterhub_system_healthy",
				Help: "Result of the last system health probe (1 healthy, 0 unhealthy)",
			},
		),

		PipelineSteps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adapterhub_pipeline_steps_total",
				Help: "Total number of sequential pipeline steps",
			},
			[]string{"stage", "status"},
		),
	}
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the metrics in Prometheus format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordCall records a finished logical call
func (m *Metrics) RecordCall(adapter, adapterType, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.AdapterCalls.WithLabelValues(adapter, adapterType, status).Inc()
	m.AdapterDuration.WithLabelValues(adapter).Observe(duration.Seconds())
}

// RecordAttempt records one network attempt
func (m *Metrics) RecordAttempt(adapter, outcome string) {
	if m == nil {
		return
	}
	m.AdapterAttempts.WithLabelValues(adapter, outcome).Inc()
}

// SetBreakerState publishes the breaker state for an adapter
func (m *Metrics) SetBreakerState(adapter string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(adapter).Set(float64(state))
}

// RecordRejection records a call turned away by the breaker
func (m *Metrics) RecordRejection(adapter string) {
	if m == nil {
		return
	}
	m.BreakerRejections.WithLabelValues(adapter).Inc()
}

// RecordHealthCheck records a system health probe
func (m *Metrics) RecordHealthCheck(healthy bool) {
	if m == nil {
		return
	}
	if healthy {
		m.HealthChecks.WithLabelValues("ok").Inc()
		m.SystemHealthy.Set(1)
		return
	}
	m.HealthChecks.WithLabelValues("error").Inc()
	m.SystemHealthy.Set(0)
}

// RecordPipelineStep records one sequential pipeline step
func (m *Metrics) RecordPipelineStep(stage, status string) {
	if m == nil {
		return
	}
	m.PipelineSteps.WithLabelValues(stage, status).Inc()
}
