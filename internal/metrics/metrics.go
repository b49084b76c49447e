// Package metrics exposes the Prometheus collectors recorded by the HTTP layer and the AI gateway.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AI call outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeEmpty       = "empty"
	OutcomeUnavailable = "unavailable"
	OutcomeMalformed   = "malformed"
)

// Metrics owns its registry so several servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	aiRequestsTotal     *prometheus.CounterVec
	aiRequestDuration   *prometheus.HistogramVec
	usersRegistered     prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		aiRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_requests_total",
				Help: "Total number of AI provider requests by outcome",
			},
			[]string{"operation", "outcome"},
		),
		aiRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ai_request_duration_seconds",
				Help:    "AI provider request duration in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"operation"},
		),
		usersRegistered: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "users_registered_total",
				Help: "Total number of registered users",
			},
		),
	}
}

func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) RecordAIRequest(operation, outcome string, duration time.Duration) {
	m.aiRequestsTotal.WithLabelValues(operation, outcome).Inc()
	m.aiRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) RecordRegistration() {
	m.usersRegistered.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

