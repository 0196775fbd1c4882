package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency. Dominated by the two sequential upstream calls on /actions routes.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// Upstream (Open-Meteo) call rate per api (geocode, forecast) and status.
	UpstreamCallsTotal *prometheus.CounterVec

	// Upstream latency per api. Watch for: p95 approaching upstream.timeout.
	UpstreamDuration *prometheus.HistogramVec

	// Upstream failures by category (timeout, network, upstream_5xx, ...).
	UpstreamErrorsTotal *prometheus.CounterVec

	// Circuit breaker state per api: 0 closed, 1 half-open, 2 open.
	CircuitBreakerState *prometheus.GaugeVec

	// User actions (search, locate, units) by outcome (rendered, not_found, failed, ignored, superseded).
	ActionsTotal *prometheus.CounterVec

	// End-to-end action latency including both upstream calls.
	ActionDuration *prometheus.HistogramVec

	// Session store failures by operation.
	SessionStoreErrorsTotal *prometheus.CounterVec

	// Rate limit denials on /actions.
	RateLimitDeniedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	UpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamCallsTotal",
			Help: "Total number of Open-Meteo API calls",
		},
		[]string{"api", "status"},
	)
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstreamDurationSeconds",
			Help:    "Open-Meteo API latency in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"api", "status"},
	)
	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamErrorsTotal",
			Help: "Open-Meteo API failures by category",
		},
		[]string{"api", "category"},
	)
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuitBreakerState",
			Help: "Upstream circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"api"},
	)
	ActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "actionsTotal",
			Help: "User actions by outcome",
		},
		[]string{"action", "outcome"},
	)
	ActionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "actionDurationSeconds",
			Help:    "User action latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)
	SessionStoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessionStoreErrorsTotal",
			Help: "Session store failures by operation",
		},
		[]string{"op"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		UpstreamCallsTotal, UpstreamDuration, UpstreamErrorsTotal, CircuitBreakerState,
		ActionsTotal, ActionDuration,
		SessionStoreErrorsTotal,
		RateLimitDeniedTotal,
	)
}

// RecordAction counts one finished user action.
func RecordAction(action, outcome string, d time.Duration) {
	ActionsTotal.WithLabelValues(action, outcome).Inc()
	ActionDuration.WithLabelValues(action).Observe(d.Seconds())
}

// RecordUpstreamCall records one upstream round trip. status is a coarse label
// such as success, client_error, server_error or error.
func RecordUpstreamCall(api, status string, d time.Duration) {
	UpstreamCallsTotal.WithLabelValues(api, status).Inc()
	UpstreamDuration.WithLabelValues(api, status).Observe(d.Seconds())
}

// RecordUpstreamError counts a categorized upstream failure.
func RecordUpstreamError(api, category string) {
	UpstreamErrorsTotal.WithLabelValues(api, category).Inc()
}

// SetCircuitBreakerState publishes the breaker state for api.
func SetCircuitBreakerState(api string, value float64) {
	CircuitBreakerState.WithLabelValues(api).Set(value)
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
