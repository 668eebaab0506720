package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the CertiPro CLI
type Metrics struct {
	// Command execution metrics
	CommandExecutions *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec

	// API client metrics
	APIRequests *prometheus.CounterVec
	APILatency  *prometheus.HistogramVec

	// Session metrics
	SessionExpirations *prometheus.CounterVec
	AuthFlows          *prometheus.CounterVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		CommandExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certipro_command_executions_total",
				Help: "Total number of command executions",
			},
			[]string{"command", "success"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "certipro_command_duration_seconds",
				Help:    "Command execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),

		APIRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certipro_api_requests_total",
				Help: "Total number of API requests by method and status class",
			},
			[]string{"method", "status_class"},
		),
		APILatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "certipro_api_request_duration_seconds",
				Help:    "API request latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method"},
		),

		SessionExpirations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certipro_session_expirations_total",
				Help: "Total number of sessions cleared because they expired",
			},
			[]string{"source"},
		),
		AuthFlows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certipro_auth_flows_total",
				Help: "Total number of auth workflow steps by outcome",
			},
			[]string{"step", "success"},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certipro_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code"},
		),
	}
}

// StatusClass buckets an HTTP status for labelling. Status 0 is a transport
// failure.
func StatusClass(status int) string {
	if status <= 0 {
		return "network"
	}
	return strconv.Itoa(status/100) + "xx"
}

// ObserveRequest records one API round trip
func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(method, StatusClass(status)).Inc()
	m.APILatency.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveError counts an error by its code
func (m *Metrics) ObserveError(code string) {
	if m == nil || code == "" {
		return
	}
	m.Errors.WithLabelValues(code).Inc()
}

// ObserveSessionExpired counts a session cleared by source ("unauthorized"
// for a 401, "watch" for the periodic check)
func (m *Metrics) ObserveSessionExpired(source string) {
	if m == nil {
		return
	}
	m.SessionExpirations.WithLabelValues(source).Inc()
}

// ObserveAuthFlow counts one auth workflow step
func (m *Metrics) ObserveAuthFlow(step string, err error) {
	if m == nil {
		return
	}
	m.AuthFlows.WithLabelValues(step, strconv.FormatBool(err == nil)).Inc()
}

// ObserveCommand records a finished CLI command
func (m *Metrics) ObserveCommand(command string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.CommandExecutions.WithLabelValues(command, strconv.FormatBool(err == nil)).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}
