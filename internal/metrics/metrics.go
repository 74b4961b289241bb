package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 7),
		},
		[]string{"method", "endpoint"},
	)

	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 7),
		},
		[]string{"method", "endpoint"},
	)

	// Business metrics
	registrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "techtalks_registrations_total",
			Help: "Total number of speaker registrations",
		},
	)

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techtalks_logins_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"}, // success, failed
	)

	submissionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "techtalks_submissions_created_total",
			Help: "Total number of talk submissions",
		},
	)

	submissionDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "techtalks_submission_decisions_total",
			Help: "Total number of admin decisions on submissions",
		},
		[]string{"status"},
	)

	dependencyHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dependency_health",
			Help: "Health status of dependencies (1 = healthy, 0 = unhealthy)",
		},
		[]string{"dependency"},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration, requestSize, responseSize int64) {
	status := strconv.Itoa(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
	httpRequestSize.WithLabelValues(method, endpoint).Observe(float64(requestSize))
	httpResponseSize.WithLabelValues(method, endpoint).Observe(float64(responseSize))
}

// RecordRegistration increments the registration counter.
func RecordRegistration() {
	registrationsTotal.Inc()
}

// RecordLogin counts a successful login.
func RecordLogin() {
	loginsTotal.WithLabelValues("success").Inc()
}

// RecordLoginFailed counts a rejected login.
func RecordLoginFailed() {
	loginsTotal.WithLabelValues("failed").Inc()
}

// RecordSubmissionCreated increments the submission counter.
func RecordSubmissionCreated() {
	submissionsCreatedTotal.Inc()
}

// RecordSubmissionDecision counts an approve or reject by status.
func RecordSubmissionDecision(status string) {
	submissionDecisionsTotal.WithLabelValues(status).Inc()
}

// SetDependencyHealth sets the health status of a dependency
func SetDependencyHealth(dependency string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	dependencyHealth.WithLabelValues(dependency).Set(value)
}

// Handler returns the Prometheus metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}
