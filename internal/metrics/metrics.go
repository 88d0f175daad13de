package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pettycash",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pettycash",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pettycash",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	requestsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pettycash",
			Name:      "requests_created_total",
			Help:      "Petty-cash requests submitted, by category.",
		},
		[]string{"category"},
	)

	requestTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pettycash",
			Name:      "request_transitions_total",
			Help:      "Status transitions applied to requests, by target status.",
		},
		[]string{"status"},
	)

	usersProvisioned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pettycash",
			Name:      "users_provisioned_total",
			Help:      "Accounts created through provisioning.",
		},
	)

	auditWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pettycash",
			Name:      "audit_write_failures_total",
			Help:      "Audit trail entries that could not be written.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		requestsCreated,
		requestTransitions,
		usersProvisioned,
		auditWriteFailures,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished HTTP request. route should be the matched
// route pattern so label cardinality stays bounded.
func ObserveHTTP(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	method = strings.ToUpper(method)
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func InFlightInc() { httpInFlight.Inc() }
func InFlightDec() { httpInFlight.Dec() }

func RequestCreated(category string) {
	requestsCreated.WithLabelValues(category).Inc()
}

func RequestTransition(status string) {
	requestTransitions.WithLabelValues(status).Inc()
}

func UserProvisioned() { usersProvisioned.Inc() }

func AuditWriteFailed() { auditWriteFailures.Inc() }
