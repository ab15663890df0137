package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudscope",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests served by the console",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fraudscope",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fraudscope",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served",
		},
	)

	backendCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudscope",
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Calls made to the analysis backend",
		},
		[]string{"op", "outcome"},
	)

	backendCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fraudscope",
			Subsystem: "backend",
			Name:      "call_duration_seconds",
			Help:      "Analysis backend call latency",
			// an LLM-backed run can take minutes
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
		},
		[]string{"op"},
	)

	runsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fraudscope",
			Subsystem: "console",
			Name:      "runs_in_flight",
			Help:      "Analysis runs awaiting a backend response",
		},
	)

	staleResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudscope",
			Subsystem: "console",
			Name:      "stale_responses_total",
			Help:      "Backend responses discarded because a newer request superseded them",
		},
		[]string{"slot"},
	)
)

// Backend call outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeProtocol  = "protocol_error"
	OutcomeTransport = "transport_error"
	OutcomeDecode    = "decode_error"
)

// ObserveBackendCall records one backend round trip.
func ObserveBackendCall(op, outcome string, d time.Duration) {
	backendCallsTotal.WithLabelValues(op, outcome).Inc()
	backendCallDuration.WithLabelValues(op).Observe(d.Seconds())
}

// IncrementRunsInFlight increments the in-flight analysis gauge
func IncrementRunsInFlight() { runsInFlight.Inc() }

// DecrementRunsInFlight decrements the in-flight analysis gauge
func DecrementRunsInFlight() { runsInFlight.Dec() }

// IncrementStaleResponses counts a discarded response for slot.
func IncrementStaleResponses(slot string) {
	staleResponses.WithLabelValues(slot).Inc()
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()
		start := time.Now()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		route := routePattern(r)
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// MetricsHandler exposes the Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// routePattern keeps label cardinality bounded by using the chi pattern.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
