package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ErlanBelekov/shiptrack/internal/health"
)

var (
	// Auth metrics

	AuthAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shiptrack",
		Name:      "auth_attempts_total",
		Help:      "Register and login attempts, by operation and outcome.",
	}, []string{"operation", "outcome"})

	// Shipment metrics

	ShipmentMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shiptrack",
		Name:      "shipment_mutations_total",
		Help:      "Successful shipment writes, by operation.",
	}, []string{"operation"})

	TrackingCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shiptrack",
		Name:      "tracking_cache_lookups_total",
		Help:      "Public tracking lookups served from cache vs store.",
	}, []string{"result"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shiptrack",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shiptrack",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	HTTPRequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "shiptrack",
		Name:      "http_requests_in_flight",
		Help:      "Requests currently being served.",
	})
)

func Register() {
	prometheus.MustRegister(
		AuthAttemptsTotal,
		ShipmentMutationsTotal,
		TrackingCacheLookups,
		HTTPRequestDuration,
		HTTPRequestsTotal,
		HTTPRequestsInFlight,
	)
}

// NewServer serves /metrics plus the liveness and readiness probes.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", health.LivenessHandler(checker))
	mux.Handle("/readyz", health.ReadinessHandler(checker))
	return &http.Server{Addr: addr, Handler: mux}
}
