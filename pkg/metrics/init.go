package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initPropagationMetrics() {
	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluidc_runs_total",
			Help: "Completed propagation runs by variant and outcome",
		},
		[]string{"variant", "outcome"},
	)

	r.RunDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fluidc_run_duration_seconds",
			Help:    "Wall time of a propagation run",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"variant"},
	)

	r.RunRounds = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fluidc_run_rounds",
			Help:    "Rounds used per propagation run",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 50, 100, 1000},
		},
		[]string{"variant"},
	)

	r.RunsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "fluidc_runs_in_flight",
			Help: "Propagation runs currently executing",
		},
	)

	r.RoundsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluidc_rounds_total",
			Help: "Update rounds executed",
		},
		[]string{"variant"},
	)

	r.RoundMoves = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fluidc_round_moves",
			Help:    "Label changes per round",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"variant"},
	)

	r.RestartNMI = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fluidc_refine_nmi",
			Help:    "NMI between consecutive partitions of the restart refiner",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)
}

func (r *Registry) initCacheMetrics() {
	r.CacheRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluidc_cache_requests_total",
			Help: "Cache lookups by key type and result",
		},
		[]string{"type", "result"},
	)

	r.CacheSetBytes = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fluidc_cache_set_bytes",
			Help:    "Size of cache writes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"type"},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluidc_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fluidc_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}
