// Package metrics exports propagation, cache and HTTP events as Prometheus
// metrics. A Registry implements the observability hook interfaces; register
// it once at startup:
//
//	reg := metrics.NewRegistry()
//	reg.Install()
//	http.Handle("/metrics", reg.Handler())
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/fluidc/pkg/observability"
)

// Registry holds all fluidc metrics.
type Registry struct {
	// Propagation
	RunsTotal    *prometheus.CounterVec
	RunDuration  *prometheus.HistogramVec
	RunRounds    *prometheus.HistogramVec
	RunsInFlight prometheus.Gauge
	RoundsTotal  *prometheus.CounterVec
	RoundMoves   *prometheus.HistogramVec
	RestartNMI   prometheus.Histogram

	// Cache
	CacheRequestsTotal *prometheus.CounterVec
	CacheSetBytes      *prometheus.HistogramVec

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every metric initialized, plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	r.initPropagationMetrics()
	r.initCacheMetrics()
	r.initHTTPMetrics()
	return r
}

// Install registers r as the global propagation, cache and HTTP hooks.
func (r *Registry) Install() {
	observability.SetPropagationHooks(r)
	observability.SetCacheHooks(r)
	observability.SetHTTPHooks(r)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Prometheus returns the underlying registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

func (r *Registry) OnRunStart(ctx context.Context, variant string, nodes, k int) {
	r.RunsInFlight.Inc()
}

func (r *Registry) OnRound(ctx context.Context, variant string, round, moves, labeled int) {
	r.RoundsTotal.WithLabelValues(variant).Inc()
	r.RoundMoves.WithLabelValues(variant).Observe(float64(moves))
}

func (r *Registry) OnRunComplete(ctx context.Context, variant string, rounds int, converged bool, duration time.Duration, err error) {
	r.RunsInFlight.Dec()
	outcome := "budget"
	switch {
	case err != nil:
		outcome = "error"
	case converged:
		outcome = "converged"
	}
	r.RunsTotal.WithLabelValues(variant, outcome).Inc()
	r.RunDuration.WithLabelValues(variant).Observe(duration.Seconds())
	r.RunRounds.WithLabelValues(variant).Observe(float64(rounds))
}

func (r *Registry) OnRestart(ctx context.Context, iteration int, nmi float64) {
	r.RestartNMI.Observe(nmi)
}

func (r *Registry) OnCacheHit(ctx context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (r *Registry) OnCacheMiss(ctx context.Context, keyType string) {
	r.CacheRequestsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (r *Registry) OnCacheSet(ctx context.Context, keyType string, size int) {
	r.CacheSetBytes.WithLabelValues(keyType).Observe(float64(size))
}

func (r *Registry) OnRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	r.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

var (
	_ observability.PropagationHooks = (*Registry)(nil)
	_ observability.CacheHooks       = (*Registry)(nil)
	_ observability.HTTPHooks        = (*Registry)(nil)
)
