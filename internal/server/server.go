// Package server implements the fluidc HTTP API.
//
// Routes:
//
//	POST   /v1/detect      run one detection, respond with a report or a diagram
//	POST   /v1/trials      run independent trials ranked by modularity
//	GET    /v1/runs        list recorded runs, newest first
//	GET    /v1/runs/{id}   fetch one recorded run
//	DELETE /v1/runs/{id}   delete one recorded run
//	GET    /v1/datasets    list built-in datasets
//	GET    /metrics        Prometheus metrics
//	GET    /healthz        liveness and build info
//
// Errors are JSON objects {"error": {"code": ..., "message": ...}} with the
// status derived from the error code.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/fluidc/pkg/history"
	"github.com/matzehuels/fluidc/pkg/pipeline"
)

// Defaults for Options fields left zero.
const (
	DefaultRequestTimeout = 2 * time.Minute
	DefaultMaxBodyBytes   = 32 << 20
	shutdownTimeout       = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Logger *log.Logger

	// Metrics serves GET /metrics. Nil disables the route.
	Metrics http.Handler

	// ApplyDefaults fills unset request options, typically from the config
	// file's defaults section.
	ApplyDefaults func(*pipeline.Options)

	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// Server serves the API on top of a pipeline runner.
type Server struct {
	runner  *pipeline.Runner
	history history.Store
	opts    Options
	logger  *log.Logger
}

// New creates a server. The runner's history store backs the /v1/runs
// routes; without one they respond 404.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{
		runner:  runner,
		history: runner.History,
		opts:    opts,
		logger:  opts.Logger,
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.health)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(s.opts.RequestTimeout))
			r.Use(chimiddleware.AllowContentType("application/json"))
			r.Post("/detect", s.detect)
			r.Post("/trials", s.trials)
		})
		r.Get("/datasets", s.datasets)
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.listRuns)
			r.Get("/{id}", s.getRun)
			r.Delete("/{id}", s.deleteRun)
		})
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
