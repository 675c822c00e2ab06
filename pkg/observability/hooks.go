// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register hooks
// at startup to receive events about propagation runs, cache operations and
// HTTP requests. pkg/metrics provides a Prometheus implementation.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    reg := metrics.NewRegistry()
//	    observability.SetPropagationHooks(reg)
//	    observability.SetCacheHooks(reg)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Propagation().OnRunStart(ctx, "fluidc", nodes, k)
//	// ... rounds ...
//	observability.Propagation().OnRunComplete(ctx, "fluidc", rounds, converged, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Propagation Hooks
// =============================================================================

// PropagationHooks receives events from fluid propagation runs.
type PropagationHooks interface {
	OnRunStart(ctx context.Context, variant string, nodes, k int)
	OnRound(ctx context.Context, variant string, round, moves, labeled int)
	OnRunComplete(ctx context.Context, variant string, rounds int, converged bool, duration time.Duration, err error)
	OnRestart(ctx context.Context, iteration int, nmi float64)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records a served request.
	OnRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPropagationHooks is a no-op implementation of PropagationHooks.
type NoopPropagationHooks struct{}

func (NoopPropagationHooks) OnRunStart(context.Context, string, int, int)     {}
func (NoopPropagationHooks) OnRound(context.Context, string, int, int, int) {}
func (NoopPropagationHooks) OnRunComplete(context.Context, string, int, bool, time.Duration, error) {
}
func (NoopPropagationHooks) OnRestart(context.Context, int, float64) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	propagationHooks PropagationHooks = NoopPropagationHooks{}
	cacheHooks       CacheHooks       = NoopCacheHooks{}
	httpHooks        HTTPHooks        = NoopHTTPHooks{}
	hooksMu          sync.RWMutex
)

// SetPropagationHooks registers custom propagation hooks.
// This should be called once at application startup before any run.
func SetPropagationHooks(h PropagationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		propagationHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before serving.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Propagation returns the registered propagation hooks.
func Propagation() PropagationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return propagationHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	propagationHooks = NoopPropagationHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
