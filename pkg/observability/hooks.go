// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can register
// hooks at startup to receive events about clustering runs and cache
// operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This keeps the core library free of observability frameworks while
// allowing any backend (OpenTelemetry, Prometheus, etc.) to plug in.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetClusterHooks(&myClusterHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Cluster().OnRunStart(ctx, nodeCount, numClusters)
//	// ... run clustering ...
//	observability.Cluster().OnRunComplete(ctx, clusterCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Cluster Hooks
// =============================================================================

// ClusterHooks receives events from clustering runs.
type ClusterHooks interface {
	// OnRunStart records the beginning of a clustering run.
	OnRunStart(ctx context.Context, nodeCount, numClusters int)

	// OnRunComplete records a finished clustering run.
	OnRunComplete(ctx context.Context, clusterCount int, duration time.Duration, err error)

	// OnRenderStart records the beginning of a render stage.
	OnRenderStart(ctx context.Context, format string)

	// OnRenderComplete records a finished render stage.
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)
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
// No-op Implementations
// =============================================================================

// NoopClusterHooks is a no-op implementation of ClusterHooks.
type NoopClusterHooks struct{}

func (NoopClusterHooks) OnRunStart(context.Context, int, int)                          {}
func (NoopClusterHooks) OnRunComplete(context.Context, int, time.Duration, error)      {}
func (NoopClusterHooks) OnRenderStart(context.Context, string)                         {}
func (NoopClusterHooks) OnRenderComplete(context.Context, string, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	clusterHooks ClusterHooks = NoopClusterHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	hooksMu      sync.RWMutex
)

// SetClusterHooks registers custom cluster hooks.
// This should be called once at application startup before any runs.
func SetClusterHooks(h ClusterHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		clusterHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache use.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Cluster returns the registered cluster hooks.
func Cluster() ClusterHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return clusterHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}
