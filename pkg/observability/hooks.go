// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the registered hooks; main (or a test)
// registers implementations at startup. Defaults are no-ops, so nothing is
// recorded unless a consumer opts in, and no observability backend becomes
// a dependency of the counting packages.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetComputeHooks(&myComputeHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Compute().OnComputeStart(ctx, "sequence", maxN)
//	// ... compute ...
//	observability.Compute().OnComputeComplete(ctx, "sequence", maxN, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Compute Hooks
// =============================================================================

// ComputeHooks receives events from sequence, table and verify stages.
type ComputeHooks interface {
	OnComputeStart(ctx context.Context, stage string, maxN int)
	OnComputeComplete(ctx context.Context, stage string, maxN int, duration time.Duration, err error)
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
// Simulation Hooks
// =============================================================================

// SimulationHooks receives events from Monte-Carlo runs.
type SimulationHooks interface {
	OnRoundComplete(ctx context.Context, runID string, round, samples, distinct int, duration time.Duration)
	OnRunComplete(ctx context.Context, runID string, stable bool, coverage float64, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopComputeHooks is a no-op implementation of ComputeHooks.
type NoopComputeHooks struct{}

func (NoopComputeHooks) OnComputeStart(context.Context, string, int)                          {}
func (NoopComputeHooks) OnComputeComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopSimulationHooks is a no-op implementation of SimulationHooks.
type NoopSimulationHooks struct{}

func (NoopSimulationHooks) OnRoundComplete(context.Context, string, int, int, int, time.Duration) {}
func (NoopSimulationHooks) OnRunComplete(context.Context, string, bool, float64, error)           {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	computeHooks    ComputeHooks    = NoopComputeHooks{}
	cacheHooks      CacheHooks      = NoopCacheHooks{}
	simulationHooks SimulationHooks = NoopSimulationHooks{}
	hooksMu         sync.RWMutex
)

// SetComputeHooks registers custom compute hooks. Nil is ignored.
func SetComputeHooks(h ComputeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		computeHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetSimulationHooks registers custom simulation hooks. Nil is ignored.
func SetSimulationHooks(h SimulationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		simulationHooks = h
	}
}

// Compute returns the registered compute hooks.
func Compute() ComputeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return computeHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Simulation returns the registered simulation hooks.
func Simulation() SimulationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return simulationHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	computeHooks = NoopComputeHooks{}
	cacheHooks = NoopCacheHooks{}
	simulationHooks = NoopSimulationHooks{}
}
