// Package observability provides hooks for metrics and tracing.
//
// This package enables optional instrumentation without adding hard
// dependencies on a specific backend. Hooks are plain values passed to the
// components that emit events; there is no process-wide registry.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Let main wire a concrete implementation (see [Prometheus])
//
// # Usage
//
// Wire hooks at application startup:
//
//	metrics := observability.NewPrometheus()
//	hooks := metrics.Hooks()
//	runner := pipeline.NewRunner(store.WithHooks(s, hooks.Store), builder, logger, hooks.Build)
//	// ... run application
//	metrics.WriteTextfile("circuitry.prom")
//
// Components call hooks to emit events:
//
//	hooks.Build.OnBuildStart(ctx, vizType, zone, len(items), len(conns))
//	// ... build the graph ...
//	hooks.Build.OnBuildComplete(ctx, vizType, nodes, edges, warnings, duration, err)
package observability

import (
	"context"
	"time"
)

// =============================================================================
// Build Hooks
// =============================================================================

// BuildHooks receives events from graph builds.
type BuildHooks interface {
	OnBuildStart(ctx context.Context, vizType, zone string, items, conns int)
	OnBuildComplete(ctx context.Context, vizType string, nodes, edges, warnings int, duration time.Duration, err error)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from connection store calls.
type StoreHooks interface {
	// OnStoreCall records one store operation ("list_items", "create_connection", ...).
	OnStoreCall(ctx context.Context, op string, duration time.Duration, err error)

	// OnConflict records a write rejected because a port was already taken.
	OnConflict(ctx context.Context, deployment string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopBuildHooks is a no-op implementation of BuildHooks.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnBuildStart(context.Context, string, string, int, int) {}
func (NoopBuildHooks) OnBuildComplete(context.Context, string, int, int, int, time.Duration, error) {
}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreCall(context.Context, string, time.Duration, error) {}
func (NoopStoreHooks) OnConflict(context.Context, string)                        {}

// =============================================================================
// Hook Set
// =============================================================================

// Hooks bundles the hook categories handed to a component.
// Nil fields are treated as no-ops.
type Hooks struct {
	Build BuildHooks
	Store StoreHooks
}

// Noop returns a hook set where every hook does nothing.
func Noop() Hooks {
	return Hooks{Build: NoopBuildHooks{}, Store: NoopStoreHooks{}}
}

// WithDefaults returns h with nil fields replaced by no-ops.
func (h Hooks) WithDefaults() Hooks {
	if h.Build == nil {
		h.Build = NoopBuildHooks{}
	}
	if h.Store == nil {
		h.Store = NoopStoreHooks{}
	}
	return h
}
