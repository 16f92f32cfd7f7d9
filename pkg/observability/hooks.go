// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about grouping passes, layout passes, and HTTP requests
// served by the API host.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The grouping and layout cores are synchronous and single-writer, so their hooks
// are called inline from the pass that produced the event and carry no context.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetGroupingHooks(&myGroupingHooks{})
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Grouping().OnRebuild(levels, rows, groups, duration)
//	observability.Layout().OnLayoutComplete(mode, columns, slack, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Grouping Hooks
// =============================================================================

// GroupingHooks receives events from the group tree.
type GroupingHooks interface {
	// OnRebuild records a full rebuild of the hierarchy.
	OnRebuild(levels, rows, groups int, duration time.Duration)

	// OnFlatten records the production of a display sequence.
	OnFlatten(items int, duration time.Duration)

	// OnReassign records a single-record regroup; moved is false when the
	// record's group path did not change.
	OnReassign(moved bool)

	// OnWarning records a non-fatal anomaly by error code.
	OnWarning(code string)
}

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the column layout driver.
type LayoutHooks interface {
	// OnLayoutStart records the start of a width distribution pass.
	OnLayoutStart(mode string, columns int)

	// OnLayoutComplete records the end of a pass. Slack is the viewport width
	// minus the distributed width; negative values are overflow.
	OnLayoutComplete(mode string, columns, slack int, duration time.Duration)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API host.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGroupingHooks is a no-op implementation of GroupingHooks.
type NoopGroupingHooks struct{}

func (NoopGroupingHooks) OnRebuild(int, int, int, time.Duration) {}
func (NoopGroupingHooks) OnFlatten(int, time.Duration)           {}
func (NoopGroupingHooks) OnReassign(bool)                        {}
func (NoopGroupingHooks) OnWarning(string)                       {}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(string, int)                         {}
func (NoopLayoutHooks) OnLayoutComplete(string, int, int, time.Duration) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                     {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	groupingHooks GroupingHooks = NoopGroupingHooks{}
	layoutHooks   LayoutHooks   = NoopLayoutHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetGroupingHooks registers custom grouping hooks.
// This should be called once at application startup before any grouping operations.
func SetGroupingHooks(h GroupingHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		groupingHooks = h
	}
}

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup before any layout operations.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before serving requests.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Grouping returns the registered grouping hooks.
func Grouping() GroupingHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return groupingHooks
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
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
	groupingHooks = NoopGroupingHooks{}
	layoutHooks = NoopLayoutHooks{}
	httpHooks = NoopHTTPHooks{}
}
