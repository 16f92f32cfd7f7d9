package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Grouping hooks
	g := NoopGroupingHooks{}
	g.OnRebuild(2, 100, 7, time.Millisecond)
	g.OnFlatten(120, time.Millisecond)
	g.OnReassign(true)
	g.OnWarning("LOOKUP_MISS")

	// Layout hooks
	l := NoopLayoutHooks{}
	l.OnLayoutStart("fitColumns", 5)
	l.OnLayoutComplete("fitColumns", 5, -3, time.Millisecond)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/display")
	h.OnResponse(ctx, "GET", "/display", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Grouping().(NoopGroupingHooks); !ok {
		t.Error("Grouping() should return NoopGroupingHooks by default")
	}
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should return NoopLayoutHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customGrouping := &testGroupingHooks{}
	SetGroupingHooks(customGrouping)
	if Grouping() != customGrouping {
		t.Error("SetGroupingHooks should set custom hooks")
	}

	customLayout := &testLayoutHooks{}
	SetLayoutHooks(customLayout)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Grouping().(NoopGroupingHooks); !ok {
		t.Error("Reset() should restore NoopGroupingHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testLayoutHooks{}
	SetLayoutHooks(custom)

	// Setting nil should be ignored
	SetLayoutHooks(nil)

	if Layout() != custom {
		t.Error("SetLayoutHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testGroupingHooks struct{ NoopGroupingHooks }
type testLayoutHooks struct{ NoopLayoutHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
