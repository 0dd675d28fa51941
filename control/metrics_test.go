package control_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/momentics/hioload-wsbench/control"
)

func TestMetricsRegistryCounters(t *testing.T) {
	mr := control.NewMetricsRegistry()
	if got := mr.Get(control.RoundTrips); got != 0 {
		t.Fatalf("untouched counter = %d", got)
	}
	if !mr.Updated().IsZero() {
		t.Fatal("Updated must be zero before any update")
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				mr.Add(control.MessagesEchoed, 1)
			}
		}()
	}
	wg.Wait()
	if got := mr.Get(control.MessagesEchoed); got != 8000 {
		t.Fatalf("messages_echoed = %d, want 8000", got)
	}

	mr.Set(control.SessionsActive, 3)
	snap := mr.GetSnapshot()
	if snap[control.SessionsActive] != 3 || snap[control.MessagesEchoed] != 8000 {
		t.Fatalf("snapshot = %v", snap)
	}
	if mr.Updated().IsZero() {
		t.Fatal("Updated must be set after Add")
	}
	if mr.Counter(control.SessionsActive) != mr.Counter(control.SessionsActive) {
		t.Fatal("Counter must return a stable pointer")
	}
}

func TestDebugProbes(t *testing.T) {
	mr := control.NewMetricsRegistry()
	mr.Add(control.SessionsAccepted, 2)

	dp := control.NewDebugProbes()
	dp.RegisterProbe("plain.live", func() any { return 1 })
	dp.RegisterMetrics("metrics", mr)

	state := dp.DumpState()
	if state["plain.live"] != 1 {
		t.Fatalf("plain.live = %v", state["plain.live"])
	}
	if m, ok := state["metrics"].(map[string]int64); !ok || m[control.SessionsAccepted] != 2 {
		t.Fatalf("metrics probe = %v", state["metrics"])
	}
	s := dp.String()
	if !strings.HasPrefix(s, "metrics=") || !strings.Contains(s, " plain.live=1") {
		t.Fatalf("String() = %q", s)
	}
}
