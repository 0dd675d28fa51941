// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Named probes reporting live runtime state, e.g. sessions per listener.

package control

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// RegisterProbe inserts or replaces a named probe.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// RegisterMetrics exposes every counter of mr under prefix.
func (dp *DebugProbes) RegisterMetrics(prefix string, mr *MetricsRegistry) {
	dp.RegisterProbe(prefix, func() any { return mr.GetSnapshot() })
}

// DumpState evaluates all probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any, len(dp.probes))
	for k, fn := range dp.probes {
		out[k] = fn()
	}
	return out
}

// String renders the dump as "name=value" pairs sorted by name.
func (dp *DebugProbes) String() string {
	state := dp.DumpState()
	names := make([]string, 0, len(state))
	for k := range state {
		names = append(names, k)
	}
	sort.Strings(names)
	var b strings.Builder
	for i, k := range names {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, state[k])
	}
	return b.String()
}
