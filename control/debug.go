// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Named debug probes evaluated on demand, e.g. live tagged streams and
// engine counters.

package control

import (
	"sort"
	"sync"

	"github.com/momentics/hioload-transport/api"
)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

var _ api.Debug = (*DebugProbes)(nil)

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{probes: make(map[string]func() any)}
}

// RegisterProbe inserts or replaces a named probe.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// UnregisterProbe removes a probe.
func (dp *DebugProbes) UnregisterProbe(name string) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	delete(dp.probes, name)
}

// Names returns the registered probe names, sorted.
func (dp *DebugProbes) Names() []string {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	names := make([]string, 0, len(dp.probes))
	for name := range dp.probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DumpState evaluates every probe. Probes run outside the registry lock so
// they may register further probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	snapshot := make(map[string]func() any, len(dp.probes))
	for k, fn := range dp.probes {
		snapshot[k] = fn
	}
	dp.mu.RUnlock()

	out := make(map[string]any, len(snapshot))
	for k, fn := range snapshot {
		out[k] = fn()
	}
	return out
}
