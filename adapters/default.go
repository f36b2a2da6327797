// File: adapters/default.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package adapters

import (
	"sync"

	"github.com/momentics/hioload-transport/api"
)

var (
	defaultMu     sync.Mutex
	defaultEngine api.Engine
)

// DefaultEngine returns the process-wide engine, starting one with default
// settings on first use.
func DefaultEngine() api.Engine {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultEngine == nil {
		defaultEngine = NewEngineAdapter(EngineConfig{})
	}
	return defaultEngine
}

// SetDefaultEngine replaces the process-wide engine and returns the previous
// one (nil if none was started).
func SetDefaultEngine(e api.Engine) api.Engine {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultEngine
	defaultEngine = e
	return prev
}
