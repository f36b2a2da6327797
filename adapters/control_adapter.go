// Package adapters
// Author: momentics <momentics@gmail.com>
//
// Control adapter tying the config store and debug probes to a running engine.

package adapters

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-transport/control"
)

// ControlAdapter applies config reloads to the engine and exposes engine and
// config state as debug probes.
type ControlAdapter struct {
	config *control.ConfigStore
	debug  *control.DebugProbes
	engine *EngineAdapter
	logger *zap.Logger
}

// NewControlAdapter registers the "engine" and "config" probes and resizes
// the engine whenever engine.workers changes.
func NewControlAdapter(cfg *control.ConfigStore, debug *control.DebugProbes, engine *EngineAdapter, logger *zap.Logger) *ControlAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &ControlAdapter{config: cfg, debug: debug, engine: engine, logger: logger}
	debug.RegisterProbe("engine", func() any { return engine.Stats() })
	debug.RegisterProbe("config", func() any { return cfg.GetSnapshot() })
	cfg.OnReload(c.apply)
	return c
}

func (c *ControlAdapter) apply(cfg control.Config) {
	workers := cfg.Engine.Workers
	if workers <= 0 || workers == c.engine.NumWorkers() {
		return
	}
	c.logger.Info("resizing engine on config reload",
		zap.Int("from", c.engine.NumWorkers()), zap.Int("to", workers))
	c.engine.Resize(workers)
}

// Stats combines every debug probe under a "debug." prefix.
func (c *ControlAdapter) Stats() map[string]any {
	combined := make(map[string]any)
	for k, v := range c.debug.DumpState() {
		combined["debug."+k] = v
	}
	return combined
}

// SetConfig overrides one configuration key.
func (c *ControlAdapter) SetConfig(key string, value any) error {
	return c.config.Set(key, value)
}

// RegisterDebugProbe adds a named probe.
func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}
