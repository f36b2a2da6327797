// File: adapters/engine_adapter.go
// Package adapters provides glue between internal concurrency and api.Engine.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// EngineAdapter exposes the internal worker-pool executor as both api.Engine
// (fire-and-forget Run) and api.Executor (Submit/Resize).

package adapters

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-transport/api"
	"github.com/momentics/hioload-transport/internal/concurrency"
)

// EngineConfig configures NewEngineAdapter.
type EngineConfig struct {
	Workers       int
	PinCPUs       bool
	FirstCPU      int
	QueueCapacity int
	Logger        *zap.Logger
	OnTask        func(result string)
}

// EngineAdapter wraps an internal concurrency.Executor.
type EngineAdapter struct {
	exec *concurrency.Executor
}

var (
	_ api.Engine   = (*EngineAdapter)(nil)
	_ api.Executor = (*EngineAdapter)(nil)
)

// NewEngineAdapter starts an engine with the given configuration.
func NewEngineAdapter(cfg EngineConfig) *EngineAdapter {
	return &EngineAdapter{exec: concurrency.NewExecutor(concurrency.Options{
		Workers:       cfg.Workers,
		PinCPUs:       cfg.PinCPUs,
		FirstCPU:      cfg.FirstCPU,
		QueueCapacity: cfg.QueueCapacity,
		Logger:        cfg.Logger,
		OnTask:        cfg.OnTask,
	})}
}

// Run schedules fn on a worker goroutine.
func (ea *EngineAdapter) Run(fn func()) {
	ea.exec.Run(fn)
}

// Submit dispatches a task, failing with api.ErrEngineClosed after Close.
func (ea *EngineAdapter) Submit(task func()) error {
	return ea.exec.Submit(task)
}

// NumWorkers returns the current number of active worker goroutines.
func (ea *EngineAdapter) NumWorkers() int {
	return ea.exec.NumWorkers()
}

// Resize dynamically adjusts the size of the worker pool.
func (ea *EngineAdapter) Resize(newCount int) {
	ea.exec.Resize(newCount)
}

// Stats returns executor counters.
func (ea *EngineAdapter) Stats() map[string]int64 {
	return ea.exec.Stats()
}

// Close stops the workers after draining queued tasks.
func (ea *EngineAdapter) Close() {
	ea.exec.Close()
}
