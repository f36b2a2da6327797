// Package api
// Author: momentics
//
// Executor and scheduling-engine contracts.

package api

// Executor abstracts parallel task dispatch.
type Executor interface {
	// Submit schedules task for execution.
	Submit(task func()) error

	// NumWorkers returns current number of active worker routines.
	NumWorkers() int

	// Resize adjusts the concurrency at runtime.
	Resize(newCount int)
}

// Engine is a fire-and-forget scheduler independent of any caller's
// execution context. Callables handed to Run never run on the caller's stack.
type Engine interface {
	Run(fn func())
}
