// File: core/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package concurrency provides the closure and execution-context primitives
// the stream core schedules completions with: Closure, ExecCtx, CallCombiner
// and CallCombinerClosureList, plus the bounded MPMC LockFreeQueue the engine
// workers pull from.
package concurrency
