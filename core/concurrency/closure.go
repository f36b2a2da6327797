// File: core/concurrency/closure.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Closure is the deferred callable every completion in the stream core is
// expressed with. It carries a diagnostic name, the location it was created
// at and a scheduling policy consulted by ExecCtx.Run.

package concurrency

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/momentics/hioload-transport/api"
)

// Func is the body of a closure. ec is the execution context the closure is
// running under; err is the completion error (nil for success).
type Func func(ec *ExecCtx, err error)

// SchedulePolicy tells ExecCtx.Run what to do with a closure.
type SchedulePolicy int

const (
	// ScheduleOnExecCtx queues the closure until the context flushes.
	ScheduleOnExecCtx SchedulePolicy = iota
	// ScheduleInline runs the closure as soon as it is handed to Run.
	ScheduleInline
)

func (p SchedulePolicy) String() string {
	switch p {
	case ScheduleOnExecCtx:
		return "exec_ctx"
	case ScheduleInline:
		return "inline"
	}
	return fmt.Sprintf("SchedulePolicy(%d)", int(p))
}

// Location identifies a source position for diagnostics.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(l.File), l.Line)
}

// CallerLocation returns the location skip frames above its caller.
func CallerLocation(skip int) Location {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Location{}
	}
	return Location{File: file, Line: line}
}

// Closure is a named deferred callable.
type Closure struct {
	name      string
	fn        Func
	policy    SchedulePolicy
	created   Location
	scheduled atomic.Bool
	runFrom   Location
}

// ClosureOption configures a Closure at construction.
type ClosureOption func(*Closure)

// WithPolicy sets the scheduling policy. The default is ScheduleOnExecCtx.
func WithPolicy(p SchedulePolicy) ClosureOption {
	return func(c *Closure) { c.policy = p }
}

// NewClosure creates a closure around fn. The caller's location is recorded.
func NewClosure(name string, fn Func, opts ...ClosureOption) *Closure {
	c := &Closure{
		name:    name,
		fn:      fn,
		created: CallerLocation(1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the diagnostic name.
func (c *Closure) Name() string { return c.name }

// Policy returns the scheduling policy.
func (c *Closure) Policy() SchedulePolicy { return c.policy }

// CreatedAt returns where the closure was constructed.
func (c *Closure) CreatedAt() Location { return c.created }

// Scheduled reports whether the closure is queued on an ExecCtx and has not
// started running yet.
func (c *Closure) Scheduled() bool { return c.scheduled.Load() }

// Invoke runs the closure synchronously on the calling goroutine. A nil
// closure is ignored.
func (c *Closure) Invoke(ec *ExecCtx, err error) {
	if c == nil {
		return
	}
	c.fn(ec, err)
}

func (c *Closure) String() string {
	return fmt.Sprintf("closure %q created at %s", c.name, c.created)
}

// markScheduled flags the closure as queued. Queuing a closure that is already
// queued means two owners believe they hold the only pending completion.
func (c *Closure) markScheduled(from Location) {
	if !c.scheduled.CompareAndSwap(false, true) {
		panic(api.Internal(api.ErrClosureScheduled,
			"%s scheduled again from %s (previously from %s)", c, from, c.runFrom))
	}
	c.runFrom = from
}

func (c *Closure) clearScheduled() {
	c.scheduled.Store(false)
}
