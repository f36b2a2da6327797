// File: core/concurrency/exec_ctx.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ExecCtx batches closures scheduled during one logical operation and runs
// them when the owner flushes. It is an explicit value: whoever needs to
// schedule work is handed the context, there is no goroutine-local lookup.

package concurrency

import (
	"fmt"
	"strings"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-transport/internal/buildmode"
)

// Flags describe the environment an ExecCtx was established in.
type Flags uint32

const (
	// FlagThreadResourceLoop marks a context running on a goroutine whose
	// lifetime may be owned by the call stack it is operating on. Work that
	// could tear that call stack down must not run inline here.
	FlagThreadResourceLoop Flags = 1 << iota
	// FlagInternalThread marks a context established by the engine.
	FlagInternalThread
	// FlagResourceLoop marks a context servicing a resource quota loop.
	FlagResourceLoop
)

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	if f&FlagThreadResourceLoop != 0 {
		parts = append(parts, "thread_resource_loop")
	}
	if f&FlagInternalThread != 0 {
		parts = append(parts, "internal_thread")
	}
	if f&FlagResourceLoop != 0 {
		parts = append(parts, "resource_loop")
	}
	if rest := f &^ (FlagThreadResourceLoop | FlagInternalThread | FlagResourceLoop); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

type pendingClosure struct {
	closure *Closure
	err     error
}

// ExecCtx is owned by a single goroutine and must not be shared.
type ExecCtx struct {
	flags   Flags
	pending *queue.Queue
	ran     uint64
}

// NewExecCtx establishes a fresh context with the given flags.
func NewExecCtx(flags Flags) *ExecCtx {
	return &ExecCtx{
		flags:   flags,
		pending: queue.New(),
	}
}

// Flags returns the context flags.
func (ec *ExecCtx) Flags() Flags { return ec.flags }

// HasFlag reports whether every bit of f is set.
func (ec *ExecCtx) HasFlag(f Flags) bool { return ec.flags&f == f }

// SetFlags adds f to the context flags.
func (ec *ExecCtx) SetFlags(f Flags) { ec.flags |= f }

// ClearFlags removes f from the context flags.
func (ec *ExecCtx) ClearFlags(f Flags) { ec.flags &^= f }

// Run hands c to the context with completion error err. Closures with
// ScheduleInline run immediately; the rest wait for Flush. A nil closure is
// ignored.
func (ec *ExecCtx) Run(c *Closure, err error) {
	if c == nil {
		return
	}
	if c.policy == ScheduleInline {
		ec.ran++
		c.fn(ec, err)
		return
	}
	var from Location
	if buildmode.Debug {
		from = CallerLocation(1)
	}
	c.markScheduled(from)
	ec.pending.Add(pendingClosure{closure: c, err: err})
}

// Pending returns the number of closures waiting for Flush.
func (ec *ExecCtx) Pending() int { return ec.pending.Length() }

// Executed returns how many closures this context has run.
func (ec *ExecCtx) Executed() uint64 { return ec.ran }

// Flush runs queued closures in FIFO order until the queue is empty,
// including closures scheduled by the ones being run. It reports whether
// anything ran.
func (ec *ExecCtx) Flush() bool {
	didSomething := false
	for ec.pending.Length() > 0 {
		p := ec.pending.Remove().(pendingClosure)
		p.closure.clearScheduled()
		ec.ran++
		p.closure.fn(ec, p.err)
		didSomething = true
	}
	return didSomething
}

// WithExecCtx establishes a fresh context, runs fn under it and flushes it.
func WithExecCtx(flags Flags, fn func(ec *ExecCtx)) {
	ec := NewExecCtx(flags)
	fn(ec)
	ec.Flush()
}
