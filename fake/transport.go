// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the transport contracts.

package fake

import (
	"sync"

	"github.com/momentics/hioload-transport/api"
	"github.com/momentics/hioload-transport/core/concurrency"
	"github.com/momentics/hioload-transport/transport"
)

// Call is one recorded Transport method invocation.
type Call struct {
	Method string
	Stream transport.Stream
	Arg    any
}

// Transport is a recording transport.Transport. Batches are failed with
// FailWith when it is set; ops are consumed immediately.
type Transport struct {
	mu       sync.Mutex
	name     string
	calls    []Call
	failWith error
}

var _ transport.Transport = (*Transport)(nil)

// NewTransport creates a fake transport with the given name.
func NewTransport(name string) *Transport {
	return &Transport{name: name}
}

func (t *Transport) Name() string { return t.name }

// FailWith makes PerformStreamOp fail every batch with err. nil disables it.
func (t *Transport) FailWith(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failWith = err
}

func (t *Transport) SetPollset(s transport.Stream, ps api.Pollset) {
	t.record("SetPollset", s, ps)
}

func (t *Transport) SetPollsetSet(s transport.Stream, pss api.PollsetSet) {
	t.record("SetPollsetSet", s, pss)
}

// PerformStreamOp records batch and, when FailWith is set, completes every
// pending phase with that error on ec.
func (t *Transport) PerformStreamOp(ec *concurrency.ExecCtx, s transport.Stream, batch *transport.StreamOpBatch) {
	t.record("PerformStreamOp", s, batch)
	t.mu.Lock()
	err := t.failWith
	t.mu.Unlock()
	if err != nil {
		transport.FailImmediately(ec, batch, err)
	}
}

// PerformOp records op, binds its polling entity and reports it consumed.
func (t *Transport) PerformOp(ec *concurrency.ExecCtx, op *transport.Op) {
	t.record("PerformOp", nil, op)
	if op.BindPollingEntity != nil {
		transport.DispatchPollingEntity(t, nil, op.BindPollingEntity)
	}
	ec.Run(op.OnConsumed, nil)
}

// DestroyStream records the call and schedules then.
func (t *Transport) DestroyStream(ec *concurrency.ExecCtx, s transport.Stream, then *concurrency.Closure) {
	t.record("DestroyStream", s, nil)
	ec.Run(then, nil)
}

// Calls returns a copy of the recorded calls.
func (t *Transport) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Call, len(t.calls))
	copy(out, t.calls)
	return out
}

// Methods returns the recorded method names in order.
func (t *Transport) Methods() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.calls))
	for i, c := range t.calls {
		out[i] = c.Method
	}
	return out
}

// Reset clears the recorded calls.
func (t *Transport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = t.calls[:0]
}

func (t *Transport) record(method string, s transport.Stream, arg any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, Call{Method: method, Stream: s, Arg: arg})
}
