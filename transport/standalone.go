// File: transport/standalone.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Standalone ops and batches own their completion plumbing and release
// their slot when the completion installed on them fires. Callers only ever
// see the embedded *Op or *StreamOpBatch and must drop it once the inner
// closure has been called.

package transport

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/momentics/hioload-transport/api"
	"github.com/momentics/hioload-transport/control"
	"github.com/momentics/hioload-transport/core/concurrency"
	"github.com/momentics/hioload-transport/pool"
)

type standaloneOp struct {
	op    Op
	inner *concurrency.Closure
	fired uint32
}

type standaloneBatch struct {
	batch   StreamOpBatch
	payload StreamOpBatchPayload
	inner   *concurrency.Closure
	fired   uint32
}

// FactoryStats reports slot usage per wrapper kind.
type FactoryStats struct {
	TransportOps pool.Stats
	StreamOps    pool.Stats
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithReleaseHook calls fn with the wrapper kind every time a wrapper slot
// is released.
func WithReleaseHook(fn func(kind string)) FactoryOption {
	return func(f *Factory) { f.onRelease = fn }
}

// Factory hands out standalone wrappers from generation-checked slot pools.
type Factory struct {
	ops       *pool.SlotPool[standaloneOp]
	batches   *pool.SlotPool[standaloneBatch]
	onRelease func(kind string)
}

// NewFactory creates a factory with empty pools.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		ops:     pool.NewSlotPool[standaloneOp](),
		batches: pool.NewSlotPool[standaloneBatch](),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var defaultFactory = NewFactory()

// MakeStandaloneTransportOp returns an op whose OnConsumed, when fired,
// invokes inner with the received error and then releases the op.
func MakeStandaloneTransportOp(inner *concurrency.Closure) *Op {
	return defaultFactory.MakeStandaloneTransportOp(inner)
}

// MakeStandaloneStreamOpBatch returns a batch with its payload attached whose
// OnComplete, when fired, releases the batch and then invokes inner with the
// received error.
func MakeStandaloneStreamOpBatch(inner *concurrency.Closure) *StreamOpBatch {
	return defaultFactory.MakeStandaloneStreamOpBatch(inner)
}

// MakeStandaloneTransportOp is the Factory form of the package function.
func (f *Factory) MakeStandaloneTransportOp(inner *concurrency.Closure) *Op {
	slot, gen := f.ops.Acquire()
	w := &slot.Value
	w.inner = inner
	w.op.OnConsumed = concurrency.NewClosure("standalone_transport_op", func(ec *concurrency.ExecCtx, err error) {
		if slot.Generation() != gen || !atomic.CompareAndSwapUint32(&w.fired, 0, 1) {
			panic(api.Internal(api.ErrDoubleCompletion, "standalone transport op fired twice"))
		}
		w.inner.Invoke(ec, err)
		if !f.ops.Release(slot, gen) {
			panic(api.Internal(api.ErrDoubleCompletion, "standalone transport op released twice"))
		}
		f.released(control.KindTransportOp)
	})
	stats().StandaloneAllocated(control.KindTransportOp)
	return &w.op
}

// MakeStandaloneStreamOpBatch is the Factory form of the package function.
func (f *Factory) MakeStandaloneStreamOpBatch(inner *concurrency.Closure) *StreamOpBatch {
	slot, gen := f.batches.Acquire()
	w := &slot.Value
	w.inner = inner
	w.batch.Payload = &w.payload
	w.batch.OnComplete = concurrency.NewClosure("standalone_stream_op_batch", func(ec *concurrency.ExecCtx, err error) {
		if slot.Generation() != gen || !atomic.CompareAndSwapUint32(&w.fired, 0, 1) {
			panic(api.Internal(api.ErrDoubleCompletion, "standalone stream op batch fired twice"))
		}
		inner := w.inner
		if !f.batches.Release(slot, gen) {
			panic(api.Internal(api.ErrDoubleCompletion, "standalone stream op batch released twice"))
		}
		f.released(control.KindStreamBatch)
		inner.Invoke(ec, err)
	})
	stats().StandaloneAllocated(control.KindStreamBatch)
	return &w.batch
}

// Stats returns slot counters for both wrapper kinds.
func (f *Factory) Stats() FactoryStats {
	return FactoryStats{
		TransportOps: f.ops.Stats(),
		StreamOps:    f.batches.Stats(),
	}
}

// DefaultFactoryStats reports the counters of the factory behind the
// package-level constructors.
func DefaultFactoryStats() FactoryStats { return defaultFactory.Stats() }

func (f *Factory) released(kind string) {
	stats().StandaloneReleased(kind)
	log().Debug("standalone wrapper released", zap.String("kind", kind))
	if f.onRelease != nil {
		f.onRelease(kind)
	}
}
