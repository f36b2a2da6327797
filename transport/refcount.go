// File: transport/refcount.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// StreamRefCount gates the one-shot destruction of a stream.

package transport

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/momentics/hioload-transport/adapters"
	"github.com/momentics/hioload-transport/api"
	"github.com/momentics/hioload-transport/control"
	"github.com/momentics/hioload-transport/core/concurrency"
	"github.com/momentics/hioload-transport/internal/buildmode"
)

// RefCountState is the lifecycle state of a StreamRefCount.
type RefCountState int32

const (
	Active RefCountState = iota
	DestructionRequested
	Destroyed
)

func (s RefCountState) String() string {
	switch s {
	case Active:
		return "active"
	case DestructionRequested:
		return "destruction_requested"
	case Destroyed:
		return "destroyed"
	}
	return fmt.Sprintf("RefCountState(%d)", int32(s))
}

// StreamRefCount is an atomic count whose zero crossing fires the destroy
// closure exactly once. Nothing may touch the stream after that.
type StreamRefCount struct {
	refs       atomic.Int32
	state      atomic.Int32
	destroy    *concurrency.Closure
	finish     *concurrency.Closure
	engine     api.Engine
	objectType string
}

// RefCountOption configures a StreamRefCount.
type RefCountOption func(*StreamRefCount)

// WithEngine selects the engine destroys are redirected to. The default is
// adapters.DefaultEngine.
func WithEngine(e api.Engine) RefCountOption {
	return func(rc *StreamRefCount) { rc.engine = e }
}

// InitRefCount allocates and initializes a refcount.
func InitRefCount(initial int32, destroy *concurrency.Closure, objectType string, opts ...RefCountOption) *StreamRefCount {
	rc := new(StreamRefCount)
	rc.Init(initial, destroy, objectType, opts...)
	return rc
}

// Init binds destroy and sets the count. Counts below one start at one.
// objectType is kept for diagnostics in debug builds only.
func (rc *StreamRefCount) Init(initial int32, destroy *concurrency.Closure, objectType string, opts ...RefCountOption) {
	if initial <= 0 {
		initial = 1
	}
	for _, opt := range opts {
		opt(rc)
	}
	rc.destroy = destroy
	rc.finish = concurrency.NewClosure("stream_destroy", rc.runDestroy)
	rc.state.Store(int32(Active))
	rc.refs.Store(initial)
	if buildmode.Debug {
		rc.objectType = objectType
		live.add(objectType, 1)
	}
}

// Ref takes another reference. Reviving a refcount that already reached
// zero is fatal.
func (rc *StreamRefCount) Ref() {
	if prev := rc.refs.Add(1) - 1; prev <= 0 || RefCountState(rc.state.Load()) != Active {
		panic(api.Internal(api.ErrRefAfterDestroy, "ref on %s stream refcount", rc.State()))
	}
}

// Unref drops a reference. The caller that takes the count to zero
// destroys the stream through ec.
func (rc *StreamRefCount) Unref(ec *concurrency.ExecCtx) {
	n := rc.refs.Add(-1)
	switch {
	case n == 0:
		rc.Destroy(ec)
	case n < 0:
		panic(api.Internal(api.ErrDoubleDestroy, "stream refcount dropped below zero (%d)", n))
	}
}

// Destroy schedules the destroy closure. When ec runs inside a
// thread-resource loop the current goroutine may be owned by the call stack
// being destroyed, so the closure is handed to the engine and runs under a
// fresh context there. Otherwise it is queued on ec with a nil error.
func (rc *StreamRefCount) Destroy(ec *concurrency.ExecCtx) {
	if !rc.state.CompareAndSwap(int32(Active), int32(DestructionRequested)) {
		panic(api.Internal(api.ErrDoubleDestroy, "destroy on %s stream refcount", rc.State()))
	}
	if ec.HasFlag(concurrency.FlagThreadResourceLoop) {
		engine := rc.engine
		if engine == nil {
			engine = adapters.DefaultEngine()
		}
		log().Debug("stream destroy redirected to engine",
			zap.String("object_type", rc.objectType), zap.Stringer("flags", ec.Flags()))
		stats().StreamDestroyed(control.DestroyEngine)
		engine.Run(func() {
			concurrency.WithExecCtx(concurrency.FlagInternalThread, func(fresh *concurrency.ExecCtx) {
				fresh.Run(rc.finish, nil)
			})
		})
		return
	}
	stats().StreamDestroyed(control.DestroyInline)
	ec.Run(rc.finish, nil)
}

func (rc *StreamRefCount) runDestroy(ec *concurrency.ExecCtx, err error) {
	rc.state.Store(int32(Destroyed))
	if buildmode.Debug {
		live.add(rc.objectType, -1)
	}
	rc.destroy.Invoke(ec, err)
}

// State returns the lifecycle state.
func (rc *StreamRefCount) State() RefCountState { return RefCountState(rc.state.Load()) }

// Count returns the current number of references.
func (rc *StreamRefCount) Count() int32 { return rc.refs.Load() }

// ObjectType returns the debug tag; empty in release builds.
func (rc *StreamRefCount) ObjectType() string { return rc.objectType }

type liveRegistry struct {
	mu     sync.Mutex
	byType map[string]int
}

var live = &liveRegistry{byType: make(map[string]int)}

func (r *liveRegistry) add(objectType string, delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[objectType] += delta
	if r.byType[objectType] == 0 {
		delete(r.byType, objectType)
	}
}

// LiveStream is one row of LiveStreams.
type LiveStream struct {
	ObjectType string
	Count      int
}

// LiveStreams lists refcounts not yet destroyed, per object type, sorted by
// type. Only debug builds (hioload_debug tag) track them.
func LiveStreams() []LiveStream {
	live.mu.Lock()
	defer live.mu.Unlock()
	out := make([]LiveStream, 0, len(live.byType))
	for t, n := range live.byType {
		out = append(out, LiveStream{ObjectType: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ObjectType < out[j].ObjectType })
	return out
}
