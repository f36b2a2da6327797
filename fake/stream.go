// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

import (
	"sync/atomic"

	"github.com/momentics/hioload-transport/core/concurrency"
	"github.com/momentics/hioload-transport/transport"
)

// Stream is a transport.Stream counting its destroy callbacks.
type Stream struct {
	rc        *transport.StreamRefCount
	destroyed atomic.Int32
	lastCtx   atomic.Pointer[concurrency.ExecCtx]
}

var _ transport.Stream = (*Stream)(nil)

// NewStream creates a stream holding refs references.
func NewStream(refs int32, opts ...transport.RefCountOption) *Stream {
	s := &Stream{}
	s.rc = transport.InitRefCount(refs, concurrency.NewClosure("fake_stream_destroy",
		func(ec *concurrency.ExecCtx, _ error) {
			s.lastCtx.Store(ec)
			s.destroyed.Add(1)
		}), "fake_stream", opts...)
	return s
}

func (s *Stream) RefCount() *transport.StreamRefCount { return s.rc }

// Destroyed returns how many times the destroy callback ran.
func (s *Stream) Destroyed() int { return int(s.destroyed.Load()) }

// DestroyedOn returns the context the destroy callback ran under.
func (s *Stream) DestroyedOn() *concurrency.ExecCtx { return s.lastCtx.Load() }
