// File: pool/slot_pool.go
// Package pool implements generation-checked slot allocation.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// A SlotPool hands out reusable slots together with a generation number. The
// generation is the handle: releasing with a stale generation is refused, so a
// slot cannot be returned twice for one acquisition.

package pool

import (
	"sync"
	"sync/atomic"
)

// Slot holds one pooled value.
type Slot[T any] struct {
	Value T
	gen   atomic.Uint64
}

// Generation returns the slot's current generation.
func (s *Slot[T]) Generation() uint64 { return s.gen.Load() }

// Stats reports slot pool counters.
type Stats struct {
	Acquired uint64
	Released uint64
	InUse    int64
}

// SlotPool is safe for concurrent use.
type SlotPool[T any] struct {
	pool     sync.Pool
	acquired atomic.Uint64
	released atomic.Uint64
}

// NewSlotPool creates an empty pool.
func NewSlotPool[T any]() *SlotPool[T] {
	return &SlotPool[T]{
		pool: sync.Pool{New: func() any { return new(Slot[T]) }},
	}
}

// Acquire returns a zeroed slot and the generation identifying this
// acquisition.
func (p *SlotPool[T]) Acquire() (*Slot[T], uint64) {
	s := p.pool.Get().(*Slot[T])
	p.acquired.Add(1)
	return s, s.gen.Load()
}

// Release returns s to the pool if gen is still current. It reports false
// when the slot was already released for that generation.
func (p *SlotPool[T]) Release(s *Slot[T], gen uint64) bool {
	if !s.gen.CompareAndSwap(gen, gen+1) {
		return false
	}
	var zero T
	s.Value = zero
	p.released.Add(1)
	p.pool.Put(s)
	return true
}

// Stats returns allocation counters.
func (p *SlotPool[T]) Stats() Stats {
	acquired := p.acquired.Load()
	released := p.released.Load()
	return Stats{
		Acquired: acquired,
		Released: released,
		InUse:    int64(acquired) - int64(released),
	}
}
