// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"

	"github.com/momentics/hioload-transport/api"
)

// ManualEngine is an api.Engine that holds callables until Drain.
type ManualEngine struct {
	mu      sync.Mutex
	pending []func()
	ran     int
}

var _ api.Engine = (*ManualEngine)(nil)

func (e *ManualEngine) Run(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = append(e.pending, fn)
}

// Pending returns the number of callables waiting for Drain.
func (e *ManualEngine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// Ran returns how many callables Drain has executed.
func (e *ManualEngine) Ran() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ran
}

// Drain runs pending callables, including ones they submit, on the calling
// goroutine. It returns how many ran.
func (e *ManualEngine) Drain() int {
	n := 0
	for {
		e.mu.Lock()
		if len(e.pending) == 0 {
			e.mu.Unlock()
			return n
		}
		fn := e.pending[0]
		e.pending = e.pending[1:]
		e.ran++
		e.mu.Unlock()
		fn()
		n++
	}
}

// GoEngine runs each callable on a goroutine of its own.
type GoEngine struct {
	wg sync.WaitGroup
}

var _ api.Engine = (*GoEngine)(nil)

func (e *GoEngine) Run(fn func()) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		fn()
	}()
}

// Wait blocks until every callable started so far has returned.
func (e *GoEngine) Wait() { e.wg.Wait() }
