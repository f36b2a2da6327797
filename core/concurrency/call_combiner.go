// File: core/concurrency/call_combiner.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CallCombiner serializes closures registered against one logical call.
// Exactly one closure holds the combiner at a time; it releases it with Stop,
// which hands the combiner to the next queued closure.

package concurrency

import (
	"sync"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/momentics/hioload-transport/api"
)

type combinerEntry struct {
	closure *Closure
	err     error
	reason  string
}

// CallCombiner is safe for concurrent use.
type CallCombiner struct {
	mu      sync.Mutex
	size    int
	waiters *queue.Queue
	logger  *zap.Logger
}

// NewCallCombiner returns an idle combiner. A nil logger disables logging.
func NewCallCombiner(logger *zap.Logger) *CallCombiner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CallCombiner{
		waiters: queue.New(),
		logger:  logger,
	}
}

// Start registers c. When the combiner is idle c acquires it and is handed to
// ec right away; otherwise c waits behind the current holder.
func (cc *CallCombiner) Start(ec *ExecCtx, c *Closure, err error, reason string) {
	cc.mu.Lock()
	prev := cc.size
	cc.size++
	if prev == 0 {
		cc.mu.Unlock()
		cc.logger.Debug("call combiner acquired",
			zap.String("closure", c.Name()), zap.String("reason", reason))
		ec.Run(c, err)
		return
	}
	cc.waiters.Add(combinerEntry{closure: c, err: err, reason: reason})
	cc.mu.Unlock()
	cc.logger.Debug("call combiner contended, closure queued",
		zap.String("closure", c.Name()), zap.String("reason", reason), zap.Int("size", prev+1))
}

// Stop releases the combiner. If closures are waiting, the oldest one
// acquires it and is handed to ec.
func (cc *CallCombiner) Stop(ec *ExecCtx, reason string) {
	cc.mu.Lock()
	if cc.size == 0 {
		cc.mu.Unlock()
		panic(api.Internal(api.ErrCombinerUnderflow, "call combiner stop: %s", reason))
	}
	cc.size--
	if cc.size == 0 {
		cc.mu.Unlock()
		cc.logger.Debug("call combiner released", zap.String("reason", reason))
		return
	}
	next := cc.waiters.Remove().(combinerEntry)
	cc.mu.Unlock()
	cc.logger.Debug("call combiner handed over",
		zap.String("closure", next.closure.Name()),
		zap.String("reason", next.reason),
		zap.String("stop_reason", reason))
	ec.Run(next.closure, next.err)
}

// Size returns the holder plus the number of waiting closures.
func (cc *CallCombiner) Size() int {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.size
}
