// File: internal/concurrency/executor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor is the independent scheduling engine: a pool of worker goroutines
// pulling tasks from a bounded lock-free queue, spilling to an unbounded
// overflow queue so that fire-and-forget submissions are never dropped.

package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/momentics/hioload-transport/api"
	core "github.com/momentics/hioload-transport/core/concurrency"
)

// TaskFunc is a unit of work to execute.
type TaskFunc func()

// Task outcomes reported to Options.OnTask.
const (
	TaskOK       = "ok"
	TaskPanicked = "panicked"
	TaskRejected = "rejected"
)

// Options configures an Executor.
type Options struct {
	// Workers is the number of worker goroutines; <= 0 means runtime.NumCPU().
	Workers int

	// PinCPUs binds worker i to CPU FirstCPU+i.
	PinCPUs  bool
	FirstCPU int

	// QueueCapacity bounds the lock-free queue; overflow goes to a locked queue.
	QueueCapacity int

	Logger *zap.Logger

	// OnTask observes every task outcome.
	OnTask func(result string)
}

// Executor manages a pool of worker goroutines.
type Executor struct {
	tasks      *core.LockFreeQueue[TaskFunc]
	overflowMu sync.Mutex
	overflow   *queue.Queue
	wake       chan struct{}

	mu      sync.Mutex
	workers []*worker
	wg      sync.WaitGroup
	closeCh chan struct{}
	closed  atomic.Bool

	pinCPUs  bool
	firstCPU int
	logger   *zap.Logger
	onTask   func(string)

	submitted atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64
}

// NewExecutor starts an executor.
func NewExecutor(opts Options) *Executor {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.QueueCapacity <= 0 {
		opts.QueueCapacity = 1024
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	e := &Executor{
		tasks:    core.NewLockFreeQueue[TaskFunc](opts.QueueCapacity),
		overflow: queue.New(),
		wake:     make(chan struct{}, opts.Workers),
		closeCh:  make(chan struct{}),
		pinCPUs:  opts.PinCPUs,
		firstCPU: opts.FirstCPU,
		logger:   opts.Logger,
		onTask:   opts.OnTask,
	}
	e.mu.Lock()
	e.addWorkers(opts.Workers)
	e.mu.Unlock()
	return e
}

// Submit enqueues a task, returning api.ErrEngineClosed once closed.
func (e *Executor) Submit(task TaskFunc) error {
	if e.closed.Load() {
		e.report(TaskRejected)
		return api.ErrEngineClosed
	}
	e.submitted.Add(1)
	if !e.tasks.Enqueue(task) {
		e.overflowMu.Lock()
		e.overflow.Add(task)
		e.overflowMu.Unlock()
	}
	select {
	case e.wake <- struct{}{}:
	default:
	}
	return nil
}

// Run submits fn without reporting errors. After Close the callable still
// runs, on a goroutine of its own.
func (e *Executor) Run(fn func()) {
	if err := e.Submit(fn); err != nil {
		e.logger.Warn("engine closed, running task on a detached goroutine", zap.Error(err))
		go fn()
	}
}

// NumWorkers returns the current number of workers.
func (e *Executor) NumWorkers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.workers)
}

// Resize grows or shrinks the pool. Removed workers finish their current task
// before exiting.
func (e *Executor) Resize(newCount int) {
	if newCount <= 0 {
		newCount = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed.Load() {
		return
	}
	current := len(e.workers)
	switch {
	case newCount > current:
		e.addWorkers(newCount - current)
	case newCount < current:
		removed := e.workers[newCount:]
		e.workers = e.workers[:newCount]
		for _, w := range removed {
			close(w.stopCh)
		}
		for _, w := range removed {
			<-w.stoppedCh
		}
	}
	e.logger.Debug("engine resized", zap.Int("from", current), zap.Int("to", newCount))
}

// Close stops the workers and runs whatever is still queued on the calling
// goroutine, so no accepted task is lost.
func (e *Executor) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	close(e.closeCh)
	e.mu.Lock()
	for _, w := range e.workers {
		close(w.stopCh)
	}
	e.workers = nil
	e.mu.Unlock()
	e.wg.Wait()

	drained := 0
	for task, ok := e.next(); ok; task, ok = e.next() {
		e.execute(task)
		drained++
	}
	e.logger.Debug("engine closed", zap.Int("drained", drained))
}

// Stats returns basic executor metrics.
func (e *Executor) Stats() map[string]int64 {
	submitted := e.submitted.Load()
	completed := e.completed.Load()
	return map[string]int64{
		"submitted_tasks": submitted,
		"completed_tasks": completed,
		"pending_tasks":   submitted - completed,
		"panicked_tasks":  e.panicked.Load(),
		"num_workers":     int64(e.NumWorkers()),
	}
}

// addWorkers must be called with e.mu held.
func (e *Executor) addWorkers(n int) {
	for i := 0; i < n; i++ {
		w := &worker{
			id:        len(e.workers),
			executor:  e,
			stopCh:    make(chan struct{}),
			stoppedCh: make(chan struct{}),
		}
		e.workers = append(e.workers, w)
		e.wg.Add(1)
		go w.run()
	}
}

func (e *Executor) next() (TaskFunc, bool) {
	if task, ok := e.tasks.Dequeue(); ok {
		return task, true
	}
	e.overflowMu.Lock()
	defer e.overflowMu.Unlock()
	if e.overflow.Length() == 0 {
		return nil, false
	}
	return e.overflow.Remove().(TaskFunc), true
}

// execute runs task. A panicking task is logged and re-raised: state touched
// by it can no longer be trusted.
func (e *Executor) execute(task TaskFunc) {
	defer func() {
		e.completed.Add(1)
		if r := recover(); r != nil {
			e.panicked.Add(1)
			e.report(TaskPanicked)
			e.logger.Error("engine task panicked", zap.Any("panic", r))
			panic(r)
		}
		e.report(TaskOK)
	}()
	task()
}

func (e *Executor) report(result string) {
	if e.onTask != nil {
		e.onTask(result)
	}
}

type worker struct {
	id        int
	executor  *Executor
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func (w *worker) run() {
	e := w.executor
	defer func() {
		close(w.stoppedCh)
		e.wg.Done()
	}()
	if e.pinCPUs {
		if err := PinCurrentThread(e.firstCPU + w.id); err != nil {
			e.logger.Debug("worker pinning unavailable", zap.Int("worker", w.id), zap.Error(err))
		}
		defer UnpinCurrentThread()
	}
	for {
		select {
		case <-w.stopCh:
			return
		default:
		}
		if task, ok := e.next(); ok {
			e.execute(task)
			continue
		}
		select {
		case <-w.stopCh:
			return
		case <-e.wake:
		}
	}
}
