package concurrency

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-transport/api"
)

func TestExecutor_RunsSubmittedTasks(t *testing.T) {
	ex := NewExecutor(Options{Workers: 4})
	defer ex.Close()

	const n = 200
	var wg sync.WaitGroup
	var counter atomic.Int64
	wg.Add(n)
	for i := 0; i < n; i++ {
		require.NoError(t, ex.Submit(func() {
			counter.Add(1)
			wg.Done()
		}))
	}
	waitTimeout(t, &wg, 2*time.Second)
	assert.Equal(t, int64(n), counter.Load())
}

func TestExecutor_OverflowIsNotDropped(t *testing.T) {
	ex := NewExecutor(Options{Workers: 1, QueueCapacity: 2})
	defer ex.Close()

	block := make(chan struct{})
	var wg sync.WaitGroup
	var counter atomic.Int64
	wg.Add(1)
	ex.Run(func() {
		<-block
		wg.Done()
	})
	const n = 50
	wg.Add(n)
	for i := 0; i < n; i++ {
		ex.Run(func() {
			counter.Add(1)
			wg.Done()
		})
	}
	close(block)
	waitTimeout(t, &wg, 2*time.Second)
	assert.Equal(t, int64(n), counter.Load())
}

func TestExecutor_RunsOffTheCallerGoroutine(t *testing.T) {
	ex := NewExecutor(Options{Workers: 2})
	defer ex.Close()

	caller := make(chan struct{})
	done := make(chan bool, 1)
	ex.Run(func() {
		select {
		case <-caller:
			done <- true
		case <-time.After(time.Second):
			done <- false
		}
	})
	// The task can only observe this close if it is not running inline.
	close(caller)
	assert.True(t, <-done)
}

func TestExecutor_Resize(t *testing.T) {
	ex := NewExecutor(Options{Workers: 2})
	defer ex.Close()

	ex.Resize(6)
	assert.Equal(t, 6, ex.NumWorkers())
	ex.Resize(1)
	assert.Equal(t, 1, ex.NumWorkers())
	ex.Resize(0)
	assert.Equal(t, 1, ex.NumWorkers())

	var wg sync.WaitGroup
	wg.Add(10)
	for i := 0; i < 10; i++ {
		ex.Run(wg.Done)
	}
	waitTimeout(t, &wg, 2*time.Second)
}

func TestExecutor_CloseRejectsAndRunDetaches(t *testing.T) {
	var results []string
	var mu sync.Mutex
	ex := NewExecutor(Options{Workers: 1, OnTask: func(r string) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}})
	ex.Close()
	ex.Close()

	assert.ErrorIs(t, ex.Submit(func() {}), api.ErrEngineClosed)

	ran := make(chan struct{})
	ex.Run(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("Run after Close must still execute the callable")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, results, TaskRejected)
	assert.Equal(t, int64(0), ex.Stats()["num_workers"])
}

func TestExecutor_Stats(t *testing.T) {
	ex := NewExecutor(Options{Workers: 1})
	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		ex.Run(wg.Done)
	}
	waitTimeout(t, &wg, time.Second)
	ex.Close()
	stats := ex.Stats()
	assert.Equal(t, int64(3), stats["submitted_tasks"])
	assert.Equal(t, int64(3), stats["completed_tasks"])
	assert.Equal(t, int64(0), stats["pending_tasks"])
}

func waitTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timeout waiting for tasks")
	}
}
