// Package benchmarks
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks for hioload-transport components.

package benchmarks

import (
	"errors"
	"testing"

	"github.com/momentics/hioload-transport/adapters"
	"github.com/momentics/hioload-transport/core/concurrency"
	"github.com/momentics/hioload-transport/pool"
	"github.com/momentics/hioload-transport/transport"
)

var errBench = errors.New("benchmark failure")

// BenchmarkSlotPoolAcquireRelease tests slot pool turnover.
func BenchmarkSlotPoolAcquireRelease(b *testing.B) {
	p := pool.NewSlotPool[[64]byte]()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			s, gen := p.Acquire()
			p.Release(s, gen)
		}
	})
}

// BenchmarkLockFreeQueueThroughput tests the engine's task queue.
func BenchmarkLockFreeQueueThroughput(b *testing.B) {
	q := concurrency.NewLockFreeQueue[int](1024)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if !q.Enqueue(i) {
				q.Dequeue()
				q.Enqueue(i)
			}
			i++
		}
	})
}

// BenchmarkRefCountInlineDestroy tests the uncontended ref/unref/destroy path.
func BenchmarkRefCountInlineDestroy(b *testing.B) {
	destroy := concurrency.NewClosure("destroy", func(*concurrency.ExecCtx, error) {})
	ec := concurrency.NewExecCtx(0)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rc := transport.InitRefCount(2, destroy, "bench")
		rc.Unref(ec)
		rc.Unref(ec)
		ec.Flush()
	}
}

// BenchmarkRefCountRedirectedDestroy tests destroys handed to the engine.
func BenchmarkRefCountRedirectedDestroy(b *testing.B) {
	engine := adapters.NewEngineAdapter(adapters.EngineConfig{Workers: 4})
	defer engine.Close()
	done := make(chan struct{}, 1024)
	destroy := concurrency.NewClosure("destroy", func(*concurrency.ExecCtx, error) { done <- struct{}{} })
	ec := concurrency.NewExecCtx(concurrency.FlagThreadResourceLoop)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rc := transport.InitRefCount(1, destroy, "bench", transport.WithEngine(engine))
		rc.Unref(ec)
		<-done
	}
}

// BenchmarkFailImmediately tests fan-out of a full batch.
func BenchmarkFailImmediately(b *testing.B) {
	mk := func(name string) *concurrency.Closure {
		return concurrency.NewClosure(name, func(*concurrency.ExecCtx, error) {})
	}
	batch := &transport.StreamOpBatch{
		RecvInitialMetadata:  true,
		RecvMessage:          true,
		RecvTrailingMetadata: true,
		OnComplete:           mk("on_complete"),
		Payload: &transport.StreamOpBatchPayload{
			RecvInitialMetadata:  transport.RecvInitialMetadataArgs{Ready: mk("initial")},
			RecvMessage:          transport.RecvMessageArgs{Ready: mk("message")},
			RecvTrailingMetadata: transport.RecvTrailingMetadataArgs{Ready: mk("trailing")},
		},
	}
	ec := concurrency.NewExecCtx(0)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		transport.FailImmediately(ec, batch, errBench)
		ec.Flush()
	}
}

// BenchmarkStandaloneStreamOpBatch tests wrapper allocation and completion.
func BenchmarkStandaloneStreamOpBatch(b *testing.B) {
	f := transport.NewFactory()
	inner := concurrency.NewClosure("inner", func(*concurrency.ExecCtx, error) {})
	ec := concurrency.NewExecCtx(0)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		batch := f.MakeStandaloneStreamOpBatch(inner)
		ec.Run(batch.OnComplete, errBench)
		ec.Flush()
	}
}
