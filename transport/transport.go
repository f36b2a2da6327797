// File: transport/transport.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Transport contract and the package-level logger and metrics sinks.

package transport

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/momentics/hioload-transport/api"
	"github.com/momentics/hioload-transport/control"
	"github.com/momentics/hioload-transport/core/concurrency"
)

// Stream is a transport-owned stream guarded by a refcount.
type Stream interface {
	RefCount() *StreamRefCount
}

// Transport is implemented by wire transports. Every method may be called
// with the caller's execution context; completions go through ec.
type Transport interface {
	// Name identifies the transport in logs.
	Name() string

	// SetPollset binds the stream's descriptors to ps.
	SetPollset(s Stream, ps api.Pollset)

	// SetPollsetSet binds the stream's descriptors to every pollset of pss.
	SetPollsetSet(s Stream, pss api.PollsetSet)

	// PerformStreamOp starts the operations requested by batch.
	PerformStreamOp(ec *concurrency.ExecCtx, s Stream, batch *StreamOpBatch)

	// PerformOp applies a transport-level op.
	PerformOp(ec *concurrency.ExecCtx, op *Op)

	// DestroyStream releases transport state for s and schedules then.
	DestroyStream(ec *concurrency.ExecCtx, s Stream, then *concurrency.Closure)
}

var (
	logger  atomic.Pointer[zap.Logger]
	metrics atomic.Pointer[control.Metrics]
)

func init() {
	logger.Store(zap.NewNop())
}

// SetLogger replaces the package logger. nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l.Named("transport"))
}

// SetMetrics installs the metrics sink. nil disables recording.
func SetMetrics(m *control.Metrics) {
	metrics.Store(m)
}

func log() *zap.Logger { return logger.Load() }

func stats() *control.Metrics { return metrics.Load() }
