// File: transport/failure.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Failing a batch completes every pending phase with the same error, always
// in the order recv_initial_metadata, recv_message, recv_trailing_metadata,
// on_complete.

package transport

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-transport/api"
	"github.com/momentics/hioload-transport/control"
	"github.com/momentics/hioload-transport/core/concurrency"
)

// Phase names used in metrics and logs.
const (
	PhaseRecvInitialMetadata  = "recv_initial_metadata"
	PhaseRecvMessage          = "recv_message"
	PhaseRecvTrailingMetadata = "recv_trailing_metadata"
	PhaseOnComplete           = "on_complete"
)

type pendingCompletion struct {
	phase   string
	reason  string
	closure *concurrency.Closure
}

// pendingCompletions lists the completions owed by batch in firing order.
// A recv flag without its ready closure is fatal.
func pendingCompletions(batch *StreamOpBatch) []pendingCompletion {
	if err := batch.Validate(); err != nil {
		panic(api.Internal(api.ErrInvalidBatch, "failing batch %s: %v", batch, err))
	}
	out := make([]pendingCompletion, 0, 4)
	if batch.RecvInitialMetadata {
		out = append(out, pendingCompletion{
			phase:   PhaseRecvInitialMetadata,
			reason:  "failing recv_initial_metadata_ready",
			closure: batch.Payload.RecvInitialMetadata.Ready,
		})
	}
	if batch.RecvMessage {
		out = append(out, pendingCompletion{
			phase:   PhaseRecvMessage,
			reason:  "failing recv_message_ready",
			closure: batch.Payload.RecvMessage.Ready,
		})
	}
	if batch.RecvTrailingMetadata {
		out = append(out, pendingCompletion{
			phase:   PhaseRecvTrailingMetadata,
			reason:  "failing recv_trailing_metadata_ready",
			closure: batch.Payload.RecvTrailingMetadata.Ready,
		})
	}
	if batch.OnComplete != nil {
		out = append(out, pendingCompletion{
			phase:   PhaseOnComplete,
			reason:  "failing on_complete",
			closure: batch.OnComplete,
		})
	}
	return out
}

func phasesOf(pending []pendingCompletion) []string {
	phases := make([]string, len(pending))
	for i, p := range pending {
		phases[i] = p.phase
	}
	return phases
}

func traceFailure(batch *StreamOpBatch, variant string, err error, n int) {
	ce := log().Check(zap.DebugLevel, "failing stream op batch")
	if ce == nil {
		return
	}
	fields := []zap.Field{zap.String("variant", variant), zap.Int("completions", n), zap.Error(err)}
	if batch.IsTraced {
		fields = append(fields, zap.Stringer("batch", batch))
	}
	ce.Write(fields...)
}

// QueueFailure appends the completions owed by batch to closures, each
// carrying err. Nothing runs; the caller hands the list to its call combiner.
func QueueFailure(batch *StreamOpBatch, err error, closures *concurrency.CallCombinerClosureList) {
	pending := queueFailure(batch, err, closures)
	traceFailure(batch, control.VariantQueue, err, len(pending))
	stats().BatchFailed(control.VariantQueue, phasesOf(pending))
}

func queueFailure(batch *StreamOpBatch, err error, closures *concurrency.CallCombinerClosureList) []pendingCompletion {
	pending := pendingCompletions(batch)
	for _, p := range pending {
		closures.Add(p.closure, err, p.reason)
	}
	return pending
}

// FailImmediately hands every completion owed by batch to ec, bypassing any
// call combiner. Transports use it when they already hold exclusivity.
func FailImmediately(ec *concurrency.ExecCtx, batch *StreamOpBatch, err error) {
	pending := pendingCompletions(batch)
	for _, p := range pending {
		ec.Run(p.closure, err)
	}
	traceFailure(batch, control.VariantImmediate, err, len(pending))
	stats().BatchFailed(control.VariantImmediate, phasesOf(pending))
}

// FailAndRun queues the failure and runs the list on combiner, which the
// caller must hold.
func FailAndRun(ec *concurrency.ExecCtx, batch *StreamOpBatch, err error, combiner *concurrency.CallCombiner) {
	var closures concurrency.CallCombinerClosureList
	pending := queueFailure(batch, err, &closures)
	traceFailure(batch, control.VariantCombiner, err, len(pending))
	stats().BatchFailed(control.VariantCombiner, phasesOf(pending))
	closures.RunClosures(ec, combiner)
}
