// Package transport
// Author: momentics <momentics@gmail.com>
//
// Stream lifecycle and op-batch completion layer between the call path and
// pluggable wire transports:
//   - StreamRefCount destroys a stream once, redirecting the destroy to the
//     engine when the caller runs inside a thread-resource loop
//   - QueueFailure, FailImmediately and FailAndRun fan one error out to every
//     pending completion of a batch in a fixed order
//   - Factory manufactures self-releasing standalone ops and batches
//   - SetPollingEntity routes a pollset or pollset set to the transport
package transport
