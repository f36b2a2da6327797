// File: transport/batch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// StreamOpBatch bundles the operations requested on one stream together with
// the payload that carries their arguments and ready closures.

package transport

import (
	"fmt"
	"sort"
	"strings"

	"google.golang.org/grpc/metadata"

	"github.com/momentics/hioload-transport/api"
	"github.com/momentics/hioload-transport/core/concurrency"
)

// StreamOpBatch is a set of requested stream operations. Every recv flag
// requires the matching ready closure in Payload.
type StreamOpBatch struct {
	// OnComplete fires once all send operations and cancellation are done.
	OnComplete *concurrency.Closure
	Payload    *StreamOpBatchPayload

	SendInitialMetadata  bool
	SendMessage          bool
	SendTrailingMetadata bool
	RecvInitialMetadata  bool
	RecvMessage          bool
	RecvTrailingMetadata bool
	CancelStream         bool

	// IsTraced marks a batch whose progress is logged at debug level.
	IsTraced bool
}

// StreamOpBatchPayload holds per-operation arguments. It must outlive every
// completion of the batch it belongs to.
type StreamOpBatchPayload struct {
	SendInitialMetadata  SendInitialMetadataArgs
	SendMessage          SendMessageArgs
	SendTrailingMetadata SendTrailingMetadataArgs
	RecvInitialMetadata  RecvInitialMetadataArgs
	RecvMessage          RecvMessageArgs
	RecvTrailingMetadata RecvTrailingMetadataArgs
	CancelStream         CancelStreamArgs
}

type SendInitialMetadataArgs struct {
	Metadata metadata.MD
}

type SendMessageArgs struct {
	Message []byte
	Flags   uint32
}

type SendTrailingMetadataArgs struct {
	Metadata metadata.MD
	// Sent is set by the transport when trailers actually went out.
	Sent *bool
}

type RecvInitialMetadataArgs struct {
	Metadata metadata.MD
	Ready    *concurrency.Closure
	// TrailingMetadataAvailable is set when trailers arrived with the headers.
	TrailingMetadataAvailable *bool
}

type RecvMessageArgs struct {
	Message *[]byte
	Ready   *concurrency.Closure
}

type RecvTrailingMetadataArgs struct {
	Metadata metadata.MD
	Ready    *concurrency.Closure
}

type CancelStreamArgs struct {
	Error error
}

// Validate reports a recv flag set without its ready closure.
func (b *StreamOpBatch) Validate() error {
	check := func(set bool, name string, ready func(*StreamOpBatchPayload) *concurrency.Closure) error {
		if !set {
			return nil
		}
		if b.Payload == nil {
			return fmt.Errorf("%w: %s requested without payload", api.ErrInvalidBatch, name)
		}
		if ready(b.Payload) == nil {
			return fmt.Errorf("%w: %s requested without ready closure", api.ErrInvalidBatch, name)
		}
		return nil
	}
	if err := check(b.RecvInitialMetadata, "recv_initial_metadata",
		func(p *StreamOpBatchPayload) *concurrency.Closure { return p.RecvInitialMetadata.Ready }); err != nil {
		return err
	}
	if err := check(b.RecvMessage, "recv_message",
		func(p *StreamOpBatchPayload) *concurrency.Closure { return p.RecvMessage.Ready }); err != nil {
		return err
	}
	if err := check(b.RecvTrailingMetadata, "recv_trailing_metadata",
		func(p *StreamOpBatchPayload) *concurrency.Closure { return p.RecvTrailingMetadata.Ready }); err != nil {
		return err
	}
	if b.CancelStream && b.Payload == nil {
		return fmt.Errorf("%w: cancel_stream requested without payload", api.ErrInvalidBatch)
	}
	return nil
}

// String renders the batch for logs, e.g.
// "SEND_INITIAL_METADATA{a=1} RECV_MESSAGE ON_COMPLETE[done]".
func (b *StreamOpBatch) String() string {
	var parts []string
	if b.SendInitialMetadata {
		parts = append(parts, "SEND_INITIAL_METADATA{"+mdString(b.payloadOrEmpty().SendInitialMetadata.Metadata)+"}")
	}
	if b.SendMessage {
		p := b.payloadOrEmpty()
		parts = append(parts, fmt.Sprintf("SEND_MESSAGE:flags=0x%08x:len=%d",
			p.SendMessage.Flags, len(p.SendMessage.Message)))
	}
	if b.SendTrailingMetadata {
		parts = append(parts, "SEND_TRAILING_METADATA{"+mdString(b.payloadOrEmpty().SendTrailingMetadata.Metadata)+"}")
	}
	if b.RecvInitialMetadata {
		parts = append(parts, "RECV_INITIAL_METADATA")
	}
	if b.RecvMessage {
		parts = append(parts, "RECV_MESSAGE")
	}
	if b.RecvTrailingMetadata {
		parts = append(parts, "RECV_TRAILING_METADATA")
	}
	if b.CancelStream {
		parts = append(parts, fmt.Sprintf("CANCEL:%v", b.payloadOrEmpty().CancelStream.Error))
	}
	if b.OnComplete != nil {
		parts = append(parts, "ON_COMPLETE["+b.OnComplete.Name()+"]")
	}
	if len(parts) == 0 {
		return "EMPTY"
	}
	return strings.Join(parts, " ")
}

func (b *StreamOpBatch) payloadOrEmpty() *StreamOpBatchPayload {
	if b.Payload == nil {
		return &StreamOpBatchPayload{}
	}
	return b.Payload
}

func mdString(md metadata.MD) string {
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strings.Join(md[k], ","))
	}
	return strings.Join(parts, " ")
}
