package transport_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/metadata"

	"github.com/momentics/hioload-transport/api"
	"github.com/momentics/hioload-transport/core/concurrency"
	"github.com/momentics/hioload-transport/fake"
	"github.com/momentics/hioload-transport/transport"
)

func noop(name string) *concurrency.Closure {
	return concurrency.NewClosure(name, func(*concurrency.ExecCtx, error) {})
}

func TestStreamOpBatch_Validate(t *testing.T) {
	ok := &transport.StreamOpBatch{
		RecvInitialMetadata: true,
		Payload: &transport.StreamOpBatchPayload{
			RecvInitialMetadata: transport.RecvInitialMetadataArgs{Ready: noop("ready")},
		},
	}
	assert.NoError(t, ok.Validate())
	assert.NoError(t, (&transport.StreamOpBatch{}).Validate())

	bad := []*transport.StreamOpBatch{
		{RecvMessage: true},
		{RecvTrailingMetadata: true, Payload: &transport.StreamOpBatchPayload{}},
		{CancelStream: true},
	}
	for _, b := range bad {
		err := b.Validate()
		assert.True(t, errors.Is(err, api.ErrInvalidBatch), "%s: %v", b, err)
	}
}

func TestStreamOpBatch_String(t *testing.T) {
	b := &transport.StreamOpBatch{
		SendInitialMetadata: true,
		SendMessage:         true,
		RecvMessage:         true,
		CancelStream:        true,
		OnComplete:          noop("done"),
		Payload: &transport.StreamOpBatchPayload{
			SendInitialMetadata: transport.SendInitialMetadataArgs{Metadata: metadata.Pairs("b", "2", "a", "1")},
			SendMessage:         transport.SendMessageArgs{Message: []byte("hello"), Flags: 2},
			CancelStream:        transport.CancelStreamArgs{Error: errors.New("bye")},
		},
	}
	assert.Equal(t,
		"SEND_INITIAL_METADATA{a=1 b=2} SEND_MESSAGE:flags=0x00000002:len=5 RECV_MESSAGE CANCEL:bye ON_COMPLETE[done]",
		b.String())
	assert.Equal(t, "EMPTY", (&transport.StreamOpBatch{}).String())
}

func TestOp_String(t *testing.T) {
	entity := transport.PollingEntityFromPollset(fake.NewPollset())
	op := &transport.Op{
		OnConsumed:          noop("consumed"),
		GoawayError:         errors.New("draining"),
		BindPollingEntity:   &entity,
		SendPing:            transport.SendPingArgs{OnAck: noop("ack")},
		ResetConnectBackoff: true,
	}
	assert.Equal(t,
		"ON_CONSUMED[consumed] SEND_GOAWAY:draining BIND_pollset SEND_PING RESET_CONNECT_BACKOFF",
		op.String())
	assert.Equal(t, "EMPTY", (&transport.Op{}).String())
}

func TestOp_BindPollingEntityThroughTransport(t *testing.T) {
	tr := fake.NewTransport("fake")
	entity := transport.PollingEntityFromPollsetSet(fake.NewPollsetSet())
	op := &transport.Op{BindPollingEntity: &entity}

	concurrency.WithExecCtx(0, func(ec *concurrency.ExecCtx) { tr.PerformOp(ec, op) })
	assert.Equal(t, []string{"PerformOp", "SetPollsetSet"}, tr.Methods())
}
