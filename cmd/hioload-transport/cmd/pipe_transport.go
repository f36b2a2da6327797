package cmd

import (
	"os"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"

	"github.com/momentics/hioload-transport/api"
	"github.com/momentics/hioload-transport/core/concurrency"
	"github.com/momentics/hioload-transport/transport"
)

// pipeStream is a stream backed by an os.Pipe; its read end is what gets
// bound to a pollset.
type pipeStream struct {
	id    int
	rc    *transport.StreamRefCount
	r, w  *os.File
	bound transport.PollingEntityKind
}

func (s *pipeStream) RefCount() *transport.StreamRefCount { return s.rc }

func newPipeStream(id int) (*pipeStream, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	return &pipeStream{id: id, r: r, w: w}, nil
}

// pipeTransport binds pipe streams to the reactor and tears them down.
// It carries no wire protocol, so every stream op fails.
type pipeTransport struct {
	logger     *zap.Logger
	pollset    api.Pollset
	pollsetSet api.PollsetSet
}

var _ transport.Transport = (*pipeTransport)(nil)

func (t *pipeTransport) Name() string { return "pipe" }

func (t *pipeTransport) SetPollset(s transport.Stream, ps api.Pollset) {
	stream := s.(*pipeStream)
	if err := ps.Add(stream.r.Fd()); err != nil {
		t.logger.Warn("pollset add failed", zap.Int("stream", stream.id), zap.Error(err))
		return
	}
	stream.bound = transport.PollingEntityPollset
}

func (t *pipeTransport) SetPollsetSet(s transport.Stream, pss api.PollsetSet) {
	stream := s.(*pipeStream)
	if err := pss.Add(stream.r.Fd()); err != nil {
		t.logger.Warn("pollset set add failed", zap.Int("stream", stream.id), zap.Error(err))
		return
	}
	stream.bound = transport.PollingEntityPollsetSet
}

func (t *pipeTransport) PerformStreamOp(ec *concurrency.ExecCtx, _ transport.Stream, batch *transport.StreamOpBatch) {
	transport.FailImmediately(ec, batch, api.NewStatus(codes.Unimplemented, "pipe transport carries no stream ops"))
}

func (t *pipeTransport) PerformOp(ec *concurrency.ExecCtx, op *transport.Op) {
	ec.Run(op.OnConsumed, nil)
}

// DestroyStream unbinds the read end, closes both pipe ends and schedules
// then.
func (t *pipeTransport) DestroyStream(ec *concurrency.ExecCtx, s transport.Stream, then *concurrency.Closure) {
	stream := s.(*pipeStream)
	var err error
	switch stream.bound {
	case transport.PollingEntityPollset:
		err = t.pollset.Remove(stream.r.Fd())
	case transport.PollingEntityPollsetSet:
		err = t.pollsetSet.Remove(stream.r.Fd())
	}
	if err != nil {
		t.logger.Debug("unbind pipe reader", zap.Int("stream", stream.id), zap.Error(err))
	}
	if err := stream.w.Close(); err != nil {
		t.logger.Debug("close pipe writer", zap.Int("stream", stream.id), zap.Error(err))
	}
	if err := stream.r.Close(); err != nil {
		t.logger.Debug("close pipe reader", zap.Int("stream", stream.id), zap.Error(err))
	}
	ec.Run(then, nil)
}
