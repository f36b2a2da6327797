//go:build !linux

// File: reactor/pollset_other.go
// Author: momentics <momentics@gmail.com>
//
// Descriptor-tracking pollset for platforms without epoll. Registration works;
// Poll reports api.ErrNotSupported.

package reactor

import (
	"sync"

	"github.com/momentics/hioload-transport/api"
)

type trackingPollset struct {
	mu     sync.Mutex
	fds    map[uintptr]struct{}
	closed bool
}

// NewPollset constructs a tracking pollset.
func NewPollset() (api.Pollset, error) {
	return &trackingPollset{fds: make(map[uintptr]struct{})}, nil
}

func (p *trackingPollset) Add(fd uintptr) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return api.ErrPollsetClosed
	}
	p.fds[fd] = struct{}{}
	return nil
}

func (p *trackingPollset) Remove(fd uintptr) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return api.ErrPollsetClosed
	}
	delete(p.fds, fd)
	return nil
}

func (p *trackingPollset) Poll(int) ([]uintptr, error) {
	return nil, api.ErrNotSupported
}

func (p *trackingPollset) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}
