//go:build linux

// File: reactor/pollset_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based pollset.

package reactor

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-transport/api"
)

const maxPollEvents = 128

// epollPollset is a level-triggered epoll instance.
type epollPollset struct {
	mu     sync.Mutex
	epfd   int
	fds    map[uintptr]struct{}
	closed bool
}

// NewPollset constructs an epoll-backed pollset.
func NewPollset() (api.Pollset, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &epollPollset{epfd: epfd, fds: make(map[uintptr]struct{})}, nil
}

// Add starts watching fd for readability and peer hangup.
func (p *epollPollset) Add(fd uintptr) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return api.ErrPollsetClosed
	}
	if _, ok := p.fds[fd]; ok {
		return nil
	}
	ev := &unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLRDHUP,
		Fd:     int32(fd),
	}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, int(fd), ev); err != nil {
		return fmt.Errorf("epoll ctl add %d: %w", fd, err)
	}
	p.fds[fd] = struct{}{}
	return nil
}

// Remove stops watching fd.
func (p *epollPollset) Remove(fd uintptr) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return api.ErrPollsetClosed
	}
	if _, ok := p.fds[fd]; !ok {
		return nil
	}
	delete(p.fds, fd)
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, int(fd), nil); err != nil {
		return fmt.Errorf("epoll ctl del %d: %w", fd, err)
	}
	return nil
}

// Poll waits for readiness. A signal interruption returns no descriptors.
func (p *epollPollset) Poll(timeoutMs int) ([]uintptr, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, api.ErrPollsetClosed
	}
	epfd := p.epfd
	p.mu.Unlock()

	if timeoutMs < 0 {
		timeoutMs = -1
	}
	var events [maxPollEvents]unix.EpollEvent
	n, err := unix.EpollWait(epfd, events[:], timeoutMs)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil, nil
		}
		return nil, fmt.Errorf("epoll wait: %w", err)
	}
	ready := make([]uintptr, 0, n)
	for i := 0; i < n; i++ {
		ready = append(ready, uintptr(events[i].Fd))
	}
	return ready, nil
}

// Close releases the epoll descriptor.
func (p *epollPollset) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return unix.Close(p.epfd)
}
