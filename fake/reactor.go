// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"

	"github.com/momentics/hioload-transport/api"
)

// Pollset is an in-memory api.Pollset. Poll returns the descriptors marked
// ready with MarkReady.
type Pollset struct {
	mu     sync.Mutex
	fds    map[uintptr]bool
	ready  []uintptr
	closed bool
}

var _ api.Pollset = (*Pollset)(nil)

func NewPollset() *Pollset { return &Pollset{fds: make(map[uintptr]bool)} }

func (p *Pollset) Add(fd uintptr) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return api.ErrPollsetClosed
	}
	p.fds[fd] = true
	return nil
}

func (p *Pollset) Remove(fd uintptr) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return api.ErrPollsetClosed
	}
	delete(p.fds, fd)
	return nil
}

// MarkReady queues fd for the next Poll if it is watched.
func (p *Pollset) MarkReady(fd uintptr) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fds[fd] {
		p.ready = append(p.ready, fd)
	}
}

func (p *Pollset) Poll(int) ([]uintptr, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, api.ErrPollsetClosed
	}
	out := p.ready
	p.ready = nil
	return out, nil
}

func (p *Pollset) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Watching reports whether fd was added and not removed.
func (p *Pollset) Watching(fd uintptr) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fds[fd]
}

// PollsetSet is a minimal api.PollsetSet fanning descriptors out to its members.
type PollsetSet struct {
	mu       sync.Mutex
	pollsets []api.Pollset
}

var _ api.PollsetSet = (*PollsetSet)(nil)

func NewPollsetSet(members ...api.Pollset) *PollsetSet {
	return &PollsetSet{pollsets: members}
}

func (s *PollsetSet) AddPollset(ps api.Pollset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollsets = append(s.pollsets, ps)
	return nil
}

func (s *PollsetSet) DelPollset(ps api.Pollset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.pollsets {
		if p == ps {
			s.pollsets = append(s.pollsets[:i], s.pollsets[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *PollsetSet) Add(fd uintptr) error {
	for _, p := range s.Pollsets() {
		if err := p.Add(fd); err != nil {
			return err
		}
	}
	return nil
}

func (s *PollsetSet) Remove(fd uintptr) error {
	for _, p := range s.Pollsets() {
		if err := p.Remove(fd); err != nil {
			return err
		}
	}
	return nil
}

func (s *PollsetSet) Pollsets() []api.Pollset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Pollset, len(s.pollsets))
	copy(out, s.pollsets)
	return out
}
