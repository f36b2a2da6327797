// File: reactor/pollset_set.go
// Author: momentics <momentics@gmail.com>
//
// PollsetSet mirrors every registered descriptor into each member pollset.

package reactor

import (
	"errors"
	"sync"

	"github.com/momentics/hioload-transport/api"
)

// PollsetSet is safe for concurrent use.
type PollsetSet struct {
	mu       sync.Mutex
	pollsets []api.Pollset
	fds      map[uintptr]struct{}
}

var _ api.PollsetSet = (*PollsetSet)(nil)

// NewPollsetSet returns an empty set.
func NewPollsetSet() *PollsetSet {
	return &PollsetSet{fds: make(map[uintptr]struct{})}
}

// AddPollset adds ps and registers every known descriptor with it.
func (s *PollsetSet) AddPollset(ps api.Pollset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.pollsets {
		if existing == ps {
			return nil
		}
	}
	var errs []error
	for fd := range s.fds {
		if err := ps.Add(fd); err != nil {
			errs = append(errs, err)
		}
	}
	s.pollsets = append(s.pollsets, ps)
	return errors.Join(errs...)
}

// DelPollset removes ps and unregisters the set's descriptors from it.
func (s *PollsetSet) DelPollset(ps api.Pollset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.pollsets {
		if existing != ps {
			continue
		}
		s.pollsets = append(s.pollsets[:i], s.pollsets[i+1:]...)
		var errs []error
		for fd := range s.fds {
			if err := ps.Remove(fd); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return nil
}

// Add registers fd with every member pollset.
func (s *PollsetSet) Add(fd uintptr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fds[fd] = struct{}{}
	var errs []error
	for _, ps := range s.pollsets {
		if err := ps.Add(fd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Remove unregisters fd from every member pollset.
func (s *PollsetSet) Remove(fd uintptr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fds, fd)
	var errs []error
	for _, ps := range s.pollsets {
		if err := ps.Remove(fd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Pollsets returns a snapshot of the member pollsets.
func (s *PollsetSet) Pollsets() []api.Pollset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Pollset, len(s.pollsets))
	copy(out, s.pollsets)
	return out
}
