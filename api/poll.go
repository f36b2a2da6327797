// Package api
// Author: momentics
//
// Polling contracts used by transports to bind stream descriptors to the
// caller's readiness poller.

package api

// Pollset is a set of descriptors watched together by one poller.
type Pollset interface {
	// Add starts watching fd.
	Add(fd uintptr) error

	// Remove stops watching fd.
	Remove(fd uintptr) error

	// Poll waits up to timeoutMs (negative blocks) and returns the ready descriptors.
	Poll(timeoutMs int) ([]uintptr, error)

	// Close releases the poller backend.
	Close() error
}

// PollsetSet groups pollsets so a descriptor added to the set is watched by
// every member.
type PollsetSet interface {
	AddPollset(ps Pollset) error
	DelPollset(ps Pollset) error
	Add(fd uintptr) error
	Remove(fd uintptr) error
	Pollsets() []Pollset
}
