// File: core/concurrency/closure_list.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CallCombinerClosureList collects closures produced while the caller holds a
// call combiner and schedules them together, preserving insertion order.

package concurrency

// CallCombinerClosure is one entry of a CallCombinerClosureList.
type CallCombinerClosure struct {
	Closure *Closure
	Err     error
	Reason  string
}

// CallCombinerClosureList is built by a single producer and consumed once.
type CallCombinerClosureList struct {
	closures []CallCombinerClosure
}

// Add appends c with its error and reason.
func (l *CallCombinerClosureList) Add(c *Closure, err error, reason string) {
	l.closures = append(l.closures, CallCombinerClosure{Closure: c, Err: err, Reason: reason})
}

// Len returns the number of entries.
func (l *CallCombinerClosureList) Len() int { return len(l.closures) }

// Entries returns a copy of the entries in insertion order.
func (l *CallCombinerClosureList) Entries() []CallCombinerClosure {
	out := make([]CallCombinerClosure, len(l.closures))
	copy(out, l.closures)
	return out
}

// RunClosures schedules every entry and empties the list. The caller must
// hold cc. The first entry inherits the caller's hold and runs on ec; the rest
// are started on cc, so each runs after its predecessor stops the combiner.
// An empty list releases the combiner.
func (l *CallCombinerClosureList) RunClosures(ec *ExecCtx, cc *CallCombiner) {
	if len(l.closures) == 0 {
		cc.Stop(ec, "no closures to schedule")
		return
	}
	for _, c := range l.closures[1:] {
		cc.Start(ec, c.Closure, c.Err, c.Reason)
	}
	first := l.closures[0]
	ec.Run(first.Closure, first.Err)
	l.closures = nil
}

// RunClosuresWithoutYielding starts every entry on cc and empties the list.
// Unlike RunClosures the caller keeps its own hold on the combiner.
func (l *CallCombinerClosureList) RunClosuresWithoutYielding(ec *ExecCtx, cc *CallCombiner) {
	for _, c := range l.closures {
		cc.Start(ec, c.Closure, c.Err, c.Reason)
	}
	l.closures = nil
}
