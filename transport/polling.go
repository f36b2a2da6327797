// File: transport/polling.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// PollingEntity is exactly one of a pollset, a pollset set, or nothing.
// Engines that do not poll descriptors hand out the empty entity.

package transport

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/momentics/hioload-transport/api"
)

// PollingEntityKind tags a PollingEntity.
type PollingEntityKind uint8

const (
	PollingEntityEmpty PollingEntityKind = iota
	PollingEntityPollset
	PollingEntityPollsetSet
)

func (k PollingEntityKind) String() string {
	switch k {
	case PollingEntityEmpty:
		return "empty"
	case PollingEntityPollset:
		return "pollset"
	case PollingEntityPollsetSet:
		return "pollset_set"
	}
	return fmt.Sprintf("PollingEntityKind(%d)", uint8(k))
}

// PollingEntity is an immutable tagged union.
type PollingEntity struct {
	kind       PollingEntityKind
	pollset    api.Pollset
	pollsetSet api.PollsetSet
}

// EmptyPollingEntity returns the entity carrying nothing.
func EmptyPollingEntity() PollingEntity { return PollingEntity{} }

// PollingEntityFromPollset wraps ps. A nil ps yields the empty entity.
func PollingEntityFromPollset(ps api.Pollset) PollingEntity {
	if ps == nil {
		return PollingEntity{}
	}
	return PollingEntity{kind: PollingEntityPollset, pollset: ps}
}

// PollingEntityFromPollsetSet wraps pss. A nil pss yields the empty entity.
func PollingEntityFromPollsetSet(pss api.PollsetSet) PollingEntity {
	if pss == nil {
		return PollingEntity{}
	}
	return PollingEntity{kind: PollingEntityPollsetSet, pollsetSet: pss}
}

func (e PollingEntity) Kind() PollingEntityKind { return e.kind }

// Pollset returns the pollset, or nil for other kinds.
func (e PollingEntity) Pollset() api.Pollset { return e.pollset }

// PollsetSet returns the pollset set, or nil for other kinds.
func (e PollingEntity) PollsetSet() api.PollsetSet { return e.pollsetSet }

func (e PollingEntity) String() string { return e.kind.String() }

// SetPollingEntity binds s to whatever e carries: t.SetPollset for a
// pollset, t.SetPollsetSet for a pollset set, nothing for the empty entity.
func SetPollingEntity(t Transport, s Stream, e PollingEntity) {
	switch e.kind {
	case PollingEntityPollset:
		t.SetPollset(s, e.pollset)
	case PollingEntityPollsetSet:
		t.SetPollsetSet(s, e.pollsetSet)
	default:
		log().Debug("empty polling entity, nothing to bind", zap.Stringer("kind", e.kind))
	}
}

// DispatchPollingEntity is SetPollingEntity for callers that hold the
// entity by pointer. A nil entity is treated as empty.
func DispatchPollingEntity(t Transport, s Stream, e *PollingEntity) {
	if e == nil {
		SetPollingEntity(t, s, EmptyPollingEntity())
		return
	}
	SetPollingEntity(t, s, *e)
}
