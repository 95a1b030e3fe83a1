// Package reconcile keeps a client's view of the custom events consistent
// with the server under optimistic updates.
//
// The view is the last confirmed collection with every pending mutation
// replayed over it in order. Confirming a mutation folds it into the
// confirmed collection; rejecting one drops it, which rolls back exactly
// its effect and nothing else.
package reconcile

import (
	"github.com/okian/agenda/internal/domain/model"
)

// State is the client view. It is a value; Reduce never mutates its input.
type State struct {
	// Confirmed is the collection as last acknowledged by the server.
	Confirmed []model.CustomEvent
	// Pending holds applied but unacknowledged mutations in apply order.
	Pending []model.Mutation
	// Events is Confirmed with Pending replayed, the list to render.
	Events []model.CustomEvent
}

// Action is an input to Reduce.
type Action interface {
	action()
}

// Loaded replaces the confirmed collection with a fresh server read.
// Pending mutations stay applied on top of it.
type Loaded struct {
	Events []model.CustomEvent
}

// Applied records an optimistic mutation.
type Applied struct {
	Mutation model.Mutation
}

// Confirmed acknowledges a pending mutation. Echo, when set, is the record
// the server stored and replaces the optimistic one.
type Confirmed struct {
	MutationID string
	Echo       *model.CustomEvent
}

// Rejected drops a pending mutation and rolls back its effect.
type Rejected struct {
	MutationID string
	Err        error
}

func (Loaded) action()    {}
func (Applied) action()   {}
func (Confirmed) action() {}
func (Rejected) action()  {}

// Reduce returns the state after a. Unknown mutation ids are ignored.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Loaded:
		s.Confirmed = clone(a.Events)
	case Applied:
		s.Pending = append(clonePending(s.Pending), a.Mutation)
	case Confirmed:
		idx := pendingIndex(s.Pending, a.MutationID)
		if idx < 0 {
			return s
		}
		m := s.Pending[idx]
		s.Confirmed = apply(clone(s.Confirmed), m, a.Echo)
		s.Pending = removePending(s.Pending, idx)
	case Rejected:
		idx := pendingIndex(s.Pending, a.MutationID)
		if idx < 0 {
			return s
		}
		s.Pending = removePending(s.Pending, idx)
	default:
		return s
	}
	s.Events = replay(s.Confirmed, s.Pending)
	return s
}

// IsPending reports whether the mutation is still awaiting the server.
func (s State) IsPending(mutationID string) bool {
	return pendingIndex(s.Pending, mutationID) >= 0
}

func replay(base []model.CustomEvent, pending []model.Mutation) []model.CustomEvent {
	out := clone(base)
	for _, m := range pending {
		out = apply(out, m, nil)
	}
	return out
}

// apply mutates events in place where it can and returns the result.
func apply(events []model.CustomEvent, m model.Mutation, echo *model.CustomEvent) []model.CustomEvent {
	idx := indexOf(events, m.EventID)
	switch m.Kind {
	case model.MutationCreate:
		ev := m.Event
		ev.ID = m.EventID
		if echo != nil {
			ev = *echo
		}
		if idx >= 0 {
			events[idx] = ev
			return events
		}
		return append(events, ev)
	case model.MutationUpdate:
		if idx < 0 {
			return events
		}
		if echo != nil {
			events[idx] = *echo
		} else {
			events[idx] = m.Patch.Apply(events[idx])
		}
		return events
	case model.MutationDelete:
		if idx < 0 {
			return events
		}
		return append(events[:idx], events[idx+1:]...)
	}
	return events
}

func indexOf(events []model.CustomEvent, id string) int {
	for i := range events {
		if events[i].ID == id {
			return i
		}
	}
	return -1
}

func pendingIndex(pending []model.Mutation, id string) int {
	for i := range pending {
		if pending[i].ID == id {
			return i
		}
	}
	return -1
}

func removePending(pending []model.Mutation, idx int) []model.Mutation {
	out := make([]model.Mutation, 0, len(pending)-1)
	out = append(out, pending[:idx]...)
	return append(out, pending[idx+1:]...)
}

func clone(events []model.CustomEvent) []model.CustomEvent {
	out := make([]model.CustomEvent, len(events))
	copy(out, events)
	return out
}

func clonePending(pending []model.Mutation) []model.Mutation {
	out := make([]model.Mutation, len(pending), len(pending)+1)
	copy(out, pending)
	return out
}
