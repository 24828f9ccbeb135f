package engine

import (
	"fmt"
	"sync"
)

// FieldState is the scheduling state of a field within one run.
type FieldState string

const (
	StatePending    FieldState = "pending"
	StateResolving  FieldState = "resolving"
	StateResolved   FieldState = "resolved"
	StateUnresolved FieldState = "unresolved"
)

// Terminal reports whether no further transition is possible.
func (s FieldState) Terminal() bool {
	return s == StateResolved || s == StateUnresolved
}

type tracker struct {
	mu     sync.Mutex
	states map[string]FieldState
}

func newTracker(ids []string) *tracker {
	states := make(map[string]FieldState, len(ids))
	for _, id := range ids {
		states[id] = StatePending
	}
	return &tracker{states: states}
}

func (t *tracker) get(id string) FieldState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[id]
}

// move applies a transition, rejecting anything the state machine forbids.
func (t *tracker) move(id string, to FieldState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	from := t.states[id]
	switch {
	case from == StatePending && (to == StateResolving || to == StateUnresolved):
	case from == StateResolving && to.Terminal():
	default:
		return fmt.Errorf("engine: field %s: invalid transition %s -> %s", id, from, to)
	}
	t.states[id] = to
	return nil
}

func (t *tracker) snapshot() map[string]FieldState {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]FieldState, len(t.states))
	for id, state := range t.states {
		out[id] = state
	}
	return out
}
