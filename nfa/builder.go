package nfa

import (
	"fmt"

	"github.com/coregx/coregen/internal/conv"
	"github.com/coregx/coregen/ir"
)

// Builder constructs NFAs incrementally using a low-level API.
// This provides full control over NFA construction and is used by the Compiler.
type Builder struct {
	states []State
	start  StateID
	match  StateID
}

// NewBuilder creates an empty NFA builder.
func NewBuilder() *Builder {
	return &Builder{
		states: make([]State, 0, 16),
		start:  InvalidState,
		match:  InvalidState,
	}
}

func (b *Builder) add(s State) StateID {
	id := StateID(conv.IntToUint32(len(b.states)))
	s.id = id
	b.states = append(b.states, s)
	return id
}

// AddMatch adds the match (accepting) state and returns its ID.
// A builder holds at most one match state; later calls return the first.
func (b *Builder) AddMatch() StateID {
	if b.match != InvalidState {
		return b.match
	}
	b.match = b.add(State{kind: StateMatch})
	return b.match
}

// AddRange adds a state that consumes one rune in ranges.
// The ranges slice is copied to avoid aliasing issues.
func (b *Builder) AddRange(ranges []ir.Range, next StateID) StateID {
	rs := make([]ir.Range, len(ranges))
	copy(rs, ranges)
	return b.add(State{kind: StateRange, ranges: rs, next: next})
}

// AddSplit adds a state with epsilon transitions to two states.
func (b *Builder) AddSplit(left, right StateID) StateID {
	return b.add(State{kind: StateSplit, left: left, right: right})
}

// AddEpsilon adds a state with a single epsilon transition (no input consumed)
func (b *Builder) AddEpsilon(next StateID) StateID {
	return b.add(State{kind: StateEpsilon, next: next})
}

// AddLook adds a zero-width assertion state.
// next is the state to transition to if the assertion succeeds.
func (b *Builder) AddLook(look ir.LookKind, next StateID) StateID {
	return b.add(State{kind: StateLook, look: look, next: next})
}

// AddFail adds a dead state with no transitions
func (b *Builder) AddFail() StateID {
	return b.add(State{kind: StateFail})
}

// Patch updates a state's target. This is used during compilation to handle
// forward references (e.g., loops, alternations).
// This only works for states with a single 'next' target (Range, Epsilon, Look).
func (b *Builder) Patch(stateID, target StateID) error {
	if int(stateID) >= len(b.states) {
		return &BuildError{
			Message: "state ID out of bounds",
			StateID: stateID,
		}
	}

	s := &b.states[stateID]
	switch s.kind {
	case StateRange, StateEpsilon, StateLook:
		s.next = target
		return nil
	default:
		return &BuildError{
			Message: fmt.Sprintf("cannot patch state of kind %s", s.kind),
			StateID: stateID,
		}
	}
}

// PatchSplit updates the left and right targets of a Split state
func (b *Builder) PatchSplit(stateID StateID, left, right StateID) error {
	if int(stateID) >= len(b.states) {
		return &BuildError{
			Message: "state ID out of bounds",
			StateID: stateID,
		}
	}

	s := &b.states[stateID]
	if s.kind != StateSplit {
		return &BuildError{
			Message: fmt.Sprintf("expected Split state, got %s", s.kind),
			StateID: stateID,
		}
	}

	s.left = left
	s.right = right
	return nil
}

// SetStart sets the starting state for the NFA
func (b *Builder) SetStart(start StateID) {
	b.start = start
}

// States returns the current number of states
func (b *Builder) States() int {
	return len(b.states)
}

// Validate checks that the start and match states are set and that every
// state reachable from the start points at existing states. Unreachable
// states may dangle; Build drops them.
func (b *Builder) Validate() error {
	if b.start == InvalidState {
		return &BuildError{Message: "start state not set"}
	}
	if int(b.start) >= len(b.states) {
		return &BuildError{
			Message: "start state out of bounds",
			StateID: b.start,
		}
	}
	if b.match == InvalidState {
		return &BuildError{Message: "match state not set"}
	}

	check := func(id, target StateID, what string) error {
		if target == InvalidState || int(target) >= len(b.states) {
			return &BuildError{
				Message: fmt.Sprintf("invalid %s state %d", what, target),
				StateID: id,
			}
		}
		return nil
	}

	// Only states reachable from the start must be complete.
	seen := make([]bool, len(b.states))
	stack := []StateID{b.start}
	seen[b.start] = true
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s := &b.states[id]
		var err error
		var targets []StateID
		switch s.kind {
		case StateRange, StateEpsilon, StateLook:
			err = check(s.id, s.next, "next")
			targets = []StateID{s.next}
		case StateSplit:
			if err = check(s.id, s.left, "left"); err == nil {
				err = check(s.id, s.right, "right")
			}
			targets = []StateID{s.left, s.right}
		}
		if err != nil {
			return err
		}
		for _, t := range targets {
			if !seen[t] {
				seen[t] = true
				stack = append(stack, t)
			}
		}
	}

	return nil
}

// Build validates the states, removes epsilon states and states that
// cannot be reached from the start, and returns the constructed NFA.
func (b *Builder) Build(opts ...BuildOption) (*NFA, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	nfa := compact(b.states, b.start, b.match)

	// Apply user options
	for _, opt := range opts {
		opt(nfa)
	}

	return nfa, nil
}

// BuildOption is a functional option for configuring the built NFA
type BuildOption func(*NFA)

// WithAnchored sets whether every match must start at position 0
func WithAnchored(anchored bool) BuildOption {
	return func(n *NFA) {
		n.anchored = anchored
	}
}
