package nfa

import (
	"fmt"
	"strings"

	"github.com/coregx/coregen/ir"
)

// StateID uniquely identifies an NFA state.
type StateID uint32

// InvalidState represents an invalid/uninitialized state ID.
const InvalidState StateID = 0xFFFFFFFF

// StateKind identifies the type of NFA state and determines which fields are valid.
type StateKind uint8

const (
	// StateMatch represents the accepting state.
	StateMatch StateKind = iota

	// StateRange consumes one rune that falls in one of the state's ranges.
	StateRange

	// StateSplit represents an epsilon transition to 2 states.
	// Used for alternation (a|b) and repetition.
	StateSplit

	// StateEpsilon represents an epsilon transition to 1 state.
	StateEpsilon

	// StateLook is a zero-width assertion: it continues to next only when
	// the assertion holds at the current position.
	StateLook

	// StateFail represents a dead state (no valid transitions).
	StateFail
)

// String returns a human-readable representation of the StateKind
func (k StateKind) String() string {
	switch k {
	case StateMatch:
		return "Match"
	case StateRange:
		return "Range"
	case StateSplit:
		return "Split"
	case StateEpsilon:
		return "Epsilon"
	case StateLook:
		return "Look"
	case StateFail:
		return "Fail"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// State represents a single NFA state with its transitions.
// The state's kind determines which fields are valid.
type State struct {
	id   StateID
	kind StateKind

	// For Range: sorted, non-overlapping rune ranges
	ranges []ir.Range
	next   StateID // target state for Range/Epsilon/Look

	// For Split: epsilon transitions to two states
	left, right StateID

	// For Look: the assertion
	look ir.LookKind
}

// ID returns the state's unique identifier
func (s *State) ID() StateID {
	return s.id
}

// Kind returns the state's type
func (s *State) Kind() StateKind {
	return s.kind
}

// IsMatch returns true if this is a match state
func (s *State) IsMatch() bool {
	return s.kind == StateMatch
}

// IsConsuming reports whether the state consumes input.
func (s *State) IsConsuming() bool {
	return s.kind == StateRange
}

// Range returns the rune ranges and target for Range states.
// Returns (nil, InvalidState) for other states.
func (s *State) Range() (ranges []ir.Range, next StateID) {
	if s.kind == StateRange {
		return s.ranges, s.next
	}
	return nil, InvalidState
}

// Split returns the two target states for Split states.
// Returns (InvalidState, InvalidState) for non-Split states.
func (s *State) Split() (left, right StateID) {
	if s.kind == StateSplit {
		return s.left, s.right
	}
	return InvalidState, InvalidState
}

// Epsilon returns the target state for Epsilon states.
// Returns InvalidState for non-Epsilon states.
func (s *State) Epsilon() StateID {
	if s.kind == StateEpsilon {
		return s.next
	}
	return InvalidState
}

// Look returns the assertion and target for Look states.
// Returns (0, InvalidState) for non-Look states.
func (s *State) Look() (look ir.LookKind, next StateID) {
	if s.kind == StateLook {
		return s.look, s.next
	}
	return 0, InvalidState
}

// Matches reports whether r is accepted by a Range state.
func (s *State) Matches(r rune) bool {
	if s.kind != StateRange {
		return false
	}
	for _, rg := range s.ranges {
		if r < rg.Lo {
			return false
		}
		if r <= rg.Hi {
			return true
		}
	}
	return false
}

// String returns a human-readable representation of the state
func (s *State) String() string {
	switch s.kind {
	case StateMatch:
		return fmt.Sprintf("State(%d, Match)", s.id)
	case StateRange:
		parts := make([]string, len(s.ranges))
		for i, r := range s.ranges {
			if r.Lo == r.Hi {
				parts[i] = fmt.Sprintf("%q", r.Lo)
			} else {
				parts[i] = fmt.Sprintf("%q-%q", r.Lo, r.Hi)
			}
		}
		return fmt.Sprintf("State(%d, Range [%s] -> %d)", s.id, strings.Join(parts, " "), s.next)
	case StateSplit:
		return fmt.Sprintf("State(%d, Split -> [%d, %d])", s.id, s.left, s.right)
	case StateEpsilon:
		return fmt.Sprintf("State(%d, Epsilon -> %d)", s.id, s.next)
	case StateLook:
		return fmt.Sprintf("State(%d, Look %s -> %d)", s.id, s.look, s.next)
	case StateFail:
		return fmt.Sprintf("State(%d, Fail)", s.id)
	default:
		return fmt.Sprintf("State(%d, Unknown)", s.id)
	}
}

// NFA represents a compiled Thompson NFA over runes.
// It is the result of compiling an IR tree.
type NFA struct {
	// states contains all NFA states indexed by StateID
	states []State

	// start is the entry state of the compiled pattern.
	start StateID

	// match is the single accepting state.
	match StateID

	// anchored indicates every match must begin at the start of input
	anchored bool
}

// Start returns the starting state ID of the NFA
func (n *NFA) Start() StateID {
	return n.start
}

// Match returns the ID of the accepting state.
func (n *NFA) Match() StateID {
	return n.match
}

// State returns the state with the given ID.
// Returns nil if the ID is invalid.
func (n *NFA) State(id StateID) *State {
	if id == InvalidState || int(id) >= len(n.states) {
		return nil
	}
	return &n.states[id]
}

// IsMatch returns true if the given state is a match state
func (n *NFA) IsMatch(id StateID) bool {
	if s := n.State(id); s != nil {
		return s.IsMatch()
	}
	return false
}

// States returns the total number of states in the NFA
func (n *NFA) States() int {
	return len(n.states)
}

// IsAnchored returns true if every match must start at position 0.
func (n *NFA) IsAnchored() bool {
	return n.anchored
}

// Iter returns an iterator over all states in the NFA
func (n *NFA) Iter() *StateIter {
	return &StateIter{
		nfa: n,
		pos: 0,
	}
}

// StateIter is an iterator over NFA states
type StateIter struct {
	nfa *NFA
	pos int
}

// Next returns the next state in the iteration.
// Returns nil when iteration is complete.
func (it *StateIter) Next() *State {
	if it.pos >= len(it.nfa.states) {
		return nil
	}
	s := &it.nfa.states[it.pos]
	it.pos++
	return s
}

// HasNext returns true if there are more states to iterate
func (it *StateIter) HasNext() bool {
	return it.pos < len(it.nfa.states)
}

// String returns a human-readable representation of the NFA
func (n *NFA) String() string {
	return fmt.Sprintf("NFA{states: %d, start: %d, match: %d, anchored: %v}",
		len(n.states), n.start, n.match, n.anchored)
}
