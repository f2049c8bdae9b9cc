// Package nfa provides a Thompson NFA (Non-deterministic Finite Automaton)
// over runes, compiled from coregen IR trees.
//
// The code generator walks the compiled states to emit a specialized
// simulation for one pattern. Search runs the same simulation directly
// and serves as its reference.
package nfa

import (
	"errors"
	"fmt"
)

var (
	// ErrTooComplex is returned when a tree nests deeper or needs more
	// states than the compiler allows.
	ErrTooComplex = errors.New("pattern too complex")

	// ErrUnsupported is returned for nodes a rune-level automaton cannot
	// express, such as byte classes above ASCII.
	ErrUnsupported = errors.New("unsupported construct")
)

// CompileError explains why an IR tree did not compile. Node describes the
// offending node when a single one is to blame.
type CompileError struct {
	Node string
	Err  error
}

func (e *CompileError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("nfa: cannot compile %s: %v", e.Node, e.Err)
	}
	return "nfa: " + e.Err.Error()
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// BuildError reports a malformed automaton handed to the Builder.
type BuildError struct {
	Message string
	StateID StateID
}

func (e *BuildError) Error() string {
	if e.StateID != InvalidState && e.StateID != 0 {
		return fmt.Sprintf("nfa: state %d: %s", e.StateID, e.Message)
	}
	return "nfa: " + e.Message
}
