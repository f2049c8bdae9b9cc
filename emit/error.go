package emit

import (
	"fmt"

	"github.com/coregx/coregen/ir"
	"github.com/coregx/coregen/nfa"
)

// Sentinel errors. They are shared with package nfa, so errors.Is works
// whichever layer rejected the pattern.
var (
	// ErrUnsupported reports a construct without a code generation rule.
	ErrUnsupported = nfa.ErrUnsupported

	// ErrTooComplex reports a pattern that exceeds a Config limit.
	ErrTooComplex = nfa.ErrTooComplex
)

// Error reports a subtree that could not be emitted. No code is produced
// for a pattern once an Error occurs.
type Error struct {
	// Node is the subtree that failed, nil if the input itself was nil.
	Node ir.Node
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Node == nil {
		return fmt.Sprintf("emit: %v", e.Err)
	}
	return fmt.Sprintf("emit %s: %v", e.Node.Kind(), e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func errUnsupportedLook(k ir.LookKind) error {
	return fmt.Errorf("%w: assertion %s", ErrUnsupported, k)
}
