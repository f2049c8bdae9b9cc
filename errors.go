package coregen

import (
	"errors"
	"fmt"
)

// Kind classifies compile errors.
type Kind uint8

const (
	// SyntaxError reports a pattern the parser rejects.
	SyntaxError Kind = iota + 1

	// UnsupportedConstructError reports a construct with no code
	// generation rule.
	UnsupportedConstructError

	// TooComplexError reports a pattern that exceeds a resource limit.
	TooComplexError

	// InvalidNameError reports a unit name that is not a Go identifier.
	InvalidNameError
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case UnsupportedConstructError:
		return "unsupported construct"
	case TooComplexError:
		return "pattern too complex"
	case InvalidNameError:
		return "invalid unit name"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Sentinel errors for errors.Is. Each matches every *Error of its kind.
var (
	ErrSyntax      = errors.New("coregen: syntax error")
	ErrUnsupported = errors.New("coregen: unsupported construct")
	ErrTooComplex  = errors.New("coregen: pattern too complex")
	ErrInvalidName = errors.New("coregen: invalid unit name")
)

func (k Kind) sentinel() error {
	switch k {
	case SyntaxError:
		return ErrSyntax
	case UnsupportedConstructError:
		return ErrUnsupported
	case TooComplexError:
		return ErrTooComplex
	case InvalidNameError:
		return ErrInvalidName
	}
	return nil
}

// Span is a half-open byte range [Start, End) within a pattern.
type Span struct {
	Start, End int
}

// Error is a compile failure. No unit is produced when one occurs.
type Error struct {
	Kind    Kind
	Message string

	// Pattern is the pattern being compiled.
	Pattern string

	// Span locates the problem within Pattern. It covers the whole
	// pattern when the failure is not tied to one expression.
	Span Span

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("coregen: %s in %q at [%d:%d]: %s", e.Kind, e.Pattern, e.Span.Start, e.Span.End, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}
