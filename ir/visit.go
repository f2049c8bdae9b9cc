package ir

import "fmt"

// Visitor handles every IR node kind.
//
// Visit calls exactly one method per node. Implementations recurse by
// calling Visit on sub-nodes themselves.
type Visitor[T any] interface {
	VisitEmpty(n *Empty) T
	VisitLiteral(n *Literal) T
	VisitClass(n *Class) T
	VisitLook(n *Look) T
	VisitRepetition(n *Repetition) T
	VisitCapture(n *Capture) T
	VisitConcat(n *Concat) T
	VisitAlternation(n *Alternation) T
}

// Visit dispatches n to the matching Visitor method.
//
// Example:
//
//	type counter struct{}
//	func (counter) VisitLiteral(n *ir.Literal) int { return 1 }
//	// ... one method per kind ...
//	total := ir.Visit[int](node, counter{})
func Visit[T any](n Node, v Visitor[T]) T {
	switch n := n.(type) {
	case *Empty:
		return v.VisitEmpty(n)
	case *Literal:
		return v.VisitLiteral(n)
	case *Class:
		return v.VisitClass(n)
	case *Look:
		return v.VisitLook(n)
	case *Repetition:
		return v.VisitRepetition(n)
	case *Capture:
		return v.VisitCapture(n)
	case *Concat:
		return v.VisitConcat(n)
	case *Alternation:
		return v.VisitAlternation(n)
	default:
		// Node is sealed, so this is unreachable outside of nil.
		panic(fmt.Sprintf("ir: Visit on unknown node %T", n))
	}
}

// Subs returns the direct sub-nodes of n.
func Subs(n Node) []Node {
	switch n := n.(type) {
	case *Repetition:
		return []Node{n.Sub}
	case *Capture:
		return []Node{n.Sub}
	case *Concat:
		return n.Subs
	case *Alternation:
		return n.Subs
	default:
		return nil
	}
}
