package emit

import (
	"bytes"

	"github.com/coregx/coregen/code"
	"github.com/coregx/coregen/ir"
	"github.com/coregx/coregen/literal"
)

// VisitRepetition emits x{min,max}.
//
// For an unanchored predicate x{min,max} and x{min} agree: any match of
// the former starts with min copies of x, which already form a match of
// the latter. So the upper bound and greediness never matter, min == 0
// always matches, and min == 1 is x itself.
func (e *emitter) VisitRepetition(n *ir.Repetition) result {
	switch n.Min {
	case 0:
		return constant(true)
	case 1:
		return e.emit(n.Sub)
	}

	sub := unwrapCaptures(n.Sub)
	if lit, ok := sub.(*ir.Literal); ok {
		return e.emit(ir.NewLiteral(bytes.Repeat(lit.Bytes, n.Min)))
	}
	return e.automaton(ir.NewRepetition(n.Min, n.Min, n.Greedy, sub))
}

// VisitAlternation ORs the branches. Each branch is emitted through the
// dispatcher into its own helper, so an unmatchable branch drops out and a
// branch that always matches settles the whole alternation.
//
// A literal branch that contains another literal branch can only match
// where that one does too, so it is pruned before emission.
func (e *emitter) VisitAlternation(n *ir.Alternation) result {
	var calls []code.Expr
	for _, sub := range pruneLiteralBranches(n.Subs) {
		r := e.emit(sub)
		if r.err != nil {
			return r
		}
		switch r.strategy {
		case UseConstTrue:
			return constant(true)
		case UseConstFalse:
			continue
		}
		name := e.predicate("alt", sub, r.body)
		calls = append(calls, &code.Call{Func: name, Args: []code.Expr{code.V(input)}})
	}
	if len(calls) == 0 {
		return constant(false)
	}
	return result{body: []code.Stmt{code.Ret(code.Or(calls...))}, strategy: UseAlternation}
}

// pruneLiteralBranches drops literal branches made redundant by a shorter
// literal branch, keeping the order of everything else.
func pruneLiteralBranches(subs []ir.Node) []ir.Node {
	var (
		lits  [][]byte
		index []int
	)
	for i, sub := range subs {
		if lit, ok := unwrapCaptures(sub).(*ir.Literal); ok {
			lits = append(lits, lit.Bytes)
			index = append(index, i)
		}
	}
	if len(lits) < 2 {
		return subs
	}

	drop := make(map[int]bool, len(lits))
	for _, i := range index {
		drop[i] = true
	}
	for _, k := range literal.Prune(lits) {
		delete(drop, index[k])
	}

	out := make([]ir.Node, 0, len(subs)-len(drop))
	for i, sub := range subs {
		if !drop[i] {
			out = append(out, sub)
		}
	}
	return out
}

// VisitConcat emits a sequence. Capture groups around the parts are
// dropped first, which may let adjacent literals fuse (a(b)c is abc) or
// reduce the sequence to one node that has a direct rule. Anything else
// needs the automaton.
func (e *emitter) VisitConcat(n *ir.Concat) result {
	subs := make([]ir.Node, len(n.Subs))
	changed := false
	for i, sub := range n.Subs {
		subs[i] = unwrapCaptures(sub)
		changed = changed || subs[i] != sub
	}
	if changed {
		if fused := ir.NewConcat(subs); fused.Kind() != ir.KindConcat {
			return e.emit(fused)
		}
	}
	return e.automaton(n)
}
