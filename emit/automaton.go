package emit

import (
	"fmt"

	"github.com/coregx/coregen/code"
	"github.com/coregx/coregen/internal/conv"
	"github.com/coregx/coregen/ir"
	"github.com/coregx/coregen/nfa"
)

// automaton compiles n to a Thompson NFA and emits its lock-step
// simulation, specialized to the compiled states:
//
//	var curSet, nextSet [N]bool
//	cur, next := &curSet, &nextSet
//	for at := 0; ; {
//		nfa1Add(cur, START, input, at)
//		if cur[MATCH] {
//			return true
//		}
//		if at >= len(input) {
//			return false
//		}
//		r, w := utf8.DecodeRuneInString(input[at:])
//		if cur[3] && r >= 'a' && r <= 'z' {
//			nfa1Add(next, 4, input, at+w)
//		}
//		...
//		cur, next = next, cur
//		clear(next[:])
//		at += w
//	}
//
// nfa1Add follows split and look states from a state; its switch is the
// only place assertions are evaluated. The state sets are fixed-size
// arrays, so the generated code does not allocate.
func (e *emitter) automaton(n ir.Node) result {
	compiler := nfa.NewCompiler(nfa.CompilerConfig{
		MaxStates:         e.cfg.MaxStates,
		MaxRecursionDepth: e.cfg.MaxDepth,
	})
	m, err := compiler.Compile(n)
	if err != nil {
		return failed(n, err)
	}
	e.states += m.States()

	base := e.fresh("nfa")
	add := e.addStates(base+"Add", m)

	in := code.V(input)
	at := code.V("at")
	seed := &code.ExprStmt{X: addCall(add, "cur", int(m.Start()), at)}

	loop := make([]code.Stmt, 0, m.States()+8)
	if m.IsAnchored() {
		loop = append(loop, &code.If{Cond: code.Op(at, "==", code.I(0)), Then: []code.Stmt{seed}})
	} else {
		loop = append(loop, seed)
	}
	loop = append(loop,
		&code.If{
			Cond: &code.Index{X: code.V("cur"), I: code.I(int(m.Match()))},
			Then: []code.Stmt{code.Ret(code.True)},
		},
		&code.If{
			Cond: code.Op(at, ">=", &code.Len{X: in}),
			Then: []code.Stmt{code.Ret(code.False)},
		},
	)

	var steps []code.Stmt
	next := code.Op(at, "+", code.V("w"))
	for it := m.Iter(); it.HasNext(); {
		s := it.Next()
		ranges, target := s.Range()
		if ranges == nil {
			continue
		}
		steps = append(steps, &code.If{
			Cond: code.And(
				&code.Index{X: code.V("cur"), I: code.I(conv.Uint32ToInt(uint32(s.ID())))},
				e.classTest(code.V("r"), code.Rune, ranges),
			),
			Then: []code.Stmt{&code.ExprStmt{X: addCall(add, "next", int(target), next)}},
		})
	}

	runeVar := "r"
	if len(steps) == 0 {
		runeVar = "_"
	}
	loop = append(loop, &code.DecodeRune{Rune: runeVar, Width: "w", Input: &code.SliceFrom{X: in, Lo: at}})
	loop = append(loop, steps...)
	loop = append(loop,
		&code.Swap{A: "cur", B: "next"},
		&code.ClearSet{Name: "next"},
		&code.Assign{Target: at, Op: "+", Value: code.V("w")},
	)

	body := e.prefilter(n)
	body = append(body,
		&code.DeclSets{A: "cur", B: "next", Len: m.States()},
		&code.For{Init: &code.Define{Name: "at", Value: code.I(0)}, Body: loop},
	)
	return result{body: body, strategy: UseNFA}
}

func addCall(add, set string, id int, at code.Expr) *code.Call {
	return &code.Call{Func: add, Args: []code.Expr{code.V(set), code.I(id), code.V(input), at}}
}

// addStates emits the epsilon-closure helper of m and returns its name.
func (e *emitter) addStates(name string, m *nfa.NFA) string {
	set := code.V("set")
	id := code.V("id")
	at := code.V("at")

	var cases []code.Case
	for it := m.Iter(); it.HasNext(); {
		s := it.Next()
		sid := conv.Uint32ToInt(uint32(s.ID()))
		switch s.Kind() {
		case nfa.StateSplit:
			left, right := s.Split()
			cases = append(cases, code.Case{
				Values: []code.Expr{code.I(sid)},
				Body: []code.Stmt{
					&code.ExprStmt{X: addCall(name, "set", int(left), at)},
					&code.ExprStmt{X: addCall(name, "set", int(right), at)},
				},
			})
		case nfa.StateLook:
			look, target := s.Look()
			cases = append(cases, code.Case{
				Values: []code.Expr{code.I(sid)},
				Body: []code.Stmt{
					&code.If{
						Cond: e.assert(look, at),
						Then: []code.Stmt{&code.ExprStmt{X: addCall(name, "set", int(target), at)}},
					},
				},
			})
		}
	}

	body := []code.Stmt{
		&code.If{Cond: &code.Index{X: set, I: id}, Then: []code.Stmt{code.Ret(nil)}},
		&code.Assign{Target: &code.Index{X: set, I: id}, Value: code.True},
	}
	if len(cases) > 0 {
		body = append(body, &code.Switch{Tag: id, Cases: cases})
	}
	e.addFunc(&code.Func{
		Name: name,
		Doc:  fmt.Sprintf("%s adds state id and the states it reaches without consuming input.", name),
		Params: []code.Param{
			{Name: "set", Type: code.SetOf(m.States())},
			{Name: "id", Type: code.TypeInt},
			{Name: input, Type: code.TypeString},
			{Name: "at", Type: code.TypeInt},
		},
		Result: code.TypeVoid,
		Body:   body,
	})
	return name
}
