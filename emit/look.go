package emit

import (
	"github.com/coregx/coregen/code"
	"github.com/coregx/coregen/ir"
)

// VisitLook emits a lone assertion.
//
// Text and line anchors always hold somewhere: \A and ^ at offset 0, \z
// and $ at the end. Word assertions depend on the input and are evaluated
// at every rune boundary, the end of the input included:
//
//	for at := range input {
//		if wordBefore(input, at) != wordAfter(input, at) {
//			return true
//		}
//	}
//	return wordBefore(input, len(input)) != wordAfter(input, len(input))
func (e *emitter) VisitLook(n *ir.Look) result {
	switch n.Look {
	case ir.LookWordASCII, ir.LookWordASCIINegate:
		end := &code.Len{X: code.V(input)}
		return result{
			body: []code.Stmt{
				&code.RangeString{Index: "at", Over: code.V(input), Body: []code.Stmt{
					&code.If{
						Cond: e.assert(n.Look, code.V("at")),
						Then: []code.Stmt{code.Ret(code.True)},
					},
				}},
				code.Ret(e.assert(n.Look, end)),
			},
			strategy: UseWordScan,
		}
	case ir.LookStart, ir.LookEnd, ir.LookStartLF, ir.LookEndLF, ir.LookStartCRLF, ir.LookEndCRLF:
		return constant(true)
	}
	return failed(n, errUnsupportedLook(n.Look))
}

// assert returns the condition under which look holds at byte offset at
// of the input. It mirrors nfa.Assert.
func (e *emitter) assert(look ir.LookKind, at code.Expr) code.Expr {
	in := code.V(input)
	length := &code.Len{X: in}
	atStart := code.Op(at, "==", code.I(0))
	atEnd := code.Op(at, "==", length)
	before := func(b byte) code.Expr {
		return code.Op(&code.Index{X: in, I: code.Op(at, "-", code.I(1))}, "==", &code.ByteLit{V: b})
	}
	after := func(b byte) code.Expr {
		return code.Op(&code.Index{X: in, I: at}, "==", &code.ByteLit{V: b})
	}
	notAfter := func(b byte) code.Expr {
		return code.Op(&code.Index{X: in, I: at}, "!=", &code.ByteLit{V: b})
	}
	notBefore := func(b byte) code.Expr {
		return code.Op(&code.Index{X: in, I: code.Op(at, "-", code.I(1))}, "!=", &code.ByteLit{V: b})
	}

	switch look {
	case ir.LookStart:
		return atStart
	case ir.LookEnd:
		return atEnd
	case ir.LookStartLF:
		return code.Or(atStart, before('\n'))
	case ir.LookEndLF:
		return code.Or(atEnd, after('\n'))
	case ir.LookStartCRLF:
		// Never between '\r' and '\n'.
		return code.Or(atStart, before('\n'),
			code.And(before('\r'), code.Or(atEnd, notAfter('\n'))))
	case ir.LookEndCRLF:
		return code.Or(atEnd, after('\r'),
			code.And(after('\n'), code.Or(atStart, notBefore('\r'))))
	case ir.LookWordASCII:
		return code.Op(e.wordBefore(at), "!=", e.wordAfter(at))
	case ir.LookWordASCIINegate:
		return code.Op(e.wordBefore(at), "==", e.wordAfter(at))
	}
	return code.False
}

func (e *emitter) wordBefore(at code.Expr) code.Expr {
	name := e.helper("wordBefore", func() *code.Func {
		isWord := e.isWordByte()
		return &code.Func{
			Name:   "wordBefore",
			Doc:    "wordBefore reports whether the byte before offset at is an ASCII word byte.",
			Params: []code.Param{{Name: input, Type: code.TypeString}, {Name: "at", Type: code.TypeInt}},
			Result: code.TypeBool,
			Body: []code.Stmt{
				code.Ret(code.And(
					code.Op(code.V("at"), ">", code.I(0)),
					&code.Call{Func: isWord, Args: []code.Expr{
						&code.Index{X: code.V(input), I: code.Op(code.V("at"), "-", code.I(1))},
					}},
				)),
			},
		}
	})
	return &code.Call{Func: name, Args: []code.Expr{code.V(input), at}}
}

func (e *emitter) wordAfter(at code.Expr) code.Expr {
	name := e.helper("wordAfter", func() *code.Func {
		isWord := e.isWordByte()
		return &code.Func{
			Name:   "wordAfter",
			Doc:    "wordAfter reports whether the byte at offset at is an ASCII word byte.",
			Params: []code.Param{{Name: input, Type: code.TypeString}, {Name: "at", Type: code.TypeInt}},
			Result: code.TypeBool,
			Body: []code.Stmt{
				code.Ret(code.And(
					code.Op(code.V("at"), "<", &code.Len{X: code.V(input)}),
					&code.Call{Func: isWord, Args: []code.Expr{&code.Index{X: code.V(input), I: code.V("at")}}},
				)),
			},
		}
	})
	return &code.Call{Func: name, Args: []code.Expr{code.V(input), at}}
}

// isWordByte returns the helper testing [0-9A-Za-z_]. Bytes of multi-byte
// runes are never word bytes, which matches regexp's ASCII \b.
func (e *emitter) isWordByte() string {
	return e.helper("isWordByte", func() *code.Func {
		return &code.Func{
			Name:   "isWordByte",
			Params: []code.Param{{Name: "b", Type: code.TypeByte}},
			Result: code.TypeBool,
			Body: []code.Stmt{
				code.Ret(rangesTest(code.V("b"), code.Byte, []ir.Range{
					{Lo: '0', Hi: '9'}, {Lo: 'A', Hi: 'Z'}, {Lo: '_', Hi: '_'}, {Lo: 'a', Hi: 'z'},
				})),
			},
		}
	})
}
