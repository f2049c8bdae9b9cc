package emit

import (
	"github.com/coregx/coregen/code"
	"github.com/coregx/coregen/ir"
)

// VisitLiteral emits an unanchored search for the literal's bytes.
//
// A one-byte literal becomes strings.IndexByte. Longer literals compare
// every window of the input, checking the first byte before the slice:
//
//	for i := 0; i+3 <= len(input); i++ {
//		if input[i] == 'f' && input[i:i+3] == "foo" {
//			return true
//		}
//	}
//	return false
func (e *emitter) VisitLiteral(n *ir.Literal) result {
	return literalSearch(n.Bytes)
}

func literalSearch(lit []byte) result {
	if len(lit) == 1 {
		return result{
			body:     []code.Stmt{code.Ret(indexByteFound(lit[0]))},
			strategy: UseByteScan,
		}
	}

	i := code.V("i")
	end := code.Op(i, "+", code.I(len(lit)))
	match := code.And(
		code.Op(&code.Index{X: code.V(input), I: i}, "==", &code.ByteLit{V: lit[0]}),
		code.Op(&code.SliceRange{X: code.V(input), Lo: i, Hi: end}, "==", &code.StrLit{V: string(lit)}),
	)
	return result{
		body: []code.Stmt{
			&code.For{
				Init: &code.Define{Name: "i", Value: code.I(0)},
				Cond: code.Op(end, "<=", &code.Len{X: code.V(input)}),
				Post: &code.Inc{Name: "i"},
				Body: []code.Stmt{
					&code.If{Cond: match, Then: []code.Stmt{code.Ret(code.True)}},
				},
			},
			code.Ret(code.False),
		},
		strategy: UseLiteralWindow,
	}
}

// indexByteFound is strings.IndexByte(input, b) >= 0.
func indexByteFound(b byte) code.Expr {
	return code.Op(
		&code.Call{Pkg: "strings", Func: "IndexByte", Args: []code.Expr{code.V(input), &code.ByteLit{V: b}}},
		">=", code.I(0))
}
