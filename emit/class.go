package emit

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/coregx/coregen/code"
	"github.com/coregx/coregen/ir"
)

// VisitClass emits a scan for one input element in the class.
//
// Byte classes index the input and test raw bytes; Unicode classes range
// over the input and test decoded runes, so invalid UTF-8 is seen as
// U+FFFD exactly as regexp sees it. A byte class of a single value becomes
// strings.IndexByte. Empty classes never get here: they have no minimum
// length and the dispatcher turns them into constant false.
func (e *emitter) VisitClass(n *ir.Class) result {
	if n.Set == ir.ClassBytes {
		if len(n.Ranges) == 1 && n.Ranges[0].Lo == n.Ranges[0].Hi {
			return result{
				body:     []code.Stmt{code.Ret(indexByteFound(byte(n.Ranges[0].Lo)))},
				strategy: UseByteScan,
			}
		}
		return result{
			body: []code.Stmt{
				&code.For{
					Init: &code.Define{Name: "i", Value: code.I(0)},
					Cond: code.Op(code.V("i"), "<", &code.Len{X: code.V(input)}),
					Post: &code.Inc{Name: "i"},
					Body: []code.Stmt{
						&code.Define{Name: "c", Value: &code.Index{X: code.V(input), I: code.V("i")}},
						&code.If{
							Cond: e.classTest(code.V("c"), code.Byte, n.Ranges),
							Then: []code.Stmt{code.Ret(code.True)},
						},
					},
				},
				code.Ret(code.False),
			},
			strategy: UseByteClass,
		}
	}

	return result{
		body: []code.Stmt{
			&code.RangeString{Value: "c", Over: code.V(input), Body: []code.Stmt{
				&code.If{
					Cond: e.classTest(code.V("c"), code.Rune, n.Ranges),
					Then: []code.Stmt{code.Ret(code.True)},
				},
			}},
			code.Ret(code.False),
		},
		strategy: UseUnicodeClass,
	}
}

// classTest returns a membership test of v in ranges. v has kind code.Byte
// or code.Rune. Up to Config.InlineRanges ranges are tested inline; larger
// classes call a shared helper that bisects the ranges.
func (e *emitter) classTest(v code.Expr, kind code.TypeKind, ranges []ir.Range) code.Expr {
	if len(ranges) <= e.cfg.InlineRanges {
		return rangesTest(v, kind, ranges)
	}
	name := e.helper(classKey(kind, ranges), func() *code.Func {
		name := e.fresh("class")
		return &code.Func{
			Name:   name,
			Doc:    fmt.Sprintf("%s reports whether c is in a class of %d ranges.", name, len(ranges)),
			Params: []code.Param{{Name: "c", Type: code.Type{Kind: kind}}},
			Result: code.TypeBool,
			Body:   e.bisect(code.V("c"), kind, ranges),
		}
	})
	return &code.Call{Func: name, Args: []code.Expr{v}}
}

// bisect emits a binary decision tree over sorted ranges:
//
//	if c < 'm' {
//		return c >= 'a' && c <= 'f' || ...
//	}
//	return ...
func (e *emitter) bisect(v code.Expr, kind code.TypeKind, ranges []ir.Range) []code.Stmt {
	if len(ranges) <= e.cfg.InlineRanges {
		return []code.Stmt{code.Ret(rangesTest(v, kind, ranges))}
	}
	mid := len(ranges) / 2
	return append([]code.Stmt{
		&code.If{
			Cond: code.Op(v, "<", value(kind, ranges[mid].Lo)),
			Then: e.bisect(v, kind, ranges[:mid]),
		},
	}, e.bisect(v, kind, ranges[mid:])...)
}

// rangesTest ORs one comparison per range. Bounds at the edge of the
// value space are dropped.
func rangesTest(v code.Expr, kind code.TypeKind, ranges []ir.Range) code.Expr {
	top := rune(utf8.MaxRune)
	if kind == code.Byte {
		top = 0xFF
	}
	tests := make([]code.Expr, 0, len(ranges))
	for _, r := range ranges {
		switch {
		case r.Lo == r.Hi:
			tests = append(tests, code.Op(v, "==", value(kind, r.Lo)))
		case r.Lo == 0 && r.Hi >= top:
			tests = append(tests, code.True)
		case r.Lo == 0:
			tests = append(tests, code.Op(v, "<=", value(kind, r.Hi)))
		case r.Hi >= top:
			tests = append(tests, code.Op(v, ">=", value(kind, r.Lo)))
		default:
			tests = append(tests, code.And(
				code.Op(v, ">=", value(kind, r.Lo)),
				code.Op(v, "<=", value(kind, r.Hi)),
			))
		}
	}
	return code.Or(tests...)
}

func value(kind code.TypeKind, v rune) code.Expr {
	if kind == code.Byte {
		return &code.ByteLit{V: byte(v)}
	}
	return &code.RuneLit{V: v}
}

// classKey identifies a class helper so equal classes share one.
func classKey(kind code.TypeKind, ranges []ir.Range) string {
	var b strings.Builder
	fmt.Fprintf(&b, "class/%d", kind)
	for _, r := range ranges {
		fmt.Fprintf(&b, "/%x-%x", r.Lo, r.Hi)
	}
	return b.String()
}
