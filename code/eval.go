package code

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Eval runs the unit's entry function on input and returns its result.
//
// Eval interprets the model with Go semantics: strings are byte strings,
// ranging over a string decodes UTF-8 (invalid bytes become U+FFFD with
// width 1), && and || short-circuit. It exists so matchers can be checked
// without compiling generated source. A malformed unit returns an error.
func Eval(u *Unit, input string) (result bool, err error) {
	if u == nil || u.Entry == nil {
		return false, fmt.Errorf("code: unit has no entry function")
	}
	m := &machine{unit: u}
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(evalError)
			if !ok {
				panic(r)
			}
			err = e
		}
	}()
	v := m.call(u.Entry, []any{input})
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("code: entry %s returned %T, not bool", u.Entry.Name, v)
	}
	return b, nil
}

type evalError struct{ msg string }

func (e evalError) Error() string { return "code: " + e.msg }

func fail(format string, args ...any) {
	panic(evalError{msg: fmt.Sprintf(format, args...)})
}

type machine struct {
	unit *Unit
}

// scope is one lexical block. Values are bool, int (also bytes and runes),
// string or *[]bool.
type scope struct {
	vars   map[string]any
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: make(map[string]any), parent: parent}
}

func (s *scope) lookup(name string) (*scope, any) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return sc, v
		}
	}
	fail("undefined variable %q", name)
	return nil, nil
}

func (s *scope) get(name string) any {
	_, v := s.lookup(name)
	return v
}

func (s *scope) set(name string, v any) {
	sc, _ := s.lookup(name)
	sc.vars[name] = v
}

func (m *machine) call(f *Func, args []any) any {
	if len(args) != len(f.Params) {
		fail("%s: got %d arguments, want %d", f.Name, len(args), len(f.Params))
	}
	sc := newScope(nil)
	for i, p := range f.Params {
		sc.vars[p.Name] = args[i]
	}
	v, returned := m.block(f.Body, sc)
	if !returned && f.Result.Kind != Void {
		fail("%s: missing return", f.Name)
	}
	return v
}

// block runs stmts in a new scope. It reports whether a Return ran.
func (m *machine) block(stmts []Stmt, parent *scope) (any, bool) {
	sc := newScope(parent)
	for _, s := range stmts {
		if v, ret := m.stmt(s, sc); ret {
			return v, true
		}
	}
	return nil, false
}

func (m *machine) stmt(s Stmt, sc *scope) (any, bool) {
	switch s := s.(type) {
	case *Return:
		if s.Value == nil {
			return nil, true
		}
		return m.expr(s.Value, sc), true

	case *If:
		if m.boolean(s.Cond, sc) {
			return m.block(s.Then, sc)
		}
		return m.block(s.Else, sc)

	case *For:
		loop := newScope(sc)
		if s.Init != nil {
			m.stmt(s.Init, loop)
		}
		for s.Cond == nil || m.boolean(s.Cond, loop) {
			if v, ret := m.block(s.Body, loop); ret {
				return v, true
			}
			if s.Post != nil {
				m.stmt(s.Post, loop)
			}
		}

	case *RangeString:
		str := m.str(s.Over, sc)
		for i, r := range str {
			body := newScope(sc)
			if s.Index != "" {
				body.vars[s.Index] = i
			}
			if s.Value != "" {
				body.vars[s.Value] = int(r)
			}
			if v, ret := m.block(s.Body, body); ret {
				return v, true
			}
		}

	case *Define:
		sc.vars[s.Name] = m.expr(s.Value, sc)

	case *Assign:
		m.assign(s, sc)

	case *Inc:
		sc.set(s.Name, m.integer(V(s.Name), sc)+1)

	case *DecodeRune:
		r, w := utf8.DecodeRuneInString(m.str(s.Input, sc))
		sc.vars[s.Rune] = int(r)
		sc.vars[s.Width] = w

	case *DeclSets:
		a, b := make([]bool, s.Len), make([]bool, s.Len)
		sc.vars[s.A] = &a
		sc.vars[s.B] = &b

	case *ClearSet:
		clear(*m.set(V(s.Name), sc))

	case *Swap:
		a, b := sc.get(s.A), sc.get(s.B)
		sc.set(s.A, b)
		sc.set(s.B, a)

	case *Switch:
		tag := m.expr(s.Tag, sc)
		for _, c := range s.Cases {
			for _, v := range c.Values {
				if m.expr(v, sc) == tag {
					return m.block(c.Body, sc)
				}
			}
		}

	case *ExprStmt:
		m.expr(s.X, sc)

	default:
		fail("unknown statement %T", s)
	}
	return nil, false
}

func (m *machine) assign(s *Assign, sc *scope) {
	value := m.expr(s.Value, sc)
	switch t := s.Target.(type) {
	case *Var:
		if s.Op != "" {
			value = arith(s.Op, m.integer(t, sc), toInt(value))
		}
		sc.set(t.Name, value)
	case *Index:
		set := *m.set(t.X, sc)
		i := m.integer(t.I, sc)
		if i < 0 || i >= len(set) {
			fail("set index %d out of range [0:%d]", i, len(set))
		}
		b, ok := value.(bool)
		if !ok || s.Op != "" {
			fail("set elements take plain bool assignments")
		}
		set[i] = b
	default:
		fail("cannot assign to %T", s.Target)
	}
}

func (m *machine) expr(e Expr, sc *scope) any {
	switch e := e.(type) {
	case *BoolLit:
		return e.V
	case *IntLit:
		return e.V
	case *ByteLit:
		return int(e.V)
	case *RuneLit:
		return int(e.V)
	case *StrLit:
		return e.V
	case *Var:
		return sc.get(e.Name)
	case *Len:
		return len(m.str(e.X, sc))

	case *Index:
		i := m.integer(e.I, sc)
		switch x := m.expr(e.X, sc).(type) {
		case string:
			if i < 0 || i >= len(x) {
				fail("index %d out of range [0:%d]", i, len(x))
			}
			return int(x[i])
		case *[]bool:
			if i < 0 || i >= len(*x) {
				fail("set index %d out of range [0:%d]", i, len(*x))
			}
			return (*x)[i]
		default:
			fail("cannot index %T", x)
		}

	case *SliceFrom:
		s, lo := m.str(e.X, sc), m.integer(e.Lo, sc)
		if lo < 0 || lo > len(s) {
			fail("slice bounds out of range [%d:%d]", lo, len(s))
		}
		return s[lo:]

	case *SliceRange:
		s, lo, hi := m.str(e.X, sc), m.integer(e.Lo, sc), m.integer(e.Hi, sc)
		if lo < 0 || hi < lo || hi > len(s) {
			fail("slice bounds out of range [%d:%d] with length %d", lo, hi, len(s))
		}
		return s[lo:hi]

	case *Not:
		return !m.boolean(e.X, sc)

	case *Binary:
		return m.binary(e, sc)

	case *Call:
		return m.callExpr(e, sc)
	}
	fail("unknown expression %T", e)
	return nil
}

func (m *machine) binary(e *Binary, sc *scope) any {
	switch e.Op {
	case "&&":
		return m.boolean(e.X, sc) && m.boolean(e.Y, sc)
	case "||":
		return m.boolean(e.X, sc) || m.boolean(e.Y, sc)
	}

	x, y := m.expr(e.X, sc), m.expr(e.Y, sc)
	switch e.Op {
	case "==":
		return x == y
	case "!=":
		return x != y
	case "+", "-":
		return arith(e.Op, toInt(x), toInt(y))
	}

	a, b := toInt(x), toInt(y)
	switch e.Op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	fail("unknown operator %q", e.Op)
	return nil
}

func (m *machine) callExpr(e *Call, sc *scope) any {
	args := make([]any, len(e.Args))
	for i, a := range e.Args {
		args[i] = m.expr(a, sc)
	}

	switch e.Pkg {
	case "":
		f := m.unit.Func(e.Func)
		if f == nil {
			fail("call of undefined function %q", e.Func)
		}
		return m.call(f, args)
	case "strings":
		switch e.Func {
		case "Contains":
			if len(args) == 2 {
				return strings.Contains(toStr(args[0]), toStr(args[1]))
			}
		case "IndexByte":
			if len(args) == 2 {
				return strings.IndexByte(toStr(args[0]), byte(toInt(args[1])))
			}
		}
	}
	fail("unsupported call %s.%s/%d", e.Pkg, e.Func, len(e.Args))
	return nil
}

func (m *machine) boolean(e Expr, sc *scope) bool {
	b, ok := m.expr(e, sc).(bool)
	if !ok {
		fail("expected bool")
	}
	return b
}

func (m *machine) integer(e Expr, sc *scope) int {
	return toInt(m.expr(e, sc))
}

func (m *machine) str(e Expr, sc *scope) string {
	return toStr(m.expr(e, sc))
}

func (m *machine) set(e Expr, sc *scope) *[]bool {
	s, ok := m.expr(e, sc).(*[]bool)
	if !ok {
		fail("expected state set")
	}
	return s
}

func toInt(v any) int {
	i, ok := v.(int)
	if !ok {
		fail("expected integer, got %T", v)
	}
	return i
}

func toStr(v any) string {
	s, ok := v.(string)
	if !ok {
		fail("expected string, got %T", v)
	}
	return s
}

func arith(op string, a, b int) int {
	if op == "-" {
		return a - b
	}
	if op != "+" {
		fail("unknown arithmetic operator %q", op)
	}
	return a + b
}
