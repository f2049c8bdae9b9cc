// Package emit translates IR trees into matching code.
//
// Compile is the IR dispatcher: it first runs the static short-circuit
// analysis (a tree with no minimum length can never match and becomes a
// constant-false predicate, at any nesting level), then dispatches
// exhaustively on the node kind through ir.Visit. Every node kind has a
// rule; composite trees that no direct rule covers are compiled to a
// Thompson NFA and emitted as a specialized simulation.
//
// The emitted predicate decides unanchored search: it reports whether the
// pattern matches anywhere in the input, with the semantics of Go's regexp
// package. Greediness and capture groups do not change that answer and are
// ignored.
package emit

import (
	"fmt"
	"strconv"

	"github.com/coregx/coregen/code"
	"github.com/coregx/coregen/ir"
)

// Program is the result of compiling one pattern.
type Program struct {
	// Unit holds the entry predicate and its helpers. Unit.Name and
	// Unit.Doc are left for the caller to fill in.
	Unit *code.Unit

	// Strategy is the shape chosen for the root of the tree.
	Strategy Strategy

	// States is the total number of NFA states emitted, zero if no
	// automaton was needed.
	States int
}

// Compile emits the predicate for node.
//
// Example:
//
//	node, _ := ir.Parse(`foo|bar`, ir.DefaultParseOptions())
//	prog, err := emit.Compile(node, emit.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	ok, _ := code.Eval(prog.Unit, "xbar") // true
func Compile(node ir.Node, cfg Config) (*Program, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if node == nil {
		return nil, &Error{Err: fmt.Errorf("%w: nil node", ErrUnsupported)}
	}

	e := &emitter{
		cfg:     cfg,
		counter: make(map[string]int),
		shared:  make(map[string]string),
	}
	r := e.emit(node)
	if r.err != nil {
		return nil, r.err
	}

	return &Program{
		Unit: &code.Unit{
			Entry: &code.Func{
				Name:   "IsMatch",
				Params: inputParams(),
				Result: code.TypeBool,
				Body:   r.body,
			},
			Funcs: e.funcs,
		},
		Strategy: r.strategy,
		States:   e.states,
	}, nil
}

// input is the name of the string parameter of every predicate body.
const input = "input"

func inputParams() []code.Param {
	return []code.Param{{Name: input, Type: code.TypeString}}
}

// result is the emitted body of a func(input string) bool.
type result struct {
	body     []code.Stmt
	strategy Strategy
	err      error
}

func constant(v bool) result {
	s := UseConstFalse
	if v {
		s = UseConstTrue
	}
	return result{body: []code.Stmt{code.Ret(&code.BoolLit{V: v})}, strategy: s}
}

func failed(n ir.Node, err error) result {
	return result{err: &Error{Node: n, Err: err}}
}

// emitter carries the helper functions shared by one unit.
type emitter struct {
	cfg     Config
	depth   int
	funcs   []*code.Func
	counter map[string]int

	// shared maps a helper key to the name of an already emitted helper.
	shared map[string]string

	states int
}

// emit is the dispatcher. Every sub-node is emitted through it, so the
// short-circuit rules apply at every level.
func (e *emitter) emit(n ir.Node) result {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.cfg.MaxDepth {
		return failed(n, fmt.Errorf("%w: nesting deeper than %d", ErrTooComplex, e.cfg.MaxDepth))
	}

	props := n.Properties()
	minLen, ok := props.MinimumLen()
	if !ok {
		return constant(false)
	}
	if minLen == 0 && props.LookSet().IsEmpty() {
		// Without assertions, a zero minimum length means the empty string
		// is in the language, and it occurs in every input.
		return constant(true)
	}
	return ir.Visit[result](n, e)
}

// fresh returns a new helper name built from prefix.
func (e *emitter) fresh(prefix string) string {
	e.counter[prefix]++
	return prefix + strconv.Itoa(e.counter[prefix])
}

func (e *emitter) addFunc(f *code.Func) {
	e.funcs = append(e.funcs, f)
}

// helper returns the name of the helper registered under key, building
// it with build on first use.
func (e *emitter) helper(key string, build func() *code.Func) string {
	if name, ok := e.shared[key]; ok {
		return name
	}
	f := build()
	e.shared[key] = f.Name
	e.addFunc(f)
	return f.Name
}

// predicate wraps a body as a func(input string) bool helper.
func (e *emitter) predicate(prefix string, n ir.Node, body []code.Stmt) string {
	name := e.fresh(prefix)
	e.addFunc(&code.Func{
		Name:   name,
		Doc:    fmt.Sprintf("%s reports whether input contains a match of %s.", name, describe(n)),
		Params: inputParams(),
		Result: code.TypeBool,
		Body:   body,
	})
	return name
}

// describe returns a short printed form of n for helper comments.
func describe(n ir.Node) string {
	const limit = 72
	s := []rune(fmt.Sprint(n))
	if len(s) > limit {
		return string(s[:limit]) + "..."
	}
	return string(s)
}

// unwrapCaptures strips capture groups around n; they never change
// whether a match exists.
func unwrapCaptures(n ir.Node) ir.Node {
	for {
		c, ok := n.(*ir.Capture)
		if !ok {
			return n
		}
		n = c.Sub
	}
}

// VisitEmpty matches every input, including the empty one.
func (e *emitter) VisitEmpty(*ir.Empty) result {
	return constant(true)
}

// VisitCapture emits the group body unchanged.
func (e *emitter) VisitCapture(n *ir.Capture) result {
	return e.emit(n.Sub)
}
