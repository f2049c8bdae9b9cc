package nfa

import (
	"fmt"
	"unicode/utf8"

	"github.com/coregx/coregen/ir"
)

// CompilerConfig configures NFA compilation behavior
type CompilerConfig struct {
	// MaxStates limits the number of states the builder may create before
	// compaction. Exceeding it fails with ErrTooComplex.
	// Default: 4096
	MaxStates int

	// MaxRecursionDepth limits recursion during compilation to prevent stack overflow
	// Default: 1000
	MaxRecursionDepth int
}

// DefaultCompilerConfig returns a compiler configuration with sensible defaults
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{
		MaxStates:         4096,
		MaxRecursionDepth: 1000,
	}
}

// Compiler compiles IR trees into Thompson NFAs over runes.
//
// Literals become chains of single-rune states, classes become one Range
// state, assertions become Look states. Captures are transparent and
// greediness is dropped: the NFA only answers whether a match exists.
type Compiler struct {
	config  CompilerConfig
	builder *Builder
	depth   int // current recursion depth
}

// NewCompiler creates a new NFA compiler with the given configuration
func NewCompiler(config CompilerConfig) *Compiler {
	defaults := DefaultCompilerConfig()
	if config.MaxStates == 0 {
		config.MaxStates = defaults.MaxStates
	}
	if config.MaxRecursionDepth == 0 {
		config.MaxRecursionDepth = defaults.MaxRecursionDepth
	}
	return &Compiler{
		config:  config,
		builder: NewBuilder(),
	}
}

// NewDefaultCompiler creates a new NFA compiler with default configuration
func NewDefaultCompiler() *Compiler {
	return NewCompiler(DefaultCompilerConfig())
}

// Compile compiles an IR tree into an NFA.
//
// Example:
//
//	node, _ := ir.Parse(`a[0-9]+b`, ir.DefaultParseOptions())
//	n, err := nfa.NewDefaultCompiler().Compile(node)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(n.Search("xa12b")) // true
func (c *Compiler) Compile(node ir.Node) (*NFA, error) {
	c.builder = NewBuilder()
	c.depth = 0

	f := c.compile(node)
	if f.err != nil {
		return nil, f.err
	}

	matchID := c.builder.AddMatch()
	if err := c.builder.Patch(f.end, matchID); err != nil {
		return nil, &CompileError{
			Err: fmt.Errorf("failed to connect to match state: %w", err),
		}
	}
	c.builder.SetStart(f.start)

	nfa, err := c.builder.Build(WithAnchored(IsAnchoredStart(node)))
	if err != nil {
		return nil, &CompileError{Err: err}
	}
	return nfa, nil
}

// fragment is a compiled sub-automaton. end is always a patchable state
// (Range, Epsilon or Look) whose target is still unset.
type fragment struct {
	start, end StateID
	err        error
}

func failed(err error) fragment {
	return fragment{start: InvalidState, end: InvalidState, err: err}
}

// compile recursively compiles a node, enforcing depth and size limits.
func (c *Compiler) compile(n ir.Node) fragment {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > c.config.MaxRecursionDepth {
		return failed(&CompileError{
			Err: fmt.Errorf("%w: nesting deeper than %d", ErrTooComplex, c.config.MaxRecursionDepth),
		})
	}

	f := ir.Visit[fragment](n, c)
	if f.err == nil {
		if err := c.checkSize(); err != nil {
			return failed(err)
		}
	}
	return f
}

func (c *Compiler) checkSize() error {
	if c.builder.States() > c.config.MaxStates {
		return &CompileError{
			Err: fmt.Errorf("%w: more than %d NFA states", ErrTooComplex, c.config.MaxStates),
		}
	}
	return nil
}

// connect makes the dangling end state continue at next.
func (c *Compiler) connect(end, next StateID) error {
	return c.builder.Patch(end, next)
}

// VisitEmpty compiles an epsilon transition.
func (c *Compiler) VisitEmpty(*ir.Empty) fragment {
	id := c.builder.AddEpsilon(InvalidState)
	return fragment{start: id, end: id}
}

// VisitLiteral compiles a literal as a chain of single-rune states.
// Bytes that are not valid UTF-8 decode as U+FFFD, like the input does.
func (c *Compiler) VisitLiteral(n *ir.Literal) fragment {
	first, prev := InvalidState, InvalidState
	for b := n.Bytes; len(b) > 0; {
		r, w := utf8.DecodeRune(b)
		b = b[w:]
		id := c.builder.AddRange([]ir.Range{{Lo: r, Hi: r}}, InvalidState)
		if first == InvalidState {
			first = id
		} else if err := c.connect(prev, id); err != nil {
			return failed(err)
		}
		prev = id
	}
	return fragment{start: first, end: prev}
}

// VisitClass compiles a class into a single Range state. A class without
// ranges compiles to a Fail state.
func (c *Compiler) VisitClass(n *ir.Class) fragment {
	if n.IsEmpty() {
		fail := c.builder.AddFail()
		// The fragment still needs a patchable end; it is never reached.
		end := c.builder.AddEpsilon(InvalidState)
		return fragment{start: fail, end: end}
	}
	if n.Set == ir.ClassBytes && n.Ranges[len(n.Ranges)-1].Hi >= utf8.RuneSelf {
		return failed(&CompileError{
			Node: n.String(),
			Err:  fmt.Errorf("%w: byte class reaches above 0x7F", ErrUnsupported),
		})
	}
	id := c.builder.AddRange(n.Ranges, InvalidState)
	return fragment{start: id, end: id}
}

// VisitLook compiles an assertion state.
func (c *Compiler) VisitLook(n *ir.Look) fragment {
	id := c.builder.AddLook(n.Look, InvalidState)
	return fragment{start: id, end: id}
}

// VisitCapture compiles the group body; captures are not recorded.
func (c *Compiler) VisitCapture(n *ir.Capture) fragment {
	return c.compile(n.Sub)
}

// VisitConcat chains the sub-fragments.
func (c *Compiler) VisitConcat(n *ir.Concat) fragment {
	return c.concat(len(n.Subs), func(i int) fragment { return c.compile(n.Subs[i]) })
}

func (c *Compiler) concat(count int, next func(i int) fragment) fragment {
	if count == 0 {
		return c.VisitEmpty(nil)
	}
	f := next(0)
	if f.err != nil {
		return f
	}
	for i := 1; i < count; i++ {
		g := next(i)
		if g.err != nil {
			return g
		}
		if err := c.connect(f.end, g.start); err != nil {
			return failed(err)
		}
		f.end = g.end
	}
	return f
}

// VisitAlternation compiles a chain of splits that join in one epsilon.
func (c *Compiler) VisitAlternation(n *ir.Alternation) fragment {
	starts := make([]StateID, 0, len(n.Subs))
	join := c.builder.AddEpsilon(InvalidState)
	for _, sub := range n.Subs {
		f := c.compile(sub)
		if f.err != nil {
			return f
		}
		if err := c.connect(f.end, join); err != nil {
			return failed(err)
		}
		starts = append(starts, f.start)
	}
	return fragment{start: c.buildSplitChain(starts), end: join}
}

// buildSplitChain builds Split(alt1, Split(alt2, Split(alt3, ...))).
func (c *Compiler) buildSplitChain(targets []StateID) StateID {
	if len(targets) == 1 {
		return targets[0]
	}
	right := c.buildSplitChain(targets[1:])
	return c.builder.AddSplit(targets[0], right)
}

// VisitRepetition expands x{m,n} into m copies followed by n-m nested
// optional copies, and x{m,} into m-1 copies followed by x+.
func (c *Compiler) VisitRepetition(n *ir.Repetition) fragment {
	switch {
	case n.Max == 0:
		return c.VisitEmpty(nil)
	case n.Max == ir.Unbounded && n.Min == 0:
		return c.star(n.Sub)
	case n.Max == ir.Unbounded:
		return c.concat(n.Min, func(i int) fragment {
			if i == n.Min-1 {
				return c.plus(n.Sub)
			}
			return c.compile(n.Sub)
		})
	case n.Min == 0:
		return c.optional(n.Sub, n.Max)
	}

	f := c.concat(n.Min, func(int) fragment { return c.compile(n.Sub) })
	if f.err != nil {
		return f
	}
	if n.Max == n.Min {
		return f
	}
	opt := c.optional(n.Sub, n.Max-n.Min)
	if opt.err != nil {
		return opt
	}
	if err := c.connect(f.end, opt.start); err != nil {
		return failed(err)
	}
	f.end = opt.end
	return f
}

// star compiles x*: split -> [x -> split, end].
func (c *Compiler) star(sub ir.Node) fragment {
	split := c.builder.AddSplit(InvalidState, InvalidState)
	end := c.builder.AddEpsilon(InvalidState)
	f := c.compile(sub)
	if f.err != nil {
		return f
	}
	if err := c.connect(f.end, split); err != nil {
		return failed(err)
	}
	if err := c.builder.PatchSplit(split, f.start, end); err != nil {
		return failed(err)
	}
	return fragment{start: split, end: end}
}

// plus compiles x+: x -> split -> [x, end].
func (c *Compiler) plus(sub ir.Node) fragment {
	f := c.compile(sub)
	if f.err != nil {
		return f
	}
	end := c.builder.AddEpsilon(InvalidState)
	split := c.builder.AddSplit(f.start, end)
	if err := c.connect(f.end, split); err != nil {
		return failed(err)
	}
	return fragment{start: f.start, end: end}
}

// optional compiles (x(x(x)?)?)? with count levels of nesting, so that
// skipped copies never have to be matched first.
func (c *Compiler) optional(sub ir.Node, count int) fragment {
	end := c.builder.AddEpsilon(InvalidState)
	var start StateID = end
	for i := 0; i < count; i++ {
		f := c.compile(sub)
		if f.err != nil {
			return f
		}
		if err := c.connect(f.end, start); err != nil {
			return failed(err)
		}
		start = c.builder.AddSplit(f.start, end)
		if err := c.checkSize(); err != nil {
			return failed(err)
		}
	}
	return fragment{start: start, end: end}
}

// IsAnchoredStart reports whether every match of n must begin at the
// start of the input, i.e. n starts with \A on every path.
func IsAnchoredStart(n ir.Node) bool {
	switch n := n.(type) {
	case *ir.Look:
		return n.Look == ir.LookStart
	case *ir.Capture:
		return IsAnchoredStart(n.Sub)
	case *ir.Concat:
		return IsAnchoredStart(n.Subs[0])
	case *ir.Repetition:
		return n.Min > 0 && IsAnchoredStart(n.Sub)
	case *ir.Alternation:
		for _, sub := range n.Subs {
			if !IsAnchoredStart(sub) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
