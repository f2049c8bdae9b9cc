package literal

import (
	"unicode/utf8"

	"github.com/coregx/coregen/ir"
)

// ExtractorConfig configures literal extraction limits.
//
// These limits prevent excessive extraction from complex patterns:
//   - MaxLiterals: prevents memory bloat from alternations like (a|b|c|d|...)
//   - MaxLiteralLen: prevents extracting very long literals
//   - MaxClassSize: prevents expanding large character classes like [a-z]
//
// Example:
//
//	config := literal.ExtractorConfig{
//	    MaxLiterals:   64,
//	    MaxLiteralLen: 64,
//	    MaxClassSize:  10,
//	}
//	extractor := literal.New(config)
type ExtractorConfig struct {
	// MaxLiterals limits the number of literals in one sequence.
	// Default: 64.
	MaxLiterals int

	// MaxLiteralLen limits the length of each extracted literal.
	// Longer literals are truncated and marked incomplete.
	// Default: 64.
	MaxLiteralLen int

	// MaxClassSize limits the size of character classes to expand.
	// Character classes like [abc] are expanded to ["a", "b", "c"].
	// Default: 10.
	MaxClassSize int
}

// DefaultConfig returns the default extractor configuration.
func DefaultConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxLiterals:   64,
		MaxLiteralLen: 64,
		MaxClassSize:  10,
	}
}

// Extractor extracts literal sequences from IR trees.
//
// It walks the tree and extracts:
//   - Prefix literals: one of them starts every match
//   - Suffix literals: one of them ends every match
//   - A required literal: a single byte string contained in every match
//
// Example:
//
//	node, _ := ir.Parse(`(hello|help)\d+`, ir.DefaultParseOptions())
//	extractor := literal.New(literal.DefaultConfig())
//	prefixes := extractor.ExtractPrefixes(node) // "hello0" ... "help9", incomplete
//	prefixes.KeepFirstBytes(3).Minimize()        // "hel", incomplete
//	required := extractor.Required(node)        // "hel"
type Extractor struct {
	config ExtractorConfig
}

// New creates a new Extractor with the given configuration.
func New(config ExtractorConfig) *Extractor {
	return &Extractor{config: config}
}

// maxDepth bounds the recursion on deeply nested trees; deeper subtrees
// yield no information.
const maxDepth = 100

// ExtractPrefixes returns the literals one of which begins every match.
//
// Examples:
//
//	"hello"         → ["hello"] (complete)
//	"(foo|bar)"     → ["foo", "bar"] (complete)
//	"[ab]c"         → ["ac", "bc"] (complete)
//	"hello.*world"  → ["hello"] (incomplete)
//	".*foo"         → infinite
//	"[a-z]+"        → infinite
func (e *Extractor) ExtractPrefixes(n ir.Node) *Seq {
	return e.extract(n, true, 0).informative()
}

// ExtractSuffixes returns the literals one of which ends every match.
//
// Examples:
//
//	"world"         → ["world"] (complete)
//	"hello.*world"  → ["world"] (incomplete)
//	"foo.*"         → infinite
func (e *Extractor) ExtractSuffixes(n ir.Node) *Seq {
	return e.extract(n, false, 0).informative()
}

func (e *Extractor) extract(n ir.Node, prefix bool, depth int) *Seq {
	if depth > maxDepth {
		return Infinite()
	}

	switch n := n.(type) {
	case *ir.Empty, *ir.Look:
		// Zero-width: the empty string is the whole match.
		return NewSeq(NewLiteral(nil, true))

	case *ir.Literal:
		return NewSeq(e.truncate(n.Bytes, true, prefix))

	case *ir.Class:
		return e.expandClass(n)

	case *ir.Capture:
		return e.extract(n.Sub, prefix, depth+1)

	case *ir.Repetition:
		switch {
		case n.Max == 0:
			return NewSeq(NewLiteral(nil, true))
		case n.Min == 0:
			return NewSeq(NewLiteral(nil, false))
		}
		sub := e.extract(n.Sub, prefix, depth+1)
		if n.Min == 1 && n.Max == 1 {
			return sub
		}
		return sub.incomplete()

	case *ir.Concat:
		acc := NewSeq(NewLiteral(nil, true))
		for i := range n.Subs {
			sub := n.Subs[i]
			if !prefix {
				sub = n.Subs[len(n.Subs)-1-i]
			}
			if !acc.anyComplete() {
				break
			}
			next := e.extract(sub, prefix, depth+1)
			if !next.IsFinite() {
				return acc.incomplete()
			}
			if next.IsEmpty() {
				return NewSeq()
			}
			joined, ok := e.cross(acc, next, prefix)
			if !ok {
				return acc.incomplete()
			}
			acc = joined
		}
		return acc

	case *ir.Alternation:
		var all []Literal
		for _, sub := range n.Subs {
			seq := e.extract(sub, prefix, depth+1)
			if !seq.IsFinite() {
				return Infinite()
			}
			all = append(all, seq.literals...)
			if len(all) > e.config.MaxLiterals {
				return Infinite()
			}
		}
		return NewSeq(all...)
	}
	return Infinite()
}

// cross extends every complete literal of acc with every literal of next.
// Incomplete literals of acc are kept unchanged: nothing can follow them.
// It reports false when the result would exceed MaxLiterals.
func (e *Extractor) cross(acc, next *Seq, prefix bool) (*Seq, bool) {
	var out []Literal
	for _, a := range acc.literals {
		if !a.Complete {
			out = append(out, a)
			continue
		}
		for _, b := range next.literals {
			var joined []byte
			if prefix {
				joined = append(append(joined, a.Bytes...), b.Bytes...)
			} else {
				joined = append(append(joined, b.Bytes...), a.Bytes...)
			}
			out = append(out, e.truncate(joined, b.Complete, prefix))
			if len(out) > e.config.MaxLiterals {
				return nil, false
			}
		}
	}
	return NewSeq(out...), true
}

// truncate caps b at MaxLiteralLen bytes, keeping the start for prefixes
// and the end for suffixes. Truncated literals are incomplete.
func (e *Extractor) truncate(b []byte, complete, prefix bool) Literal {
	if len(b) <= e.config.MaxLiteralLen {
		return NewLiteral(append([]byte(nil), b...), complete)
	}
	if prefix {
		b = b[:e.config.MaxLiteralLen]
	} else {
		b = b[len(b)-e.config.MaxLiteralLen:]
	}
	return NewLiteral(append([]byte(nil), b...), false)
}

// expandClass expands a class to its members, one literal each.
//
// Examples:
//
//	[abc]   → ["a", "b", "c"]
//	[a-z]   → infinite (26 members, over the default limit of 10)
//	[^\x00-\x{10FFFF}] → [] (cannot match)
func (e *Extractor) expandClass(c *ir.Class) *Seq {
	count := 0
	for _, r := range c.Ranges {
		count += int(r.Hi-r.Lo) + 1
		if count > e.config.MaxClassSize || count > e.config.MaxLiterals {
			return Infinite()
		}
	}

	lits := make([]Literal, 0, count)
	for _, r := range c.Ranges {
		for v := r.Lo; v <= r.Hi; v++ {
			if c.Set == ir.ClassBytes {
				lits = append(lits, NewLiteral([]byte{byte(v)}, true))
				continue
			}
			if !utf8.ValidRune(v) {
				// Surrogates never appear in decoded input.
				continue
			}
			lits = append(lits, NewLiteral(utf8.AppendRune(nil, v), true))
		}
	}
	return NewSeq(lits...)
}

// Required returns a byte string that occurs in every match of n, or nil
// when none is known. Among the candidates it finds it returns the longest.
//
// Examples:
//
//	"foo\d+bar"       → "foo" (ties keep the first candidate)
//	"(hello|help)\d"  → "hel"
//	"a+b"             → "ab"
//	"\d+"             → nil
func (e *Extractor) Required(n ir.Node) []byte {
	if best := e.required(n, 0); len(best) > 0 {
		return best
	}
	return nil
}

func (e *Extractor) required(n ir.Node, depth int) []byte {
	if depth > maxDepth {
		return nil
	}

	var best []byte
	consider := func(b []byte) {
		if len(b) > len(best) {
			best = b
		}
	}

	switch n := n.(type) {
	case *ir.Literal:
		return append([]byte(nil), n.Bytes...)
	case *ir.Capture:
		consider(e.required(n.Sub, depth+1))
	case *ir.Repetition:
		if n.Min > 0 {
			consider(e.required(n.Sub, depth+1))
		}
	case *ir.Concat:
		for _, sub := range n.Subs {
			consider(e.required(sub, depth+1))
		}
	}

	if prefixes := e.extract(n, true, depth); prefixes.IsFinite() && !prefixes.IsEmpty() {
		consider(prefixes.LongestCommonPrefix())
	}
	if suffixes := e.extract(n, false, depth); suffixes.IsFinite() && !suffixes.IsEmpty() {
		consider(suffixes.LongestCommonSuffix())
	}
	return best
}

// incomplete returns a copy of s with every literal marked incomplete.
func (s *Seq) incomplete() *Seq {
	if !s.IsFinite() {
		return s
	}
	lits := make([]Literal, len(s.literals))
	for i, lit := range s.literals {
		lits[i] = NewLiteral(lit.Bytes, false)
	}
	return NewSeq(lits...)
}

// informative returns Infinite for a sequence of empty, incomplete
// literals: it says nothing about how a match begins or ends.
func (s *Seq) informative() *Seq {
	if !s.IsFinite() || s.IsEmpty() {
		return s
	}
	for _, lit := range s.literals {
		if lit.Complete || len(lit.Bytes) > 0 {
			return s
		}
	}
	return Infinite()
}

// anyComplete reports whether some literal can still be extended.
func (s *Seq) anyComplete() bool {
	for _, lit := range s.literals {
		if lit.Complete {
			return true
		}
	}
	return false
}
