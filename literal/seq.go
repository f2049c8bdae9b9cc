// Package literal extracts literal byte sequences from IR trees.
//
// The code generator uses them in two places:
//   - a required literal (one that occurs in every match) becomes a
//     strings.Contains guard in front of a generated automaton;
//   - literal alternation branches that contain another branch are
//     redundant for an unanchored predicate and are pruned (see Prune).
//
// Key concepts:
//   - A Literal is a concrete byte sequence that may appear in matches
//   - A Seq is a set of alternative literals (e.g., from alternations like /foo|bar/)
//   - An infinite Seq carries no information: any string may come first
package literal

import (
	"bytes"
	"strings"
)

// Literal represents a literal byte sequence extracted from a pattern.
// The Complete flag indicates whether this literal represents a complete match
// (true) or just a prefix/suffix of potential matches (false).
//
// Example:
//   - Pattern /hello/ → Literal{[]byte("hello"), true}
//   - Pattern /hello.*world/ → Literal{[]byte("hello"), false} (prefix only)
type Literal struct {
	// Bytes contains the actual literal byte sequence.
	Bytes []byte

	// Complete indicates whether this literal represents the entire match.
	Complete bool
}

// NewLiteral creates a new Literal from the given byte sequence and completeness flag.
func NewLiteral(b []byte, complete bool) Literal {
	return Literal{
		Bytes:    b,
		Complete: complete,
	}
}

// Len returns the length of the literal in bytes.
func (l Literal) Len() int {
	return len(l.Bytes)
}

// String returns a string representation of the literal for debugging purposes.
// Format: "literal{bytes, complete=true/false}"
//
// Example:
//
//	lit := literal.NewLiteral([]byte("test"), true)
//	fmt.Println(lit.String()) // Output: literal{test, complete=true}
func (l Literal) String() string {
	complete := "false"
	if l.Complete {
		complete = "true"
	}
	return "literal{" + string(l.Bytes) + ", complete=" + complete + "}"
}

// Seq represents a set of alternative literals: every match starts (or
// ends, for suffix sequences) with one of them.
//
// A finite Seq without literals describes a tree that cannot match at all.
// An infinite Seq describes a tree about which nothing is known.
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]byte("foo"), true),
//	    literal.NewLiteral([]byte("bar"), true),
//	)
//	fmt.Printf("Sequence has %d literals\n", seq.Len()) // Output: Sequence has 2 literals
type Seq struct {
	literals []Literal
	infinite bool
}

// NewSeq creates a new finite sequence from the given literals.
func NewSeq(lits ...Literal) *Seq {
	return &Seq{
		literals: lits,
	}
}

// Infinite returns a sequence that carries no information.
func Infinite() *Seq {
	return &Seq{infinite: true}
}

// Len returns the number of literals in the sequence.
func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.literals)
}

// Get returns the literal at the specified index.
// Panics if index is out of bounds.
func (s *Seq) Get(i int) Literal {
	return s.literals[i]
}

// Literals returns the literals of the sequence.
func (s *Seq) Literals() []Literal {
	if s == nil {
		return nil
	}
	return s.literals
}

// IsEmpty returns true if the sequence has no literals.
func (s *Seq) IsEmpty() bool {
	return s == nil || len(s.literals) == 0
}

// IsFinite returns true if the sequence is a known, finite set of literals.
func (s *Seq) IsFinite() bool {
	return s != nil && !s.infinite
}

// IsExact reports whether the sequence is finite and every literal is complete,
// i.e. the sequence is exactly the language of the tree it came from.
func (s *Seq) IsExact() bool {
	if !s.IsFinite() {
		return false
	}
	for _, lit := range s.literals {
		if !lit.Complete {
			return false
		}
	}
	return true
}

// KeepFirstBytes returns a copy of s with every literal cut to at most n
// bytes. Cut literals are incomplete. Duplicates are kept; see Minimize.
func (s *Seq) KeepFirstBytes(n int) *Seq {
	if !s.IsFinite() {
		return s
	}
	lits := make([]Literal, len(s.literals))
	for i, lit := range s.literals {
		if len(lit.Bytes) > n {
			lit = NewLiteral(lit.Bytes[:n], false)
		}
		lits[i] = lit
	}
	return NewSeq(lits...)
}

// Minimize drops literals that another literal of s is a prefix of, and
// returns s. A string containing "foobar" also contains "foo", so ["foo",
// "foobar"] minimizes to ["foo"]; equal literals collapse to one. The
// surviving literals keep their order.
//
// Time complexity: O(n² * m) where n = number of literals, m = average literal length
func (s *Seq) Minimize() *Seq {
	if s.IsEmpty() || !s.IsFinite() {
		return s
	}
	kept := make([]Literal, 0, len(s.literals))
	for i, cur := range s.literals {
		redundant := false
		for j, other := range s.literals {
			if i == j || !bytes.HasPrefix(cur.Bytes, other.Bytes) {
				continue
			}
			// Of two equal literals the first one stays.
			if len(other.Bytes) < len(cur.Bytes) || j < i {
				redundant = true
				break
			}
		}
		if !redundant {
			kept = append(kept, cur)
		}
	}
	s.literals = kept
	return s
}

// String formats the sequence as [lit1, lit2] or "inf".
func (s *Seq) String() string {
	if !s.IsFinite() {
		return "inf"
	}
	parts := make([]string, len(s.literals))
	for i, lit := range s.literals {
		parts[i] = lit.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// LongestCommonPrefix returns the longest common prefix of all literals in the sequence.
// If the sequence is empty, infinite or has no common prefix, returns an empty slice.
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]byte("hello"), true),
//	    literal.NewLiteral([]byte("help"), true),
//	    literal.NewLiteral([]byte("hero"), true),
//	)
//	prefix := seq.LongestCommonPrefix()
//	fmt.Println(string(prefix)) // Output: he
func (s *Seq) LongestCommonPrefix() []byte {
	if s.IsEmpty() || !s.IsFinite() {
		return []byte{}
	}

	prefix := s.literals[0].Bytes
	for i := 1; i < len(s.literals); i++ {
		prefix = commonPrefix(prefix, s.literals[i].Bytes)
		if len(prefix) == 0 {
			return []byte{}
		}
	}

	// Return a copy to avoid aliasing issues
	result := make([]byte, len(prefix))
	copy(result, prefix)
	return result
}

// LongestCommonSuffix returns the longest common suffix of all literals in the sequence.
// If the sequence is empty, infinite or has no common suffix, returns an empty slice.
//
// Example:
//
//	seq := literal.NewSeq(
//	    literal.NewLiteral([]byte("cat"), true),
//	    literal.NewLiteral([]byte("bat"), true),
//	    literal.NewLiteral([]byte("rat"), true),
//	)
//	suffix := seq.LongestCommonSuffix()
//	fmt.Println(string(suffix)) // Output: at
func (s *Seq) LongestCommonSuffix() []byte {
	if s.IsEmpty() || !s.IsFinite() {
		return []byte{}
	}

	suffix := s.literals[0].Bytes
	for i := 1; i < len(s.literals); i++ {
		suffix = commonSuffix(suffix, s.literals[i].Bytes)
		if len(suffix) == 0 {
			return []byte{}
		}
	}

	result := make([]byte, len(suffix))
	copy(result, suffix)
	return result
}

// commonPrefix returns the longest common prefix of a and b.
func commonPrefix(a, b []byte) []byte {
	minLen := min(len(a), len(b))
	for i := 0; i < minLen; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:minLen]
}

// commonSuffix returns the longest common suffix of a and b.
func commonSuffix(a, b []byte) []byte {
	aLen, bLen := len(a), len(b)
	minLen := min(aLen, bLen)
	for i := 0; i < minLen; i++ {
		if a[aLen-1-i] != b[bLen-1-i] {
			return a[aLen-i:]
		}
	}
	return a[aLen-minLen:]
}
