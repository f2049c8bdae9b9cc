// Package ir defines the intermediate representation that coregen compiles
// into matching code.
//
// The IR is a closed sum type of exactly eight node kinds:
//   - Empty: matches the empty string everywhere
//   - Literal: a non-empty byte sequence
//   - Class: a set of byte or Unicode scalar ranges
//   - Look: a zero-width assertion
//   - Repetition: a bounded or unbounded repeat of a sub-node
//   - Capture: a capturing group around a sub-node
//   - Concat: an ordered sequence of sub-nodes
//   - Alternation: a choice between sub-nodes
//
// Trees are produced by Parse (which translates the regexp/syntax tree) or
// by the New* constructors, and are never mutated afterwards. Every node
// carries its Properties, computed once when the node is built.
//
// Consumers traverse the tree through Visit and the Visitor interface. The
// visitor has one method per node kind, so adding a kind is a compile-time
// obligation for every consumer.
package ir

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// Kind identifies the kind of an IR node.
type Kind uint8

const (
	// KindEmpty is the kind of *Empty.
	KindEmpty Kind = iota

	// KindLiteral is the kind of *Literal.
	KindLiteral

	// KindClass is the kind of *Class.
	KindClass

	// KindLook is the kind of *Look.
	KindLook

	// KindRepetition is the kind of *Repetition.
	KindRepetition

	// KindCapture is the kind of *Capture.
	KindCapture

	// KindConcat is the kind of *Concat.
	KindConcat

	// KindAlternation is the kind of *Alternation.
	KindAlternation
)

// String returns the node kind name.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindLiteral:
		return "Literal"
	case KindClass:
		return "Class"
	case KindLook:
		return "Look"
	case KindRepetition:
		return "Repetition"
	case KindCapture:
		return "Capture"
	case KindConcat:
		return "Concat"
	case KindAlternation:
		return "Alternation"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Node is an immutable IR node.
//
// The set of implementations is closed: only the eight node types in this
// package satisfy Node.
type Node interface {
	// Kind returns the node kind.
	Kind() Kind

	// Properties returns the static properties of the tree rooted here.
	Properties() *Properties

	// String returns the compact debug form of the tree.
	String() string

	sealed()
}

// Empty matches the empty string at every position.
type Empty struct {
	props Properties
}

// Literal matches an exact, non-empty byte sequence.
type Literal struct {
	// Bytes is the UTF-8 encoded literal. It is never empty.
	Bytes []byte

	props Properties
}

// ClassKind selects what a Class tests: raw bytes or decoded scalar values.
type ClassKind uint8

const (
	// ClassUnicode ranges are Unicode scalar values tested against decoded runes.
	ClassUnicode ClassKind = iota

	// ClassBytes ranges are byte values tested against raw input bytes.
	ClassBytes
)

// String returns "Unicode" or "Bytes".
func (k ClassKind) String() string {
	if k == ClassBytes {
		return "Bytes"
	}
	return "Unicode"
}

// Range is an inclusive range [Lo, Hi] of byte or scalar values.
type Range struct {
	Lo, Hi rune
}

// Class matches a single element that falls in one of its ranges.
// Ranges are sorted, non-overlapping and non-adjacent. A class without
// ranges never matches.
type Class struct {
	Set    ClassKind
	Ranges []Range

	props Properties
}

// LookKind identifies a zero-width assertion.
type LookKind uint8

const (
	// LookStart matches at the start of the input (\A).
	LookStart LookKind = iota

	// LookEnd matches at the end of the input (\z).
	LookEnd

	// LookStartLF matches at the start of the input or after '\n'.
	LookStartLF

	// LookEndLF matches at the end of the input or before '\n'.
	LookEndLF

	// LookStartCRLF matches at the start of a line where lines end in
	// "\n", "\r" or "\r\n", never between '\r' and '\n'.
	LookStartCRLF

	// LookEndCRLF matches at the end of a line where lines end in
	// "\n", "\r" or "\r\n", never between '\r' and '\n'.
	LookEndCRLF

	// LookWordASCII matches at an ASCII word boundary (\b).
	LookWordASCII

	// LookWordASCIINegate matches where there is no ASCII word boundary (\B).
	LookWordASCIINegate

	numLookKinds
)

// String returns the assertion name.
func (k LookKind) String() string {
	switch k {
	case LookStart:
		return "Start"
	case LookEnd:
		return "End"
	case LookStartLF:
		return "StartLF"
	case LookEndLF:
		return "EndLF"
	case LookStartCRLF:
		return "StartCRLF"
	case LookEndCRLF:
		return "EndCRLF"
	case LookWordASCII:
		return "WordAscii"
	case LookWordASCIINegate:
		return "WordAsciiNegate"
	default:
		return fmt.Sprintf("LookKind(%d)", k)
	}
}

// Look is a zero-width assertion.
type Look struct {
	Look LookKind

	props Properties
}

// Unbounded is the Repetition.Max value for repetitions without an upper bound.
const Unbounded = -1

// Repetition matches Sub repeated between Min and Max times.
type Repetition struct {
	Min int
	// Max is the upper bound or Unbounded.
	Max int
	// Greedy is false for lazy repetitions (x*?, x+?, ...).
	Greedy bool
	Sub    Node

	props Properties
}

// Capture is a capturing group.
type Capture struct {
	// Index is the 1-based capture group number.
	Index int
	// Name is empty for unnamed groups.
	Name string
	Sub  Node

	props Properties
}

// Concat matches its sub-nodes one after another.
type Concat struct {
	Subs []Node

	props Properties
}

// Alternation matches any one of its sub-nodes.
type Alternation struct {
	Subs []Node

	props Properties
}

func (*Empty) Kind() Kind       { return KindEmpty }
func (*Literal) Kind() Kind     { return KindLiteral }
func (*Class) Kind() Kind       { return KindClass }
func (*Look) Kind() Kind        { return KindLook }
func (*Repetition) Kind() Kind  { return KindRepetition }
func (*Capture) Kind() Kind     { return KindCapture }
func (*Concat) Kind() Kind      { return KindConcat }
func (*Alternation) Kind() Kind { return KindAlternation }

func (n *Empty) Properties() *Properties       { return &n.props }
func (n *Literal) Properties() *Properties     { return &n.props }
func (n *Class) Properties() *Properties       { return &n.props }
func (n *Look) Properties() *Properties        { return &n.props }
func (n *Repetition) Properties() *Properties  { return &n.props }
func (n *Capture) Properties() *Properties     { return &n.props }
func (n *Concat) Properties() *Properties      { return &n.props }
func (n *Alternation) Properties() *Properties { return &n.props }

func (*Empty) sealed()       {}
func (*Literal) sealed()     {}
func (*Class) sealed()       {}
func (*Look) sealed()        {}
func (*Repetition) sealed()  {}
func (*Capture) sealed()     {}
func (*Concat) sealed()      {}
func (*Alternation) sealed() {}

// NewEmpty returns the empty node.
func NewEmpty() Node {
	n := &Empty{}
	n.props = emptyProps()
	return n
}

// NewLiteral returns a literal node for b.
// An empty b yields Empty: zero-length literals are never constructed.
func NewLiteral(b []byte) Node {
	if len(b) == 0 {
		return NewEmpty()
	}
	n := &Literal{Bytes: append([]byte(nil), b...)}
	n.props = literalProps(n.Bytes)
	return n
}

// NewClass returns a class over the given ranges.
//
// Ranges are normalized: swapped bounds are fixed, overlapping and
// adjacent ranges are merged and the result is sorted. Passing no ranges
// yields a class that never matches.
//
// Example:
//
//	digits := ir.NewClass(ir.ClassBytes, []ir.Range{{'0', '9'}})
func NewClass(kind ClassKind, ranges []Range) *Class {
	n := &Class{Set: kind, Ranges: canonicalRanges(ranges)}
	n.props = classProps(n)
	return n
}

// NewLook returns an assertion node.
func NewLook(k LookKind) Node {
	n := &Look{Look: k}
	n.props = lookProps(k)
	return n
}

// NewRepetition returns sub repeated between min and max times.
// Use Unbounded for max to leave the upper bound open.
func NewRepetition(minCount, maxCount int, greedy bool, sub Node) Node {
	n := &Repetition{Min: minCount, Max: maxCount, Greedy: greedy, Sub: sub}
	n.props = repetitionProps(n)
	return n
}

// NewCapture returns a capturing group around sub.
func NewCapture(index int, name string, sub Node) Node {
	n := &Capture{Index: index, Name: name, Sub: sub}
	n.props = captureProps(sub)
	return n
}

// NewConcat returns the concatenation of subs.
//
// Nested concatenations are flattened, adjacent literals are merged and
// Empty sub-nodes are dropped. Zero remaining sub-nodes yield Empty, one
// yields that sub-node.
func NewConcat(subs []Node) Node {
	flat := make([]Node, 0, len(subs))
	var pending []byte
	flush := func() {
		if len(pending) > 0 {
			flat = append(flat, NewLiteral(pending))
			pending = nil
		}
	}
	var add func(n Node)
	add = func(n Node) {
		switch n := n.(type) {
		case *Empty:
		case *Literal:
			pending = append(pending, n.Bytes...)
		case *Concat:
			for _, sub := range n.Subs {
				add(sub)
			}
		default:
			flush()
			flat = append(flat, n)
		}
	}
	for _, sub := range subs {
		add(sub)
	}
	flush()

	switch len(flat) {
	case 0:
		return NewEmpty()
	case 1:
		return flat[0]
	}
	n := &Concat{Subs: flat}
	n.props = concatProps(flat)
	return n
}

// NewAlternation returns the alternation of subs.
//
// Nested alternations are flattened. Zero sub-nodes yield a class that
// never matches, one yields that sub-node.
func NewAlternation(subs []Node) Node {
	flat := make([]Node, 0, len(subs))
	for _, sub := range subs {
		if alt, ok := sub.(*Alternation); ok {
			flat = append(flat, alt.Subs...)
			continue
		}
		flat = append(flat, sub)
	}

	switch len(flat) {
	case 0:
		return NewClass(ClassUnicode, nil)
	case 1:
		return flat[0]
	}
	n := &Alternation{Subs: flat}
	n.props = alternationProps(flat)
	return n
}

// IsEmpty reports whether the class has no members.
func (c *Class) IsEmpty() bool {
	return len(c.Ranges) == 0
}

// Contains reports whether v is a member of the class.
func (c *Class) Contains(v rune) bool {
	i := sort.Search(len(c.Ranges), func(i int) bool { return c.Ranges[i].Hi >= v })
	return i < len(c.Ranges) && c.Ranges[i].Lo <= v
}

// canonicalRanges sorts and merges ranges.
func canonicalRanges(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	out := make([]Range, len(ranges))
	for i, r := range ranges {
		if r.Lo > r.Hi {
			r.Lo, r.Hi = r.Hi, r.Lo
		}
		out[i] = r
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Lo != out[j].Lo {
			return out[i].Lo < out[j].Lo
		}
		return out[i].Hi < out[j].Hi
	})

	merged := out[:1]
	for _, r := range out[1:] {
		last := &merged[len(merged)-1]
		if r.Lo <= last.Hi+1 {
			if r.Hi > last.Hi {
				last.Hi = r.Hi
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// runeLen returns the UTF-8 encoded length of r, counting invalid values
// as the replacement character.
func runeLen(r rune) int {
	n := utf8.RuneLen(r)
	if n < 0 {
		return utf8.RuneLen(utf8.RuneError)
	}
	return n
}
