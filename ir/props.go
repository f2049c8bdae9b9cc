package ir

import (
	"math"
	"strings"
	"unicode/utf8"
)

// LookSet is a bitset of look-around assertion kinds.
type LookSet uint16

// Contains reports whether k is in the set.
func (s LookSet) Contains(k LookKind) bool {
	return s&(1<<k) != 0
}

// Insert returns the set with k added.
func (s LookSet) Insert(k LookKind) LookSet {
	return s | 1<<k
}

// Union returns the union of both sets.
func (s LookSet) Union(other LookSet) LookSet {
	return s | other
}

// IsEmpty reports whether no assertion is in the set.
func (s LookSet) IsEmpty() bool {
	return s == 0
}

// String formats the set as "{Start, WordAscii}".
func (s LookSet) String() string {
	if s.IsEmpty() {
		return "∅"
	}
	var names []string
	for k := LookKind(0); k < numLookKinds; k++ {
		if s.Contains(k) {
			names = append(names, k.String())
		}
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// Properties are static facts about an IR tree.
//
// They are computed bottom-up when a node is constructed and consulted by
// the code generator before it emits anything.
type Properties struct {
	minLen   int
	hasMin   bool
	maxLen   int
	hasMax   bool
	look     LookSet
	utf8     bool
	captures int
	literal  bool
	altLit   bool
}

// MinimumLen returns the length in bytes of the shortest string the tree
// can match. The second result is false when the tree can never match
// anything, not even the empty string.
func (p *Properties) MinimumLen() (int, bool) {
	return p.minLen, p.hasMin
}

// MaximumLen returns the length in bytes of the longest string the tree
// can match. The second result is false when the length is unbounded or
// the tree never matches.
func (p *Properties) MaximumLen() (int, bool) {
	return p.maxLen, p.hasMax
}

// IsMatchable reports whether the tree can match at least one string.
func (p *Properties) IsMatchable() bool {
	return p.hasMin
}

// LookSet returns every assertion used anywhere in the tree.
func (p *Properties) LookSet() LookSet {
	return p.look
}

// IsUTF8 reports whether every match of the tree is valid UTF-8.
func (p *Properties) IsUTF8() bool {
	return p.utf8
}

// ExplicitCaptures returns the number of capture groups in the tree.
func (p *Properties) ExplicitCaptures() int {
	return p.captures
}

// IsLiteral reports whether the tree matches exactly one non-empty string.
func (p *Properties) IsLiteral() bool {
	return p.literal
}

// IsAlternationLiteral reports whether the tree is a literal or an
// alternation of literals.
func (p *Properties) IsAlternationLiteral() bool {
	return p.altLit
}

// String prints the properties in a multi-line debug form.
func (p *Properties) String() string {
	var b strings.Builder
	b.WriteString("Properties {\n")
	writeField(&b, "minimum_len", optionalLen(p.minLen, p.hasMin))
	writeField(&b, "maximum_len", optionalLen(p.maxLen, p.hasMax))
	writeField(&b, "look_set", p.look.String())
	writeField(&b, "utf8", boolString(p.utf8))
	writeField(&b, "explicit_captures", itoa(p.captures))
	writeField(&b, "literal", boolString(p.literal))
	writeField(&b, "alternation_literal", boolString(p.altLit))
	b.WriteString("}")
	return b.String()
}

func writeField(b *strings.Builder, name, value string) {
	b.WriteString("    ")
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString(",\n")
}

func optionalLen(n int, ok bool) string {
	if !ok {
		return "none"
	}
	return itoa(n)
}

func emptyProps() Properties {
	return Properties{hasMin: true, hasMax: true, utf8: true}
}

func literalProps(b []byte) Properties {
	return Properties{
		minLen:  len(b),
		hasMin:  true,
		maxLen:  len(b),
		hasMax:  true,
		utf8:    utf8.Valid(b),
		literal: true,
		altLit:  true,
	}
}

func classProps(c *Class) Properties {
	if c.IsEmpty() {
		return Properties{utf8: true}
	}
	p := Properties{hasMin: true, hasMax: true, utf8: true}
	if c.Set == ClassBytes {
		p.minLen, p.maxLen = 1, 1
		p.utf8 = c.Ranges[len(c.Ranges)-1].Hi < utf8.RuneSelf
		return p
	}
	p.minLen = runeLen(c.Ranges[0].Lo)
	p.maxLen = runeLen(c.Ranges[len(c.Ranges)-1].Hi)
	return p
}

func lookProps(k LookKind) Properties {
	p := emptyProps()
	p.look = p.look.Insert(k)
	return p
}

func repetitionProps(r *Repetition) Properties {
	sub := r.Sub.Properties()
	p := Properties{
		look:     sub.look,
		utf8:     sub.utf8,
		captures: sub.captures,
	}

	switch {
	case r.Min == 0:
		p.minLen, p.hasMin = 0, true
	case sub.hasMin:
		p.minLen, p.hasMin = satMul(sub.minLen, r.Min), true
	}

	switch {
	case !p.hasMin:
	case r.Max == 0:
		p.maxLen, p.hasMax = 0, true
	case !sub.hasMin:
		// Only the zero-repetition case can match.
		p.maxLen, p.hasMax = 0, true
	case sub.hasMax && sub.maxLen == 0:
		p.maxLen, p.hasMax = 0, true
	case r.Max == Unbounded || !sub.hasMax:
	default:
		p.maxLen, p.hasMax = satMul(sub.maxLen, r.Max), true
	}
	return p
}

func captureProps(sub Node) Properties {
	p := *sub.Properties()
	p.captures++
	p.literal = false
	p.altLit = false
	return p
}

func concatProps(subs []Node) Properties {
	p := Properties{hasMin: true, hasMax: true, utf8: true, literal: true, altLit: true}
	for _, sub := range subs {
		sp := sub.Properties()
		if sp.hasMin {
			p.minLen = satAdd(p.minLen, sp.minLen)
		} else {
			p.hasMin = false
		}
		if sp.hasMax {
			p.maxLen = satAdd(p.maxLen, sp.maxLen)
		} else {
			p.hasMax = false
		}
		p.look = p.look.Union(sp.look)
		p.utf8 = p.utf8 && sp.utf8
		p.captures += sp.captures
		p.literal = p.literal && sp.literal
	}
	if !p.hasMin {
		p.minLen, p.maxLen, p.hasMax = 0, 0, false
	}
	if !p.hasMax {
		p.maxLen = 0
	}
	p.altLit = p.literal
	return p
}

func alternationProps(subs []Node) Properties {
	p := Properties{utf8: true, altLit: true, hasMax: true}
	for _, sub := range subs {
		sp := sub.Properties()
		if sp.hasMin {
			if !p.hasMin || sp.minLen < p.minLen {
				p.minLen = sp.minLen
			}
			p.hasMin = true
			if !sp.hasMax {
				p.hasMax = false
			} else if sp.maxLen > p.maxLen {
				p.maxLen = sp.maxLen
			}
		}
		p.look = p.look.Union(sp.look)
		p.utf8 = p.utf8 && sp.utf8
		p.captures += sp.captures
		p.altLit = p.altLit && sp.literal
	}
	if !p.hasMin || !p.hasMax {
		p.hasMax = false
		p.maxLen = 0
	}
	return p
}

func satAdd(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

func satMul(a, b int) int {
	if a != 0 && b > math.MaxInt/a {
		return math.MaxInt
	}
	return a * b
}
