package ir

import (
	"errors"
	"regexp/syntax"
	"unicode/utf8"
)

// ErrNotRepresentable is returned by ToSyntax for nodes that have no
// regexp/syntax equivalent (the CRLF line anchors).
var ErrNotRepresentable = errors.New("node has no regexp/syntax equivalent")

// ToSyntax converts an IR tree back into a regexp/syntax tree.
//
// The result prints, through (*syntax.Regexp).String, as a pattern that
// Go's regexp package compiles to the same language under syntax.Perl
// flags. Byte classes become ordinary classes over the same values.
func ToSyntax(n Node) (*syntax.Regexp, error) {
	return Visit[syntaxResult](n, toSyntax{}).unpack()
}

type syntaxResult struct {
	re  *syntax.Regexp
	err error
}

func (r syntaxResult) unpack() (*syntax.Regexp, error) { return r.re, r.err }

type toSyntax struct{}

func (toSyntax) VisitEmpty(*Empty) syntaxResult {
	return syntaxResult{re: &syntax.Regexp{Op: syntax.OpEmptyMatch}}
}

func (toSyntax) VisitLiteral(n *Literal) syntaxResult {
	runes := make([]rune, 0, utf8.RuneCount(n.Bytes))
	for b := n.Bytes; len(b) > 0; {
		r, w := utf8.DecodeRune(b)
		runes = append(runes, r)
		b = b[w:]
	}
	return syntaxResult{re: &syntax.Regexp{Op: syntax.OpLiteral, Rune: runes}}
}

func (toSyntax) VisitClass(n *Class) syntaxResult {
	if n.IsEmpty() {
		return syntaxResult{re: &syntax.Regexp{Op: syntax.OpNoMatch}}
	}
	pairs := make([]rune, 0, 2*len(n.Ranges))
	for _, r := range n.Ranges {
		pairs = append(pairs, r.Lo, r.Hi)
	}
	return syntaxResult{re: &syntax.Regexp{Op: syntax.OpCharClass, Rune: pairs}}
}

func (toSyntax) VisitLook(n *Look) syntaxResult {
	var op syntax.Op
	switch n.Look {
	case LookStart:
		op = syntax.OpBeginText
	case LookEnd:
		op = syntax.OpEndText
	case LookStartLF:
		op = syntax.OpBeginLine
	case LookEndLF:
		op = syntax.OpEndLine
	case LookWordASCII:
		op = syntax.OpWordBoundary
	case LookWordASCIINegate:
		op = syntax.OpNoWordBoundary
	default:
		return syntaxResult{err: ErrNotRepresentable}
	}
	return syntaxResult{re: &syntax.Regexp{Op: op}}
}

func (v toSyntax) VisitRepetition(n *Repetition) syntaxResult {
	sub, err := Visit[syntaxResult](n.Sub, v).unpack()
	if err != nil {
		return syntaxResult{err: err}
	}
	re := &syntax.Regexp{Sub: []*syntax.Regexp{sub}, Min: n.Min, Max: n.Max}
	switch {
	case n.Min == 0 && n.Max == Unbounded:
		re.Op = syntax.OpStar
	case n.Min == 1 && n.Max == Unbounded:
		re.Op = syntax.OpPlus
	case n.Min == 0 && n.Max == 1:
		re.Op = syntax.OpQuest
	default:
		re.Op = syntax.OpRepeat
	}
	if !n.Greedy {
		re.Flags |= syntax.NonGreedy
	}
	return syntaxResult{re: re}
}

func (v toSyntax) VisitCapture(n *Capture) syntaxResult {
	sub, err := Visit[syntaxResult](n.Sub, v).unpack()
	if err != nil {
		return syntaxResult{err: err}
	}
	return syntaxResult{re: &syntax.Regexp{
		Op:   syntax.OpCapture,
		Cap:  n.Index,
		Name: n.Name,
		Sub:  []*syntax.Regexp{sub},
	}}
}

func (v toSyntax) VisitConcat(n *Concat) syntaxResult {
	return v.list(syntax.OpConcat, n.Subs)
}

func (v toSyntax) VisitAlternation(n *Alternation) syntaxResult {
	return v.list(syntax.OpAlternate, n.Subs)
}

func (v toSyntax) list(op syntax.Op, nodes []Node) syntaxResult {
	re := &syntax.Regexp{Op: op, Sub: make([]*syntax.Regexp, 0, len(nodes))}
	for _, n := range nodes {
		sub, err := Visit[syntaxResult](n, v).unpack()
		if err != nil {
			return syntaxResult{err: err}
		}
		re.Sub = append(re.Sub, sub)
	}
	return syntaxResult{re: re}
}
