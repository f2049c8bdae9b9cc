package ir

import (
	"errors"
	"fmt"
	"regexp/syntax"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseOptions toggle parser behavior.
type ParseOptions struct {
	// CaseInsensitive makes literals and classes match regardless of case (i flag).
	CaseInsensitive bool

	// MultiLine makes ^ and $ match at line boundaries (m flag).
	MultiLine bool

	// DotMatchesNewLine lets '.' match '\n' (s flag).
	DotMatchesNewLine bool

	// IgnoreWhitespace ignores unescaped whitespace and '#' comments (x flag).
	IgnoreWhitespace bool

	// Unicode enables \p{...} classes. When false, classes that only hold
	// ASCII are compiled as byte classes.
	Unicode bool

	// CRLF treats "\r\n" as a line terminator for multi-line anchors and
	// excludes '\r' from '.'.
	CRLF bool
}

// DefaultParseOptions returns the default options: everything off except Unicode.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{Unicode: true}
}

// flags maps the options onto regexp/syntax parser flags.
func (o ParseOptions) flags() syntax.Flags {
	flags := syntax.Perl
	if o.CaseInsensitive {
		flags |= syntax.FoldCase
	}
	if o.MultiLine {
		flags &^= syntax.OneLine
	}
	if o.DotMatchesNewLine {
		flags |= syntax.DotNL
	}
	if !o.Unicode {
		flags &^= syntax.UnicodeGroups
	}
	return flags
}

// ErrUnsupportedOp is returned when the parser produces an operator the
// IR has no node for.
var ErrUnsupportedOp = errors.New("unsupported regexp operator")

// ParseError reports a pattern that could not be parsed.
type ParseError struct {
	// Pattern is the pattern as written by the user.
	Pattern string

	// Offset and Len locate the offending expression within Pattern.
	Offset, Len int

	// Err is the underlying regexp/syntax error.
	Err *syntax.Error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying syntax error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Message returns the error message without the "error parsing regexp" prefix.
func (e *ParseError) Message() string {
	return e.Err.Code.String() + ": `" + e.Err.Expr + "`"
}

// newParseError locates the failing expression of err in pattern. src is
// the text handed to regexp/syntax and origin maps its offsets back into
// pattern (nil when src is pattern).
//
// The expression may occur more than once. The parser stopped at the
// first occurrence whose prefix of src already fails with the same code.
func newParseError(pattern, src string, origin []int, flags syntax.Flags, err error) error {
	var serr *syntax.Error
	if !errors.As(err, &serr) {
		return err
	}
	pe := &ParseError{Pattern: pattern, Len: len(pattern), Err: serr}
	if serr.Expr == "" {
		return pe
	}

	start := -1
	if serr.Code == syntax.ErrMissingBracket && strings.HasSuffix(src, serr.Expr) {
		// The unclosed class runs to the end of the pattern.
		start = len(src) - len(serr.Expr)
	}
	for from := 0; start < 0 && from < len(src); {
		i := strings.Index(src[from:], serr.Expr)
		if i < 0 {
			break
		}
		i += from
		var perr *syntax.Error
		if _, err := syntax.Parse(src[:i+len(serr.Expr)], flags); errors.As(err, &perr) && perr.Code == serr.Code {
			start = i
			break
		}
		from = i + 1
	}
	if start < 0 {
		start = strings.Index(src, serr.Expr)
	}
	if start < 0 {
		return pe
	}

	end := start + len(serr.Expr)
	if origin != nil {
		start, end = origin[start], origin[end-1]+1
	}
	pe.Offset, pe.Len = start, end-start
	return pe
}

// Parse parses pattern into an IR tree.
//
// Syntax is the one accepted by Go's regexp package. Errors are
// *ParseError values that locate the offending expression.
//
// Example:
//
//	node, err := ir.Parse(`foo\d+`, ir.DefaultParseOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	minLen, _ := node.Properties().MinimumLen() // 4
func Parse(pattern string, opts ParseOptions) (Node, error) {
	src := pattern
	var origin []int
	if opts.IgnoreWhitespace {
		src, origin = stripInsignificant(pattern)
	}

	re, err := syntax.Parse(src, opts.flags())
	if err != nil {
		return nil, newParseError(pattern, src, origin, opts.flags(), err)
	}

	t := translator{opts: opts}
	return t.translate(re)
}

type translator struct {
	opts ParseOptions
}

// translate converts one regexp/syntax node and its children.
func (t *translator) translate(re *syntax.Regexp) (Node, error) {
	switch re.Op {
	case syntax.OpNoMatch:
		return NewClass(ClassUnicode, nil), nil
	case syntax.OpEmptyMatch:
		return NewEmpty(), nil
	case syntax.OpLiteral:
		if re.Flags&syntax.FoldCase != 0 {
			return foldLiteral(re.Rune), nil
		}
		return NewLiteral([]byte(string(re.Rune))), nil
	case syntax.OpCharClass:
		return t.class(pairsToRanges(re.Rune)), nil
	case syntax.OpAnyCharNotNL:
		excluded := []rune{'\n'}
		if t.opts.CRLF {
			excluded = []rune{'\n', '\r'}
		}
		return NewClass(ClassUnicode, anyExcept(excluded...)), nil
	case syntax.OpAnyChar:
		return NewClass(ClassUnicode, anyExcept()), nil
	case syntax.OpBeginLine:
		if t.opts.CRLF {
			return NewLook(LookStartCRLF), nil
		}
		return NewLook(LookStartLF), nil
	case syntax.OpEndLine:
		if t.opts.CRLF {
			return NewLook(LookEndCRLF), nil
		}
		return NewLook(LookEndLF), nil
	case syntax.OpBeginText:
		return NewLook(LookStart), nil
	case syntax.OpEndText:
		return NewLook(LookEnd), nil
	case syntax.OpWordBoundary:
		return NewLook(LookWordASCII), nil
	case syntax.OpNoWordBoundary:
		return NewLook(LookWordASCIINegate), nil
	case syntax.OpCapture:
		sub, err := t.translate(re.Sub[0])
		if err != nil {
			return nil, err
		}
		return NewCapture(re.Cap, re.Name, sub), nil
	case syntax.OpStar:
		return t.repetition(re, 0, Unbounded)
	case syntax.OpPlus:
		return t.repetition(re, 1, Unbounded)
	case syntax.OpQuest:
		return t.repetition(re, 0, 1)
	case syntax.OpRepeat:
		maxCount := re.Max
		if maxCount < 0 {
			maxCount = Unbounded
		}
		return t.repetition(re, re.Min, maxCount)
	case syntax.OpConcat:
		subs, err := t.translateAll(re.Sub)
		if err != nil {
			return nil, err
		}
		return NewConcat(subs), nil
	case syntax.OpAlternate:
		subs, err := t.translateAll(re.Sub)
		if err != nil {
			return nil, err
		}
		return NewAlternation(subs), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedOp, re.Op)
	}
}

func (t *translator) translateAll(res []*syntax.Regexp) ([]Node, error) {
	subs := make([]Node, 0, len(res))
	for _, re := range res {
		sub, err := t.translate(re)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func (t *translator) repetition(re *syntax.Regexp, minCount, maxCount int) (Node, error) {
	sub, err := t.translate(re.Sub[0])
	if err != nil {
		return nil, err
	}
	greedy := re.Flags&syntax.NonGreedy == 0
	return NewRepetition(minCount, maxCount, greedy, sub), nil
}

// class picks the class kind: ASCII-only classes become byte classes when
// Unicode mode is off.
func (t *translator) class(ranges []Range) Node {
	if !t.opts.Unicode && len(ranges) > 0 && ranges[len(ranges)-1].Hi < utf8.RuneSelf {
		return NewClass(ClassBytes, ranges)
	}
	return NewClass(ClassUnicode, ranges)
}

// pairsToRanges converts regexp/syntax [lo, hi, lo, hi, ...] pairs.
func pairsToRanges(pairs []rune) []Range {
	ranges := make([]Range, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		ranges = append(ranges, Range{Lo: pairs[i], Hi: pairs[i+1]})
	}
	return ranges
}

// anyExcept returns the ranges covering every scalar value except the given
// ASCII characters.
func anyExcept(excluded ...rune) []Range {
	sort.Slice(excluded, func(i, j int) bool { return excluded[i] < excluded[j] })
	var ranges []Range
	lo := rune(0)
	for _, r := range excluded {
		if r > lo {
			ranges = append(ranges, Range{Lo: lo, Hi: r - 1})
		}
		lo = r + 1
	}
	return append(ranges, Range{Lo: lo, Hi: unicode.MaxRune})
}

// foldLiteral expands a case-insensitive literal: runes without case
// variants stay literal, the others become classes of their fold orbit.
func foldLiteral(runes []rune) Node {
	subs := make([]Node, 0, len(runes))
	var plain []byte
	for _, r := range runes {
		orbit := foldOrbit(r)
		if len(orbit) == 1 {
			plain = utf8.AppendRune(plain, r)
			continue
		}
		if len(plain) > 0 {
			subs = append(subs, NewLiteral(plain))
			plain = nil
		}
		ranges := make([]Range, len(orbit))
		for i, o := range orbit {
			ranges[i] = Range{Lo: o, Hi: o}
		}
		subs = append(subs, NewClass(ClassUnicode, ranges))
	}
	if len(plain) > 0 {
		subs = append(subs, NewLiteral(plain))
	}
	return NewConcat(subs)
}

// foldOrbit returns r and every rune equivalent to it under simple case folding.
func foldOrbit(r rune) []rune {
	orbit := []rune{r}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		orbit = append(orbit, f)
	}
	return orbit
}
