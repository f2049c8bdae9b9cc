// Package coregen compiles regular expressions into Go source ahead of time.
//
// A pattern known at build time is parsed, analysed and translated into a
// self-contained Go matcher whose only operation is
//
//	func IsMatch(input string) bool
//
// IsMatch reports whether the pattern matches anywhere in input, exactly as
// regexp.MatchString would, but without interpreting the pattern at run
// time and without allocating.
//
// Basic usage:
//
//	// Compile a pattern into a unit named Digits
//	u, err := coregen.Compile(`\d+`, "Digits", coregen.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Write package digits with func IsMatch
//	if err := u.Render(os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
//
// Several units can share one package: set Options.TypeName and each unit
// renders as `type <Name> struct{}` with an IsMatch method.
//
// Pipeline:
//   - ir.Parse turns the pattern into a closed IR tree with static properties
//   - emit.Compile short-circuits unmatchable trees and emits per-node code
//   - golang.Render prints the code model as gofmt'ed Go
//
// Compilation either produces a matcher that agrees with regexp or fails
// with an *Error; there is no best-effort output.
package coregen

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"io"
	"strings"

	"github.com/coregx/coregen/code"
	"github.com/coregx/coregen/code/golang"
	"github.com/coregx/coregen/emit"
	"github.com/coregx/coregen/ir"
)

// Options controls how a pattern is parsed and how its unit is rendered.
//
// Example:
//
//	opts := coregen.DefaultOptions()
//	opts.CaseInsensitive = true
//	opts.Package = "matchers"
//	opts.TypeName = true
//	u, err := coregen.Compile(`hello`, "Hello", opts)
type Options struct {
	// CaseInsensitive matches letters regardless of case (i flag).
	CaseInsensitive bool

	// MultiLine makes ^ and $ match at line boundaries (m flag).
	MultiLine bool

	// DotMatchesNewLine lets '.' match '\n' (s flag).
	DotMatchesNewLine bool

	// IgnoreWhitespace drops unescaped whitespace and '#' comments from
	// the pattern (x flag).
	IgnoreWhitespace bool

	// Unicode enables \p{...} classes. When false, ASCII-only classes
	// test raw bytes.
	// Default: true
	Unicode bool

	// CRLF treats "\r\n" as one line terminator for multi-line anchors
	// and excludes '\r' from '.'.
	CRLF bool

	// Package is the package clause of the rendered file. Empty means the
	// unit name in lower case.
	Package string

	// TypeName renders the unit as a type with an IsMatch method instead
	// of a package-level IsMatch function.
	TypeName bool

	// MaxStates caps the size of generated automata.
	// Default: 4096
	MaxStates int
}

// DefaultOptions returns the default options: Unicode on, everything else
// off, default limits.
func DefaultOptions() Options {
	return Options{
		Unicode:   true,
		MaxStates: emit.DefaultConfig().MaxStates,
	}
}

func (o Options) parseOptions() ir.ParseOptions {
	return ir.ParseOptions{
		CaseInsensitive:   o.CaseInsensitive,
		MultiLine:         o.MultiLine,
		DotMatchesNewLine: o.DotMatchesNewLine,
		IgnoreWhitespace:  o.IgnoreWhitespace,
		Unicode:           o.Unicode,
		CRLF:              o.CRLF,
	}
}

func (o Options) emitConfig() emit.Config {
	cfg := emit.DefaultConfig()
	if o.MaxStates != 0 {
		cfg.MaxStates = o.MaxStates
	}
	return cfg
}

// Unit is a compiled matcher for one pattern.
//
// A Unit is immutable after Compile returns and is safe to use
// concurrently.
type Unit struct {
	// Name is the unit name: a Go identifier naming the rendered package
	// or type.
	Name string

	// Pattern is the pattern as given to Compile.
	Pattern string

	// Options are the options the unit was compiled with.
	Options Options

	// IR is the parsed pattern.
	IR ir.Node

	program *emit.Program
}

// Compile compiles pattern into a unit called name.
//
// name must be a Go identifier. Errors are *Error values; errors.Is
// matches them against ErrSyntax, ErrUnsupported, ErrTooComplex and
// ErrInvalidName.
//
// Example:
//
//	u, err := coregen.Compile(`foo|bar`, "FooBar", coregen.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(u.IsMatch("xbar")) // true
func Compile(pattern, name string, opts Options) (*Unit, error) {
	if !token.IsIdentifier(name) {
		return nil, &Error{
			Kind:    InvalidNameError,
			Message: fmt.Sprintf("unit name %q is not a Go identifier", name),
			Pattern: pattern,
		}
	}
	cfg := opts.emitConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	node, err := ir.Parse(pattern, opts.parseOptions())
	if err != nil {
		return nil, parseError(pattern, err)
	}
	prog, err := emit.Compile(node, cfg)
	if err != nil {
		return nil, emitError(pattern, err)
	}

	u := &Unit{
		Name:    name,
		Pattern: pattern,
		Options: opts,
		IR:      node,
		program: prog,
	}
	prog.Unit.Name = name
	prog.Unit.Doc = u.doc()
	return u, nil
}

// MustCompile is like Compile but panics on error. It simplifies tests
// and generators whose patterns are constants.
func MustCompile(pattern, name string, opts Options) *Unit {
	u, err := Compile(pattern, name, opts)
	if err != nil {
		panic("coregen: Compile(`" + pattern + "`): " + err.Error())
	}
	return u
}

func parseError(pattern string, err error) error {
	var pe *ir.ParseError
	if errors.As(err, &pe) {
		return &Error{
			Kind:    SyntaxError,
			Message: pe.Message(),
			Pattern: pattern,
			Span:    Span{Start: pe.Offset, End: pe.Offset + pe.Len},
			Err:     err,
		}
	}
	return &Error{
		Kind:    UnsupportedConstructError,
		Message: err.Error(),
		Pattern: pattern,
		Span:    Span{End: len(pattern)},
		Err:     err,
	}
}

func emitError(pattern string, err error) error {
	kind := UnsupportedConstructError
	if errors.Is(err, emit.ErrTooComplex) {
		kind = TooComplexError
	}
	return &Error{
		Kind:    kind,
		Message: err.Error(),
		Pattern: pattern,
		Span:    Span{End: len(pattern)},
		Err:     err,
	}
}

// doc builds the documentation payload rendered above the matcher: the
// pattern, the printed IR and the printed properties.
func (u *Unit) doc() []string {
	lines := []string{"Pattern: " + strings.TrimSpace(fmt.Sprintf("%q", u.Pattern))}
	if flags := u.Options.flagNames(); flags != "" {
		lines = append(lines, "Options: "+flags)
	}
	lines = append(lines, "", "IR:", "")
	lines = append(lines, indent(ir.Dump(u.IR))...)
	lines = append(lines, "", "Properties:", "")
	lines = append(lines, indent(u.IR.Properties().String())...)
	return lines
}

// flagNames lists the parse options that differ from the defaults.
func (o Options) flagNames() string {
	var names []string
	for _, f := range []struct {
		name string
		on   bool
	}{
		{"case_insensitive", o.CaseInsensitive},
		{"multi_line", o.MultiLine},
		{"dot_matches_new_line", o.DotMatchesNewLine},
		{"ignore_whitespace", o.IgnoreWhitespace},
		{"unicode=false", !o.Unicode},
		{"crlf", o.CRLF},
	} {
		if f.on {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, ", ")
}

// indent turns a multi-line block into a preformatted doc block.
func indent(s string) []string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "\t" + line
	}
	return lines
}

// Strategy returns the code shape chosen for the pattern's root.
func (u *Unit) Strategy() emit.Strategy {
	return u.program.Strategy
}

// States returns the number of automaton states in the generated code.
func (u *Unit) States() int {
	return u.program.States
}

// Code returns the code model of the matcher.
func (u *Unit) Code() *code.Unit {
	return u.program.Unit
}

// Doc returns the documentation payload. It never affects IsMatch.
func (u *Unit) Doc() []string {
	return append([]string(nil), u.program.Unit.Doc...)
}

// IsMatch runs the generated matcher on input without rendering it.
// It gives the answer the rendered IsMatch gives.
func (u *Unit) IsMatch(input string) bool {
	ok, err := code.Eval(u.program.Unit, input)
	if err != nil {
		panic("coregen: " + u.Name + ": " + err.Error())
	}
	return ok
}

// PackageName returns the package clause the unit renders with.
func (u *Unit) PackageName() string {
	if u.Options.Package != "" {
		return u.Options.Package
	}
	return strings.ToLower(u.Name)
}

// Render writes the Go source of the unit to w.
func (u *Unit) Render(w io.Writer) error {
	mode := golang.ModePackage
	if u.Options.TypeName {
		mode = golang.ModeType
	}
	return golang.Render(w, u.program.Unit, golang.Options{
		Package: u.PackageName(),
		Mode:    mode,
	})
}

// Source returns the Go source of the unit.
func (u *Unit) Source() ([]byte, error) {
	var buf bytes.Buffer
	if err := u.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// String returns the unit name and pattern.
func (u *Unit) String() string {
	return fmt.Sprintf("%s = %q", u.Name, u.Pattern)
}
