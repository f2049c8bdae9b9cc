// Package golang renders a code.Unit as Go source.
//
// Rendering goes through jennifer, which manages imports and runs gofmt on
// the result, so the output is always formatted and imports only what the
// unit uses (strings, unicode/utf8).
package golang

import (
	"fmt"
	"go/token"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dave/jennifer/jen"

	"github.com/coregx/coregen/code"
)

// Mode selects the shape of the rendered unit.
type Mode uint8

const (
	// ModePackage renders a whole package whose only exported identifier
	// is func IsMatch(input string) bool.
	ModePackage Mode = iota

	// ModeType renders `type <Name> struct{}` with an IsMatch method, for
	// dropping several units into one existing package. Helper functions
	// are prefixed with the unit name so units do not collide.
	ModeType
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModePackage:
		return "package"
	case ModeType:
		return "type"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Options controls rendering.
type Options struct {
	// Package is the package clause of the rendered file. Required.
	Package string

	// Mode selects package or type rendering.
	Mode Mode

	// Generator names the tool in the "Code generated" header.
	// Default: "coregen".
	Generator string
}

// Render writes the Go source of u to w.
func Render(w io.Writer, u *code.Unit, opts Options) error {
	f, err := File(u, opts)
	if err != nil {
		return err
	}
	return f.Render(w)
}

// File builds the jennifer file for u without rendering it.
func File(u *code.Unit, opts Options) (*jen.File, error) {
	if u == nil || u.Entry == nil {
		return nil, fmt.Errorf("golang: unit has no entry function")
	}
	if !token.IsIdentifier(opts.Package) {
		return nil, fmt.Errorf("golang: invalid package name %q", opts.Package)
	}
	if opts.Mode == ModeType && !token.IsIdentifier(u.Name) {
		return nil, fmt.Errorf("golang: invalid type name %q", u.Name)
	}
	if opts.Generator == "" {
		opts.Generator = "coregen"
	}

	r := &renderer{names: make(map[string]string, len(u.Funcs))}
	for _, fn := range u.Funcs {
		r.names[fn.Name] = fn.Name
		if opts.Mode == ModeType {
			r.names[fn.Name] = lowerFirst(u.Name) + upperFirst(fn.Name)
		}
	}

	f := jen.NewFile(opts.Package)
	f.HeaderComment(fmt.Sprintf("Code generated by %s. DO NOT EDIT.", opts.Generator))

	switch opts.Mode {
	case ModePackage:
		f.Comment("IsMatch reports whether input contains a match of the pattern.")
		docComments(f, u.Doc)
		f.Func().Id("IsMatch").Params(r.params(u.Entry)...).Bool().Block(r.block(u.Entry.Body)...)
	case ModeType:
		f.Commentf("%s is a matcher generated for one pattern.", u.Name)
		docComments(f, u.Doc)
		f.Type().Id(u.Name).Struct()
		f.Line()
		f.Comment("IsMatch reports whether input contains a match of the pattern.")
		f.Func().Params(jen.Id(u.Name)).Id("IsMatch").
			Params(r.params(u.Entry)...).Bool().Block(r.block(u.Entry.Body)...)
	default:
		return nil, fmt.Errorf("golang: unknown mode %s", opts.Mode)
	}

	for _, fn := range u.Funcs {
		f.Line()
		if doc := fn.Doc; doc != "" {
			if rest, ok := strings.CutPrefix(doc, fn.Name+" "); ok {
				doc = r.names[fn.Name] + " " + rest
			}
			f.Comment(doc)
		}
		f.Func().Id(r.names[fn.Name]).Params(r.params(fn)...).Add(typ(fn.Result)).Block(r.block(fn.Body)...)
	}
	if r.err != nil {
		return nil, r.err
	}
	return f, nil
}

// docComments writes each documentation line as its own comment line;
// blank lines keep the paragraph breaks of the payload.
func docComments(f *jen.File, lines []string) {
	if len(lines) == 0 {
		return
	}
	f.Comment("")
	for _, line := range lines {
		f.Comment(line)
	}
}

type renderer struct {
	names map[string]string
	err   error
}

func (r *renderer) fail(format string, args ...any) *jen.Statement {
	if r.err == nil {
		r.err = fmt.Errorf("golang: "+format, args...)
	}
	return jen.Null()
}

func (r *renderer) params(fn *code.Func) []jen.Code {
	out := make([]jen.Code, len(fn.Params))
	for i, p := range fn.Params {
		out[i] = jen.Id(p.Name).Add(typ(p.Type))
	}
	return out
}

func typ(t code.Type) jen.Code {
	switch t.Kind {
	case code.Bool:
		return jen.Bool()
	case code.Int:
		return jen.Int()
	case code.Byte:
		return jen.Byte()
	case code.Rune:
		return jen.Rune()
	case code.String:
		return jen.String()
	case code.Set:
		return jen.Op("*").Index(jen.Lit(t.Len)).Bool()
	}
	return jen.Null()
}

func (r *renderer) block(stmts []code.Stmt) []jen.Code {
	out := make([]jen.Code, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, r.stmt(s)...)
	}
	return out
}

func (r *renderer) stmt(s code.Stmt) []jen.Code {
	switch s := s.(type) {
	case *code.Return:
		if s.Value == nil {
			return one(jen.Return())
		}
		return one(jen.Return(r.expr(s.Value)))

	case *code.If:
		st := jen.If(r.expr(s.Cond)).Block(r.block(s.Then)...)
		if len(s.Else) > 0 {
			st.Else().Block(r.block(s.Else)...)
		}
		return one(st)

	case *code.For:
		return one(r.forStmt(s))

	case *code.RangeString:
		var head *jen.Statement
		switch {
		case s.Index == "" && s.Value == "":
			head = jen.Range()
		case s.Value == "":
			head = jen.Id(s.Index).Op(":=").Range()
		default:
			index := s.Index
			if index == "" {
				index = "_"
			}
			head = jen.List(jen.Id(index), jen.Id(s.Value)).Op(":=").Range()
		}
		return one(jen.For(head.Add(r.expr(s.Over))).Block(r.block(s.Body)...))

	case *code.Define:
		return one(jen.Id(s.Name).Op(":=").Add(r.expr(s.Value)))

	case *code.Assign:
		return one(r.expr(s.Target).Op(s.Op + "=").Add(r.expr(s.Value)))

	case *code.Inc:
		return one(jen.Id(s.Name).Op("++"))

	case *code.DecodeRune:
		return one(jen.List(jen.Id(s.Rune), jen.Id(s.Width)).Op(":=").
			Qual("unicode/utf8", "DecodeRuneInString").Call(r.expr(s.Input)))

	case *code.DeclSets:
		a, b := s.A+"Set", s.B+"Set"
		return []jen.Code{
			jen.Var().List(jen.Id(a), jen.Id(b)).Index(jen.Lit(s.Len)).Bool(),
			jen.List(jen.Id(s.A), jen.Id(s.B)).Op(":=").List(jen.Op("&").Id(a), jen.Op("&").Id(b)),
		}

	case *code.ClearSet:
		return one(jen.Clear(jen.Id(s.Name).Index(jen.Empty(), jen.Empty())))

	case *code.Swap:
		return one(jen.List(jen.Id(s.A), jen.Id(s.B)).Op("=").List(jen.Id(s.B), jen.Id(s.A)))

	case *code.Switch:
		cases := make([]jen.Code, len(s.Cases))
		for i, c := range s.Cases {
			values := make([]jen.Code, len(c.Values))
			for j, v := range c.Values {
				values[j] = r.expr(v)
			}
			cases[i] = jen.Case(values...).Block(r.block(c.Body)...)
		}
		return one(jen.Switch(r.expr(s.Tag)).Block(cases...))

	case *code.ExprStmt:
		return one(r.expr(s.X))
	}
	return one(r.fail("unknown statement %T", s))
}

func (r *renderer) forStmt(s *code.For) *jen.Statement {
	if s.Init == nil && s.Post == nil {
		if s.Cond == nil {
			return jen.For().Block(r.block(s.Body)...)
		}
		return jen.For(r.expr(s.Cond)).Block(r.block(s.Body)...)
	}
	clause := []jen.Code{jen.Empty(), jen.Empty(), jen.Empty()}
	if s.Init != nil {
		clause[0] = r.simple(s.Init)
	}
	if s.Cond != nil {
		clause[1] = r.expr(s.Cond)
	}
	if s.Post != nil {
		clause[2] = r.simple(s.Post)
	}
	return jen.For(clause...).Block(r.block(s.Body)...)
}

// simple renders a statement that must fit in a for clause.
func (r *renderer) simple(s code.Stmt) jen.Code {
	out := r.stmt(s)
	if len(out) != 1 {
		return r.fail("%T cannot appear in a for clause", s)
	}
	return out[0]
}

func one(c jen.Code) []jen.Code { return []jen.Code{c} }

// precedence follows the Go spec; higher binds tighter.
func precedence(op string) int {
	switch op {
	case "||":
		return 1
	case "&&":
		return 2
	case "==", "!=", "<", "<=", ">", ">=":
		return 3
	case "+", "-":
		return 4
	}
	return 0
}

func (r *renderer) expr(e code.Expr) *jen.Statement {
	switch e := e.(type) {
	case *code.BoolLit:
		return jen.Lit(e.V)
	case *code.IntLit:
		return jen.Lit(e.V)
	case *code.ByteLit:
		return jen.LitRune(rune(e.V))
	case *code.RuneLit:
		if !utf8.ValidRune(e.V) {
			// Surrogate range bounds have no rune literal.
			return jen.Lit(int(e.V))
		}
		return jen.LitRune(e.V)
	case *code.StrLit:
		return jen.Lit(e.V)
	case *code.Var:
		return jen.Id(e.Name)
	case *code.Len:
		return jen.Len(r.expr(e.X))
	case *code.Index:
		return r.operand(e.X).Index(r.expr(e.I))
	case *code.SliceFrom:
		return r.operand(e.X).Index(r.expr(e.Lo), jen.Empty())
	case *code.SliceRange:
		return r.operand(e.X).Index(r.expr(e.Lo), r.expr(e.Hi))
	case *code.Not:
		return jen.Op("!").Add(r.operand(e.X))
	case *code.Binary:
		p := precedence(e.Op)
		if p == 0 {
			return r.fail("unknown operator %q", e.Op)
		}
		return r.side(e.X, p, false).Op(e.Op).Add(r.side(e.Y, p, true))
	case *code.Call:
		args := make([]jen.Code, len(e.Args))
		for i, a := range e.Args {
			args[i] = r.expr(a)
		}
		if e.Pkg != "" {
			return jen.Qual(e.Pkg, e.Func).Call(args...)
		}
		name, ok := r.names[e.Func]
		if !ok {
			return r.fail("call of undefined function %q", e.Func)
		}
		return jen.Id(name).Call(args...)
	}
	return r.fail("unknown expression %T", e)
}

// side renders an operand of a binary operator with precedence p. Binary
// operators are left-associative, so a right operand of equal precedence
// needs parentheses.
func (r *renderer) side(e code.Expr, p int, right bool) *jen.Statement {
	b, ok := e.(*code.Binary)
	if !ok {
		return r.expr(e)
	}
	q := precedence(b.Op)
	if q < p || right && q == p {
		return jen.Parens(r.expr(e))
	}
	return r.expr(e)
}

// operand renders e as a unary or primary expression.
func (r *renderer) operand(e code.Expr) *jen.Statement {
	if _, ok := e.(*code.Binary); ok {
		return jen.Parens(r.expr(e))
	}
	return r.expr(e)
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[n:]
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}
