package golang

import (
	"bytes"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"github.com/coregx/coregen/code"
)

func sampleUnit() *code.Unit {
	return &code.Unit{
		Name: "Sample",
		Doc:  []string{"Pattern: a+[α-ω]", "", "    IR line"},
		Entry: &code.Func{
			Name:   "IsMatch",
			Params: []code.Param{{Name: "input", Type: code.TypeString}},
			Result: code.TypeBool,
			Body: []code.Stmt{
				&code.If{
					Cond: &code.Not{X: &code.Call{Pkg: "strings", Func: "Contains", Args: []code.Expr{code.V("input"), &code.StrLit{V: "a"}}}},
					Then: []code.Stmt{code.Ret(code.False)},
				},
				&code.DeclSets{A: "cur", B: "next", Len: 2},
				&code.For{
					Init: &code.Define{Name: "at", Value: code.I(0)},
					Body: []code.Stmt{
						&code.ExprStmt{X: &code.Call{Func: "add", Args: []code.Expr{code.V("cur"), code.I(0)}}},
						&code.If{Cond: &code.Index{X: code.V("cur"), I: code.I(1)}, Then: []code.Stmt{code.Ret(code.True)}},
						&code.If{Cond: code.Op(code.V("at"), ">=", &code.Len{X: code.V("input")}), Then: []code.Stmt{code.Ret(code.False)}},
						&code.DecodeRune{Rune: "r", Width: "w", Input: &code.SliceFrom{X: code.V("input"), Lo: code.V("at")}},
						&code.If{
							Cond: code.And(&code.Index{X: code.V("cur"), I: code.I(0)}, &code.Call{Func: "inClass", Args: []code.Expr{code.V("r")}}),
							Then: []code.Stmt{&code.ExprStmt{X: &code.Call{Func: "add", Args: []code.Expr{code.V("next"), code.I(1)}}}},
						},
						&code.Swap{A: "cur", B: "next"},
						&code.ClearSet{Name: "next"},
						&code.Assign{Target: code.V("at"), Op: "+", Value: code.V("w")},
					},
				},
			},
		},
		Funcs: []*code.Func{
			{
				Name:   "add",
				Params: []code.Param{{Name: "set", Type: code.SetOf(2)}, {Name: "id", Type: code.TypeInt}},
				Result: code.TypeVoid,
				Body: []code.Stmt{
					&code.If{Cond: &code.Index{X: code.V("set"), I: code.V("id")}, Then: []code.Stmt{code.Ret(nil)}},
					&code.Assign{Target: &code.Index{X: code.V("set"), I: code.V("id")}, Value: code.True},
					&code.Switch{Tag: code.V("id"), Cases: []code.Case{{Values: []code.Expr{code.I(7)}, Body: []code.Stmt{code.Ret(nil)}}}},
				},
			},
			{
				Name:   "inClass",
				Doc:    "inClass reports whether c is in [α-ω].",
				Params: []code.Param{{Name: "c", Type: code.TypeRune}},
				Result: code.TypeBool,
				Body: []code.Stmt{
					code.Ret(code.And(
						code.Op(code.V("c"), ">=", &code.RuneLit{V: 'α'}),
						code.Or(code.Op(code.V("c"), "<=", &code.RuneLit{V: 'ω'}), code.Op(code.V("c"), "==", &code.RuneLit{V: 0xD800})),
					)),
				},
			},
		},
	}
}

// typeCheck parses and type-checks src as a standalone package.
func typeCheck(t *testing.T, src string) *ast.File {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "unit.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse: %v\n%s", err, src)
	}
	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	if _, err := conf.Check("unit", fset, []*ast.File{f}, nil); err != nil {
		t.Fatalf("type check: %v\n%s", err, src)
	}
	return f
}

func TestRender_Package(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleUnit(), Options{Package: "sample"}); err != nil {
		t.Fatal(err)
	}
	src := buf.String()
	f := typeCheck(t, src)

	for _, want := range []string{
		"// Code generated by coregen. DO NOT EDIT.",
		"package sample",
		"func IsMatch(input string) bool {",
		"// Pattern: a+[α-ω]",
		"var curSet, nextSet [2]bool",
		"cur, next := &curSet, &nextSet",
		"for at := 0; ; {",
		"clear(next[:])",
		"utf8.DecodeRuneInString(input[at:])",
		"c >= 'α' && (c <= 'ω' || c == 55296)",
		"func add(set *[2]bool, id int) {",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("rendered source lacks %q:\n%s", want, src)
		}
	}

	exported := 0
	for _, d := range f.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok && fd.Name.IsExported() {
			exported++
		}
	}
	if exported != 1 {
		t.Errorf("got %d exported functions, want 1", exported)
	}
}

func TestRender_Type(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleUnit(), Options{Package: "matchers", Mode: ModeType}); err != nil {
		t.Fatal(err)
	}
	src := buf.String()
	typeCheck(t, src)
	for _, want := range []string{
		"type Sample struct{}",
		"func (Sample) IsMatch(input string) bool {",
		"func sampleAdd(set *[2]bool, id int) {",
		"sampleInClass(r)",
		"// sampleInClass reports whether c is in [α-ω].",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("rendered source lacks %q:\n%s", want, src)
		}
	}
}

func TestRender_TwoTypesOnePackage(t *testing.T) {
	a, b := sampleUnit(), sampleUnit()
	b.Name = "Other"

	fset := token.NewFileSet()
	var files []*ast.File
	for i, u := range []*code.Unit{a, b} {
		var buf bytes.Buffer
		if err := Render(&buf, u, Options{Package: "p", Mode: ModeType}); err != nil {
			t.Fatal(err)
		}
		f, err := parser.ParseFile(fset, []string{"a.go", "b.go"}[i], buf.String(), 0)
		if err != nil {
			t.Fatal(err)
		}
		files = append(files, f)
	}
	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	if _, err := conf.Check("p", fset, files, nil); err != nil {
		t.Fatalf("two units in one package do not type-check: %v", err)
	}
}

func TestRender_Errors(t *testing.T) {
	tests := []struct {
		name string
		unit *code.Unit
		opts Options
	}{
		{"nil unit", nil, Options{Package: "p"}},
		{"bad package", sampleUnit(), Options{Package: "not a name"}},
		{"bad type name", &code.Unit{Name: "9x", Entry: sampleUnit().Entry}, Options{Package: "p", Mode: ModeType}},
		{"unknown mode", sampleUnit(), Options{Package: "p", Mode: Mode(9)}},
		{
			"undefined helper",
			&code.Unit{Name: "X", Entry: &code.Func{
				Name: "IsMatch", Params: []code.Param{{Name: "input", Type: code.TypeString}}, Result: code.TypeBool,
				Body: []code.Stmt{code.Ret(&code.Call{Func: "missing"})},
			}},
			Options{Package: "p"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Render(&buf, tt.unit, tt.opts); err == nil {
				t.Errorf("Render succeeded:\n%s", buf.String())
			}
		})
	}
}

func TestPrecedence(t *testing.T) {
	r := &renderer{names: map[string]string{}}
	tests := []struct {
		expr code.Expr
		want string
	}{
		{code.Op(code.Op(code.V("a"), "+", code.V("b")), "-", code.V("c")), "a + b - c"},
		{code.Op(code.V("a"), "-", code.Op(code.V("b"), "-", code.V("c"))), "a - (b - c)"},
		{code.Or(code.And(code.V("a"), code.V("b")), code.V("c")), "a && b || c"},
		{code.And(code.Or(code.V("a"), code.V("b")), code.V("c")), "(a || b) && c"},
		{&code.Not{X: code.Op(code.V("a"), "==", code.V("b"))}, "!(a == b)"},
		{&code.Index{X: code.V("s"), I: code.Op(code.V("i"), "+", code.I(1))}, "s[i+1]"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := r.expr(tt.expr).Render(&buf); err != nil {
			t.Fatal(err)
		}
		got := strings.Join(strings.Fields(buf.String()), " ")
		want := strings.Join(strings.Fields(tt.want), " ")
		if strings.ReplaceAll(got, " ", "") != strings.ReplaceAll(want, " ", "") {
			t.Errorf("rendered %q, want %q", buf.String(), tt.want)
		}
	}
}

func TestMode_String(t *testing.T) {
	if ModePackage.String() != "package" || ModeType.String() != "type" || Mode(7).String() != "Mode(7)" {
		t.Error("unexpected mode names")
	}
}
