package manifest

import (
	"errors"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// copyManifest copies a testdata manifest into a fresh directory so
// generated files land there.
func copyManifest(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// checkDir parses and type-checks every Go file in dir as one package.
func checkDir(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.go"))
	if err != nil || len(matches) == 0 {
		t.Fatalf("no Go files in %s: %v", dir, err)
	}
	fset := token.NewFileSet()
	var files []*ast.File
	for _, path := range matches {
		f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			t.Fatal(err)
		}
		files = append(files, f)
	}
	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	if _, err := conf.Check(files[0].Name.Name, fset, files, nil); err != nil {
		t.Fatalf("%s does not type-check: %v", dir, err)
	}
}

func TestGenerate_TypeMode(t *testing.T) {
	path := copyManifest(t, "good.yaml")
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	results, err := Generate(m, GenerateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	dir := filepath.Dir(path)
	for _, r := range results {
		src, err := os.ReadFile(r.Path)
		if err != nil {
			t.Fatalf("%s: %v", r.Entry.Name, err)
		}
		if want := "func (" + r.Entry.Name + ") IsMatch(input string) bool {"; !strings.Contains(string(src), want) {
			t.Errorf("%s lacks %q", r.Path, want)
		}
		if filepath.Dir(r.Path) != dir {
			t.Errorf("%s written outside the manifest directory", r.Path)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "level_gen.go")); err != nil {
		t.Errorf("explicit output not honored: %v", err)
	}
	checkDir(t, dir)

	greeting := results[1].Unit
	if !greeting.IsMatch("say HELLO") {
		t.Error("case_insensitive not applied to Greeting")
	}
}

func TestGenerate_PackageMode(t *testing.T) {
	path := copyManifest(t, "good.hujson")
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Generate(m, GenerateOptions{}); err != nil {
		t.Fatal(err)
	}

	dir := filepath.Dir(path)
	for _, sub := range []string{"digits", "words"} {
		checkDir(t, filepath.Join(dir, sub))
	}
	src, err := os.ReadFile(filepath.Join(dir, "words", "word_coregen.go"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(src), "package words") {
		t.Errorf("word_coregen.go has the wrong package clause:\n%s", src)
	}
}

func TestGenerate_DryRun(t *testing.T) {
	path := copyManifest(t, "good.yaml")
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	results, err := Generate(m, GenerateOptions{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if _, err := os.Stat(r.Path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("dry run wrote %s", r.Path)
		}
	}
}

func TestGenerate_Diagnostics(t *testing.T) {
	tests := []struct {
		file string
		want []Diagnostic
	}{
		{
			"bad.yaml",
			[]Diagnostic{
				{Line: 7, Column: 17, Name: "Broken", Pattern: `ab\8`, Message: "syntax error: invalid escape sequence: `\\8`"},
				{Line: 9, Column: 14, Name: "Open", Pattern: `a(b`, Message: "syntax error: missing closing ): `a(b`"},
				{Line: 10, Column: 11, Name: "9lives", Pattern: `x`},
				{Line: 13, Column: 14, Name: "Escaped", Pattern: `a\8`, Message: "syntax error: invalid escape sequence: `\\8`"},
			},
		},
		{
			"bad.hujson",
			[]Diagnostic{
				{Line: 6, Column: 33, Name: "Broken", Pattern: `ab\8`},
				{Line: 7, Column: 34, Name: "Plain", Pattern: `x**`, Message: "syntax error: invalid nested repetition operator: `**`"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := copyManifest(t, tt.file)
			m, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			_, err = Generate(m, GenerateOptions{})
			var diags Diagnostics
			if !errors.As(err, &diags) {
				t.Fatalf("Generate error = %v, want Diagnostics", err)
			}
			if len(diags) != len(tt.want) {
				t.Fatalf("got %d diagnostics, want %d:\n%v", len(diags), len(tt.want), err)
			}
			for i, want := range tt.want {
				got := diags[i]
				if got.File != path || got.Line != want.Line || got.Column != want.Column {
					t.Errorf("diagnostic %d at %s:%d:%d, want %d:%d", i, got.File, got.Line, got.Column, want.Line, want.Column)
				}
				if got.Name != want.Name || got.Pattern != want.Pattern {
					t.Errorf("diagnostic %d names %s %q, want %s %q", i, got.Name, got.Pattern, want.Name, want.Pattern)
				}
				if want.Message != "" && got.Message != want.Message {
					t.Errorf("diagnostic %d message = %q, want %q", i, got.Message, want.Message)
				}
			}

			// A failed manifest writes nothing, not even the entries that
			// compiled.
			entries, err := os.ReadDir(filepath.Dir(path))
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 1 {
				t.Errorf("directory holds %d files after a failed generate, want only the manifest", len(entries))
			}
		})
	}
}

func TestCompile_PackageConflicts(t *testing.T) {
	tests := []struct {
		name, data, want string
	}{
		{
			"shared package",
			"package: p\nmatchers:\n  - {name: A, pattern: a}\n  - {name: B, pattern: b}\n",
			"matchers A and B both declare IsMatch",
		},
		{
			"mixed packages",
			"type: true\nmatchers:\n  - {name: A, pattern: a}\n  - {name: B, pattern: b}\n",
			"matcher B is in package b but A puts package a in",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte(tt.data), filepath.Join(t.TempDir(), "m.yaml"))
			if err != nil {
				t.Fatal(err)
			}
			_, err = Compile(m)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Compile error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestDiagnostics_Error(t *testing.T) {
	ds := Diagnostics{
		{File: "m.yaml", Line: 1, Column: 2, Message: "first"},
		{File: "m.yaml", Line: 3, Column: 4, Message: "second"},
	}
	if got, want := ds.Error(), "m.yaml:1:2: first\nm.yaml:3:4: second"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got, want := ds[:1].Error(), "m.yaml:1:2: first"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
