package emit

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/coregx/coregen/code"
	"github.com/coregx/coregen/code/golang"
	"github.com/coregx/coregen/ir"
)

// compilePattern parses pattern with default options and emits it.
func compilePattern(t *testing.T, pattern string) *Program {
	t.Helper()
	return compileWith(t, pattern, ir.DefaultParseOptions(), DefaultConfig())
}

func compileWith(t *testing.T, pattern string, opts ir.ParseOptions, cfg Config) *Program {
	t.Helper()
	node, err := ir.Parse(pattern, opts)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", pattern, err)
	}
	prog, err := Compile(node, cfg)
	if err != nil {
		t.Fatalf("Compile(%q) failed: %v", pattern, err)
	}
	return prog
}

func isMatch(t *testing.T, prog *Program, input string) bool {
	t.Helper()
	got, err := code.Eval(prog.Unit, input)
	if err != nil {
		t.Fatalf("Eval(%q) failed: %v", input, err)
	}
	return got
}

var oraclePatterns = []string{
	// Empty and literals
	``,
	`a`,
	`foo`,
	`日本`,
	`a.b`,
	`(?s)a.b`,

	// Classes
	`\d`,
	`\D`,
	`\w`,
	`\s`,
	`[a-z]`,
	`[^a-z]`,
	`[acegikmoqsuwy]`,
	`[α-ω]`,
	`\p{Greek}`,
	`\p{Lu}`,
	`.`,
	`(?s).`,
	`[^\x00-\x{10FFFF}]`,

	// Captures
	`(a)`,
	`a(b)c`,
	`(?P<word>foo)`,
	`((a)(b))`,

	// Anchors and boundaries
	`^`,
	`$`,
	`^$`,
	`^foo`,
	`foo$`,
	`^foo$`,
	`(?m)^bar`,
	`(?m)foo$`,
	`(?m)^$`,
	`\A\z`,
	`\b`,
	`\B`,
	`\bfoo\b`,
	`\Bo\B`,
	`a\b`,

	// Repetition
	`a*`,
	`a+`,
	`a?`,
	`a{2}`,
	`a{3,5}`,
	`(ab){2,}`,
	`(?:ab){2}`,
	`[ab]{3}`,
	`\d+`,
	`a*?b`,
	`(a|b)+c`,
	`(\ba){2}`,
	`x*y+z?`,

	// Concatenation
	`a\d`,
	`foo\d+bar`,
	`[a-c]x[a-c]`,
	`a[^\x00-\x{10FFFF}]`,
	`.*foo.*`,
	`h.llo`,

	// Alternation
	`foo|bar`,
	`foo|foobar|xfoo`,
	`a|\d`,
	`^a|b$`,
	`cat|dog|bird`,
	`(?:foo|[^\x00-\x{10FFFF}])`,
	`x(?:foo|bar)y`,

	// Flags
	`(?i)hello`,
	`(?i)k`,
	`(?i)[a-c]x`,
	`(?m)^line2$`,
	`(?U)a+b`,
}

var oracleInputs = []string{
	"",
	"a",
	"b",
	"ab",
	"abab",
	"ababab",
	"aaa",
	"aaaaa",
	"foo",
	"xxfooyy",
	"foobar",
	"xfoo",
	"bar",
	"1",
	"a1",
	"a1b2",
	"foo123bar",
	"hello",
	"HeLLo world",
	"hallo",
	"line1\nline2\n",
	"line1\nline2",
	"\n",
	"a\nb",
	"αβγ",
	"ΑΒΓ",
	"日本語",
	"Kelvin K",
	"word foo word",
	"foobaz",
	"cat",
	"bird dog",
	"xfooy",
	"xbary",
	"abc",
	"ac",
	"bbc",
	"xyz",
	"yy",
	" _ ",
	"éa",
	"b\xffa",
	"\xff",
	"\xe6\x97",
}

func TestCompile_MatchesStdlib(t *testing.T) {
	for _, pattern := range oraclePatterns {
		t.Run(pattern, func(t *testing.T) {
			re := regexp.MustCompile(pattern)
			prog := compilePattern(t, pattern)
			for _, input := range oracleInputs {
				want := re.MatchString(input)
				if got := isMatch(t, prog, input); got != want {
					t.Errorf("IsMatch(%q) = %v, regexp says %v (strategy %s)", input, got, want, prog.Strategy)
				}
			}
		})
	}
}

func TestCompile_Strategy(t *testing.T) {
	tests := []struct {
		pattern string
		unicode bool
		want    Strategy
	}{
		{``, true, UseConstTrue},
		{`a*`, true, UseConstTrue},
		{`^`, true, UseConstTrue},
		{`(?m)$`, true, UseConstTrue},
		{`[^\x00-\x{10FFFF}]`, true, UseConstFalse},
		{`a[^\x00-\x{10FFFF}]b`, true, UseConstFalse},
		{`a`, true, UseByteScan},
		{`a+`, true, UseByteScan},
		{`foo`, true, UseLiteralWindow},
		{`(ab){2}`, true, UseLiteralWindow},
		{`a(b)c`, true, UseLiteralWindow},
		{`\d`, true, UseUnicodeClass},
		{`[a-z]`, true, UseUnicodeClass},
		{`[a-z]`, false, UseByteClass},
		{`[x]`, false, UseByteScan},
		{`\b`, true, UseWordScan},
		{`\B`, true, UseWordScan},
		{`foo|bar`, true, UseAlternation},
		{`a\d`, true, UseNFA},
		{`^foo`, true, UseNFA},
		{`(?i)hello`, true, UseNFA},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			opts := ir.DefaultParseOptions()
			opts.Unicode = tt.unicode
			prog := compileWith(t, tt.pattern, opts, DefaultConfig())
			if prog.Strategy != tt.want {
				t.Errorf("Strategy = %s, want %s", prog.Strategy, tt.want)
			}
			if got := prog.Strategy.IsConstant(); got != (tt.want == UseConstTrue || tt.want == UseConstFalse) {
				t.Errorf("IsConstant() = %v", got)
			}
			if tt.want != UseNFA && prog.States != 0 {
				t.Errorf("States = %d, want 0 without an automaton", prog.States)
			}
		})
	}
}

func TestCompile_Properties(t *testing.T) {
	tests := []struct {
		name    string
		node    ir.Node
		matches map[string]bool
	}{
		{
			name:    "empty",
			node:    ir.NewEmpty(),
			matches: map[string]bool{"": true, "anything": true},
		},
		{
			name:    "unmatchable class",
			node:    ir.NewClass(ir.ClassUnicode, nil),
			matches: map[string]bool{"": false, "nonempty": false},
		},
		{
			name:    "unmatchable inside repetition",
			node:    ir.NewRepetition(2, ir.Unbounded, true, ir.NewClass(ir.ClassBytes, nil)),
			matches: map[string]bool{"": false, "aa": false},
		},
		{
			name:    "literal foo",
			node:    ir.NewLiteral([]byte("foo")),
			matches: map[string]bool{"foo": true, "xxfooyy": true, "bar": false, "": false, "fo": false},
		},
		{
			name:    "digit class",
			node:    ir.NewClass(ir.ClassBytes, []ir.Range{{Lo: '0', Hi: '9'}}),
			matches: map[string]bool{"1": true, "a": false, "": false, "ab7": true},
		},
		{
			name: "byte class above ASCII",
			node: ir.NewClass(ir.ClassBytes, []ir.Range{{Lo: 0x80, Hi: 0xFF}}),
			// Raw bytes: any non-ASCII byte is a member.
			matches: map[string]bool{"é": true, "abc": false, "\xff": true},
		},
		{
			name:    "unicode class",
			node:    ir.NewClass(ir.ClassUnicode, []ir.Range{{Lo: 'α', Hi: 'ω'}}),
			matches: map[string]bool{"xβx": true, "abc": false, "": false, "\xce": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Compile(tt.node, DefaultConfig())
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}
			for input, want := range tt.matches {
				if got := isMatch(t, prog, input); got != want {
					t.Errorf("IsMatch(%q) = %v, want %v", input, got, want)
				}
			}
		})
	}
}

func TestCompile_CaptureTransparency(t *testing.T) {
	for _, pattern := range oraclePatterns {
		t.Run(pattern, func(t *testing.T) {
			node, err := ir.Parse(pattern, ir.DefaultParseOptions())
			if err != nil {
				t.Fatal(err)
			}
			plain, err := Compile(node, DefaultConfig())
			if err != nil {
				t.Fatal(err)
			}
			wrapped, err := Compile(ir.NewCapture(1, "", node), DefaultConfig())
			if err != nil {
				t.Fatal(err)
			}
			for _, input := range oracleInputs {
				if a, b := isMatch(t, plain, input), isMatch(t, wrapped, input); a != b {
					t.Errorf("input %q: P = %v, (P) = %v", input, a, b)
				}
			}
		})
	}
}

func TestCompile_Deterministic(t *testing.T) {
	for _, pattern := range []string{`foo|bar|baz`, `a\d+b`, `[acegikmoqsuwy]x[acegikmoqsuwy]`, `\bfoo\b`} {
		a := render(t, compilePattern(t, pattern))
		b := render(t, compilePattern(t, pattern))
		if !bytes.Equal(a, b) {
			t.Errorf("%q: two compilations differ:\n%s\n---\n%s", pattern, a, b)
		}
	}
}

// render produces Go source for prog, which also checks that every
// emitted construct has a rendering.
func render(t *testing.T, prog *Program) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := golang.Render(&buf, prog.Unit, golang.Options{Package: "m"}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return buf.Bytes()
}

func TestCompile_Renders(t *testing.T) {
	for _, pattern := range oraclePatterns {
		src := render(t, compilePattern(t, pattern))
		if !bytes.Contains(src, []byte("func IsMatch(input string) bool {")) {
			t.Errorf("%q: rendered source lacks IsMatch:\n%s", pattern, src)
		}
	}
}

func TestCompile_SharedHelpers(t *testing.T) {
	// Both classes have more ranges than are tested inline and are equal,
	// so they share one helper.
	prog := compilePattern(t, `[acegikmoqsuwy]x[acegikmoqsuwy]`)
	var classes int
	for _, f := range prog.Unit.Funcs {
		if strings.HasPrefix(f.Name, "class") {
			classes++
		}
	}
	if classes != 1 {
		t.Errorf("got %d class helpers, want 1", classes)
	}

	prog = compilePattern(t, `\bfoo\b|\Bbar`)
	seen := make(map[string]bool)
	for _, f := range prog.Unit.Funcs {
		if seen[f.Name] {
			t.Errorf("helper %s emitted twice", f.Name)
		}
		seen[f.Name] = true
	}
	for _, name := range []string{"wordBefore", "wordAfter", "isWordByte"} {
		if !seen[name] {
			t.Errorf("missing helper %s", name)
		}
	}
}

func TestCompile_Prefilter(t *testing.T) {
	prog := compilePattern(t, `foo\d+`)
	first, ok := prog.Unit.Entry.Body[0].(*code.If)
	if !ok {
		t.Fatalf("first statement is %T, want a prefilter *code.If", prog.Unit.Entry.Body[0])
	}
	not, ok := first.Cond.(*code.Not)
	if !ok {
		t.Fatalf("prefilter condition is %T, want *code.Not", first.Cond)
	}
	call, ok := not.X.(*code.Call)
	if !ok || call.Pkg != "strings" || call.Func != "Contains" {
		t.Fatalf("prefilter does not call strings.Contains: %#v", not.X)
	}

	cfg := DefaultConfig()
	cfg.EnablePrefilter = false
	prog = compileWith(t, `foo\d+`, ir.DefaultParseOptions(), cfg)
	if _, ok := prog.Unit.Entry.Body[0].(*code.If); ok {
		t.Error("prefilter emitted with EnablePrefilter = false")
	}
	if !isMatch(t, prog, "xfoo12") || isMatch(t, prog, "foo") {
		t.Error("automaton without prefilter gives wrong answers")
	}
}

func TestCompile_PrefilterAlternates(t *testing.T) {
	prog := compilePattern(t, `(foo|bar)\d+`)
	first, ok := prog.Unit.Entry.Body[0].(*code.If)
	if !ok {
		t.Fatalf("first statement is %T, want a prefilter *code.If", prog.Unit.Entry.Body[0])
	}
	not, ok := first.Cond.(*code.Not)
	if !ok {
		t.Fatalf("prefilter condition is %T, want *code.Not", first.Cond)
	}
	if or, ok := not.X.(*code.Binary); !ok || or.Op != "||" {
		t.Fatalf("prefilter does not test alternates: %#v", not.X)
	}
	for input, want := range map[string]bool{"bar7": true, "xfoo12": true, "foo": false, "baz1": false} {
		if got := isMatch(t, prog, input); got != want {
			t.Errorf("IsMatch(%q) = %v, want %v", input, got, want)
		}
	}

	// Too many prefixes: no guard.
	prog = compilePattern(t, `[a-f]\d`)
	if _, ok := prog.Unit.Entry.Body[0].(*code.If); ok {
		t.Error("prefilter emitted for six alternates")
	}
}

func TestCompile_InlineRanges(t *testing.T) {
	// A single inline range keeps every class large enough for a helper,
	// which exercises the decision tree on the oracle patterns.
	cfg := DefaultConfig()
	cfg.InlineRanges = 1
	for _, pattern := range []string{`\w`, `[acegikmoqsuwy]`, `\p{Lu}`, `[a-z0-9_]+x`, `(?i)k`} {
		re := regexp.MustCompile(pattern)
		prog := compileWith(t, pattern, ir.DefaultParseOptions(), cfg)
		for _, input := range oracleInputs {
			if got, want := isMatch(t, prog, input), re.MatchString(input); got != want {
				t.Errorf("%q: IsMatch(%q) = %v, want %v", pattern, input, got, want)
			}
		}
	}
}

func TestCompile_Errors(t *testing.T) {
	deep := ir.NewLiteral([]byte("a"))
	for i := 0; i < 20; i++ {
		deep = ir.NewCapture(i+1, "", deep)
	}

	small := DefaultConfig()
	small.MaxStates = 4
	shallow := DefaultConfig()
	shallow.MaxDepth = 10

	mustParse := func(p string) ir.Node {
		n, err := ir.Parse(p, ir.DefaultParseOptions())
		if err != nil {
			t.Fatal(err)
		}
		return n
	}

	tests := []struct {
		name string
		node ir.Node
		cfg  Config
		want error
	}{
		{"nil node", nil, DefaultConfig(), ErrUnsupported},
		{"too many states", mustParse(`a\d+b[xyz]{3}`), small, ErrTooComplex},
		{"too deep", deep, shallow, ErrTooComplex},
		{
			"wide byte class in automaton",
			ir.NewConcat([]ir.Node{
				ir.NewClass(ir.ClassBytes, []ir.Range{{Lo: 0x80, Hi: 0xFF}}),
				ir.NewLiteral([]byte("a")),
			}),
			DefaultConfig(),
			ErrUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Compile(tt.node, tt.cfg)
			if err == nil {
				t.Fatalf("Compile succeeded with strategy %s, want error", prog.Strategy)
			}
			if prog != nil {
				t.Error("partial program returned with an error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error %v is not %v", err, tt.want)
			}
			var emitErr *Error
			if !errors.As(err, &emitErr) {
				t.Errorf("error %T is not an *Error", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"default", func(*Config) {}, ""},
		{"states low", func(c *Config) { c.MaxStates = 1 }, "MaxStates"},
		{"states high", func(c *Config) { c.MaxStates = 1 << 20 }, "MaxStates"},
		{"depth low", func(c *Config) { c.MaxDepth = 2 }, "MaxDepth"},
		{"inline zero", func(c *Config) { c.InlineRanges = 0 }, "InlineRanges"},
		{"prefilter len", func(c *Config) { c.MinPrefilterLen = 0 }, "MinPrefilterLen"},
		{"prefilter off", func(c *Config) { c.EnablePrefilter = false; c.MinPrefilterLen = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
			if _, err := Compile(ir.NewEmpty(), cfg); !errors.As(err, &cfgErr) {
				t.Errorf("Compile accepted an invalid config: %v", err)
			}
		})
	}
}

func TestStrategy_String(t *testing.T) {
	for s := UseConstFalse; s <= UseNFA; s++ {
		if str := s.String(); str == "Unknown" || !strings.HasPrefix(str, "Use") {
			t.Errorf("Strategy(%d).String() = %q", s, str)
		}
	}
	if got := Strategy(99).String(); got != "Unknown" {
		t.Errorf("Strategy(99).String() = %q, want Unknown", got)
	}
}
