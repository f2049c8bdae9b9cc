package literal

import (
	"testing"

	"github.com/coregx/coregen/ir"
)

func parse(t *testing.T, pattern string) ir.Node {
	t.Helper()
	n, err := ir.Parse(pattern, ir.DefaultParseOptions())
	if err != nil {
		t.Fatalf("Failed to parse regex %q: %v", pattern, err)
	}
	return n
}

// Helper to check if sequence contains expected literals
func checkLiterals(t *testing.T, seq *Seq, expected []string, complete bool) {
	t.Helper()
	if !seq.IsFinite() {
		t.Fatalf("sequence is infinite, want %q", expected)
	}
	if seq.Len() != len(expected) {
		t.Errorf("Expected %d literals, got %d", len(expected), seq.Len())
		for i := 0; i < seq.Len(); i++ {
			t.Logf("  Got: %q", string(seq.Get(i).Bytes))
		}
		return
	}
	for i, want := range expected {
		lit := seq.Get(i)
		if string(lit.Bytes) != want {
			t.Errorf("literal %d = %q, want %q", i, lit.Bytes, want)
		}
		if lit.Complete != complete {
			t.Errorf("literal %q complete = %v, want %v", lit.Bytes, lit.Complete, complete)
		}
	}
}

func TestExtractPrefixes(t *testing.T) {
	tests := []struct {
		pattern  string
		expected []string
		complete bool
	}{
		{`hello`, []string{"hello"}, true},
		{`foo|bar`, []string{"foo", "bar"}, true},
		{`[ab]c`, []string{"ac", "bc"}, true},
		{`(?i)ab`, []string{"AB", "Ab", "aB", "ab"}, true},
		{`hello.*world`, []string{"hello"}, false},
		{`^foo`, []string{"foo"}, true},
		{`(foo)+`, []string{"foo"}, false},
		{`a{0}b`, []string{"b"}, true},
	}

	e := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			checkLiterals(t, e.ExtractPrefixes(parse(t, tt.pattern)), tt.expected, tt.complete)
		})
	}
}

func TestExtractSuffixes(t *testing.T) {
	tests := []struct {
		pattern  string
		expected []string
		complete bool
	}{
		{`world`, []string{"world"}, true},
		{`hello.*world`, []string{"world"}, false},
		{`(foo|bar)baz`, []string{"foobaz", "barbaz"}, true},
	}

	e := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			checkLiterals(t, e.ExtractSuffixes(parse(t, tt.pattern)), tt.expected, tt.complete)
		})
	}
}

func TestExtractInfinite(t *testing.T) {
	e := New(DefaultConfig())
	for _, pattern := range []string{`[a-z]+`, `\w`, `.`, `(a|[^b])c`, `.*foo`, `x*`} {
		if seq := e.ExtractPrefixes(parse(t, pattern)); seq.IsFinite() {
			t.Errorf("ExtractPrefixes(%q) = %s, want infinite", pattern, seq)
		}
	}
}

func TestExtractLimits(t *testing.T) {
	e := New(ExtractorConfig{MaxLiterals: 4, MaxLiteralLen: 3, MaxClassSize: 10})

	checkLiterals(t, e.ExtractPrefixes(parse(t, `abcdef`)), []string{"abc"}, false)
	checkLiterals(t, e.ExtractSuffixes(parse(t, `abcdef`)), []string{"def"}, false)

	// 3 x 3 = 9 combinations exceed MaxLiterals: stop after the first class.
	checkLiterals(t, e.ExtractPrefixes(parse(t, `[abc][def]`)), []string{"a", "b", "c"}, false)
}

func TestExtractUnmatchable(t *testing.T) {
	e := New(DefaultConfig())
	seq := e.ExtractPrefixes(parse(t, `a[^\x00-\x{10FFFF}]`))
	if !seq.IsFinite() || !seq.IsEmpty() {
		t.Errorf("ExtractPrefixes = %s, want an empty finite sequence", seq)
	}
}

func TestRequired(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{`foo\d+bar`, "foo"},
		{`(hello|help)\d`, "hel"},
		{`a+b`, "ab"},
		{`x(abc|zabc)y`, "abcy"},
		{`\d+`, ""},
		{`foo|bar`, ""},
		{`[^\x00-\x{10FFFF}]`, ""},
		{`(?:abc){2}`, "abc"},
	}

	e := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			if got := e.Required(parse(t, tt.pattern)); string(got) != tt.want {
				t.Errorf("Required(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestExtractSuffixesInfinite(t *testing.T) {
	e := New(DefaultConfig())
	for _, pattern := range []string{`foo.*`, `a\w`} {
		if seq := e.ExtractSuffixes(parse(t, pattern)); seq.IsFinite() {
			t.Errorf("ExtractSuffixes(%q) = %s, want infinite", pattern, seq)
		}
	}
}

func TestSeq_KeepFirstBytes(t *testing.T) {
	e := New(DefaultConfig())
	seq := e.ExtractPrefixes(parse(t, `(foo|bar)\d+`))
	if seq.Len() != 20 {
		t.Fatalf("ExtractPrefixes = %s, want 20 literals", seq)
	}
	checkLiterals(t, seq.KeepFirstBytes(3).Minimize(), []string{"foo", "bar"}, false)
}

func TestSeq_Minimize(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"foo", "foobar"}, []string{"foo"}},
		{[]string{"foobar", "foo"}, []string{"foo"}},
		{[]string{"hello", "world"}, []string{"hello", "world"}},
		{[]string{"ab", "ab", "abc", "b"}, []string{"ab", "b"}},
	}
	for _, tt := range tests {
		lits := make([]Literal, len(tt.in))
		for i, s := range tt.in {
			lits[i] = NewLiteral([]byte(s), true)
		}
		checkLiterals(t, NewSeq(lits...).Minimize(), tt.want, true)
	}
}
