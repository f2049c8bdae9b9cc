package emit

import (
	"errors"
	"regexp"
	"testing"
	"unicode/utf8"

	"github.com/coregx/coregen/code"
	"github.com/coregx/coregen/ir"
)

// FuzzIsMatchStdlib compares generated predicates against regexp.
//
// Run with:
//
//	go test ./emit -fuzz=FuzzIsMatchStdlib -fuzztime=30s
func FuzzIsMatchStdlib(f *testing.F) {
	for _, p := range oraclePatterns {
		f.Add(p, "xxfooyy")
	}
	for _, in := range oracleInputs {
		f.Add(`a\d|\bfoo\b`, in)
	}

	f.Fuzz(func(t *testing.T, pattern, input string) {
		if len(pattern) > 64 || len(input) > 256 {
			t.Skip()
		}
		// Literal search is byte-exact; regexp sees invalid UTF-8 as U+FFFD.
		if !utf8.ValidString(pattern) || !utf8.ValidString(input) {
			t.Skip()
		}

		re, err := regexp.Compile(pattern)
		if err != nil {
			t.Skip()
		}
		node, err := ir.Parse(pattern, ir.DefaultParseOptions())
		if err != nil {
			t.Fatalf("regexp accepts %q but Parse fails: %v", pattern, err)
		}
		prog, err := Compile(node, DefaultConfig())
		if errors.Is(err, ErrTooComplex) {
			t.Skip()
		}
		if err != nil {
			t.Fatalf("Compile(%q) failed: %v", pattern, err)
		}

		got, err := code.Eval(prog.Unit, input)
		if err != nil {
			t.Fatalf("Eval failed: %v", err)
		}
		if want := re.MatchString(input); got != want {
			t.Errorf("%q on %q: got %v, regexp says %v (strategy %s)", pattern, input, got, want, prog.Strategy)
		}
	})
}
