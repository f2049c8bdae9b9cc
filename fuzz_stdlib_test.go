// Fuzz tests comparing generated matchers against stdlib regexp.
//
// Run with:
//
//	go test -fuzz=FuzzIsMatchOptions -fuzztime=30s
package coregen

import (
	"errors"
	"regexp"
	"testing"
	"unicode/utf8"
)

// Common regex patterns for seeding the fuzz corpus
var seedPatterns = []string{
	// Literals
	`hello`,
	`foo`,

	// Character classes
	`\d+`,
	`\D`,
	`\w+`,
	`\s`,
	`[a-z]+`,
	`[^0-9]`,

	// Anchors
	`^hello`,
	`world$`,
	`^$`,
	`\bhello\b`,

	// Quantifiers
	`a*`,
	`a+?`,
	`a{2,5}`,

	// Alternation and groups
	`foo|bar|baz`,
	`(a|b)+c`,
	`(?P<name>a)`,

	// Complex patterns
	`\d{3}-\d{4}`,
	`[a-z]+@[a-z]+\.[a-z]+`,
	`.*\.txt$`,
	`^[a-z]+$`,

	// Unicode
	`[日本語]+`,
	`\p{L}+`,
}

// Common inputs for seeding the fuzz corpus
var seedInputs = []string{
	"",
	"hello world",
	"abc123def",
	"user@example.com",
	"file.txt",
	"日本語",
	"hello\nworld",
	"line\r\nnext",
	"UPPERCASE",
	"555-1234",
}

// flagPrefix returns the inline flags regexp needs to see the same
// options, and the options themselves.
func flagPrefix(flags uint8) (string, Options) {
	opts := DefaultOptions()
	prefix := ""
	if flags&1 != 0 {
		opts.CaseInsensitive = true
		prefix += "i"
	}
	if flags&2 != 0 {
		opts.MultiLine = true
		prefix += "m"
	}
	if flags&4 != 0 {
		opts.DotMatchesNewLine = true
		prefix += "s"
	}
	if prefix == "" {
		return "", opts
	}
	return "(?" + prefix + ")", opts
}

// FuzzIsMatchOptions compares Compile with the i, m and s options against
// regexp with the equivalent inline flags.
func FuzzIsMatchOptions(f *testing.F) {
	for i, p := range seedPatterns {
		f.Add(p, seedInputs[i%len(seedInputs)], uint8(i))
	}

	f.Fuzz(func(t *testing.T, pattern, input string, flags uint8) {
		if len(pattern) > 64 || len(input) > 256 {
			t.Skip()
		}
		if !utf8.ValidString(pattern) || !utf8.ValidString(input) {
			t.Skip()
		}

		prefix, opts := flagPrefix(flags)
		re, err := regexp.Compile(prefix + pattern)
		if err != nil {
			t.Skip()
		}
		u, err := Compile(pattern, "Fuzz", opts)
		if errors.Is(err, ErrTooComplex) {
			t.Skip()
		}
		if err != nil {
			t.Fatalf("Compile(%q) failed: %v", pattern, err)
		}

		if got, want := u.IsMatch(input), re.MatchString(input); got != want {
			t.Errorf("%s%s on %q: got %v, regexp says %v", prefix, pattern, input, got, want)
		}
	})
}
