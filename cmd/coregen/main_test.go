package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runArgs(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errs bytes.Buffer
	code = run(append([]string{"coregen"}, args...), &out, &printer{w: &errs})
	return code, out.String(), errs.String()
}

func TestRun_Pattern(t *testing.T) {
	code, stdout, stderr := runArgs(t, "--name=Phone", `--pattern=\d{3}-\d{4}`)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	for _, want := range []string{"package phone", "func IsMatch(input string) bool {"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output lacks %q:\n%s", want, stdout)
		}
	}
}

func TestRun_PatternOptions(t *testing.T) {
	out := filepath.Join(t.TempDir(), "m", "greeting.go")
	code, _, stderr := runArgs(t,
		"--name=Greeting", "--pattern=hello", "-i",
		"--package=m", "--type", "--out="+out,
	)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	src, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"package m", "func (Greeting) IsMatch(input string) bool {", "Options: case_insensitive"} {
		if !strings.Contains(string(src), want) {
			t.Errorf("output lacks %q:\n%s", want, src)
		}
	}
}

func TestRun_CompileError(t *testing.T) {
	code, stdout, stderr := runArgs(t, "--name=Bad", `--pattern=ab\8`)
	if code != 1 {
		t.Errorf("exit %d, want 1", code)
	}
	if stdout != "" {
		t.Errorf("wrote output on failure:\n%s", stdout)
	}
	want := "error: syntax error: invalid escape sequence: `\\8`\n\tab\\8\n\t  ^^\n"
	if stderr != want {
		t.Errorf("stderr = %q, want %q", stderr, want)
	}
}

func TestRun_ArgumentErrors(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, "a value for --name must be specified"},
		{[]string{"--name=A"}, "a value for --pattern must be specified"},
		{[]string{"--manifest=m.yaml", "--pattern=a"}, "--manifest cannot be combined"},
		{[]string{"--manifest=m.yaml", "--crlf"}, "--crlf has no effect with --manifest"},
		{[]string{"--name=A", "--pattern=a", "extra"}, "unexpected parameter(s): extra"},
		{[]string{"--bogus"}, "bogus"},
	}
	for _, tt := range tests {
		code, _, stderr := runArgs(t, tt.args...)
		if code != 2 {
			t.Errorf("%q: exit %d, want 2", tt.args, code)
		}
		if !strings.Contains(stderr, tt.want) {
			t.Errorf("%q: stderr lacks %q:\n%s", tt.args, tt.want, stderr)
		}
	}
}

func TestRun_Help(t *testing.T) {
	code, _, stderr := runArgs(t, "--help")
	if code != 0 {
		t.Errorf("exit %d, want 0", code)
	}
	if !strings.Contains(stderr, "--manifest") {
		t.Errorf("usage lacks --manifest:\n%s", stderr)
	}
}

func writeManifest(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_Manifest(t *testing.T) {
	path := writeManifest(t, "coregen.yaml", `package: matchers
type: true
matchers:
  - name: Phone
    pattern: '\d{3}-\d{4}'
  - name: Word
    pattern: '\bword\b'
`)
	code, stdout, stderr := runArgs(t, "--manifest="+path)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	dir := filepath.Dir(path)
	for _, file := range []string{"phone_coregen.go", "word_coregen.go"} {
		if _, err := os.Stat(filepath.Join(dir, file)); err != nil {
			t.Error(err)
		}
	}
	if !strings.Contains(stdout, "Phone\t") {
		t.Errorf("summary lacks Phone:\n%s", stdout)
	}
}

func TestRun_ManifestDiagnostics(t *testing.T) {
	path := writeManifest(t, "coregen.yaml", `matchers:
  - name: Good
    pattern: a
  - name: Bad
    pattern: 'x**'
`)
	code, _, stderr := runArgs(t, "--manifest="+path)
	if code != 1 {
		t.Errorf("exit %d, want 1", code)
	}
	want := path + ":5:16: error: syntax error: invalid nested repetition operator: `**`\n"
	if stderr != want {
		t.Errorf("stderr = %q, want %q", stderr, want)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(path), "good")); !os.IsNotExist(err) {
		t.Error("output written despite a failing matcher")
	}
}

func TestPrinter_Color(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{w: &buf, color: true}
	p.compileError(os.ErrInvalid)
	if !strings.HasPrefix(buf.String(), ansiRed+"error:"+ansiReset) {
		t.Errorf("colour output = %q", buf.String())
	}
}
