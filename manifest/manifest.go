// Package manifest loads coregen manifests and generates the matchers
// they declare.
//
// A manifest binds unit names to patterns. It is written in YAML:
//
//	package: matchers
//	type: true
//	matchers:
//	  - name: Phone
//	    pattern: '\d{3}-\d{4}'
//	  - name: Greeting
//	    pattern: hello
//	    case_insensitive: true
//	    output: greeting_gen.go
//
// or in HuJSON (JSON with comments and trailing commas):
//
//	{
//	    "package": "matchers",
//	    "type": true,
//	    "matchers": [
//	        {"name": "Phone", "pattern": "\\d{3}-\\d{4}"}, // NANP local
//	    ],
//	}
//
// Every value keeps its position in the file, so a pattern that fails to
// compile is reported at the line and column of the offending expression
// inside the pattern literal.
package manifest

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/coregx/coregen"
)

// Manifest is a parsed manifest file.
type Manifest struct {
	// Path is the file the manifest was read from. Relative outputs are
	// resolved against its directory.
	Path string

	// Package is the package clause for entries that do not set one.
	Package string

	// TypeName renders every entry as a type with an IsMatch method.
	TypeName bool

	// MaxStates overrides the automaton size limit, 0 for the default.
	MaxStates int

	Entries []*Entry
}

// Position is a 1-based line and column in a manifest file. Columns count
// characters, not bytes.
type Position struct {
	Line, Column int
}

// String formats the position as line:column.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Entry declares one matcher.
type Entry struct {
	Name    string
	Pattern string
	Options coregen.Options

	// Output is the file to write, relative to the manifest directory.
	Output string

	Pos        Position
	NamePos    Position
	PatternPos Position

	// patternShift is the number of columns between PatternPos and the
	// first character of Pattern, or -1 when escapes or line breaks in
	// the literal make offsets inside the pattern unmappable.
	patternShift int
}

// Locate returns the file position of byte offset off within the pattern.
// Positions inside literals that use escapes or span lines collapse to
// the start of the literal.
func (e *Entry) Locate(off int) Position {
	pos := e.PatternPos
	if e.patternShift < 0 || off < 0 || off > len(e.Pattern) {
		return pos
	}
	pos.Column += e.patternShift + len([]rune(e.Pattern[:off]))
	return pos
}

// Load reads and parses the manifest at path.
//
// Example:
//
//	m, err := manifest.Load("coregen.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := manifest.Generate(m, manifest.GenerateOptions{}); err != nil {
//	    log.Fatal(err)
//	}
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses manifest data. The format is chosen by the extension of
// path: .yaml and .yml are YAML, .json and .hujson are HuJSON.
//
// Structural problems (unknown keys, missing names, duplicate outputs)
// are returned together as Diagnostics.
func Parse(data []byte, path string) (*Manifest, error) {
	var (
		root *value
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		root, err = parseYAML(data)
	case ".json", ".hujson":
		root, err = parseHuJSON(data)
	default:
		return nil, fmt.Errorf("manifest %s: unknown format %q, want .yaml, .yml, .json or .hujson", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	d := &decoder{file: path}
	m := d.manifest(root)
	if len(d.diags) > 0 {
		return nil, d.diags
	}
	m.Path = path
	return m, nil
}

type valueKind uint8

const (
	kindNull valueKind = iota
	kindString
	kindBool
	kindInt
	kindList
	kindMap
)

func (k valueKind) String() string {
	switch k {
	case kindString:
		return "string"
	case kindBool:
		return "boolean"
	case kindInt:
		return "integer"
	case kindList:
		return "list"
	case kindMap:
		return "mapping"
	default:
		return "null"
	}
}

// value is a format-neutral manifest value with its source position.
type value struct {
	kind valueKind
	str  string
	b    bool
	n    int
	list []*value

	// keys and vals hold mapping members in source order.
	keys, vals []*value

	pos Position

	// shift is the column distance from pos to the first character of
	// str, -1 when the raw literal differs from str.
	shift int
}

// decoder turns a value tree into a Manifest, collecting every problem.
type decoder struct {
	file  string
	diags Diagnostics
}

func (d *decoder) errorf(v *value, format string, args ...any) {
	d.diags = append(d.diags, Diagnostic{
		File:    d.file,
		Line:    v.pos.Line,
		Column:  v.pos.Column,
		Message: fmt.Sprintf(format, args...),
	})
}

func (d *decoder) expect(v *value, kind valueKind, key string) bool {
	if v.kind != kind {
		d.errorf(v, "%s must be a %s, got %s", key, kind, v.kind)
		return false
	}
	return true
}

func (d *decoder) packageName(v *value) bool {
	if !d.expect(v, kindString, "package") {
		return false
	}
	if !token.IsIdentifier(v.str) || v.str == "_" {
		d.errorf(v, "package %q is not a valid package name", v.str)
		return false
	}
	return true
}

// members calls f for each key of a mapping, rejecting duplicate keys.
func (d *decoder) members(v *value, what string, f func(key string, k, val *value)) {
	if !d.expect(v, kindMap, what) {
		return
	}
	seen := make(map[string]bool, len(v.keys))
	for i, k := range v.keys {
		if seen[k.str] {
			d.errorf(k, "duplicate key %q in %s", k.str, what)
			continue
		}
		seen[k.str] = true
		f(k.str, k, v.vals[i])
	}
}

func (d *decoder) manifest(root *value) *Manifest {
	m := &Manifest{}
	var list *value
	d.members(root, "manifest", func(key string, k, v *value) {
		switch key {
		case "package":
			if d.packageName(v) {
				m.Package = v.str
			}
		case "type":
			if d.expect(v, kindBool, key) {
				m.TypeName = v.b
			}
		case "max_states":
			if d.expect(v, kindInt, key) {
				m.MaxStates = v.n
			}
		case "matchers":
			if d.expect(v, kindList, key) {
				list = v
			}
		default:
			d.errorf(k, "unknown key %q", key)
		}
	})
	if len(d.diags) > 0 {
		return nil
	}
	if list == nil || len(list.list) == 0 {
		d.errorf(root, "manifest declares no matchers")
		return nil
	}

	names := make(map[string]*Entry)
	outputs := make(map[string]*Entry)
	for _, v := range list.list {
		e := d.entry(m, v)
		if e == nil {
			continue
		}
		if prev, ok := names[e.Name]; ok {
			d.errorf(&value{pos: e.NamePos}, "matcher %s already declared at %s", e.Name, prev.NamePos)
			continue
		}
		names[e.Name] = e
		out := filepath.Clean(e.Output)
		if prev, ok := outputs[out]; ok {
			d.errorf(&value{pos: e.Pos}, "matchers %s and %s both write %s", prev.Name, e.Name, out)
			continue
		}
		outputs[out] = e
		m.Entries = append(m.Entries, e)
	}
	return m
}

func (d *decoder) entry(m *Manifest, v *value) *Entry {
	e := &Entry{Pos: v.pos, Options: coregen.DefaultOptions(), patternShift: -1}
	e.Options.Package = m.Package
	e.Options.TypeName = m.TypeName
	if m.MaxStates != 0 {
		e.Options.MaxStates = m.MaxStates
	}

	var hasName, hasPattern bool
	before := len(d.diags)
	flag := func(key string, v *value, dst *bool) {
		if d.expect(v, kindBool, key) {
			*dst = v.b
		}
	}
	d.members(v, "matcher", func(key string, k, v *value) {
		switch key {
		case "name":
			if d.expect(v, kindString, key) {
				e.Name, e.NamePos, hasName = v.str, v.pos, true
			}
		case "pattern":
			if d.expect(v, kindString, key) {
				e.Pattern, e.PatternPos, e.patternShift, hasPattern = v.str, v.pos, v.shift, true
			}
		case "package":
			if d.packageName(v) {
				e.Options.Package = v.str
			}
		case "output":
			if d.expect(v, kindString, key) {
				e.Output = v.str
			}
		case "case_insensitive":
			flag(key, v, &e.Options.CaseInsensitive)
		case "multi_line":
			flag(key, v, &e.Options.MultiLine)
		case "dot_matches_new_line":
			flag(key, v, &e.Options.DotMatchesNewLine)
		case "ignore_whitespace":
			flag(key, v, &e.Options.IgnoreWhitespace)
		case "unicode":
			flag(key, v, &e.Options.Unicode)
		case "crlf":
			flag(key, v, &e.Options.CRLF)
		default:
			d.errorf(k, "unknown matcher key %q", key)
		}
	})
	if v.kind == kindMap {
		if !hasName {
			d.errorf(v, "matcher has no name")
		}
		if !hasPattern {
			d.errorf(v, "matcher has no pattern")
		}
	}
	if len(d.diags) > before {
		return nil
	}

	if e.Output == "" {
		e.Output = defaultOutput(e)
	}
	return e
}

// defaultOutput places a type-mode matcher next to the manifest and a
// package-mode matcher in a directory named after its package.
func defaultOutput(e *Entry) string {
	file := strings.ToLower(e.Name) + "_coregen.go"
	if e.Options.TypeName {
		return file
	}
	pkg := e.Options.Package
	if pkg == "" {
		pkg = strings.ToLower(e.Name)
	}
	return filepath.Join(pkg, file)
}
