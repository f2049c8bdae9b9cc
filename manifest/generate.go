package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/coregx/coregen"
)

// Diagnostic is one problem found in a manifest, positioned in the
// manifest file.
type Diagnostic struct {
	File    string
	Line    int
	Column  int
	Message string

	// Name and Pattern identify the matcher, empty for problems outside
	// one.
	Name    string
	Pattern string
}

// String formats the diagnostic the way compilers do: file:line:col: msg.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Column, d.Message)
}

// Diagnostics is a list of problems. It is returned as the error of Parse,
// Compile and Generate when anything is wrong.
type Diagnostics []Diagnostic

func (ds Diagnostics) Error() string {
	switch len(ds) {
	case 0:
		return "no errors"
	case 1:
		return ds[0].String()
	}
	var b strings.Builder
	for i, d := range ds {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.String())
	}
	return b.String()
}

// Result is one compiled matcher.
type Result struct {
	Entry *Entry

	// Path is where the generated file goes.
	Path string

	Unit *coregen.Unit
}

// Compile compiles every entry of m. It does not stop at the first
// failure: all problems come back together as Diagnostics, and no result
// is returned unless every entry compiled.
func Compile(m *Manifest) ([]Result, error) {
	var (
		results []Result
		diags   Diagnostics
	)
	base := filepath.Dir(m.Path)
	for _, e := range m.Entries {
		u, err := coregen.Compile(e.Pattern, e.Name, e.Options)
		if err != nil {
			diags = append(diags, entryDiagnostic(m.Path, e, err))
			continue
		}
		path := e.Output
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}
		results = append(results, Result{Entry: e, Path: path, Unit: u})
	}
	diags = append(diags, checkPackages(m.Path, results)...)
	if len(diags) > 0 {
		return nil, diags
	}
	return results, nil
}

// entryDiagnostic positions a compile error. Pattern errors point into
// the pattern literal, name errors at the name.
func entryDiagnostic(file string, e *Entry, err error) Diagnostic {
	d := Diagnostic{File: file, Name: e.Name, Pattern: e.Pattern, Message: err.Error()}
	pos := e.PatternPos
	var cerr *coregen.Error
	if errors.As(err, &cerr) {
		d.Message = cerr.Kind.String() + ": " + cerr.Message
		switch cerr.Kind {
		case coregen.InvalidNameError:
			pos = e.NamePos
		case coregen.SyntaxError:
			pos = e.Locate(cerr.Span.Start)
		}
	} else {
		// Configuration problems belong to the matcher as a whole.
		pos = e.Pos
	}
	d.Line, d.Column = pos.Line, pos.Column
	return d
}

// checkPackages rejects files that would not build together: one directory
// must hold a single package, and package-mode matchers cannot share one
// since each declares IsMatch.
func checkPackages(file string, results []Result) Diagnostics {
	var diags Diagnostics
	type dirInfo struct {
		pkg   string
		first *Entry
		funcs *Entry
	}
	dirs := make(map[string]*dirInfo)
	for _, r := range results {
		dir := filepath.Dir(r.Path)
		pkg := r.Unit.PackageName()
		info, ok := dirs[dir]
		if !ok {
			info = &dirInfo{pkg: pkg, first: r.Entry}
			dirs[dir] = info
		}
		at := func(format string, args ...any) {
			diags = append(diags, Diagnostic{
				File:    file,
				Line:    r.Entry.Pos.Line,
				Column:  r.Entry.Pos.Column,
				Message: fmt.Sprintf(format, args...),
				Name:    r.Entry.Name,
				Pattern: r.Entry.Pattern,
			})
		}
		if info.pkg != pkg {
			at("matcher %s is in package %s but %s puts package %s in %s", r.Entry.Name, pkg, info.first.Name, info.pkg, dir)
			continue
		}
		if !r.Entry.Options.TypeName {
			if info.funcs != nil {
				at("matchers %s and %s both declare IsMatch in %s; set type: true or give them separate packages", info.funcs.Name, r.Entry.Name, dir)
				continue
			}
			info.funcs = r.Entry
		}
	}
	return diags
}

// GenerateOptions controls Generate.
type GenerateOptions struct {
	// DryRun compiles and renders everything but writes nothing.
	DryRun bool
}

// Generate compiles every entry of m and writes one Go file per entry.
// Nothing is written unless every entry compiles and renders.
func Generate(m *Manifest, opts GenerateOptions) ([]Result, error) {
	results, err := Compile(m)
	if err != nil {
		return nil, err
	}

	sources := make([][]byte, len(results))
	for i, r := range results {
		src, err := r.Unit.Source()
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", r.Entry.Name, err)
		}
		sources[i] = src
	}
	if opts.DryRun {
		return results, nil
	}

	for i, r := range results {
		if err := os.MkdirAll(filepath.Dir(r.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating directory for %s: %w", r.Entry.Name, err)
		}
		if err := os.WriteFile(r.Path, sources[i], 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", r.Entry.Name, err)
		}
	}
	return results, nil
}
