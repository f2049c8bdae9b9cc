// Command coregen compiles regular expressions into Go source.
//
// Single pattern:
//
//	coregen --name=Phone --pattern='\d{3}-\d{4}' --out=phone/phone.go
//
// Every matcher of a manifest:
//
//	coregen --manifest=coregen.yaml
//
// Failures are reported as file:line:col: message, one per line, and the
// command exits non-zero. Nothing is written when anything fails.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/coregx/coregen"
	"github.com/coregx/coregen/manifest"
	"github.com/mattn/go-isatty"
	getopt "github.com/pborman/getopt/v2"
	"github.com/pborman/options"
)

type config struct {
	optSet *getopt.Set

	Help bool `getopt:"-h --help  Display this help"`

	Manifest string `getopt:"--manifest=file  Generate every matcher declared in a YAML or HuJSON manifest"`
	DryRun   bool   `getopt:"--dry-run        Compile and report problems without writing files"`

	Name    string `getopt:"--name=identifier  Name of the generated matcher"`
	Pattern string `getopt:"--pattern=regex    Pattern to compile, in Go regexp syntax"`
	Out     string `getopt:"--out=file         Output file, - for stdout. Default:"`
	Package string `getopt:"--package=name     Package clause of the generated file. Default: the lower-cased name"`
	Type    bool   `getopt:"--type             Generate a type with an IsMatch method instead of a package-level function"`

	CaseInsensitive   bool `getopt:"-i --case-insensitive  Letters match both cases"`
	MultiLine         bool `getopt:"-m --multi-line        ^ and $ match at line boundaries"`
	DotMatchesNewLine bool `getopt:"-s --dot-matches-new-line  . matches \\n"`
	IgnoreWhitespace  bool `getopt:"-x --ignore-whitespace  Whitespace and # comments in the pattern are ignored"`
	NoUnicode         bool `getopt:"--no-unicode           Classes and case folding cover ASCII only"`
	CRLF              bool `getopt:"--crlf                 Treat \\r\\n as a line terminator"`
	MaxStates         int  `getopt:"--max-states=integer   Largest automaton the generator will emit. Default:"`
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("coregen: ")

	color := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	os.Exit(run(os.Args, os.Stdout, &printer{w: os.Stderr, color: color}))
}

// run executes one invocation and returns the exit status.
func run(argv []string, stdout io.Writer, p *printer) int {
	cfg := &config{
		Out:       "-",
		MaxStates: coregen.DefaultOptions().MaxStates,
	}
	o := getopt.New()
	if err := options.RegisterSet("", cfg, o); err != nil {
		log.Fatalf("option set registration failed: %s", err)
	}
	o.SetProgram(filepath.Base(argv[0]))
	o.SetParameters("")
	cfg.optSet = o

	// accumulator for multiple errors, to present to the user all at once
	var argErrs []string
	if err := o.Getopt(argv, nil); err != nil {
		argErrs = append(argErrs, err.Error())
	} else if rest := o.Args(); len(rest) != 0 {
		argErrs = append(argErrs, fmt.Sprintf("unexpected parameter(s): %s...", rest[0]))
	}

	if cfg.Help {
		o.PrintUsage(p.w)
		return 0
	}

	if len(argErrs) == 0 {
		argErrs = cfg.validate()
	}
	if len(argErrs) != 0 {
		sort.Strings(argErrs)
		fmt.Fprintf(p.w, "Fatal error parsing arguments:\n\t%s\n\n", strings.Join(argErrs, "\n\t"))
		o.PrintUsage(p.w)
		return 2
	}

	if cfg.Manifest != "" {
		return cfg.runManifest(stdout, p)
	}
	return cfg.runPattern(stdout, p)
}

func (cfg *config) validate() (errs []string) {
	single := cfg.optSet.IsSet("name") || cfg.optSet.IsSet("pattern")
	switch {
	case cfg.Manifest != "" && single:
		errs = append(errs, "--manifest cannot be combined with --name or --pattern")
	case cfg.Manifest != "":
		cfg.optSet.VisitAll(func(opt getopt.Option) {
			switch opt.LongName() {
			case "manifest", "dry-run", "help":
			default:
				if opt.Seen() {
					errs = append(errs, fmt.Sprintf("--%s has no effect with --manifest, set it in the manifest", opt.LongName()))
				}
			}
		})
	default:
		if cfg.Name == "" {
			errs = append(errs, "a value for --name must be specified")
		}
		if !cfg.optSet.IsSet("pattern") {
			errs = append(errs, "a value for --pattern must be specified")
		}
	}
	return errs
}

func (cfg *config) options() coregen.Options {
	opts := coregen.DefaultOptions()
	opts.CaseInsensitive = cfg.CaseInsensitive
	opts.MultiLine = cfg.MultiLine
	opts.DotMatchesNewLine = cfg.DotMatchesNewLine
	opts.IgnoreWhitespace = cfg.IgnoreWhitespace
	opts.Unicode = !cfg.NoUnicode
	opts.CRLF = cfg.CRLF
	opts.Package = cfg.Package
	opts.TypeName = cfg.Type
	opts.MaxStates = cfg.MaxStates
	return opts
}

func (cfg *config) runPattern(stdout io.Writer, p *printer) int {
	u, err := coregen.Compile(cfg.Pattern, cfg.Name, cfg.options())
	if err != nil {
		p.compileError(err)
		return 1
	}
	src, err := u.Source()
	if err != nil {
		log.Printf("rendering %s: %s", u.Name, err)
		return 1
	}
	if cfg.DryRun {
		return 0
	}

	if cfg.Out == "-" {
		if _, err := stdout.Write(src); err != nil {
			log.Printf("writing output: %s", err)
			return 1
		}
		return 0
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Out), 0o755); err != nil {
		log.Print(err)
		return 1
	}
	if err := os.WriteFile(cfg.Out, src, 0o644); err != nil {
		log.Print(err)
		return 1
	}
	return 0
}

func (cfg *config) runManifest(stdout io.Writer, p *printer) int {
	m, err := manifest.Load(cfg.Manifest)
	if err == nil {
		var results []manifest.Result
		results, err = manifest.Generate(m, manifest.GenerateOptions{DryRun: cfg.DryRun})
		if err == nil {
			for _, r := range results {
				fmt.Fprintf(stdout, "%s\t%s\t%s\n", r.Entry.Name, r.Unit.Strategy(), r.Path)
			}
			return 0
		}
	}

	var diags manifest.Diagnostics
	if errors.As(err, &diags) {
		for _, d := range diags {
			p.diagnostic(d)
		}
		return 1
	}
	log.Print(err)
	return 1
}

// printer writes diagnostics, in colour when w is a terminal.
type printer struct {
	w     io.Writer
	color bool
}

const (
	ansiBold  = "\x1b[1m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiReset = "\x1b[0m"
)

func (p *printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

func (p *printer) diagnostic(d manifest.Diagnostic) {
	loc := fmt.Sprintf("%s:%d:%d:", d.File, d.Line, d.Column)
	fmt.Fprintf(p.w, "%s %s %s\n", p.paint(ansiBold, loc), p.paint(ansiRed, "error:"), d.Message)
}

// compileError reports a single-pattern failure with a caret line under
// the offending part of the pattern.
func (p *printer) compileError(err error) {
	var cerr *coregen.Error
	if !errors.As(err, &cerr) {
		fmt.Fprintf(p.w, "%s %s\n", p.paint(ansiRed, "error:"), err)
		return
	}
	fmt.Fprintf(p.w, "%s %s: %s\n", p.paint(ansiRed, "error:"), cerr.Kind, cerr.Message)
	if cerr.Kind == coregen.InvalidNameError || cerr.Pattern == "" || strings.ContainsAny(cerr.Pattern, "\n\t") {
		return
	}
	start, end := cerr.Span.Start, cerr.Span.End
	if start < 0 || end > len(cerr.Pattern) || start >= end {
		start, end = 0, len(cerr.Pattern)
	}
	pad := strings.Repeat(" ", len([]rune(cerr.Pattern[:start])))
	marks := strings.Repeat("^", len([]rune(cerr.Pattern[start:end])))
	fmt.Fprintf(p.w, "\t%s\n\t%s%s\n", cerr.Pattern, pad, p.paint(ansiGreen, marks))
}
