package emit

import (
	"bytes"
	"unicode/utf8"

	"github.com/coregx/coregen/code"
	"github.com/coregx/coregen/ir"
	"github.com/coregx/coregen/literal"
)

// maxPrefilterAlternates caps the prefixes tested by an alternate guard.
const maxPrefilterAlternates = 4

// replacement is U+FFFD, which the automaton also matches on invalid
// input bytes, so literals holding it are useless as guards.
var replacement = []byte(string(utf8.RuneError))

// prefilter returns a guard that rejects inputs lacking a literal every
// match of n must contain, or nil when no such literal is known:
//
//	if !strings.Contains(input, "foo") {
//		return false
//	}
//
// A single required byte uses strings.IndexByte instead. Without one
// required literal, a short list of prefixes that begins every match is
// tested as alternates:
//
//	if !(strings.Contains(input, "foo") || strings.Contains(input, "bar")) {
//		return false
//	}
func (e *emitter) prefilter(n ir.Node) []code.Stmt {
	if !e.cfg.EnablePrefilter {
		return nil
	}
	ex := literal.New(literal.DefaultConfig())

	var present code.Expr
	if req := ex.Required(n); len(req) >= e.cfg.MinPrefilterLen && !bytes.Contains(req, replacement) {
		present = contains(req)
	} else if alts := e.prefixAlternates(ex, n); len(alts) > 0 {
		exprs := make([]code.Expr, len(alts))
		for i, alt := range alts {
			exprs[i] = contains(alt)
		}
		present = code.Or(exprs...)
	}
	if present == nil {
		return nil
	}
	return []code.Stmt{&code.If{Cond: &code.Not{X: present}, Then: []code.Stmt{code.Ret(code.False)}}}
}

// prefixAlternates returns a few distinct prefixes one of which starts
// every match, or nil when none are known. Long prefix lists are cut to
// shorter prefixes until few enough remain, but never below
// MinPrefilterLen.
func (e *emitter) prefixAlternates(ex *literal.Extractor, n ir.Node) [][]byte {
	seq := ex.ExtractPrefixes(n)
	if !seq.IsFinite() || seq.IsEmpty() {
		return nil
	}
	longest := 0
	for _, lit := range seq.Literals() {
		if len(lit.Bytes) < e.cfg.MinPrefilterLen || bytes.Contains(lit.Bytes, replacement) {
			return nil
		}
		longest = max(longest, len(lit.Bytes))
	}
	for size := longest; size >= e.cfg.MinPrefilterLen; size-- {
		cut := seq.KeepFirstBytes(size).Minimize()
		if cut.Len() > maxPrefilterAlternates {
			continue
		}
		alts := make([][]byte, 0, cut.Len())
		for _, lit := range cut.Literals() {
			// A cut may split a multi-byte rune; the halves still occur in
			// any input holding the whole rune.
			alts = append(alts, lit.Bytes)
		}
		return alts
	}
	return nil
}

func contains(lit []byte) code.Expr {
	if len(lit) == 1 {
		return indexByteFound(lit[0])
	}
	return &code.Call{
		Pkg:  "strings",
		Func: "Contains",
		Args: []code.Expr{code.V(input), &code.StrLit{V: string(lit)}},
	}
}
