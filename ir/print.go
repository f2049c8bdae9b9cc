package ir

import (
	"fmt"
	"strconv"
	"strings"
)

func itoa(n int) string { return strconv.Itoa(n) }

func boolString(b bool) string { return strconv.FormatBool(b) }

func (n *Empty) String() string { return "Empty" }

func (n *Literal) String() string { return "Literal(" + strconv.Quote(string(n.Bytes)) + ")" }

func (n *Class) String() string {
	parts := make([]string, len(n.Ranges))
	for i, r := range n.Ranges {
		parts[i] = formatRange(n.Set, r)
	}
	return "Class(" + n.Set.String() + ", [" + strings.Join(parts, " ") + "])"
}

func (n *Look) String() string { return "Look(" + n.Look.String() + ")" }

func (n *Repetition) String() string {
	maxCount := "∞"
	if n.Max != Unbounded {
		maxCount = itoa(n.Max)
	}
	lazy := ""
	if !n.Greedy {
		lazy = "?"
	}
	return fmt.Sprintf("Repetition{%d,%s}%s(%s)", n.Min, maxCount, lazy, n.Sub)
}

func (n *Capture) String() string {
	if n.Name != "" {
		return fmt.Sprintf("Capture(%d, %q, %s)", n.Index, n.Name, n.Sub)
	}
	return fmt.Sprintf("Capture(%d, %s)", n.Index, n.Sub)
}

func (n *Concat) String() string { return "Concat(" + joinNodes(n.Subs, ", ") + ")" }

func (n *Alternation) String() string { return "Alternation(" + joinNodes(n.Subs, " | ") + ")" }

func joinNodes(nodes []Node, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, sep)
}

func formatRange(kind ClassKind, r Range) string {
	format := func(v rune) string {
		if kind == ClassBytes {
			return fmt.Sprintf("0x%02X", v)
		}
		return strconv.QuoteRune(v)
	}
	if r.Lo == r.Hi {
		return format(r.Lo)
	}
	return format(r.Lo) + "-" + format(r.Hi)
}

// Dump prints the tree in an indented multi-line form, one node or field
// per line. The output is stable and is embedded in generated code as
// documentation.
func Dump(n Node) string {
	var p printer
	p.node(n)
	return strings.TrimSuffix(p.b.String(), ",\n")
}

type printer struct {
	b     strings.Builder
	depth int
}

func (p *printer) line(s string) {
	p.b.WriteString(strings.Repeat("    ", p.depth))
	p.b.WriteString(s)
	p.b.WriteByte('\n')
}

func (p *printer) open(s string) {
	p.line(s)
	p.depth++
}

func (p *printer) close(s string) {
	p.depth--
	p.line(s)
}

func (p *printer) node(n Node) {
	switch n := n.(type) {
	case *Empty:
		p.line("Empty,")
	case *Literal:
		p.line("Literal(" + strconv.Quote(string(n.Bytes)) + "),")
	case *Class:
		if n.IsEmpty() {
			p.line("Class(" + n.Set.String() + ", []),")
			return
		}
		p.open("Class(" + n.Set.String() + ", [")
		for _, r := range n.Ranges {
			p.line(formatRange(n.Set, r) + ",")
		}
		p.close("]),")
	case *Look:
		p.line("Look(" + n.Look.String() + "),")
	case *Repetition:
		p.open("Repetition {")
		p.line("min: " + itoa(n.Min) + ",")
		if n.Max == Unbounded {
			p.line("max: unbounded,")
		} else {
			p.line("max: " + itoa(n.Max) + ",")
		}
		p.line("greedy: " + boolString(n.Greedy) + ",")
		p.b.WriteString(strings.Repeat("    ", p.depth) + "sub: ")
		p.inline(n.Sub)
		p.close("},")
	case *Capture:
		p.open("Capture {")
		p.line("index: " + itoa(n.Index) + ",")
		if n.Name != "" {
			p.line("name: " + strconv.Quote(n.Name) + ",")
		}
		p.b.WriteString(strings.Repeat("    ", p.depth) + "sub: ")
		p.inline(n.Sub)
		p.close("},")
	case *Concat:
		p.open("Concat [")
		for _, sub := range n.Subs {
			p.node(sub)
		}
		p.close("],")
	case *Alternation:
		p.open("Alternation [")
		for _, sub := range n.Subs {
			p.node(sub)
		}
		p.close("],")
	}
}

// inline prints n on the current line, after a field label.
func (p *printer) inline(n Node) {
	var sub printer
	sub.depth = p.depth
	sub.node(n)
	p.b.WriteString(strings.TrimLeft(sub.b.String(), " "))
}
