package emit

// Strategy names the shape of the code emitted for a pattern's root.
//
// The dispatcher picks the cheapest shape that decides the predicate
// exactly:
//   - UseConstFalse / UseConstTrue: static analysis already knows the answer
//   - UseByteScan, UseLiteralWindow: literal text
//   - UseByteClass, UseUnicodeClass: a single-element class
//   - UseWordScan: a lone word-boundary assertion
//   - UseAlternation: OR of per-branch helpers
//   - UseNFA: a specialized Thompson simulation for everything else
type Strategy int

const (
	// UseConstFalse returns false without looking at the input.
	// Selected when the pattern can never match.
	UseConstFalse Strategy = iota

	// UseConstTrue returns true without looking at the input.
	// Selected for patterns that match the empty string everywhere, such as
	// the empty pattern, x*, and text or line anchors on their own.
	UseConstTrue

	// UseByteScan searches for one byte with strings.IndexByte.
	UseByteScan

	// UseLiteralWindow compares every window of the input with a literal.
	UseLiteralWindow

	// UseByteClass tests every input byte against byte ranges.
	UseByteClass

	// UseUnicodeClass tests every decoded rune against scalar ranges.
	UseUnicodeClass

	// UseWordScan evaluates \b or \B at every rune boundary.
	UseWordScan

	// UseAlternation ORs independently emitted branches. Literal branches
	// that contain another literal branch are pruned first.
	UseAlternation

	// UseNFA emits a lock-step Thompson simulation, optionally behind a
	// required-literal prefilter.
	UseNFA
)

// String returns a human-readable representation of the Strategy.
func (s Strategy) String() string {
	switch s {
	case UseConstFalse:
		return "UseConstFalse"
	case UseConstTrue:
		return "UseConstTrue"
	case UseByteScan:
		return "UseByteScan"
	case UseLiteralWindow:
		return "UseLiteralWindow"
	case UseByteClass:
		return "UseByteClass"
	case UseUnicodeClass:
		return "UseUnicodeClass"
	case UseWordScan:
		return "UseWordScan"
	case UseAlternation:
		return "UseAlternation"
	case UseNFA:
		return "UseNFA"
	default:
		return "Unknown"
	}
}

// IsConstant reports whether the strategy ignores its input.
func (s Strategy) IsConstant() bool {
	return s == UseConstFalse || s == UseConstTrue
}
