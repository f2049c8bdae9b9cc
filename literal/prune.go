package literal

import (
	"github.com/coregx/ahocorasick"
)

// Prune returns, in order, the indices of the literals that are not
// redundant for an unanchored "contains any of" test.
//
// A literal is redundant when it contains another literal of the set: any
// input containing it also contains the shorter one. Of several equal
// literals only the first is kept. An empty literal matches every input,
// so when one is present it is the only index returned.
//
// Containment is tested with one Aho-Corasick automaton over the distinct
// literals: each literal is scanned for overlapping matches of the others.
//
// Example:
//
//	keep := literal.Prune([][]byte{[]byte("foobar"), []byte("oba"), []byte("baz")})
//	// keep = [1 2]: "foobar" contains "oba"
func Prune(lits [][]byte) []int {
	for i, lit := range lits {
		if len(lit) == 0 {
			return []int{i}
		}
	}

	// Of equal literals only the first one takes part.
	first := make(map[string]int, len(lits))
	var distinct []int
	for i, lit := range lits {
		if _, ok := first[string(lit)]; !ok {
			first[string(lit)] = i
			distinct = append(distinct, i)
		}
	}
	if len(distinct) == 1 {
		return distinct
	}

	builder := ahocorasick.NewBuilder()
	for _, i := range distinct {
		builder.AddPattern(lits[i])
	}
	auto, err := builder.Build()
	if err != nil {
		return distinct
	}

	keep := make([]int, 0, len(distinct))
	for id, i := range distinct {
		redundant := false
		for _, m := range auto.FindAllOverlapping(lits[i]) {
			// Any other distinct pattern found inside is strictly shorter.
			if m.PatternID != id {
				redundant = true
				break
			}
		}
		if !redundant {
			keep = append(keep, i)
		}
	}
	return keep
}
