package ir

import (
	"strings"
	"unicode/utf8"
)

// stripInsignificant implements the x flag on top of regexp/syntax, which
// does not support it: unescaped whitespace is dropped and '#' starts a
// comment that runs to the end of the line. Escapes are copied verbatim,
// so `\ ` and `\#` keep their literal meaning, and text between \Q and \E
// is left untouched.
//
// origin maps each byte of the result to its offset in pattern, with one
// extra entry for the end of the result.
func stripInsignificant(pattern string) (stripped string, origin []int) {
	var b strings.Builder
	b.Grow(len(pattern))
	origin = make([]int, 0, len(pattern)+1)
	keep := func(from, to int) {
		b.WriteString(pattern[from:to])
		for k := from; k < to; k++ {
			origin = append(origin, k)
		}
	}

	quoted := false
	for i := 0; i < len(pattern); {
		if quoted {
			if strings.HasPrefix(pattern[i:], `\E`) {
				quoted = false
				keep(i, i+2)
				i += 2
				continue
			}
			keep(i, i+1)
			i++
			continue
		}

		c := pattern[i]
		switch {
		case c == '\\' && i+1 < len(pattern):
			if pattern[i+1] == 'Q' {
				quoted = true
			}
			_, w := utf8.DecodeRuneInString(pattern[i+1:])
			keep(i, i+1+w)
			i += 1 + w
		case c == '#':
			end := strings.IndexByte(pattern[i:], '\n')
			if end < 0 {
				return b.String(), append(origin, len(pattern))
			}
			i += end + 1
		case isSpace(c):
			i++
		default:
			keep(i, i+1)
			i++
		}
	}
	return b.String(), append(origin, len(pattern))
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
