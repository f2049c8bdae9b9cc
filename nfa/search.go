package nfa

import (
	"unicode/utf8"

	"github.com/coregx/coregen/internal/conv"
	"github.com/coregx/coregen/internal/sparse"
	"github.com/coregx/coregen/ir"
)

// Search reports whether the NFA matches anywhere in input.
//
// It is the lock-step simulation that generated matchers specialize:
// one pass over the input, one rune per step, a fresh start thread seeded
// at every position unless the NFA is anchored.
func (n *NFA) Search(input string) bool {
	size := conv.IntToUint32(len(n.states))
	cur, next := sparse.NewSparseSet(size), sparse.NewSparseSet(size)

	for at := 0; ; {
		if !n.anchored || at == 0 {
			n.addThread(cur, n.start, input, at)
		}
		if cur.Contains(uint32(n.match)) {
			return true
		}
		if at >= len(input) || (n.anchored && cur.IsEmpty()) {
			return false
		}

		r, w := utf8.DecodeRuneInString(input[at:])
		for _, id := range cur.Values() {
			s := &n.states[id]
			if s.Matches(r) {
				n.addThread(next, s.next, input, at+w)
			}
		}
		cur, next = next, cur
		next.Clear()
		at += w
	}
}

// addThread adds id and everything reachable from it through epsilon
// transitions whose assertions hold at position at.
func (n *NFA) addThread(set *sparse.SparseSet, id StateID, input string, at int) {
	if !set.Insert(uint32(id)) {
		return
	}
	s := &n.states[id]
	switch s.kind {
	case StateSplit:
		n.addThread(set, s.left, input, at)
		n.addThread(set, s.right, input, at)
	case StateEpsilon:
		n.addThread(set, s.next, input, at)
	case StateLook:
		if Assert(s.look, input, at) {
			n.addThread(set, s.next, input, at)
		}
	}
}

// Assert reports whether the assertion holds at byte offset at of input.
func Assert(look ir.LookKind, input string, at int) bool {
	switch look {
	case ir.LookStart:
		return at == 0
	case ir.LookEnd:
		return at == len(input)
	case ir.LookStartLF:
		return at == 0 || input[at-1] == '\n'
	case ir.LookEndLF:
		return at == len(input) || input[at] == '\n'
	case ir.LookStartCRLF:
		return at == 0 || input[at-1] == '\n' ||
			(input[at-1] == '\r' && (at == len(input) || input[at] != '\n'))
	case ir.LookEndCRLF:
		return at == len(input) || input[at] == '\r' ||
			(input[at] == '\n' && (at == 0 || input[at-1] != '\r'))
	case ir.LookWordASCII:
		return IsWordBoundary(input, at)
	case ir.LookWordASCIINegate:
		return !IsWordBoundary(input, at)
	}
	return false
}

// IsWordBoundary reports whether an ASCII word character sits on exactly
// one side of position at.
func IsWordBoundary(input string, at int) bool {
	before := at > 0 && IsWordByte(input[at-1])
	after := at < len(input) && IsWordByte(input[at])
	return before != after
}

// IsWordByte reports whether b is an ASCII word character [0-9A-Za-z_].
func IsWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
