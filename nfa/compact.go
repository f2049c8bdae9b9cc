package nfa

import (
	"github.com/coregx/coregen/internal/conv"
	"github.com/coregx/coregen/internal/sparse"
)

// compact returns an NFA holding only the states reachable from start,
// with every Epsilon state bypassed and IDs renumbered densely in
// discovery order. The match state is always kept.
//
// Generated matchers allocate one flag per state, so dropping epsilon
// chains directly shrinks the emitted code and its state sets.
func compact(states []State, start, match StateID) *NFA {
	resolve := func(id StateID) StateID {
		// Epsilon chains are acyclic by construction; the bound only
		// protects against a malformed builder.
		for i := 0; i <= len(states) && states[id].kind == StateEpsilon; i++ {
			id = states[id].next
		}
		return id
	}

	seen := sparse.NewSparseSet(conv.IntToUint32(len(states)))
	start = resolve(start)
	seen.Insert(uint32(start))
	for i := 0; i < seen.Len(); i++ {
		s := &states[seen.At(i)]
		switch s.kind {
		case StateRange, StateLook:
			seen.Insert(uint32(resolve(s.next)))
		case StateSplit:
			seen.Insert(uint32(resolve(s.left)))
			seen.Insert(uint32(resolve(s.right)))
		}
	}
	seen.Insert(uint32(match))

	remap := make(map[StateID]StateID, seen.Len())
	for i, old := range seen.Values() {
		remap[StateID(old)] = StateID(conv.IntToUint32(i))
	}
	target := func(id StateID) StateID { return remap[resolve(id)] }

	out := make([]State, seen.Len())
	for i, old := range seen.Values() {
		s := states[old]
		s.id = StateID(conv.IntToUint32(i))
		switch s.kind {
		case StateRange, StateLook:
			s.next = target(s.next)
		case StateSplit:
			s.left, s.right = target(s.left), target(s.right)
		}
		out[i] = s
	}

	return &NFA{
		states: out,
		start:  remap[start],
		match:  remap[match],
	}
}
