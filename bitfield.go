// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"cmp"
	"slices"

	"github.com/gaissmai/mcmin/internal/entry"
)

// Bitfield tells for one core and one source vertex key which atoms the
// core actually needs, see [entry.Bitfield].
type Bitfield = entry.Bitfield

// Bitfields are the bitfields of one chip, ordered by key and core, with a
// merge rank per bitfield. Rank 0 is merged first.
type Bitfields struct {
	list  []Bitfield
	ranks []int
}

// SortBitfields ranks bfs by descending redundancy, the bitfield that
// saves most packets first, ties by core then key.
func SortBitfields(bfs []Bitfield) *Bitfields {
	list := slices.Clone(bfs)
	slices.SortStableFunc(list, func(a, b Bitfield) int {
		if c := cmp.Compare(a.Key, b.Key); c != 0 {
			return c
		}
		return cmp.Compare(a.Processor, b.Processor)
	})

	order := make([]int, len(list))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(i, j int) int {
		a, b := list[i], list[j]
		if c := cmp.Compare(b.Redundant(), a.Redundant()); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Processor, b.Processor); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})

	ranks := make([]int, len(list))
	for rank, i := range order {
		ranks[i] = rank
	}

	return &Bitfields{list: list, ranks: ranks}
}

// Len returns the number of bitfields.
func (bf *Bitfields) Len() int {
	if bf == nil {
		return 0
	}
	return len(bf.list)
}

// InRankOrder returns the bitfields in merge order.
func (bf *Bitfields) InRankOrder() []Bitfield {
	out := make([]Bitfield, len(bf.list))
	for i, r := range bf.ranks {
		out[r] = bf.list[i]
	}
	return out
}

// merged returns the bitfields with a rank below midpoint, grouped by key.
func (bf *Bitfields) merged(midpoint int) map[uint32][]Bitfield {
	out := map[uint32][]Bitfield{}
	if bf == nil {
		return out
	}
	for i, b := range bf.list {
		if bf.ranks[i] < midpoint {
			out[b.Key] = append(out[b.Key], b)
		}
	}
	return out
}

// ExpandedSize is an upper bound for the length of the table expanded
// with the bitfields of rank below midpoint.
func (bf *Bitfields) ExpandedSize(entries []Entry, midpoint int) int {
	size := len(entries)
	for _, bfs := range bf.merged(midpoint) {
		size += bfs[0].NAtoms - 1
	}
	return size
}

// Expand returns the table with every entry whose key has bitfields of
// rank below midpoint replaced by one exact entry per atom. Each atom
// entry routes to the cores that need the atom, plus everything else the
// original entry routed to. Atoms beyond the pattern of an entry continue
// in the next entry in key order, as long as it matches them.
//
// The result is sorted by key.
func (bf *Bitfields) Expand(entries []Entry, midpoint int) []Entry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return a.Compare(b.KeyMask)
	})

	byKey := bf.merged(midpoint)
	out := make([]Entry, 0, bf.ExpandedSize(entries, midpoint))

	for i := 0; i < len(sorted); {
		key := sorted[i].Key
		bfs := byKey[key]
		if len(bfs) == 0 {
			out = append(out, sorted[i])
			i++
			continue
		}

		nAtoms := bfs[0].NAtoms
		atom, first := 0, i
		for i < len(sorted) && atom < nAtoms {
			e := sorted[i]
			if !e.Matches(key + uint32(atom)) {
				break
			}
			out = expandEntry(out, e, bfs, key, &atom, nAtoms)
			i++
		}

		// the entry doesn't match its own key, nothing to expand
		if i == first {
			out = append(out, sorted[i])
			i++
		}
	}

	return out
}

// expandEntry appends the atom entries of e from *atom on, as long as
// e matches them.
func expandEntry(out []Entry, e Entry, bfs []Bitfield, key uint32, atom *int, nAtoms int) []Entry {
	stripped := e.Route
	for _, b := range bfs {
		stripped &^= ProcessorBit(b.Processor)
	}

	for ; *atom < nAtoms; *atom++ {
		k := key + uint32(*atom)
		if !e.Matches(k) {
			break
		}

		route := stripped
		for _, b := range bfs {
			bit := ProcessorBit(b.Processor)
			if e.Route&bit != 0 && b.Needed(*atom) {
				route |= bit
			}
		}

		out = append(out, Entry{
			KeyMask: KeyMask{Key: k, Mask: FullMask},
			Route:   route,
			Source:  e.Source,
		})
	}
	return out
}
