// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package golden is a simple and slow first match router,
// the golden reference for the compressors.
package golden

import (
	"fmt"
	"iter"
	"slices"

	"github.com/gaissmai/mcmin/internal/entry"
)

// Table is a slice of entries, the first entry that matches a key wins.
type Table []entry.Entry

// Clone returns a copy of t.
func (t Table) Clone() Table {
	return slices.Clone(t)
}

// Lookup returns the first entry matching key.
func (t Table) Lookup(key uint32) (e entry.Entry, ok bool) {
	for _, e := range t {
		if e.Matches(key) {
			return e, true
		}
	}
	return e, false
}

// Route returns the route for a key arriving with the given source
// link. A miss is default routed: out of the opposite link if the packet
// arrived on one, dropped otherwise.
func (t Table) Route(key uint32, arrival uint32) uint32 {
	if e, ok := t.Lookup(key); ok {
		return e.Route
	}
	if entry.JustALink(arrival) {
		l := uint32(0)
		for arrival>>l != 1 {
			l++
		}
		return 1 << ((l + 3) % entry.NumLinks)
	}
	return 0
}

// Orthogonal reports whether no key is matched by two entries.
func (t Table) Orthogonal() bool {
	for i := range t {
		for j := i + 1; j < len(t); j++ {
			if t[i].Intersects(t[j].KeyMask) {
				return false
			}
		}
	}
	return true
}

// Keys enumerates every key with the fixed upper bits of base and all
// combinations of the lower width bits.
func Keys(base uint32, width int) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		fixed := base &^ (1<<width - 1)
		for k := range uint32(1) << width {
			if !yield(fixed | k) {
				return
			}
		}
	}
}

// Diff compares the routing of want and got for every key and returns a
// description of the first difference. A packet with a key arrives from
// the source of the entry of want that matches it.
//
// Keys that match no entry of want are free, a compressed table may route
// them anywhere.
func Diff(want, got Table, keys iter.Seq[uint32]) error {
	for key := range keys {
		e, ok := want.Lookup(key)
		if !ok {
			continue
		}
		if g := got.Route(key, e.Source); g != e.Route {
			return fmt.Errorf("key %#08x arriving on %#x: want route %#x, got %#x", key, e.Source, e.Route, g)
		}
	}
	return nil
}
