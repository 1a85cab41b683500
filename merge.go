// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"iter"

	"github.com/gaissmai/mcmin/internal/bitset"
)

// Merge is a candidate set of table entries with one route and the entry
// that would replace them.
type Merge struct {
	members bitset.BitSet
	tbl     *Table

	KeyMask KeyMask
	Route   uint32
	Source  uint32
}

// newMerge returns an empty merge over the entries of the attempt's table.
func (a *Attempt) newMerge() (Merge, error) {
	bs, err := a.allocSet(a.table.Len())
	if err != nil {
		return Merge{}, err
	}
	return Merge{members: bs, tbl: a.table}, nil
}

func (a *Attempt) freeMerge(m *Merge) {
	a.freeSet(&m.members)
}

// Count returns the number of member entries.
func (m *Merge) Count() int {
	return m.members.Count()
}

// Goodness is the number of entries the merge saves, -1 if empty.
func (m *Merge) Goodness() int {
	return m.members.Count() - 1
}

// Contains reports whether the entry at i is a member.
func (m *Merge) Contains(i int) bool {
	return m.members.Contains(uint(i))
}

// Generality of the merged pattern.
func (m *Merge) Generality() int {
	return m.KeyMask.Generality()
}

// Add folds the entry at i into the merge.
func (m *Merge) Add(i int) {
	if !m.members.Add(uint(i)) {
		return
	}

	e := m.tbl.Get(i)
	if m.members.Count() == 1 {
		m.KeyMask = e.KeyMask
		m.Route = e.Route
		m.Source = e.Source
		return
	}

	m.KeyMask = m.KeyMask.Merge(e.KeyMask)
	m.Route |= e.Route
	m.Source |= e.Source
}

// Remove takes the entry at i out and recomputes the merged entry.
func (m *Merge) Remove(i int) {
	if !m.members.Remove(uint(i)) {
		return
	}

	m.KeyMask, m.Route, m.Source = KeyMask{}, 0, 0
	first := true
	for j := range m.members.All() {
		e := m.tbl.Get(int(j))
		if first {
			m.KeyMask, m.Route, m.Source = e.KeyMask, e.Route, e.Source
			first = false
			continue
		}
		m.KeyMask = m.KeyMask.Merge(e.KeyMask)
		m.Route |= e.Route
		m.Source |= e.Source
	}
}

// Clear empties the merge.
func (m *Merge) Clear() {
	m.members.Clear()
	m.KeyMask, m.Route, m.Source = KeyMask{}, 0, 0
}

// Members returns the indices of the member entries in ascending order.
func (m *Merge) Members() []int {
	out := make([]int, 0, m.members.Count())
	for i := range m.members.All() {
		out = append(out, int(i))
	}
	return out
}

// backward iterates over the member indices from the bottom of the table
// up. The member just yielded may be removed.
func (m *Merge) backward() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := range m.members.Backward() {
			if !yield(int(i)) {
				return
			}
		}
	}
}

// Entry returns the entry that replaces the members.
func (m *Merge) Entry() Entry {
	return Entry{KeyMask: m.KeyMask, Route: m.Route, Source: m.Source}
}

// swap exchanges m and o.
func (m *Merge) swap(o *Merge) {
	*m, *o = *o, *m
}
