// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"fmt"
	"iter"
	"slices"
	"sort"
)

// Table is a routing table under compression: a sequence of entries where
// the first matching entry routes a key.
//
// The ordered covering compressor keeps the table sorted by ascending
// generality, the other compressors don't rely on it.
//
// Indexing beyond Len and shrinking below zero are programming errors
// and panic.
type Table struct {
	entries []Entry
	size    int
}

// NewTable returns a table holding a copy of entries.
func NewTable(entries []Entry) *Table {
	return &Table{entries: slices.Clone(entries), size: len(entries)}
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return t.size
}

// Get returns the entry at i.
func (t *Table) Get(i int) Entry {
	return t.entries[:t.size][i]
}

// Put overwrites the entry at i.
func (t *Table) Put(e Entry, i int) {
	t.entries[:t.size][i] = e
}

// Swap exchanges the entries at a and b.
func (t *Table) Swap(a, b int) {
	s := t.entries[:t.size]
	s[a], s[b] = s[b], s[a]
}

// Copy overwrites the entry at dst with the entry at src.
func (t *Table) Copy(dst, src int) {
	s := t.entries[:t.size]
	s[dst] = s[src]
}

// RemoveFromSize shrinks the table by n entries from the end.
func (t *Table) RemoveFromSize(n int) {
	if n < 0 || n > t.size {
		panic(fmt.Sprintf("RemoveFromSize(%d) on table of size %d", n, t.size))
	}
	t.size -= n
}

// InsertionPoint returns the first index with a generality not less than
// generality, or Len if there is none. The table must be sorted by
// generality.
func (t *Table) InsertionPoint(generality int) int {
	return sort.Search(t.size, func(i int) bool {
		return t.entries[i].Generality() >= generality
	})
}

// SortByGenerality sorts the entries by ascending generality, entries of
// equal generality keep their order.
func (t *Table) SortByGenerality() {
	slices.SortStableFunc(t.entries[:t.size], func(a, b Entry) int {
		return a.Generality() - b.Generality()
	})
}

// Entries returns a copy of the entries.
func (t *Table) Entries() []Entry {
	return slices.Clone(t.entries[:t.size])
}

// All iterates over index and entry.
func (t *Table) All() iter.Seq2[int, Entry] {
	return slices.All(t.entries[:t.size])
}

// reset replaces the content with a copy of entries, reusing storage.
func (t *Table) reset(entries []Entry) {
	t.entries = append(t.entries[:0], entries...)
	t.size = len(entries)
}

// sortedByGenerality reports whether the ordered covering invariant holds.
func (t *Table) sortedByGenerality() bool {
	return slices.IsSortedFunc(t.entries[:t.size], func(a, b Entry) int {
		return a.Generality() - b.Generality()
	})
}
