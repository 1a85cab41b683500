/*
Copyright 2014 Will Fitzgerald. All rights reserved.
Use of this source code is governed by a BSD-style
license that can be found in the LICENSE file.
*/

// Package bitset implements fixed capacity sets of table indices.
//
// This is a simplified and stripped down version of:
//
//	github.com/bits-and-blooms/bitset
//
// with a maintained population count and word storage that can be
// drawn from a bounded allocator.
//
// All bugs belong to me.
package bitset

// the wordSize of a bit set
const wordSize = uint(64)

// log2WordSize is lg(wordSize)
const log2WordSize = uint(6)

// Allocator hands out word storage, possibly failing when exhausted.
type Allocator interface {
	Words(n int) ([]uint64, error)
	FreeWords(w []uint64)
}

// A BitSet is a set of indices in [0, Size()).
// The zero value is an empty set with capacity 0.
type BitSet struct {
	set   []uint64
	size  uint
	count int
}

// New creates a BitSet for indices below size, storage from the heap.
func New(size uint) BitSet {
	return BitSet{
		set:  make([]uint64, WordsNeeded(size)),
		size: size,
	}
}

// Alloc creates a BitSet for indices below size with storage from a.
// A nil allocator means heap storage.
func Alloc(a Allocator, size uint) (BitSet, error) {
	if a == nil {
		return New(size), nil
	}

	words, err := a.Words(WordsNeeded(size))
	if err != nil {
		return BitSet{}, err
	}
	clear(words)

	return BitSet{set: words, size: size}, nil
}

// Free gives the storage back to a, b is empty with capacity 0 afterwards.
func (b *BitSet) Free(a Allocator) {
	if a != nil && b.set != nil {
		a.FreeWords(b.set)
	}
	*b = BitSet{}
}

// WordsNeeded calculates the number of words needed for i bits.
func WordsNeeded(i uint) int {
	return int((i + (wordSize - 1)) >> log2WordSize)
}

// wordsIndex calculates the index of words in a `uint64`
func wordsIndex(i uint) uint {
	return i & (wordSize - 1)
}

// Size is the capacity of the set.
func (b *BitSet) Size() uint {
	return b.size
}

// Count is the number of indices in the set.
func (b *BitSet) Count() int {
	return b.count
}

// Contains reports whether i is in the set.
func (b *BitSet) Contains(i uint) bool {
	if i >= b.size {
		return false
	}
	return b.set[i>>log2WordSize]&(1<<wordsIndex(i)) != 0
}

// Add inserts i, false if i is out of range or already present.
func (b *BitSet) Add(i uint) bool {
	if i >= b.size || b.Contains(i) {
		return false
	}
	b.set[i>>log2WordSize] |= 1 << wordsIndex(i)
	b.count++
	return true
}

// Remove deletes i, false if i was not present.
func (b *BitSet) Remove(i uint) bool {
	if !b.Contains(i) {
		return false
	}
	b.set[i>>log2WordSize] &^= 1 << wordsIndex(i)
	b.count--
	return true
}

// Clear empties the set, the capacity is retained.
func (b *BitSet) Clear() {
	clear(b.set)
	b.count = 0
}

// Swap exchanges the contents of b and c.
func (b *BitSet) Swap(c *BitSet) {
	*b, *c = *c, *b
}
