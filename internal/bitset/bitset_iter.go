//go:build go1.23

// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package bitset

import (
	"iter"
	"math/bits"
)

// All iterates over the indices in ascending order.
func (b *BitSet) All() iter.Seq[uint] {
	return func(yield func(u uint) bool) {
		for idx, word := range b.set {
			for word != 0 {
				u := uint(idx<<log2WordSize + bits.TrailingZeros64(word))

				if !yield(u) {
					return
				}

				// clear the rightmost set bit
				word &= word - 1
			}
		}
	}
}

// Backward iterates over the indices in descending order.
func (b *BitSet) Backward() iter.Seq[uint] {
	return func(yield func(u uint) bool) {
		for idx := len(b.set) - 1; idx >= 0; idx-- {
			word := b.set[idx]
			for word != 0 {
				top := 63 - bits.LeadingZeros64(word)
				if !yield(uint(idx<<log2WordSize + top)) {
					return
				}
				word &^= 1 << top
			}
		}
	}
}
