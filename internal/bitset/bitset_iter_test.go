//go:build go1.23

// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package bitset

import (
	"fmt"
	"testing"
)

func TestAllBitSetIter(t *testing.T) {
	t.Parallel()
	tc := []uint{0, 1, 2, 5, 10, 20, 50, 100, 200, 500, 511}

	for _, n := range tc {
		t.Run(fmt.Sprintf("n: %3d", n), func(t *testing.T) {
			t.Parallel()
			b := New(512)
			seen := make(map[uint]bool)

			for u := range n {
				b.Add(u)
				seen[u] = true
			}

			// range over func
			for u := range b.All() {
				if seen[u] != true {
					t.Errorf("bit: %d, expected true, got false", u)
				}
				delete(seen, u)
			}

			// check if all entries visited
			if len(seen) != 0 {
				t.Fatalf("traverse error, not all entries visited")
			}
		})
	}
}

func TestAllBitSetStop(t *testing.T) {
	t.Parallel()
	b := New(100)
	for u := range uint(100) {
		b.Add(u)
	}

	n := 0
	for u := range b.All() {
		if u == 9 {
			break
		}
		n++
	}
	if n != 9 {
		t.Errorf("early break: visited %d, want 9", n)
	}

	n = 0
	for u := range b.Backward() {
		if u == 90 {
			break
		}
		n++
	}
	if n != 9 {
		t.Errorf("early break backward: visited %d, want 9", n)
	}
}
