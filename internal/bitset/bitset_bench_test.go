//go:build go1.23

// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package bitset

import (
	"fmt"
	"testing"
)

func BenchmarkBitSetAll(b *testing.B) {
	for _, n := range []uint{64, 256, 1024} {
		bs := New(n)
		for u := range n {
			if u%3 == 0 {
				bs.Add(u)
			}
		}

		b.Run(fmt.Sprintf("%4d", n), func(b *testing.B) {
			for range b.N {
				for u := range bs.All() {
					_ = u
				}
			}
		})
	}
}
