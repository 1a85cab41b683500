// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package random

import (
	"math/bits"
	"math/rand/v2"
	"testing"

	"github.com/gaissmai/mcmin/internal/entry"
)

func TestKeyMask(t *testing.T) {
	prng := rand.New(rand.NewPCG(0, 0))

	for range 100 {
		km := KeyMask(prng, 8)

		// Must be valid
		if !km.Valid() {
			t.Errorf("generated invalid pattern: %s", km)
		}

		// Upper bits are fixed
		if km.Key&^0xFF != Base&^0xFF || km.Mask|0xFF != entry.FullMask {
			t.Errorf("upper bits not fixed: %s", km)
		}
	}
}

func TestRoutes(t *testing.T) {
	prng := rand.New(rand.NewPCG(0, 0))

	routes := Routes(prng, 50)
	if len(routes) != 50 {
		t.Fatalf("expected 50 routes, got %d", len(routes))
	}

	seen := map[uint32]bool{}
	for _, r := range routes {
		if r == 0 {
			t.Error("empty route")
		}
		if bits.Len32(r) > entry.NumLinks+18 {
			t.Errorf("route %#x beyond core 17", r)
		}
		if seen[r] {
			t.Errorf("duplicate route %#x", r)
		}
		seen[r] = true
	}
}

func TestTableOrthogonal(t *testing.T) {
	prng := rand.New(rand.NewPCG(42, 42))

	for range 20 {
		tbl := Table(prng, 60, 8, 4)
		if len(tbl) != 60 {
			t.Fatalf("expected 60 entries, got %d", len(tbl))
		}

		routes := map[uint32]bool{}
		for i := range tbl {
			routes[tbl[i].Route] = true
			if !tbl[i].Valid() {
				t.Errorf("invalid entry %s", tbl[i])
			}
			for j := i + 1; j < len(tbl); j++ {
				if tbl[i].Intersects(tbl[j].KeyMask) {
					t.Fatalf("entries %d and %d intersect: %s, %s", i, j, tbl[i], tbl[j])
				}
			}
		}
		if len(routes) > 4 {
			t.Errorf("expected at most 4 routes, got %d", len(routes))
		}
	}
}

func TestTableSmallWidth(t *testing.T) {
	prng := rand.New(rand.NewPCG(0, 0))

	// cannot exceed the key space
	if tbl := Table(prng, 100, 3, 2); len(tbl) != 8 {
		t.Errorf("expected 8 entries, got %d", len(tbl))
	}
	if tbl := Table(prng, 0, 3, 2); len(tbl) != 0 {
		t.Errorf("expected 0 entries, got %d", len(tbl))
	}
}

func TestRealWorldTable(t *testing.T) {
	prng := rand.New(rand.NewPCG(0, 0))

	tbl := RealWorldTable(prng, 200)
	if len(tbl) != 200 {
		t.Fatalf("expected 200 entries, got %d", len(tbl))
	}

	for i := range tbl {
		if !tbl[i].Valid() {
			t.Errorf("invalid entry %s", tbl[i])
		}
		if tbl[i].Generality() > 11 {
			t.Errorf("block too large: %s", tbl[i])
		}
		for j := i + 1; j < len(tbl); j++ {
			if tbl[i].Intersects(tbl[j].KeyMask) {
				t.Fatalf("entries %d and %d intersect", i, j)
			}
		}
	}
}

func TestDeterministicWithSameSeed(t *testing.T) {
	prng1 := rand.New(rand.NewPCG(12345, 67890))
	prng2 := rand.New(rand.NewPCG(12345, 67890))

	t1 := Table(prng1, 30, 10, 3)
	t2 := Table(prng2, 30, 10, 3)

	for i := range t1 {
		if t1[i] != t2[i] {
			t.Errorf("different entry at index %d with same seed: %v vs %v", i, t1[i], t2[i])
		}
	}
}
