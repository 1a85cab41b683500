// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package entry

import (
	"math/rand/v2"
	"testing"
)

func TestKeyMaskXs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		km   KeyMask
		xs   uint32
		gen  int
		tern string
	}{
		{KeyMask{0, 0}, 0xFFFF_FFFF, 32, "XXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"},
		{KeyMask{0, FullMask}, 0, 0, "00000000000000000000000000000000"},
		{KeyMask{0b1010, 0xFFFF_FFF0}, 0b0101, 2, "0000000000000000000000000000!X!X"},
		{KeyMask{0x8000_0000, 0x8000_0000}, 0x7FFF_FFFF, 31, "1XXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"},
	}

	for _, tt := range tests {
		if got := tt.km.Xs(); got != tt.xs {
			t.Errorf("%s.Xs() = %#x, want %#x", tt.km, got, tt.xs)
		}
		if got := tt.km.Generality(); got != tt.gen {
			t.Errorf("%s.Generality() = %d, want %d", tt.km, got, tt.gen)
		}
		if got := tt.km.Ternary(); got != tt.tern {
			t.Errorf("%s.Ternary() = %q, want %q", tt.km, got, tt.tern)
		}
	}
}

func TestKeyMaskIntersects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b KeyMask
		want bool
	}{
		{KeyMask{0, FullMask}, KeyMask{0, FullMask}, true},
		{KeyMask{0, FullMask}, KeyMask{1, FullMask}, false},
		{KeyMask{0, 0xFFFF_FFFE}, KeyMask{1, FullMask}, true},
		{KeyMask{0, 0}, KeyMask{0xDEAD_BEEF, FullMask}, true},
		{KeyMask{0x10, 0xF0}, KeyMask{0x20, 0xF0}, false},
		{KeyMask{0x10, 0xF0}, KeyMask{0x00, 0x0F}, true},
	}

	for _, tt := range tests {
		if got := tt.a.Intersects(tt.b); got != tt.want {
			t.Errorf("%s.Intersects(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := tt.b.Intersects(tt.a); got != tt.want {
			t.Errorf("%s.Intersects(%s) = %v, want %v (symmetry)", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestKeyMaskMerge(t *testing.T) {
	t.Parallel()

	a := KeyMask{0b0000, 0b1111}
	b := KeyMask{0b0001, 0b1111}
	got := a.Merge(b)
	want := KeyMask{0b0000, 0b1110}

	if got != want {
		t.Fatalf("Merge: got %s, want %s", got, want)
	}
}

// every key matched by a or b must be matched by the merge,
// and the merge can never be less general than its inputs.
func TestKeyMaskMergeCovers(t *testing.T) {
	t.Parallel()

	prng := rand.New(rand.NewPCG(42, 42))
	randomKM := func() KeyMask {
		mask := prng.Uint32() | 0xFFFF_FF00
		return KeyMask{Key: prng.Uint32() & mask, Mask: mask}
	}

	for range 1_000 {
		a, b := randomKM(), randomKM()
		m := a.Merge(b)

		if !m.Covers(a) || !m.Covers(b) {
			t.Fatalf("merge %s does not cover %s and %s", m, a, b)
		}
		if m.Generality() < a.Generality() || m.Generality() < b.Generality() {
			t.Fatalf("merge %s less general than %s or %s", m, a, b)
		}

		for k := range uint32(512) {
			base := a.Key
			if k&0x100 != 0 {
				base = b.Key
			}
			key := base&^0xFF | k&0xFF
			if (a.Matches(key) || b.Matches(key)) && !m.Matches(key) {
				t.Fatalf("key %#x lost by merge %s of %s and %s", key, m, a, b)
			}
		}
	}
}

func TestOppositeLinks(t *testing.T) {
	t.Parallel()

	for l := range NumLinks {
		for r := range NumLinks {
			want := r == (l+3)%NumLinks
			if got := OppositeLinks(1<<l, 1<<r); got != want {
				t.Errorf("OppositeLinks(link %d, link %d) = %v, want %v", l, r, got, want)
			}
		}
	}
}

func TestJustALink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dir  uint32
		want bool
	}{
		{0, false},
		{1, true},
		{1 << 5, true},
		{1 << 6, false},
		{0b11, false},
		{1<<6 | 1, false},
	}
	for _, tt := range tests {
		if got := JustALink(tt.dir); got != tt.want {
			t.Errorf("JustALink(%#x) = %v, want %v", tt.dir, got, tt.want)
		}
	}
}

func TestEntryDefaultable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		e    Entry
		want bool
	}{
		{Entry{Route: 1 << 3, Source: 1 << 0}, true},
		{Entry{Route: 1 << 4, Source: 1 << 1}, true},
		{Entry{Route: 1 << 1, Source: 1 << 1}, false},
		{Entry{Route: 1<<3 | 1<<7, Source: 1 << 0}, false},
		{Entry{Route: 1 << 3, Source: 0}, false},
		{Entry{Route: 1 << 3, Source: 1<<0 | 1<<1}, false},
	}
	for _, tt := range tests {
		if got := tt.e.Defaultable(); got != tt.want {
			t.Errorf("%s.Defaultable() = %v, want %v", tt.e, got, tt.want)
		}
	}
}

func TestKeyMaskCovers(t *testing.T) {
	t.Parallel()

	all := KeyMask{0, 0}
	one := KeyMask{5, FullMask}
	half := KeyMask{0, 0x8000_0000}

	if !all.Covers(one) || !all.Covers(half) {
		t.Error("all should cover everything")
	}
	if one.Covers(all) {
		t.Error("single key cannot cover all")
	}
	if !half.Covers(one) {
		t.Errorf("%s should cover %s", half, one)
	}
	if half.Covers(KeyMask{0x8000_0005, FullMask}) {
		t.Errorf("%s should not cover 0x80000005", half)
	}
}
