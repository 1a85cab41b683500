// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mtrie

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/gaissmai/mcmin/internal/entry"
	"github.com/gaissmai/mcmin/internal/region"
)

const low = 0xFF

func km(key, mask uint32) entry.KeyMask {
	return entry.KeyMask{Key: key, Mask: mask}
}

// matched reports per 8 bit key whether any pattern matches it.
func matched(kms []entry.KeyMask) (set [256]bool) {
	for k := range uint32(256) {
		for _, p := range kms {
			if p.Matches(0xABCD_EF00 | k) {
				set[k] = true
				break
			}
		}
	}
	return set
}

func TestTrieSiblings(t *testing.T) {
	t.Parallel()

	tr, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := tr.Insert(km(0b0000, 0xFFFF_FFFF), 1); err != nil {
		t.Fatal(err)
	}
	if err := tr.Insert(km(0b0001, 0xFFFF_FFFF), 2); err != nil {
		t.Fatal(err)
	}

	got := tr.Entries(7, nil)
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1: %v", len(got), got)
	}

	want := entry.Entry{KeyMask: km(0, 0xFFFF_FFFE), Route: 7, Source: 3}
	if got[0] != want {
		t.Errorf("got %v, want %v", got[0], want)
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}
}

func TestTrieFourToOne(t *testing.T) {
	t.Parallel()

	tr, _ := New(nil)
	for k := range uint32(4) {
		if err := tr.Insert(km(0x100|k, 0xFFFF_FFFF), 0); err != nil {
			t.Fatal(err)
		}
	}

	got := tr.Entries(1, nil)
	if len(got) != 1 || got[0].KeyMask != km(0x100, 0xFFFF_FFFC) {
		t.Errorf("got %v, want single 0x100/0xfffffffc", got)
	}
}

func TestTrieNothing(t *testing.T) {
	t.Parallel()

	tr, _ := New(nil)

	// key bit outside the mask matches nothing
	if err := tr.Insert(km(0b10, 0xFFFF_FFF0), 1); err != nil {
		t.Fatal(err)
	}
	if got := tr.Entries(1, nil); len(got) != 0 {
		t.Errorf("got %v, want nothing", got)
	}
}

func TestTrieRandomEquivalence(t *testing.T) {
	t.Parallel()
	prng := rand.New(rand.NewPCG(42, 42))

	for range 200 {
		n := 1 + prng.IntN(40)
		seen := map[entry.KeyMask]bool{}
		var in []entry.KeyMask

		tr, _ := New(nil)
		for range n {
			mask := uint32(0xFFFF_FF00) | prng.Uint32()&low
			p := km(0xABCD_EF00|prng.Uint32()&mask&low, mask)
			if seen[p] {
				continue
			}
			seen[p] = true
			in = append(in, p)
			if err := tr.Insert(p, 0); err != nil {
				t.Fatal(err)
			}
		}

		var out []entry.KeyMask
		for _, e := range tr.Entries(0, nil) {
			out = append(out, e.KeyMask)
		}

		if matched(in) != matched(out) {
			t.Fatalf("matched keys differ\nin:  %v\nout: %v", in, out)
		}
		if len(out) > len(in) {
			t.Fatalf("trie grew the table from %d to %d", len(in), len(out))
		}
	}
}

func TestMinimiseRoutes(t *testing.T) {
	t.Parallel()

	in := []entry.Entry{
		{KeyMask: km(0, 0xFFFF_FFFF), Route: 2, Source: 1},
		{KeyMask: km(4, 0xFFFF_FFFF), Route: 1},
		{KeyMask: km(1, 0xFFFF_FFFF), Route: 2, Source: 2},
		{KeyMask: km(5, 0xFFFF_FFFF), Route: 1},
		{KeyMask: km(8, 0xFFFF_FFFF), Route: 3},
	}

	got, err := Minimise(in, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	want := []entry.Entry{
		{KeyMask: km(0, 0xFFFF_FFFE), Route: 2, Source: 3},
		{KeyMask: km(4, 0xFFFF_FFFE), Route: 1},
		{KeyMask: km(8, 0xFFFF_FFFF), Route: 3},
	}

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMinimiseStopAndRegion(t *testing.T) {
	t.Parallel()

	in := []entry.Entry{
		{KeyMask: km(0, 0xFFFF_FFFF), Route: 1},
		{KeyMask: km(1, 0xFFFF_FFFF), Route: 2},
	}

	errStop := errors.New("stop")
	calls := 0
	_, err := Minimise(in, nil, func() error {
		calls++
		if calls == 2 {
			return errStop
		}
		return nil
	})
	if !errors.Is(err, errStop) {
		t.Errorf("expected stop error, got %v", err)
	}

	r := region.New(nodeBytes * 10)
	if _, err := Minimise(in, r, nil); !errors.Is(err, region.ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}

	r = region.New(0)
	if _, err := Minimise(in, r, nil); err != nil {
		t.Fatal(err)
	}
	if live, _, _ := r.Stats(); live != 0 {
		t.Errorf("Minimise left %d bytes reserved", live)
	}
}
