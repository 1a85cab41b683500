// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestMTrieGolden(t *testing.T) {
	t.Parallel()
	prng := rand.New(rand.NewPCG(42, 4711))

	for _, width := range []int{4, 8, 10} {
		for _, in := range randomTables(prng, workLoadN(), width) {
			a := newTestAttempt(in, 0)
			if err := (MTrie{}).Compress(a); err != nil {
				t.Fatalf("Compress: %v", err)
			}

			out := a.Table().Entries()
			if len(out) > len(in) {
				t.Fatalf("table grew from %d to %d", len(in), len(out))
			}
			mustRouteAlike(t, in, out, width)
		}
	}
}

func TestMTrieFullBlock(t *testing.T) {
	t.Parallel()

	// all 8 keys of a block with one route collapse into one entry
	var in []Entry
	for i := range uint32(8) {
		in = append(in, exact(i, 0x40))
	}

	a := newTestAttempt(in, 0)
	if err := (MTrie{}).Compress(a); err != nil {
		t.Fatalf("Compress: %v", err)
	}

	want := ent(0xC0DE_0000, 0xffff_fff8, 0x40, 0)
	if a.Table().Len() != 1 || a.Table().Get(0) != want {
		t.Fatalf("want single entry %v, got\n%s", want, a.Table())
	}
	if a.Merges() != 7 {
		t.Errorf("Merges, want 7, got %d", a.Merges())
	}
}

func TestMTrieStop(t *testing.T) {
	t.Parallel()

	s := NewSignals()
	s.Stop()

	in := []Entry{exact(0, 1), exact(1, 1)}
	a := NewAttempt(NewTable(in), 0, s, nil, quietLogger())
	if err := (MTrie{}).Compress(a); !errors.Is(err, ErrForcedToStop) {
		t.Errorf("want %v, got %v", ErrForcedToStop, err)
	}
}
