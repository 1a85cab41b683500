// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"slices"
	"testing"
)

func TestMergeAddRemove(t *testing.T) {
	t.Parallel()

	a := newTestAttempt([]Entry{
		ent(0b000, FullMask, 1, 0x1),
		ent(0b001, FullMask, 1, 0x2),
		ent(0b011, FullMask, 1, 0x4),
	}, 0)

	m, err := a.newMerge()
	if err != nil {
		t.Fatalf("newMerge: %v", err)
	}
	defer a.freeMerge(&m)

	if m.Goodness() != -1 {
		t.Errorf("Goodness of empty merge, want -1, got %d", m.Goodness())
	}

	m.Add(0)
	if m.Entry() != a.Table().Get(0) {
		t.Errorf("first member, want %v, got %v", a.Table().Get(0), m.Entry())
	}

	m.Add(1)
	m.Add(1) // no-op
	if m.Count() != 2 || m.Goodness() != 1 {
		t.Errorf("Count, Goodness, want 2 1, got %d %d", m.Count(), m.Goodness())
	}
	if want := ent(0b000, 0xffff_fffe, 1, 0x3); m.Entry() != want {
		t.Errorf("merged, want %v, got %v", want, m.Entry())
	}

	m.Add(2)
	if want := ent(0b000, 0xffff_fffc, 1, 0x7); m.Entry() != want {
		t.Errorf("merged, want %v, got %v", want, m.Entry())
	}
	if m.Generality() != 2 {
		t.Errorf("Generality, want 2, got %d", m.Generality())
	}
	if !slices.Equal(m.Members(), []int{0, 1, 2}) {
		t.Errorf("Members, want [0 1 2], got %v", m.Members())
	}

	// removing recomputes from the remaining members
	m.Remove(0)
	if want := ent(0b001, 0xffff_fffd, 1, 0x6); m.Entry() != want {
		t.Errorf("after Remove, want %v, got %v", want, m.Entry())
	}
	if m.Contains(0) || !m.Contains(2) {
		t.Errorf("Contains after Remove")
	}

	m.Clear()
	if m.Count() != 0 || m.Entry() != (Entry{}) {
		t.Errorf("Clear, got %d members, entry %v", m.Count(), m.Entry())
	}
}

func TestMergeBackward(t *testing.T) {
	t.Parallel()

	var in []Entry
	for i := range uint32(70) {
		in = append(in, exact(i, 1))
	}
	a := newTestAttempt(in, 0)

	m, err := a.newMerge()
	if err != nil {
		t.Fatalf("newMerge: %v", err)
	}
	defer a.freeMerge(&m)

	for _, i := range []int{3, 64, 5, 69, 0} {
		m.Add(i)
	}

	// removing the member just visited doesn't disturb the walk
	var got []int
	for i := range m.backward() {
		got = append(got, i)
		if i%2 == 1 {
			m.Remove(i)
		}
	}

	if want := []int{69, 64, 5, 3, 0}; !slices.Equal(got, want) {
		t.Errorf("backward, want %v, got %v", want, got)
	}
	if want := []int{0, 64}; !slices.Equal(m.Members(), want) {
		t.Errorf("Members after removal, want %v, got %v", want, m.Members())
	}
}
