// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"io"
	"math/rand/v2"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/gaissmai/mcmin/internal/golden"
	"github.com/gaissmai/mcmin/internal/region"
	"github.com/gaissmai/mcmin/internal/tests/random"
)

// this file contains helpers for other test functions

// workLoadN to adjust loops for tests with -short
func workLoadN() int {
	if testing.Short() {
		return 10
	}
	return 100
}

// abbreviation for an entry
func ent(key, mask, route, source uint32) Entry {
	return Entry{KeyMask: KeyMask{Key: key, Mask: mask}, Route: route, Source: source}
}

// exact entry below random.Base
func exact(low, route uint32) Entry {
	return ent(random.Base|low, FullMask, route, 0)
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

// newTestAttempt wraps entries in an attempt with an unbounded region.
func newTestAttempt(entries []Entry, target int) *Attempt {
	return NewAttempt(NewTable(entries), target, nil, region.New(0), quietLogger())
}

// randomTables returns n random orthogonal tables over the lower width bits.
func randomTables(prng *rand.Rand, n, width int) [][]Entry {
	out := make([][]Entry, 0, n)
	for range n {
		size := 2 + prng.IntN(1<<(width-2))
		out = append(out, random.Table(prng, size, width, 1+prng.IntN(6)))
	}
	return out
}

// mustRouteAlike fails if got routes any key of want differently,
// checking all keys over the lower width bits.
func mustRouteAlike(t *testing.T, want, got []Entry, width int) {
	t.Helper()
	if err := golden.Diff(want, got, golden.Keys(random.Base, width)); err != nil {
		t.Fatalf("%v\nwant:\n%s\ngot:\n%s", err, NewTable(want), NewTable(got))
	}
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s must panic", name)
		}
	}()
	fn()
}

func noPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("%s panicked: %v", name, r)
		}
	}()
	fn()
}
