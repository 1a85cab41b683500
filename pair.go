// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/gaissmai/mcmin/internal/logfields"
)

// MaxRoutes is the number of distinct routes the pairwise compressor
// can handle.
const MaxRoutes = 1023

// Pairwise is the pair compressor.
//
// The table is grouped by route, rarest route first, and within every
// group entries are merged pair by pair as long as the merged pattern
// does not intersect any entry of a later group. It keeps no alias map.
// A table within the target is left alone, any other runs to completion.
type Pairwise struct{}

// Compress implements [Compressor].
func (Pairwise) Compress(a *Attempt) error {
	t := a.table
	n := t.Len()
	if n <= a.target {
		return nil
	}

	ranks, err := routeRanks(t)
	if err != nil {
		return err
	}
	if err := a.poll(); err != nil {
		return err
	}

	slices.SortStableFunc(t.entries[:n], func(x, y Entry) int {
		if c := cmp.Compare(ranks[x.Route], ranks[y.Route]); c != 0 {
			return c
		}
		return x.Compare(y.KeyMask)
	})
	if err := a.poll(); err != nil {
		return err
	}

	write := 0
	for left := 0; left < n; {
		right := left
		route := t.Get(left).Route
		for right+1 < n && t.Get(right+1).Route == route {
			right++
		}
		next := right + 1

		before := write
		write = a.compressRun(left, right, next, write)

		a.log.WithFields(logrus.Fields{
			logfields.Route:   route,
			logfields.Entries: next - left,
			logfields.Merges:  next - left - (write - before),
		}).Debug("Compressed route group")

		if err := a.poll(); err != nil {
			return err
		}
		left = next
	}

	a.merges += n - write
	t.RemoveFromSize(n - write)
	return nil
}

// routeRanks orders the distinct routes by ascending frequency,
// routes of equal frequency by first appearance.
func routeRanks(t *Table) (map[uint32]int, error) {
	type freq struct {
		route uint32
		count int
	}

	var routes []freq
	index := map[uint32]int{}
	for _, e := range t.All() {
		if i, ok := index[e.Route]; ok {
			routes[i].count++
			continue
		}
		if len(routes) >= MaxRoutes {
			return nil, fmt.Errorf("more than %d: %w", MaxRoutes, ErrTooManyRoutes)
		}
		index[e.Route] = len(routes)
		routes = append(routes, freq{e.Route, 1})
	}

	slices.SortStableFunc(routes, func(x, y freq) int {
		return cmp.Compare(x.count, y.count)
	})

	ranks := make(map[uint32]int, len(routes))
	for i, r := range routes {
		ranks[r.route] = i
	}
	return ranks, nil
}

// compressRun merges the entries in [left, right], all with one route,
// and writes the result starting at write. Entries from remaining on
// belong to later groups and must not be covered by a merged entry.
func (a *Attempt) compressRun(left, right, remaining, write int) int {
	t := a.table

	for left < right {
		merged := false
		for idx := left + 1; idx <= right; idx++ {
			if m, ok := a.pairMerge(left, idx, remaining); ok {
				t.Put(m, left)
				t.Copy(idx, right)
				right--
				merged = true
				break
			}
		}
		if !merged {
			t.Copy(write, left)
			write++
			left++
		}
	}
	if left == right {
		t.Copy(write, left)
		write++
	}
	return write
}

// pairMerge merges the entries at i and j if the result intersects no
// entry from remaining on. The merged source is kept only if both agree.
func (a *Attempt) pairMerge(i, j, remaining int) (Entry, bool) {
	t := a.table
	x, y := t.Get(i), t.Get(j)

	m := Entry{
		KeyMask: x.Merge(y.KeyMask),
		Route:   x.Route,
	}
	if x.Source == y.Source {
		m.Source = x.Source
	}

	for k := remaining; k < t.Len(); k++ {
		if t.Get(k).Intersects(m.KeyMask) {
			return m, false
		}
	}
	return m, true
}
