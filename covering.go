// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"fmt"
	"math/bits"

	"github.com/sirupsen/logrus"

	"github.com/gaissmai/mcmin/internal/alias"
	"github.com/gaissmai/mcmin/internal/bitset"
	"github.com/gaissmai/mcmin/internal/logfields"
)

// OrderedCovering is the ordered covering compressor.
//
// The table is kept sorted by generality. In every round the best merge,
// the largest set of same-route entries that can be replaced by one more
// general entry without stealing keys from the entries below it, is
// applied. Entries that were merged away are remembered in the alias map,
// later merges must avoid their keys too.
//
// The rounds end when the table fits the target, no merge saves an entry,
// or the attempt is stopped.
type OrderedCovering struct{}

// Compress implements [Compressor].
func (OrderedCovering) Compress(a *Attempt) error {
	t := a.table
	if t.Len() <= a.target {
		return nil
	}

	if !t.sortedByGenerality() {
		t.SortByGenerality()
	}

	for t.Len() > a.target {
		if err := a.poll(); err != nil {
			return err
		}

		best, err := a.bestMerge()
		if err != nil {
			return err
		}

		count := best.Count()
		if count > 1 {
			err = a.applyMerge(&best)
		}
		a.freeMerge(&best)

		if err != nil {
			return err
		}
		if count < 2 {
			break
		}
	}

	return a.poll()
}

// bestMerge returns the merge with the highest goodness over all routes.
// The returned merge may be empty.
func (a *Attempt) bestMerge() (Merge, error) {
	t := a.table
	n := t.Len()

	considered, err := a.allocSet(n)
	if err != nil {
		return Merge{}, err
	}
	defer a.freeSet(&considered)

	best, err := a.newMerge()
	if err != nil {
		return Merge{}, err
	}

	working, err := a.newMerge()
	if err != nil {
		a.freeMerge(&best)
		return Merge{}, err
	}
	defer a.freeMerge(&working)

	fail := func(err error) (Merge, error) {
		a.freeMerge(&best)
		return Merge{}, err
	}

	for i := range n {
		if err := a.poll(); err != nil {
			return fail(err)
		}
		if considered.Contains(uint(i)) {
			continue
		}

		working.Clear()
		working.Add(i)
		considered.Add(uint(i))

		route := t.Get(i).Route
		for j := i + 1; j < n; j++ {
			if t.Get(j).Route == route {
				working.Add(j)
				considered.Add(uint(j))
			}
		}

		if working.Goodness() <= best.Goodness() {
			continue
		}

		if err := a.downCheck(&working, best.Goodness()); err != nil {
			return fail(err)
		}
		if working.Goodness() <= best.Goodness() {
			continue
		}

		changed, err := a.upCheck(&working, best.Goodness())
		if err != nil {
			return fail(err)
		}

		if changed {
			if working.Goodness() <= best.Goodness() {
				continue
			}
			if err := a.downCheck(&working, best.Goodness()); err != nil {
				return fail(err)
			}
		}

		if best.Goodness() < working.Goodness() {
			best.swap(&working)
		}
	}

	return best, nil
}

// upCheck drops members that would be shadowed by entries between their
// own position and the insertion point of the merge. Members are checked
// bottom up, the insertion point moves with every removal.
func (a *Attempt) upCheck(m *Merge, minGoodness int) (changed bool, err error) {
	t := a.table
	minGoodness = max(minGoodness, 0)
	ip := t.InsertionPoint(m.Generality())

	for i := range m.backward() {
		if m.Goodness() <= minGoodness {
			break
		}
		if err := a.poll(); err != nil {
			return changed, err
		}

		km := t.Get(i).KeyMask
		for j := i + 1; j < ip; j++ {
			if km.Intersects(t.Get(j).KeyMask) {
				changed = true
				m.Remove(i)
				ip = t.InsertionPoint(m.Generality())
				break
			}
		}
	}

	if m.Goodness() <= minGoodness {
		changed = true
		m.Clear()
	}
	return changed, nil
}

// settable narrows the bits that could be fixed in the merged pattern to
// stop it from covering km. Only the candidates of the most stringent
// covered pattern, the one with the fewest settable bits, survive.
type settable struct {
	stringency int
	toZero     uint32
	toOne      uint32
	covered    bool
}

func (s *settable) add(merged, km KeyMask) {
	s.covered = true

	bitsX := ^km.Xs() & merged.Xs()
	n := bits.OnesCount32(bitsX)
	zero := bitsX & km.Key
	one := bitsX &^ km.Key

	switch {
	case n < s.stringency:
		s.stringency = n
		s.toZero = zero
		s.toOne = one
	case n == s.stringency:
		s.toZero |= zero
		s.toOne |= one
	}
}

// downCheck drops members until the merged entry no longer covers any
// entry, or any alias of an entry, that sits below its insertion point.
func (a *Attempt) downCheck(m *Merge, minGoodness int) error {
	t := a.table
	minGoodness = max(minGoodness, 0)

	for m.Goodness() > minGoodness {
		if err := a.poll(); err != nil {
			return err
		}

		s := settable{stringency: 33}
		ip := t.InsertionPoint(m.Generality())

		for i := ip; i < t.Len() && s.stringency > 0; i++ {
			if err := a.poll(); err != nil {
				return err
			}

			km := t.Get(i).KeyMask
			if !km.Intersects(m.KeyMask) {
				continue
			}

			list, ok := a.aliases.Find(km)
			if !ok {
				s.add(m.KeyMask, km)
				continue
			}

			for el := range list.All() {
				if err := a.poll(); err != nil {
					return err
				}
				if el.Intersects(m.KeyMask) {
					s.add(m.KeyMask, el.KeyMask)
				}
			}
		}

		if !s.covered {
			return nil
		}

		if s.stringency == 0 {
			m.Clear()
			return nil
		}

		if err := a.dropRemovables(m, s); err != nil {
			return err
		}

		if m.Count() == 1 {
			m.Clear()
		}
	}

	return nil
}

// dropRemovables removes the smallest set of members that keeps one of
// the settable bits from being X.
func (a *Attempt) dropRemovables(m *Merge, s settable) error {
	best, err := a.allocSet(m.Count())
	if err != nil {
		return err
	}
	defer a.freeSet(&best)

	working, err := a.allocSet(m.Count())
	if err != nil {
		return err
	}
	defer a.freeSet(&working)

	members := m.Members()
	a.removables(members, s.toZero, false, &best, &working)
	a.removables(members, s.toOne, true, &best, &working)

	// best indexes by position in the merge
	for pos, i := range members {
		if err := a.poll(); err != nil {
			return err
		}
		if best.Contains(uint(pos)) {
			m.Remove(i)
		}
	}
	return nil
}

// removables finds, bit by bit from the top, the members that have to go
// so the bit can be set to zero (or one): members with an X or the
// opposite value at that bit. The smallest such set ends up in best.
func (a *Attempt) removables(members []int, settable uint32, toOne bool, best, working *bitset.BitSet) {
	t := a.table

	for bit := uint32(1 << 31); bit > 0 && best.Count() != 1; bit >>= 1 {
		if bit&settable == 0 {
			continue
		}

		for pos, i := range members {
			km := t.Get(i).KeyMask
			if bit&^km.Mask != 0 || (!toOne && bit&km.Key != 0) || (toOne && bit&^km.Key != 0) {
				working.Add(uint(pos))
			}
		}

		if best.Count() == 0 || working.Count() < best.Count() {
			best.Swap(working)
		}
		working.Clear()
	}
}

// applyMerge replaces the members of m by the merged entry at its
// insertion point and records the aliases. The table shrinks by
// Count()-1 entries.
func (a *Attempt) applyMerge(m *Merge) error {
	t := a.table
	merged := m.Entry()
	ip := t.InsertionPoint(m.Generality())
	members := m.Members()

	list, err := alias.NewList(a.region, len(members))
	if err != nil {
		return fmt.Errorf("alias list for %d entries: %w", len(members), err)
	}

	for _, i := range members {
		e := t.Get(i)
		if old, ok := a.aliases.Find(e.KeyMask); ok {
			list.Join(old)
			a.aliases.Remove(e.KeyMask)
		} else {
			list.Append(e.KeyMask, e.Source)
		}
	}

	if err := a.aliases.Insert(merged.KeyMask, list); err != nil {
		return fmt.Errorf("alias for %s: %w", merged.KeyMask, err)
	}

	// compact the non members, counting those above the insertion point
	w, above := 0, 0
	for r := range t.Len() {
		if m.Contains(r) {
			if r < ip {
				above++
			}
			continue
		}
		t.Copy(w, r)
		w++
	}

	// open a slot for the merged entry
	pos := ip - above
	for r := w; r > pos; r-- {
		t.Copy(r, r-1)
	}
	t.Put(merged, pos)
	t.RemoveFromSize(len(members) - 1)

	a.merges++
	a.log.WithFields(logrus.Fields{
		logfields.Members: len(members),
		logfields.KeyMask: merged.KeyMask,
		logfields.Route:   merged.Route,
		logfields.Entries: t.Len(),
	}).Debug("Applied merge")

	return nil
}
