// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package region implements a bounded allocation budget for one
// compression attempt.
//
// Everything an attempt allocates while it runs (merge sets, alias lists,
// trie nodes) is charged against its region. An exhausted region is not a
// crash but an attempt outcome: the caller gets ErrExhausted and reports
// the attempt as failed by allocation.
package region

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrExhausted is returned when a reservation would exceed the budget.
var ErrExhausted = errors.New("allocation region exhausted")

// WordBytes is the charge for one bitset word.
const WordBytes = 8

// Region is a byte budget with a reuse pool for bitset words.
//
// A nil *Region is valid and unbounded, nothing is tracked.
type Region struct {
	words sync.Pool // *[]uint64 for reuse

	limit int64
	live  atomic.Int64 // bytes currently reserved
	peak  atomic.Int64 // high water mark of live
	total atomic.Int64 // number of successful reservations
}

// New returns a region with the given limit in bytes,
// limit <= 0 means unbounded but tracked.
func New(limit int64) *Region {
	return &Region{limit: limit}
}

// Reserve charges n bytes against the budget.
func (r *Region) Reserve(n int64) error {
	if r == nil || n <= 0 {
		return nil
	}

	for {
		live := r.live.Load()
		next := live + n
		if r.limit > 0 && next > r.limit {
			return fmt.Errorf("reserve %d bytes, %d of %d in use: %w", n, live, r.limit, ErrExhausted)
		}
		if r.live.CompareAndSwap(live, next) {
			r.total.Add(1)
			for {
				peak := r.peak.Load()
				if next <= peak || r.peak.CompareAndSwap(peak, next) {
					break
				}
			}
			return nil
		}
	}
}

// Release gives n bytes back.
func (r *Region) Release(n int64) {
	if r == nil || n <= 0 {
		return
	}
	r.live.Add(-n)
}

// Words returns a zeroed slice of n words charged to the region.
func (r *Region) Words(n int) ([]uint64, error) {
	if r == nil {
		return make([]uint64, n), nil
	}
	if err := r.Reserve(int64(n) * WordBytes); err != nil {
		return nil, err
	}

	if p, ok := r.words.Get().(*[]uint64); ok && cap(*p) >= n {
		w := (*p)[:n]
		clear(w)
		return w, nil
	}
	return make([]uint64, n), nil
}

// FreeWords returns w to the region for reuse.
func (r *Region) FreeWords(w []uint64) {
	if r == nil {
		return
	}
	r.Release(int64(len(w)) * WordBytes)
	w = w[:0]
	r.words.Put(&w)
}

// Stats returns the currently reserved bytes, the high water mark
// and the number of reservations ever made.
func (r *Region) Stats() (live, peak, total int64) {
	if r == nil {
		return 0, 0, 0
	}
	return r.live.Load(), r.peak.Load(), r.total.Load()
}

// Limit returns the budget, 0 if unbounded.
func (r *Region) Limit() int64 {
	if r == nil {
		return 0
	}
	return r.limit
}
