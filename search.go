// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/cilium/workerpool"
	"github.com/sirupsen/logrus"

	"github.com/gaissmai/mcmin/internal/logfields"
)

// Searcher finds the largest number of bitfields, the midpoint, that can
// be merged into a routing table such that the expanded table still
// compresses to fit the router.
//
// Midpoints are tried in waves of concurrent attempts: first no bitfields
// at all, then all of them, then the middle of the largest untested gap
// between the best success and the lowest failure. A success stops the
// running attempts below it, a failure those above it.
type Searcher struct {
	ctrl *Controller
	log  logrus.FieldLogger
}

// NewSearcher returns a searcher running its attempts with ctrl.
func NewSearcher(ctrl *Controller) *Searcher {
	return &Searcher{
		ctrl: ctrl,
		log:  ctrl.cfg.logger().WithField(logfields.LogSubsys, "search"),
	}
}

// SearchResult is the outcome of a midpoint search.
type SearchResult struct {
	// Midpoint is the number of bitfields merged into Best.
	Midpoint int

	// Best is the result of the attempt at Midpoint.
	Best Result

	// Outcomes of all midpoints with a final outcome.
	Outcomes map[int]Status

	// Attempts counts all attempts run, stopped and retried ones included.
	Attempts int
}

// search is the state shared by the attempts of one search.
type search struct {
	mu sync.Mutex

	best       int
	bestRes    Result
	baseline   Result
	lowestFail int
	retries    int
	attempts   int

	outcomes map[int]Status
	running  map[int]*Signals
}

// Search runs the midpoint search for entries and bitfields. It fails if
// the table doesn't compress without any bitfield.
//
// If ctx is done before the search ends, the best result so far is
// returned along with the context error.
func (sr *Searcher) Search(ctx context.Context, entries []Entry, bfs *Bitfields) (SearchResult, error) {
	n := bfs.Len()
	cfg := sr.ctrl.cfg

	st := &search{
		best:       -1,
		lowestFail: n + 1,
		retries:    cfg.RetryCount,
		outcomes:   map[int]Status{},
		running:    map[int]*Signals{},
	}

	wp := workerpool.New(cfg.SearchWorkers)
	defer wp.Close()

	for wave := st.next(n, cfg.SearchWorkers); len(wave) > 0; wave = st.next(n, cfg.SearchWorkers) {
		if err := ctx.Err(); err != nil {
			return st.result(), fmt.Errorf("search interrupted: %w", err)
		}

		sr.log.WithField(logfields.Midpoint, wave).Debug("Starting search wave")

		for _, m := range wave {
			sig := st.start(m)
			err := wp.Submit(fmt.Sprintf("midpoint-%d", m), func(tctx context.Context) error {
				defer sig.WatchContext(ctx)()
				res := sr.ctrl.Run(tctx, bfs.Expand(entries, m), sig)
				st.done(m, res)
				return res.Err
			})
			if err != nil {
				return st.result(), fmt.Errorf("submit midpoint %d: %w", m, err)
			}
		}

		tasks, err := wp.Drain()
		if err != nil {
			return st.result(), fmt.Errorf("drain search wave: %w", err)
		}
		for _, task := range tasks {
			if task.Err() != nil {
				sr.log.WithError(task.Err()).Debugf("Attempt %s failed", task)
			}
		}

		if err := st.baselineErr(); err != nil {
			return st.result(), fmt.Errorf("no bitfields merged: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return st.result(), fmt.Errorf("search interrupted: %w", err)
	}

	res := st.result()
	sr.log.WithFields(logrus.Fields{
		logfields.Midpoint: res.Midpoint,
		logfields.Entries:  res.Best.Stats.OutputEntries,
	}).Infof("Merged %d of %d bitfields in %d attempts", res.Midpoint, n, res.Attempts)

	return res, nil
}

// start registers a running attempt at m.
func (st *search) start(m int) *Signals {
	st.mu.Lock()
	defer st.mu.Unlock()

	sig := NewSignals()
	st.running[m] = sig
	st.attempts++
	return sig
}

// done records the outcome of the attempt at m and stops the attempts
// made pointless by it.
func (st *search) done(m int, res Result) {
	st.mu.Lock()
	defer st.mu.Unlock()

	delete(st.running, m)
	if m == 0 {
		st.baseline = res
	}

	switch res.Status {
	case Success:
		st.outcomes[m] = Success
		if m > st.best {
			st.best, st.bestRes = m, res
		}
		for k, sig := range st.running {
			if k < m {
				sig.Stop()
			}
		}
		return

	case FailedByAllocation:
		if st.retries > 0 {
			// untested again
			st.retries--
			return
		}

	case ForcedToStop:
		// stopped by a better outcome or by the caller
		return
	}

	st.outcomes[m] = res.Status
	st.lowestFail = min(st.lowestFail, m)
	for k, sig := range st.running {
		if k > m {
			sig.Stop()
		}
	}
}

// next returns up to k midpoints to try, none when the search is over.
func (st *search) next(n, k int) []int {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.best < 0 {
		if _, tested := st.outcomes[0]; tested {
			return nil
		}
		return []int{0}
	}

	var wave []int
	for len(wave) < k {
		m, ok := st.pick(n, wave)
		if !ok {
			break
		}
		wave = append(wave, m)
	}
	return wave
}

// pick returns all bitfields if untested, else the middle of the largest
// gap between best and lowestFail not yet split by pending midpoints.
func (st *search) pick(n int, pending []int) (int, bool) {
	if n > st.best && n < st.lowestFail && !slices.Contains(pending, n) {
		return n, true
	}

	hi := min(st.lowestFail, n+1)
	points := []int{st.best, hi}
	for _, p := range pending {
		if p > st.best && p < hi {
			points = append(points, p)
		}
	}
	slices.Sort(points)

	gap, mid := 1, 0
	for i := 1; i < len(points); i++ {
		if d := points[i] - points[i-1]; d > gap {
			gap, mid = d, points[i-1]+d/2
		}
	}
	return mid, gap > 1
}

// baselineErr is the error of a failed attempt without bitfields.
func (st *search) baselineErr() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if status, tested := st.outcomes[0]; tested && status != Success {
		return st.baseline.Err
	}
	return nil
}

func (st *search) result() SearchResult {
	st.mu.Lock()
	defer st.mu.Unlock()

	return SearchResult{
		Midpoint: max(st.best, 0),
		Best:     st.bestRes,
		Outcomes: maps.Clone(st.outcomes),
		Attempts: st.attempts,
	}
}
