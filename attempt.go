// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gaissmai/mcmin/internal/alias"
	"github.com/gaissmai/mcmin/internal/bitset"
	"github.com/gaissmai/mcmin/internal/logfields"
	"github.com/gaissmai/mcmin/internal/region"
)

// Signals are the two asynchronous conditions a running attempt polls:
// the deadline was reached and a stop was requested.
//
// Both are plain atomic flags, set from a timer, a context or another
// goroutine and read from the hot loops of the compressors.
type Signals struct {
	stopped atomic.Bool
	expired atomic.Bool

	mu    sync.Mutex
	timer *time.Timer
}

// NewSignals returns signals with neither flag set.
func NewSignals() *Signals {
	return &Signals{}
}

// Stop requests the attempt to stop.
func (s *Signals) Stop() {
	s.stopped.Store(true)
}

// Expire marks the deadline as reached.
func (s *Signals) Expire() {
	s.expired.Store(true)
}

// Arm starts the deadline timer, d <= 0 expires immediately.
// Arming again replaces the previous timer.
func (s *Signals) Arm(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	if d <= 0 {
		s.Expire()
		return
	}
	s.timer = time.AfterFunc(d, s.Expire)
}

// Disarm stops the deadline timer, an already set flag stays set.
func (s *Signals) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// WatchContext maps ctx onto the signals: a passed deadline expires the
// attempt, a cancel stops it. The returned func detaches the watch.
func (s *Signals) WatchContext(ctx context.Context) (release func()) {
	stop := context.AfterFunc(ctx, func() { s.fromContext(ctx) })
	return func() { stop() }
}

func (s *Signals) fromContext(ctx context.Context) {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		s.Expire()
	case ctx.Err() != nil:
		s.Stop()
	}
}

// Err returns ErrForcedToStop or ErrRanOutOfTime if the respective flag
// is set, stop taking precedence.
func (s *Signals) Err() error {
	switch {
	case s.stopped.Load():
		return ErrForcedToStop
	case s.expired.Load():
		return ErrRanOutOfTime
	}
	return nil
}

// Attempt binds everything one compression run works on: the table, the
// alias map, the target length, the signals and the allocation region.
// An Attempt is owned by exactly one goroutine.
type Attempt struct {
	table   *Table
	aliases *alias.Table
	target  int
	signals *Signals
	region  *region.Region
	log     logrus.FieldLogger

	merges int
}

// NewAttempt prepares an attempt to compress tbl down to target entries.
// Nil signals never fire, a nil region is unbounded, a nil logger
// discards.
func NewAttempt(tbl *Table, target int, s *Signals, r *region.Region, log logrus.FieldLogger) *Attempt {
	if s == nil {
		s = NewSignals()
	}
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = l
	}
	return &Attempt{
		table:   tbl,
		aliases: alias.New(r),
		target:  max(target, 0),
		signals: s,
		region:  r,
		log:     log,
	}
}

// Table returns the table the attempt works on.
func (a *Attempt) Table() *Table { return a.table }

// Target returns the target length.
func (a *Attempt) Target() int { return a.target }

// Merges returns the number of merges applied so far.
func (a *Attempt) Merges() int { return a.merges }

// Aliases returns the alias map built by ordered covering.
func (a *Attempt) Aliases() map[KeyMask][]Alias {
	return collectAliases(a.aliases)
}

// poll returns a non nil error if the attempt must end.
func (a *Attempt) poll() error {
	return a.signals.Err()
}

// allocSet allocates an index set of size n from the region.
func (a *Attempt) allocSet(n int) (bitset.BitSet, error) {
	var alloc bitset.Allocator
	if a.region != nil {
		alloc = a.region
	}
	bs, err := bitset.Alloc(alloc, uint(n))
	if err != nil {
		return bs, fmt.Errorf("bitset of %d: %w", n, err)
	}
	return bs, nil
}

func (a *Attempt) freeSet(bs *bitset.BitSet) {
	var alloc bitset.Allocator
	if a.region != nil {
		alloc = a.region
	}
	bs.Free(alloc)
}

// release gives back everything still charged to the region.
func (a *Attempt) release() {
	a.aliases.Clear()
}

func (a *Attempt) logger() logrus.FieldLogger {
	return a.log.WithFields(logrus.Fields{
		logfields.Entries: a.table.Len(),
		logfields.Target:  a.target,
	})
}
