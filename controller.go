// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gaissmai/mcmin/internal/logfields"
	"github.com/gaissmai/mcmin/internal/region"
)

// Controller runs compression attempts as configured.
// It is safe for concurrent use, every call owns its own attempt.
type Controller struct {
	cfg     Config
	metrics *Metrics
}

// NewController validates cfg, m may be nil.
func NewController(cfg Config, m *Metrics) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Controller{cfg: cfg, metrics: m}, nil
}

// Config returns the configuration of c.
func (c *Controller) Config() Config {
	return c.cfg
}

// Compress compresses entries in one attempt, the input is not modified.
//
// The attempt aims for MaxEntries, or for zero entries if the config asks
// to compress as much as possible, and succeeds if the table fits into
// MaxEntries. A table already within the target is returned unchanged. A done ctx stops the attempt, a passed ctx deadline counts
// as running out of time like the time budget does.
func (c *Controller) Compress(ctx context.Context, entries []Entry) Result {
	return c.Run(ctx, entries, NewSignals())
}

// Run is Compress with signals owned by the caller, who may stop the
// attempt or expire it early. Signals set before the call end the attempt
// before anything is done.
func (c *Controller) Run(ctx context.Context, entries []Entry, s *Signals) (res Result) {
	if s == nil {
		s = NewSignals()
	}

	start := time.Now()
	log := c.cfg.logger().WithFields(logrus.Fields{
		logfields.LogSubsys: "controller",
		logfields.Algorithm: c.cfg.Algorithm,
	})

	res.Stats = Stats{Algorithm: c.cfg.Algorithm, InputEntries: len(entries)}
	defer func() {
		res.Stats.Duration = time.Since(start)
		c.metrics.observe(res, res.Stats.Duration)
		report(log, res)
	}()

	s.fromContext(ctx)
	if err := s.Err(); err != nil {
		res.Status, res.Err = statusOf(err), err
		return res
	}

	target := c.cfg.MaxEntries
	if c.cfg.CompressAsMuchAsPossible {
		target = 0
	}

	tbl := NewTable(entries)
	if tbl.Len() <= target {
		c.settle(&res, tbl, nil, nil)
		return res
	}

	if c.cfg.RemoveDefaultRoutes {
		if ok, n := RemoveDefaultRoutes(tbl, target); ok {
			res.Stats.DefaultRoutes = n
			c.settle(&res, tbl, nil, nil)
			return res
		}
	}

	if c.cfg.TimeBudget > 0 {
		s.Arm(c.cfg.TimeBudget)
		defer s.Disarm()
	}
	defer s.WatchContext(ctx)()

	r := region.New(c.cfg.RegionBytes)
	a := NewAttempt(tbl, target, s, r, log)
	defer a.release()

	err := c.cfg.Algorithm.Compressor().Compress(a)

	res.Stats.Merges = a.Merges()
	_, res.Stats.PeakBytes, _ = r.Stats()

	c.settle(&res, tbl, a, precedence(err, s))
	return res
}

// settle fills in the outcome. Only a finished attempt has a table to
// report, which succeeds if it fits the router.
func (c *Controller) settle(res *Result, tbl *Table, a *Attempt, err error) {
	if err == nil && tbl.Len() > c.cfg.MaxEntries {
		err = fmt.Errorf("%d entries left, router holds %d: %w", tbl.Len(), c.cfg.MaxEntries, ErrFailedToCompress)
	}

	res.Status, res.Err = statusOf(err), err
	if res.Status != Success && res.Status != FailedToCompress {
		return
	}

	res.Entries = tbl.Entries()
	res.Stats.OutputEntries = tbl.Len()
	if a != nil {
		res.Aliases = a.Aliases()
	}
}

// precedence applies the signals that were raised while the attempt
// ended for another reason. Allocation failures always win.
func precedence(err error, s *Signals) error {
	if err == nil || errors.Is(err, ErrAllocation) {
		return err
	}
	if serr := s.Err(); serr != nil && !errors.Is(err, serr) {
		return serr
	}
	return err
}

func report(log logrus.FieldLogger, res Result) {
	log = log.WithFields(logrus.Fields{
		logfields.Status:   res.Status,
		logfields.Entries:  res.Stats.InputEntries,
		logfields.Duration: res.Stats.Duration,
	})

	switch res.Status {
	case Success:
		log.WithField(logfields.Merges, res.Stats.Merges).
			Infof("Compressed routing table to %d entries", res.Stats.OutputEntries)
	case FailedToCompress:
		log.WithError(res.Err).Info("Routing table does not fit")
	default:
		log.WithError(res.Err).Warn("Compression attempt aborted")
	}
}
