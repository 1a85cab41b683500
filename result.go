// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"errors"
	"time"

	"github.com/gaissmai/mcmin/internal/alias"
	"github.com/gaissmai/mcmin/internal/region"
)

var (
	// ErrRanOutOfTime is returned when the time budget of an attempt expired.
	ErrRanOutOfTime = errors.New("compression ran out of time")

	// ErrForcedToStop is returned when an attempt was asked to stop.
	ErrForcedToStop = errors.New("compression forced to stop")

	// ErrAllocation is returned when the allocation region of an attempt
	// is exhausted.
	ErrAllocation = region.ErrExhausted

	// ErrFailedToCompress is returned when no further merge is possible
	// but the table is still larger than the target.
	ErrFailedToCompress = errors.New("failed to compress to target")

	// ErrTooManyRoutes is returned by the pairwise compressor for tables
	// with more distinct routes than a router can hold.
	ErrTooManyRoutes = errors.New("too many distinct routes")

	// ErrTableTooLarge is returned for input tables beyond MaxInputEntries.
	ErrTableTooLarge = errors.New("routing table too large")
)

// Status is the outcome of a compression attempt.
type Status uint8

const (
	Success Status = iota
	FailedToCompress
	RanOutOfTime
	ForcedToStop
	FailedByAllocation
)

var statusNames = [...]string{
	Success:            "success",
	FailedToCompress:   "failed-to-compress",
	RanOutOfTime:       "ran-out-of-time",
	ForcedToStop:       "forced-to-stop",
	FailedByAllocation: "failed-by-allocation",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "invalid"
}

// MarshalText implements [encoding.TextMarshaler].
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// statusOf maps the error of an attempt to its status.
//
// Several conditions may hold at once, e.g. the timer fires while an
// allocation fails. The most specific wins: allocation, then stop,
// then time, then failed to compress.
func statusOf(err error) Status {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, ErrAllocation):
		return FailedByAllocation
	case errors.Is(err, ErrForcedToStop):
		return ForcedToStop
	case errors.Is(err, ErrRanOutOfTime):
		return RanOutOfTime
	}
	return FailedToCompress
}

// Alias is one original entry that a merged entry stands for.
type Alias struct {
	KeyMask
	Source uint32
}

// Result is the outcome of one compression run.
type Result struct {
	Status Status

	// Entries is the compressed table on Success and the best table
	// reached on FailedToCompress. It is nil otherwise, a partially
	// compressed table after a timeout or stop is discarded.
	Entries []Entry

	// Aliases maps merged patterns to the originals they replaced,
	// ordered covering only.
	Aliases map[KeyMask][]Alias

	// Err is the error behind a Status other than Success.
	Err error

	// Stats of the run.
	Stats Stats
}

// Stats counts what one run did.
type Stats struct {
	Algorithm     Algorithm
	InputEntries  int
	OutputEntries int
	Merges        int
	DefaultRoutes int // entries removed by the default route pass
	PeakBytes     int64
	Duration      time.Duration
}

// collectAliases flattens the alias table.
func collectAliases(tbl *alias.Table) map[KeyMask][]Alias {
	if tbl == nil || tbl.Len() == 0 {
		return nil
	}

	out := make(map[KeyMask][]Alias, tbl.Len())
	for km, list := range tbl.All() {
		elems := make([]Alias, 0, list.Len())
		for e := range list.All() {
			elems = append(elems, Alias{KeyMask: e.KeyMask, Source: e.Source})
		}
		out[km] = elems
	}
	return out
}
