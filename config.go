// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
)

// Config of a [Controller] and a [Searcher].
type Config struct {
	// Algorithm selects the compressor.
	Algorithm Algorithm

	// MaxEntries is the capacity of the router, a compressed table must
	// fit into it.
	MaxEntries int

	// CompressAsMuchAsPossible keeps merging below MaxEntries.
	CompressAsMuchAsPossible bool

	// TimeBudget per attempt, zero or negative means unlimited.
	TimeBudget time.Duration

	// RegionBytes bounds the memory of one attempt, zero means unbounded.
	RegionBytes int64

	// RemoveDefaultRoutes tries the default route pass first.
	RemoveDefaultRoutes bool

	// SearchWorkers is the number of concurrent attempts of a bitfield search.
	SearchWorkers int

	// RetryCount is how often a search repeats midpoints that failed by
	// allocation.
	RetryCount int

	// Logger, defaults to the logrus standard logger.
	Logger logrus.FieldLogger
}

// DefaultConfig returns the defaults used by the command line.
func DefaultConfig() Config {
	return Config{
		Algorithm:           AlgoOrderedCovering,
		MaxEntries:          MaxEntries,
		TimeBudget:          time.Second,
		RegionBytes:         64 << 20,
		RemoveDefaultRoutes: true,
		SearchWorkers:       4,
		RetryCount:          3,
	}
}

// Flags binds the options to flags, the current values are the defaults.
func (c *Config) Flags(flags *pflag.FlagSet) {
	flags.Var(&c.Algorithm, "algorithm", "Compressor, one of ordered-covering, pair, mtrie")
	flags.IntVar(&c.MaxEntries, "max-entries", c.MaxEntries, "Number of entries the router holds")
	flags.BoolVar(&c.CompressAsMuchAsPossible, "compress-as-much-as-possible", c.CompressAsMuchAsPossible, "Keep merging once the table fits")
	flags.DurationVar(&c.TimeBudget, "time-budget", c.TimeBudget, "Time per compression attempt, 0 for unlimited")
	flags.Int64Var(&c.RegionBytes, "region-bytes", c.RegionBytes, "Memory per compression attempt in bytes, 0 for unbounded")
	flags.BoolVar(&c.RemoveDefaultRoutes, "remove-default-routes", c.RemoveDefaultRoutes, "Drop entries the default route handles if that suffices")
	flags.IntVar(&c.SearchWorkers, "search-workers", c.SearchWorkers, "Concurrent attempts of a bitfield search")
	flags.IntVar(&c.RetryCount, "retry-count", c.RetryCount, "Retries of a bitfield search after allocation failures")
}

// Validate returns all problems of c at once.
func (c Config) Validate() error {
	var err error
	if c.Algorithm > AlgoMTrie {
		err = multierr.Append(err, fmt.Errorf("invalid algorithm %s", c.Algorithm))
	}
	if c.MaxEntries <= 0 {
		err = multierr.Append(err, fmt.Errorf("max entries must be positive, got %d", c.MaxEntries))
	}
	if c.RegionBytes < 0 {
		err = multierr.Append(err, fmt.Errorf("region bytes must not be negative, got %d", c.RegionBytes))
	}
	if c.SearchWorkers < 1 {
		err = multierr.Append(err, fmt.Errorf("search workers must be at least 1, got %d", c.SearchWorkers))
	}
	if c.RetryCount < 0 {
		err = multierr.Append(err, fmt.Errorf("retry count must not be negative, got %d", c.RetryCount))
	}
	return err
}

func (c Config) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}
