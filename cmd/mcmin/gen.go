// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package main

import (
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/gaissmai/mcmin"
	"github.com/gaissmai/mcmin/internal/tests/random"
)

var gen struct {
	entries   int
	seed      uint64
	x, y      int
	bitfields bool
	maxAtoms  int
	out       string
}

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a random routing table file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		prng := rand.New(rand.NewPCG(gen.seed, gen.seed))

		ct := &mcmin.ChipTable{
			X:       gen.x,
			Y:       gen.y,
			Entries: random.RealWorldTable(prng, gen.entries),
		}
		if gen.bitfields {
			ct.Bitfields = random.Bitfields(prng, ct.Entries, gen.maxAtoms)
		}

		if gen.out == "" || gen.out == "-" {
			return mcmin.WriteChipTable(cmd.OutOrStdout(), ct)
		}

		f, err := os.Create(gen.out)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, f.Close()) }()

		return mcmin.WriteChipTable(f, ct)
	},
}

func init() {
	flags := genCmd.Flags()
	flags.IntVarP(&gen.entries, "entries", "n", 1000, "Number of entries")
	flags.Uint64Var(&gen.seed, "seed", 42, "Seed of the generator")
	flags.IntVar(&gen.x, "x", 0, "Chip x coordinate")
	flags.IntVar(&gen.y, "y", 0, "Chip y coordinate")
	flags.BoolVar(&gen.bitfields, "bitfields", false, "Generate bitfields for the cores")
	flags.IntVar(&gen.maxAtoms, "max-atoms", 256, "Atoms per bitfield at most")
	flags.StringVarP(&gen.out, "output", "o", "-", "Output file")
}
