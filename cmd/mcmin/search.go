// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/gaissmai/mcmin"
)

var searchCmd = &cobra.Command{
	Use:   "search FILE",
	Short: "Merge as many bitfields as possible into a routing table file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()

		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, e.close()) }()

		ct, err := readTable(args[0])
		if err != nil {
			return err
		}

		bfs := mcmin.SortBitfields(ct.Bitfields)
		sr, err := mcmin.NewSearcher(e.ctrl).Search(ctx, ct.Entries, bfs)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		midpoints := make([]int, 0, len(sr.Outcomes))
		for m := range sr.Outcomes {
			midpoints = append(midpoints, m)
		}
		slices.Sort(midpoints)
		for _, m := range midpoints {
			if _, err := fmt.Fprintf(w, "midpoint %4d: %s\n", m, sr.Outcomes[m]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "merged %d of %d bitfields in %d attempts\n", sr.Midpoint, bfs.Len(), sr.Attempts); err != nil {
			return err
		}

		return multierr.Combine(
			printResult(w, sr.Best),
			e.record(ctx, ct, sr.Best, sr.Midpoint),
		)
	},
}
