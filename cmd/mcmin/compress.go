// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/gaissmai/mcmin"
)

var compressCmd = &cobra.Command{
	Use:   "compress FILE...",
	Short: "Compress routing table files, one attempt each",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()

		e, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, e.close()) }()

		for _, path := range args {
			ct, rerr := readTable(path)
			if rerr != nil {
				err = multierr.Append(err, rerr)
				continue
			}

			res := e.ctrl.Compress(ctx, ct.Entries)
			if res.Status != mcmin.Success {
				err = multierr.Append(err, fmt.Errorf("%s: %w", path, res.Err))
			}

			err = multierr.Append(err, printResult(cmd.OutOrStdout(), res))
			err = multierr.Append(err, e.record(ctx, ct, res, 0))
		}
		return err
	},
}
