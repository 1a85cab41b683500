// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Command mcmin compresses SpiNNaker multicast routing tables.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gaissmai/mcmin"
)

var (
	cfg = mcmin.DefaultConfig()

	logLevel    string
	jsonOutput  bool
	dbPath      string
	metricsFile string
)

var rootCmd = &cobra.Command{
	Use:          "mcmin",
	Short:        "Minimise SpiNNaker multicast routing tables",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logrus.SetLevel(lvl)
		cfg.Logger = logrus.StandardLogger()
		return cfg.Validate()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	cfg.Flags(flags)
	flags.StringVar(&logLevel, "log-level", "info", "Log level, one of panic, fatal, error, warn, info, debug, trace")
	flags.BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	flags.StringVar(&dbPath, "provenance", "", "Record every run in this sqlite database")
	flags.StringVar(&metricsFile, "metrics-file", "", "Write prometheus metrics to this file on exit")

	rootCmd.AddCommand(compressCmd, searchCmd, genCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
