// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/gaissmai/mcmin"
	"github.com/gaissmai/mcmin/internal/logfields"
	"github.com/gaissmai/mcmin/provenance"
)

// env is what every subcommand runs with.
type env struct {
	ctrl  *mcmin.Controller
	reg   *prometheus.Registry
	store *provenance.Store
}

func newEnv(ctx context.Context) (*env, error) {
	e := &env{reg: prometheus.NewRegistry()}

	ctrl, err := mcmin.NewController(cfg, mcmin.NewMetrics(e.reg))
	if err != nil {
		return nil, err
	}
	e.ctrl = ctrl

	if dbPath != "" {
		if e.store, err = provenance.Open(ctx, dbPath); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *env) close() error {
	var err error
	if metricsFile != "" {
		err = multierr.Append(err, prometheus.WriteToTextfile(metricsFile, e.reg))
	}
	if e.store != nil {
		err = multierr.Append(err, e.store.Close())
	}
	return err
}

// record stores the run in the provenance database, if any.
func (e *env) record(ctx context.Context, ct *mcmin.ChipTable, res mcmin.Result, midpoint int) error {
	if e.store == nil {
		return nil
	}
	_, err := e.store.Add(ctx, provenance.NewRecord(ct.X, ct.Y, ct.Entries, res, midpoint))
	return err
}

func readTable(path string) (*mcmin.ChipTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ct, err := mcmin.ReadChipTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		logfields.File:    path,
		logfields.Chip:    fmt.Sprintf("%d,%d", ct.X, ct.Y),
		logfields.Entries: len(ct.Entries),
	}).Debugf("Read table with %d bitfields", len(ct.Bitfields))

	return ct, nil
}

func printResult(w io.Writer, res mcmin.Result) error {
	if !jsonOutput {
		return res.Fprint(w)
	}

	data, err := res.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
