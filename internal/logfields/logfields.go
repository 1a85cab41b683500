// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package logfields defines the structured log field names.
package logfields

const (
	// LogSubsys is the component emitting the log line.
	LogSubsys = "subsys"

	// Algorithm is the compressor of an attempt.
	Algorithm = "algorithm"

	// Entries is the current table size.
	Entries = "entries"

	// Target is the table size an attempt aims for.
	Target = "target"

	// Members is the number of entries in a merge.
	Members = "members"

	// KeyMask is a key/mask pair.
	KeyMask = "keyMask"

	// Route is a route word.
	Route = "route"

	// Status is the outcome of an attempt.
	Status = "status"

	// Duration of an attempt.
	Duration = "duration"

	// Midpoint is the number of bitfields merged into a table.
	Midpoint = "midpoint"

	// Chip is the x, y coordinate of a router.
	Chip = "chip"

	// File is a table file on disk.
	File = "file"

	Merges = "merges"
)
