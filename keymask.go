// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import "github.com/gaissmai/mcmin/internal/entry"

// KeyMask is a ternary pattern over 32 bit routing keys,
// see [entry.KeyMask] for the bit encoding.
type KeyMask = entry.KeyMask

// Entry is one multicast routing entry: pattern, route and source.
//
// Route and source bits 0..5 are the six inter-chip links,
// bits 6.. are the cores of the chip.
type Entry = entry.Entry

const (
	// LinkMask selects the link bits of a route or source.
	LinkMask = entry.LinkMask

	// NumLinks is the number of inter-chip links of a router.
	NumLinks = entry.NumLinks

	// FullMask is the mask of an entry that matches a single key.
	FullMask = entry.FullMask

	// MaxEntries is the number of entries a router can hold.
	MaxEntries = 1023

	// MaxInputEntries is the upper bound for tables accepted for compression.
	MaxInputEntries = 1024
)

// ProcessorBit returns the route bit of a core.
func ProcessorBit(processor int) uint32 {
	return entry.ProcessorBit(processor)
}
