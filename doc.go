// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package mcmin minimises SpiNNaker multicast routing tables.
//
// A router holds at most [MaxEntries] ternary entries. Each entry matches
// 32 bit keys with a key/mask pattern and sends matching packets to a set
// of links and cores; the first matching entry wins. Tables produced by
// the tool chain are often larger than that and must be compressed into
// fewer, more general entries without changing where any key is routed.
//
// Three compressors are available, selected by [Algorithm]:
//
//   - OrderedCovering: merges entries of the same route across the table,
//     sorted by generality, and keeps track of the merged originals as
//     aliases so later merges never cover them by accident.
//   - Pairwise: groups entries by route and merges them pair by pair,
//     cheap and without aliases.
//   - MTrie: minimises the patterns of every route with a ternary trie,
//     then continues with ordered covering.
//
// A [Controller] runs one attempt under a time budget and a bounded
// allocation region and reports a [Result]. Entries the router's default
// route handles anyway may be removed up front.
//
// Bitfields tell which atoms of a source vertex a core needs at all.
// Merging a bitfield expands its entry into one entry per atom and drops
// the core from the atoms it doesn't need, trading table space for fewer
// packets. A [Searcher] finds how many bitfields still fit by running
// attempts concurrently.
package mcmin
