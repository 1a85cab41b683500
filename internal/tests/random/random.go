// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package random generates routing entries and tables for tests and
// benchmarks. All generators are deterministic for a given prng.
package random

import (
	"math/bits"
	"math/rand/v2"

	"github.com/gaissmai/mcmin/internal/entry"
)

// Base is the fixed upper part of keys generated with a narrow width.
const Base = 0xC0DE_0000

// KeyMask returns a valid pattern whose free bits are within the lower
// width bits, the upper bits are those of Base.
func KeyMask(prng *rand.Rand, width int) entry.KeyMask {
	low := uint32(1)<<width - 1
	mask := ^low | prng.Uint32()&low
	return entry.KeyMask{Key: (Base | prng.Uint32()&low) & mask, Mask: mask}
}

// Link returns a single random link bit.
func Link(prng *rand.Rand) uint32 {
	return 1 << prng.IntN(entry.NumLinks)
}

// Route returns a random non empty route over links and 18 cores.
func Route(prng *rand.Rand) uint32 {
	for {
		if r := prng.Uint32() & (1<<(entry.NumLinks+18) - 1); r != 0 {
			return r
		}
	}
}

// Routes returns n distinct random routes.
func Routes(prng *rand.Rand, n int) []uint32 {
	seen := make(map[uint32]bool, n)
	out := make([]uint32, 0, n)
	for len(out) < n {
		r := Route(prng)
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

// Table returns up to n pairwise orthogonal entries over the lower width
// bits, with routes drawn from nRoutes distinct routes. Starting from
// distinct exact keys, some entries are widened by random X bits as long
// as they stay orthogonal.
func Table(prng *rand.Rand, n, width, nRoutes int) []entry.Entry {
	n = min(n, 1<<width)
	routes := Routes(prng, max(nRoutes, 1))
	low := uint32(1)<<width - 1

	seen := make(map[uint32]bool, n)
	tbl := make([]entry.Entry, 0, n)
	for len(tbl) < n {
		k := prng.Uint32() & low
		if seen[k] {
			continue
		}
		seen[k] = true

		var src uint32
		if prng.IntN(4) == 0 {
			src = Link(prng)
		}
		tbl = append(tbl, entry.Entry{
			KeyMask: entry.KeyMask{Key: Base | k, Mask: entry.FullMask},
			Route:   routes[prng.IntN(len(routes))],
			Source:  src,
		})
	}

	for i := range tbl {
		if prng.IntN(3) != 0 {
			continue
		}
		bit := uint32(1) << prng.IntN(width)
		wider := tbl[i].KeyMask
		wider.Mask &^= bit
		wider.Key &^= bit

		ok := true
		for j := range tbl {
			if j != i && wider.Intersects(tbl[j].KeyMask) {
				ok = false
				break
			}
		}
		if ok {
			tbl[i].KeyMask = wider
		}
	}

	return tbl
}

// RealWorldTable returns n orthogonal entries shaped like a chip table
// of a neural network: one key block per source vertex (x, y, core),
// block sizes 1 to 2048 atoms and routes mostly to local cores.
func RealWorldTable(prng *rand.Rand, n int) []entry.Entry {
	seen := make(map[uint32]bool, n)
	tbl := make([]entry.Entry, 0, n)

	for len(tbl) < n {
		x, y, p := prng.Uint32()&0xFF, prng.Uint32()&0xFF, uint32(1+prng.IntN(17))
		vertex := x<<24 | y<<16 | p<<11
		if seen[vertex] {
			continue
		}
		seen[vertex] = true

		atoms := prng.IntN(12) // 2^0 .. 2^11 atoms
		mask := entry.FullMask &^ (uint32(1)<<atoms - 1)

		route := uint32(0)
		for range 1 + prng.IntN(3) {
			if prng.IntN(5) == 0 {
				route |= Link(prng)
			} else {
				route |= entry.ProcessorBit(1 + prng.IntN(17))
			}
		}

		var src uint32
		if prng.IntN(3) == 0 {
			src = Link(prng)
		}

		tbl = append(tbl, entry.Entry{
			KeyMask: entry.KeyMask{Key: vertex, Mask: mask},
			Route:   route,
			Source:  src,
		})
	}

	return tbl
}

// Bitfields returns for every entry routed to cores one bitfield per core,
// with a random share of needed atoms. The atoms of an entry are the keys
// it matches, counted from its key. Entries with more than maxAtoms keys
// get no bitfields.
func Bitfields(prng *rand.Rand, entries []entry.Entry, maxAtoms int) []entry.Bitfield {
	var out []entry.Bitfield
	for _, e := range entries {
		cores := e.Route &^ entry.LinkMask
		if cores == 0 {
			continue
		}

		nAtoms := 1 << bits.OnesCount32(e.Xs())
		if nAtoms > maxAtoms {
			continue
		}
		density := prng.Float64()

		for w := cores; w != 0; w &= w - 1 {
			data := make([]uint32, entry.Words(nAtoms))
			for atom := range nAtoms {
				if prng.Float64() < density {
					data[atom>>5] |= 1 << (atom & 31)
				}
			}
			out = append(out, entry.Bitfield{
				Key:       e.Key,
				NAtoms:    nAtoms,
				Processor: bits.TrailingZeros32(w) - entry.NumLinks,
				Data:      data,
			})
		}
	}
	return out
}
