// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package entry implements the ternary key/mask value type of a
// multicast routing entry and the bit operations on it.
//
// A bit position in a KeyMask is one of
//
//	mask=1 key=0 -> 0
//	mask=1 key=1 -> 1
//	mask=0 key=0 -> X (don't care)
//	mask=0 key=1 -> ! (matches nothing)
package entry

import (
	"fmt"
	"math/bits"
	"strings"
)

const (
	// LinkMask selects the six inter-chip link bits of a route or source.
	LinkMask = 0x3f

	// NumLinks is the number of inter-chip links per router.
	NumLinks = 6

	// FullMask matches exactly one key.
	FullMask = 0xFFFF_FFFF
)

// KeyMask is a ternary pattern over 32 bit keys.
type KeyMask struct {
	Key  uint32
	Mask uint32
}

// Xs returns the bits that are don't care in km.
func (km KeyMask) Xs() uint32 {
	return ^km.Key & ^km.Mask
}

// Generality is the number of don't care bits.
func (km KeyMask) Generality() int {
	return bits.OnesCount32(km.Xs())
}

// Intersects reports whether some key is matched by both km and o.
func (km KeyMask) Intersects(o KeyMask) bool {
	return km.Key&o.Mask == o.Key&km.Mask
}

// Merge returns the most specific KeyMask that matches every key matched by
// km or o. Bits where the keys differ become X.
func (km KeyMask) Merge(o KeyMask) KeyMask {
	same := ^(km.Key ^ o.Key)
	mask := km.Mask & o.Mask & same
	return KeyMask{Key: (km.Key | o.Key) & mask, Mask: mask}
}

// Matches reports whether key is matched by km.
func (km KeyMask) Matches(key uint32) bool {
	return key&km.Mask == km.Key
}

// Covers reports whether every key matched by o is also matched by km.
func (km KeyMask) Covers(o KeyMask) bool {
	return km.Mask&^o.Mask == 0 && o.Key&km.Mask == km.Key
}

// Valid is false if some key bit is set outside the mask; such a KeyMask
// matches nothing.
func (km KeyMask) Valid() bool {
	return km.Key&^km.Mask == 0
}

// Less orders by key, then by mask.
func (km KeyMask) Less(o KeyMask) bool {
	if km.Key != o.Key {
		return km.Key < o.Key
	}
	return km.Mask < o.Mask
}

// Compare returns -1, 0 or +1, same order as Less.
func (km KeyMask) Compare(o KeyMask) int {
	switch {
	case km.Less(o):
		return -1
	case o.Less(km):
		return 1
	}
	return 0
}

// Ternary renders km as a 32 character string of '0', '1', 'X' and '!'
// from the most significant bit down.
func (km KeyMask) Ternary() string {
	var sb strings.Builder
	sb.Grow(32)
	for bit := uint32(1 << 31); bit > 0; bit >>= 1 {
		switch {
		case km.Mask&bit != 0 && km.Key&bit != 0:
			sb.WriteByte('1')
		case km.Mask&bit != 0:
			sb.WriteByte('0')
		case km.Key&bit != 0:
			sb.WriteByte('!')
		default:
			sb.WriteByte('X')
		}
	}
	return sb.String()
}

func (km KeyMask) String() string {
	return fmt.Sprintf("0x%08x/0x%08x", km.Key, km.Mask)
}

// Entry is one multicast routing entry.
type Entry struct {
	KeyMask
	Route  uint32
	Source uint32
}

func (e Entry) String() string {
	return fmt.Sprintf("%s -> 0x%06x (src 0x%06x)", e.KeyMask, e.Route, e.Source)
}

// JustALink reports whether direction has exactly one bit set and that bit
// is one of the link bits.
func JustALink(direction uint32) bool {
	return bits.OnesCount32(direction) == 1 && direction&LinkMask != 0
}

// OppositeLinks reports whether the link in source and the link in route
// face each other, i.e. route link = (source link + 3) mod 6.
func OppositeLinks(source, route uint32) bool {
	src := source & LinkMask
	dst := route & LinkMask
	return dst>>3 == src&7 && src>>3 == dst&7
}

// Defaultable reports whether the router default route (forward out of the
// opposite link) would treat e the same way as the entry itself.
func (e Entry) Defaultable() bool {
	return JustALink(e.Route) && JustALink(e.Source) && OppositeLinks(e.Source, e.Route)
}

// ProcessorBit returns the route bit of the given core.
func ProcessorBit(processor int) uint32 {
	return 1 << (NumLinks + processor)
}
