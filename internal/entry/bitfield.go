// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package entry

import (
	"fmt"
	"math/bits"
)

// Bitfield tells for one core and one source vertex key which atoms the
// core actually needs: bit i of Data is set if packets of atom i are
// needed. A core whose bit is clear for an atom need not get its packets.
type Bitfield struct {
	Key       uint32   `json:"key"`
	NAtoms    int      `json:"n_atoms"`
	Processor int      `json:"processor"`
	Data      []uint32 `json:"data"`
}

// Words returns the number of data words for nAtoms.
func Words(nAtoms int) int {
	return (nAtoms + 31) / 32
}

// Needed reports whether atom is needed by the core.
func (b Bitfield) Needed(atom int) bool {
	w := atom >> 5
	if atom < 0 || atom >= b.NAtoms || w >= len(b.Data) {
		return false
	}
	return b.Data[w]&(1<<(atom&31)) != 0
}

// Redundant is the number of atoms the core doesn't need.
func (b Bitfield) Redundant() int {
	needed := 0
	for w, word := range b.Data {
		// ignore bits beyond NAtoms
		if rest := b.NAtoms - w*32; rest < 32 {
			if rest <= 0 {
				break
			}
			word &= 1<<rest - 1
		}
		needed += bits.OnesCount32(word)
	}
	return b.NAtoms - needed
}

func (b Bitfield) String() string {
	return fmt.Sprintf("bitfield key 0x%08x core %d: %d of %d atoms redundant",
		b.Key, b.Processor, b.Redundant(), b.NAtoms)
}
