// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package mtrie minimises the key/mask patterns of entries that share one
// route with a ternary trie.
//
// Every trie level decides one key bit, from the most significant bit down,
// with a 0, a 1 and an X (don't care) child. Leaves sit below the last bit
// and hold the union of the sources of the patterns that reach them.
//
// After each insert the path is walked back up. At every node where the
// inserted pattern now exists below both the 0 and the 1 child, the two
// are replaced by one pattern below the X child. A pattern below 0 or 1
// that also exists below X is redundant and folded into X.
//
// The nodes live in an arena and reference each other by index.
package mtrie

import (
	"github.com/gaissmai/mcmin/internal/entry"
	"github.com/gaissmai/mcmin/internal/region"
)

// nodeBytes is the region charge per trie node.
const nodeBytes = 28

const topBit = 1 << 31

// child slots
const (
	c0 = iota
	c1
	cX
)

// null is the nil index, arena slot 0 is never used.
const null = 0

type node struct {
	parent int32
	bit    uint32 // 0 for a leaf
	child  [3]int32
	source uint32
}

// Trie holds the patterns of one route.
type Trie struct {
	nodes []node
	free  []int32
	reg   *region.Region
}

// New returns an empty trie charging its nodes to r, nil r is unbounded.
func New(r *region.Region) (*Trie, error) {
	t := &Trie{reg: r, nodes: make([]node, 1, 64)}
	if _, err := t.newNode(null, topBit); err != nil {
		return nil, err
	}
	return t, nil
}

// root is always slot 1.
func (t *Trie) root() int32 { return 1 }

func (t *Trie) newNode(parent int32, bit uint32) (int32, error) {
	if err := t.reg.Reserve(nodeBytes); err != nil {
		return null, err
	}
	n := node{parent: parent, bit: bit}

	if k := len(t.free); k > 0 {
		idx := t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[idx] = n
		return idx, nil
	}

	t.nodes = append(t.nodes, n)
	return int32(len(t.nodes) - 1), nil
}

func (t *Trie) freeNode(idx int32) {
	t.reg.Release(nodeBytes)
	t.nodes[idx] = node{}
	t.free = append(t.free, idx)
}

// Release gives the charge of all live nodes back, t is unusable afterwards.
func (t *Trie) Release() {
	live := len(t.nodes) - 1 - len(t.free)
	t.reg.Release(int64(live) * nodeBytes)
	t.nodes = nil
	t.free = nil
}

// slot selects the child for the bit of n, false for a '!' bit.
func (t *Trie) slot(n int32, key, mask uint32) (int, bool) {
	bit := t.nodes[n].bit
	switch {
	case mask&bit != 0 && key&bit == 0:
		return c0, true
	case mask&bit != 0:
		return c1, true
	case key&bit == 0:
		return cX, true
	}
	return 0, false
}

// traverse walks and builds the path of key/mask from n down to a leaf,
// ors source into the leaf and returns the parent of the leaf.
// It returns null if the pattern matches nothing.
func (t *Trie) traverse(n int32, key, mask, source uint32) (int32, error) {
	for t.nodes[n].bit != 0 {
		s, ok := t.slot(n, key, mask)
		if !ok {
			return null, nil
		}
		if t.nodes[n].child[s] == null {
			c, err := t.newNode(n, t.nodes[n].bit>>1)
			if err != nil {
				return null, err
			}
			t.nodes[n].child[s] = c
		}
		n = t.nodes[n].child[s]
	}
	t.nodes[n].source |= source
	return t.nodes[n].parent, nil
}

// leaf returns the leaf reached by key/mask from n, null if there is none.
func (t *Trie) leaf(n int32, key, mask uint32) int32 {
	for n != null && t.nodes[n].bit != 0 {
		s, ok := t.slot(n, key, mask)
		if !ok {
			return null
		}
		n = t.nodes[n].child[s]
	}
	return n
}

// unTraverse deletes the path of key/mask below n and every node that
// becomes childless on the way. It reports whether n itself was deleted.
func (t *Trie) unTraverse(n int32, key, mask uint32) bool {
	if t.nodes[n].bit == 0 {
		t.freeNode(n)
		return true
	}

	if s, ok := t.slot(n, key, mask); ok {
		if c := t.nodes[n].child[s]; c != null && t.unTraverse(c, key, mask) {
			t.nodes[n].child[s] = null
		}
	}

	if t.nodes[n].child == [3]int32{} {
		t.freeNode(n)
		return true
	}
	return false
}

// unTraverseChild deletes the path below child s of n.
func (t *Trie) unTraverseChild(n int32, s int, key, mask uint32) {
	if t.unTraverse(t.nodes[n].child[s], key, mask) {
		t.nodes[n].child[s] = null
	}
}

// Insert adds the pattern with its source and coalesces the path.
func (t *Trie) Insert(km entry.KeyMask, source uint32) error {
	key, mask := km.Key, km.Mask

	n, err := t.traverse(t.root(), key, mask, source)
	if err != nil {
		return err
	}

	for ; n != null; n = t.nodes[n].parent {
		bit := t.nodes[n].bit
		ch := t.nodes[n].child

		leaf0 := t.leaf(ch[c0], key, mask)
		leaf1 := t.leaf(ch[c1], key, mask)
		leafX := t.leaf(ch[cX], key, mask)

		switch {
		case leaf0 != null && leaf1 != null:
			src := t.nodes[leaf0].source | t.nodes[leaf1].source
			if ch[cX] == null {
				c, err := t.newNode(n, bit>>1)
				if err != nil {
					return err
				}
				t.nodes[n].child[cX] = c
			}
			if _, err := t.traverse(t.nodes[n].child[cX], key, mask, src); err != nil {
				return err
			}
			t.unTraverseChild(n, c0, key, mask)
			t.unTraverseChild(n, c1, key, mask)

		case leafX != null && leaf0 != null:
			src := t.nodes[leaf0].source
			t.unTraverseChild(n, c0, key, mask)
			t.nodes[leafX].source |= src

		case leafX != null && leaf1 != null:
			src := t.nodes[leaf1].source
			t.unTraverseChild(n, c1, key, mask)
			t.nodes[leafX].source |= src

		default:
			continue
		}

		key &^= bit
		mask &^= bit
	}

	return nil
}

// Len returns the number of leaves, the number of minimised patterns.
func (t *Trie) Len() int {
	cnt := 0
	for _, n := range t.nodes[1:] {
		if n.bit == 0 && n.parent != null {
			cnt++
		}
	}
	return cnt
}

// Entries appends the minimised patterns with the given route to dst,
// in 0, 1, X order per level.
func (t *Trie) Entries(route uint32, dst []entry.Entry) []entry.Entry {
	type item struct {
		idx       int32
		key, mask uint32
	}

	stack := []item{{t.root(), 0, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.nodes[it.idx]
		if n.bit == 0 {
			dst = append(dst, entry.Entry{
				KeyMask: entry.KeyMask{Key: it.key, Mask: it.mask},
				Route:   route,
				Source:  n.source,
			})
			continue
		}

		// pushed in reverse, popped as 0, 1, X
		b := n.bit
		if c := n.child[cX]; c != null {
			stack = append(stack, item{c, it.key, it.mask})
		}
		if c := n.child[c1]; c != null {
			stack = append(stack, item{c, it.key | b, it.mask | b})
		}
		if c := n.child[c0]; c != null {
			stack = append(stack, item{c, it.key, it.mask | b})
		}
	}

	return dst
}

// Minimise replaces the entries of every route by the minimised patterns
// of that route. Routes appear in the order of their first entry.
// The check func is polled once per route, a non nil error aborts.
func Minimise(entries []entry.Entry, r *region.Region, check func() error) ([]entry.Entry, error) {
	visited := make([]bool, len(entries))
	out := make([]entry.Entry, 0, len(entries))

	for i := range entries {
		if visited[i] {
			continue
		}
		if check != nil {
			if err := check(); err != nil {
				return nil, err
			}
		}

		t, err := New(r)
		if err != nil {
			return nil, err
		}

		route := entries[i].Route
		for j := i; j < len(entries); j++ {
			if entries[j].Route != route {
				continue
			}
			visited[j] = true
			if err := t.Insert(entries[j].KeyMask, entries[j].Source); err != nil {
				t.Release()
				return nil, err
			}
		}

		out = t.Entries(route, out)
		t.Release()
	}

	return out, nil
}
