// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package alias maps the KeyMask of a merged routing entry to the list of
// original entries it stands for.
//
// The map is an AA tree (Andersson tree) stored in an arena: nodes live in
// one slice and reference their children by index. Insert and lookup are
// iterative, the rebalancing walks back up an explicit path stack.
//
// Remove only detaches the list from its node, the node stays in the tree
// until Clear. This keeps the tree balanced without an AA delete.
package alias

import (
	"iter"

	"github.com/gaissmai/mcmin/internal/entry"
	"github.com/gaissmai/mcmin/internal/region"
)

// nodeBytes is the region charge per tree node.
const nodeBytes = 32

// null is the nil child index, arena slot 0 is never used.
const null = 0

type node struct {
	key   entry.KeyMask
	val   *List
	left  int32
	right int32
	level int32
}

// Table is the alias map. The zero value is ready to use and unbounded.
type Table struct {
	nodes []node
	root  int32
	live  int // nodes with an attached list
	reg   *region.Region
}

// New returns an empty table charging its nodes and lists to r.
func New(r *region.Region) *Table {
	return &Table{reg: r}
}

// Region returns the region the table charges against.
func (t *Table) Region() *region.Region {
	return t.reg
}

// Len returns the number of keys with an attached list.
func (t *Table) Len() int {
	return t.live
}

func (t *Table) find(km entry.KeyMask) int32 {
	idx := t.root
	for idx != null {
		n := &t.nodes[idx]
		switch km.Compare(n.key) {
		case 0:
			return idx
		case -1:
			idx = n.left
		default:
			idx = n.right
		}
	}
	return null
}

// Find returns the list attached to km.
func (t *Table) Find(km entry.KeyMask) (*List, bool) {
	idx := t.find(km)
	if idx == null || t.nodes[idx].val == nil {
		return nil, false
	}
	return t.nodes[idx].val, true
}

// Contains reports whether km has an attached list.
func (t *Table) Contains(km entry.KeyMask) bool {
	_, ok := t.Find(km)
	return ok
}

// Insert attaches list to km, replacing any previous list.
// It fails only if a new node cannot be charged to the region.
func (t *Table) Insert(km entry.KeyMask, list *List) error {
	// path of (node, went right) from the root down
	type step struct {
		idx   int32
		right bool
	}
	var path []step

	idx := t.root
	for idx != null {
		n := &t.nodes[idx]
		switch km.Compare(n.key) {
		case 0:
			if n.val == nil && list != nil {
				t.live++
			}
			if n.val != nil && list == nil {
				t.live--
			}
			n.val = list
			return nil
		case -1:
			path = append(path, step{idx, false})
			idx = n.left
		default:
			path = append(path, step{idx, true})
			idx = n.right
		}
	}

	if err := t.reg.Reserve(nodeBytes); err != nil {
		return err
	}
	if len(t.nodes) == 0 {
		t.nodes = append(t.nodes, node{}) // null slot
	}

	t.nodes = append(t.nodes, node{key: km, val: list, level: 1})
	child := int32(len(t.nodes) - 1)
	if list != nil {
		t.live++
	}

	// hook in and rebalance bottom up
	for i := len(path) - 1; i >= 0; i-- {
		p := path[i]
		if p.right {
			t.nodes[p.idx].right = child
		} else {
			t.nodes[p.idx].left = child
		}
		child = t.split(t.skew(p.idx))
	}
	t.root = child

	return nil
}

// skew removes a left horizontal link.
func (t *Table) skew(idx int32) int32 {
	n := &t.nodes[idx]
	if n.left == null || t.nodes[n.left].level != n.level {
		return idx
	}

	l := n.left
	n.left = t.nodes[l].right
	t.nodes[l].right = idx
	return l
}

// split removes two consecutive right horizontal links.
func (t *Table) split(idx int32) int32 {
	n := &t.nodes[idx]
	if n.right == null {
		return idx
	}
	r := n.right
	if t.nodes[r].right == null || t.nodes[t.nodes[r].right].level != n.level {
		return idx
	}

	n.right = t.nodes[r].left
	t.nodes[r].left = idx
	t.nodes[r].level++
	return r
}

// Remove detaches the list from km. The list itself is untouched,
// it may already be joined into another list.
func (t *Table) Remove(km entry.KeyMask) {
	idx := t.find(km)
	if idx != null && t.nodes[idx].val != nil {
		t.nodes[idx].val = nil
		t.live--
	}
}

// Clear drops every node and list and gives their charge back.
func (t *Table) Clear() {
	for i := 1; i < len(t.nodes); i++ {
		if l := t.nodes[i].val; l != nil {
			l.release(t.reg)
		}
	}
	t.reg.Release(int64(max(len(t.nodes)-1, 0)) * nodeBytes)

	t.nodes = t.nodes[:0]
	t.root = null
	t.live = 0
}

// All iterates in key order over every key with an attached list.
func (t *Table) All() iter.Seq2[entry.KeyMask, *List] {
	return func(yield func(entry.KeyMask, *List) bool) {
		var stack []int32
		idx := t.root
		for idx != null || len(stack) > 0 {
			for idx != null {
				stack = append(stack, idx)
				idx = t.nodes[idx].left
			}
			idx = stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			n := t.nodes[idx]
			if n.val != nil && !yield(n.key, n.val) {
				return
			}
			idx = n.right
		}
	}
}

// height returns the number of nodes on the longest root to leaf path.
func (t *Table) height() int {
	type item struct {
		idx   int32
		depth int
	}
	h := 0
	if t.root == null {
		return 0
	}
	stack := []item{{t.root, 1}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		h = max(h, it.depth)
		n := t.nodes[it.idx]
		if n.left != null {
			stack = append(stack, item{n.left, it.depth + 1})
		}
		if n.right != null {
			stack = append(stack, item{n.right, it.depth + 1})
		}
	}
	return h
}
