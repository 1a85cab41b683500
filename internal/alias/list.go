// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package alias

import (
	"iter"

	"github.com/gaissmai/mcmin/internal/entry"
	"github.com/gaissmai/mcmin/internal/region"
)

// elemBytes is the region charge per list element: key, mask and source.
const elemBytes = 12

// segBytes is the fixed region charge per list segment.
const segBytes = 24

// Element is an original entry identity that was absorbed by a merge.
type Element struct {
	entry.KeyMask
	Source uint32
}

// List is a chain of fixed capacity segments. Joined lists are linked,
// never copied.
type List struct {
	elems []Element
	next  *List
}

// NewList allocates an empty segment with room for capacity elements.
func NewList(r *region.Region, capacity int) (*List, error) {
	if err := r.Reserve(segBytes + int64(capacity)*elemBytes); err != nil {
		return nil, err
	}
	return &List{elems: make([]Element, 0, capacity)}, nil
}

// Append adds an element to this segment, false if the segment is full.
func (l *List) Append(km entry.KeyMask, source uint32) bool {
	if len(l.elems) == cap(l.elems) {
		return false
	}
	l.elems = append(l.elems, Element{KeyMask: km, Source: source})
	return true
}

// Join links o behind the last segment of l.
func (l *List) Join(o *List) {
	for l.next != nil {
		l = l.next
	}
	l.next = o
}

// Len is the number of elements over all segments.
func (l *List) Len() int {
	n := 0
	for ; l != nil; l = l.next {
		n += len(l.elems)
	}
	return n
}

// All iterates over the elements of all segments in chain order.
func (l *List) All() iter.Seq[Element] {
	return func(yield func(Element) bool) {
		for seg := l; seg != nil; seg = seg.next {
			for _, e := range seg.elems {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// release gives back the region charge of every segment.
func (l *List) release(r *region.Region) {
	for ; l != nil; l = l.next {
		r.Release(segBytes + int64(cap(l.elems))*elemBytes)
	}
}
