// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"github.com/sirupsen/logrus"

	"github.com/gaissmai/mcmin/internal/logfields"
	"github.com/gaissmai/mcmin/internal/mtrie"
)

// MTrie is the redundancy trie compressor.
//
// The patterns of every route are minimised with an m-trie, see package
// [mtrie]. The result matches exactly the keys of the input, route by
// route. If the table still exceeds the target, ordered covering
// continues on it.
type MTrie struct{}

// Compress implements [Compressor].
func (MTrie) Compress(a *Attempt) error {
	t := a.table
	if t.Len() <= a.target {
		return nil
	}

	before := t.Len()
	out, err := mtrie.Minimise(t.entries[:t.size], a.region, a.poll)
	if err != nil {
		return err
	}
	t.reset(out)
	a.merges += before - t.Len()

	a.log.WithFields(logrus.Fields{
		logfields.Entries: t.Len(),
		logfields.Target:  a.target,
	}).Debugf("m-trie reduced %d entries", before-t.Len())

	return OrderedCovering{}.Compress(a)
}
