// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"fmt"
	"strings"
)

// Compressor shrinks the table of an attempt towards its target.
//
// Compress returns nil when it ran to completion, whether or not the
// target was reached, and the signal or allocation error otherwise.
type Compressor interface {
	Compress(a *Attempt) error
}

// Algorithm selects a compressor.
type Algorithm uint8

const (
	// AlgoOrderedCovering merges entries across the table, tracking aliases.
	AlgoOrderedCovering Algorithm = iota

	// AlgoPairwise merges entries within route groups, cheap and greedy.
	AlgoPairwise

	// AlgoMTrie minimises the patterns of every route with a ternary trie,
	// then runs ordered covering on the result.
	AlgoMTrie
)

var algoNames = [...]string{
	AlgoOrderedCovering: "ordered-covering",
	AlgoPairwise:        "pair",
	AlgoMTrie:           "mtrie",
}

func (al Algorithm) String() string {
	if int(al) < len(algoNames) {
		return algoNames[al]
	}
	return fmt.Sprintf("Algorithm(%d)", al)
}

// MarshalText implements [encoding.TextMarshaler].
func (al Algorithm) MarshalText() ([]byte, error) {
	return []byte(al.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (al *Algorithm) UnmarshalText(b []byte) error {
	v, err := ParseAlgorithm(string(b))
	if err != nil {
		return err
	}
	*al = v
	return nil
}

// ParseAlgorithm is the inverse of Algorithm.String.
func ParseAlgorithm(s string) (Algorithm, error) {
	for i, name := range algoNames {
		if strings.EqualFold(s, name) {
			return Algorithm(i), nil
		}
	}
	return 0, fmt.Errorf("unknown algorithm %q, want one of %s", s, strings.Join(algoNames[:], ", "))
}

// Compressor returns the compressor for al.
func (al Algorithm) Compressor() Compressor {
	switch al {
	case AlgoPairwise:
		return Pairwise{}
	case AlgoMTrie:
		return MTrie{}
	}
	return OrderedCovering{}
}

// Set implements [pflag.Value].
func (al *Algorithm) Set(s string) error {
	return al.UnmarshalText([]byte(s))
}

// Type implements [pflag.Value].
func (al *Algorithm) Type() string {
	return "algorithm"
}
