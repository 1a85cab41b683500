// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package provenance

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaissmai/mcmin"
)

var entries = []mcmin.Entry{
	{KeyMask: mcmin.KeyMask{Key: 0x0, Mask: 0xffffffff}, Route: 0x1, Source: 0x8},
	{KeyMask: mcmin.KeyMask{Key: 0x1, Mask: 0xffffffff}, Route: 0x1, Source: 0x8},
}

func TestDigest(t *testing.T) {
	t.Parallel()

	d := Digest(entries)
	assert.Len(t, d, 64)
	assert.Equal(t, d, Digest(entries))

	swapped := []mcmin.Entry{entries[1], entries[0]}
	assert.NotEqual(t, d, Digest(swapped), "order matters")
	assert.NotEqual(t, d, Digest(entries[:1]))
	assert.NotEqual(t, d, Digest(nil))
}

func TestStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, err := Open(ctx, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	res := mcmin.Result{
		Status: mcmin.Success,
		Stats: mcmin.Stats{
			Algorithm:     mcmin.AlgoPairwise,
			InputEntries:  2,
			OutputEntries: 1,
			Merges:        1,
			Duration:      3 * time.Millisecond,
		},
	}

	r := NewRecord(1, 2, entries, res, 0)
	id1, err := s.Add(ctx, r)
	require.NoError(t, err)

	r.X = 3
	id2, err := s.Add(ctx, r)
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	got, err := s.Chip(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, id1, got[0].ID)
	assert.Equal(t, "pair", got[0].Algorithm)
	assert.Equal(t, "success", got[0].Status)
	assert.Equal(t, 2, got[0].InputEntries)
	assert.Equal(t, 1, got[0].OutputEntries)
	assert.Equal(t, 3*time.Millisecond, got[0].Duration)
	assert.Equal(t, Digest(entries), got[0].Digest)
	assert.False(t, got[0].Created.IsZero())

	byDigest, err := s.ByDigest(ctx, Digest(entries))
	require.NoError(t, err)
	assert.Len(t, byDigest, 2)

	none, err := s.Chip(ctx, 9, 9)
	require.NoError(t, err)
	assert.Empty(t, none)
}
