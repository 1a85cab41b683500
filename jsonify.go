// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"fmt"
	"io"
	"slices"

	"github.com/sugawarayuuta/sonnet"

	"github.com/gaissmai/mcmin/internal/entry"
)

// ChipTable is the routing table of one chip with the bitfields of its
// cores, as stored in table files.
type ChipTable struct {
	X, Y      int
	Entries   []Entry
	Bitfields []Bitfield
}

type jsonEntry struct {
	Key    uint32 `json:"key"`
	Mask   uint32 `json:"mask"`
	Route  uint32 `json:"route"`
	Source uint32 `json:"source"`
}

type jsonChipTable struct {
	X         int         `json:"x"`
	Y         int         `json:"y"`
	Entries   []jsonEntry `json:"entries"`
	Bitfields []Bitfield  `json:"bitfields,omitempty"`
}

func toJSONEntries(entries []Entry) []jsonEntry {
	out := make([]jsonEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, jsonEntry{Key: e.Key, Mask: e.Mask, Route: e.Route, Source: e.Source})
	}
	return out
}

func fromJSONEntries(in []jsonEntry) []Entry {
	out := make([]Entry, 0, len(in))
	for _, e := range in {
		out = append(out, Entry{
			KeyMask: KeyMask{Key: e.Key, Mask: e.Mask},
			Route:   e.Route,
			Source:  e.Source,
		})
	}
	return out
}

// MarshalJSON implements the [json.Marshaler] interface.
func (ct *ChipTable) MarshalJSON() ([]byte, error) {
	return sonnet.Marshal(jsonChipTable{
		X:         ct.X,
		Y:         ct.Y,
		Entries:   toJSONEntries(ct.Entries),
		Bitfields: ct.Bitfields,
	})
}

// UnmarshalJSON implements the [json.Unmarshaler] interface.
func (ct *ChipTable) UnmarshalJSON(data []byte) error {
	var jt jsonChipTable
	if err := sonnet.Unmarshal(data, &jt); err != nil {
		return err
	}

	*ct = ChipTable{
		X:         jt.X,
		Y:         jt.Y,
		Entries:   fromJSONEntries(jt.Entries),
		Bitfields: jt.Bitfields,
	}
	return nil
}

// ReadChipTable decodes a table file. Tables with more than
// MaxInputEntries entries are rejected.
func ReadChipTable(r io.Reader) (*ChipTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	ct := new(ChipTable)
	if err := sonnet.Unmarshal(data, ct); err != nil {
		return nil, fmt.Errorf("decode table: %w", err)
	}

	if len(ct.Entries) > MaxInputEntries {
		return nil, fmt.Errorf("chip %d, %d: %d entries: %w", ct.X, ct.Y, len(ct.Entries), ErrTableTooLarge)
	}
	for _, bf := range ct.Bitfields {
		if bf.NAtoms < 1 || len(bf.Data) < entry.Words(bf.NAtoms) {
			return nil, fmt.Errorf("chip %d, %d: bad bitfield key 0x%08x core %d: %d atoms in %d words",
				ct.X, ct.Y, bf.Key, bf.Processor, bf.NAtoms, len(bf.Data))
		}
	}
	return ct, nil
}

// WriteChipTable encodes ct as table file.
func WriteChipTable(w io.Writer, ct *ChipTable) error {
	data, err := sonnet.Marshal(ct)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

type jsonAliases struct {
	Key     uint32      `json:"key"`
	Mask    uint32      `json:"mask"`
	Aliases []jsonAlias `json:"aliases"`
}

type jsonAlias struct {
	Key    uint32 `json:"key"`
	Mask   uint32 `json:"mask"`
	Source uint32 `json:"source"`
}

type jsonResult struct {
	Status  Status        `json:"status"`
	Error   string        `json:"error,omitempty"`
	Entries []jsonEntry   `json:"entries,omitempty"`
	Aliases []jsonAliases `json:"aliases,omitempty"`
	Stats   jsonStats     `json:"stats"`
}

type jsonStats struct {
	Algorithm     Algorithm `json:"algorithm"`
	InputEntries  int       `json:"input_entries"`
	OutputEntries int       `json:"output_entries"`
	Merges        int       `json:"merges"`
	DefaultRoutes int       `json:"default_routes"`
	PeakBytes     int64     `json:"peak_bytes"`
	Seconds       float64   `json:"seconds"`
}

// MarshalJSON implements the [json.Marshaler] interface.
// Aliases are sorted by merged pattern.
func (res Result) MarshalJSON() ([]byte, error) {
	jr := jsonResult{
		Status: res.Status,
		Stats: jsonStats{
			Algorithm:     res.Stats.Algorithm,
			InputEntries:  res.Stats.InputEntries,
			OutputEntries: res.Stats.OutputEntries,
			Merges:        res.Stats.Merges,
			DefaultRoutes: res.Stats.DefaultRoutes,
			PeakBytes:     res.Stats.PeakBytes,
			Seconds:       res.Stats.Duration.Seconds(),
		},
	}
	if res.Err != nil {
		jr.Error = res.Err.Error()
	}
	if res.Entries != nil {
		jr.Entries = toJSONEntries(res.Entries)
	}

	for _, km := range sortedAliasKeys(res.Aliases) {
		ja := jsonAliases{Key: km.Key, Mask: km.Mask}
		for _, a := range res.Aliases[km] {
			ja.Aliases = append(ja.Aliases, jsonAlias{Key: a.Key, Mask: a.Mask, Source: a.Source})
		}
		jr.Aliases = append(jr.Aliases, ja)
	}

	return sonnet.Marshal(jr)
}

func sortedAliasKeys(m map[KeyMask][]Alias) []KeyMask {
	keys := make([]KeyMask, 0, len(m))
	for km := range m {
		keys = append(keys, km)
	}
	slices.SortFunc(keys, KeyMask.Compare)
	return keys
}
