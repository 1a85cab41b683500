// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"bytes"
	"fmt"
	"io"
	"math/bits"
	"strings"
)

var linkNames = [NumLinks]string{"E", "NE", "N", "W", "SW", "S"}

// FormatRoute renders the links and cores of a route or source word,
// e.g. "E,SW,p1,p17".
func FormatRoute(route uint32) string {
	if route == 0 {
		return "-"
	}

	var parts []string
	for w := route; w != 0; w &= w - 1 {
		bit := bits.TrailingZeros32(w)
		if bit < NumLinks {
			parts = append(parts, linkNames[bit])
			continue
		}
		parts = append(parts, fmt.Sprintf("p%d", bit-NumLinks))
	}
	return strings.Join(parts, ",")
}

// MarshalText implements the [encoding.TextMarshaler] interface,
// just a wrapper for [Table.Fprint].
func (t *Table) MarshalText() ([]byte, error) {
	w := new(bytes.Buffer)
	if err := t.Fprint(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// String returns the table as printed by [Table.Fprint].
func (t *Table) String() string {
	w := new(strings.Builder)
	_ = t.Fprint(w)
	return w.String()
}

// Fprint writes one line per entry, in table order:
//
//	   0  0000000000000000000000000000X0X1  0x00000001/0xfffffffa  E,p3 <- W
//	   1  ...
func (t *Table) Fprint(w io.Writer) error {
	if t == nil {
		return nil
	}
	return fprintEntries(w, t.entries[:t.size])
}

func fprintEntries(w io.Writer, entries []Entry) error {
	for i, e := range entries {
		if _, err := fmt.Fprintf(w, "%4d  %s  %s  %s <- %s\n",
			i, e.Ternary(), e.KeyMask, FormatRoute(e.Route), FormatRoute(e.Source)); err != nil {
			return err
		}
	}
	return nil
}

// Fprint writes a compression report: outcome, statistics, the table if
// any and the aliases sorted by merged pattern.
func (res Result) Fprint(w io.Writer) error {
	st := res.Stats
	if _, err := fmt.Fprintf(w, "%s: %s, %d -> %d entries, %d merges, %d default routes, %d bytes peak, %s\n",
		st.Algorithm, res.Status, st.InputEntries, st.OutputEntries,
		st.Merges, st.DefaultRoutes, st.PeakBytes, st.Duration); err != nil {
		return err
	}
	if res.Err != nil {
		if _, err := fmt.Fprintf(w, "error: %v\n", res.Err); err != nil {
			return err
		}
	}

	if err := fprintEntries(w, res.Entries); err != nil {
		return err
	}

	for _, km := range sortedAliasKeys(res.Aliases) {
		if _, err := fmt.Fprintf(w, "%s aliases\n", km); err != nil {
			return err
		}
		for _, a := range res.Aliases[km] {
			if _, err := fmt.Fprintf(w, "  %s <- %s\n", a.KeyMask, FormatRoute(a.Source)); err != nil {
				return err
			}
		}
	}
	return nil
}
