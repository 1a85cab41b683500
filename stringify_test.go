// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package mcmin

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatRoute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		route uint32
		want  string
	}{
		{0, "-"},
		{linkE, "E"},
		{linkW | linkS, "W,S"},
		{0x3f, "E,NE,N,W,SW,S"},
		{linkN | ProcessorBit(0) | ProcessorBit(17), "N,p0,p17"},
	}

	for _, tt := range tests {
		if got := FormatRoute(tt.route); got != tt.want {
			t.Errorf("FormatRoute(%#x), want %q, got %q", tt.route, tt.want, got)
		}
	}
}

func TestTableString(t *testing.T) {
	t.Parallel()

	tbl := NewTable([]Entry{
		ent(0x1, 0xffff_fffd, linkE|ProcessorBit(3), linkW),
		ent(0x2, FullMask, ProcessorBit(1), 0),
	})

	want := "" +
		"   0  000000000000000000000000000000X1  0x00000001/0xfffffffd  E,p3 <- W\n" +
		"   1  00000000000000000000000000000010  0x00000002/0xffffffff  p1 <- -\n"

	if got := tbl.String(); got != want {
		t.Errorf("String\nwant:\n%s\ngot:\n%s", want, got)
	}

	text, err := tbl.MarshalText()
	if err != nil || string(text) != want {
		t.Errorf("MarshalText, got %q, %v", text, err)
	}

	var none *Table
	if none.String() != "" {
		t.Errorf("String of nil table, want empty")
	}
}

func TestResultFprint(t *testing.T) {
	t.Parallel()

	res := Result{
		Status:  FailedToCompress,
		Err:     errors.New("too big"),
		Entries: []Entry{ent(0x0, 0xffff_fffe, linkE, 0)},
		Aliases: map[KeyMask][]Alias{
			{Key: 0x0, Mask: 0xffff_fffe}: {
				{KeyMask: KeyMask{Key: 0x0, Mask: FullMask}, Source: linkW},
				{KeyMask: KeyMask{Key: 0x1, Mask: FullMask}},
			},
		},
		Stats: Stats{Algorithm: AlgoPairwise, InputEntries: 2, OutputEntries: 1, Merges: 1},
	}

	var sb strings.Builder
	if err := res.Fprint(&sb); err != nil {
		t.Fatalf("Fprint: %v", err)
	}

	got := sb.String()
	for _, want := range []string{
		"pair: failed-to-compress, 2 -> 1 entries, 1 merges",
		"error: too big\n",
		"   0  ",
		"0x00000000/0xfffffffe aliases\n",
		"  0x00000000/0xffffffff <- W\n",
		"  0x00000001/0xffffffff <- -\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Fprint misses %q in\n%s", want, got)
		}
	}
}
