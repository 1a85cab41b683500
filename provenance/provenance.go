// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package provenance records which table was compressed how.
//
// Every compressed router table leaves one row in a sqlite database,
// identified by its chip and by a SHA3-256 digest of the input table.
package provenance

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/multierr"
	"golang.org/x/crypto/sha3"

	"github.com/gaissmai/mcmin"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	chip_x         INTEGER NOT NULL,
	chip_y         INTEGER NOT NULL,
	algorithm      TEXT    NOT NULL,
	input_entries  INTEGER NOT NULL,
	output_entries INTEGER NOT NULL,
	status         TEXT    NOT NULL,
	midpoint       INTEGER NOT NULL,
	duration_ns    INTEGER NOT NULL,
	merges         INTEGER NOT NULL,
	digest         TEXT    NOT NULL,
	created        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_chip ON runs (chip_x, chip_y);
CREATE INDEX IF NOT EXISTS runs_digest ON runs (digest);
`

// Record is one compression run.
type Record struct {
	ID            int64
	X, Y          int
	Algorithm     string
	InputEntries  int
	OutputEntries int
	Status        string
	Midpoint      int
	Duration      time.Duration
	Merges        int
	Digest        string
	Created       time.Time
}

// NewRecord builds the record of res for the table entries of chip x, y.
func NewRecord(x, y int, entries []mcmin.Entry, res mcmin.Result, midpoint int) Record {
	return Record{
		X:             x,
		Y:             y,
		Algorithm:     res.Stats.Algorithm.String(),
		InputEntries:  len(entries),
		OutputEntries: res.Stats.OutputEntries,
		Status:        res.Status.String(),
		Midpoint:      midpoint,
		Duration:      res.Stats.Duration,
		Merges:        res.Stats.Merges,
		Digest:        Digest(entries),
	}
}

// Digest returns the hex SHA3-256 of entries, in table order.
func Digest(entries []mcmin.Entry) string {
	h := sha3.New256()
	var buf [16]byte
	for _, e := range entries {
		binary.LittleEndian.PutUint32(buf[0:], e.Key)
		binary.LittleEndian.PutUint32(buf[4:], e.Mask)
		binary.LittleEndian.PutUint32(buf[8:], e.Route)
		binary.LittleEndian.PutUint32(buf[12:], e.Source)
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Store is a provenance database.
type Store struct {
	db     *sql.DB
	insert *sql.Stmt
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=1000")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, multierr.Combine(fmt.Errorf("create schema: %w", err), db.Close())
	}

	insert, err := db.PrepareContext(ctx, `
		INSERT INTO runs (chip_x, chip_y, algorithm, input_entries, output_entries,
			status, midpoint, duration_ns, merges, digest, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, multierr.Combine(fmt.Errorf("prepare insert: %w", err), db.Close())
	}

	return &Store{db: db, insert: insert}, nil
}

// Add stores r and returns its id. A zero Created is set to now.
func (s *Store) Add(ctx context.Context, r Record) (int64, error) {
	if r.Created.IsZero() {
		r.Created = time.Now()
	}

	res, err := s.insert.ExecContext(ctx,
		r.X, r.Y, r.Algorithm, r.InputEntries, r.OutputEntries,
		r.Status, r.Midpoint, int64(r.Duration), r.Merges, r.Digest, r.Created.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("insert run of chip %d, %d: %w", r.X, r.Y, err)
	}
	return res.LastInsertId()
}

// Chip returns the runs of chip x, y, oldest first.
func (s *Store) Chip(ctx context.Context, x, y int) ([]Record, error) {
	return s.query(ctx, `WHERE chip_x = ? AND chip_y = ?`, x, y)
}

// ByDigest returns the runs of the table with digest, oldest first.
func (s *Store) ByDigest(ctx context.Context, digest string) ([]Record, error) {
	return s.query(ctx, `WHERE digest = ?`, digest)
}

func (s *Store) query(ctx context.Context, where string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chip_x, chip_y, algorithm, input_entries, output_entries,
			status, midpoint, duration_ns, merges, digest, created
		FROM runs `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var dur, created int64
		if err := rows.Scan(&r.ID, &r.X, &r.Y, &r.Algorithm, &r.InputEntries, &r.OutputEntries,
			&r.Status, &r.Midpoint, &dur, &r.Merges, &r.Digest, &created); err != nil {
			return nil, err
		}
		r.Duration = time.Duration(dur)
		r.Created = time.Unix(0, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return multierr.Combine(s.insert.Close(), s.db.Close())
}
