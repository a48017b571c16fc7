// SPDX-License-Identifier: MIT

// Package sqlite keeps saved sheets in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/katalvlaran/mathtoys/quiver"
	"github.com/katalvlaran/mathtoys/store"
	_ "github.com/mattn/go-sqlite3"
)

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages the SQLite connection and schema.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open connects to the database at path, enables WAL mode and creates the
// schema if needed.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	// The sheet itself is a JSON blob; only the listing columns are typed.
	query := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		state JSON NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}
	return nil
}

// Save inserts a new record.
func (s *Store) Save(ctx context.Context, name string, state quiver.State) (store.Record, error) {
	rec := store.NewRecord(name, state)
	blob, err := json.Marshal(rec.State)
	if err != nil {
		return store.Record{}, fmt.Errorf("failed to marshal state: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, name, created_at, state) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.CreatedAt.Format(timeLayout), string(blob))
	if err != nil {
		return store.Record{}, fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return rec, nil
}

// Load fetches one record by id.
func (s *Store) Load(ctx context.Context, id string) (store.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, state FROM snapshots WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Record{}, fmt.Errorf("load %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return store.Record{}, err
	}
	return rec, nil
}

// List returns every record, newest first.
func (s *Store) List(ctx context.Context) ([]store.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, state FROM snapshots ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (store.Record, error) {
	var (
		rec     store.Record
		created string
		blob    string
	)
	if err := sc.Scan(&rec.ID, &rec.Name, &created, &blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Record{}, err
		}
		return store.Record{}, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	ts, err := time.Parse(timeLayout, created)
	if err != nil {
		return store.Record{}, fmt.Errorf("snapshot %s: bad created_at: %w", rec.ID, err)
	}
	rec.CreatedAt = ts
	if err := json.Unmarshal([]byte(blob), &rec.State); err != nil {
		return store.Record{}, fmt.Errorf("snapshot %s: failed to unmarshal state: %w", rec.ID, err)
	}
	return rec, nil
}
