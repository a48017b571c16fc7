// SPDX-License-Identifier: MIT

// Package store persists quiver sheets.
//
// A Record wraps one quiver.State with an id, a user-facing name and a
// creation time. Backends live in the sqlite and redis subpackages; Memory
// is the in-process backend used when no store is configured.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/katalvlaran/mathtoys/quiver"
)

// ErrNotFound is returned by Load when no record has the requested id.
var ErrNotFound = errors.New("store: snapshot not found")

// Record is one saved sheet.
type Record struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	CreatedAt time.Time    `json:"created_at"`
	State     quiver.State `json:"state"`
}

// Store saves and loads sheets. Implementations are safe for concurrent use.
type Store interface {
	// Save stores state under a fresh id and returns the record.
	Save(ctx context.Context, name string, state quiver.State) (Record, error)
	// Load returns the record with the given id, or ErrNotFound.
	Load(ctx context.Context, id string) (Record, error)
	// List returns every record, newest first.
	List(ctx context.Context) ([]Record, error)
	Close() error
}

// NewRecord stamps state with a fresh uuid and the current UTC time.
func NewRecord(name string, state quiver.State) Record {
	return Record{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		State:     state,
	}
}

// SortNewestFirst orders records by CreatedAt descending, ties by id.
func SortNewestFirst(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})
}

// Memory keeps records in a map. Its contents vanish with the process.
type Memory struct {
	mu   sync.RWMutex
	recs map[string]Record
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{recs: make(map[string]Record)}
}

func (m *Memory) Save(_ context.Context, name string, state quiver.State) (Record, error) {
	rec := NewRecord(name, state)
	m.mu.Lock()
	m.recs[rec.ID] = rec
	m.mu.Unlock()
	return rec, nil
}

func (m *Memory) Load(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.recs[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) List(_ context.Context) ([]Record, error) {
	m.mu.RLock()
	out := make([]Record, 0, len(m.recs))
	for _, rec := range m.recs {
		out = append(out, rec)
	}
	m.mu.RUnlock()
	SortNewestFirst(out)
	return out, nil
}

func (m *Memory) Close() error { return nil }
