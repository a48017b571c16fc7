// SPDX-License-Identifier: MIT
package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/katalvlaran/mathtoys/quiver"
	"github.com/katalvlaran/mathtoys/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState(t *testing.T) quiver.State {
	t.Helper()
	q := quiver.New(quiver.WithUnitArrows())
	a := q.AddVariable("", complex(0.5, 1))
	_, err := q.AddProduct(a.ID, a.ID)
	require.NoError(t, err)
	return q.State()
}

// TestMemory_SaveLoadList exercises the in-process backend.
func TestMemory_SaveLoadList(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	defer m.Close()

	st := sampleState(t)
	rec, err := m.Save(ctx, "square", st)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "square", rec.Name)

	got, err := m.Load(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = m.Load(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = m.Save(ctx, "again", st)
	require.NoError(t, err)
	list, err := m.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

// TestSortNewestFirst orders by time, then id.
func TestSortNewestFirst(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recs := []store.Record{
		{ID: "b", CreatedAt: t0},
		{ID: "c", CreatedAt: t0.Add(time.Minute)},
		{ID: "a", CreatedAt: t0},
	}
	store.SortNewestFirst(recs)
	assert.Equal(t, "c", recs[0].ID)
	assert.Equal(t, "a", recs[1].ID)
	assert.Equal(t, "b", recs[2].ID)
}

// TestNewRecord_UniqueIDs never repeats an id.
func TestNewRecord_UniqueIDs(t *testing.T) {
	st := sampleState(t)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		r := store.NewRecord("x", st)
		assert.False(t, seen[r.ID])
		seen[r.ID] = true
	}
}
