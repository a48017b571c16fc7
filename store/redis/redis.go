// SPDX-License-Identifier: MIT

// Package redis keeps saved sheets in Redis: one JSON value per record plus
// a set indexing every record key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/katalvlaran/mathtoys/quiver"
	"github.com/katalvlaran/mathtoys/store"
	"github.com/redis/go-redis/v9"
)

const snapshotsSet = "mathtoys:snapshots"

// Store wraps a go-redis client.
type Store struct {
	client *redis.Client
}

var _ store.Store = (*Store)(nil)

// New uses an existing client. Close closes it.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Dial connects to addr and checks the connection with PING.
func Dial(ctx context.Context, addr string) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return New(client), nil
}

func (s *Store) makeKey(id string) string {
	return fmt.Sprintf("mathtoys:snapshot:%s", id)
}

// Save writes the record and adds its key to the index set.
func (s *Store) Save(ctx context.Context, name string, state quiver.State) (store.Record, error) {
	rec := store.NewRecord(name, state)
	data, err := json.Marshal(rec)
	if err != nil {
		return store.Record{}, fmt.Errorf("failed to marshal record: %w", err)
	}
	key := s.makeKey(rec.ID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, 0)
		pipe.SAdd(ctx, snapshotsSet, key)
		return nil
	})
	if err != nil {
		return store.Record{}, fmt.Errorf("failed to store %s: %w", key, err)
	}
	return rec, nil
}

// Load fetches one record by id.
func (s *Store) Load(ctx context.Context, id string) (store.Record, error) {
	key := s.makeKey(id)
	data, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return store.Record{}, fmt.Errorf("load %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return store.Record{}, fmt.Errorf("failed to GET %s: %w", key, err)
	}
	var rec store.Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return store.Record{}, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return rec, nil
}

// List returns every indexed record, newest first. Keys that vanished or no
// longer decode are logged and skipped.
func (s *Store) List(ctx context.Context) ([]store.Record, error) {
	keys, err := s.client.SMembers(ctx, snapshotsSet).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to SMEMBERS %s: %w", snapshotsSet, err)
	}
	if len(keys) == 0 {
		return []store.Record{}, nil
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to MGET snapshots: %w", err)
	}

	out := make([]store.Record, 0, len(values))
	for i, val := range values {
		if val == nil {
			continue
		}
		str, ok := val.(string)
		if !ok {
			log.Printf("MGET returned non-string for key %s", keys[i])
			continue
		}
		var rec store.Record
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			log.Printf("Failed to unmarshal snapshot for key %s: %v", keys[i], err)
			continue
		}
		out = append(out, rec)
	}
	store.SortNewestFirst(out)
	return out, nil
}

// Clear removes every record and the index set.
func (s *Store) Clear(ctx context.Context) error {
	keys, err := s.client.SMembers(ctx, snapshotsSet).Result()
	if err != nil {
		return fmt.Errorf("failed to SMEMBERS %s: %w", snapshotsSet, err)
	}
	keys = append(keys, snapshotsSet)
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to DEL snapshots: %w", err)
	}
	return nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}
