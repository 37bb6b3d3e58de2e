// Package memory is an in-process implementation of storage.Storage.
// Data lives only as long as the process; it backs the "memory" driver for
// local development and serves as the store in handler tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aanand-mishra/chapter-api/internal/storage"
	"github.com/aanand-mishra/chapter-api/internal/types"
)

// Store keeps records per collection name, keyed by the record key.
type Store struct {
	mu   sync.Mutex
	data map[string]map[string]types.Record
}

// New returns an empty Store.
func New() *Store {
	return &Store{data: map[string]map[string]types.Record{}}
}

// FetchAll returns copies of every record in c.
func (s *Store) FetchAll(ctx context.Context, c storage.Collection) ([]types.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Record, 0, len(s.data[c.Name]))
	for _, rec := range s.data[c.Name] {
		out = append(out, rec.Clone())
	}
	return out, nil
}

// GetItem returns a copy of the record stored under key, or storage.ErrNotFound.
func (s *Store) GetItem(ctx context.Context, c storage.Collection, key string) (types.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[c.Name][key]
	if !ok {
		return nil, fmt.Errorf("memory.GetItem: %s/%s: %w", c.Name, key, storage.ErrNotFound)
	}
	return rec.Clone(), nil
}

// PutItem stores a copy of rec, replacing any record with the same key.
func (s *Store) PutItem(ctx context.Context, c storage.Collection, rec types.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := c.KeyOf(rec)
	if err != nil {
		return fmt.Errorf("memory.PutItem: %s: %w", c.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data[c.Name] == nil {
		s.data[c.Name] = map[string]types.Record{}
	}
	s.data[c.Name][key] = rec.Clone()
	return nil
}

// DeleteItem removes the record under key. Absent keys are not an error.
func (s *Store) DeleteItem(ctx context.Context, c storage.Collection, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data[c.Name], key)
	return nil
}

// SetAttribute sets one attribute of an existing record; storage.ErrNotFound
// when there is none.
func (s *Store) SetAttribute(ctx context.Context, c storage.Collection, key, attr string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.data[c.Name][key]
	if !ok {
		return fmt.Errorf("memory.SetAttribute: %s/%s: %w", c.Name, key, storage.ErrNotFound)
	}
	rec[attr] = value
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
