package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/props/pkg/ports"
)

// Store implements ports.RecordStore in memory.
// Records are kept in their encoded form, so loads behave exactly like the
// persistent backends and never alias caller data.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Save persists the record in memory.
func (s *Store) Save(ctx context.Context, id string, rec ports.Record) error {
	data, err := ports.EncodeRecord(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = data
	return nil
}

// Load retrieves a fresh copy of the record.
func (s *Store) Load(ctx context.Context, id string) (ports.Record, error) {
	s.mu.RLock()
	data, ok := s.data[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ports.ErrNotFound
	}
	return ports.DecodeRecord(data)
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
