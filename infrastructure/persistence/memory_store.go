package persistence

import (
	"context"
	"slices"
	"sync"

	"github.com/helixml/gitsearch/domain/catalog"
)

// MemoryStore keeps the catalog in process memory.
// Implements catalog.Store interface.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []catalog.Entry
	errors  []catalog.IngestionError
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds entries to the end of the catalog.
func (s *MemoryStore) Append(_ context.Context, entries ...catalog.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	return nil
}

// RecordError adds a failure to the end of the error log.
func (s *MemoryStore) RecordError(_ context.Context, failure catalog.IngestionError) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, failure)
	return nil
}

// Entries returns a copy of all entries in insertion order.
func (s *MemoryStore) Entries(_ context.Context) ([]catalog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries), nil
}

// Errors returns a copy of the error log in insertion order.
func (s *MemoryStore) Errors(_ context.Context) ([]catalog.IngestionError, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.errors), nil
}

// Reset clears entries and errors and leaves exactly the seed entry.
func (s *MemoryStore) Reset(_ context.Context, seed catalog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = []catalog.Entry{seed}
	s.errors = nil
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

var _ catalog.Store = (*MemoryStore)(nil)
