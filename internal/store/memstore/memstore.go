// Package memstore provides an in-memory store implementation for testing.
package memstore

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"

	"github.com/dosewise/pillcache/internal/lrucache"
	"github.com/dosewise/pillcache/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is an in-memory store for testing.
type Store struct {
	mu      sync.RWMutex
	records map[lrucache.Key][]byte

	reads atomic.Int64
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		records: make(map[lrucache.Key][]byte),
	}
}

// ReadRecord returns a copy of the stored document.
func (s *Store) ReadRecord(ctx context.Context, tenantID, recordID string) ([]byte, error) {
	s.reads.Add(1)

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.records[lrucache.NewKey(tenantID, recordID)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return bytes.Clone(data), nil
}

// WriteRecord stores a copy of data.
func (s *Store) WriteRecord(ctx context.Context, tenantID, recordID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[lrucache.NewKey(tenantID, recordID)] = bytes.Clone(data)
	return nil
}

// DeleteRecord removes a record.
func (s *Store) DeleteRecord(ctx context.Context, tenantID, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := lrucache.NewKey(tenantID, recordID)
	if _, ok := s.records[key]; !ok {
		return store.ErrNotFound
	}
	delete(s.records, key)
	return nil
}

// Reads returns how many times ReadRecord was called.
func (s *Store) Reads() int64 {
	return s.reads.Load()
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}
