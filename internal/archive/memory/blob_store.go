// Package memory provides an in-memory snapshot archive for tests and
// local runs.
package memory

import (
	"context"
	"sync"
)

// BlobStore keeps snapshots in a map keyed by snapshot key.
type BlobStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates an empty in-memory archive.
func New() *BlobStore {
	return &BlobStore{objects: make(map[string][]byte)}
}

// Put stores a copy of data under key.
func (s *BlobStore) Put(_ context.Context, key string, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	return "mem://" + key, nil
}

// Get returns the stored snapshot, if any.
func (s *BlobStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Len reports how many snapshots are held.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Close is a no-op.
func (s *BlobStore) Close() error { return nil }
