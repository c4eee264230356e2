package rag

import (
	"context"
	"sync"
)

// SyncStore wraps a VectorStore with a read-write mutex so it can sit behind
// concurrent HTTP handlers. The Qdrant store is already safe; this wrapper
// exists for the memory store, whose contract pushes serialization onto the
// caller.
type SyncStore struct {
	mu    sync.RWMutex
	inner VectorStore
}

// NewSyncStore wraps inner with locking.
func NewSyncStore(inner VectorStore) *SyncStore {
	return &SyncStore{inner: inner}
}

// Add appends documents under the write lock.
func (s *SyncStore) Add(ctx context.Context, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Add(ctx, docs)
}

// Search queries under the read lock.
func (s *SyncStore) Search(ctx context.Context, query []float32, k int) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.Search(ctx, query, k)
}

// Clear removes every document under the write lock.
func (s *SyncStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Clear(ctx)
}

// Count reports the document count under the read lock.
func (s *SyncStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner.Count(ctx)
}

// Close releases the wrapped store.
func (s *SyncStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Close()
}
