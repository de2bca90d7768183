package memory

import (
	"context"
	"sync"

	"quiz-platform/internal/store"
)

// DocumentStore keeps collection snapshots in process memory.
type DocumentStore struct {
	mu        sync.Mutex
	snapshots map[store.Collection][]byte
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{snapshots: make(map[store.Collection][]byte)}
}

func (s *DocumentStore) Read(_ context.Context, c store.Collection) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.snapshots[c]), nil
}

func (s *DocumentStore) Write(_ context.Context, c store.Collection, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[c] = clone(data)
	return nil
}

func (s *DocumentStore) Update(_ context.Context, c store.Collection, fn func([]byte) ([]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(clone(s.snapshots[c]))
	if err != nil {
		return err
	}
	s.snapshots[c] = clone(next)
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
