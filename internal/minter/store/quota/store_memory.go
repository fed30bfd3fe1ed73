package quota

import (
	"context"
	"sync"
)

// InMemoryStore counts consumed quota per key.
type InMemoryStore struct {
	mu     sync.RWMutex
	counts map[string]uint64
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{counts: make(map[string]uint64)}
}

func (s *InMemoryStore) Count(_ context.Context, key string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counts[key], nil
}

func (s *InMemoryStore) Increment(_ context.Context, key string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key]++
	return s.counts[key], nil
}
