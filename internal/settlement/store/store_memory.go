// Package store persists split configurations.
package store

import (
	"context"
	"sync"

	"mintgate/internal/settlement"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
)

// SplitStore is the storage contract for payout schedules.
type SplitStore interface {
	Put(ctx context.Context, cfg *settlement.SplitConfig) error
	Get(ctx context.Context, projectID domain.ProjectID) (*settlement.SplitConfig, error)
}

// InMemorySplitStore keeps split configs in a map guarded by a mutex.
type InMemorySplitStore struct {
	mu      sync.RWMutex
	configs map[domain.ProjectID]*settlement.SplitConfig
}

func NewMemory() *InMemorySplitStore {
	return &InMemorySplitStore{
		configs: make(map[domain.ProjectID]*settlement.SplitConfig),
	}
}

func (s *InMemorySplitStore) Put(_ context.Context, cfg *settlement.SplitConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *cfg
	cp.Entries = append([]settlement.SplitEntry(nil), cfg.Entries...)
	s.configs[cfg.ProjectID] = &cp
	return nil
}

func (s *InMemorySplitStore) Get(_ context.Context, projectID domain.ProjectID) (*settlement.SplitConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, exists := s.configs[projectID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	cp := *cfg
	cp.Entries = append([]settlement.SplitEntry(nil), cfg.Entries...)
	return &cp, nil
}
