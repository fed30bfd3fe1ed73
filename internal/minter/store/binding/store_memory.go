package binding

import (
	"context"
	"sync"
	"time"

	"mintgate/internal/minter/models"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
)

// InMemoryStore keeps policy bindings in a map guarded by a mutex.
type InMemoryStore struct {
	mu       sync.RWMutex
	bindings map[domain.ProjectID]*models.PolicyBinding
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		bindings: make(map[domain.ProjectID]*models.PolicyBinding),
	}
}

func (s *InMemoryStore) Put(_ context.Context, binding *models.PolicyBinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *binding
	s.bindings[binding.ProjectID] = &cp
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, projectID domain.ProjectID) (*models.PolicyBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	binding, exists := s.bindings[projectID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	cp := *binding
	return &cp, nil
}

func (s *InMemoryStore) Delete(_ context.Context, projectID domain.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bindings[projectID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(s.bindings, projectID)
	return nil
}

func (s *InMemoryStore) RecordSale(_ context.Context, projectID domain.ProjectID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	binding, exists := s.bindings[projectID]
	if !exists {
		return sentinel.ErrNotFound
	}
	binding.ApplySale(now)
	return nil
}
