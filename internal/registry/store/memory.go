package store

import (
	"context"
	"sync"

	"mintgate/internal/registry/models"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
)

// InMemoryProjectStore holds projects in a map guarded by a mutex. The
// production-parity fake for unit tests and the default store when no
// postgres DSN is configured.
type InMemoryProjectStore struct {
	mu       sync.RWMutex
	projects map[domain.ProjectID]*models.Project
}

func NewMemory() *InMemoryProjectStore {
	return &InMemoryProjectStore{
		projects: make(map[domain.ProjectID]*models.Project),
	}
}

func (s *InMemoryProjectStore) Create(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[project.ID]; exists {
		return sentinel.ErrAlreadyExists
	}
	cp := *project
	s.projects[project.ID] = &cp
	return nil
}

func (s *InMemoryProjectStore) FindByID(_ context.Context, id domain.ProjectID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, exists := s.projects[id]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	cp := *project
	return &cp, nil
}

// Execute holds the write lock across validate and mutate so the check and
// the increment are one atomic step for all observers of this store.
func (s *InMemoryProjectStore) Execute(_ context.Context, id domain.ProjectID,
	validate func(*models.Project) error,
	mutate func(*models.Project)) (*models.Project, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	project, exists := s.projects[id]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(project); err != nil {
		return nil, err
	}
	mutate(project)
	cp := *project
	return &cp, nil
}
