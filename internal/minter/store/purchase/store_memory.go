package purchase

import (
	"context"
	"sync"

	"mintgate/internal/minter/models"
	"mintgate/pkg/domain"
)

// InMemoryStore is the append-only purchase log backed by a slice per
// project. Records are copied on the way in and out; nothing ever mutates a
// stored record.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[domain.ProjectID][]*models.PurchaseRecord
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[domain.ProjectID][]*models.PurchaseRecord),
	}
}

func (s *InMemoryStore) Append(_ context.Context, record *models.PurchaseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *record
	s.records[record.ProjectID] = append(s.records[record.ProjectID], &cp)
	return nil
}

func (s *InMemoryStore) ListByProject(_ context.Context, projectID domain.ProjectID) ([]*models.PurchaseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.records[projectID]
	out := make([]*models.PurchaseRecord, 0, len(stored))
	for _, record := range stored {
		cp := *record
		out = append(out, &cp)
	}
	return out, nil
}
