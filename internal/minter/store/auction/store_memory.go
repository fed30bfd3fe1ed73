package auction

import (
	"context"
	"sync"

	"mintgate/internal/minter/models"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
)

// InMemoryStore holds auction state and the escrow ledger in maps guarded by
// one mutex. Escrow balances are per (project, bidder).
type InMemoryStore struct {
	mu      sync.Mutex
	states  map[domain.ProjectID]*models.AuctionState
	escrows map[domain.ProjectID]map[domain.Address]uint64
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		states:  make(map[domain.ProjectID]*models.AuctionState),
		escrows: make(map[domain.ProjectID]map[domain.Address]uint64),
	}
}

func (s *InMemoryStore) GetOrCreate(_ context.Context, projectID domain.ProjectID) (*models.AuctionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, exists := s.states[projectID]
	if !exists {
		state = &models.AuctionState{ProjectID: projectID}
		s.states[projectID] = state
	}
	cp := *state
	return &cp, nil
}

func (s *InMemoryStore) Get(_ context.Context, projectID domain.ProjectID) (*models.AuctionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, exists := s.states[projectID]
	if !exists {
		return nil, sentinel.ErrNotFound
	}
	cp := *state
	return &cp, nil
}

func (s *InMemoryStore) Update(_ context.Context, state *models.AuctionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *state
	s.states[state.ProjectID] = &cp
	return nil
}

func (s *InMemoryStore) AddEscrow(_ context.Context, projectID domain.ProjectID, bidder domain.Address, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, exists := s.escrows[projectID]
	if !exists {
		ledger = make(map[domain.Address]uint64)
		s.escrows[projectID] = ledger
	}
	ledger[bidder] += amount
	return nil
}

func (s *InMemoryStore) TakeEscrow(_ context.Context, projectID domain.ProjectID, bidder domain.Address) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.escrows[projectID]
	amount := ledger[bidder]
	if amount > 0 {
		delete(ledger, bidder)
	}
	return amount, nil
}

func (s *InMemoryStore) ListEscrows(_ context.Context, projectID domain.ProjectID) (map[domain.Address]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[domain.Address]uint64)
	for bidder, amount := range s.escrows[projectID] {
		if amount > 0 {
			out[bidder] = amount
		}
	}
	return out, nil
}
