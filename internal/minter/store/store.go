// Package store defines the storage contracts for the minter context.
// Implementations live in the per-entity subpackages (binding, purchase,
// quota) following the memory/postgres/redis pairing used across the service.
package store

import (
	"context"
	"time"

	"mintgate/internal/minter/models"
	"mintgate/pkg/domain"
)

// BindingStore persists policy bindings, one per project.
type BindingStore interface {
	// Put creates or replaces the binding for a project.
	Put(ctx context.Context, binding *models.PolicyBinding) error
	Get(ctx context.Context, projectID domain.ProjectID) (*models.PolicyBinding, error)
	// Delete removes the binding; sentinel.ErrNotFound if none exists.
	Delete(ctx context.Context, projectID domain.ProjectID) error
	// RecordSale increments the binding's sale counter.
	RecordSale(ctx context.Context, projectID domain.ProjectID, now time.Time) error
}

// PurchaseStore is the append-only purchase log.
type PurchaseStore interface {
	Append(ctx context.Context, record *models.PurchaseRecord) error
	ListByProject(ctx context.Context, projectID domain.ProjectID) ([]*models.PurchaseRecord, error)
}

// QuotaStore counts consumed mint quota per key (per-address or
// per-qualifying-token cells).
type QuotaStore interface {
	Count(ctx context.Context, key string) (uint64, error)
	// Increment adds one to the counter and returns the new value.
	Increment(ctx context.Context, key string) (uint64, error)
}

// AuctionStore persists sequential-auction state and the escrow ledger.
type AuctionStore interface {
	// GetOrCreate returns the auction state for a project, creating a zeroed
	// record on first touch.
	GetOrCreate(ctx context.Context, projectID domain.ProjectID) (*models.AuctionState, error)
	// Get returns the auction state without creating one;
	// sentinel.ErrNotFound when no bid has ever touched the project.
	Get(ctx context.Context, projectID domain.ProjectID) (*models.AuctionState, error)
	Update(ctx context.Context, state *models.AuctionState) error
	// Escrow operations; amounts are per-bidder balances.
	AddEscrow(ctx context.Context, projectID domain.ProjectID, bidder domain.Address, amount uint64) error
	// TakeEscrow zeroes and returns a bidder's escrowed balance.
	TakeEscrow(ctx context.Context, projectID domain.ProjectID, bidder domain.Address) (uint64, error)
	// ListEscrows returns all non-zero escrow balances for the project.
	ListEscrows(ctx context.Context, projectID domain.ProjectID) (map[domain.Address]uint64, error)
}
