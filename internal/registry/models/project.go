package models

import (
	"time"

	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// Project is the aggregate root for one generative-art project's issuance
// state.
//
// Invariants:
//   - 0 <= Invocations <= MaxInvocations at every observable point
//   - Invocations is monotonic; it only moves through ApplyMint
//   - StartingTokenID and MaxInvocations are immutable after construction
//   - Token IDs are assigned sequentially with no gaps:
//     tokenID = StartingTokenID + Invocations - 1 for the Nth mint
//
// Only the dispatcher mutates Invocations, and only through the store's
// Execute callback so the check and the increment happen under one lock.
type Project struct {
	ID              domain.ProjectID `json:"id"`
	Name            string           `json:"name"`
	ArtistAddress   domain.Address   `json:"artist_address"`
	Currency        domain.Currency  `json:"currency"`
	MaxInvocations  uint64           `json:"max_invocations"`
	Invocations     uint64           `json:"invocations"`
	Paused          bool             `json:"paused"`
	StartingTokenID domain.TokenID   `json:"starting_token_id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewProject validates and constructs a project.
func NewProject(id domain.ProjectID, name string, artist domain.Address, currency domain.Currency, maxInvocations uint64, startingTokenID domain.TokenID, now time.Time) (*Project, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "project id is required")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "project name is required")
	}
	if artist.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "artist address is required")
	}
	if maxInvocations == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "max invocations must be positive")
	}
	if currency == "" {
		currency = domain.CurrencyNative
	}
	return &Project{
		ID:              id,
		Name:            name,
		ArtistAddress:   artist,
		Currency:        currency,
		MaxInvocations:  maxInvocations,
		StartingTokenID: startingTokenID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// SoldOut reports whether the cap is exhausted.
func (p *Project) SoldOut() bool {
	return p.Invocations >= p.MaxInvocations
}

// CanMint checks whether one more slot may be issued. Returns a coded error
// naming the first failing condition.
func (p *Project) CanMint() error {
	if p.Paused {
		return dErrors.New(dErrors.CodeConflict, "project is paused")
	}
	if p.SoldOut() {
		return dErrors.New(dErrors.CodeSoldOut, "project has reached max invocations")
	}
	return nil
}

// ApplyMint increments the invocation counter and returns the token ID for
// the newly issued slot. Call CanMint first inside the same Execute callback;
// ApplyMint itself never re-checks.
func (p *Project) ApplyMint(now time.Time) domain.TokenID {
	p.Invocations++
	p.UpdatedAt = now
	return p.StartingTokenID + domain.TokenID(p.Invocations-1)
}

// ApplyPause flips the pause flag.
func (p *Project) ApplyPause(paused bool, now time.Time) {
	p.Paused = paused
	p.UpdatedAt = now
}
