// Package events defines the externally observable event stream. Events are
// append-only facts; consumers must tolerate duplicates but never gaps.
package events

import (
	"context"
	"time"

	"mintgate/pkg/domain"
)

// Type names an event kind.
type Type string

const (
	TypePurchaseMade     Type = "purchase_made"
	TypePolicyBound      Type = "policy_bound"
	TypePolicyRemoved    Type = "policy_removed"
	TypePricingUpdated   Type = "pricing_updated"
	TypeSplitUpdated     Type = "split_updated"
	TypeBidPlaced        Type = "bid_placed"
	TypeBidRefunded      Type = "bid_refunded"
	TypeAuctionFinalized Type = "auction_finalized"
	TypeProjectPaused    Type = "project_paused"
)

// Event is one observable fact about a project.
type Event struct {
	Type      Type             `json:"type"`
	ProjectID domain.ProjectID `json:"project_id"`
	Address   domain.Address   `json:"address,omitempty"`
	Amount    uint64           `json:"amount,omitempty"`
	TokenID   domain.TokenID   `json:"token_id,omitempty"`
	Policy    string           `json:"policy,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Publisher emits events. Emission is best-effort from the dispatcher's
// perspective: a failed emit is logged, never rolled into the sale's
// outcome, because issuance accounting must not depend on the stream.
type Publisher interface {
	Emit(ctx context.Context, event Event)
}

// NopPublisher drops all events.
type NopPublisher struct{}

func (NopPublisher) Emit(context.Context, Event) {}
