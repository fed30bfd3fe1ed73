package dispatcher

import (
	"context"
	"errors"

	"mintgate/internal/minter/models"
	"mintgate/internal/minter/policy"
	registrymodels "mintgate/internal/registry/models"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/sentinel"
	"mintgate/pkg/requestcontext"
)

// QuoteResult is the read-only price view for a project.
type QuoteResult struct {
	Kind models.PolicyKind `json:"kind"`
	// Price is the posted price, or for sequential auctions the minimum
	// acceptable next bid.
	Price uint64 `json:"price"`
	// HighBid and HighBidder are populated for sequential auctions.
	HighBid    uint64         `json:"high_bid,omitempty"`
	HighBidder domain.Address `json:"high_bidder,omitempty"`
}

// Quote returns the price a purchase at this instant would clear at. Pure
// read; no state changes.
func (d *Dispatcher) Quote(ctx context.Context, projectID domain.ProjectID) (*QuoteResult, error) {
	binding, err := d.getBinding(ctx, projectID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if binding.Config.Kind == models.PolicySequentialAuction {
		state, err := d.auctions.Get(ctx, projectID)
		if err != nil {
			if !errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load auction state")
			}
			// No bid has touched the project yet; quote against zero state
			// without writing anything.
			state = &models.AuctionState{ProjectID: projectID}
		}
		return &QuoteResult{
			Kind:       binding.Config.Kind,
			Price:      state.MinAcceptableBid(binding.Config.Auction),
			HighBid:    state.HighBid,
			HighBidder: state.HighBidder,
		}, nil
	}

	price, err := policy.Quote(&binding.Config, now)
	if err != nil {
		return nil, err
	}
	return &QuoteResult{Kind: binding.Config.Kind, Price: price}, nil
}

// GetProject returns the project's issuance state.
func (d *Dispatcher) GetProject(ctx context.Context, projectID domain.ProjectID) (*registrymodels.Project, error) {
	return d.findProject(ctx, projectID)
}

// ListPurchases returns the project's purchase log in token order.
func (d *Dispatcher) ListPurchases(ctx context.Context, projectID domain.ProjectID) ([]*models.PurchaseRecord, error) {
	records, err := d.purchases.ListByProject(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list purchases")
	}
	return records, nil
}
