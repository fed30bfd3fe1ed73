package dispatcher

import (
	"context"

	"mintgate/internal/events"
	"mintgate/internal/minter/models"
	registrymodels "mintgate/internal/registry/models"
	"mintgate/internal/settlement"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/requestcontext"
)

// Bid places a bid on a sequential-auction project. The new bid is escrowed
// and the previous high bidder's escrow is refunded immediately.
func (d *Dispatcher) Bid(ctx context.Context, projectID domain.ProjectID, bidder domain.Address, amount uint64) (*models.AuctionState, error) {
	if bidder.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "bidder address is required")
	}

	unlock := d.lockProject(projectID)
	defer unlock()

	binding, err := d.getBinding(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return d.placeBid(ctx, projectID, binding, bidder, amount)
}

// placeBid is the shared bid path; caller holds the project lock.
func (d *Dispatcher) placeBid(ctx context.Context, projectID domain.ProjectID, binding *models.PolicyBinding, bidder domain.Address, amount uint64) (*models.AuctionState, error) {
	if binding.Config.Kind != models.PolicySequentialAuction {
		return nil, dErrors.New(dErrors.CodeConflict, "bound policy does not accept bids")
	}
	if amount > domain.MaxAmount {
		return nil, dErrors.New(dErrors.CodeBadRequest, "bid exceeds maximum representable amount")
	}

	project, err := d.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.Paused {
		return nil, dErrors.New(dErrors.CodeConflict, "project is paused")
	}
	if project.SoldOut() {
		return nil, dErrors.New(dErrors.CodeSoldOut, "project has reached max invocations")
	}

	state, err := d.auctions.GetOrCreate(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load auction state")
	}

	now := requestcontext.Now(ctx)
	cfg := binding.Config.Auction
	switch state.Phase(cfg, now) {
	case models.AuctionNotStarted:
		return nil, dErrors.New(dErrors.CodeAuctionNotStarted, "auction has not started")
	case models.AuctionEnded, models.AuctionSettled:
		return nil, dErrors.New(dErrors.CodeAuctionEnded, "auction has ended")
	}

	if min := state.MinAcceptableBid(cfg); amount < min {
		err := dErrors.Newf(dErrors.CodeBidTooLow, "minimum acceptable bid is %d", min)
		d.countRejection(err)
		return nil, err
	}

	prevBidder := state.HighBidder

	// Effects: move the outbid escrow out of the ledger before crediting the
	// new bid, so a bidder raising their own bid cannot merge balances.
	var refund uint64
	if !prevBidder.IsZero() {
		refund, err = d.auctions.TakeEscrow(ctx, projectID, prevBidder)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to release outbid escrow")
		}
	}
	if err := d.auctions.AddEscrow(ctx, projectID, bidder, amount); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to escrow bid")
	}

	state.HighBid = amount
	state.HighBidder = bidder
	state.BidCount++
	state.UpdatedAt = now
	if err := d.auctions.Update(ctx, state); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update auction state")
	}

	// Interactions: refund the outbid bidder last.
	if refund > 0 {
		if err := d.rail.Refund(ctx, project.Currency, prevBidder, refund); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "outbid refund failed")
		}
		if d.metrics != nil {
			d.metrics.BidRefunds.Inc()
		}
		d.emit(ctx, events.Event{
			Type:      events.TypeBidRefunded,
			ProjectID: projectID,
			Address:   prevBidder,
			Amount:    refund,
			Timestamp: now,
		})
	}

	if d.metrics != nil {
		d.metrics.Bids.Inc()
	}
	d.emit(ctx, events.Event{
		Type:      events.TypeBidPlaced,
		ProjectID: projectID,
		Address:   bidder,
		Amount:    amount,
		Timestamp: now,
	})

	cp := *state
	return &cp, nil
}

// Finalize settles an ended auction: the high bidder receives the next token
// at the clearing price, every other escrow is refunded in full, and the
// clearing revenue is distributed per the split schedule. Idempotent and
// callable by anyone; a second call observes the settled state and changes
// nothing.
func (d *Dispatcher) Finalize(ctx context.Context, projectID domain.ProjectID) (*models.AuctionState, error) {
	unlock := d.lockProject(projectID)
	defer unlock()

	binding, err := d.getBinding(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if binding.Config.Kind != models.PolicySequentialAuction {
		return nil, dErrors.New(dErrors.CodeConflict, "bound policy is not a sequential auction")
	}

	state, err := d.auctions.GetOrCreate(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load auction state")
	}
	if state.Settled {
		// Settled is terminal; repeat finalizations are no-ops.
		cp := *state
		return &cp, nil
	}

	now := requestcontext.Now(ctx)
	cfg := binding.Config.Auction
	switch state.Phase(cfg, now) {
	case models.AuctionNotStarted, models.AuctionOpen:
		return nil, dErrors.New(dErrors.CodeConflict, "auction has not ended")
	}

	if _, err := d.findProject(ctx, projectID); err != nil {
		return nil, err
	}

	// No bids: settle empty, nothing to mint or pay out.
	if state.HighBidder.IsZero() {
		state.Settled = true
		state.UpdatedAt = now
		if err := d.auctions.Update(ctx, state); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to settle auction")
		}
		d.emit(ctx, events.Event{
			Type:      events.TypeAuctionFinalized,
			ProjectID: projectID,
			Timestamp: now,
		})
		cp := *state
		return &cp, nil
	}

	winner := state.HighBidder
	clearing := state.HighBid

	// Effects: mint to the winner under the store lock. Pausing blocks new
	// purchases and bids, not the settlement of an auction that already ended,
	// so only the cap is checked here.
	var tokenID domain.TokenID
	updated, err := d.projects.Execute(ctx, projectID,
		func(p *registrymodels.Project) error {
			if p.SoldOut() {
				return dErrors.New(dErrors.CodeSoldOut, "project has reached max invocations")
			}
			return nil
		},
		func(p *registrymodels.Project) {
			tokenID = p.ApplyMint(now)
		},
	)
	if err != nil {
		d.countRejection(err)
		return nil, err
	}

	winnerEscrow, err := d.auctions.TakeEscrow(ctx, projectID, winner)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume winner escrow")
	}
	residuals, err := d.auctions.ListEscrows(ctx, projectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list residual escrows")
	}
	for bidder := range residuals {
		if _, err := d.auctions.TakeEscrow(ctx, projectID, bidder); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to release residual escrow")
		}
	}

	state.Settled = true
	state.Winner = winner
	state.Clearing = clearing
	state.TokenID = tokenID
	state.UpdatedAt = now
	if err := d.auctions.Update(ctx, state); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to settle auction")
	}

	if err := d.bindings.RecordSale(ctx, projectID, now); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record sale against binding")
	}
	record := &models.PurchaseRecord{
		ID:        domain.NewPurchaseID(),
		ProjectID: projectID,
		Purchaser: winner,
		PricePaid: clearing,
		TokenID:   tokenID,
		CreatedAt: now,
	}
	if err := d.purchases.Append(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append purchase record")
	}

	// Interactions: distribute the clearing revenue, refund residuals,
	// refund any escrow excess over the clearing price, signal the
	// randomizer.
	split, err := d.splitFor(ctx, projectID, updated.ArtistAddress)
	if err != nil {
		return nil, err
	}
	for _, payout := range settlement.Distribute(clearing, split) {
		if err := d.rail.Credit(ctx, updated.Currency, payout.Recipient, payout.Amount); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "settlement credit failed")
		}
	}
	if winnerEscrow > clearing {
		if err := d.rail.Refund(ctx, updated.Currency, winner, winnerEscrow-clearing); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "winner excess refund failed")
		}
	}
	for bidder, amount := range residuals {
		if err := d.rail.Refund(ctx, updated.Currency, bidder, amount); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "residual refund failed")
		}
	}

	if d.metrics != nil {
		d.metrics.Finalizations.Inc()
		d.metrics.Purchases.WithLabelValues(string(models.PolicySequentialAuction)).Inc()
		d.metrics.PurchasePrice.Observe(float64(clearing))
	}
	d.emit(ctx, events.Event{
		Type:      events.TypeAuctionFinalized,
		ProjectID: projectID,
		Address:   winner,
		Amount:    clearing,
		TokenID:   tokenID,
		Timestamp: now,
	})
	d.emit(ctx, events.Event{
		Type:      events.TypePurchaseMade,
		ProjectID: projectID,
		Address:   winner,
		Amount:    clearing,
		TokenID:   tokenID,
		Policy:    string(models.PolicySequentialAuction),
		Timestamp: now,
	})
	if d.seeds != nil {
		d.seeds.RequestSeed(ctx, projectID, tokenID)
	}

	cp := *state
	return &cp, nil
}
