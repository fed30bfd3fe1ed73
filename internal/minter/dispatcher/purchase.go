package dispatcher

import (
	"context"
	"errors"

	"mintgate/internal/events"
	"mintgate/internal/minter/merkle"
	"mintgate/internal/minter/models"
	"mintgate/internal/minter/policy"
	registrymodels "mintgate/internal/registry/models"
	"mintgate/internal/settlement"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/sentinel"
	"mintgate/pkg/requestcontext"
)

// PurchaseRequest is one attempt to buy a slot.
type PurchaseRequest struct {
	Purchaser domain.Address
	// Payment is the value the purchaser offers. The sale clears at the
	// policy price; any excess is refunded, never silently kept.
	Payment uint64
	// Proof is the Merkle membership proof for allowlist policies.
	Proof []merkle.Hash
	// QualifyingTokenID names the token consumed by holder-gate policies.
	QualifyingTokenID uint64
}

// PurchaseOutcome is the result of a purchase call. For immediate-sale
// policies Record is set. When the bound policy is a sequential auction the
// payment is treated as a bid and Bid carries the resulting auction state;
// the token is issued at finalization.
type PurchaseOutcome struct {
	Record *models.PurchaseRecord
	Bid    *models.AuctionState
}

// Purchase attempts to buy one slot. On success the invocation counter has
// been incremented, the purchase is recorded, value is settled, and the
// randomizer has been signaled. On any failure no state has changed.
func (d *Dispatcher) Purchase(ctx context.Context, projectID domain.ProjectID, req PurchaseRequest) (*PurchaseOutcome, error) {
	if req.Purchaser.IsZero() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "purchaser address is required")
	}

	unlock := d.lockProject(projectID)
	defer unlock()

	binding, err := d.getBinding(ctx, projectID)
	if err != nil {
		return nil, err
	}

	// A sequential auction sells via bids; a purchase against one is a bid.
	if binding.Config.Kind == models.PolicySequentialAuction {
		state, err := d.placeBid(ctx, projectID, binding, req.Purchaser, req.Payment)
		if err != nil {
			return nil, err
		}
		return &PurchaseOutcome{Bid: state}, nil
	}

	project, err := d.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	// Checks. Nothing below mutates until every one has passed.
	if err := project.CanMint(); err != nil {
		d.countRejection(err)
		return nil, err
	}

	now := requestcontext.Now(ctx)
	price, err := policy.Quote(&binding.Config, now)
	if err != nil {
		return nil, err
	}

	preq := policy.Request{
		Purchaser:         req.Purchaser,
		Proof:             req.Proof,
		QualifyingTokenID: req.QualifyingTokenID,
	}
	if binding.Config.Kind == models.PolicyHolderGate && d.ownership != nil {
		owner, err := d.ownership.OwnerOf(ctx, binding.Config.HolderGate.TokenContract, req.QualifyingTokenID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve qualifying token owner")
		}
		preq.QualifyingOwner = owner
	}

	return d.completePurchase(ctx, project, binding, preq, price, req.Payment)
}

// completePurchase runs eligibility, quota, the payment check, and the effect
// phase, in that order. An ineligible purchaser is rejected as ineligible no
// matter what they offered to pay. Caller holds the project lock.
func (d *Dispatcher) completePurchase(ctx context.Context, project *registrymodels.Project, binding *models.PolicyBinding, req policy.Request, price, payment uint64) (*PurchaseOutcome, error) {
	grant, err := policy.CheckEligibility(&binding.Config, project.ID, req)
	if err != nil {
		d.countRejection(err)
		return nil, err
	}

	if grant.QuotaKey != "" {
		used, err := d.quotas.Count(ctx, grant.QuotaKey)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read quota")
		}
		if used >= grant.QuotaLimit {
			limitErr := dErrors.New(grant.LimitCode, "mint quota exhausted")
			d.countRejection(limitErr)
			return nil, limitErr
		}
	}

	if payment < price {
		return nil, dErrors.Newf(dErrors.CodeInsufficientPayment, "price is %d, payment is %d", price, payment)
	}

	now := requestcontext.Now(ctx)

	// Effects. The increment and token assignment commit under the store
	// lock before any outbound transfer, so a reentrant call cannot
	// double-mint.
	var tokenID domain.TokenID
	updated, err := d.projects.Execute(ctx, project.ID,
		func(p *registrymodels.Project) error {
			return p.CanMint()
		},
		func(p *registrymodels.Project) {
			tokenID = p.ApplyMint(now)
		},
	)
	if err != nil {
		d.countRejection(err)
		return nil, err
	}

	if grant.QuotaKey != "" {
		if _, err := d.quotas.Increment(ctx, grant.QuotaKey); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to charge quota")
		}
	}
	if err := d.bindings.RecordSale(ctx, project.ID, now); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record sale against binding")
	}

	record := &models.PurchaseRecord{
		ID:        domain.NewPurchaseID(),
		ProjectID: project.ID,
		Purchaser: req.Purchaser,
		PricePaid: price,
		TokenID:   tokenID,
		CreatedAt: now,
	}
	if err := d.purchases.Append(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append purchase record")
	}

	// Interactions. Internal state is committed; from here on we only move
	// value outward and notify collaborators.
	if err := d.settle(ctx, updated, req.Purchaser, price, payment); err != nil {
		return nil, err
	}

	if d.metrics != nil {
		d.metrics.Purchases.WithLabelValues(string(binding.Config.Kind)).Inc()
		d.metrics.PurchasePrice.Observe(float64(price))
	}
	d.emit(ctx, events.Event{
		Type:      events.TypePurchaseMade,
		ProjectID: project.ID,
		Address:   req.Purchaser,
		Amount:    price,
		TokenID:   tokenID,
		Policy:    string(binding.Config.Kind),
		Timestamp: now,
	})
	if d.seeds != nil {
		d.seeds.RequestSeed(ctx, project.ID, tokenID)
	}

	return &PurchaseOutcome{Record: record}, nil
}

// settle distributes the clearing price per the project's split schedule and
// refunds any overpayment.
func (d *Dispatcher) settle(ctx context.Context, project *registrymodels.Project, payer domain.Address, price, payment uint64) error {
	split, err := d.splitFor(ctx, project.ID, project.ArtistAddress)
	if err != nil {
		return err
	}
	for _, payout := range settlement.Distribute(price, split) {
		if err := d.rail.Credit(ctx, project.Currency, payout.Recipient, payout.Amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "settlement credit failed")
		}
	}
	if payment > price {
		if err := d.rail.Refund(ctx, project.Currency, payer, payment-price); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "overpayment refund failed")
		}
	}
	return nil
}

// findProject loads a project, translating the store sentinel.
func (d *Dispatcher) findProject(ctx context.Context, projectID domain.ProjectID) (*registrymodels.Project, error) {
	project, err := d.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load project")
	}
	return project, nil
}

func (d *Dispatcher) countRejection(err error) {
	if d.metrics == nil {
		return
	}
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeSoldOut {
		d.metrics.SoldOutRejects.Inc()
		return
	}
	d.metrics.EligibilityFails.WithLabelValues(string(code)).Inc()
}
