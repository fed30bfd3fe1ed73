package dispatcher

import (
	"context"
	"errors"

	"mintgate/internal/events"
	"mintgate/internal/minter/models"
	registrymodels "mintgate/internal/registry/models"
	"mintgate/internal/settlement"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/sentinel"
	"mintgate/pkg/requestcontext"
)

// CreateProject registers a new project in the registry. Projects exist
// before any policy binds to them.
func (d *Dispatcher) CreateProject(ctx context.Context, name string, artist domain.Address, currency domain.Currency, maxInvocations uint64, startingTokenID domain.TokenID) (*registrymodels.Project, error) {
	now := requestcontext.Now(ctx)
	project, err := registrymodels.NewProject(domain.NewProjectID(), name, artist, currency, maxInvocations, startingTokenID, now)
	if err != nil {
		return nil, err
	}
	if err := d.projects.Create(ctx, project); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil, dErrors.New(dErrors.CodeConflict, "project already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create project")
	}
	return project, nil
}

// BindPolicy binds a pricing policy to a project, replacing any existing
// binding atomically. Rebinding is rejected once a sale has been recorded
// against the current binding.
func (d *Dispatcher) BindPolicy(ctx context.Context, projectID domain.ProjectID, cfg models.PricingConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	unlock := d.lockProject(projectID)
	defer unlock()

	if _, err := d.findProject(ctx, projectID); err != nil {
		return err
	}

	existing, err := d.bindings.Get(ctx, projectID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load policy binding")
	}
	if existing != nil {
		if err := existing.CanReconfigure(); err != nil {
			return err
		}
	}

	now := requestcontext.Now(ctx)
	binding := &models.PolicyBinding{
		ProjectID: projectID,
		Config:    cfg,
		BoundAt:   now,
		UpdatedAt: now,
	}
	if err := d.bindings.Put(ctx, binding); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store policy binding")
	}

	d.emit(ctx, events.Event{
		Type:      events.TypePolicyBound,
		ProjectID: projectID,
		Policy:    string(cfg.Kind),
		Timestamp: now,
	})
	return nil
}

// RemovePolicy removes the project's binding. Fails with not_found when none
// is bound, and refuses to remove a binding that already has sales.
func (d *Dispatcher) RemovePolicy(ctx context.Context, projectID domain.ProjectID) error {
	unlock := d.lockProject(projectID)
	defer unlock()

	binding, err := d.getBinding(ctx, projectID)
	if err != nil {
		return err
	}
	if err := binding.CanReconfigure(); err != nil {
		return err
	}
	if err := d.bindings.Delete(ctx, projectID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "no policy bound to project")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete policy binding")
	}

	d.emit(ctx, events.Event{
		Type:      events.TypePolicyRemoved,
		ProjectID: projectID,
		Policy:    string(binding.Config.Kind),
		Timestamp: requestcontext.Now(ctx),
	})
	return nil
}

// SetPricingConfig replaces the bound policy's pricing parameters. The
// policy kind must stay the same; rebind to change kinds. Frozen after the
// first sale, including the allowlist root: locking the root once sales
// exist prevents retroactive disenfranchisement mid-sale.
func (d *Dispatcher) SetPricingConfig(ctx context.Context, projectID domain.ProjectID, cfg models.PricingConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	unlock := d.lockProject(projectID)
	defer unlock()

	binding, err := d.getBinding(ctx, projectID)
	if err != nil {
		return err
	}
	if binding.Config.Kind != cfg.Kind {
		return dErrors.New(dErrors.CodeConflict, "policy kind mismatch; rebind to change kinds")
	}
	if err := binding.CanReconfigure(); err != nil {
		return err
	}

	now := requestcontext.Now(ctx)
	binding.Config = cfg
	binding.UpdatedAt = now
	if err := d.bindings.Put(ctx, binding); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store pricing config")
	}

	d.emit(ctx, events.Event{
		Type:      events.TypePricingUpdated,
		ProjectID: projectID,
		Policy:    string(cfg.Kind),
		Timestamp: now,
	})
	return nil
}

// SetSplitConfig installs the project's payout schedule. Misconfigured
// splits are rejected here, at configuration time, so settlement can never
// fail at sale time.
func (d *Dispatcher) SetSplitConfig(ctx context.Context, projectID domain.ProjectID, entries []settlement.SplitEntry, defaultRecipient domain.Address) error {
	unlock := d.lockProject(projectID)
	defer unlock()

	if _, err := d.findProject(ctx, projectID); err != nil {
		return err
	}

	now := requestcontext.Now(ctx)
	cfg := &settlement.SplitConfig{
		ProjectID:        projectID,
		Entries:          entries,
		DefaultRecipient: defaultRecipient,
		UpdatedAt:        now,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := d.splits.Put(ctx, cfg); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store split config")
	}

	d.emit(ctx, events.Event{
		Type:      events.TypeSplitUpdated,
		ProjectID: projectID,
		Timestamp: now,
	})
	return nil
}

// SetPaused flips the project's pause flag. Paused projects reject
// purchases and bids but still finalize ended auctions.
func (d *Dispatcher) SetPaused(ctx context.Context, projectID domain.ProjectID, paused bool) error {
	unlock := d.lockProject(projectID)
	defer unlock()

	now := requestcontext.Now(ctx)
	_, err := d.projects.Execute(ctx, projectID,
		func(*registrymodels.Project) error { return nil },
		func(p *registrymodels.Project) {
			p.ApplyPause(paused, now)
		},
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "project not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update pause flag")
	}

	d.emit(ctx, events.Event{
		Type:      events.TypeProjectPaused,
		ProjectID: projectID,
		Timestamp: now,
	})
	return nil
}
