// Package dispatcher is the single authorized gateway for slot issuance.
// Exactly one pricing policy is bound per project; every purchase, bid, and
// finalization funnels through here, and nothing else in the service mutates
// a project's invocation counter.
//
// Calls against one project are serialized by a per-project mutex, so each
// operation runs to completion with no interleaving: it either fully commits
// or fully rejects with no partial effects. Checks strictly precede effects,
// and external value transfers (rail credits and refunds) happen last, after
// every internal counter is committed.
package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"mintgate/internal/events"
	"mintgate/internal/minter/metrics"
	"mintgate/internal/minter/models"
	minterstore "mintgate/internal/minter/store"
	"mintgate/internal/randomizer"
	registrystore "mintgate/internal/registry/store"
	"mintgate/internal/settlement"
	settlementstore "mintgate/internal/settlement/store"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
	"mintgate/pkg/platform/sentinel"
)

// OwnershipChecker resolves the current owner of a qualifying token for
// holder-gate policies. External collaborator; consulted, never mutated.
type OwnershipChecker interface {
	OwnerOf(ctx context.Context, contract domain.Address, tokenID uint64) (domain.Address, error)
}

// Dispatcher routes purchase attempts through the bound policy and owns all
// issuance state transitions.
type Dispatcher struct {
	projects  registrystore.ProjectStore
	bindings  minterstore.BindingStore
	purchases minterstore.PurchaseStore
	quotas    minterstore.QuotaStore
	auctions  minterstore.AuctionStore
	splits    settlementstore.SplitStore

	rail      settlement.Rail
	ownership OwnershipChecker
	publisher events.Publisher
	seeds     randomizer.SeedRequester
	metrics   *metrics.Metrics
	logger    *slog.Logger

	// locks serializes all state-mutating calls per project. Calls against
	// different projects proceed independently.
	locks sync.Map // domain.ProjectID -> *sync.Mutex
}

// Option configures optional collaborators.
type Option func(*Dispatcher)

// WithRail sets the settlement rail. Defaults to the in-process ledger rail.
func WithRail(rail settlement.Rail) Option {
	return func(d *Dispatcher) { d.rail = rail }
}

// WithOwnershipChecker wires the qualifying-token ownership collaborator.
// Without one, holder-gate bindings reject every purchase: no resolved owner
// ever matches the purchaser.
func WithOwnershipChecker(checker OwnershipChecker) Option {
	return func(d *Dispatcher) { d.ownership = checker }
}

// WithPublisher sets the event publisher.
func WithPublisher(publisher events.Publisher) Option {
	return func(d *Dispatcher) { d.publisher = publisher }
}

// WithSeedRequester wires the randomizer collaborator.
func WithSeedRequester(seeds randomizer.SeedRequester) Option {
	return func(d *Dispatcher) { d.seeds = seeds }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// New constructs a dispatcher over the given stores.
func New(
	projects registrystore.ProjectStore,
	bindings minterstore.BindingStore,
	purchases minterstore.PurchaseStore,
	quotas minterstore.QuotaStore,
	auctions minterstore.AuctionStore,
	splits settlementstore.SplitStore,
	opts ...Option,
) *Dispatcher {
	d := &Dispatcher{
		projects:  projects,
		bindings:  bindings,
		purchases: purchases,
		quotas:    quotas,
		auctions:  auctions,
		splits:    splits,
		rail:      settlement.NewLedgerRail(),
		publisher: events.NopPublisher{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// lockProject acquires the project's serialization lock and returns the
// unlock function.
func (d *Dispatcher) lockProject(projectID domain.ProjectID) func() {
	v, _ := d.locks.LoadOrStore(projectID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// getBinding loads the policy binding, translating the store sentinel.
func (d *Dispatcher) getBinding(ctx context.Context, projectID domain.ProjectID) (*models.PolicyBinding, error) {
	binding, err := d.bindings.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no policy bound to project")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load policy binding")
	}
	return binding, nil
}

// splitFor returns the project's payout schedule, defaulting to
// everything-to-artist when none is configured.
func (d *Dispatcher) splitFor(ctx context.Context, projectID domain.ProjectID, artist domain.Address) (*settlement.SplitConfig, error) {
	cfg, err := d.splits.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return settlement.ArtistOnly(projectID, artist), nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load split config")
	}
	return cfg, nil
}

func (d *Dispatcher) emit(ctx context.Context, event events.Event) {
	d.publisher.Emit(ctx, event)
}
