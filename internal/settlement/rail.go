package settlement

import (
	"context"
	"sync"

	"mintgate/pkg/domain"
)

// Rail moves value. The distributor is agnostic to the transfer mechanism;
// native-value and fungible-token rails implement the same contract and the
// accounting path upstream is identical.
//
// Rails are the interaction step: the dispatcher calls them only after all
// internal counters are committed, and reads no internal state afterward.
type Rail interface {
	// Credit pays amount of currency to the recipient.
	Credit(ctx context.Context, currency domain.Currency, to domain.Address, amount uint64) error
	// Refund returns amount of currency to a payer or outbid bidder.
	Refund(ctx context.Context, currency domain.Currency, to domain.Address, amount uint64) error
}

// LedgerRail is the in-process rail: it records every movement in an
// append-only ledger. Production deployments point an external rail adapter
// at the same interface; the ledger rail also backs every test assertion
// about value conservation.
type LedgerRail struct {
	mu      sync.Mutex
	entries []LedgerEntry
}

// LedgerEntry is one recorded value movement.
type LedgerEntry struct {
	Currency domain.Currency
	To       domain.Address
	Amount   uint64
	Kind     string // "credit" or "refund"
}

func NewLedgerRail() *LedgerRail {
	return &LedgerRail{}
}

func (r *LedgerRail) Credit(_ context.Context, currency domain.Currency, to domain.Address, amount uint64) error {
	r.record(LedgerEntry{Currency: currency, To: to, Amount: amount, Kind: "credit"})
	return nil
}

func (r *LedgerRail) Refund(_ context.Context, currency domain.Currency, to domain.Address, amount uint64) error {
	r.record(LedgerEntry{Currency: currency, To: to, Amount: amount, Kind: "refund"})
	return nil
}

func (r *LedgerRail) record(entry LedgerEntry) {
	if entry.Amount == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

// Entries returns a copy of the ledger.
func (r *LedgerRail) Entries() []LedgerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LedgerEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// TotalTo sums all movements to one address.
func (r *LedgerRail) TotalTo(addr domain.Address) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total uint64
	for _, entry := range r.entries {
		if entry.To == addr {
			total += entry.Amount
		}
	}
	return total
}
