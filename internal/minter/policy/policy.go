// Package policy computes prices and eligibility for the six pricing policy
// kinds. Every function here is a pure function of the pricing config, the
// call's inputs, and the single time value passed in; no policy touches a
// store or a clock directly. Quota bookkeeping and all state mutation belong
// to the dispatcher.
package policy

import (
	"fmt"

	"mintgate/internal/minter/merkle"
	"mintgate/internal/minter/models"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// Request carries the purchase attempt's eligibility inputs.
type Request struct {
	Purchaser domain.Address
	// Proof is the Merkle membership proof for allowlist policies.
	Proof []merkle.Hash
	// QualifyingTokenID names the token being consumed for holder-gate
	// policies.
	QualifyingTokenID uint64
	// QualifyingOwner is the current owner of QualifyingTokenID as reported
	// by the ownership collaborator. The dispatcher resolves it before
	// calling CheckEligibility so the check stays pure.
	QualifyingOwner domain.Address
}

// Grant is a successful eligibility decision. When QuotaKey is non-empty the
// dispatcher must charge one unit against it (up to QuotaLimit) atomically
// with the mint.
type Grant struct {
	QuotaKey   string
	QuotaLimit uint64
	// LimitCode is the rejection code to surface when the quota is
	// exhausted.
	LimitCode dErrors.Code
}

// CheckEligibility applies the policy's admission rule. It never consumes
// quota; it only names the quota cell the dispatcher must charge.
func CheckEligibility(cfg *models.PricingConfig, projectID domain.ProjectID, req Request) (Grant, error) {
	switch cfg.Kind {
	case models.PolicyFixedPrice, models.PolicyLinearDecay, models.PolicyExpDecay:
		return Grant{}, nil

	case models.PolicyAllowlist:
		leaf := merkle.LeafFor(req.Purchaser)
		if !merkle.Verify(cfg.Allowlist.MerkleRoot, leaf, req.Proof) {
			return Grant{}, dErrors.New(dErrors.CodeNotAllowlisted, "proof does not match allowlist root")
		}
		return Grant{
			QuotaKey:   AddressQuotaKey(projectID, req.Purchaser),
			QuotaLimit: cfg.Allowlist.PerAddressLimit,
			LimitCode:  dErrors.CodeAddressLimitReached,
		}, nil

	case models.PolicyHolderGate:
		if req.QualifyingOwner.IsZero() || req.QualifyingOwner != req.Purchaser {
			return Grant{}, dErrors.New(dErrors.CodeNotAllowlisted, "purchaser does not hold a qualifying token")
		}
		return Grant{
			QuotaKey:   TokenQuotaKey(projectID, cfg.HolderGate.TokenContract, req.QualifyingTokenID),
			QuotaLimit: cfg.HolderGate.PerTokenLimit,
			LimitCode:  dErrors.CodeTokenLimitReached,
		}, nil

	case models.PolicySequentialAuction:
		return Grant{}, dErrors.New(dErrors.CodeConflict, "sequential auctions sell via bids, not purchases")
	}
	return Grant{}, dErrors.Newf(dErrors.CodeInternal, "unhandled policy kind %q", cfg.Kind)
}

// AddressQuotaKey names the per-project per-address mint counter.
func AddressQuotaKey(projectID domain.ProjectID, addr domain.Address) string {
	return fmt.Sprintf("addr:%s:%s", projectID, addr)
}

// TokenQuotaKey names the per-project per-qualifying-token mint counter.
// Keyed by (contract, tokenID), not by holder, so transferring the token
// does not reset its quota.
func TokenQuotaKey(projectID domain.ProjectID, contract domain.Address, tokenID uint64) string {
	return fmt.Sprintf("token:%s:%s:%d", projectID, contract, tokenID)
}
