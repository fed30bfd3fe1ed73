package models

import (
	"time"

	"mintgate/internal/minter/merkle"
	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// PolicyKind enumerates the closed set of pricing/eligibility policies. The
// set is fixed; code switching on it must handle every kind.
type PolicyKind string

const (
	PolicyFixedPrice        PolicyKind = "fixed_price"
	PolicyLinearDecay       PolicyKind = "linear_decay"
	PolicyExpDecay          PolicyKind = "exp_decay"
	PolicyAllowlist         PolicyKind = "allowlist"
	PolicyHolderGate        PolicyKind = "holder_gate"
	PolicySequentialAuction PolicyKind = "sequential_auction"
)

// Valid reports whether k names a known policy kind.
func (k PolicyKind) Valid() bool {
	switch k {
	case PolicyFixedPrice, PolicyLinearDecay, PolicyExpDecay,
		PolicyAllowlist, PolicyHolderGate, PolicySequentialAuction:
		return true
	}
	return false
}

// PricingConfig is a tagged union over the six policy kinds. Exactly the
// variant named by Kind is populated; Validate enforces this.
//
// All prices and bids are integer base units of the project currency.
type PricingConfig struct {
	Kind PolicyKind `json:"kind"`

	Fixed       *FixedConfig       `json:"fixed,omitempty"`
	LinearDecay *LinearDecayConfig `json:"linear_decay,omitempty"`
	ExpDecay    *ExpDecayConfig    `json:"exp_decay,omitempty"`
	Allowlist   *AllowlistConfig   `json:"allowlist,omitempty"`
	HolderGate  *HolderGateConfig  `json:"holder_gate,omitempty"`
	Auction     *AuctionConfig     `json:"auction,omitempty"`
}

// FixedConfig sells every slot at one constant price.
type FixedConfig struct {
	Price uint64 `json:"price"`
}

// LinearDecayConfig interpolates the price linearly from StartPrice at
// StartTime down to BasePrice at EndTime.
type LinearDecayConfig struct {
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	StartPrice uint64    `json:"start_price"`
	BasePrice  uint64    `json:"base_price"`
}

// ExpDecayConfig halves the price every HalfLife, floored at BasePrice.
type ExpDecayConfig struct {
	StartTime  time.Time     `json:"start_time"`
	HalfLife   time.Duration `json:"half_life"`
	StartPrice uint64        `json:"start_price"`
	BasePrice  uint64        `json:"base_price"`
}

// AllowlistConfig gates purchases on a Merkle membership proof and caps each
// address at PerAddressLimit mints.
type AllowlistConfig struct {
	MerkleRoot      merkle.Hash `json:"merkle_root"`
	PerAddressLimit uint64      `json:"per_address_limit"`
	Price           uint64      `json:"price"`
}

// HolderGateConfig gates purchases on ownership of a qualifying token. The
// quota is tracked per (contract, tokenID) pair, so transferring the token
// does not reset it.
type HolderGateConfig struct {
	TokenContract domain.Address `json:"token_contract"`
	PerTokenLimit uint64         `json:"per_token_limit"`
	Price         uint64         `json:"price"`
}

// AuctionConfig runs an English auction over [StartTime, EndTime); the slot
// clears at the final high bid.
type AuctionConfig struct {
	StartTime          time.Time  `json:"start_time"`
	EndTime            time.Time  `json:"end_time"`
	MinBidIncrementBps domain.Bps `json:"min_bid_increment_bps"`
}

// Validate rejects malformed configurations synchronously. Pricing state is
// immutable once a sale is recorded, so this is the only place these checks
// run.
func (c *PricingConfig) Validate() error {
	if !c.Kind.Valid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown policy kind %q", c.Kind)
	}
	if err := c.checkExclusive(); err != nil {
		return err
	}
	switch c.Kind {
	case PolicyFixedPrice:
		return validPrice(c.Fixed.Price)
	case PolicyLinearDecay:
		return c.LinearDecay.validate()
	case PolicyExpDecay:
		return c.ExpDecay.validate()
	case PolicyAllowlist:
		return c.Allowlist.validate()
	case PolicyHolderGate:
		return c.HolderGate.validate()
	case PolicySequentialAuction:
		return c.Auction.validate()
	}
	return dErrors.Newf(dErrors.CodeBadRequest, "unknown policy kind %q", c.Kind)
}

// checkExclusive enforces that exactly the variant named by Kind is set.
func (c *PricingConfig) checkExclusive() error {
	variants := map[PolicyKind]bool{
		PolicyFixedPrice:        c.Fixed != nil,
		PolicyLinearDecay:       c.LinearDecay != nil,
		PolicyExpDecay:          c.ExpDecay != nil,
		PolicyAllowlist:         c.Allowlist != nil,
		PolicyHolderGate:        c.HolderGate != nil,
		PolicySequentialAuction: c.Auction != nil,
	}
	for kind, set := range variants {
		if kind == c.Kind && !set {
			return dErrors.Newf(dErrors.CodeBadRequest, "missing %s config", kind)
		}
		if kind != c.Kind && set {
			return dErrors.Newf(dErrors.CodeBadRequest, "config for %s set on %s policy", kind, c.Kind)
		}
	}
	return nil
}

func (c *LinearDecayConfig) validate() error {
	if !c.EndTime.After(c.StartTime) {
		return dErrors.New(dErrors.CodeBadRequest, "auction window must have positive length")
	}
	if c.BasePrice > c.StartPrice {
		return dErrors.New(dErrors.CodeBadRequest, "base price exceeds start price")
	}
	return validPrice(c.StartPrice)
}

func (c *ExpDecayConfig) validate() error {
	if c.HalfLife <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "half life must be positive")
	}
	if c.BasePrice > c.StartPrice {
		return dErrors.New(dErrors.CodeBadRequest, "base price exceeds start price")
	}
	return validPrice(c.StartPrice)
}

func (c *AllowlistConfig) validate() error {
	if c.MerkleRoot.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "merkle root is required")
	}
	if c.PerAddressLimit == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "per-address limit must be positive")
	}
	return validPrice(c.Price)
}

func (c *HolderGateConfig) validate() error {
	if c.TokenContract.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "qualifying token contract is required")
	}
	if c.PerTokenLimit == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "per-token limit must be positive")
	}
	return validPrice(c.Price)
}

func (c *AuctionConfig) validate() error {
	if !c.EndTime.After(c.StartTime) {
		return dErrors.New(dErrors.CodeBadRequest, "auction window must have positive length")
	}
	if !c.MinBidIncrementBps.Valid() {
		return dErrors.New(dErrors.CodeBadRequest, "bid increment exceeds 10000 bps")
	}
	return nil
}

func validPrice(price uint64) error {
	if price > domain.MaxAmount {
		return dErrors.New(dErrors.CodeBadRequest, "price exceeds maximum representable amount")
	}
	return nil
}
