package models

import (
	"math/bits"
	"time"

	"mintgate/pkg/domain"
)

// AuctionPhase is the per-project state of a sequential auction.
// Transitions are monotonic: NotStarted → Open → Ended → Settled.
// Settled is terminal.
type AuctionPhase string

const (
	AuctionNotStarted AuctionPhase = "not_started"
	AuctionOpen       AuctionPhase = "open"
	AuctionEnded      AuctionPhase = "ended"
	AuctionSettled    AuctionPhase = "settled"
)

// AuctionState tracks the live high bid and the settlement outcome for a
// sequential-auction binding.
type AuctionState struct {
	ProjectID  domain.ProjectID `json:"project_id"`
	HighBid    uint64           `json:"high_bid"`
	HighBidder domain.Address   `json:"high_bidder"`
	BidCount   uint64           `json:"bid_count"`
	Settled    bool             `json:"settled"`
	Winner     domain.Address   `json:"winner,omitempty"`
	Clearing   uint64           `json:"clearing_price,omitempty"`
	TokenID    domain.TokenID   `json:"token_id,omitempty"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Phase derives the auction phase from config times and the settled flag.
// Once settled the phase stays settled regardless of clock input.
func (s *AuctionState) Phase(cfg *AuctionConfig, now time.Time) AuctionPhase {
	if s.Settled {
		return AuctionSettled
	}
	if now.Before(cfg.StartTime) {
		return AuctionNotStarted
	}
	if now.Before(cfg.EndTime) {
		return AuctionOpen
	}
	return AuctionEnded
}

// MinAcceptableBid returns the smallest bid the auction will take given the
// current high bid: high*(10000+incrementBps)/10000, truncating. A zero high
// bid accepts any positive amount.
func (s *AuctionState) MinAcceptableBid(cfg *AuctionConfig) uint64 {
	if s.HighBid == 0 {
		return 1
	}
	// High bids are capped at domain.MaxAmount, so the 128-bit product
	// divided by the denominator always fits back in 64 bits.
	hi, lo := bits.Mul64(s.HighBid, domain.BpsDenominator+uint64(cfg.MinBidIncrementBps))
	min, _ := bits.Div64(hi, lo, domain.BpsDenominator)
	if min <= s.HighBid {
		// Accepted bids strictly increase even at zero increment.
		min = s.HighBid + 1
	}
	return min
}
