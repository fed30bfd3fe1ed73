package policy

import (
	"math/bits"
	"time"

	"mintgate/internal/minter/models"
	dErrors "mintgate/pkg/domain-errors"
)

// Quote returns the current price for a policy at the given instant. The
// caller reads the clock exactly once per request and passes it in, so one
// request observes one price.
//
// Sequential auctions have no posted price; their clearing price is
// bid-driven and the dispatcher quotes them from auction state.
func Quote(cfg *models.PricingConfig, now time.Time) (uint64, error) {
	switch cfg.Kind {
	case models.PolicyFixedPrice:
		return cfg.Fixed.Price, nil
	case models.PolicyLinearDecay:
		return linearDecayPrice(cfg.LinearDecay, now)
	case models.PolicyExpDecay:
		return expDecayPrice(cfg.ExpDecay, now)
	case models.PolicyAllowlist:
		return cfg.Allowlist.Price, nil
	case models.PolicyHolderGate:
		return cfg.HolderGate.Price, nil
	case models.PolicySequentialAuction:
		return 0, dErrors.New(dErrors.CodeConflict, "sequential auction price is bid-driven")
	}
	return 0, dErrors.Newf(dErrors.CodeInternal, "unhandled policy kind %q", cfg.Kind)
}

// linearDecayPrice interpolates linearly between StartPrice and BasePrice.
// Integer division truncates toward the floor, so the curve is monotonic
// non-increasing and never dips below BasePrice.
func linearDecayPrice(cfg *models.LinearDecayConfig, now time.Time) (uint64, error) {
	if now.Before(cfg.StartTime) {
		return 0, dErrors.New(dErrors.CodeAuctionNotStarted, "auction has not started")
	}
	if !now.Before(cfg.EndTime) {
		return cfg.BasePrice, nil
	}
	elapsed := uint64(now.Sub(cfg.StartTime))
	window := uint64(cfg.EndTime.Sub(cfg.StartTime))
	drop := cfg.StartPrice - cfg.BasePrice
	return cfg.StartPrice - mulDiv(drop, elapsed, window), nil
}

// expDecayPrice halves the start price once per elapsed half-life, floored
// at BasePrice.
func expDecayPrice(cfg *models.ExpDecayConfig, now time.Time) (uint64, error) {
	if now.Before(cfg.StartTime) {
		return 0, dErrors.New(dErrors.CodeAuctionNotStarted, "auction has not started")
	}
	halvings := uint64(now.Sub(cfg.StartTime) / cfg.HalfLife)
	if halvings >= 64 {
		return cfg.BasePrice, nil
	}
	price := cfg.StartPrice >> halvings
	if price < cfg.BasePrice {
		return cfg.BasePrice, nil
	}
	return price, nil
}

// mulDiv computes a*b/c through a 128-bit intermediate so nanosecond-scale
// windows cannot overflow. Requires b <= c, which keeps the quotient within
// uint64.
func mulDiv(a, b, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	quo, _ := bits.Div64(hi, lo, c)
	return quo
}
