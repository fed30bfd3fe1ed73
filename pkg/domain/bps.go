package domain

import "math"

// BpsDenominator is the basis-point scale: 10000 bps == 100%.
const BpsDenominator = 10_000

// MaxAmount bounds prices and bids so basis-point arithmetic cannot overflow
// uint64. Enforced at configuration time, not at sale time.
const MaxAmount = math.MaxUint64 / BpsDenominator

// Bps is a share or increment expressed in basis points.
type Bps uint64

// ApplyTo returns amount*b/10000 with truncating integer division.
// Callers that need exact conservation must route the truncation remainder
// explicitly; see the settlement distributor.
func (b Bps) ApplyTo(amount uint64) uint64 {
	return amount * uint64(b) / BpsDenominator
}

// Valid reports whether the share is at most 100%.
func (b Bps) Valid() bool {
	return b <= BpsDenominator
}
