// Package settlement converts cleared sale prices into exact payouts. The
// distributor owns the arithmetic; rails own the transfer mechanism. Nothing
// here ever initiates a sale or reads pricing state.
package settlement

import (
	"time"

	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

// SplitEntry routes a basis-point share of every sale to one recipient.
type SplitEntry struct {
	Recipient domain.Address `json:"recipient"`
	ShareBps  domain.Bps     `json:"share_bps"`
}

// SplitConfig is the ordered payout schedule for a project.
//
// Invariants (checked at configuration time, never at sale time):
//   - no recipient is the zero address
//   - shares sum to at most 10000 bps
//   - DefaultRecipient is set; it absorbs the unallocated share and every
//     truncation remainder so no value is ever lost
type SplitConfig struct {
	ProjectID        domain.ProjectID `json:"project_id"`
	Entries          []SplitEntry     `json:"entries"`
	DefaultRecipient domain.Address   `json:"default_recipient"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Validate rejects misconfigured splits synchronously. A config that passes
// here can never fail at sale time.
func (c *SplitConfig) Validate() error {
	if c.DefaultRecipient.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "default recipient is required")
	}
	var total uint64
	for _, entry := range c.Entries {
		if entry.Recipient.IsZero() {
			return dErrors.New(dErrors.CodeBadRequest, "split recipient must not be the zero address")
		}
		if !entry.ShareBps.Valid() {
			return dErrors.New(dErrors.CodeBadRequest, "split share exceeds 10000 bps")
		}
		total += uint64(entry.ShareBps)
	}
	if total > domain.BpsDenominator {
		return dErrors.Newf(dErrors.CodeBadRequest, "split shares sum to %d bps, exceeding 10000", total)
	}
	return nil
}
