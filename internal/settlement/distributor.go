package settlement

import (
	"mintgate/pkg/domain"
)

// Payout is one leg of a settled sale.
type Payout struct {
	Recipient domain.Address
	Amount    uint64
}

// Distribute converts a cleared price into payouts. Each entry receives
// price*shareBps/10000 with truncating division; the truncation remainder
// and any unallocated share go to the default recipient, so the payouts sum
// to price exactly — no value created or destroyed.
//
// Zero-amount legs are dropped. Assumes cfg passed Validate.
func Distribute(price uint64, cfg *SplitConfig) []Payout {
	payouts := make([]Payout, 0, len(cfg.Entries)+1)
	var allocated uint64
	for _, entry := range cfg.Entries {
		amount := entry.ShareBps.ApplyTo(price)
		allocated += amount
		if amount > 0 {
			payouts = append(payouts, Payout{Recipient: entry.Recipient, Amount: amount})
		}
	}
	if remainder := price - allocated; remainder > 0 {
		payouts = append(payouts, Payout{Recipient: cfg.DefaultRecipient, Amount: remainder})
	}
	return payouts
}

// ArtistOnly is the schedule used when a project has no explicit split
// config: the full price goes to the artist.
func ArtistOnly(projectID domain.ProjectID, artist domain.Address) *SplitConfig {
	return &SplitConfig{
		ProjectID:        projectID,
		DefaultRecipient: artist,
	}
}
