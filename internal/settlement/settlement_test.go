package settlement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"mintgate/pkg/domain"
	dErrors "mintgate/pkg/domain-errors"
)

func conserved(t *testing.T, price uint64, payouts []Payout) {
	t.Helper()
	var total uint64
	for _, p := range payouts {
		require.NotZero(t, p.Amount, "zero-amount leg should have been dropped")
		total += p.Amount
	}
	require.Equal(t, price, total, "payouts must sum to the cleared price exactly")
}

func TestDistributeExactConservation(t *testing.T) {
	projectID := domain.NewProjectID()
	cfg := &SplitConfig{
		ProjectID: projectID,
		Entries: []SplitEntry{
			{Recipient: "artist", ShareBps: 7000},
			{Recipient: "platform", ShareBps: 2500},
		},
		DefaultRecipient: "treasury",
	}
	require.NoError(t, cfg.Validate())

	// Prices chosen so bps truncation leaves a remainder.
	for _, price := range []uint64{1, 3, 99, 100, 101, 9999, 10_000, 123_456_789} {
		payouts := Distribute(price, cfg)
		conserved(t, price, payouts)
	}

	payouts := Distribute(10_000, cfg)
	require.Equal(t, []Payout{
		{Recipient: "artist", Amount: 7000},
		{Recipient: "platform", Amount: 2500},
		{Recipient: "treasury", Amount: 500},
	}, payouts)
}

func TestDistributeTruncationRemainderGoesToDefault(t *testing.T) {
	cfg := &SplitConfig{
		ProjectID: domain.NewProjectID(),
		Entries: []SplitEntry{
			{Recipient: "a", ShareBps: 3333},
			{Recipient: "b", ShareBps: 3333},
			{Recipient: "c", ShareBps: 3334},
		},
		DefaultRecipient: "treasury",
	}
	require.NoError(t, cfg.Validate())

	// 100 * 3333 / 10000 truncates to 33 per leg; 100-33-33-33=1 to treasury.
	payouts := Distribute(100, cfg)
	conserved(t, 100, payouts)
	require.Len(t, payouts, 4)
	require.Equal(t, Payout{Recipient: "treasury", Amount: 1}, payouts[3])
}

func TestDistributeZeroPrice(t *testing.T) {
	cfg := ArtistOnly(domain.NewProjectID(), "artist")
	require.Empty(t, Distribute(0, cfg))
}

func TestArtistOnly(t *testing.T) {
	cfg := ArtistOnly(domain.NewProjectID(), "artist")
	payouts := Distribute(500, cfg)
	require.Equal(t, []Payout{{Recipient: "artist", Amount: 500}}, payouts)
}

func TestSplitConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  SplitConfig
		ok   bool
	}{
		{"empty entries with default", SplitConfig{DefaultRecipient: "artist"}, true},
		{"full allocation", SplitConfig{
			Entries:          []SplitEntry{{Recipient: "a", ShareBps: 10_000}},
			DefaultRecipient: "artist",
		}, true},
		{"missing default recipient", SplitConfig{
			Entries: []SplitEntry{{Recipient: "a", ShareBps: 100}},
		}, false},
		{"zero address recipient", SplitConfig{
			Entries:          []SplitEntry{{Recipient: domain.ZeroAddress, ShareBps: 100}},
			DefaultRecipient: "artist",
		}, false},
		{"single share above 10000", SplitConfig{
			Entries:          []SplitEntry{{Recipient: "a", ShareBps: 10_001}},
			DefaultRecipient: "artist",
		}, false},
		{"shares sum above 10000", SplitConfig{
			Entries: []SplitEntry{
				{Recipient: "a", ShareBps: 6000},
				{Recipient: "b", ShareBps: 6000},
			},
			DefaultRecipient: "artist",
		}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest), "got %v", err)
			}
		})
	}
}

func TestLedgerRail(t *testing.T) {
	ctx := context.Background()
	rail := NewLedgerRail()

	require.NoError(t, rail.Credit(ctx, domain.CurrencyNative, "artist", 700))
	require.NoError(t, rail.Refund(ctx, domain.CurrencyNative, "buyer", 50))
	require.NoError(t, rail.Credit(ctx, domain.CurrencyNative, "artist", 0))

	entries := rail.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "credit", entries[0].Kind)
	require.Equal(t, "refund", entries[1].Kind)
	require.Equal(t, uint64(700), rail.TotalTo("artist"))
	require.Equal(t, uint64(50), rail.TotalTo("buyer"))
	require.Zero(t, rail.TotalTo("stranger"))
}
