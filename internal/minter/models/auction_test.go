package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mintgate/pkg/domain"
)

func TestAuctionPhase(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := &AuctionConfig{StartTime: start, EndTime: start.Add(time.Hour)}
	state := &AuctionState{ProjectID: domain.NewProjectID()}

	require.Equal(t, AuctionNotStarted, state.Phase(cfg, start.Add(-time.Second)))
	require.Equal(t, AuctionOpen, state.Phase(cfg, start))
	require.Equal(t, AuctionOpen, state.Phase(cfg, start.Add(time.Hour-time.Nanosecond)))
	require.Equal(t, AuctionEnded, state.Phase(cfg, start.Add(time.Hour)))

	state.Settled = true
	// Settled is terminal regardless of clock input.
	require.Equal(t, AuctionSettled, state.Phase(cfg, start.Add(-time.Second)))
	require.Equal(t, AuctionSettled, state.Phase(cfg, start.Add(2*time.Hour)))
}

func TestMinAcceptableBid(t *testing.T) {
	cases := []struct {
		name         string
		highBid      uint64
		incrementBps domain.Bps
		want         uint64
	}{
		{"no bids accepts any positive amount", 0, 500, 1},
		{"five percent increment", 1000, 500, 1050},
		{"truncating increment", 999, 500, 1048},
		{"zero increment still strictly increases", 1000, 0, 1001},
		{"tiny bid with tiny increment still strictly increases", 3, 500, 4},
		{"large bid does not wrap the increment product", 922337203685478, 10000, 1844674407370956},
		{"max representable bid keeps the full increment", domain.MaxAmount, 500, 1936908127739502},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := &AuctionState{HighBid: tc.highBid}
			cfg := &AuctionConfig{MinBidIncrementBps: tc.incrementBps}
			require.Equal(t, tc.want, state.MinAcceptableBid(cfg))
		})
	}
}
