package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mintgate/internal/minter/models"
	dErrors "mintgate/pkg/domain-errors"
)

var quoteStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestQuoteFixedPrice(t *testing.T) {
	cfg := &models.PricingConfig{
		Kind:  models.PolicyFixedPrice,
		Fixed: &models.FixedConfig{Price: 1000},
	}
	price, err := Quote(cfg, quoteStart)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), price)
}

func TestQuoteLinearDecay(t *testing.T) {
	cfg := &models.PricingConfig{
		Kind: models.PolicyLinearDecay,
		LinearDecay: &models.LinearDecayConfig{
			StartTime:  quoteStart,
			EndTime:    quoteStart.Add(200 * time.Second),
			StartPrice: 1000,
			BasePrice:  100,
		},
	}

	cases := []struct {
		name   string
		offset time.Duration
		want   uint64
	}{
		{"at start", 0, 1000},
		{"quarter through", 50 * time.Second, 775},
		{"three quarters through", 150 * time.Second, 325},
		{"at end", 200 * time.Second, 100},
		{"after end", 500 * time.Second, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			price, err := Quote(cfg, quoteStart.Add(tc.offset))
			require.NoError(t, err)
			require.Equal(t, tc.want, price)
		})
	}

	t.Run("before start rejects", func(t *testing.T) {
		_, err := Quote(cfg, quoteStart.Add(-time.Second))
		require.True(t, dErrors.HasCode(err, dErrors.CodeAuctionNotStarted))
	})
}

func TestLinearDecayShortWindow(t *testing.T) {
	cfg := &models.LinearDecayConfig{
		StartTime:  quoteStart,
		EndTime:    quoteStart.Add(100 * time.Second),
		StartPrice: 1000,
		BasePrice:  100,
	}

	price, err := linearDecayPrice(cfg, quoteStart.Add(50*time.Second))
	require.NoError(t, err)
	require.Equal(t, uint64(550), price)

	price, err = linearDecayPrice(cfg, quoteStart.Add(150*time.Second))
	require.NoError(t, err)
	require.Equal(t, uint64(100), price)
}

func TestLinearDecayMonotonicNonIncreasing(t *testing.T) {
	cfg := &models.LinearDecayConfig{
		StartTime:  quoteStart,
		EndTime:    quoteStart.Add(time.Hour),
		StartPrice: 999_999_937,
		BasePrice:  7,
	}

	prev := cfg.StartPrice
	for offset := time.Duration(0); offset <= time.Hour; offset += 13 * time.Second {
		price, err := linearDecayPrice(cfg, quoteStart.Add(offset))
		require.NoError(t, err)
		require.LessOrEqual(t, price, prev, "price rose at offset %s", offset)
		require.GreaterOrEqual(t, price, cfg.BasePrice)
		prev = price
	}
}

func TestQuoteExpDecay(t *testing.T) {
	cfg := &models.PricingConfig{
		Kind: models.PolicyExpDecay,
		ExpDecay: &models.ExpDecayConfig{
			StartTime:  quoteStart,
			HalfLife:   time.Minute,
			StartPrice: 1600,
			BasePrice:  150,
		},
	}

	cases := []struct {
		name   string
		offset time.Duration
		want   uint64
	}{
		{"at start", 0, 1600},
		{"within first half life", 59 * time.Second, 1600},
		{"one half life", time.Minute, 800},
		{"two half lives", 2 * time.Minute, 400},
		{"three half lives", 3 * time.Minute, 200},
		{"floored at base", 4 * time.Minute, 150},
		{"long after start", 48 * time.Hour, 150},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			price, err := Quote(cfg, quoteStart.Add(tc.offset))
			require.NoError(t, err)
			require.Equal(t, tc.want, price)
		})
	}

	t.Run("before start rejects", func(t *testing.T) {
		_, err := Quote(cfg, quoteStart.Add(-time.Nanosecond))
		require.True(t, dErrors.HasCode(err, dErrors.CodeAuctionNotStarted))
	})

	t.Run("many halvings do not shift past 64 bits", func(t *testing.T) {
		far := quoteStart.Add(100 * 365 * 24 * time.Hour)
		price, err := expDecayPrice(cfg.ExpDecay, far)
		require.NoError(t, err)
		require.Equal(t, cfg.ExpDecay.BasePrice, price)
	})
}

func TestQuoteAllowlistAndHolderGatePostPrice(t *testing.T) {
	allowlist := &models.PricingConfig{
		Kind:      models.PolicyAllowlist,
		Allowlist: &models.AllowlistConfig{Price: 250},
	}
	price, err := Quote(allowlist, quoteStart)
	require.NoError(t, err)
	require.Equal(t, uint64(250), price)

	holder := &models.PricingConfig{
		Kind:       models.PolicyHolderGate,
		HolderGate: &models.HolderGateConfig{Price: 75},
	}
	price, err = Quote(holder, quoteStart)
	require.NoError(t, err)
	require.Equal(t, uint64(75), price)
}

func TestQuoteAuctionHasNoPostedPrice(t *testing.T) {
	cfg := &models.PricingConfig{
		Kind:    models.PolicySequentialAuction,
		Auction: &models.AuctionConfig{StartTime: quoteStart, EndTime: quoteStart.Add(time.Hour)},
	}
	_, err := Quote(cfg, quoteStart)
	require.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestMulDivNoOverflow(t *testing.T) {
	// Nanosecond-scale elapsed/window values overflow a naive a*b.
	window := uint64(30 * 24 * time.Hour)
	elapsed := window / 3
	drop := uint64(1_000_000_000_000)

	got := mulDiv(drop, elapsed, window)
	require.Equal(t, drop/3, got)
}
