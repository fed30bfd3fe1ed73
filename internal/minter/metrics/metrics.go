package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the minter's Prometheus metrics.
type Metrics struct {
	Purchases        *prometheus.CounterVec
	PurchasePrice    prometheus.Histogram
	Bids             prometheus.Counter
	BidRefunds       prometheus.Counter
	Finalizations    prometheus.Counter
	SoldOutRejects   prometheus.Counter
	EligibilityFails *prometheus.CounterVec
}

// New creates and registers all minter metrics.
func New() *Metrics {
	return &Metrics{
		Purchases: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_purchases_total",
			Help: "Successful purchases by policy kind",
		}, []string{"policy"}),
		PurchasePrice: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mintgate_purchase_price",
			Help:    "Clearing prices of successful purchases in base units",
			Buckets: prometheus.ExponentialBuckets(1, 10, 12),
		}),
		Bids: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_bids_total",
			Help: "Accepted auction bids",
		}),
		BidRefunds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_bid_refunds_total",
			Help: "Escrow refunds to outbid bidders",
		}),
		Finalizations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_auction_finalizations_total",
			Help: "Auction finalizations that settled a winner",
		}),
		SoldOutRejects: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mintgate_sold_out_rejections_total",
			Help: "Purchase attempts rejected because the cap was reached",
		}),
		EligibilityFails: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mintgate_eligibility_failures_total",
			Help: "Purchase attempts rejected by policy eligibility checks",
		}, []string{"code"}),
	}
}
