package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BidsAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bids_accepted_total",
		Help: "Total number of bids accepted",
	})

	BidsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bids_rejected_total",
		Help: "Total number of bids rejected",
	}, []string{"reason"})

	BidPlacementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bid_placement_latency_seconds",
		Help:    "Latency of bid placement operations",
		Buckets: prometheus.DefBuckets,
	})

	AuctionsActivatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auctions_activated_total",
		Help: "Total number of auctions transitioned to active",
	})

	AuctionsClosedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auctions_closed_total",
		Help: "Total number of auctions closed and settled",
	})

	LotsSettledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lots_settled_total",
		Help: "Total number of lots settled",
	}, []string{"outcome"})

	SettlementLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "settlement_latency_seconds",
		Help:    "Latency of auction closure and settlement",
		Buckets: prometheus.DefBuckets,
	})

	PaymentsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_created_total",
		Help: "Total number of payment obligations created at settlement",
	})

	PaymentsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_completed_total",
		Help: "Total number of payments confirmed completed",
	})

	StoreConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_conflicts_total",
		Help: "Total number of transactions aborted under contention",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
