package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeBidAccepted      = "BID_ACCEPTED"
	EventTypeAuctionActivated = "AUCTION_ACTIVATED"
	EventTypeAuctionClosed    = "AUCTION_CLOSED"
	EventTypeLotSettled       = "LOT_SETTLED"
	EventTypePaymentCreated   = "PAYMENT_CREATED"
	EventTypePaymentCompleted = "PAYMENT_COMPLETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// BidAcceptedEvent published when a bid becomes the new high bid
type BidAcceptedEvent struct {
	BaseEvent
	BidID    string          `json:"bid_id"`
	LotID    string          `json:"lot_id"`
	BidderID string          `json:"bidder_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// AuctionActivatedEvent published when an auction goes live
type AuctionActivatedEvent struct {
	BaseEvent
	AuctionID string `json:"auction_id"`
}

// AuctionClosedEvent published after closure and settlement commit
type AuctionClosedEvent struct {
	BaseEvent
	AuctionID       string `json:"auction_id"`
	LotsSettled     int    `json:"lots_settled"`
	PaymentsCreated int    `json:"payments_created"`
}

// LotSettledEvent published per lot once the closing transaction commits
type LotSettledEvent struct {
	BaseEvent
	LotID     string          `json:"lot_id"`
	AuctionID string          `json:"auction_id"`
	LotStatus string          `json:"lot_status"`
	WinnerID  string          `json:"winner_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}

// PaymentCreatedEvent published when settlement materializes an obligation
type PaymentCreatedEvent struct {
	BaseEvent
	PaymentID string          `json:"payment_id"`
	LotID     string          `json:"lot_id"`
	BidderID  string          `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// PaymentCompletedEvent consumed from the external payment gateway
type PaymentCompletedEvent struct {
	BaseEvent
	PaymentID string `json:"payment_id"`
	TxRef     string `json:"tx_ref,omitempty"`
}
