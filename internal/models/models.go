package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Auction represents a timed auction grouping lots
type Auction struct {
	ID        string    `db:"id" json:"id"`
	AdminID   string    `db:"admin_id" json:"admin_id"`
	Name      string    `db:"name" json:"name"`
	Location  string    `db:"location" json:"location,omitempty"`
	Status    string    `db:"status" json:"status"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Lot represents a single auctionable unit within an auction
type Lot struct {
	ID        string    `db:"id" json:"id"`
	AuctionID string    `db:"auction_id" json:"auction_id"`
	LotNumber int       `db:"lot_number" json:"lot_number"`
	ArtworkID string    `db:"artwork_id" json:"artwork_id,omitempty"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Bid represents a committed bid on a lot. Bids are immutable:
// never updated or deleted once accepted.
type Bid struct {
	ID       string          `db:"id" json:"id"`
	LotID    string          `db:"lot_id" json:"lot_id"`
	BidderID string          `db:"bidder_id" json:"bidder_id"`
	Amount   decimal.Decimal `db:"amount" json:"amount"`
	BidTime  time.Time       `db:"bid_time" json:"bid_time"`
}

// Payment represents the payment obligation created for a sold lot
type Payment struct {
	ID          string          `db:"id" json:"id"`
	LotID       string          `db:"lot_id" json:"lot_id"`
	BidderID    string          `db:"bidder_id" json:"bidder_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Status      string          `db:"status" json:"status"`
	PaymentDate *time.Time      `db:"payment_date" json:"payment_date,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// Auction statuses
const (
	AuctionStatusUpcoming = "upcoming"
	AuctionStatusActive   = "active"
	AuctionStatusClosed   = "closed"
)

// Lot statuses
const (
	LotStatusActive = "active"
	LotStatusSold   = "sold"
	LotStatusUnsold = "unsold"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
)

// LotSettlement records the outcome of settling a single lot
type LotSettlement struct {
	LotID     string          `json:"lot_id"`
	LotStatus string          `json:"lot_status"`
	WinnerID  string          `json:"winner_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	PaymentID string          `json:"payment_id,omitempty"`
}

// SettlementResult summarizes the settlement of an entire auction
type SettlementResult struct {
	AuctionID       string          `json:"auction_id"`
	AlreadyClosed   bool            `json:"already_closed"`
	Lots            []LotSettlement `json:"lots"`
	PaymentsCreated int             `json:"payments_created"`
}

// AuctionSummary is the listing row for an auction with its lot count
type AuctionSummary struct {
	ID       string    `db:"id" json:"id"`
	Name     string    `db:"name" json:"name"`
	Status   string    `db:"status" json:"status"`
	EndDate  time.Time `db:"end_date" json:"end_date"`
	LotCount int       `db:"lot_count" json:"lot_count"`
}

// LotDetail is the auction-detail row for a lot with its current high bid
type LotDetail struct {
	ID         string          `db:"id" json:"id"`
	LotNumber  int             `db:"lot_number" json:"lot_number"`
	Status     string          `db:"status" json:"status"`
	BidCount   int             `db:"bid_count" json:"bid_count"`
	HighestBid decimal.Decimal `db:"highest_bid" json:"highest_bid"`
}

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
