package store

import (
	"context"
	"database/sql"

	"auction-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GetCurrentHighestBid returns the highest committed bid amount for a
// lot. The second return is false when the lot has no bids yet. This is
// a display read; write decisions never go through it.
func (s *Store) GetCurrentHighestBid(ctx context.Context, lotID string) (decimal.Decimal, bool, error) {
	var amount decimal.NullDecimal
	err := s.db.GetContext(ctx, &amount,
		"SELECT MAX(amount) FROM bids WHERE lot_id = $1", lotID)
	if err != nil {
		return decimal.Zero, false, mapError(err)
	}
	if !amount.Valid {
		return decimal.Zero, false, nil
	}
	return amount.Decimal, true, nil
}

// InsertBidIfHigher commits a bid if and only if its amount strictly
// exceeds every previously accepted bid for the lot. The lot row is
// locked FOR UPDATE for the duration of the transaction, so the
// current-max read, the comparison and the insert are one atomic unit:
// of two concurrent equal bids exactly one can win, the other re-reads
// a max it no longer beats. The store, not the caller, arbitrates the
// race.
func (s *Store) InsertBidIfHigher(ctx context.Context, lotID, bidderID string, amount decimal.Decimal) (*models.Bid, error) {
	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer rollback()

	var lot struct {
		Status        string `db:"status"`
		AuctionStatus string `db:"auction_status"`
	}
	err = tx.GetContext(ctx, &lot, `
		SELECT l.status, a.status AS auction_status
		FROM lots l
		JOIN auctions a ON a.id = l.auction_id
		WHERE l.id = $1
		FOR UPDATE OF l`, lotID)
	if err == sql.ErrNoRows {
		return nil, models.ErrLotNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}

	if lot.Status != models.LotStatusActive {
		return nil, models.ErrLotNotActive
	}
	if lot.AuctionStatus != models.AuctionStatusActive {
		return nil, models.ErrAuctionNotActive
	}

	var current decimal.NullDecimal
	if err := tx.GetContext(ctx, &current,
		"SELECT MAX(amount) FROM bids WHERE lot_id = $1", lotID); err != nil {
		return nil, mapError(err)
	}
	if current.Valid && amount.LessThanOrEqual(current.Decimal) {
		return nil, models.ErrBidTooLow
	}

	bid := &models.Bid{
		ID:       uuid.New().String(),
		LotID:    lotID,
		BidderID: bidderID,
		Amount:   amount,
	}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO bids (id, lot_id, bidder_id, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING bid_time`,
		bid.ID, bid.LotID, bid.BidderID, bid.Amount).
		Scan(&bid.BidTime)
	if err != nil {
		return nil, mapError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapError(err)
	}
	return bid, nil
}

// GetBidsByLotID retrieves the bid history of a lot, newest first
func (s *Store) GetBidsByLotID(ctx context.Context, lotID string) ([]models.Bid, error) {
	var bids []models.Bid
	err := s.db.SelectContext(ctx, &bids,
		"SELECT * FROM bids WHERE lot_id = $1 ORDER BY bid_time DESC", lotID)
	return bids, mapError(err)
}

// GetBidsByBidderID retrieves a bidder's history across lots
func (s *Store) GetBidsByBidderID(ctx context.Context, bidderID string) ([]models.Bid, error) {
	var bids []models.Bid
	err := s.db.SelectContext(ctx, &bids,
		"SELECT * FROM bids WHERE bidder_id = $1 ORDER BY bid_time DESC", bidderID)
	return bids, mapError(err)
}
