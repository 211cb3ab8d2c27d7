package store

import (
	"context"
	"database/sql"
	"fmt"

	"auction-service/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// CloseAuctionTx closes an auction and settles every one of its lots
// inside a single transaction. A reader can never observe a closed
// auction with unsettled lots. Closing an already-closed auction is a
// duplicate-safe no-op; closing an upcoming auction is rejected.
func (s *Store) CloseAuctionTx(ctx context.Context, auctionID string) (*models.SettlementResult, error) {
	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer rollback()

	var status string
	err = tx.GetContext(ctx, &status,
		"SELECT status FROM auctions WHERE id = $1 FOR UPDATE", auctionID)
	if err == sql.ErrNoRows {
		return nil, models.ErrAuctionNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}

	result := &models.SettlementResult{AuctionID: auctionID}

	switch status {
	case models.AuctionStatusClosed:
		result.AlreadyClosed = true
		return result, nil
	case models.AuctionStatusUpcoming:
		return nil, fmt.Errorf("%w: auction has not started", models.ErrInvalidState)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE auctions SET status = $1, updated_at = NOW() WHERE id = $2",
		models.AuctionStatusClosed, auctionID)
	if err != nil {
		return nil, mapError(err)
	}

	var lotIDs []string
	err = tx.SelectContext(ctx, &lotIDs,
		"SELECT id FROM lots WHERE auction_id = $1 ORDER BY lot_number FOR UPDATE", auctionID)
	if err != nil {
		return nil, mapError(err)
	}

	for _, lotID := range lotIDs {
		settlement, created, err := settleLotLocked(ctx, tx, lotID)
		if err != nil {
			return nil, err
		}
		result.Lots = append(result.Lots, settlement)
		if created {
			result.PaymentsCreated++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// SettleLotTx settles a single lot on its own. Safe to call any number
// of times: settlement is create-if-absent. Only lots of a closed
// auction may be settled this way, so an in-flight bid can never be
// missed.
func (s *Store) SettleLotTx(ctx context.Context, lotID string) (*models.LotSettlement, error) {
	tx, rollback, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer rollback()

	var auctionStatus string
	err = tx.GetContext(ctx, &auctionStatus, `
		SELECT a.status FROM auctions a
		JOIN lots l ON l.auction_id = a.id
		WHERE l.id = $1
		FOR UPDATE OF l`, lotID)
	if err == sql.ErrNoRows {
		return nil, models.ErrLotNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	if auctionStatus != models.AuctionStatusClosed {
		return nil, fmt.Errorf("%w: auction is not closed", models.ErrInvalidState)
	}

	settlement, _, err := settleLotLocked(ctx, tx, lotID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, mapError(err)
	}
	return &settlement, nil
}

// settleLotLocked settles one lot inside the caller's transaction. The
// lot row must already be locked, so the bid set read here is final.
// The payment insert is guarded by the unique lot_id constraint so
// repeated settlement never duplicates it.
func settleLotLocked(ctx context.Context, tx *sqlx.Tx, lotID string) (models.LotSettlement, bool, error) {
	settlement := models.LotSettlement{LotID: lotID}

	var bids []models.Bid
	if err := tx.SelectContext(ctx, &bids,
		"SELECT * FROM bids WHERE lot_id = $1", lotID); err != nil {
		return settlement, false, mapError(err)
	}

	winner := PickWinner(bids)
	if winner == nil {
		if _, err := tx.ExecContext(ctx,
			"UPDATE lots SET status = $1 WHERE id = $2",
			models.LotStatusUnsold, lotID); err != nil {
			return settlement, false, mapError(err)
		}
		settlement.LotStatus = models.LotStatusUnsold
		return settlement, false, nil
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE lots SET status = $1 WHERE id = $2",
		models.LotStatusSold, lotID); err != nil {
		return settlement, false, mapError(err)
	}

	settlement.LotStatus = models.LotStatusSold
	settlement.WinnerID = winner.BidderID
	settlement.Amount = winner.Amount

	var paymentID string
	err := tx.QueryRowxContext(ctx, `
		INSERT INTO payments (id, lot_id, bidder_id, amount, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (lot_id) DO NOTHING
		RETURNING id`,
		uuid.New().String(), lotID, winner.BidderID, winner.Amount,
		models.PaymentStatusPending).
		Scan(&paymentID)

	if err == sql.ErrNoRows {
		// Payment already exists from an earlier settlement run.
		if err := tx.GetContext(ctx, &paymentID,
			"SELECT id FROM payments WHERE lot_id = $1", lotID); err != nil {
			return settlement, false, mapError(err)
		}
		settlement.PaymentID = paymentID
		return settlement, false, nil
	}
	if err != nil {
		return settlement, false, mapError(err)
	}

	settlement.PaymentID = paymentID
	return settlement, true, nil
}

// GetPaymentByID retrieves a payment by ID
func (s *Store) GetPaymentByID(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.GetContext(ctx, &payment, "SELECT * FROM payments WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, models.ErrPaymentNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	return &payment, nil
}

// GetPaymentByLotID retrieves the payment for a lot, if settlement
// created one.
func (s *Store) GetPaymentByLotID(ctx context.Context, lotID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.GetContext(ctx, &payment, "SELECT * FROM payments WHERE lot_id = $1", lotID)
	if err == sql.ErrNoRows {
		return nil, models.ErrPaymentNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	return &payment, nil
}

// GetPaymentsByBidderID retrieves a winner's payment obligations
func (s *Store) GetPaymentsByBidderID(ctx context.Context, bidderID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.SelectContext(ctx, &payments,
		"SELECT * FROM payments WHERE bidder_id = $1 ORDER BY created_at DESC", bidderID)
	return payments, mapError(err)
}

// CompletePayment transitions a payment from pending to completed and
// stamps the payment date, exactly once. Completing an already
// completed payment is a no-op; the bool reports whether this call did
// the transition.
func (s *Store) CompletePayment(ctx context.Context, paymentID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $1, payment_date = NOW(), updated_at = NOW()
		WHERE id = $2 AND status = $3`,
		models.PaymentStatusCompleted, paymentID, models.PaymentStatusPending)
	if err != nil {
		return false, mapError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, mapError(err)
	}
	if n == 0 {
		var exists bool
		if err := s.db.GetContext(ctx, &exists,
			"SELECT EXISTS(SELECT 1 FROM payments WHERE id = $1)", paymentID); err != nil {
			return false, mapError(err)
		}
		if !exists {
			return false, models.ErrPaymentNotFound
		}
		return false, nil
	}
	return true, nil
}
