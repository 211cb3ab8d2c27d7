package store

import (
	"context"
	"database/sql"
	"fmt"

	"auction-service/internal/models"

	"github.com/google/uuid"
)

// legalTransitions is the auction state machine: forward only, no
// skipping. Everything not listed here is rejected.
var legalTransitions = map[string]string{
	models.AuctionStatusUpcoming: models.AuctionStatusActive,
	models.AuctionStatusActive:   models.AuctionStatusClosed,
}

// TransitionIsLegal reports whether from -> to is a permitted auction
// status transition.
func TransitionIsLegal(from, to string) bool {
	return legalTransitions[from] == to
}

// CreateAuction creates a new auction in upcoming status
func (s *Store) CreateAuction(ctx context.Context, auction *models.Auction) error {
	if auction.EndDate.Before(auction.StartDate) {
		return fmt.Errorf("%w: end_date precedes start_date", models.ErrInvalidState)
	}
	if auction.ID == "" {
		auction.ID = uuid.New().String()
	}
	auction.Status = models.AuctionStatusUpcoming

	query := `
		INSERT INTO auctions (id, admin_id, name, location, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		auction.ID, auction.AdminID, auction.Name, auction.Location,
		auction.Status, auction.StartDate, auction.EndDate).
		Scan(&auction.CreatedAt, &auction.UpdatedAt)
	return mapError(err)
}

// GetAuctionByID retrieves an auction by ID
func (s *Store) GetAuctionByID(ctx context.Context, id string) (*models.Auction, error) {
	var auction models.Auction
	err := s.db.GetContext(ctx, &auction, "SELECT * FROM auctions WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, models.ErrAuctionNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	return &auction, nil
}

// ListAuctions retrieves all auctions with their lot counts
func (s *Store) ListAuctions(ctx context.Context) ([]models.AuctionSummary, error) {
	var auctions []models.AuctionSummary
	err := s.db.SelectContext(ctx, &auctions, `
		SELECT a.id, a.name, a.status, a.end_date, COUNT(l.id) AS lot_count
		FROM auctions a
		LEFT JOIN lots l ON l.auction_id = a.id
		GROUP BY a.id, a.name, a.status, a.end_date
		ORDER BY a.end_date ASC`)
	return auctions, mapError(err)
}

// TransitionAuctionStatus performs a guarded status update. The WHERE
// clause on the current status makes the transition atomic: of any
// number of concurrent callers, at most one observes rows affected.
// Returns false when the auction was not in the expected from status.
func (s *Store) TransitionAuctionStatus(ctx context.Context, auctionID, from, to string) (bool, error) {
	if !TransitionIsLegal(from, to) {
		return false, fmt.Errorf("%w: %s -> %s", models.ErrInvalidState, from, to)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE auctions SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		to, auctionID, from)
	if err != nil {
		return false, mapError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, mapError(err)
	}
	if n == 0 {
		// Distinguish a missing auction from a lost race.
		var exists bool
		if err := s.db.GetContext(ctx, &exists,
			"SELECT EXISTS(SELECT 1 FROM auctions WHERE id = $1)", auctionID); err != nil {
			return false, mapError(err)
		}
		if !exists {
			return false, models.ErrAuctionNotFound
		}
		return false, nil
	}
	return true, nil
}

// ActivateDueAuctions flips every upcoming auction whose start_date has
// passed to active. Idempotent: a second sweep finds nothing to do.
func (s *Store) ActivateDueAuctions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryxContext(ctx, `
		UPDATE auctions
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND start_date <= NOW()
		RETURNING id`,
		models.AuctionStatusActive, models.AuctionStatusUpcoming)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapError(err)
		}
		ids = append(ids, id)
	}
	return ids, mapError(rows.Err())
}

// CreateLot assigns an artwork to an auction as a new lot. The lot
// number comes from max(existing)+1 per auction; the auction row is
// locked FOR UPDATE so two concurrent assignments cannot allocate the
// same number.
func (s *Store) CreateLot(ctx context.Context, auctionID, artworkID string) (*models.Lot, error) {
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
	if status == models.AuctionStatusClosed {
		return nil, fmt.Errorf("%w: cannot add lots to a closed auction", models.ErrInvalidState)
	}

	lot := &models.Lot{
		ID:        uuid.New().String(),
		AuctionID: auctionID,
		ArtworkID: artworkID,
		Status:    models.LotStatusActive,
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO lots (id, auction_id, artwork_id, lot_number, status)
		VALUES ($1, $2, $3,
			(SELECT COALESCE(MAX(lot_number), 0) + 1 FROM lots WHERE auction_id = $2),
			$4)
		RETURNING lot_number, created_at`,
		lot.ID, auctionID, artworkID, lot.Status).
		Scan(&lot.LotNumber, &lot.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapError(err)
	}
	return lot, nil
}

// GetLotByID retrieves a lot by ID
func (s *Store) GetLotByID(ctx context.Context, id string) (*models.Lot, error) {
	var lot models.Lot
	err := s.db.GetContext(ctx, &lot, "SELECT * FROM lots WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, models.ErrLotNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	return &lot, nil
}

// GetLotsByAuctionID retrieves the lots of an auction in lot order,
// with bid counts and current highest bids.
func (s *Store) GetLotsByAuctionID(ctx context.Context, auctionID string) ([]models.LotDetail, error) {
	var lots []models.LotDetail
	err := s.db.SelectContext(ctx, &lots, `
		SELECT l.id, l.lot_number, l.status,
		       COUNT(b.id) AS bid_count,
		       COALESCE(MAX(b.amount), 0) AS highest_bid
		FROM lots l
		LEFT JOIN bids b ON b.lot_id = l.id
		WHERE l.auction_id = $1
		GROUP BY l.id, l.lot_number, l.status
		ORDER BY l.lot_number ASC`, auctionID)
	return lots, mapError(err)
}
