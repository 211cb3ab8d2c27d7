package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-service/internal/broker"
	"auction-service/internal/models"
	"auction-service/internal/redisclient"
	"auction-service/internal/store"
	"auction-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BidService is the gatekeeper for bid placement. Validation of the
// amount against the lot's current state happens inside the ledger's
// transaction; this layer only screens out malformed input and reports
// outcomes.
type BidService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewBidService creates a new bid service
func NewBidService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
) *BidService {
	return &BidService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// PlaceBidRequest represents a bid submission
type PlaceBidRequest struct {
	LotID    string          `json:"lot_id"`
	BidderID string          `json:"bidder_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

// PlaceBid validates and commits a single bid. Rejections are never
// retried here: a too-low bid needs the bidder to resubmit a higher
// amount.
func (s *BidService) PlaceBid(ctx context.Context, req *PlaceBidRequest) (*models.Bid, error) {
	ctx, span := util.StartSpan(ctx, "BidService.PlaceBid")
	defer span.End()

	start := time.Now()
	defer func() {
		util.BidPlacementLatency.Observe(time.Since(start).Seconds())
	}()

	if !req.Amount.IsPositive() {
		util.BidsRejectedTotal.WithLabelValues("invalid_amount").Inc()
		return nil, models.ErrInvalidAmount
	}

	bid, err := s.store.InsertBidIfHigher(ctx, req.LotID, req.BidderID, req.Amount)
	if err != nil {
		util.BidsRejectedTotal.WithLabelValues(rejectionReason(err)).Inc()
		if errors.Is(err, models.ErrConflict) {
			util.StoreConflictsTotal.Inc()
		}
		return nil, err
	}

	util.BidsAcceptedTotal.Inc()
	s.logger.Info("Bid accepted",
		zap.String("bid_id", bid.ID),
		zap.String("lot_id", bid.LotID),
		zap.String("bidder_id", bid.BidderID),
		zap.String("amount", bid.Amount.String()))

	// Display cache and event fan-out happen after commit; neither is
	// ever read back when deciding a later bid.
	if err := s.redis.SetHighBid(ctx, bid.LotID, bid.Amount); err != nil {
		s.logger.Warn("Failed to update high bid cache",
			zap.String("lot_id", bid.LotID), zap.Error(err))
	}

	event := &models.BidAcceptedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeBidAccepted,
			Timestamp: time.Now(),
		},
		BidID:    bid.ID,
		LotID:    bid.LotID,
		BidderID: bid.BidderID,
		Amount:   bid.Amount,
	}
	if err := s.eventPublisher.PublishBidAccepted(ctx, event); err != nil {
		s.logger.Error("Failed to publish BidAccepted event", zap.Error(err))
	}

	return bid, nil
}

// GetCurrentHighestBid returns the committed high bid for a lot,
// preferring the display cache and falling back to the ledger.
func (s *BidService) GetCurrentHighestBid(ctx context.Context, lotID string) (decimal.Decimal, bool, error) {
	if amount, ok, err := s.redis.GetHighBid(ctx, lotID); err == nil && ok {
		return amount, true, nil
	}

	amount, ok, err := s.store.GetCurrentHighestBid(ctx, lotID)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to read highest bid: %w", err)
	}
	return amount, ok, nil
}

// GetBidHistory retrieves a lot's bid history
func (s *BidService) GetBidHistory(ctx context.Context, lotID string) ([]models.Bid, error) {
	if _, err := s.store.GetLotByID(ctx, lotID); err != nil {
		return nil, err
	}
	return s.store.GetBidsByLotID(ctx, lotID)
}

// GetBidderHistory retrieves a bidder's bids across lots
func (s *BidService) GetBidderHistory(ctx context.Context, bidderID string) ([]models.Bid, error) {
	return s.store.GetBidsByBidderID(ctx, bidderID)
}

// rejectionReason maps a bid failure to its metrics label
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, models.ErrBidTooLow):
		return "too_low"
	case errors.Is(err, models.ErrLotNotFound):
		return "lot_not_found"
	case errors.Is(err, models.ErrLotNotActive):
		return "lot_not_active"
	case errors.Is(err, models.ErrAuctionNotActive):
		return "auction_not_active"
	case errors.Is(err, models.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, models.ErrConflict):
		return "conflict"
	case errors.Is(err, models.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
