package service

import (
	"context"
	"fmt"
	"time"

	"auction-service/internal/broker"
	"auction-service/internal/models"
	"auction-service/internal/redisclient"
	"auction-service/internal/store"
	"auction-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LifecycleService drives auctions through upcoming -> active -> closed
// and triggers settlement at closure.
type LifecycleService struct {
	store          *store.Store
	redis          *redisclient.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(
	store *store.Store,
	redis *redisclient.Client,
	eventPublisher *broker.EventPublisher,
) *LifecycleService {
	return &LifecycleService{
		store:          store,
		redis:          redis,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateAuctionRequest represents an admin creating an auction
type CreateAuctionRequest struct {
	AdminID   string    `json:"admin_id" binding:"required"`
	Name      string    `json:"name" binding:"required"`
	Location  string    `json:"location"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

// CreateAuction creates an auction in upcoming status
func (s *LifecycleService) CreateAuction(ctx context.Context, req *CreateAuctionRequest) (*models.Auction, error) {
	ctx, span := util.StartSpan(ctx, "LifecycleService.CreateAuction")
	defer span.End()

	auction := &models.Auction{
		AdminID:   req.AdminID,
		Name:      req.Name,
		Location:  req.Location,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if err := s.store.CreateAuction(ctx, auction); err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}

	s.logger.Info("Auction created",
		zap.String("auction_id", auction.ID),
		zap.String("name", auction.Name),
		zap.Time("start_date", auction.StartDate))
	return auction, nil
}

// AddLot assigns an artwork to an auction as its next lot
func (s *LifecycleService) AddLot(ctx context.Context, auctionID, artworkID string) (*models.Lot, error) {
	ctx, span := util.StartSpan(ctx, "LifecycleService.AddLot")
	defer span.End()

	lot, err := s.store.CreateLot(ctx, auctionID, artworkID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Lot created",
		zap.String("lot_id", lot.ID),
		zap.String("auction_id", auctionID),
		zap.Int("lot_number", lot.LotNumber))
	return lot, nil
}

// ActivateAuction explicitly transitions one auction to active. A
// no-op when the auction is already active.
func (s *LifecycleService) ActivateAuction(ctx context.Context, auctionID string) error {
	ctx, span := util.StartSpan(ctx, "LifecycleService.ActivateAuction")
	defer span.End()

	transitioned, err := s.store.TransitionAuctionStatus(ctx, auctionID,
		models.AuctionStatusUpcoming, models.AuctionStatusActive)
	if err != nil {
		return err
	}
	if !transitioned {
		auction, err := s.store.GetAuctionByID(ctx, auctionID)
		if err != nil {
			return err
		}
		if auction.Status == models.AuctionStatusActive {
			return nil
		}
		return fmt.Errorf("%w: cannot activate a %s auction",
			models.ErrInvalidState, auction.Status)
	}

	util.AuctionsActivatedTotal.Inc()
	s.publishActivated(ctx, auctionID)
	return nil
}

// ActivateDueAuctions flips every upcoming auction whose start time has
// passed. Idempotent; safe to invoke arbitrarily often from a scheduler
// or any caller.
func (s *LifecycleService) ActivateDueAuctions(ctx context.Context) (int, error) {
	ctx, span := util.StartSpan(ctx, "LifecycleService.ActivateDueAuctions")
	defer span.End()

	ids, err := s.store.ActivateDueAuctions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to activate due auctions: %w", err)
	}

	for _, id := range ids {
		util.AuctionsActivatedTotal.Inc()
		s.publishActivated(ctx, id)
	}

	if len(ids) > 0 {
		s.logger.Info("Auto-started auctions", zap.Int("count", len(ids)))
	}
	return len(ids), nil
}

// CloseAuction closes an auction and settles all of its lots in one
// store transaction. Duplicate closes are no-ops, so concurrent manual
// and automated triggers are harmless.
func (s *LifecycleService) CloseAuction(ctx context.Context, auctionID string) (*models.SettlementResult, error) {
	ctx, span := util.StartSpan(ctx, "LifecycleService.CloseAuction")
	defer span.End()

	start := time.Now()
	defer func() {
		util.SettlementLatency.Observe(time.Since(start).Seconds())
	}()

	result, err := s.store.CloseAuctionTx(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if result.AlreadyClosed {
		s.logger.Info("Auction already closed", zap.String("auction_id", auctionID))
		return result, nil
	}

	util.AuctionsClosedTotal.Inc()
	s.logger.Info("Auction closed",
		zap.String("auction_id", auctionID),
		zap.Int("lots_settled", len(result.Lots)),
		zap.Int("payments_created", result.PaymentsCreated))

	s.publishSettlement(ctx, result)
	return result, nil
}

// SettleLot re-runs settlement for a single lot of a closed auction.
// Identical net effect however many times it is called.
func (s *LifecycleService) SettleLot(ctx context.Context, lotID string) (*models.LotSettlement, error) {
	ctx, span := util.StartSpan(ctx, "LifecycleService.SettleLot")
	defer span.End()

	settlement, err := s.store.SettleLotTx(ctx, lotID)
	if err != nil {
		return nil, err
	}

	util.LotsSettledTotal.WithLabelValues(settlement.LotStatus).Inc()
	return settlement, nil
}

// GetAuction retrieves an auction with its lots and current high bids
func (s *LifecycleService) GetAuction(ctx context.Context, auctionID string) (*models.Auction, []models.LotDetail, error) {
	auction, err := s.store.GetAuctionByID(ctx, auctionID)
	if err != nil {
		return nil, nil, err
	}

	lots, err := s.store.GetLotsByAuctionID(ctx, auctionID)
	if err != nil {
		return nil, nil, err
	}
	return auction, lots, nil
}

// ListAuctions lists auctions with lot counts
func (s *LifecycleService) ListAuctions(ctx context.Context) ([]models.AuctionSummary, error) {
	return s.store.ListAuctions(ctx)
}

func (s *LifecycleService) publishActivated(ctx context.Context, auctionID string) {
	event := &models.AuctionActivatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeAuctionActivated,
			Timestamp: time.Now(),
		},
		AuctionID: auctionID,
	}
	if err := s.eventPublisher.PublishAuctionActivated(ctx, event); err != nil {
		s.logger.Error("Failed to publish AuctionActivated event", zap.Error(err))
	}
}

// publishSettlement fans out the per-lot and per-auction events after
// the closing transaction has committed.
func (s *LifecycleService) publishSettlement(ctx context.Context, result *models.SettlementResult) {
	for _, lot := range result.Lots {
		util.LotsSettledTotal.WithLabelValues(lot.LotStatus).Inc()

		if err := s.redis.ClearHighBid(ctx, lot.LotID); err != nil {
			s.logger.Warn("Failed to clear high bid cache",
				zap.String("lot_id", lot.LotID), zap.Error(err))
		}

		event := &models.LotSettledEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeLotSettled,
				Timestamp: time.Now(),
			},
			LotID:     lot.LotID,
			AuctionID: result.AuctionID,
			LotStatus: lot.LotStatus,
			WinnerID:  lot.WinnerID,
			Amount:    lot.Amount,
		}
		if err := s.eventPublisher.PublishLotSettled(ctx, event); err != nil {
			s.logger.Error("Failed to publish LotSettled event", zap.Error(err))
		}

		if lot.PaymentID != "" {
			util.PaymentsCreatedTotal.Inc()
			created := &models.PaymentCreatedEvent{
				BaseEvent: models.BaseEvent{
					EventID:   uuid.New().String(),
					EventType: models.EventTypePaymentCreated,
					Timestamp: time.Now(),
				},
				PaymentID: lot.PaymentID,
				LotID:     lot.LotID,
				BidderID:  lot.WinnerID,
				Amount:    lot.Amount,
			}
			if err := s.eventPublisher.PublishPaymentCreated(ctx, created); err != nil {
				s.logger.Error("Failed to publish PaymentCreated event", zap.Error(err))
			}
		}
	}

	closed := &models.AuctionClosedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeAuctionClosed,
			Timestamp: time.Now(),
		},
		AuctionID:       result.AuctionID,
		LotsSettled:     len(result.Lots),
		PaymentsCreated: result.PaymentsCreated,
	}
	if err := s.eventPublisher.PublishAuctionClosed(ctx, closed); err != nil {
		s.logger.Error("Failed to publish AuctionClosed event", zap.Error(err))
	}
}
