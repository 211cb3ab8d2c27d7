package service

import (
	"context"
	"fmt"

	"auction-service/internal/models"
	"auction-service/internal/store"
	"auction-service/internal/util"

	"go.uber.org/zap"
)

// PaymentService owns the pending -> completed half of a payment's
// life. Creation happens at settlement; this service only confirms.
type PaymentService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(store *store.Store) *PaymentService {
	return &PaymentService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// ConfirmPayment marks a pending payment completed. Confirming an
// already completed payment is a no-op.
func (ps *PaymentService) ConfirmPayment(ctx context.Context, paymentID string) error {
	ctx, span := util.StartSpan(ctx, "PaymentService.ConfirmPayment")
	defer span.End()

	completed, err := ps.store.CompletePayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if !completed {
		ps.logger.Info("Payment already completed", zap.String("payment_id", paymentID))
		return nil
	}

	util.PaymentsCompletedTotal.Inc()
	ps.logger.Info("Payment completed", zap.String("payment_id", paymentID))
	return nil
}

// HandlePaymentCompleted applies an external gateway confirmation
// event, with a processed-events guard so redelivered messages have no
// effect.
func (ps *PaymentService) HandlePaymentCompleted(ctx context.Context, event *models.PaymentCompletedEvent) error {
	ctx, span := util.StartSpan(ctx, "PaymentService.HandlePaymentCompleted")
	defer span.End()

	processed, err := ps.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		ps.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	if err := ps.ConfirmPayment(ctx, event.PaymentID); err != nil {
		return err
	}

	if err := ps.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		ps.logger.Error("Failed to mark event processed", zap.Error(err))
	}
	return nil
}

// GetPayment retrieves a payment by ID
func (ps *PaymentService) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	return ps.store.GetPaymentByID(ctx, paymentID)
}

// GetWinnings retrieves the payments owed by a bidder
func (ps *PaymentService) GetWinnings(ctx context.Context, bidderID string) ([]models.Payment, error) {
	return ps.store.GetPaymentsByBidderID(ctx, bidderID)
}
