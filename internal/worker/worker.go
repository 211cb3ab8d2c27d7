package worker

import (
	"context"
	"log"
	"time"

	"auction-service/internal/broker"
	"auction-service/internal/service"
)

// SweepWorker periodically activates auctions whose start time has
// passed. The underlying operation is idempotent, so the interval is a
// freshness knob, not a correctness one.
type SweepWorker struct {
	lifecycle *service.LifecycleService
	interval  time.Duration
}

// NewSweepWorker creates a new sweep worker
func NewSweepWorker(lifecycle *service.LifecycleService, interval time.Duration) *SweepWorker {
	return &SweepWorker{
		lifecycle: lifecycle,
		interval:  interval,
	}
}

// Start runs the sweep loop until the context is cancelled
func (w *SweepWorker) Start(ctx context.Context) error {
	log.Printf("Starting sweep worker, interval=%s", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sweep worker stopping...")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.lifecycle.ActivateDueAuctions(ctx); err != nil {
				log.Printf("Sweep failed: %v", err)
			}
		}
	}
}

// PaymentWorker consumes payment gateway events and confirms the
// matching payments.
type PaymentWorker struct {
	consumer       *broker.Consumer
	eventHandler   *broker.EventHandler
	paymentService *service.PaymentService
}

// NewPaymentWorker creates a new payment worker
func NewPaymentWorker(
	consumer *broker.Consumer,
	paymentService *service.PaymentService,
) *PaymentWorker {
	eventHandler := broker.NewEventHandler()
	eventHandler.OnPaymentCompleted(paymentService.HandlePaymentCompleted)

	return &PaymentWorker{
		consumer:       consumer,
		eventHandler:   eventHandler,
		paymentService: paymentService,
	}
}

// Start starts the payment worker
func (pw *PaymentWorker) Start(ctx context.Context) error {
	log.Println("Starting payment worker...")
	return pw.consumer.StartConsuming(ctx, pw.eventHandler.HandleMessage)
}

// Stop stops the payment worker
func (pw *PaymentWorker) Stop() error {
	log.Println("Stopping payment worker...")
	return pw.consumer.Close()
}
