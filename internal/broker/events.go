package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"auction-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishBidAccepted publishes BidAccepted event
func (ep *EventPublisher) PublishBidAccepted(ctx context.Context, event *models.BidAcceptedEvent) error {
	key := fmt.Sprintf("lot-%s", event.LotID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishAuctionActivated publishes AuctionActivated event
func (ep *EventPublisher) PublishAuctionActivated(ctx context.Context, event *models.AuctionActivatedEvent) error {
	key := fmt.Sprintf("auction-%s", event.AuctionID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishAuctionClosed publishes AuctionClosed event
func (ep *EventPublisher) PublishAuctionClosed(ctx context.Context, event *models.AuctionClosedEvent) error {
	key := fmt.Sprintf("auction-%s", event.AuctionID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishLotSettled publishes LotSettled event
func (ep *EventPublisher) PublishLotSettled(ctx context.Context, event *models.LotSettledEvent) error {
	key := fmt.Sprintf("lot-%s", event.LotID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPaymentCreated publishes PaymentCreated event
func (ep *EventPublisher) PublishPaymentCreated(ctx context.Context, event *models.PaymentCreatedEvent) error {
	key := fmt.Sprintf("lot-%s", event.LotID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes consumed events to registered handlers
type EventHandler struct {
	onPaymentCompleted func(context.Context, *models.PaymentCompletedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnPaymentCompleted registers a handler for PaymentCompleted events
func (eh *EventHandler) OnPaymentCompleted(handler func(context.Context, *models.PaymentCompletedEvent) error) {
	eh.onPaymentCompleted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypePaymentCompleted:
		if eh.onPaymentCompleted != nil {
			var event models.PaymentCompletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PaymentCompleted event: %w", err)
			}
			return eh.onPaymentCompleted(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
