package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ReservationApplier applies settlement outcomes to reservations.
type ReservationApplier interface {
	ApplyPaymentInitiated(ctx context.Context, evt PaymentInitiatedEvent) error
	ConfirmReservation(ctx context.Context, reservationID uuid.UUID) error
	ApplyPaymentFailed(ctx context.Context, evt PaymentFailedEvent) error
	ApplyOnChainCancellation(ctx context.Context, evt BookingCancelledEvent) error
	ApplyRefundSettled(ctx context.Context, evt RefundSettledEvent) error
}

// DisputeApplier applies on-chain dispute resolutions.
type DisputeApplier interface {
	ApplySettlementResolution(ctx context.Context, evt SettlementDisputeResolvedEvent) error
}

// SettlementConsumer drives the reservation lifecycle from events emitted by
// the on-chain settlement listener.
type SettlementConsumer struct {
	consumer     *Consumer
	reservations ReservationApplier
	disputes     DisputeApplier
	logger       *zap.Logger
}

// NewSettlementConsumer creates a settlement event consumer.
func NewSettlementConsumer(
	brokers []string,
	groupID string,
	reservations ReservationApplier,
	disputes DisputeApplier,
	logger *zap.Logger,
) *SettlementConsumer {
	return &SettlementConsumer{
		consumer:     NewConsumer(brokers, groupID, TopicSettlementEvents, logger),
		reservations: reservations,
		disputes:     disputes,
		logger:       logger,
	}
}

// Start consumes settlement events until the context is cancelled.
func (c *SettlementConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying consumer.
func (c *SettlementConsumer) Close() error {
	return c.consumer.Close()
}

// handleMessage dispatches one settlement event. Malformed messages are
// logged and skipped so they do not wedge the partition; handler errors are
// returned so the consumer retries the message instead of advancing past it.
func (c *SettlementConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var event CloudEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Warn("skipping malformed settlement message",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return nil
	}

	c.logger.Info("processing settlement event",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
	)

	switch event.Type {
	case SettlementPaymentInitiated:
		var evt PaymentInitiatedEvent
		if err := event.ParseData(&evt); err != nil {
			c.logger.Warn("skipping unparseable payment event", zap.String("event_id", event.ID), zap.Error(err))
			return nil
		}
		if err := c.reservations.ApplyPaymentInitiated(ctx, evt); err != nil {
			return err
		}
		if !evt.Partial {
			return c.reservations.ConfirmReservation(ctx, evt.ReservationID)
		}
		return nil

	case SettlementPaymentFailed:
		var evt PaymentFailedEvent
		if err := event.ParseData(&evt); err != nil {
			c.logger.Warn("skipping unparseable payment event", zap.String("event_id", event.ID), zap.Error(err))
			return nil
		}
		return c.reservations.ApplyPaymentFailed(ctx, evt)

	case SettlementBookingCancelled:
		var evt BookingCancelledEvent
		if err := event.ParseData(&evt); err != nil {
			c.logger.Warn("skipping unparseable cancellation event", zap.String("event_id", event.ID), zap.Error(err))
			return nil
		}
		return c.reservations.ApplyOnChainCancellation(ctx, evt)

	case SettlementRefundSettled:
		var evt RefundSettledEvent
		if err := event.ParseData(&evt); err != nil {
			c.logger.Warn("skipping unparseable refund event", zap.String("event_id", event.ID), zap.Error(err))
			return nil
		}
		return c.reservations.ApplyRefundSettled(ctx, evt)

	case SettlementDisputeResolved:
		var evt SettlementDisputeResolvedEvent
		if err := event.ParseData(&evt); err != nil {
			c.logger.Warn("skipping unparseable dispute event", zap.String("event_id", event.ID), zap.Error(err))
			return nil
		}
		return c.disputes.ApplySettlementResolution(ctx, evt)

	default:
		c.logger.Debug("ignoring unknown settlement event type", zap.String("event_type", event.Type))
		return nil
	}
}
