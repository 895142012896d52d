package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	// TopicReservationEvents carries events published by this service.
	TopicReservationEvents = "reservation.events"
	// TopicSettlementEvents carries events from the on-chain settlement
	// listener (RentalPayments escrow contract).
	TopicSettlementEvents = "settlement.events"
)

// Event types published by this service.
const (
	ReservationCreated   = "reservation.created"
	ReservationConfirmed = "reservation.confirmed"
	ReservationCancelled = "reservation.cancelled"
	DisputeOpened        = "reservation.dispute_opened"
	DisputeResolved      = "reservation.dispute_resolved"
	RefundRequested      = "reservation.refund_requested"
)

// Event types consumed from the settlement topic.
const (
	SettlementPaymentInitiated = "settlement.payment_initiated"
	SettlementPaymentFailed    = "settlement.payment_failed"
	SettlementBookingCancelled = "settlement.booking_cancelled"
	SettlementRefundSettled    = "settlement.refund_settled"
	SettlementDisputeResolved  = "settlement.dispute_resolved"
)

// ReservationCreatedEvent is published when a guest books a listing.
type ReservationCreatedEvent struct {
	ReservationID     uuid.UUID `json:"reservation_id"`
	ReservationNumber string    `json:"reservation_number"`
	GuestID           uuid.UUID `json:"guest_id"`
	HostID            uuid.UUID `json:"host_id"`
	ListingID         uuid.UUID `json:"listing_id"`
	CheckIn           time.Time `json:"check_in"`
	CheckOut          time.Time `json:"check_out"`
	TotalAmount       int64     `json:"total_amount"`
	Currency          string    `json:"currency"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// ReservationConfirmedEvent is published when a reservation reaches ORDER_COMPLETED.
type ReservationConfirmedEvent struct {
	ReservationID     uuid.UUID `json:"reservation_id"`
	ReservationNumber string    `json:"reservation_number"`
	GuestID           uuid.UUID `json:"guest_id"`
	HostID            uuid.UUID `json:"host_id"`
	OnChainBookingID  string    `json:"on_chain_booking_id"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// ReservationCancelledEvent is published when a reservation is cancelled.
type ReservationCancelledEvent struct {
	ReservationID     uuid.UUID `json:"reservation_id"`
	ReservationNumber string    `json:"reservation_number"`
	CancelledBy       uuid.UUID `json:"cancelled_by"`
	Role              string    `json:"role"`
	Reason            string    `json:"reason"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// DisputeOpenedEvent is published when a guest raises a dispute.
type DisputeOpenedEvent struct {
	DisputeID     uuid.UUID `json:"dispute_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	RaisedBy      uuid.UUID `json:"raised_by"`
	Reason        string    `json:"reason"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// DisputeResolvedEvent is published when a mediator resolves a dispute.
type DisputeResolvedEvent struct {
	DisputeID     uuid.UUID `json:"dispute_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	Outcome       string    `json:"outcome"`
	Resolution    string    `json:"resolution"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// RefundRequestedEvent asks the settlement layer to refund escrowed funds.
type RefundRequestedEvent struct {
	ReservationID    uuid.UUID `json:"reservation_id"`
	OnChainBookingID string    `json:"on_chain_booking_id"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// PaymentInitiatedEvent mirrors the escrow contract's PaymentInitiated log.
// The on-chain booking identifier is recovered from the transaction receipt
// by the settlement listener.
type PaymentInitiatedEvent struct {
	ReservationID    uuid.UUID `json:"reservation_id"`
	OnChainBookingID string    `json:"on_chain_booking_id"`
	TxHash           string    `json:"tx_hash"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	Partial          bool      `json:"partial"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// PaymentFailedEvent signals a reverted or abandoned escrow payment.
type PaymentFailedEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	TxHash        string    `json:"tx_hash"`
	Reason        string    `json:"reason"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingCancelledEvent mirrors an on-chain cancelBooking settlement.
type BookingCancelledEvent struct {
	ReservationID    uuid.UUID `json:"reservation_id"`
	OnChainBookingID string    `json:"on_chain_booking_id"`
	CancelledBy      uuid.UUID `json:"cancelled_by"`
	Reason           string    `json:"reason"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// RefundSettledEvent reports the outcome of an on-chain refund.
type RefundSettledEvent struct {
	ReservationID    uuid.UUID `json:"reservation_id"`
	OnChainBookingID string    `json:"on_chain_booking_id"`
	Succeeded        bool      `json:"succeeded"`
	TxHash           string    `json:"tx_hash"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// SettlementDisputeResolvedEvent mirrors an on-chain resolveDispute settlement.
type SettlementDisputeResolvedEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	DisputeID     uuid.UUID `json:"dispute_id"`
	Outcome       string    `json:"outcome"`
	TxHash        string    `json:"tx_hash"`
	OccurredAt    time.Time `json:"occurred_at"`
}
