package reservation

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/ceavinrufus/stay-backend/internal/domain"
	"github.com/ceavinrufus/stay-backend/internal/domain/dispute"
	"github.com/google/uuid"
)

const reservationNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DisputeSummary is the reservation's view of its (at most one) dispute.
type DisputeSummary struct {
	ID     uuid.UUID      `json:"id"`
	Status dispute.Status `json:"status"`
}

// Reservation is the aggregate root for the reservation domain.
type Reservation struct {
	id                 uuid.UUID
	reservationNumber  string
	guestID            uuid.UUID
	hostID             uuid.UUID
	listingID          uuid.UUID
	status             Status
	checkIn            time.Time
	checkOut           time.Time
	guestCount         int
	nightlyAmount      int64
	totalAmount        int64
	currency           string
	cancellationPolicy CancellationPolicy
	noFreeCancellation bool
	onChainBookingID   string
	paymentTxHash      string
	dispute            *DisputeSummary
	cancelledBy        *uuid.UUID
	cancelReason       string
	cancelledAt        *time.Time
	version            int64
	createdAt          time.Time
	updatedAt          time.Time
}

// generateReservationNumber creates a reservation number in the format "RSV-XXXXXX".
func generateReservationNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(reservationNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate reservation number: %w", err)
		}
		result[i] = reservationNumberChars[n.Int64()]
	}
	return "RSV-" + string(result), nil
}

// NewReservation creates a new Reservation aggregate with status=ORDER_CREATED.
// The listing's cancellation terms are snapshotted and immutable per booking.
func NewReservation(
	guestID uuid.UUID,
	hostID uuid.UUID,
	listingID uuid.UUID,
	checkIn time.Time,
	checkOut time.Time,
	guestCount int,
	nightlyAmount int64,
	currency string,
	policy CancellationPolicy,
	noFreeCancellation bool,
) (*Reservation, error) {
	if guestID == uuid.Nil {
		return nil, domain.NewValidationError("guest ID is required")
	}
	if hostID == uuid.Nil {
		return nil, domain.NewValidationError("host ID is required")
	}
	if listingID == uuid.Nil {
		return nil, domain.NewValidationError("listing ID is required")
	}
	if !checkIn.Before(checkOut) {
		return nil, domain.NewValidationError("check-in must be before check-out")
	}
	if guestCount < 1 {
		return nil, domain.NewValidationError("guest count must be positive")
	}
	if nightlyAmount <= 0 {
		return nil, domain.NewValidationError("nightly amount must be positive")
	}
	if currency == "" {
		return nil, domain.NewValidationError("currency is required")
	}

	number, err := generateReservationNumber()
	if err != nil {
		return nil, err
	}

	nights := int64(checkOut.Sub(checkIn).Hours() / 24)
	if nights < 1 {
		nights = 1
	}

	now := time.Now().UTC()
	return &Reservation{
		id:                 uuid.New(),
		reservationNumber:  number,
		guestID:            guestID,
		hostID:             hostID,
		listingID:          listingID,
		status:             StatusCreated,
		checkIn:            checkIn,
		checkOut:           checkOut,
		guestCount:         guestCount,
		nightlyAmount:      nightlyAmount,
		totalAmount:        nightlyAmount * nights,
		currency:           currency,
		cancellationPolicy: policy,
		noFreeCancellation: noFreeCancellation,
		version:            1,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// ReconstructReservation rebuilds a Reservation from persistence data (no validation).
func ReconstructReservation(
	id uuid.UUID,
	reservationNumber string,
	guestID uuid.UUID,
	hostID uuid.UUID,
	listingID uuid.UUID,
	status Status,
	checkIn time.Time,
	checkOut time.Time,
	guestCount int,
	nightlyAmount int64,
	totalAmount int64,
	currency string,
	policy CancellationPolicy,
	noFreeCancellation bool,
	onChainBookingID string,
	paymentTxHash string,
	disputeSummary *DisputeSummary,
	cancelledBy *uuid.UUID,
	cancelReason string,
	cancelledAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:                 id,
		reservationNumber:  reservationNumber,
		guestID:            guestID,
		hostID:             hostID,
		listingID:          listingID,
		status:             status,
		checkIn:            checkIn,
		checkOut:           checkOut,
		guestCount:         guestCount,
		nightlyAmount:      nightlyAmount,
		totalAmount:        totalAmount,
		currency:           currency,
		cancellationPolicy: policy,
		noFreeCancellation: noFreeCancellation,
		onChainBookingID:   onChainBookingID,
		paymentTxHash:      paymentTxHash,
		dispute:            disputeSummary,
		cancelledBy:        cancelledBy,
		cancelReason:       cancelReason,
		cancelledAt:        cancelledAt,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// --- Getters ---

// ID returns the reservation's unique identifier.
func (r *Reservation) ID() uuid.UUID { return r.id }

// ReservationNumber returns the human-readable reservation number.
func (r *Reservation) ReservationNumber() string { return r.reservationNumber }

// GuestID returns the booking guest's user ID.
func (r *Reservation) GuestID() uuid.UUID { return r.guestID }

// HostID returns the listing host's user ID.
func (r *Reservation) HostID() uuid.UUID { return r.hostID }

// ListingID returns the booked listing's ID.
func (r *Reservation) ListingID() uuid.UUID { return r.listingID }

// Status returns the current lifecycle status.
func (r *Reservation) Status() Status { return r.status }

// CheckIn returns the check-in instant.
func (r *Reservation) CheckIn() time.Time { return r.checkIn }

// CheckOut returns the check-out instant.
func (r *Reservation) CheckOut() time.Time { return r.checkOut }

// GuestCount returns the number of guests.
func (r *Reservation) GuestCount() int { return r.guestCount }

// NightlyAmount returns the per-night price in token base units.
func (r *Reservation) NightlyAmount() int64 { return r.nightlyAmount }

// TotalAmount returns the total price in token base units.
func (r *Reservation) TotalAmount() int64 { return r.totalAmount }

// Currency returns the payment token symbol.
func (r *Reservation) Currency() string { return r.currency }

// CancellationPolicy returns the policy snapshotted at booking time.
func (r *Reservation) CancellationPolicy() CancellationPolicy { return r.cancellationPolicy }

// NoFreeCancellation reports the listing-level override disallowing guest cancellation.
func (r *Reservation) NoFreeCancellation() bool { return r.noFreeCancellation }

// OnChainBookingID returns the escrow contract's booking identifier, or ""
// before payment initiation.
func (r *Reservation) OnChainBookingID() string { return r.onChainBookingID }

// PaymentTxHash returns the payment transaction hash, or "" before payment.
func (r *Reservation) PaymentTxHash() string { return r.paymentTxHash }

// Dispute returns the associated dispute summary, or nil when none exists.
func (r *Reservation) Dispute() *DisputeSummary { return r.dispute }

// CancelledBy returns the user that cancelled the reservation, or nil.
func (r *Reservation) CancelledBy() *uuid.UUID { return r.cancelledBy }

// CancelReason returns the cancellation reason.
func (r *Reservation) CancelReason() string { return r.cancelReason }

// CancelledAt returns the cancellation time, or nil.
func (r *Reservation) CancelledAt() *time.Time { return r.cancelledAt }

// Version returns the entity version for optimistic locking.
func (r *Reservation) Version() int64 { return r.version }

// CreatedAt returns the creation timestamp.
func (r *Reservation) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (r *Reservation) UpdatedAt() time.Time { return r.updatedAt }

// --- Behavior ---

// BeginPayment transitions the reservation to ORDER_WAITING_PAYMENT once the
// guest starts the escrow payment flow.
func (r *Reservation) BeginPayment() error {
	if !r.status.CanTransitionTo(StatusWaitingPayment) {
		return domain.NewInvalidStateError(string(r.status), string(StatusWaitingPayment))
	}
	r.status = StatusWaitingPayment
	r.updatedAt = time.Now().UTC()
	return nil
}

// RecordPayment applies a confirmed escrow payment. The on-chain booking
// identifier and transaction hash come from the PaymentInitiated event.
func (r *Reservation) RecordPayment(onChainBookingID, txHash string, partial bool) error {
	target := StatusPaidCompleted
	if partial {
		target = StatusPaidPartial
	}
	if !r.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(r.status), string(target))
	}
	r.status = target
	r.onChainBookingID = onChainBookingID
	r.paymentTxHash = txHash
	r.updatedAt = time.Now().UTC()
	return nil
}

// BeginProcessing transitions a fully paid reservation to ORDER_PROCESSING
// while post-payment steps (credential issuance) run.
func (r *Reservation) BeginProcessing() error {
	if !r.status.CanTransitionTo(StatusProcessing) {
		return domain.NewInvalidStateError(string(r.status), string(StatusProcessing))
	}
	r.status = StatusProcessing
	r.updatedAt = time.Now().UTC()
	return nil
}

// Confirm transitions the reservation to ORDER_COMPLETED (booking confirmed).
func (r *Reservation) Confirm() error {
	if !r.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(r.status), string(StatusCompleted))
	}
	r.status = StatusCompleted
	r.updatedAt = time.Now().UTC()
	return nil
}

// FailPayment marks the reservation as ORDER_FAIL after a payment failure.
func (r *Reservation) FailPayment() error {
	if !r.status.CanTransitionTo(StatusFailed) {
		return domain.NewInvalidStateError(string(r.status), string(StatusFailed))
	}
	r.status = StatusFailed
	r.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the reservation to ORDER_CANCELED, recording who
// cancelled and why. Eligibility is checked by CanCancel before this is
// called; the transition guard still rejects terminal states.
func (r *Reservation) Cancel(by uuid.UUID, reason string) error {
	if !r.status.CanTransitionTo(StatusCanceled) {
		return domain.NewInvalidStateError(string(r.status), string(StatusCanceled))
	}
	now := time.Now().UTC()
	r.status = StatusCanceled
	r.cancelledBy = &by
	r.cancelReason = reason
	r.cancelledAt = &now
	r.updatedAt = now
	return nil
}

// BeginRefund transitions the reservation to REFUND_PENDING.
func (r *Reservation) BeginRefund() error {
	if !r.status.CanTransitionTo(StatusRefundPending) {
		return domain.NewInvalidStateError(string(r.status), string(StatusRefundPending))
	}
	r.status = StatusRefundPending
	r.updatedAt = time.Now().UTC()
	return nil
}

// CompleteRefund transitions the reservation to REFUND_COMPLETED.
func (r *Reservation) CompleteRefund() error {
	if !r.status.CanTransitionTo(StatusRefundCompleted) {
		return domain.NewInvalidStateError(string(r.status), string(StatusRefundCompleted))
	}
	r.status = StatusRefundCompleted
	r.updatedAt = time.Now().UTC()
	return nil
}

// FailRefund transitions the reservation to REFUND_FAIL.
func (r *Reservation) FailRefund() error {
	if !r.status.CanTransitionTo(StatusRefundFailed) {
		return domain.NewInvalidStateError(string(r.status), string(StatusRefundFailed))
	}
	r.status = StatusRefundFailed
	r.updatedAt = time.Now().UTC()
	return nil
}

// AttachDispute links a dispute summary to the reservation. A reservation
// holds at most one dispute.
func (r *Reservation) AttachDispute(summary DisputeSummary) error {
	if r.dispute != nil {
		return domain.NewConflictError("reservation already has a dispute")
	}
	r.dispute = &summary
	r.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (r *Reservation) IncrementVersion() {
	r.version++
	r.updatedAt = time.Now().UTC()
}
