package application

import (
	"context"
	"fmt"
	"time"

	"github.com/ceavinrufus/stay-backend/internal/domain"
	"github.com/ceavinrufus/stay-backend/internal/domain/listing"
	"github.com/ceavinrufus/stay-backend/internal/domain/reservation"
	"github.com/ceavinrufus/stay-backend/internal/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const eventSource = "stay-backend"

// EventPublisher publishes CloudEvents to a topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event events.CloudEvent) error
}

// CreateReservationRequest holds the data needed to book a listing.
type CreateReservationRequest struct {
	ListingID  uuid.UUID `json:"listing_id" binding:"required"`
	CheckIn    time.Time `json:"check_in_date" binding:"required"`
	CheckOut   time.Time `json:"check_out_date" binding:"required"`
	GuestCount int       `json:"guest_count" binding:"required"`
}

// ReservationDTO is the response representation of a reservation.
type ReservationDTO struct {
	ID                 uuid.UUID                   `json:"id"`
	ReservationNumber  string                      `json:"reservation_number"`
	GuestID            uuid.UUID                   `json:"guest_id"`
	HostID             uuid.UUID                   `json:"host_id"`
	ListingID          uuid.UUID                   `json:"listing_id"`
	Status             string                      `json:"status"`
	CheckIn            time.Time                   `json:"check_in_date"`
	CheckOut           time.Time                   `json:"check_out_date"`
	GuestCount         int                         `json:"guest_count"`
	NightlyAmount      int64                       `json:"nightly_amount"`
	TotalAmount        int64                       `json:"total_amount"`
	Currency           string                      `json:"currency"`
	CancellationPolicy string                      `json:"cancellation_policy"`
	NoFreeCancellation bool                        `json:"is_no_free_cancellation"`
	OnChainBookingID   string                      `json:"on_chain_booking_id,omitempty"`
	PaymentTxHash      string                      `json:"payment_tx_hash,omitempty"`
	Dispute            *reservation.DisputeSummary `json:"dispute,omitempty"`
	CancelledBy        *uuid.UUID                  `json:"cancelled_by,omitempty"`
	CancelReason       string                      `json:"cancel_reason,omitempty"`
	CancelledAt        *time.Time                  `json:"cancelled_at,omitempty"`
	Version            int64                       `json:"version"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

// EligibilityDTO centralizes everything the UI needs to gate reservation
// actions. The same rules are re-checked inside the mutating operations, so
// this output is advisory, never an authorization boundary.
type EligibilityDTO struct {
	DisplayStatus    string     `json:"display_status"`
	CanCancel        bool       `json:"can_cancel"`
	CancellableUntil *time.Time `json:"cancellable_until,omitempty"`
	DisputeAction    string     `json:"dispute_action"`
}

// ReservationService is the application service orchestrating reservation use cases.
type ReservationService struct {
	repo        reservation.Repository
	listingRepo listing.Repository
	producer    EventPublisher
	logger      *zap.Logger
	clock       func() time.Time
}

// NewReservationService creates a new ReservationService.
func NewReservationService(
	repo reservation.Repository,
	listingRepo listing.Repository,
	producer EventPublisher,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		repo:        repo,
		listingRepo: listingRepo,
		producer:    producer,
		logger:      logger,
		clock:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateReservation books a listing for the given guest. The listing's
// cancellation terms are snapshotted onto the reservation at this point and
// never change afterwards.
func (s *ReservationService) CreateReservation(ctx context.Context, guestID uuid.UUID, req CreateReservationRequest) (*ReservationDTO, error) {
	l, err := s.listingRepo.FindByID(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}
	if l.Status() != listing.StatusListed {
		return nil, domain.NewValidationError("listing is not available for booking")
	}
	if l.HostID() == guestID {
		return nil, domain.NewValidationError("hosts cannot book their own listing")
	}
	if req.GuestCount > l.MaxGuests() {
		return nil, domain.NewValidationError(fmt.Sprintf("listing allows at most %d guests", l.MaxGuests()))
	}
	if req.CheckIn.Before(s.clock()) {
		return nil, domain.NewValidationError("check-in must be in the future")
	}

	res, err := reservation.NewReservation(
		guestID,
		l.HostID(),
		l.ID(),
		req.CheckIn,
		req.CheckOut,
		req.GuestCount,
		l.NightlyAmount(),
		l.Currency(),
		l.CancellationPolicy(),
		l.NoFreeCancellation(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to save reservation: %w", err)
	}

	evt := events.ReservationCreatedEvent{
		ReservationID:     res.ID(),
		ReservationNumber: res.ReservationNumber(),
		GuestID:           res.GuestID(),
		HostID:            res.HostID(),
		ListingID:         res.ListingID(),
		CheckIn:           res.CheckIn(),
		CheckOut:          res.CheckOut(),
		TotalAmount:       res.TotalAmount(),
		Currency:          res.Currency(),
		OccurredAt:        s.clock(),
	}
	s.publishEvent(ctx, events.TopicReservationEvents, events.ReservationCreated, res.ID().String(), evt)

	result := toReservationDTO(res)
	return &result, nil
}

// BeginPayment marks the reservation as awaiting escrow payment once the
// guest starts the wallet flow.
func (s *ReservationService) BeginPayment(ctx context.Context, reservationID, guestID uuid.UUID) (*ReservationDTO, error) {
	res, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.GuestID() != guestID {
		return nil, domain.NewForbiddenError("reservation does not belong to this guest")
	}

	if err := res.BeginPayment(); err != nil {
		return nil, err
	}

	res.IncrementVersion()
	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}

	result := toReservationDTO(res)
	return &result, nil
}

// GetReservation retrieves a single reservation, restricted to its guest,
// its host, or an admin.
func (s *ReservationService) GetReservation(ctx context.Context, reservationID, requesterID uuid.UUID, isAdmin bool) (*ReservationDTO, error) {
	res, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && res.GuestID() != requesterID && res.HostID() != requesterID {
		return nil, domain.NewForbiddenError("reservation does not belong to this user")
	}
	result := toReservationDTO(res)
	return &result, nil
}

// Eligibility derives the display status and action gates for a reservation.
func (s *ReservationService) Eligibility(ctx context.Context, reservationID, requesterID uuid.UUID, role string) (*EligibilityDTO, error) {
	res, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	domainRole, err := actorRole(res, requesterID, role)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	return &EligibilityDTO{
		DisplayStatus:    string(res.DisplayStatus(now)),
		CanCancel:        res.CanCancel(domainRole, now),
		CancellableUntil: res.CancellableUntil(),
		DisputeAction:    string(res.DisputeEligibility(now)),
	}, nil
}

// GetGuestReservations retrieves paginated reservations booked by a guest.
func (s *ReservationService) GetGuestReservations(ctx context.Context, guestID uuid.UUID, page, limit int) (*domain.PaginatedResult[ReservationDTO], error) {
	reservations, total, err := s.repo.FindByGuestID(ctx, guestID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toReservationDTOs(reservations), total, page, limit)
	return &result, nil
}

// GetHostReservations retrieves paginated reservations on a host's listings.
func (s *ReservationService) GetHostReservations(ctx context.Context, hostID uuid.UUID, page, limit int) (*domain.PaginatedResult[ReservationDTO], error) {
	reservations, total, err := s.repo.FindByHostID(ctx, hostID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toReservationDTOs(reservations), total, page, limit)
	return &result, nil
}

// CancelReservation cancels a reservation on behalf of its guest or host.
// The eligibility guard is enforced here, server-side, regardless of what
// the UI displayed.
func (s *ReservationService) CancelReservation(ctx context.Context, reservationID, actorID uuid.UUID, role, reason string) (*ReservationDTO, error) {
	res, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	domainRole, err := actorRole(res, actorID, role)
	if err != nil {
		return nil, err
	}

	if !res.CanCancel(domainRole, s.clock()) {
		return nil, domain.NewForbiddenError("reservation is not cancellable")
	}

	if err := res.Cancel(actorID, reason); err != nil {
		return nil, err
	}

	res.IncrementVersion()
	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}

	evt := events.ReservationCancelledEvent{
		ReservationID:     res.ID(),
		ReservationNumber: res.ReservationNumber(),
		CancelledBy:       actorID,
		Role:              string(domainRole),
		Reason:            reason,
		OccurredAt:        s.clock(),
	}
	s.publishEvent(ctx, events.TopicReservationEvents, events.ReservationCancelled, res.ID().String(), evt)

	result := toReservationDTO(res)
	return &result, nil
}

// --- Settlement-driven operations ---

// ApplyPaymentInitiated records a confirmed escrow payment. Full payments
// move the reservation into ORDER_PROCESSING; confirmation is a separate
// step so a failure between payment and post-payment processing leaves the
// reservation visibly in the intermediate state instead of silently stuck.
func (s *ReservationService) ApplyPaymentInitiated(ctx context.Context, evt events.PaymentInitiatedEvent) error {
	res, err := s.repo.FindByID(ctx, evt.ReservationID)
	if err != nil {
		return err
	}

	if res.Status() == reservation.StatusCreated {
		if err := res.BeginPayment(); err != nil {
			return err
		}
	}
	if err := res.RecordPayment(evt.OnChainBookingID, evt.TxHash, evt.Partial); err != nil {
		return err
	}
	if !evt.Partial {
		if err := res.BeginProcessing(); err != nil {
			return err
		}
	}

	res.IncrementVersion()
	return s.repo.Update(ctx, res)
}

// ConfirmReservation finalizes a fully paid reservation.
func (s *ReservationService) ConfirmReservation(ctx context.Context, reservationID uuid.UUID) error {
	res, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}

	if err := res.Confirm(); err != nil {
		return err
	}

	res.IncrementVersion()
	if err := s.repo.Update(ctx, res); err != nil {
		return err
	}

	evt := events.ReservationConfirmedEvent{
		ReservationID:     res.ID(),
		ReservationNumber: res.ReservationNumber(),
		GuestID:           res.GuestID(),
		HostID:            res.HostID(),
		OnChainBookingID:  res.OnChainBookingID(),
		OccurredAt:        s.clock(),
	}
	s.publishEvent(ctx, events.TopicReservationEvents, events.ReservationConfirmed, res.ID().String(), evt)
	return nil
}

// ApplyPaymentFailed marks the reservation as failed after a reverted or
// abandoned payment.
func (s *ReservationService) ApplyPaymentFailed(ctx context.Context, evt events.PaymentFailedEvent) error {
	res, err := s.repo.FindByID(ctx, evt.ReservationID)
	if err != nil {
		return err
	}

	if err := res.FailPayment(); err != nil {
		return err
	}

	res.IncrementVersion()
	return s.repo.Update(ctx, res)
}

// ApplyOnChainCancellation applies a cancellation settled directly on-chain.
// Already-cancelled reservations are left untouched.
func (s *ReservationService) ApplyOnChainCancellation(ctx context.Context, evt events.BookingCancelledEvent) error {
	res, err := s.repo.FindByID(ctx, evt.ReservationID)
	if err != nil {
		return err
	}
	if res.Status() == reservation.StatusCanceled {
		return nil
	}

	if err := res.Cancel(evt.CancelledBy, evt.Reason); err != nil {
		return err
	}

	res.IncrementVersion()
	return s.repo.Update(ctx, res)
}

// ApplyRefundSettled applies the outcome of an on-chain refund.
func (s *ReservationService) ApplyRefundSettled(ctx context.Context, evt events.RefundSettledEvent) error {
	res, err := s.repo.FindByID(ctx, evt.ReservationID)
	if err != nil {
		return err
	}

	if res.Status() == reservation.StatusCanceled || res.Status() == reservation.StatusRefundFailed {
		if err := res.BeginRefund(); err != nil {
			return err
		}
	}

	if evt.Succeeded {
		if err := res.CompleteRefund(); err != nil {
			return err
		}
	} else {
		if err := res.FailRefund(); err != nil {
			return err
		}
	}

	res.IncrementVersion()
	return s.repo.Update(ctx, res)
}

// --- Admin methods ---

// ReservationStatsDTO holds reservation statistics for the admin dashboard.
type ReservationStatsDTO struct {
	TotalReservations int64            `json:"total_reservations"`
	ByStatus          map[string]int64 `json:"by_status"`
}

// ListAllReservations returns a paginated list of all reservations (admin).
func (s *ReservationService) ListAllReservations(ctx context.Context, page, limit int) ([]ReservationDTO, int64, error) {
	reservations, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}
	return toReservationDTOs(reservations), total, nil
}

// GetReservationStats returns aggregate reservation statistics (admin).
func (s *ReservationService) GetReservationStats(ctx context.Context) (*ReservationStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &ReservationStatsDTO{TotalReservations: total, ByStatus: counts}, nil
}

// --- Helpers ---

// actorRole resolves the requester's domain role on a specific reservation,
// verifying the requester actually is that party.
func actorRole(res *reservation.Reservation, actorID uuid.UUID, role string) (reservation.Role, error) {
	switch role {
	case "guest":
		if res.GuestID() != actorID {
			return "", domain.NewForbiddenError("reservation does not belong to this guest")
		}
		return reservation.RoleGuest, nil
	case "host":
		if res.HostID() != actorID {
			return "", domain.NewForbiddenError("reservation is not on this host's listing")
		}
		return reservation.RoleHost, nil
	default:
		return "", domain.NewForbiddenError("role cannot act on reservations")
	}
}

func toReservationDTO(res *reservation.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:                 res.ID(),
		ReservationNumber:  res.ReservationNumber(),
		GuestID:            res.GuestID(),
		HostID:             res.HostID(),
		ListingID:          res.ListingID(),
		Status:             string(res.Status()),
		CheckIn:            res.CheckIn(),
		CheckOut:           res.CheckOut(),
		GuestCount:         res.GuestCount(),
		NightlyAmount:      res.NightlyAmount(),
		TotalAmount:        res.TotalAmount(),
		Currency:           res.Currency(),
		CancellationPolicy: string(res.CancellationPolicy()),
		NoFreeCancellation: res.NoFreeCancellation(),
		OnChainBookingID:   res.OnChainBookingID(),
		PaymentTxHash:      res.PaymentTxHash(),
		Dispute:            res.Dispute(),
		CancelledBy:        res.CancelledBy(),
		CancelReason:       res.CancelReason(),
		CancelledAt:        res.CancelledAt(),
		Version:            res.Version(),
		CreatedAt:          res.CreatedAt(),
		UpdatedAt:          res.UpdatedAt(),
	}
}

func toReservationDTOs(reservations []*reservation.Reservation) []ReservationDTO {
	dtos := make([]ReservationDTO, len(reservations))
	for i, res := range reservations {
		dtos[i] = toReservationDTO(res)
	}
	return dtos
}

func (s *ReservationService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
	cloudEvent, err := events.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := s.producer.PublishEvent(ctx, topic, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
