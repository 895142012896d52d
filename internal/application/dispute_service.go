package application

import (
	"context"
	"time"

	"github.com/ceavinrufus/stay-backend/internal/domain"
	"github.com/ceavinrufus/stay-backend/internal/domain/dispute"
	"github.com/ceavinrufus/stay-backend/internal/domain/reservation"
	"github.com/ceavinrufus/stay-backend/internal/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RaiseDisputeRequest holds the data needed to open a dispute.
type RaiseDisputeRequest struct {
	Reason       string   `json:"reason" binding:"required"`
	EvidenceURLs []string `json:"evidence_urls"`
}

// ResolveDisputeRequest holds the mediator's resolution.
type ResolveDisputeRequest struct {
	Outcome    string `json:"outcome" binding:"required"`
	Resolution string `json:"resolution" binding:"required"`
}

// DisputeDTO is the response representation of a dispute.
type DisputeDTO struct {
	ID            uuid.UUID  `json:"id"`
	ReservationID uuid.UUID  `json:"reservation_id"`
	RaisedBy      uuid.UUID  `json:"raised_by"`
	Status        string     `json:"status"`
	Reason        string     `json:"reason"`
	EvidenceURLs  []string   `json:"evidence_urls,omitempty"`
	Resolution    string     `json:"resolution,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// DisputeService is the application service orchestrating dispute use cases.
type DisputeService struct {
	repo     dispute.Repository
	resRepo  reservation.Repository
	producer EventPublisher
	logger   *zap.Logger
	clock    func() time.Time
}

// NewDisputeService creates a new DisputeService.
func NewDisputeService(
	repo dispute.Repository,
	resRepo reservation.Repository,
	producer EventPublisher,
	logger *zap.Logger,
) *DisputeService {
	return &DisputeService{
		repo:     repo,
		resRepo:  resRepo,
		producer: producer,
		logger:   logger,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

// RaiseDispute opens a dispute on a reservation. Only the reservation's guest
// may raise one, and only while the dispute window guard allows it. The guard
// is re-checked here no matter what the UI showed.
func (s *DisputeService) RaiseDispute(ctx context.Context, reservationID, guestID uuid.UUID, req RaiseDisputeRequest) (*DisputeDTO, error) {
	res, err := s.resRepo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.GuestID() != guestID {
		return nil, domain.NewForbiddenError("reservation does not belong to this guest")
	}

	switch res.DisputeEligibility(s.clock()) {
	case reservation.DisputeActionRaise:
		// proceed
	case reservation.DisputeActionView:
		return nil, domain.NewConflictError("reservation already has a dispute")
	default:
		return nil, domain.NewForbiddenError("dispute window is closed for this reservation")
	}

	d, err := dispute.NewDispute(reservationID, guestID, req.Reason, req.EvidenceURLs)
	if err != nil {
		return nil, err
	}

	// The unique index on reservation_id backs up the guard above under
	// concurrent requests.
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, err
	}

	evt := events.DisputeOpenedEvent{
		DisputeID:     d.ID(),
		ReservationID: reservationID,
		RaisedBy:      guestID,
		Reason:        req.Reason,
		OccurredAt:    s.clock(),
	}
	s.publishEvent(ctx, events.TopicReservationEvents, events.DisputeOpened, reservationID.String(), evt)

	result := toDisputeDTO(d)
	return &result, nil
}

// GetDispute retrieves a dispute, restricted to the reservation's guest,
// its host, or an admin.
func (s *DisputeService) GetDispute(ctx context.Context, disputeID, requesterID uuid.UUID, isAdmin bool) (*DisputeDTO, error) {
	d, err := s.repo.FindByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeAccess(ctx, d, requesterID, isAdmin); err != nil {
		return nil, err
	}
	result := toDisputeDTO(d)
	return &result, nil
}

// GetDisputeByReservation retrieves the dispute attached to a reservation.
func (s *DisputeService) GetDisputeByReservation(ctx context.Context, reservationID, requesterID uuid.UUID, isAdmin bool) (*DisputeDTO, error) {
	d, err := s.repo.FindByReservationID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeAccess(ctx, d, requesterID, isAdmin); err != nil {
		return nil, err
	}
	result := toDisputeDTO(d)
	return &result, nil
}

// ListOpenDisputes returns unresolved disputes for the mediation queue (admin).
func (s *DisputeService) ListOpenDisputes(ctx context.Context, page, limit int) (*domain.PaginatedResult[DisputeDTO], error) {
	disputes, total, err := s.repo.ListOpen(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]DisputeDTO, len(disputes))
	for i, d := range disputes {
		dtos[i] = toDisputeDTO(d)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// StartReview moves a dispute into UNDER_REVIEW (admin).
func (s *DisputeService) StartReview(ctx context.Context, disputeID uuid.UUID) (*DisputeDTO, error) {
	d, err := s.repo.FindByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	if err := d.StartReview(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	result := toDisputeDTO(d)
	return &result, nil
}

// ResolveDispute records the mediator's outcome (admin). Outcomes that return
// funds to the guest also move the reservation into the refund flow and ask
// the settlement layer to release escrow.
func (s *DisputeService) ResolveDispute(ctx context.Context, disputeID uuid.UUID, req ResolveDisputeRequest) (*DisputeDTO, error) {
	outcome, err := dispute.ParseStatus(req.Outcome)
	if err != nil {
		return nil, err
	}

	d, err := s.repo.FindByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	if err := d.Resolve(outcome, req.Resolution); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	if outcome == dispute.StatusResolvedFavorGuest || outcome == dispute.StatusResolvedCompromise {
		if err := s.beginRefund(ctx, d.ReservationID()); err != nil {
			s.logger.Error("failed to start refund for resolved dispute",
				zap.String("dispute_id", disputeID.String()),
				zap.Error(err),
			)
		}
	}

	evt := events.DisputeResolvedEvent{
		DisputeID:     d.ID(),
		ReservationID: d.ReservationID(),
		Outcome:       string(outcome),
		Resolution:    req.Resolution,
		OccurredAt:    s.clock(),
	}
	s.publishEvent(ctx, events.TopicReservationEvents, events.DisputeResolved, d.ReservationID().String(), evt)

	result := toDisputeDTO(d)
	return &result, nil
}

// ApplySettlementResolution applies a dispute resolution settled directly
// on-chain. Already-resolved disputes are left untouched.
func (s *DisputeService) ApplySettlementResolution(ctx context.Context, evt events.SettlementDisputeResolvedEvent) error {
	d, err := s.repo.FindByReservationID(ctx, evt.ReservationID)
	if err != nil {
		return err
	}
	if d.Status().IsResolved() {
		return nil
	}

	outcome, err := dispute.ParseStatus(evt.Outcome)
	if err != nil {
		return err
	}

	if err := d.Resolve(outcome, "resolved on-chain (tx "+evt.TxHash+")"); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return err
	}

	if outcome == dispute.StatusResolvedFavorGuest || outcome == dispute.StatusResolvedCompromise {
		if err := s.beginRefund(ctx, d.ReservationID()); err != nil {
			return err
		}
	}
	return nil
}

// beginRefund moves the disputed reservation into REFUND_PENDING and asks the
// settlement layer to release the escrowed funds.
func (s *DisputeService) beginRefund(ctx context.Context, reservationID uuid.UUID) error {
	res, err := s.resRepo.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if res.Status() == reservation.StatusRefundPending {
		return nil
	}

	if err := res.BeginRefund(); err != nil {
		return err
	}

	res.IncrementVersion()
	if err := s.resRepo.Update(ctx, res); err != nil {
		return err
	}

	evt := events.RefundRequestedEvent{
		ReservationID:    res.ID(),
		OnChainBookingID: res.OnChainBookingID(),
		Amount:           res.TotalAmount(),
		Currency:         res.Currency(),
		OccurredAt:       s.clock(),
	}
	s.publishEvent(ctx, events.TopicReservationEvents, events.RefundRequested, res.ID().String(), evt)
	return nil
}

func (s *DisputeService) authorizeAccess(ctx context.Context, d *dispute.Dispute, requesterID uuid.UUID, isAdmin bool) error {
	if isAdmin {
		return nil
	}
	res, err := s.resRepo.FindByID(ctx, d.ReservationID())
	if err != nil {
		return err
	}
	if res.GuestID() != requesterID && res.HostID() != requesterID {
		return domain.NewForbiddenError("dispute does not belong to this user")
	}
	return nil
}

func toDisputeDTO(d *dispute.Dispute) DisputeDTO {
	return DisputeDTO{
		ID:            d.ID(),
		ReservationID: d.ReservationID(),
		RaisedBy:      d.RaisedBy(),
		Status:        string(d.Status()),
		Reason:        d.Reason(),
		EvidenceURLs:  d.EvidenceURLs(),
		Resolution:    d.Resolution(),
		ResolvedAt:    d.ResolvedAt(),
		CreatedAt:     d.CreatedAt(),
		UpdatedAt:     d.UpdatedAt(),
	}
}

func (s *DisputeService) publishEvent(ctx context.Context, topic, eventType, key string, data interface{}) {
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
