package dispute

import (
	"time"

	"github.com/ceavinrufus/stay-backend/internal/domain"
	"github.com/google/uuid"
)

// Dispute is a guest-initiated claim against a reservation requiring
// mediator resolution. A reservation has at most one dispute.
type Dispute struct {
	id            uuid.UUID
	reservationID uuid.UUID
	raisedBy      uuid.UUID
	status        Status
	reason        string
	evidenceURLs  []string
	resolution    string
	resolvedAt    *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

// NewDispute creates a new Dispute in PENDING status.
func NewDispute(reservationID, raisedBy uuid.UUID, reason string, evidenceURLs []string) (*Dispute, error) {
	if reservationID == uuid.Nil {
		return nil, domain.NewValidationError("reservation ID is required")
	}
	if raisedBy == uuid.Nil {
		return nil, domain.NewValidationError("raised-by user ID is required")
	}
	if reason == "" {
		return nil, domain.NewValidationError("dispute reason is required")
	}

	now := time.Now().UTC()
	return &Dispute{
		id:            uuid.New(),
		reservationID: reservationID,
		raisedBy:      raisedBy,
		status:        StatusPending,
		reason:        reason,
		evidenceURLs:  evidenceURLs,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructDispute rebuilds a Dispute from persistence data (no validation).
func ReconstructDispute(
	id uuid.UUID,
	reservationID uuid.UUID,
	raisedBy uuid.UUID,
	status Status,
	reason string,
	evidenceURLs []string,
	resolution string,
	resolvedAt *time.Time,
	createdAt time.Time,
	updatedAt time.Time,
) *Dispute {
	return &Dispute{
		id:            id,
		reservationID: reservationID,
		raisedBy:      raisedBy,
		status:        status,
		reason:        reason,
		evidenceURLs:  evidenceURLs,
		resolution:    resolution,
		resolvedAt:    resolvedAt,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// ID returns the dispute's unique identifier.
func (d *Dispute) ID() uuid.UUID { return d.id }

// ReservationID returns the disputed reservation's ID.
func (d *Dispute) ReservationID() uuid.UUID { return d.reservationID }

// RaisedBy returns the user ID of the party that raised the dispute.
func (d *Dispute) RaisedBy() uuid.UUID { return d.raisedBy }

// Status returns the current dispute status.
func (d *Dispute) Status() Status { return d.status }

// Reason returns the dispute reason.
func (d *Dispute) Reason() string { return d.reason }

// EvidenceURLs returns the attached evidence URLs.
func (d *Dispute) EvidenceURLs() []string { return d.evidenceURLs }

// Resolution returns the mediator's resolution note.
func (d *Dispute) Resolution() string { return d.resolution }

// ResolvedAt returns the resolution time, or nil while the dispute is open.
func (d *Dispute) ResolvedAt() *time.Time { return d.resolvedAt }

// CreatedAt returns the creation timestamp.
func (d *Dispute) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (d *Dispute) UpdatedAt() time.Time { return d.updatedAt }

// StartReview moves the dispute from PENDING to UNDER_REVIEW.
func (d *Dispute) StartReview() error {
	if !d.status.CanTransitionTo(StatusUnderReview) {
		return domain.NewInvalidStateError(string(d.status), string(StatusUnderReview))
	}
	d.status = StatusUnderReview
	d.updatedAt = time.Now().UTC()
	return nil
}

// Resolve records the mediator's outcome. Resolution is terminal.
func (d *Dispute) Resolve(outcome Status, note string) error {
	if !outcome.IsResolved() {
		return domain.NewValidationError("resolution outcome must be a RESOLVED_* status")
	}
	if !d.status.CanTransitionTo(outcome) {
		return domain.NewInvalidStateError(string(d.status), string(outcome))
	}
	now := time.Now().UTC()
	d.status = outcome
	d.resolution = note
	d.resolvedAt = &now
	d.updatedAt = now
	return nil
}
