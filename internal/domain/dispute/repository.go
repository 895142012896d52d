package dispute

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for disputes.
type Repository interface {
	// FindByID retrieves a dispute by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Dispute, error)

	// FindByReservationID retrieves the dispute for a reservation, or a
	// not-found error when the reservation has no dispute.
	FindByReservationID(ctx context.Context, reservationID uuid.UUID) (*Dispute, error)

	// ListOpen retrieves disputes that are not yet resolved, with pagination.
	ListOpen(ctx context.Context, page, limit int) ([]*Dispute, int64, error)

	// Save persists a new dispute.
	Save(ctx context.Context, d *Dispute) error

	// Update persists changes to an existing dispute.
	Update(ctx context.Context, d *Dispute) error
}
