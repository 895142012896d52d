package reservation

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for reservation aggregates.
type Repository interface {
	// FindByID retrieves a reservation by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Reservation, error)

	// FindByNumber retrieves a reservation by its human-readable number.
	FindByNumber(ctx context.Context, number string) (*Reservation, error)

	// FindByOnChainBookingID retrieves a reservation by the escrow
	// contract's booking identifier.
	FindByOnChainBookingID(ctx context.Context, onChainBookingID string) (*Reservation, error)

	// FindByGuestID retrieves reservations booked by a guest with pagination.
	FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*Reservation, int64, error)

	// FindByHostID retrieves reservations on a host's listings with pagination.
	FindByHostID(ctx context.Context, hostID uuid.UUID, page, limit int) ([]*Reservation, int64, error)

	// ListAll retrieves all reservations with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Reservation, int64, error)

	// CountByStatus returns reservation counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new reservation.
	Save(ctx context.Context, res *Reservation) error

	// Update persists changes to an existing reservation with optimistic locking.
	Update(ctx context.Context, res *Reservation) error
}
