package listing

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for listings.
type Repository interface {
	// FindByID retrieves a listing by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)

	// FindByHostID retrieves a host's listings with pagination.
	FindByHostID(ctx context.Context, hostID uuid.UUID, page, limit int) ([]*Listing, int64, error)

	// ListPublished retrieves published listings with pagination.
	ListPublished(ctx context.Context, page, limit int) ([]*Listing, int64, error)

	// Save persists a new listing.
	Save(ctx context.Context, l *Listing) error

	// Update persists changes to an existing listing.
	Update(ctx context.Context, l *Listing) error
}
