package listing

import (
	"time"

	"github.com/ceavinrufus/stay-backend/internal/domain"
	"github.com/ceavinrufus/stay-backend/internal/domain/reservation"
	"github.com/google/uuid"
)

// ListingStatus represents the publication state of a listing.
type ListingStatus string

const (
	StatusDraft    ListingStatus = "draft"
	StatusListed   ListingStatus = "listed"
	StatusDelisted ListingStatus = "delisted"
)

// Address is the listing's location.
type Address struct {
	Line1     string  `json:"line1"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Listing is a bookable property owned by a host. Its cancellation terms are
// snapshotted onto each reservation at booking time.
type Listing struct {
	id                 uuid.UUID
	hostID             uuid.UUID
	title              string
	description        string
	address            Address
	status             ListingStatus
	nightlyAmount      int64
	currency           string
	maxGuests          int
	cancellationPolicy reservation.CancellationPolicy
	noFreeCancellation bool
	createdAt          time.Time
	updatedAt          time.Time
}

// NewListing creates a new Listing in draft status.
func NewListing(
	hostID uuid.UUID,
	title string,
	description string,
	address Address,
	nightlyAmount int64,
	currency string,
	maxGuests int,
	policy reservation.CancellationPolicy,
	noFreeCancellation bool,
) (*Listing, error) {
	if hostID == uuid.Nil {
		return nil, domain.NewValidationError("host ID is required")
	}
	if title == "" {
		return nil, domain.NewValidationError("title is required")
	}
	if address.Line1 == "" {
		return nil, domain.NewValidationError("address is required")
	}
	if nightlyAmount <= 0 {
		return nil, domain.NewValidationError("nightly amount must be positive")
	}
	if currency == "" {
		return nil, domain.NewValidationError("currency is required")
	}
	if maxGuests < 1 {
		return nil, domain.NewValidationError("max guests must be positive")
	}
	if !policy.IsValid() {
		return nil, domain.NewValidationError("unknown cancellation policy: " + policy.String())
	}

	now := time.Now().UTC()
	return &Listing{
		id:                 uuid.New(),
		hostID:             hostID,
		title:              title,
		description:        description,
		address:            address,
		status:             StatusDraft,
		nightlyAmount:      nightlyAmount,
		currency:           currency,
		maxGuests:          maxGuests,
		cancellationPolicy: policy,
		noFreeCancellation: noFreeCancellation,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// ReconstructListing rebuilds a Listing from persistence data (no validation).
func ReconstructListing(
	id uuid.UUID,
	hostID uuid.UUID,
	title string,
	description string,
	address Address,
	status ListingStatus,
	nightlyAmount int64,
	currency string,
	maxGuests int,
	policy reservation.CancellationPolicy,
	noFreeCancellation bool,
	createdAt time.Time,
	updatedAt time.Time,
) *Listing {
	return &Listing{
		id:                 id,
		hostID:             hostID,
		title:              title,
		description:        description,
		address:            address,
		status:             status,
		nightlyAmount:      nightlyAmount,
		currency:           currency,
		maxGuests:          maxGuests,
		cancellationPolicy: policy,
		noFreeCancellation: noFreeCancellation,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// ID returns the listing's unique identifier.
func (l *Listing) ID() uuid.UUID { return l.id }

// HostID returns the owning host's user ID.
func (l *Listing) HostID() uuid.UUID { return l.hostID }

// Title returns the listing title.
func (l *Listing) Title() string { return l.title }

// Description returns the listing description.
func (l *Listing) Description() string { return l.description }

// Address returns the listing's location.
func (l *Listing) Address() Address { return l.address }

// Status returns the publication status.
func (l *Listing) Status() ListingStatus { return l.status }

// NightlyAmount returns the per-night price in token base units.
func (l *Listing) NightlyAmount() int64 { return l.nightlyAmount }

// Currency returns the payment token symbol.
func (l *Listing) Currency() string { return l.currency }

// MaxGuests returns the maximum guest count.
func (l *Listing) MaxGuests() int { return l.maxGuests }

// CancellationPolicy returns the listing's cancellation tier.
func (l *Listing) CancellationPolicy() reservation.CancellationPolicy { return l.cancellationPolicy }

// NoFreeCancellation reports the override disallowing guest cancellation.
func (l *Listing) NoFreeCancellation() bool { return l.noFreeCancellation }

// CreatedAt returns the creation timestamp.
func (l *Listing) CreatedAt() time.Time { return l.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (l *Listing) UpdatedAt() time.Time { return l.updatedAt }

// UpdateDetails replaces the mutable listing fields.
func (l *Listing) UpdateDetails(title, description string, address Address, nightlyAmount int64, maxGuests int) error {
	if title == "" {
		return domain.NewValidationError("title is required")
	}
	if address.Line1 == "" {
		return domain.NewValidationError("address is required")
	}
	if nightlyAmount <= 0 {
		return domain.NewValidationError("nightly amount must be positive")
	}
	if maxGuests < 1 {
		return domain.NewValidationError("max guests must be positive")
	}
	l.title = title
	l.description = description
	l.address = address
	l.nightlyAmount = nightlyAmount
	l.maxGuests = maxGuests
	l.updatedAt = time.Now().UTC()
	return nil
}

// SetCancellationTerms updates the cancellation policy and override for
// future bookings. Existing reservations keep their snapshot.
func (l *Listing) SetCancellationTerms(policy reservation.CancellationPolicy, noFreeCancellation bool) error {
	if !policy.IsValid() {
		return domain.NewValidationError("unknown cancellation policy: " + policy.String())
	}
	l.cancellationPolicy = policy
	l.noFreeCancellation = noFreeCancellation
	l.updatedAt = time.Now().UTC()
	return nil
}

// Publish makes the listing bookable.
func (l *Listing) Publish() error {
	if l.status == StatusListed {
		return domain.NewConflictError("listing is already published")
	}
	l.status = StatusListed
	l.updatedAt = time.Now().UTC()
	return nil
}

// Delist removes the listing from search without deleting it.
func (l *Listing) Delist() error {
	if l.status != StatusListed {
		return domain.NewInvalidStateError(string(l.status), string(StatusDelisted))
	}
	l.status = StatusDelisted
	l.updatedAt = time.Now().UTC()
	return nil
}
