package application

import (
	"context"
	"time"

	"github.com/ceavinrufus/stay-backend/internal/domain"
	"github.com/ceavinrufus/stay-backend/internal/domain/listing"
	"github.com/ceavinrufus/stay-backend/internal/domain/reservation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateListingRequest holds the data needed to create a listing draft.
type CreateListingRequest struct {
	Title              string          `json:"title" binding:"required"`
	Description        string          `json:"description"`
	Address            listing.Address `json:"address" binding:"required"`
	NightlyAmount      int64           `json:"nightly_amount" binding:"required"`
	Currency           string          `json:"currency" binding:"required"`
	MaxGuests          int             `json:"max_guests" binding:"required"`
	CancellationPolicy string          `json:"cancellation_policy" binding:"required"`
	NoFreeCancellation bool            `json:"is_no_free_cancellation"`
}

// UpdateListingRequest holds the mutable listing fields.
type UpdateListingRequest struct {
	Title         string          `json:"title" binding:"required"`
	Description   string          `json:"description"`
	Address       listing.Address `json:"address" binding:"required"`
	NightlyAmount int64           `json:"nightly_amount" binding:"required"`
	MaxGuests     int             `json:"max_guests" binding:"required"`
}

// SetCancellationTermsRequest updates the cancellation terms for future bookings.
type SetCancellationTermsRequest struct {
	CancellationPolicy string `json:"cancellation_policy" binding:"required"`
	NoFreeCancellation bool   `json:"is_no_free_cancellation"`
}

// ListingDTO is the response representation of a listing.
type ListingDTO struct {
	ID                 uuid.UUID       `json:"id"`
	HostID             uuid.UUID       `json:"host_id"`
	Title              string          `json:"title"`
	Description        string          `json:"description,omitempty"`
	Address            listing.Address `json:"address"`
	Status             string          `json:"status"`
	NightlyAmount      int64           `json:"nightly_amount"`
	Currency           string          `json:"currency"`
	MaxGuests          int             `json:"max_guests"`
	CancellationPolicy string          `json:"cancellation_policy"`
	NoFreeCancellation bool            `json:"is_no_free_cancellation"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ListingService is the application service orchestrating listing use cases.
type ListingService struct {
	repo   listing.Repository
	logger *zap.Logger
}

// NewListingService creates a new ListingService.
func NewListingService(repo listing.Repository, logger *zap.Logger) *ListingService {
	return &ListingService{repo: repo, logger: logger}
}

// CreateListing creates a draft listing for a host.
func (s *ListingService) CreateListing(ctx context.Context, hostID uuid.UUID, req CreateListingRequest) (*ListingDTO, error) {
	l, err := listing.NewListing(
		hostID,
		req.Title,
		req.Description,
		req.Address,
		req.NightlyAmount,
		req.Currency,
		req.MaxGuests,
		reservation.CancellationPolicy(req.CancellationPolicy),
		req.NoFreeCancellation,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, l); err != nil {
		return nil, err
	}

	result := toListingDTO(l)
	return &result, nil
}

// GetListing retrieves a listing by ID. Unpublished listings are only visible
// to their host.
func (s *ListingService) GetListing(ctx context.Context, listingID, requesterID uuid.UUID) (*ListingDTO, error) {
	l, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.Status() != listing.StatusListed && l.HostID() != requesterID {
		return nil, domain.NewNotFoundError("Listing", listingID.String())
	}
	result := toListingDTO(l)
	return &result, nil
}

// ListPublished returns published listings with pagination.
func (s *ListingService) ListPublished(ctx context.Context, page, limit int) (*domain.PaginatedResult[ListingDTO], error) {
	listings, total, err := s.repo.ListPublished(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toListingDTOs(listings), total, page, limit)
	return &result, nil
}

// GetHostListings returns a host's own listings, drafts included.
func (s *ListingService) GetHostListings(ctx context.Context, hostID uuid.UUID, page, limit int) (*domain.PaginatedResult[ListingDTO], error) {
	listings, total, err := s.repo.FindByHostID(ctx, hostID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toListingDTOs(listings), total, page, limit)
	return &result, nil
}

// UpdateListing replaces the mutable fields of a host's listing.
func (s *ListingService) UpdateListing(ctx context.Context, listingID, hostID uuid.UUID, req UpdateListingRequest) (*ListingDTO, error) {
	l, err := s.ownedListing(ctx, listingID, hostID)
	if err != nil {
		return nil, err
	}

	if err := l.UpdateDetails(req.Title, req.Description, req.Address, req.NightlyAmount, req.MaxGuests); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}

	result := toListingDTO(l)
	return &result, nil
}

// SetCancellationTerms updates the cancellation policy for future bookings.
// Reservations made before the change keep their snapshot.
func (s *ListingService) SetCancellationTerms(ctx context.Context, listingID, hostID uuid.UUID, req SetCancellationTermsRequest) (*ListingDTO, error) {
	l, err := s.ownedListing(ctx, listingID, hostID)
	if err != nil {
		return nil, err
	}

	if err := l.SetCancellationTerms(reservation.CancellationPolicy(req.CancellationPolicy), req.NoFreeCancellation); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}

	result := toListingDTO(l)
	return &result, nil
}

// PublishListing makes a listing bookable.
func (s *ListingService) PublishListing(ctx context.Context, listingID, hostID uuid.UUID) (*ListingDTO, error) {
	l, err := s.ownedListing(ctx, listingID, hostID)
	if err != nil {
		return nil, err
	}

	if err := l.Publish(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}

	result := toListingDTO(l)
	return &result, nil
}

// DelistListing removes a listing from search. Existing reservations are
// unaffected.
func (s *ListingService) DelistListing(ctx context.Context, listingID, hostID uuid.UUID) (*ListingDTO, error) {
	l, err := s.ownedListing(ctx, listingID, hostID)
	if err != nil {
		return nil, err
	}

	if err := l.Delist(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}

	result := toListingDTO(l)
	return &result, nil
}

func (s *ListingService) ownedListing(ctx context.Context, listingID, hostID uuid.UUID) (*listing.Listing, error) {
	l, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.HostID() != hostID {
		return nil, domain.NewForbiddenError("listing does not belong to this host")
	}
	return l, nil
}

func toListingDTO(l *listing.Listing) ListingDTO {
	return ListingDTO{
		ID:                 l.ID(),
		HostID:             l.HostID(),
		Title:              l.Title(),
		Description:        l.Description(),
		Address:            l.Address(),
		Status:             string(l.Status()),
		NightlyAmount:      l.NightlyAmount(),
		Currency:           l.Currency(),
		MaxGuests:          l.MaxGuests(),
		CancellationPolicy: l.CancellationPolicy().String(),
		NoFreeCancellation: l.NoFreeCancellation(),
		CreatedAt:          l.CreatedAt(),
		UpdatedAt:          l.UpdatedAt(),
	}
}

func toListingDTOs(listings []*listing.Listing) []ListingDTO {
	dtos := make([]ListingDTO, len(listings))
	for i, l := range listings {
		dtos[i] = toListingDTO(l)
	}
	return dtos
}
