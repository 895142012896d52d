package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ceavinrufus/stay-backend/internal/domain"
	"github.com/ceavinrufus/stay-backend/internal/domain/listing"
	"github.com/ceavinrufus/stay-backend/internal/domain/reservation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListingModel is the GORM model for the listings table.
type ListingModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	HostID             uuid.UUID       `gorm:"type:uuid;index;not null"`
	Title              string          `gorm:"not null;size:200"`
	Description        string          `gorm:"size:5000"`
	Address            json.RawMessage `gorm:"type:jsonb;not null"`
	Status             string          `gorm:"not null;size:20;index"`
	NightlyAmount      int64           `gorm:"not null"`
	Currency           string          `gorm:"not null;size:10"`
	MaxGuests          int             `gorm:"not null"`
	CancellationPolicy string          `gorm:"not null;size:20"`
	NoFreeCancellation bool            `gorm:"not null;default:false"`
	CreatedAt          time.Time       `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ListingModel) TableName() string {
	return "listings"
}

// GormListingRepository is the GORM-based implementation of listing.Repository.
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository.
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// FindByID retrieves a listing by its unique identifier.
func (r *GormListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	var model ListingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Listing", id.String())
		}
		return nil, fmt.Errorf("failed to find listing by ID: %w", err)
	}
	return toDomainListing(&model)
}

// FindByHostID retrieves a host's listings with pagination.
func (r *GormListingRepository) FindByHostID(ctx context.Context, hostID uuid.UUID, page, limit int) ([]*listing.Listing, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ListingModel{}).Where("host_id = ?", hostID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count host listings: %w", err)
	}

	var models []ListingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("host_id = ?", hostID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find host listings: %w", err)
	}

	return toDomainListings(models, total)
}

// ListPublished retrieves published listings with pagination.
func (r *GormListingRepository) ListPublished(ctx context.Context, page, limit int) ([]*listing.Listing, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ListingModel{}).Where("status = ?", string(listing.StatusListed)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count published listings: %w", err)
	}

	var models []ListingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(listing.StatusListed)).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list published listings: %w", err)
	}

	return toDomainListings(models, total)
}

// Save persists a new listing.
func (r *GormListingRepository) Save(ctx context.Context, l *listing.Listing) error {
	model, err := toListingModel(l)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save listing: %w", err)
	}
	return nil
}

// Update persists changes to an existing listing.
func (r *GormListingRepository) Update(ctx context.Context, l *listing.Listing) error {
	model, err := toListingModel(l)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&ListingModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"title":                model.Title,
			"description":          model.Description,
			"address":              model.Address,
			"status":               model.Status,
			"nightly_amount":       model.NightlyAmount,
			"max_guests":           model.MaxGuests,
			"cancellation_policy":  model.CancellationPolicy,
			"no_free_cancellation": model.NoFreeCancellation,
			"updated_at":           model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update listing: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Listing", model.ID.String())
	}
	return nil
}

// --- Conversion helpers ---

func toListingModel(l *listing.Listing) (*ListingModel, error) {
	address, err := json.Marshal(l.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal address: %w", err)
	}
	return &ListingModel{
		ID:                 l.ID(),
		HostID:             l.HostID(),
		Title:              l.Title(),
		Description:        l.Description(),
		Address:            address,
		Status:             string(l.Status()),
		NightlyAmount:      l.NightlyAmount(),
		Currency:           l.Currency(),
		MaxGuests:          l.MaxGuests(),
		CancellationPolicy: string(l.CancellationPolicy()),
		NoFreeCancellation: l.NoFreeCancellation(),
		CreatedAt:          l.CreatedAt(),
		UpdatedAt:          l.UpdatedAt(),
	}, nil
}

func toDomainListing(m *ListingModel) (*listing.Listing, error) {
	var address listing.Address
	if err := json.Unmarshal(m.Address, &address); err != nil {
		return nil, fmt.Errorf("failed to unmarshal address: %w", err)
	}

	return listing.ReconstructListing(
		m.ID,
		m.HostID,
		m.Title,
		m.Description,
		address,
		listing.ListingStatus(m.Status),
		m.NightlyAmount,
		m.Currency,
		m.MaxGuests,
		reservation.CancellationPolicy(m.CancellationPolicy),
		m.NoFreeCancellation,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainListings(models []ListingModel, total int64) ([]*listing.Listing, int64, error) {
	listings := make([]*listing.Listing, len(models))
	for i, m := range models {
		l, err := toDomainListing(&m)
		if err != nil {
			return nil, 0, err
		}
		listings[i] = l
	}
	return listings, total, nil
}
