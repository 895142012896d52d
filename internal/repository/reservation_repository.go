package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ceavinrufus/stay-backend/internal/domain"
	"github.com/ceavinrufus/stay-backend/internal/domain/dispute"
	"github.com/ceavinrufus/stay-backend/internal/domain/reservation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReservationModel is the GORM model for the reservations table.
type ReservationModel struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ReservationNumber  string     `gorm:"uniqueIndex;not null;size:20"`
	GuestID            uuid.UUID  `gorm:"type:uuid;index;not null"`
	HostID             uuid.UUID  `gorm:"type:uuid;index;not null"`
	ListingID          uuid.UUID  `gorm:"type:uuid;index;not null"`
	Status             string     `gorm:"not null;size:30;index"`
	CheckIn            time.Time  `gorm:"not null"`
	CheckOut           time.Time  `gorm:"not null"`
	GuestCount         int        `gorm:"not null"`
	NightlyAmount      int64      `gorm:"not null"`
	TotalAmount        int64      `gorm:"not null"`
	Currency           string     `gorm:"not null;size:10"`
	CancellationPolicy string     `gorm:"size:20"`
	NoFreeCancellation bool       `gorm:"not null;default:false"`
	OnChainBookingID   string     `gorm:"size:80;index"`
	PaymentTxHash      string     `gorm:"size:80"`
	CancelledBy        *uuid.UUID `gorm:"type:uuid"`
	CancelReason       string     `gorm:"size:500"`
	CancelledAt        *time.Time `gorm:""`
	Version            int64      `gorm:"not null;default:1"`
	CreatedAt          time.Time  `gorm:"not null"`
	UpdatedAt          time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ReservationModel) TableName() string {
	return "reservations"
}

// GormReservationRepository is the GORM-based implementation of reservation.Repository.
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository.
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// FindByID retrieves a reservation by its unique identifier.
func (r *GormReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var model ReservationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Reservation", id.String())
		}
		return nil, fmt.Errorf("failed to find reservation by ID: %w", err)
	}
	return r.toDomainReservation(ctx, &model)
}

// FindByNumber retrieves a reservation by its human-readable number.
func (r *GormReservationRepository) FindByNumber(ctx context.Context, number string) (*reservation.Reservation, error) {
	var model ReservationModel
	if err := r.db.WithContext(ctx).Where("reservation_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Reservation", number)
		}
		return nil, fmt.Errorf("failed to find reservation by number: %w", err)
	}
	return r.toDomainReservation(ctx, &model)
}

// FindByOnChainBookingID retrieves a reservation by the escrow contract's booking identifier.
func (r *GormReservationRepository) FindByOnChainBookingID(ctx context.Context, onChainBookingID string) (*reservation.Reservation, error) {
	var model ReservationModel
	if err := r.db.WithContext(ctx).Where("on_chain_booking_id = ?", onChainBookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Reservation", onChainBookingID)
		}
		return nil, fmt.Errorf("failed to find reservation by on-chain booking ID: %w", err)
	}
	return r.toDomainReservation(ctx, &model)
}

// FindByGuestID retrieves reservations booked by a guest with pagination.
func (r *GormReservationRepository) FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*reservation.Reservation, int64, error) {
	return r.findPaginated(ctx, "guest_id = ?", guestID, page, limit)
}

// FindByHostID retrieves reservations on a host's listings with pagination.
func (r *GormReservationRepository) FindByHostID(ctx context.Context, hostID uuid.UUID, page, limit int) ([]*reservation.Reservation, int64, error) {
	return r.findPaginated(ctx, "host_id = ?", hostID, page, limit)
}

func (r *GormReservationRepository) findPaginated(ctx context.Context, query string, arg interface{}, page, limit int) ([]*reservation.Reservation, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ReservationModel{}).Where(query, arg).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	var models []ReservationModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where(query, arg).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find reservations: %w", err)
	}

	return r.toDomainReservations(ctx, models, total)
}

// ListAll retrieves all reservations with pagination (admin).
func (r *GormReservationRepository) ListAll(ctx context.Context, page, limit int) ([]*reservation.Reservation, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ReservationModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	var models []ReservationModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}

	return r.toDomainReservations(ctx, models, total)
}

// CountByStatus returns reservation counts grouped by status (admin).
func (r *GormReservationRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&ReservationModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new reservation.
func (r *GormReservationRepository) Save(ctx context.Context, res *reservation.Reservation) error {
	model := toReservationModel(res)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	return nil
}

// Update persists changes to an existing reservation with optimistic locking.
func (r *GormReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	model := toReservationModel(res)

	// Only update if the version matches (current version - 1, since
	// IncrementVersion was called before Update).
	expectedVersion := res.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&ReservationModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":              model.Status,
			"on_chain_booking_id": model.OnChainBookingID,
			"payment_tx_hash":     model.PaymentTxHash,
			"cancelled_by":        model.CancelledBy,
			"cancel_reason":       model.CancelReason,
			"cancelled_at":        model.CancelledAt,
			"version":             model.Version,
			"updated_at":          model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update reservation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("reservation was modified by another transaction")
	}
	return nil
}

// --- Conversion helpers ---

func toReservationModel(res *reservation.Reservation) *ReservationModel {
	return &ReservationModel{
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
		CancelledBy:        res.CancelledBy(),
		CancelReason:       res.CancelReason(),
		CancelledAt:        res.CancelledAt(),
		Version:            res.Version(),
		CreatedAt:          res.CreatedAt(),
		UpdatedAt:          res.UpdatedAt(),
	}
}

// toDomainReservation rebuilds the aggregate, joining in the dispute summary
// so the eligibility guards see the 0..1 dispute relationship.
func (r *GormReservationRepository) toDomainReservation(ctx context.Context, m *ReservationModel) (*reservation.Reservation, error) {
	status, err := reservation.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	summary, err := r.loadDisputeSummary(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	return reservation.ReconstructReservation(
		m.ID,
		m.ReservationNumber,
		m.GuestID,
		m.HostID,
		m.ListingID,
		status,
		m.CheckIn,
		m.CheckOut,
		m.GuestCount,
		m.NightlyAmount,
		m.TotalAmount,
		m.Currency,
		reservation.CancellationPolicy(m.CancellationPolicy),
		m.NoFreeCancellation,
		m.OnChainBookingID,
		m.PaymentTxHash,
		summary,
		m.CancelledBy,
		m.CancelReason,
		m.CancelledAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func (r *GormReservationRepository) toDomainReservations(ctx context.Context, models []ReservationModel, total int64) ([]*reservation.Reservation, int64, error) {
	reservations := make([]*reservation.Reservation, len(models))
	for i, m := range models {
		res, err := r.toDomainReservation(ctx, &m)
		if err != nil {
			return nil, 0, err
		}
		reservations[i] = res
	}
	return reservations, total, nil
}

func (r *GormReservationRepository) loadDisputeSummary(ctx context.Context, reservationID uuid.UUID) (*reservation.DisputeSummary, error) {
	var model DisputeModel
	err := r.db.WithContext(ctx).
		Select("id", "status").
		Where("reservation_id = ?", reservationID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load dispute summary: %w", err)
	}

	status, err := dispute.ParseStatus(model.Status)
	if err != nil {
		return nil, err
	}
	return &reservation.DisputeSummary{ID: model.ID, Status: status}, nil
}
