package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ceavinrufus/stay-backend/internal/domain"
	"github.com/ceavinrufus/stay-backend/internal/domain/dispute"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DisputeModel is the GORM model for the disputes table. The unique index on
// reservation_id enforces the at-most-one-dispute invariant in the database.
type DisputeModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ReservationID uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	RaisedBy      uuid.UUID       `gorm:"type:uuid;not null"`
	Status        string          `gorm:"not null;size:30;index"`
	Reason        string          `gorm:"not null;size:1000"`
	EvidenceURLs  json.RawMessage `gorm:"type:jsonb"`
	Resolution    string          `gorm:"size:1000"`
	ResolvedAt    *time.Time      `gorm:""`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (DisputeModel) TableName() string {
	return "disputes"
}

// GormDisputeRepository is the GORM-based implementation of dispute.Repository.
type GormDisputeRepository struct {
	db *gorm.DB
}

// NewGormDisputeRepository creates a new GormDisputeRepository.
func NewGormDisputeRepository(db *gorm.DB) *GormDisputeRepository {
	return &GormDisputeRepository{db: db}
}

// FindByID retrieves a dispute by its unique identifier.
func (r *GormDisputeRepository) FindByID(ctx context.Context, id uuid.UUID) (*dispute.Dispute, error) {
	var model DisputeModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Dispute", id.String())
		}
		return nil, fmt.Errorf("failed to find dispute by ID: %w", err)
	}
	return toDomainDispute(&model)
}

// FindByReservationID retrieves the dispute for a reservation.
func (r *GormDisputeRepository) FindByReservationID(ctx context.Context, reservationID uuid.UUID) (*dispute.Dispute, error) {
	var model DisputeModel
	if err := r.db.WithContext(ctx).Where("reservation_id = ?", reservationID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Dispute", "reservation "+reservationID.String())
		}
		return nil, fmt.Errorf("failed to find dispute by reservation ID: %w", err)
	}
	return toDomainDispute(&model)
}

// ListOpen retrieves unresolved disputes with pagination.
func (r *GormDisputeRepository) ListOpen(ctx context.Context, page, limit int) ([]*dispute.Dispute, int64, error) {
	openStatuses := []string{string(dispute.StatusPending), string(dispute.StatusUnderReview)}

	var total int64
	if err := r.db.WithContext(ctx).Model(&DisputeModel{}).Where("status IN ?", openStatuses).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count open disputes: %w", err)
	}

	var models []DisputeModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("status IN ?", openStatuses).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list open disputes: %w", err)
	}

	disputes := make([]*dispute.Dispute, len(models))
	for i, m := range models {
		d, err := toDomainDispute(&m)
		if err != nil {
			return nil, 0, err
		}
		disputes[i] = d
	}
	return disputes, total, nil
}

// Save persists a new dispute.
func (r *GormDisputeRepository) Save(ctx context.Context, d *dispute.Dispute) error {
	model, err := toDisputeModel(d)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("reservation already has a dispute")
		}
		return fmt.Errorf("failed to save dispute: %w", err)
	}
	return nil
}

// Update persists changes to an existing dispute.
func (r *GormDisputeRepository) Update(ctx context.Context, d *dispute.Dispute) error {
	model, err := toDisputeModel(d)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&DisputeModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":      model.Status,
			"resolution":  model.Resolution,
			"resolved_at": model.ResolvedAt,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update dispute: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Dispute", model.ID.String())
	}
	return nil
}

// --- Conversion helpers ---

func toDisputeModel(d *dispute.Dispute) (*DisputeModel, error) {
	evidence, err := json.Marshal(d.EvidenceURLs())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal evidence URLs: %w", err)
	}
	return &DisputeModel{
		ID:            d.ID(),
		ReservationID: d.ReservationID(),
		RaisedBy:      d.RaisedBy(),
		Status:        string(d.Status()),
		Reason:        d.Reason(),
		EvidenceURLs:  evidence,
		Resolution:    d.Resolution(),
		ResolvedAt:    d.ResolvedAt(),
		CreatedAt:     d.CreatedAt(),
		UpdatedAt:     d.UpdatedAt(),
	}, nil
}

func toDomainDispute(m *DisputeModel) (*dispute.Dispute, error) {
	status, err := dispute.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	var evidence []string
	if len(m.EvidenceURLs) > 0 {
		if err := json.Unmarshal(m.EvidenceURLs, &evidence); err != nil {
			return nil, fmt.Errorf("failed to unmarshal evidence URLs: %w", err)
		}
	}

	return dispute.ReconstructDispute(
		m.ID,
		m.ReservationID,
		m.RaisedBy,
		status,
		m.Reason,
		evidence,
		m.Resolution,
		m.ResolvedAt,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
