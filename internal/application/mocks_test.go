package application

import (
	"context"
	"time"

	"github.com/ceavinrufus/stay-backend/internal/cache"
	"github.com/ceavinrufus/stay-backend/internal/domain/dispute"
	"github.com/ceavinrufus/stay-backend/internal/domain/listing"
	"github.com/ceavinrufus/stay-backend/internal/domain/reservation"
	"github.com/ceavinrufus/stay-backend/internal/events"
	"github.com/ceavinrufus/stay-backend/internal/identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockReservationRepo struct {
	mock.Mock
}

func (m *mockReservationRepo) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *mockReservationRepo) FindByNumber(ctx context.Context, number string) (*reservation.Reservation, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *mockReservationRepo) FindByOnChainBookingID(ctx context.Context, onChainBookingID string) (*reservation.Reservation, error) {
	args := m.Called(ctx, onChainBookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *mockReservationRepo) FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*reservation.Reservation, int64, error) {
	args := m.Called(ctx, guestID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*reservation.Reservation), args.Get(1).(int64), args.Error(2)
}

func (m *mockReservationRepo) FindByHostID(ctx context.Context, hostID uuid.UUID, page, limit int) ([]*reservation.Reservation, int64, error) {
	args := m.Called(ctx, hostID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*reservation.Reservation), args.Get(1).(int64), args.Error(2)
}

func (m *mockReservationRepo) ListAll(ctx context.Context, page, limit int) ([]*reservation.Reservation, int64, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*reservation.Reservation), args.Get(1).(int64), args.Error(2)
}

func (m *mockReservationRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *mockReservationRepo) Save(ctx context.Context, res *reservation.Reservation) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

func (m *mockReservationRepo) Update(ctx context.Context, res *reservation.Reservation) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

type mockDisputeRepo struct {
	mock.Mock
}

func (m *mockDisputeRepo) FindByID(ctx context.Context, id uuid.UUID) (*dispute.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispute.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) FindByReservationID(ctx context.Context, reservationID uuid.UUID) (*dispute.Dispute, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dispute.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) ListOpen(ctx context.Context, page, limit int) ([]*dispute.Dispute, int64, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*dispute.Dispute), args.Get(1).(int64), args.Error(2)
}

func (m *mockDisputeRepo) Save(ctx context.Context, d *dispute.Dispute) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *mockDisputeRepo) Update(ctx context.Context, d *dispute.Dispute) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

type mockListingRepo struct {
	mock.Mock
}

func (m *mockListingRepo) FindByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Listing), args.Error(1)
}

func (m *mockListingRepo) FindByHostID(ctx context.Context, hostID uuid.UUID, page, limit int) ([]*listing.Listing, int64, error) {
	args := m.Called(ctx, hostID, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*listing.Listing), args.Get(1).(int64), args.Error(2)
}

func (m *mockListingRepo) ListPublished(ctx context.Context, page, limit int) ([]*listing.Listing, int64, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*listing.Listing), args.Get(1).(int64), args.Error(2)
}

func (m *mockListingRepo) Save(ctx context.Context, l *listing.Listing) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *mockListingRepo) Update(ctx context.Context, l *listing.Listing) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(ctx context.Context, topic, key string, event events.CloudEvent) error {
	args := m.Called(ctx, topic, key, event)
	return args.Error(0)
}

type mockIdentityClient struct {
	mock.Mock
}

func (m *mockIdentityClient) RequestProof(ctx context.Context, userID string) (*identity.ProofRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.ProofRequest), args.Error(1)
}

func (m *mockIdentityClient) GetVerificationResult(ctx context.Context, requestID string) (*identity.VerificationResult, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.VerificationResult), args.Error(1)
}

type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) StoreVerificationSession(ctx context.Context, session cache.VerificationSession, ttl time.Duration) error {
	args := m.Called(ctx, session, ttl)
	return args.Error(0)
}

func (m *mockSessionStore) GetVerificationSession(ctx context.Context, id string) (*cache.VerificationSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cache.VerificationSession), args.Error(1)
}

func (m *mockSessionStore) DeleteVerificationSession(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
