package application

import (
	"context"
	"testing"
	"time"

	"github.com/ceavinrufus/stay-backend/internal/domain"
	"github.com/ceavinrufus/stay-backend/internal/domain/listing"
	"github.com/ceavinrufus/stay-backend/internal/domain/reservation"
	"github.com/ceavinrufus/stay-backend/internal/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type reservationFixture struct {
	id         uuid.UUID
	guestID    uuid.UUID
	hostID     uuid.UUID
	status     reservation.Status
	checkIn    time.Time
	checkOut   time.Time
	policy     reservation.CancellationPolicy
	noFree     bool
	createdAt  time.Time
	disputedAs *reservation.DisputeSummary
}

func buildReservation(f reservationFixture) *reservation.Reservation {
	if f.id == uuid.Nil {
		f.id = uuid.New()
	}
	if f.guestID == uuid.Nil {
		f.guestID = uuid.New()
	}
	if f.hostID == uuid.Nil {
		f.hostID = uuid.New()
	}
	if f.status == "" {
		f.status = reservation.StatusCompleted
	}
	if f.checkIn.IsZero() {
		f.checkIn = time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)
	}
	if f.checkOut.IsZero() {
		f.checkOut = f.checkIn.AddDate(0, 0, 3)
	}
	if f.policy == "" {
		f.policy = reservation.PolicyFlexible
	}
	if f.createdAt.IsZero() {
		f.createdAt = f.checkIn.AddDate(0, 0, -60)
	}
	return reservation.ReconstructReservation(
		f.id, "RSV-TEST42", f.guestID, f.hostID, uuid.New(),
		f.status, f.checkIn, f.checkOut, 2, 100, 300, "USDC",
		f.policy, f.noFree, "", "", f.disputedAs,
		nil, "", nil, 1, f.createdAt, f.createdAt,
	)
}

func buildPublishedListing(hostID uuid.UUID) *listing.Listing {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return listing.ReconstructListing(
		uuid.New(), hostID, "Seaside flat", "Two rooms near the harbor",
		listing.Address{Line1: "1 Harbor Rd", City: "Lisbon", Country: "PT"},
		listing.StatusListed, 100, "USDC", 4,
		reservation.PolicyModerate, false, now, now,
	)
}

func newTestReservationService(repo *mockReservationRepo, listings *mockListingRepo, pub *mockPublisher) *ReservationService {
	svc := NewReservationService(repo, listings, pub, zap.NewNop())
	svc.clock = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateReservation(t *testing.T) {
	ctx := context.Background()
	guestID := uuid.New()

	t.Run("books a published listing and publishes an event", func(t *testing.T) {
		repo := new(mockReservationRepo)
		listings := new(mockListingRepo)
		pub := new(mockPublisher)
		svc := newTestReservationService(repo, listings, pub)

		l := buildPublishedListing(uuid.New())
		listings.On("FindByID", ctx, l.ID()).Return(l, nil)
		repo.On("Save", ctx, mock.Anything).Return(nil)
		pub.On("PublishEvent", ctx, events.TopicReservationEvents, mock.Anything, mock.Anything).Return(nil)

		dto, err := svc.CreateReservation(ctx, guestID, CreateReservationRequest{
			ListingID:  l.ID(),
			CheckIn:    time.Date(2024, 7, 1, 15, 0, 0, 0, time.UTC),
			CheckOut:   time.Date(2024, 7, 4, 11, 0, 0, 0, time.UTC),
			GuestCount: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, "ORDER_CREATED", dto.Status)
		assert.Equal(t, guestID, dto.GuestID)
		assert.Equal(t, "Moderate", dto.CancellationPolicy)
		assert.Contains(t, dto.ReservationNumber, "RSV-")
		repo.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("rejects booking an unpublished listing", func(t *testing.T) {
		repo := new(mockReservationRepo)
		listings := new(mockListingRepo)
		pub := new(mockPublisher)
		svc := newTestReservationService(repo, listings, pub)

		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		draft := listing.ReconstructListing(
			uuid.New(), uuid.New(), "Draft", "",
			listing.Address{Line1: "2 Side St", City: "Lisbon", Country: "PT"},
			listing.StatusDraft, 100, "USDC", 4,
			reservation.PolicyFlexible, false, now, now,
		)
		listings.On("FindByID", ctx, draft.ID()).Return(draft, nil)

		_, err := svc.CreateReservation(ctx, guestID, CreateReservationRequest{
			ListingID:  draft.ID(),
			CheckIn:    time.Date(2024, 7, 1, 15, 0, 0, 0, time.UTC),
			CheckOut:   time.Date(2024, 7, 4, 11, 0, 0, 0, time.UTC),
			GuestCount: 2,
		})
		require.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects hosts booking their own listing", func(t *testing.T) {
		repo := new(mockReservationRepo)
		listings := new(mockListingRepo)
		pub := new(mockPublisher)
		svc := newTestReservationService(repo, listings, pub)

		l := buildPublishedListing(guestID)
		listings.On("FindByID", ctx, l.ID()).Return(l, nil)

		_, err := svc.CreateReservation(ctx, guestID, CreateReservationRequest{
			ListingID:  l.ID(),
			CheckIn:    time.Date(2024, 7, 1, 15, 0, 0, 0, time.UTC),
			CheckOut:   time.Date(2024, 7, 4, 11, 0, 0, 0, time.UTC),
			GuestCount: 2,
		})
		require.Error(t, err)
	})

	t.Run("rejects guest counts above the listing cap", func(t *testing.T) {
		repo := new(mockReservationRepo)
		listings := new(mockListingRepo)
		pub := new(mockPublisher)
		svc := newTestReservationService(repo, listings, pub)

		l := buildPublishedListing(uuid.New())
		listings.On("FindByID", ctx, l.ID()).Return(l, nil)

		_, err := svc.CreateReservation(ctx, guestID, CreateReservationRequest{
			ListingID:  l.ID(),
			CheckIn:    time.Date(2024, 7, 1, 15, 0, 0, 0, time.UTC),
			CheckOut:   time.Date(2024, 7, 4, 11, 0, 0, 0, time.UTC),
			GuestCount: 9,
		})
		require.Error(t, err)
	})
}

func TestCancelReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("guest cancels inside the policy window", func(t *testing.T) {
		repo := new(mockReservationRepo)
		pub := new(mockPublisher)
		svc := newTestReservationService(repo, new(mockListingRepo), pub)

		guestID := uuid.New()
		// Flexible policy, check-in 2024-07-01, now 2024-06-01: well inside.
		res := buildReservation(reservationFixture{
			guestID:  guestID,
			status:   reservation.StatusPaidCompleted,
			checkIn:  time.Date(2024, 7, 1, 15, 0, 0, 0, time.UTC),
			checkOut: time.Date(2024, 7, 4, 11, 0, 0, 0, time.UTC),
			policy:   reservation.PolicyFlexible,
		})
		repo.On("FindByID", ctx, res.ID()).Return(res, nil)
		repo.On("Update", ctx, res).Return(nil)
		pub.On("PublishEvent", ctx, events.TopicReservationEvents, mock.Anything, mock.Anything).Return(nil)

		dto, err := svc.CancelReservation(ctx, res.ID(), guestID, "guest", "change of plans")
		require.NoError(t, err)
		assert.Equal(t, "ORDER_CANCELED", dto.Status)
		assert.Equal(t, &guestID, dto.CancelledBy)
		repo.AssertExpectations(t)
	})

	t.Run("guest is blocked after the cutoff", func(t *testing.T) {
		repo := new(mockReservationRepo)
		svc := newTestReservationService(repo, new(mockListingRepo), new(mockPublisher))

		guestID := uuid.New()
		// Strict policy, created long ago: cutoff passed months before now.
		res := buildReservation(reservationFixture{
			guestID:   guestID,
			status:    reservation.StatusPaidCompleted,
			checkIn:   time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC),
			policy:    reservation.PolicyStrict,
			createdAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		repo.On("FindByID", ctx, res.ID()).Return(res, nil)

		_, err := svc.CancelReservation(ctx, res.ID(), guestID, "guest", "too late")
		require.Error(t, err)
		var domainErr *domain.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeForbidden, domainErr.Code)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("host cancels with no window restriction", func(t *testing.T) {
		repo := new(mockReservationRepo)
		pub := new(mockPublisher)
		svc := newTestReservationService(repo, new(mockListingRepo), pub)

		hostID := uuid.New()
		res := buildReservation(reservationFixture{
			hostID:    hostID,
			status:    reservation.StatusPaidCompleted,
			checkIn:   time.Date(2024, 6, 2, 15, 0, 0, 0, time.UTC),
			policy:    reservation.PolicyStrict,
			noFree:    true,
			createdAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		repo.On("FindByID", ctx, res.ID()).Return(res, nil)
		repo.On("Update", ctx, res).Return(nil)
		pub.On("PublishEvent", ctx, events.TopicReservationEvents, mock.Anything, mock.Anything).Return(nil)

		dto, err := svc.CancelReservation(ctx, res.ID(), hostID, "host", "maintenance issue")
		require.NoError(t, err)
		assert.Equal(t, "ORDER_CANCELED", dto.Status)
	})

	t.Run("strangers cannot cancel", func(t *testing.T) {
		repo := new(mockReservationRepo)
		svc := newTestReservationService(repo, new(mockListingRepo), new(mockPublisher))

		res := buildReservation(reservationFixture{status: reservation.StatusPaidCompleted})
		repo.On("FindByID", ctx, res.ID()).Return(res, nil)

		_, err := svc.CancelReservation(ctx, res.ID(), uuid.New(), "guest", "not mine")
		require.Error(t, err)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestApplyPaymentInitiated(t *testing.T) {
	ctx := context.Background()

	t.Run("full payment moves the reservation into processing", func(t *testing.T) {
		repo := new(mockReservationRepo)
		svc := newTestReservationService(repo, new(mockListingRepo), new(mockPublisher))

		res := buildReservation(reservationFixture{status: reservation.StatusCreated})
		repo.On("FindByID", ctx, res.ID()).Return(res, nil)
		repo.On("Update", ctx, res).Return(nil)

		err := svc.ApplyPaymentInitiated(ctx, events.PaymentInitiatedEvent{
			ReservationID:    res.ID(),
			OnChainBookingID: "0xbeef",
			TxHash:           "0xabc",
			Partial:          false,
		})
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusProcessing, res.Status())
		assert.Equal(t, "0xbeef", res.OnChainBookingID())
		assert.Equal(t, int64(2), res.Version())
	})

	t.Run("partial payment stays awaiting the remainder", func(t *testing.T) {
		repo := new(mockReservationRepo)
		svc := newTestReservationService(repo, new(mockListingRepo), new(mockPublisher))

		res := buildReservation(reservationFixture{status: reservation.StatusWaitingPayment})
		repo.On("FindByID", ctx, res.ID()).Return(res, nil)
		repo.On("Update", ctx, res).Return(nil)

		err := svc.ApplyPaymentInitiated(ctx, events.PaymentInitiatedEvent{
			ReservationID:    res.ID(),
			OnChainBookingID: "0xbeef",
			TxHash:           "0xabc",
			Partial:          true,
		})
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusPaidPartial, res.Status())
	})
}

func TestConfirmReservation(t *testing.T) {
	ctx := context.Background()
	repo := new(mockReservationRepo)
	pub := new(mockPublisher)
	svc := newTestReservationService(repo, new(mockListingRepo), pub)

	res := buildReservation(reservationFixture{status: reservation.StatusProcessing})
	repo.On("FindByID", ctx, res.ID()).Return(res, nil)
	repo.On("Update", ctx, res).Return(nil)
	pub.On("PublishEvent", ctx, events.TopicReservationEvents, res.ID().String(), mock.Anything).Return(nil)

	require.NoError(t, svc.ConfirmReservation(ctx, res.ID()))
	assert.Equal(t, reservation.StatusCompleted, res.Status())
	pub.AssertExpectations(t)
}

func TestApplyRefundSettled(t *testing.T) {
	ctx := context.Background()

	t.Run("successful refund of a cancelled reservation", func(t *testing.T) {
		repo := new(mockReservationRepo)
		svc := newTestReservationService(repo, new(mockListingRepo), new(mockPublisher))

		res := buildReservation(reservationFixture{status: reservation.StatusCanceled})
		repo.On("FindByID", ctx, res.ID()).Return(res, nil)
		repo.On("Update", ctx, res).Return(nil)

		err := svc.ApplyRefundSettled(ctx, events.RefundSettledEvent{
			ReservationID: res.ID(),
			Succeeded:     true,
		})
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusRefundCompleted, res.Status())
	})

	t.Run("failed refund stays retryable", func(t *testing.T) {
		repo := new(mockReservationRepo)
		svc := newTestReservationService(repo, new(mockListingRepo), new(mockPublisher))

		res := buildReservation(reservationFixture{status: reservation.StatusRefundPending})
		repo.On("FindByID", ctx, res.ID()).Return(res, nil)
		repo.On("Update", ctx, res).Return(nil)

		err := svc.ApplyRefundSettled(ctx, events.RefundSettledEvent{
			ReservationID: res.ID(),
			Succeeded:     false,
		})
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusRefundFailed, res.Status())
	})
}

func TestEligibility(t *testing.T) {
	ctx := context.Background()
	repo := new(mockReservationRepo)
	svc := newTestReservationService(repo, new(mockListingRepo), new(mockPublisher))

	guestID := uuid.New()
	// Completed stay ending 2024-05-30; now is 2024-06-01, inside the
	// post-stay window, so raising a dispute is available.
	res := buildReservation(reservationFixture{
		guestID:  guestID,
		status:   reservation.StatusCompleted,
		checkIn:  time.Date(2024, 5, 27, 15, 0, 0, 0, time.UTC),
		checkOut: time.Date(2024, 5, 30, 11, 0, 0, 0, time.UTC),
		policy:   reservation.PolicyFlexible,
	})
	repo.On("FindByID", ctx, res.ID()).Return(res, nil)

	dto, err := svc.Eligibility(ctx, res.ID(), guestID, "guest")
	require.NoError(t, err)
	assert.Equal(t, "Checked-out", dto.DisplayStatus)
	assert.Equal(t, "raise", dto.DisputeAction)
	assert.False(t, dto.CanCancel)
	require.NotNil(t, dto.CancellableUntil)
	assert.Equal(t, time.Date(2024, 5, 26, 15, 0, 0, 0, time.UTC), *dto.CancellableUntil)
}

func TestGetReservationAuthorization(t *testing.T) {
	ctx := context.Background()
	repo := new(mockReservationRepo)
	svc := newTestReservationService(repo, new(mockListingRepo), new(mockPublisher))

	res := buildReservation(reservationFixture{})
	repo.On("FindByID", ctx, res.ID()).Return(res, nil)

	_, err := svc.GetReservation(ctx, res.ID(), uuid.New(), false)
	require.Error(t, err)

	dto, err := svc.GetReservation(ctx, res.ID(), uuid.New(), true)
	require.NoError(t, err)
	assert.Equal(t, res.ID(), dto.ID)
}
