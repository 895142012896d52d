package reservation

import (
	"testing"

	"github.com/ceavinrufus/stay-backend/internal/domain/dispute"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReservation(t *testing.T) {
	res, err := NewReservation(
		uuid.New(), uuid.New(), uuid.New(),
		date(2024, 6, 10), date(2024, 6, 13),
		2, 150, "USDC", PolicyModerate, false,
	)
	require.NoError(t, err)

	assert.Equal(t, StatusCreated, res.Status())
	assert.Equal(t, int64(450), res.TotalAmount(), "three nights at 150")
	assert.Regexp(t, `^RSV-[A-Z2-9]{6}$`, res.ReservationNumber())
	assert.Equal(t, PolicyModerate, res.CancellationPolicy())
	assert.Nil(t, res.Dispute())
	assert.Equal(t, int64(1), res.Version())
}

func TestNewReservation_Validation(t *testing.T) {
	guestID, hostID, listingID := uuid.New(), uuid.New(), uuid.New()

	_, err := NewReservation(uuid.Nil, hostID, listingID, date(2024, 6, 10), date(2024, 6, 13), 2, 150, "USDC", PolicyFlexible, false)
	assert.Error(t, err, "missing guest")

	_, err = NewReservation(guestID, hostID, listingID, date(2024, 6, 13), date(2024, 6, 10), 2, 150, "USDC", PolicyFlexible, false)
	assert.Error(t, err, "check-in after check-out")

	_, err = NewReservation(guestID, hostID, listingID, date(2024, 6, 10), date(2024, 6, 13), 0, 150, "USDC", PolicyFlexible, false)
	assert.Error(t, err, "zero guests")

	_, err = NewReservation(guestID, hostID, listingID, date(2024, 6, 10), date(2024, 6, 13), 2, 0, "USDC", PolicyFlexible, false)
	assert.Error(t, err, "zero amount")
}

func TestReservation_PaymentLifecycle(t *testing.T) {
	res, err := NewReservation(
		uuid.New(), uuid.New(), uuid.New(),
		date(2024, 6, 10), date(2024, 6, 13),
		2, 150, "USDC", PolicyFlexible, false,
	)
	require.NoError(t, err)

	require.NoError(t, res.BeginPayment())
	assert.Equal(t, StatusWaitingPayment, res.Status())

	require.NoError(t, res.RecordPayment("0x2a", "0xabc123", false))
	assert.Equal(t, StatusPaidCompleted, res.Status())
	assert.Equal(t, "0x2a", res.OnChainBookingID())
	assert.Equal(t, "0xabc123", res.PaymentTxHash())

	require.NoError(t, res.BeginProcessing())
	require.NoError(t, res.Confirm())
	assert.Equal(t, StatusCompleted, res.Status())
}

func TestReservation_PartialThenFullPayment(t *testing.T) {
	res, err := NewReservation(
		uuid.New(), uuid.New(), uuid.New(),
		date(2024, 6, 10), date(2024, 6, 13),
		2, 150, "USDC", PolicyFlexible, false,
	)
	require.NoError(t, err)

	require.NoError(t, res.BeginPayment())
	require.NoError(t, res.RecordPayment("0x2a", "0xdef", true))
	assert.Equal(t, StatusPaidPartial, res.Status())

	require.NoError(t, res.RecordPayment("0x2a", "0xdef2", false))
	assert.Equal(t, StatusPaidCompleted, res.Status())
}

func TestReservation_CancelIsTerminalForActors(t *testing.T) {
	res, err := NewReservation(
		uuid.New(), uuid.New(), uuid.New(),
		date(2024, 6, 10), date(2024, 6, 13),
		2, 150, "USDC", PolicyFlexible, false,
	)
	require.NoError(t, err)

	by := uuid.New()
	require.NoError(t, res.Cancel(by, "plans changed"))
	assert.Equal(t, StatusCanceled, res.Status())
	require.NotNil(t, res.CancelledBy())
	assert.Equal(t, by, *res.CancelledBy())
	assert.Equal(t, "plans changed", res.CancelReason())
	assert.NotNil(t, res.CancelledAt())

	assert.Error(t, res.Cancel(by, "again"))
	assert.Error(t, res.Confirm())

	// Settlement may still drive the refund path.
	require.NoError(t, res.BeginRefund())
	require.NoError(t, res.FailRefund())
	require.NoError(t, res.BeginRefund())
	require.NoError(t, res.CompleteRefund())
	assert.Equal(t, StatusRefundCompleted, res.Status())
}

func TestReservation_AttachDisputeOnlyOnce(t *testing.T) {
	res, err := NewReservation(
		uuid.New(), uuid.New(), uuid.New(),
		date(2024, 6, 10), date(2024, 6, 13),
		2, 150, "USDC", PolicyFlexible, false,
	)
	require.NoError(t, err)

	require.NoError(t, res.AttachDispute(DisputeSummary{ID: uuid.New(), Status: dispute.StatusPending}))
	err = res.AttachDispute(DisputeSummary{ID: uuid.New(), Status: dispute.StatusPending})
	assert.Error(t, err, "at most one dispute per reservation")
}
