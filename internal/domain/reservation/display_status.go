package reservation

import "time"

// DisplayStatus is the discrete label derived from a reservation's lifecycle
// status, dispute state, and stay dates. The empty string means the
// reservation is in a state with no user-facing label yet.
type DisplayStatus string

const (
	DisplayUpcoming   DisplayStatus = "Upcoming"
	DisplayCheckedIn  DisplayStatus = "Checked-in"
	DisplayCheckedOut DisplayStatus = "Checked-out"
	DisplayCompleted  DisplayStatus = "Completed"
	DisplayDisputed   DisplayStatus = "Disputed"
	DisplayResolved   DisplayStatus = "Resolved"
	DisplayCancelled  DisplayStatus = "Cancelled"
	DisplayPending    DisplayStatus = "Pending"
	DisplayUnpaid     DisplayStatus = "Unpaid"
	DisplayNone       DisplayStatus = ""
)

// DisputeWindow is the period after check-out during which a dispute may
// still be raised. Once it elapses without a dispute the reservation reaches
// the terminal Completed label.
const DisputeWindow = 7 * 24 * time.Hour

// DisplayStatus derives the display label for the reservation at the given
// instant. The branch order is load-bearing: dispute state overrides
// temporal state, and the post-checkout grace period is checked before
// temporal bucketing so a dispute-free reservation eventually becomes
// Completed instead of staying Checked-out forever.
func (r *Reservation) DisplayStatus(now time.Time) DisplayStatus {
	if r.status != StatusCompleted {
		switch r.status {
		case StatusCanceled:
			return DisplayCancelled
		case StatusProcessing:
			return DisplayPending
		case StatusWaitingPayment:
			return DisplayUnpaid
		default:
			return DisplayNone
		}
	}

	if r.dispute != nil {
		if r.dispute.Status.IsResolved() {
			return DisplayResolved
		}
		return DisplayDisputed
	}

	if now.After(r.checkOut.Add(DisputeWindow)) {
		return DisplayCompleted
	}
	if r.checkIn.After(now) {
		return DisplayUpcoming
	}
	if r.checkOut.Before(now) {
		return DisplayCheckedOut
	}
	return DisplayCheckedIn
}
