package reservation

import "time"

// Role identifies which side of the booking an actor is on.
type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
)

// DisputeAction is what the dispute guard allows at a point in time.
type DisputeAction string

const (
	// DisputeActionRaise means a new dispute may be opened now.
	DisputeActionRaise DisputeAction = "raise"
	// DisputeActionView means an existing dispute may be viewed (always
	// available once a dispute exists, regardless of window state).
	DisputeActionView DisputeAction = "view"
	// DisputeActionNone means no dispute action is available.
	DisputeActionNone DisputeAction = "none"
)

// DisputeEligibility returns the dispute action available on the reservation
// at the given instant. Raising requires that no dispute exists yet, and
// either the reservation was cancelled with check-out still in the future,
// or now falls within the post-stay window (checkOut, checkOut+7d].
//
// This guard only decides availability; opening the dispute is a separate
// operation that re-checks it.
func (r *Reservation) DisputeEligibility(now time.Time) DisputeAction {
	if r.dispute != nil {
		return DisputeActionView
	}

	if r.status == StatusCanceled && r.checkOut.After(now) {
		return DisputeActionRaise
	}
	if now.After(r.checkOut) && !now.After(r.checkOut.Add(DisputeWindow)) {
		return DisputeActionRaise
	}
	return DisputeActionNone
}

// CanCancel reports whether the given role may cancel the reservation at the
// given instant. A cancelled reservation can never be cancelled again. Hosts
// may cancel any non-cancelled reservation with no date-window restriction.
// Guests may cancel only when the listing allows free cancellation, the
// policy defines a window, and now is within it. Unknown policies yield no
// window, so ambiguous state fails closed.
func (r *Reservation) CanCancel(role Role, now time.Time) bool {
	if r.status == StatusCanceled {
		return false
	}
	if role == RoleHost {
		return true
	}
	if role != RoleGuest {
		return false
	}
	if r.noFreeCancellation {
		return false
	}
	cutoff := CancellableUntil(r.checkIn, r.cancellationPolicy, r.createdAt)
	if cutoff == nil {
		return false
	}
	return !now.After(*cutoff)
}

// CancellableUntil returns the reservation's cancellation cutoff under its
// snapshotted policy, or nil when no window is defined.
func (r *Reservation) CancellableUntil() *time.Time {
	return CancellableUntil(r.checkIn, r.cancellationPolicy, r.createdAt)
}
