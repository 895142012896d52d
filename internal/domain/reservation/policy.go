package reservation

import "time"

// CancellationPolicy is the named tier determining how close to check-in a
// guest may still cancel for a full refund. It is an attribute of the
// listing, snapshotted onto the reservation at booking time.
type CancellationPolicy string

const (
	PolicyFlexible CancellationPolicy = "Flexible"
	PolicyModerate CancellationPolicy = "Moderate"
	PolicyFirm     CancellationPolicy = "Firm"
	PolicyStrict   CancellationPolicy = "Strict"
	PolicyNone     CancellationPolicy = ""
)

const strictBookingGrace = 48 * time.Hour

// CancellableUntil returns the instant until which a guest may cancel under
// the given policy, or nil when the policy defines no cancellation window.
// An unrecognized policy degrades to nil (not cancellable) rather than an
// error, so ambiguous state fails closed.
func CancellableUntil(checkIn time.Time, policy CancellationPolicy, createdAt time.Time) *time.Time {
	var cutoff time.Time
	switch policy {
	case PolicyFlexible:
		cutoff = checkIn.AddDate(0, 0, -1)
	case PolicyModerate:
		cutoff = checkIn.AddDate(0, 0, -5)
	case PolicyFirm:
		cutoff = checkIn.AddDate(0, 0, -30)
	case PolicyStrict:
		graceEnd := createdAt.Add(strictBookingGrace)
		beforeCheckIn := checkIn.AddDate(0, 0, -14)
		cutoff = graceEnd
		if beforeCheckIn.Before(graceEnd) {
			cutoff = beforeCheckIn
		}
	default:
		return nil
	}
	return &cutoff
}

// IsValid returns true if the policy is one of the recognized tiers.
// The empty policy is not considered valid for listing creation.
func (p CancellationPolicy) IsValid() bool {
	switch p {
	case PolicyFlexible, PolicyModerate, PolicyFirm, PolicyStrict:
		return true
	}
	return false
}

// String returns the string representation of the policy.
func (p CancellationPolicy) String() string {
	return string(p)
}
