package dispute

import "fmt"

// Status represents the current state of a dispute. The string values are
// persisted and exchanged with clients as-is.
type Status string

const (
	StatusPending              Status = "PENDING"
	StatusUnderReview          Status = "UNDER_REVIEW"
	StatusResolvedFavorGuest   Status = "RESOLVED_FAVOR_GUEST"
	StatusResolvedFavorHost    Status = "RESOLVED_FAVOR_HOST"
	StatusResolvedCompromise   Status = "RESOLVED_COMPROMISE"
)

// validTransitions defines the state machine for dispute status transitions.
// Any RESOLVED_* status is terminal.
var validTransitions = map[Status][]Status{
	StatusPending:            {StatusUnderReview, StatusResolvedFavorGuest, StatusResolvedFavorHost, StatusResolvedCompromise},
	StatusUnderReview:        {StatusResolvedFavorGuest, StatusResolvedFavorHost, StatusResolvedCompromise},
	StatusResolvedFavorGuest: {},
	StatusResolvedFavorHost:  {},
	StatusResolvedCompromise: {},
}

// IsValid returns true if the status is a recognized dispute status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsResolved returns true for any of the terminal RESOLVED_* statuses.
func (s Status) IsResolved() bool {
	switch s {
	case StatusResolvedFavorGuest, StatusResolvedFavorHost, StatusResolvedCompromise:
		return true
	}
	return false
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid dispute status: %s", s)
	}
	return status, nil
}
