package reservation

import "fmt"

// Status represents the payment/settlement lifecycle state of a reservation.
// The string values are persisted and exchanged with the settlement layer
// as-is; do not rename them.
type Status string

const (
	StatusCreated         Status = "ORDER_CREATED"
	StatusWaitingPayment  Status = "ORDER_WAITING_PAYMENT"
	StatusPaidPartial     Status = "ORDER_PAID_PARTIAL"
	StatusPaidCompleted   Status = "ORDER_PAID_COMPLETED"
	StatusProcessing      Status = "ORDER_PROCESSING"
	StatusCompleted       Status = "ORDER_COMPLETED"
	StatusCanceled        Status = "ORDER_CANCELED"
	StatusFailed          Status = "ORDER_FAIL"
	StatusRefundPending   Status = "REFUND_PENDING"
	StatusRefundCompleted Status = "REFUND_COMPLETED"
	StatusRefundFailed    Status = "REFUND_FAIL"
)

// validTransitions defines the state machine for reservation status
// transitions. Cancellation is terminal for guest/host actions; the refund
// statuses past ORDER_CANCELED are driven only by settlement events.
var validTransitions = map[Status][]Status{
	StatusCreated:         {StatusWaitingPayment, StatusCanceled, StatusFailed},
	StatusWaitingPayment:  {StatusPaidPartial, StatusPaidCompleted, StatusCanceled, StatusFailed},
	StatusPaidPartial:     {StatusPaidCompleted, StatusCanceled, StatusFailed},
	StatusPaidCompleted:   {StatusProcessing, StatusCompleted, StatusCanceled},
	StatusProcessing:      {StatusCompleted, StatusCanceled, StatusFailed},
	StatusCompleted:       {StatusCanceled, StatusRefundPending},
	StatusCanceled:        {StatusRefundPending},
	StatusFailed:          {},
	StatusRefundPending:   {StatusRefundCompleted, StatusRefundFailed},
	StatusRefundCompleted: {},
	StatusRefundFailed:    {StatusRefundPending},
}

// IsValid returns true if the status is a recognized reservation status.
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

// IsTerminal returns true if no further transitions are possible from this status.
func (s Status) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid reservation status: %s", s)
	}
	return status, nil
}
