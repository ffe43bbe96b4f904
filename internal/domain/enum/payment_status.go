package enum

import (
	"database/sql/driver"
	"fmt"
)

// PaymentStatus is the advisory payment sub-state of a pix order. It informs
// the merchant UI and the receipt workflow; it never gates the fulfillment
// state machine directly.
type PaymentStatus string

const (
	PaymentStatusAwaitingPayment     PaymentStatus = "awaiting_payment"
	PaymentStatusPendingConfirmation PaymentStatus = "pending_confirmation"
	PaymentStatusConfirmed           PaymentStatus = "confirmed"
	PaymentStatusRejected            PaymentStatus = "rejected"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusAwaitingPayment:     {PaymentStatusPendingConfirmation},
	PaymentStatusPendingConfirmation: {PaymentStatusConfirmed, PaymentStatusRejected},
	PaymentStatusConfirmed:           {},
	PaymentStatusRejected:            {},
}

func (s PaymentStatus) String() string {
	return string(s)
}

// Valid reports whether the status is a known payment sub-state
func (s PaymentStatus) Valid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

// CanTransitionTo reports whether an edge from s to target exists
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, edge := range paymentTransitions[s] {
		if edge == target {
			return true
		}
	}
	return false
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = PaymentStatus(v)
	case []byte:
		*s = PaymentStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into PaymentStatus", value)
	}
	return nil
}
