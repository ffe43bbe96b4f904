package enum

import (
	"database/sql/driver"
	"fmt"
)

// CommissionStatus is the display status of a commission period. It is
// cosmetic: every read path recomputes it from the balance engine and open
// claims, never from the stored column alone.
type CommissionStatus string

const (
	CommissionStatusPending              CommissionStatus = "pending"
	CommissionStatusAwaitingConfirmation CommissionStatus = "awaiting_confirmation"
	CommissionStatusPaid                 CommissionStatus = "paid"
)

func (s CommissionStatus) String() string {
	return string(s)
}

func (s CommissionStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *CommissionStatus) Scan(value interface{}) error {
	if value == nil {
		*s = CommissionStatusPending
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = CommissionStatus(v)
	case []byte:
		*s = CommissionStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into CommissionStatus", value)
	}
	return nil
}
