package enum

import (
	"database/sql/driver"
	"fmt"
)

// ClaimStatus is the resolution state of a merchant's proof-of-payment claim
type ClaimStatus string

const (
	ClaimStatusPending   ClaimStatus = "pending"
	ClaimStatusConfirmed ClaimStatus = "confirmed"
	ClaimStatusRejected  ClaimStatus = "rejected"
)

func (s ClaimStatus) String() string {
	return string(s)
}

// IsResolved reports whether the claim has left the pending state
func (s ClaimStatus) IsResolved() bool {
	return s == ClaimStatusConfirmed || s == ClaimStatusRejected
}

func (s ClaimStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *ClaimStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ClaimStatusPending
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = ClaimStatus(v)
	case []byte:
		*s = ClaimStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into ClaimStatus", value)
	}
	return nil
}
