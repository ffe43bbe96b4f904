package money

import (
	"github.com/shopspring/decimal"

	"github.com/feirahub/feira-api/pkg/apperror"
)

// Amounts are stored as int64 cents everywhere (entities and database).
// decimal is used at the edges: validating client-supplied figures and
// computing the commission with explicit 2-dp rounding.

var centsFactor = decimal.NewFromInt(100)

// FromCents converts an amount in cents to a decimal value in currency units.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ToCents converts a decimal currency value to cents, rounding to 2 dp first.
func ToCents(d decimal.Decimal) int64 {
	return d.Round(2).Mul(centsFactor).IntPart()
}

// Float converts cents to a float64 for JSON display fields.
func Float(cents int64) float64 {
	f, _ := FromCents(cents).Float64()
	return f
}

// ParseAmount validates a client-supplied amount and returns it in cents.
// The amount must be strictly positive and carry at most 2 fraction digits.
func ParseAmount(value string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, apperror.NewInvalidAmountError("Amount is not a valid decimal number")
	}
	return ValidateAmount(d)
}

// ValidateAmount applies the same rules as ParseAmount to an already-parsed
// decimal.
func ValidateAmount(d decimal.Decimal) (int64, error) {
	if !d.IsPositive() {
		return 0, apperror.NewInvalidAmountError("Amount must be greater than zero")
	}
	if d.Exponent() < -2 {
		return 0, apperror.NewInvalidAmountError("Amount must have at most 2 decimal places")
	}
	return ToCents(d), nil
}

// Commission returns the platform fee in cents for the given sales total,
// rounded to 2 decimal places: round(sales x rate, 2).
func Commission(salesCents int64, rate decimal.Decimal) int64 {
	return ToCents(FromCents(salesCents).Mul(rate))
}
