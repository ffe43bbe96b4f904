package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feirahub/feira-api/pkg/apperror"
)

var sevenPercent = decimal.NewFromFloat(0.07)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCents int64
		wantKind  string
	}{
		{name: "whole amount", input: "100", wantCents: 10000},
		{name: "two decimals", input: "7.00", wantCents: 700},
		{name: "one decimal", input: "3.5", wantCents: 350},
		{name: "zero", input: "0", wantKind: apperror.KindInvalidAmount},
		{name: "negative", input: "-5.00", wantKind: apperror.KindInvalidAmount},
		{name: "three decimals", input: "1.999", wantKind: apperror.KindInvalidAmount},
		{name: "garbage", input: "ten", wantKind: apperror.KindInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cents, err := ParseAmount(tt.input)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.True(t, apperror.IsKind(err, tt.wantKind))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCents, cents)
		})
	}
}

func TestCommission(t *testing.T) {
	// 100.00 x 7% = 7.00
	assert.Equal(t, int64(700), Commission(10000, sevenPercent))
	// 10.50 x 7% = 0.735 -> 0.74 (round half up to 2 dp)
	assert.Equal(t, int64(74), Commission(1050, sevenPercent))
	// zero sales, zero fee
	assert.Equal(t, int64(0), Commission(0, sevenPercent))
}

func TestRoundTrip(t *testing.T) {
	d := FromCents(12345)
	assert.Equal(t, "123.45", d.StringFixed(2))
	assert.Equal(t, int64(12345), ToCents(d))
	assert.Equal(t, 123.45, Float(12345))
}
