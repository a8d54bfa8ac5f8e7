package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestParsePercent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "10", "10"},
		{"fractional", "7.5", "7.5"},
		{"trimmed", "  25  ", "25"},
		{"zero", "0", "0"},
		{"hundred", "100", "100"},
		{"over hundred clamps", "120", "0"},
		{"negative clamps", "-5", "0"},
		{"garbage clamps", "ten", "0"},
		{"empty clamps", "", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePercent(tt.raw)
			assert.True(t, got.Equal(d(tt.want)), "got %s", got)
		})
	}
}

func TestComputeDiscountAndChange(t *testing.T) {
	totals := Compute(d("150.00"), d("10"), d("200.00"))

	assert.True(t, totals.DiscountAmount.Equal(d("15.00")))
	assert.True(t, totals.Total.Equal(d("135.00")))
	assert.True(t, totals.Change.Equal(d("65.00")))
	assert.True(t, totals.AmountDue.IsZero())
	assert.True(t, totals.Sufficient())
}

func TestComputeNoPaymentYet(t *testing.T) {
	totals := Compute(d("100.00"), d("0"), d("0"))

	assert.True(t, totals.Change.IsZero())
	assert.True(t, totals.AmountDue.IsZero())
	assert.False(t, totals.Sufficient())
}

func TestComputeShortPaymentReportsAmountDue(t *testing.T) {
	totals := Compute(d("50.00"), d("0"), d("40.00"))

	assert.True(t, totals.AmountDue.Equal(d("10.00")))
	assert.True(t, totals.Change.IsZero())
	assert.False(t, totals.Sufficient())
}

func TestComputeExactPayment(t *testing.T) {
	totals := Compute(d("50.00"), d("0"), d("50.00"))

	assert.True(t, totals.Change.IsZero())
	assert.True(t, totals.Sufficient())
}

func TestComputeIsIdempotent(t *testing.T) {
	first := Compute(d("350.00"), d("7.5"), d("400.00"))
	second := Compute(d("350.00"), d("7.5"), d("400.00"))

	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.DiscountAmount.Equal(second.DiscountAmount))
	assert.True(t, first.Change.Equal(second.Change))
}

func TestComputeClampsOutOfRangePercent(t *testing.T) {
	totals := Compute(d("100.00"), d("150"), d("100.00"))

	assert.True(t, totals.DiscountAmount.IsZero())
	assert.True(t, totals.Total.Equal(d("100.00")))
}
