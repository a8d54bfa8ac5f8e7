package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals is the full money picture for a transaction in progress. AmountDue
// is non-zero only while some payment has been received but falls short of
// the total; Change is non-zero only once payment covers the total.
type Totals struct {
	Subtotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	Total           decimal.Decimal
	Received        decimal.Decimal
	Change          decimal.Decimal
	AmountDue       decimal.Decimal
}

// ParsePercent turns operator input into an effective discount percent.
// Anything unparseable or outside [0,100] falls back to zero; bad input
// never rejects the computation.
func ParsePercent(raw string) decimal.Decimal {
	p, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || p.IsNegative() || p.GreaterThan(hundred) {
		return decimal.Zero
	}
	return p
}

// Compute derives the totals from a subtotal, an effective discount percent
// and the amount received so far. It is pure and idempotent: recomputing
// with unchanged inputs yields identical totals.
func Compute(subtotal, percent, received decimal.Decimal) Totals {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		percent = decimal.Zero
	}
	discount := subtotal.Mul(percent).Div(hundred)
	total := subtotal.Sub(discount)

	t := Totals{
		Subtotal:        subtotal,
		DiscountPercent: percent,
		DiscountAmount:  discount,
		Total:           total,
		Received:        received,
	}
	switch {
	case received.Sign() > 0 && received.LessThan(total):
		t.AmountDue = total.Sub(received)
	case received.Sign() > 0:
		t.Change = received.Sub(total)
	}
	// received == 0 means no payment attempted yet: change stays zero.
	return t
}

// Sufficient reports whether the received amount covers the total; exact
// equality is accepted.
func (t Totals) Sufficient() bool {
	return t.Received.GreaterThanOrEqual(t.Total)
}
