package stock

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInsufficientStock rejects an add-to-cart whose requested quantity plus
// the quantity already reserved in the cart exceeds the on-hand quantity.
var ErrInsufficientStock = errors.New("stock: insufficient stock")

// Quantities are decimal: unit counts for regular products, kilograms for
// weighted ones. The ledger may be driven negative by a committed sale; that
// is flagged to the operator rather than blocked.
type Entry struct {
	Barcode  string
	Quantity decimal.Decimal
}

// Ledger is a whole-document store over barcode -> on-hand quantity.
// Both the scan-time availability check and the commit-time decrement load
// it fresh; there is no isolation between the two reads.
type Ledger interface {
	Load(ctx context.Context) (map[string]decimal.Decimal, error)
	Save(ctx context.Context, quantities map[string]decimal.Decimal) error
}

// Available returns the on-hand quantity for barcode, zero when untracked.
func Available(quantities map[string]decimal.Decimal, barcode string) decimal.Decimal {
	if q, ok := quantities[barcode]; ok {
		return q
	}
	return decimal.Zero
}
