package sale

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one committed cart line. All lines of a transaction share the
// same timestamp. The journal is append-only; nothing in this system ever
// mutates or deletes past records.
type Record struct {
	SaleID    string
	Timestamp time.Time
	Barcode   string
	Name      string
	Quantity  decimal.Decimal
	LineTotal decimal.Decimal
	Weighted  bool
}

type Journal interface {
	Append(ctx context.Context, records []Record) error
	Load(ctx context.Context) ([]Record, error)
}
