package pos

import (
	"context"

	"grocery-pos/internal/domain/pricing"
	"grocery-pos/internal/domain/receipt"
)

type IDGenerator interface {
	NewID() string
}

// Summary is what the operator sees at the confirmation prompt.
type Summary struct {
	Totals pricing.Totals
	Lines  int
}

// Confirmer is the operator's yes/no gate between validation and commit.
// Declining is a normal outcome, not an error; the error return is for the
// prompt channel itself failing.
type Confirmer interface {
	Confirm(ctx context.Context, s Summary) (bool, error)
}

type ConfirmerFunc func(ctx context.Context, s Summary) (bool, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, s Summary) (bool, error) {
	return f(ctx, s)
}

type ReceiptArchive interface {
	Save(doc receipt.Document) (string, error)
}

type ShopSettings interface {
	ShopName(ctx context.Context) string
}
