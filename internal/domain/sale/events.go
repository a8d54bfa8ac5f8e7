package sale

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommittedEvent is emitted after a checkout commit has been applied to the
// stock ledger. It is informational fan-out only and never gates checkout.
type CommittedEvent struct {
	SaleID      string
	CommittedAt time.Time
	Lines       int
	Total       decimal.Decimal
}

func (CommittedEvent) EventName() string { return "sale.committed" }

func NewCommittedEvent(saleID string, committedAt time.Time, lines int, total decimal.Decimal) CommittedEvent {
	return CommittedEvent{
		SaleID:      saleID,
		CommittedAt: committedAt,
		Lines:       lines,
		Total:       total,
	}
}
