package jsonstore

import (
	"context"
	"sync"

	"grocery-pos/internal/observability"

	"github.com/shopspring/decimal"
)

// quantityDoc mirrors the on-disk inventory.json entry shape.
type quantityDoc struct {
	Quantity float64 `json:"quantity"`
}

type StockLedger struct {
	mu   sync.Mutex
	path string
	log  observability.Logger
}

func NewStockLedger(path string, logger observability.Logger) *StockLedger {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &StockLedger{path: path, log: logger.With(observability.F("component", "stock_ledger"))}
}

func (r *StockLedger) Load(ctx context.Context) (map[string]decimal.Decimal, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	docs := make(map[string]quantityDoc)
	if err := load(r.path, &docs); err != nil {
		r.log.Warn("stock_load_failed", observability.F("error", err.Error()))
		return map[string]decimal.Decimal{}, nil
	}

	quantities := make(map[string]decimal.Decimal, len(docs))
	for barcode, doc := range docs {
		quantities[barcode] = decimal.NewFromFloat(doc.Quantity)
	}
	return quantities, nil
}

func (r *StockLedger) Save(ctx context.Context, quantities map[string]decimal.Decimal) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	docs := make(map[string]quantityDoc, len(quantities))
	for barcode, q := range quantities {
		docs[barcode] = quantityDoc{Quantity: q.InexactFloat64()}
	}
	return save(r.path, docs)
}
