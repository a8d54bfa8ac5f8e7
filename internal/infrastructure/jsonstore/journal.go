package jsonstore

import (
	"context"
	"sync"
	"time"

	domain "grocery-pos/internal/domain/sale"
	"grocery-pos/internal/observability"

	"github.com/shopspring/decimal"
)

// recordDoc mirrors the on-disk sales_log.json entry shape. sale_id is
// written for new records and tolerated as absent on historical ones.
type recordDoc struct {
	Timestamp string  `json:"timestamp"`
	Barcode   string  `json:"barcode"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	LineTotal float64 `json:"line_total"`
	Weighted  bool    `json:"is_weighted"`
	SaleID    string  `json:"sale_id,omitempty"`
}

// timestampLayout matches the ISO format the journal has always used.
const timestampLayout = "2006-01-02T15:04:05.000000"

type SalesJournal struct {
	mu   sync.Mutex
	path string
	log  observability.Logger
}

func NewSalesJournal(path string, logger observability.Logger) *SalesJournal {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &SalesJournal{path: path, log: logger.With(observability.F("component", "sales_journal"))}
}

// Append loads the whole journal, appends the records, and replaces the
// document. The journal is never rewritten beyond appending.
func (r *SalesJournal) Append(ctx context.Context, records []domain.Record) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	docs := r.loadDocs()
	for _, rec := range records {
		docs = append(docs, recordDoc{
			Timestamp: rec.Timestamp.Format(timestampLayout),
			Barcode:   rec.Barcode,
			Name:      rec.Name,
			Quantity:  rec.Quantity.InexactFloat64(),
			LineTotal: rec.LineTotal.InexactFloat64(),
			Weighted:  rec.Weighted,
			SaleID:    rec.SaleID,
		})
	}
	return save(r.path, docs)
}

func (r *SalesJournal) Load(ctx context.Context) ([]domain.Record, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	docs := r.loadDocs()
	records := make([]domain.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, domain.Record{
			SaleID:    doc.SaleID,
			Timestamp: parseTimestamp(doc.Timestamp),
			Barcode:   doc.Barcode,
			Name:      doc.Name,
			Quantity:  decimal.NewFromFloat(doc.Quantity),
			LineTotal: decimal.NewFromFloat(doc.LineTotal),
			Weighted:  doc.Weighted,
		})
	}
	return records, nil
}

func (r *SalesJournal) loadDocs() []recordDoc {
	var docs []recordDoc
	if err := load(r.path, &docs); err != nil {
		r.log.Warn("journal_load_failed", observability.F("error", err.Error()))
		return nil
	}
	return docs
}

func parseTimestamp(raw string) time.Time {
	for _, layout := range []string{timestampLayout, "2006-01-02T15:04:05", time.RFC3339Nano} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}
