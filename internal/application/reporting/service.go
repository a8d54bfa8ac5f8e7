// Package reporting derives read-only views from the sales journal and the
// receipt archive.
package reporting

import (
	"context"
	"fmt"
	"sort"

	"grocery-pos/internal/domain/sale"

	"github.com/shopspring/decimal"
)

// Archive lists and reads archived receipt artifacts.
type Archive interface {
	List() ([]string, error)
	Read(name string) (string, error)
}

// ProductSales aggregates the journal by product name.
type ProductSales struct {
	Name     string
	Quantity decimal.Decimal
	Revenue  decimal.Decimal
}

type Service struct {
	journal sale.Journal
	archive Archive
}

func NewService(journal sale.Journal, archive Archive) *Service {
	return &Service{journal: journal, archive: archive}
}

// TopProducts aggregates sold quantity per product name across the whole
// journal and returns the top limit sellers, highest quantity first, names
// breaking ties. A limit of zero or less means no cap.
func (s *Service) TopProducts(ctx context.Context, limit int) ([]ProductSales, error) {
	records, err := s.journal.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("reporting: load journal: %w", err)
	}

	byName := make(map[string]*ProductSales)
	for _, rec := range records {
		agg, ok := byName[rec.Name]
		if !ok {
			agg = &ProductSales{Name: rec.Name}
			byName[rec.Name] = agg
		}
		agg.Quantity = agg.Quantity.Add(rec.Quantity)
		agg.Revenue = agg.Revenue.Add(rec.LineTotal)
	}

	out := make([]ProductSales, 0, len(byName))
	for _, agg := range byName {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Quantity.Equal(out[j].Quantity) {
			return out[i].Quantity.GreaterThan(out[j].Quantity)
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Receipts returns archived receipt names, newest first.
func (s *Service) Receipts(ctx context.Context) ([]string, error) {
	_ = ctx
	return s.archive.List()
}

// Receipt returns the rendered content of one archived receipt.
func (s *Service) Receipt(ctx context.Context, name string) (string, error) {
	_ = ctx
	return s.archive.Read(name)
}
