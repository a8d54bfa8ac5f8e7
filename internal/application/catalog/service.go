// Package catalog implements back-office catalog and stock maintenance.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	domain "grocery-pos/internal/domain/catalog"
	"grocery-pos/internal/domain/stock"
	"grocery-pos/internal/observability"
	"grocery-pos/internal/observability/logctx"

	"github.com/shopspring/decimal"
)

var ErrInvalidQuantity = errors.New("catalog: quantity to add must be zero or greater")

// Item is the merged catalog/stock view for listings. Low marks quantities
// under the configured threshold.
type Item struct {
	Barcode  string
	Name     string
	Price    decimal.Decimal
	Quantity decimal.Decimal
	Weighted bool
	Low      bool
}

type Service struct {
	mu        sync.Mutex
	products  domain.Repository
	ledger    stock.Ledger
	threshold decimal.Decimal
	log       observability.Logger
}

func NewService(products domain.Repository, ledger stock.Ledger, lowStockThreshold decimal.Decimal, logger observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		products:  products,
		ledger:    ledger,
		threshold: lowStockThreshold,
		log:       logger.With(observability.F("component", "catalog_service")),
	}
}

// Upsert creates or updates a product and adds quantityToAdd to its on-hand
// stock. Updating an existing product adjusts name and price in place; the
// quantity is always additive, restocking rather than replacing.
func (s *Service) Upsert(ctx context.Context, barcode, name string, price, quantityToAdd decimal.Decimal) error {
	product, err := domain.New(barcode, name, price)
	if err != nil {
		return err
	}
	if quantityToAdd.IsNegative() {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.products.Load(ctx)
	if err != nil {
		return fmt.Errorf("catalog: load products: %w", err)
	}
	quantities, err := s.ledger.Load(ctx)
	if err != nil {
		return fmt.Errorf("catalog: load stock: %w", err)
	}

	products[product.Barcode] = product
	quantities[product.Barcode] = stock.Available(quantities, product.Barcode).Add(quantityToAdd)

	if err := s.products.Save(ctx, products); err != nil {
		return fmt.Errorf("catalog: save products: %w", err)
	}
	if err := s.ledger.Save(ctx, quantities); err != nil {
		return fmt.Errorf("catalog: save stock: %w", err)
	}

	logctx.FromOr(ctx, s.log).Info("catalog_upserted",
		observability.F("barcode", product.Barcode),
		observability.F("added_quantity", quantityToAdd.String()),
	)
	return nil
}

// Delete removes a product and its stock entry.
func (s *Service) Delete(ctx context.Context, barcode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.products.Load(ctx)
	if err != nil {
		return fmt.Errorf("catalog: load products: %w", err)
	}
	if _, ok := products[barcode]; !ok {
		return domain.ErrNotFound
	}
	quantities, err := s.ledger.Load(ctx)
	if err != nil {
		return fmt.Errorf("catalog: load stock: %w", err)
	}

	delete(products, barcode)
	delete(quantities, barcode)

	if err := s.products.Save(ctx, products); err != nil {
		return fmt.Errorf("catalog: save products: %w", err)
	}
	if err := s.ledger.Save(ctx, quantities); err != nil {
		return fmt.Errorf("catalog: save stock: %w", err)
	}

	logctx.FromOr(ctx, s.log).Info("catalog_deleted", observability.F("barcode", barcode))
	return nil
}

// List returns the merged catalog/stock view ordered by quantity ascending,
// so the items nearest depletion surface first.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.products.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: load products: %w", err)
	}
	quantities, err := s.ledger.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: load stock: %w", err)
	}

	items := make([]Item, 0, len(products))
	for barcode, p := range products {
		q := stock.Available(quantities, barcode)
		items = append(items, Item{
			Barcode:  barcode,
			Name:     p.Name,
			Price:    p.Price,
			Quantity: q,
			Weighted: p.Weighted(),
			Low:      q.LessThan(s.threshold),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].Quantity.Equal(items[j].Quantity) {
			return items[i].Quantity.LessThan(items[j].Quantity)
		}
		return items[i].Barcode < items[j].Barcode
	})
	return items, nil
}

// LowStock returns only the items under the threshold, lowest first.
func (s *Service) LowStock(ctx context.Context) ([]Item, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	low := items[:0:0]
	for _, item := range items {
		if item.Low {
			low = append(low, item)
		}
	}
	return low, nil
}
