package pos

import (
	"context"
	"fmt"
	"sync"

	"grocery-pos/internal/domain/cart"
	"grocery-pos/internal/domain/catalog"
	"grocery-pos/internal/domain/pricing"
	"grocery-pos/internal/domain/stock"
	"grocery-pos/internal/observability"
	"grocery-pos/internal/observability/logctx"

	"github.com/shopspring/decimal"
)

// CartService owns the single in-progress transaction of the register. Every
// add re-reads the stock ledger so concurrent catalog maintenance is seen
// immediately; availability is checked against on-hand minus what the cart
// already reserves.
type CartService struct {
	mu       sync.Mutex
	cart     *cart.Cart
	products catalog.Repository
	ledger   stock.Ledger
	log      observability.Logger
}

func NewCartService(products catalog.Repository, ledger stock.Ledger, logger observability.Logger) *CartService {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &CartService{
		cart:     cart.New(),
		products: products,
		ledger:   ledger,
		log:      logger.With(observability.F("component", "cart_service")),
	}
}

// AddUnit scans quantity units of a regular product into the cart.
func (s *CartService) AddUnit(ctx context.Context, barcode string, quantity int64) error {
	if quantity <= 0 {
		return cart.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.lookup(ctx, barcode)
	if err != nil {
		return err
	}

	requested := decimal.NewFromInt(quantity)
	if err := s.checkAvailability(ctx, barcode, requested); err != nil {
		return err
	}

	if err := s.cart.AddUnit(barcode, product.Name, product.Price, quantity); err != nil {
		return err
	}
	logctx.FromOr(ctx, s.log).Debug("cart_unit_added",
		observability.F("barcode", barcode),
		observability.F("quantity", quantity),
	)
	return nil
}

// AddWeighted scans weightKg kilograms of a weighted product into the cart.
// The barcode must carry the weighted prefix; a regular barcode here is an
// operator mistake and is rejected before any other validation.
func (s *CartService) AddWeighted(ctx context.Context, barcode string, weightKg decimal.Decimal) error {
	if !catalog.IsWeightedBarcode(barcode) {
		return catalog.ErrNotWeighted
	}
	if weightKg.Sign() <= 0 {
		return cart.ErrInvalidWeight
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.lookup(ctx, barcode)
	if err != nil {
		return err
	}

	if err := s.checkAvailability(ctx, barcode, weightKg); err != nil {
		return err
	}

	if err := s.cart.AddWeighted(barcode, product.Name, product.Price, weightKg); err != nil {
		return err
	}
	logctx.FromOr(ctx, s.log).Debug("cart_weight_added",
		observability.F("barcode", barcode),
		observability.F("weight_kg", weightKg.String()),
	)
	return nil
}

func (s *CartService) Remove(ctx context.Context, barcode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cart.Remove(barcode); err != nil {
		return err
	}
	logctx.FromOr(ctx, s.log).Debug("cart_line_removed", observability.F("barcode", barcode))
	return nil
}

func (s *CartService) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Clear()
	logctx.FromOr(ctx, s.log).Debug("cart_cleared")
}

func (s *CartService) Lines() []cart.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines()
}

func (s *CartService) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Subtotal()
}

func (s *CartService) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Empty()
}

func (s *CartService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Len()
}

// Totals prices the current cart against a raw discount input and an amount
// received so far. It never fails: bad discount input falls back to zero.
func (s *CartService) Totals(rawPercent string, received decimal.Decimal) pricing.Totals {
	s.mu.Lock()
	subtotal := s.cart.Subtotal()
	s.mu.Unlock()

	return pricing.Compute(subtotal, pricing.ParsePercent(rawPercent), received)
}

func (s *CartService) lookup(ctx context.Context, barcode string) (catalog.Product, error) {
	products, err := s.products.Load(ctx)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("pos: load catalog: %w", err)
	}
	product, ok := products[barcode]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return product, nil
}

func (s *CartService) checkAvailability(ctx context.Context, barcode string, requested decimal.Decimal) error {
	quantities, err := s.ledger.Load(ctx)
	if err != nil {
		return fmt.Errorf("pos: load stock: %w", err)
	}
	available := stock.Available(quantities, barcode)
	if available.LessThan(s.cart.Quantity(barcode).Add(requested)) {
		return stock.ErrInsufficientStock
	}
	return nil
}
