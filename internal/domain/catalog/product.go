package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("catalog: product not found")
	ErrNotWeighted  = errors.New("catalog: not a weighted product barcode")
	ErrInvalidPrice = errors.New("catalog: price must be zero or greater")
	ErrMissingField = errors.New("catalog: barcode and name are required")
)

// WeightedPrefix marks products that are priced per kilogram. The barcode
// doubles as the type discriminator.
const WeightedPrefix = "W-"

type Product struct {
	Barcode string
	Name    string
	Price   decimal.Decimal // per unit, or per kg when weighted
}

func New(barcode, name string, price decimal.Decimal) (Product, error) {
	if barcode == "" || name == "" {
		return Product{}, ErrMissingField
	}
	if price.IsNegative() {
		return Product{}, ErrInvalidPrice
	}
	return Product{Barcode: barcode, Name: name, Price: price}, nil
}

func (p Product) Weighted() bool {
	return IsWeightedBarcode(p.Barcode)
}

func IsWeightedBarcode(barcode string) bool {
	return strings.HasPrefix(barcode, WeightedPrefix)
}

// Repository is a whole-document store: implementations load and replace the
// complete product map in one operation.
type Repository interface {
	Load(ctx context.Context) (map[string]Product, error)
	Save(ctx context.Context, products map[string]Product) error
}
