package catalog

import (
	"context"
	"testing"

	domain "grocery-pos/internal/domain/catalog"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

type fakeCatalog struct {
	products map[string]domain.Product
}

func (f *fakeCatalog) Load(context.Context) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product, len(f.products))
	for k, v := range f.products {
		out[k] = v
	}
	return out, nil
}

func (f *fakeCatalog) Save(_ context.Context, products map[string]domain.Product) error {
	f.products = products
	return nil
}

type fakeLedger struct {
	quantities map[string]decimal.Decimal
}

func (f *fakeLedger) Load(context.Context) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(f.quantities))
	for k, v := range f.quantities {
		out[k] = v
	}
	return out, nil
}

func (f *fakeLedger) Save(_ context.Context, quantities map[string]decimal.Decimal) error {
	f.quantities = quantities
	return nil
}

func serviceFixture() (*Service, *fakeCatalog, *fakeLedger) {
	products := &fakeCatalog{products: map[string]domain.Product{
		"1001":    {Barcode: "1001", Name: "Rice", Price: d("50.00")},
		"W-APPLE": {Barcode: "W-APPLE", Name: "Apples", Price: d("80.00")},
	}}
	ledger := &fakeLedger{quantities: map[string]decimal.Decimal{
		"1001":    d("100"),
		"W-APPLE": d("5"),
	}}
	return NewService(products, ledger, d("20"), nil), products, ledger
}

func TestUpsertCreatesProductWithStock(t *testing.T) {
	svc, products, ledger := serviceFixture()

	require.NoError(t, svc.Upsert(context.Background(), "1002", "Sugar", d("45.00"), d("30")))

	assert.Equal(t, "Sugar", products.products["1002"].Name)
	assert.True(t, ledger.quantities["1002"].Equal(d("30")))
}

func TestUpsertAddsQuantityToExistingStock(t *testing.T) {
	svc, products, ledger := serviceFixture()

	require.NoError(t, svc.Upsert(context.Background(), "1001", "Basmati Rice", d("55.00"), d("50")))

	assert.Equal(t, "Basmati Rice", products.products["1001"].Name)
	assert.True(t, products.products["1001"].Price.Equal(d("55.00")))
	// Restock is additive, not a replacement.
	assert.True(t, ledger.quantities["1001"].Equal(d("150")))
}

func TestUpsertValidation(t *testing.T) {
	svc, _, _ := serviceFixture()

	assert.ErrorIs(t, svc.Upsert(context.Background(), "", "Sugar", d("45"), d("1")), domain.ErrMissingField)
	assert.ErrorIs(t, svc.Upsert(context.Background(), "1002", "", d("45"), d("1")), domain.ErrMissingField)
	assert.ErrorIs(t, svc.Upsert(context.Background(), "1002", "Sugar", d("-1"), d("1")), domain.ErrInvalidPrice)
	assert.ErrorIs(t, svc.Upsert(context.Background(), "1002", "Sugar", d("45"), d("-1")), ErrInvalidQuantity)
}

func TestDeleteRemovesProductAndStock(t *testing.T) {
	svc, products, ledger := serviceFixture()

	require.NoError(t, svc.Delete(context.Background(), "1001"))

	_, ok := products.products["1001"]
	assert.False(t, ok)
	_, ok = ledger.quantities["1001"]
	assert.False(t, ok)

	assert.ErrorIs(t, svc.Delete(context.Background(), "1001"), domain.ErrNotFound)
}

func TestListSortsByQuantityAscending(t *testing.T) {
	svc, _, _ := serviceFixture()

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "W-APPLE", items[0].Barcode)
	assert.True(t, items[0].Low)
	assert.True(t, items[0].Weighted)

	assert.Equal(t, "1001", items[1].Barcode)
	assert.False(t, items[1].Low)
}

func TestLowStockFiltersByThreshold(t *testing.T) {
	svc, _, _ := serviceFixture()

	low, err := svc.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "W-APPLE", low[0].Barcode)
}

func TestListUntrackedProductHasZeroStock(t *testing.T) {
	svc, _, ledger := serviceFixture()
	delete(ledger.quantities, "1001")

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "1001", items[0].Barcode)
	assert.True(t, items[0].Quantity.IsZero())
	assert.True(t, items[0].Low)
}
