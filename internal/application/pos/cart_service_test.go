package pos

import (
	"context"
	"errors"
	"testing"

	"grocery-pos/internal/domain/cart"
	"grocery-pos/internal/domain/catalog"
	"grocery-pos/internal/domain/stock"

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
	products map[string]catalog.Product
	loadErr  error
	saved    map[string]catalog.Product
}

func (f *fakeCatalog) Load(context.Context) (map[string]catalog.Product, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make(map[string]catalog.Product, len(f.products))
	for k, v := range f.products {
		out[k] = v
	}
	return out, nil
}

func (f *fakeCatalog) Save(_ context.Context, products map[string]catalog.Product) error {
	f.saved = products
	return nil
}

type fakeLedger struct {
	quantities map[string]decimal.Decimal
	loadErr    error
	saveErr    error
	saved      map[string]decimal.Decimal
}

func (f *fakeLedger) Load(context.Context) (map[string]decimal.Decimal, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make(map[string]decimal.Decimal, len(f.quantities))
	for k, v := range f.quantities {
		out[k] = v
	}
	return out, nil
}

func (f *fakeLedger) Save(_ context.Context, quantities map[string]decimal.Decimal) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = quantities
	return nil
}

func storeFixture() (*fakeCatalog, *fakeLedger) {
	products := &fakeCatalog{products: map[string]catalog.Product{
		"1001":    {Barcode: "1001", Name: "Rice", Price: d("50.00")},
		"W-APPLE": {Barcode: "W-APPLE", Name: "Apples", Price: d("80.00")},
	}}
	ledger := &fakeLedger{quantities: map[string]decimal.Decimal{
		"1001":    d("100"),
		"W-APPLE": d("10"),
	}}
	return products, ledger
}

func TestAddUnitHappyPath(t *testing.T) {
	products, ledger := storeFixture()
	svc := NewCartService(products, ledger, nil)

	require.NoError(t, svc.AddUnit(context.Background(), "1001", 3))

	lines := svc.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Rice", lines[0].Name)
	assert.True(t, lines[0].LineTotal.Equal(d("150.00")))
	assert.True(t, svc.Subtotal().Equal(d("150.00")))
}

func TestAddUnitUnknownBarcode(t *testing.T) {
	products, ledger := storeFixture()
	svc := NewCartService(products, ledger, nil)

	assert.ErrorIs(t, svc.AddUnit(context.Background(), "9999", 1), catalog.ErrNotFound)
}

func TestAddUnitRejectsNonPositiveQuantity(t *testing.T) {
	products, ledger := storeFixture()
	svc := NewCartService(products, ledger, nil)

	assert.ErrorIs(t, svc.AddUnit(context.Background(), "1001", 0), cart.ErrInvalidQuantity)
}

func TestAddUnitCountsCartReservation(t *testing.T) {
	products, ledger := storeFixture()
	ledger.quantities["1001"] = d("5")
	svc := NewCartService(products, ledger, nil)

	require.NoError(t, svc.AddUnit(context.Background(), "1001", 5))
	assert.ErrorIs(t, svc.AddUnit(context.Background(), "1001", 1), stock.ErrInsufficientStock)

	// The cart keeps what was already reserved.
	require.Len(t, svc.Lines(), 1)
	assert.True(t, svc.Lines()[0].Quantity.Equal(d("5")))
}

func TestAddUnitSeesRestockImmediately(t *testing.T) {
	products, ledger := storeFixture()
	ledger.quantities["1001"] = d("1")
	svc := NewCartService(products, ledger, nil)

	require.NoError(t, svc.AddUnit(context.Background(), "1001", 1))
	assert.ErrorIs(t, svc.AddUnit(context.Background(), "1001", 1), stock.ErrInsufficientStock)

	// Concurrent restock: the next add reloads the ledger and succeeds.
	ledger.quantities["1001"] = d("2")
	assert.NoError(t, svc.AddUnit(context.Background(), "1001", 1))
}

func TestAddWeightedHappyPath(t *testing.T) {
	products, ledger := storeFixture()
	svc := NewCartService(products, ledger, nil)

	require.NoError(t, svc.AddWeighted(context.Background(), "W-APPLE", d("2.5")))
	require.NoError(t, svc.AddWeighted(context.Background(), "W-APPLE", d("1.0")))

	lines := svc.Lines()
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Quantity.Equal(d("3.5")))
	assert.True(t, lines[0].LineTotal.Equal(d("280.00")))
}

func TestAddWeightedRejectsUnprefixedBarcode(t *testing.T) {
	products, ledger := storeFixture()
	svc := NewCartService(products, ledger, nil)

	assert.ErrorIs(t, svc.AddWeighted(context.Background(), "1001", d("1.0")), catalog.ErrNotWeighted)
}

func TestAddWeightedRejectsNonPositiveWeight(t *testing.T) {
	products, ledger := storeFixture()
	svc := NewCartService(products, ledger, nil)

	assert.ErrorIs(t, svc.AddWeighted(context.Background(), "W-APPLE", d("0")), cart.ErrInvalidWeight)
}

func TestAddWeightedUnknownBarcode(t *testing.T) {
	products, ledger := storeFixture()
	svc := NewCartService(products, ledger, nil)

	assert.ErrorIs(t, svc.AddWeighted(context.Background(), "W-PEAR", d("1.0")), catalog.ErrNotFound)
}

func TestAddWeightedInsufficientStock(t *testing.T) {
	products, ledger := storeFixture()
	ledger.quantities["W-APPLE"] = d("2")
	svc := NewCartService(products, ledger, nil)

	assert.ErrorIs(t, svc.AddWeighted(context.Background(), "W-APPLE", d("2.5")), stock.ErrInsufficientStock)
}

func TestRemoveAndClear(t *testing.T) {
	products, ledger := storeFixture()
	svc := NewCartService(products, ledger, nil)

	require.NoError(t, svc.AddUnit(context.Background(), "1001", 1))
	require.NoError(t, svc.Remove(context.Background(), "1001"))
	assert.ErrorIs(t, svc.Remove(context.Background(), "1001"), cart.ErrLineNotFound)

	require.NoError(t, svc.AddUnit(context.Background(), "1001", 1))
	svc.Clear(context.Background())
	assert.True(t, svc.Empty())
}

func TestTotalsClampsBadDiscount(t *testing.T) {
	products, ledger := storeFixture()
	svc := NewCartService(products, ledger, nil)

	require.NoError(t, svc.AddUnit(context.Background(), "1001", 3))

	totals := svc.Totals("10", d("200.00"))
	assert.True(t, totals.Total.Equal(d("135.00")))
	assert.True(t, totals.Change.Equal(d("65.00")))

	clamped := svc.Totals("abc", d("200.00"))
	assert.True(t, clamped.DiscountAmount.IsZero())
	assert.True(t, clamped.Total.Equal(d("150.00")))
}

func TestAddUnitSurfacesStoreErrors(t *testing.T) {
	products, ledger := storeFixture()
	ledger.loadErr = errors.New("disk gone")
	svc := NewCartService(products, ledger, nil)

	err := svc.AddUnit(context.Background(), "1001", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load stock")
}
