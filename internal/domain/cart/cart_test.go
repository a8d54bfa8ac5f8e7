package cart

import (
	"testing"

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

func TestAddUnitAggregatesQuantity(t *testing.T) {
	c := New()

	require.NoError(t, c.AddUnit("1001", "Rice", d("50.00"), 2))
	require.NoError(t, c.AddUnit("1001", "Rice", d("50.00"), 1))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Quantity.Equal(d("3")))
	assert.True(t, lines[0].LineTotal.Equal(d("150.00")))
	assert.False(t, lines[0].Weighted)
}

func TestAddUnitRejectsNonPositiveQuantity(t *testing.T) {
	c := New()

	assert.ErrorIs(t, c.AddUnit("1001", "Rice", d("50.00"), 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.AddUnit("1001", "Rice", d("50.00"), -2), ErrInvalidQuantity)
	assert.True(t, c.Empty())
}

func TestAddWeightedAccumulatesWeightAndTotal(t *testing.T) {
	c := New()

	require.NoError(t, c.AddWeighted("W-APPLE", "Apples", d("80.00"), d("2.5")))
	require.NoError(t, c.AddWeighted("W-APPLE", "Apples", d("80.00"), d("1.0")))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Weighted)
	assert.True(t, lines[0].Quantity.Equal(d("3.5")))
	assert.True(t, lines[0].LineTotal.Equal(d("280.00")))
}

func TestAddWeightedRejectsNonPositiveWeight(t *testing.T) {
	c := New()

	assert.ErrorIs(t, c.AddWeighted("W-APPLE", "Apples", d("80.00"), d("0")), ErrInvalidWeight)
	assert.ErrorIs(t, c.AddWeighted("W-APPLE", "Apples", d("80.00"), d("-1")), ErrInvalidWeight)
}

func TestLinesPreserveInsertionOrder(t *testing.T) {
	c := New()

	require.NoError(t, c.AddUnit("1001", "Rice", d("50.00"), 1))
	require.NoError(t, c.AddWeighted("W-APPLE", "Apples", d("80.00"), d("1.0")))
	require.NoError(t, c.AddUnit("1002", "Sugar", d("45.00"), 1))
	// Re-scanning the first item must not move it.
	require.NoError(t, c.AddUnit("1001", "Rice", d("50.00"), 1))

	lines := c.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "1001", lines[0].Barcode)
	assert.Equal(t, "W-APPLE", lines[1].Barcode)
	assert.Equal(t, "1002", lines[2].Barcode)
}

func TestRemoveDeletesWholeLine(t *testing.T) {
	c := New()

	require.NoError(t, c.AddUnit("1001", "Rice", d("50.00"), 3))
	require.NoError(t, c.Remove("1001"))

	assert.True(t, c.Empty())
	assert.ErrorIs(t, c.Remove("1001"), ErrLineNotFound)
}

func TestSubtotalSumsLineTotals(t *testing.T) {
	c := New()

	require.NoError(t, c.AddUnit("1001", "Rice", d("50.00"), 3))
	require.NoError(t, c.AddWeighted("W-APPLE", "Apples", d("80.00"), d("2.5")))

	assert.True(t, c.Subtotal().Equal(d("350.00")))
}

func TestQuantityReportsReservedAmount(t *testing.T) {
	c := New()

	assert.True(t, c.Quantity("1001").IsZero())
	require.NoError(t, c.AddUnit("1001", "Rice", d("50.00"), 4))
	assert.True(t, c.Quantity("1001").Equal(d("4")))
}

func TestClearEmptiesCart(t *testing.T) {
	c := New()

	require.NoError(t, c.AddUnit("1001", "Rice", d("50.00"), 1))
	c.Clear()

	assert.True(t, c.Empty())
	assert.Zero(t, c.Len())
	assert.True(t, c.Subtotal().IsZero())
}
