package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("cart: quantity must be a positive whole number")
	ErrInvalidWeight   = errors.New("cart: weight must be greater than zero")
	ErrLineNotFound    = errors.New("cart: line not found")
)

// Line is one aggregated cart entry. Name and unit price are captured at
// add time so later catalog edits do not change a transaction in progress.
type Line struct {
	Barcode   string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  decimal.Decimal // unit count, or kilograms when Weighted
	LineTotal decimal.Decimal
	Weighted  bool
}

// Cart is the working set for the transaction in progress. Insertion order
// is significant: display and receipts list lines in the order they were
// first scanned. At most one line exists per barcode.
type Cart struct {
	order []string
	lines map[string]*Line
}

func New() *Cart {
	return &Cart{lines: make(map[string]*Line)}
}

// AddUnit aggregates quantity onto an existing line or opens a new one,
// recomputing the line total from unit price and accumulated quantity.
func (c *Cart) AddUnit(barcode, name string, unitPrice decimal.Decimal, quantity int64) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	line, ok := c.lines[barcode]
	if !ok {
		line = &Line{Barcode: barcode, Name: name, UnitPrice: unitPrice}
		c.lines[barcode] = line
		c.order = append(c.order, barcode)
	}
	line.Quantity = line.Quantity.Add(decimal.NewFromInt(quantity))
	line.LineTotal = line.UnitPrice.Mul(line.Quantity)
	return nil
}

// AddWeighted aggregates weight onto an existing line or opens a new one.
// The incremental price is added to the running line total rather than
// recomputed from the accumulated weight.
func (c *Cart) AddWeighted(barcode, name string, pricePerKg, weightKg decimal.Decimal) error {
	if weightKg.Sign() <= 0 {
		return ErrInvalidWeight
	}
	linePrice := pricePerKg.Mul(weightKg)
	line, ok := c.lines[barcode]
	if !ok {
		c.lines[barcode] = &Line{
			Barcode:   barcode,
			Name:      name,
			UnitPrice: pricePerKg,
			Quantity:  weightKg,
			LineTotal: linePrice,
			Weighted:  true,
		}
		c.order = append(c.order, barcode)
		return nil
	}
	line.Quantity = line.Quantity.Add(weightKg)
	line.LineTotal = line.LineTotal.Add(linePrice)
	return nil
}

// Quantity reports how much of barcode is already reserved in the cart.
func (c *Cart) Quantity(barcode string) decimal.Decimal {
	if line, ok := c.lines[barcode]; ok {
		return line.Quantity
	}
	return decimal.Zero
}

// Remove deletes the whole line; partial-quantity removal is not supported.
func (c *Cart) Remove(barcode string) error {
	if _, ok := c.lines[barcode]; !ok {
		return ErrLineNotFound
	}
	delete(c.lines, barcode)
	for i, b := range c.order {
		if b == barcode {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (c *Cart) Clear() {
	c.order = nil
	c.lines = make(map[string]*Line)
}

// Lines returns copies of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.order))
	for _, barcode := range c.order {
		out = append(out, *c.lines[barcode])
	}
	return out
}

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, line := range c.lines {
		sum = sum.Add(line.LineTotal)
	}
	return sum
}

func (c *Cart) Empty() bool { return len(c.lines) == 0 }

func (c *Cart) Len() int { return len(c.lines) }
