package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	lineWidth  = 50
	bannerRune = "="
	ruleRune   = "-"
	nameWidth  = 24
)

// Line is one committed cart line in its original insertion order.
type Line struct {
	Quantity  decimal.Decimal
	Name      string
	LineTotal decimal.Decimal
	Weighted  bool
}

// Document holds everything needed to render a receipt. Rendering is pure:
// identical inputs produce a byte-for-byte identical artifact.
type Document struct {
	ShopName        string
	Currency        string
	IssuedAt        time.Time
	Lines           []Line
	Subtotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	Total           decimal.Decimal
	Received        decimal.Decimal
	Change          decimal.Decimal
}

// FileName derives the artifact name from the commit timestamp; second
// resolution keeps names unique at a single register's operating cadence.
func FileName(ts time.Time) string {
	return "receipt_" + ts.Format("20060102_150405") + ".txt"
}

func (d Document) Render() string {
	banner := strings.Repeat(bannerRune, lineWidth)
	rule := strings.Repeat(ruleRune, lineWidth)

	lines := make([]string, 0, len(d.Lines)+16)
	lines = append(lines, banner)
	lines = append(lines, " "+center(strings.ToUpper(d.ShopName), 38))
	lines = append(lines, banner)
	lines = append(lines, "Date/Time: "+d.IssuedAt.Format("2006-01-02 15:04:05"))
	lines = append(lines, rule)

	lines = append(lines, fmt.Sprintf("%-8s%-24s%8s", "QTY", "ITEM", "AMOUNT"))
	lines = append(lines, rule)

	for _, item := range d.Lines {
		qty := item.Quantity.StringFixed(0)
		if item.Weighted {
			qty = item.Quantity.StringFixed(2) + " kg"
		}
		amount := d.Currency + item.LineTotal.StringFixed(2)
		lines = append(lines, fmt.Sprintf("%-8s%-24s%8s", qty, truncate(item.Name, nameWidth), amount))
	}

	lines = append(lines, rule)
	lines = append(lines, fmt.Sprintf("%-30s%s%8s", "Subtotal:", d.Currency, d.Subtotal.StringFixed(2)))
	lines = append(lines, fmt.Sprintf("Discount (%s%%): -%s%8s",
		d.DiscountPercent.StringFixed(0), d.Currency, d.DiscountAmount.StringFixed(2)))
	lines = append(lines, fmt.Sprintf("%-30s%s%8s", "TOTAL:", d.Currency, d.Total.StringFixed(2)))

	lines = append(lines, rule)
	lines = append(lines, fmt.Sprintf("%-30s%s%8s", "Amount Paid:", d.Currency, d.Received.StringFixed(2)))
	lines = append(lines, fmt.Sprintf("%-30s%s%8s", "Change Given:", d.Currency, d.Change.StringFixed(2)))

	lines = append(lines, banner)
	lines = append(lines, "Thank you for shopping! Come Again!")
	lines = append(lines, banner)

	return strings.Join(lines, "\n")
}

// center pads s to width with the surplus space on the right.
func center(s string, width int) string {
	pad := width - len([]rune(s))
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
