package cart

import (
	"github.com/shopspring/decimal"

	"github.com/avelkin/storefront/internal/models"
)

// Flat-rate pricing constants. Deliberately plain constants rather than a
// pricing-policy abstraction: there is no jurisdiction or carrier logic.
var (
	taxRate          = decimal.NewFromFloat(0.08)
	freeShippingOver = decimal.NewFromInt(100)
	flatShipping     = decimal.NewFromInt(10)
)

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals derives the money breakdown for a set of cart lines. Pure:
// no rows are read or written. Tax is rounded to cents first and the total
// is the exact sum of the three persisted figures, so
// total = subtotal + tax + shipping holds over the stored values.
func ComputeTotals(lines []models.CartItem) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(taxRate).Round(2)

	shipping := flatShipping
	if subtotal.GreaterThan(freeShippingOver) {
		shipping = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}
