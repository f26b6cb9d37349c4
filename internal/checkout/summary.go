package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/cart"
)

var (
	freeShippingOver = decimal.NewFromInt(50)
	flatShipping     = decimal.RequireFromString("5.99")
	taxRate          = decimal.RequireFromString("0.08")
)

// Summary is the order summary shown before payment.
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Summarize applies free shipping above 50 (else a flat 5.99) and 8% tax on the subtotal.
func Summarize(lines []cart.Line) Summary {
	subtotal := cart.TotalPrice(lines)
	shipping := flatShipping
	if subtotal.GreaterThan(freeShippingOver) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(taxRate)
	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// Amount is the grand total handed to the payment provider.
func (s Summary) Amount() string {
	return s.Total.StringFixed(2)
}
