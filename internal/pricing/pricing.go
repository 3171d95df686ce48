// Package pricing computes order totals for a cart.
//
// total = subtotal - discount + shipping + tax. Shipping is waived once the
// subtotal reaches the store's free-shipping threshold, and tax, when enabled,
// is a flat percentage of the discounted subtotal. Every amount is rounded
// to two decimal places.
package pricing

import (
	"github.com/shopspring/decimal"
)

type Line struct {
	Price    float64
	Quantity int
}

// Rules are the store settings that affect a quote.
type Rules struct {
	ShippingFee           float64
	FreeShippingThreshold float64
	TaxEnabled            bool
	TaxRate               float64 // percent
}

type Discount struct {
	Code   string
	Amount float64
}

type Breakdown struct {
	Subtotal     float64 `json:"subtotal"`
	CouponCode   string  `json:"couponCode,omitempty"`
	Discount     float64 `json:"discount"`
	ShippingCost float64 `json:"shippingCost"`
	TaxAmount    float64 `json:"taxAmount"`
	Total        float64 `json:"total"`
}

var hundred = decimal.NewFromInt(100)

func Subtotal(lines []Line) float64 {
	f, _ := subtotal(lines).Float64()
	return f
}

func subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum.Round(2)
}

// ShippingCost returns zero at or above the free-shipping threshold and the flat fee below it.
func ShippingCost(subtotal float64, r Rules) float64 {
	return shipping(decimal.NewFromFloat(subtotal), r).InexactFloat64()
}

func shipping(subtotal decimal.Decimal, r Rules) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(decimal.NewFromFloat(r.FreeShippingThreshold)) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(r.ShippingFee).Round(2)
}

// Calculate builds the full breakdown. A discount larger than the subtotal is capped.
func Calculate(lines []Line, r Rules, d Discount) Breakdown {
	sub := subtotal(lines)

	disc := decimal.NewFromFloat(d.Amount).Round(2)
	if disc.IsNegative() {
		disc = decimal.Zero
	}
	if disc.GreaterThan(sub) {
		disc = sub
	}

	ship := shipping(sub, r)

	tax := decimal.Zero
	if r.TaxEnabled && r.TaxRate > 0 {
		tax = sub.Sub(disc).Mul(decimal.NewFromFloat(r.TaxRate)).Div(hundred).Round(2)
	}

	total := sub.Sub(disc).Add(ship).Add(tax)

	b := Breakdown{
		Subtotal:     sub.InexactFloat64(),
		Discount:     disc.InexactFloat64(),
		ShippingCost: ship.InexactFloat64(),
		TaxAmount:    tax.InexactFloat64(),
		Total:        total.InexactFloat64(),
	}
	if disc.IsPositive() {
		b.CouponCode = d.Code
	}
	return b
}

// Percent returns value% of amount, rounded to cents.
func Percent(amount, value float64) float64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(value)).Div(hundred).Round(2).InexactFloat64()
}
