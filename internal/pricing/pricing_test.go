package pricing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	rules := Rules{ShippingFee: 15, FreeShippingThreshold: 200}

	cases := map[string]struct {
		lines    []Line
		rules    Rules
		discount Discount
		want     Breakdown
	}{
		"above threshold ships free": {
			lines: []Line{{Price: 120, Quantity: 2}, {Price: 50, Quantity: 1}},
			rules: rules,
			want:  Breakdown{Subtotal: 290, ShippingCost: 0, Total: 290},
		},
		"below threshold pays flat fee": {
			lines: []Line{{Price: 80, Quantity: 1}},
			rules: rules,
			want:  Breakdown{Subtotal: 80, ShippingCost: 15, Total: 95},
		},
		"exactly at threshold ships free": {
			lines: []Line{{Price: 100, Quantity: 2}},
			rules: rules,
			want:  Breakdown{Subtotal: 200, Total: 200},
		},
		"tax on discounted subtotal": {
			lines:    []Line{{Price: 249, Quantity: 1}},
			rules:    Rules{ShippingFee: 15, FreeShippingThreshold: 200, TaxEnabled: true, TaxRate: 15},
			discount: Discount{Code: "FLAT50", Amount: 50},
			want:     Breakdown{Subtotal: 249, CouponCode: "FLAT50", Discount: 50, TaxAmount: 29.85, Total: 228.85},
		},
		"discount capped at subtotal": {
			lines:    []Line{{Price: 30, Quantity: 1}},
			rules:    rules,
			discount: Discount{Code: "FLAT50", Amount: 50},
			want:     Breakdown{Subtotal: 30, CouponCode: "FLAT50", Discount: 30, ShippingCost: 15, Total: 15},
		},
		"cents do not drift": {
			lines: []Line{{Price: 0.1, Quantity: 1}, {Price: 0.2, Quantity: 1}},
			rules: Rules{FreeShippingThreshold: 0.3},
			want:  Breakdown{Subtotal: 0.3, Total: 0.3},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Calculate(tc.lines, tc.rules, tc.discount))
		})
	}
}

func TestTotalFormulaHolds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		lines := make([]Line, rng.Intn(5)+1)
		for j := range lines {
			lines[j] = Line{Price: float64(rng.Intn(50000)) / 100, Quantity: rng.Intn(4) + 1}
		}
		rules := Rules{
			ShippingFee:           float64(rng.Intn(3000)) / 100,
			FreeShippingThreshold: float64(rng.Intn(600)),
			TaxEnabled:            rng.Intn(2) == 0,
			TaxRate:               15,
		}

		b := Calculate(lines, rules, Discount{})

		assert.InDelta(t, b.Subtotal+b.ShippingCost+b.TaxAmount, b.Total, 0.001)
		if b.Subtotal >= rules.FreeShippingThreshold {
			assert.Zero(t, b.ShippingCost)
		} else {
			assert.InDelta(t, rules.ShippingFee, b.ShippingCost, 0.001)
		}
		if !rules.TaxEnabled {
			assert.Zero(t, b.TaxAmount)
		}
	}
}

func TestShippingCost(t *testing.T) {
	r := Rules{ShippingFee: 15, FreeShippingThreshold: 200}
	assert.Equal(t, 15.0, ShippingCost(199.99, r))
	assert.Equal(t, 0.0, ShippingCost(200, r))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 29.0, Percent(290, 10))
	assert.Equal(t, 0.33, Percent(3.33, 10))
}
