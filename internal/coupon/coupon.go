package coupon

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/abdalwely/online-store/internal/pricing"
)

type Type string

const (
	TypePercentage Type = "percentage"
	TypeFixed      Type = "fixed"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

var (
	ErrNotFound      = errors.New("invalid coupon code")
	ErrDisabled      = errors.New("coupons are disabled for this store")
	ErrInactive      = errors.New("coupon is not active")
	ErrExhausted     = errors.New("coupon usage limit reached")
	ErrDuplicate     = errors.New("coupon code already exists")
	ErrInvalidCoupon = errors.New("invalid coupon")
)

// MinimumNotMetError rejects a subtotal below the coupon's minimum amount.
type MinimumNotMetError struct {
	Code    string
	Minimum float64
}

func (e *MinimumNotMetError) Error() string {
	return fmt.Sprintf("coupon %s requires a minimum order of %s", e.Code, decimal.NewFromFloat(e.Minimum).StringFixed(2))
}

type Coupon struct {
	StoreID       string    `json:"storeId,omitempty"`
	Code          string    `json:"code"`
	Type          Type      `json:"type"`
	Value         float64   `json:"value"`
	MinimumAmount float64   `json:"minimumAmount"`
	MaxUses       int       `json:"maxUses"` // 0 means unlimited
	UsedCount     int       `json:"usedCount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Builtins apply in every store that has no stored coupon with the same code.
var Builtins = map[string]Coupon{
	"WELCOME10": {Code: "WELCOME10", Type: TypePercentage, Value: 10, MinimumAmount: 100, Status: StatusActive},
	"SAVE20":    {Code: "SAVE20", Type: TypePercentage, Value: 20, MinimumAmount: 200, Status: StatusActive},
	"FLAT50":    {Code: "FLAT50", Type: TypeFixed, Value: 50, MinimumAmount: 150, Status: StatusActive},
}

func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (c Coupon) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidCoupon)
	}
	switch c.Type {
	case TypePercentage:
		if c.Value <= 0 || c.Value > 100 {
			return fmt.Errorf("%w: percentage must be between 0 and 100", ErrInvalidCoupon)
		}
	case TypeFixed:
		if c.Value <= 0 {
			return fmt.Errorf("%w: value must be positive", ErrInvalidCoupon)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCoupon, c.Type)
	}
	if c.MinimumAmount < 0 {
		return fmt.Errorf("%w: minimumAmount must not be negative", ErrInvalidCoupon)
	}
	if c.MaxUses < 0 {
		return fmt.Errorf("%w: maxUses must not be negative", ErrInvalidCoupon)
	}
	return nil
}

// Check verifies the coupon can be applied to subtotal.
func (c Coupon) Check(subtotal float64) error {
	if c.Status != StatusActive {
		return ErrInactive
	}
	if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
		return ErrExhausted
	}
	if decimal.NewFromFloat(subtotal).LessThan(decimal.NewFromFloat(c.MinimumAmount)) {
		return &MinimumNotMetError{Code: c.Code, Minimum: c.MinimumAmount}
	}
	return nil
}

// Discount is the amount taken off subtotal. Fixed discounts never exceed the subtotal.
func (c Coupon) Discount(subtotal float64) float64 {
	switch c.Type {
	case TypePercentage:
		return pricing.Percent(subtotal, c.Value)
	case TypeFixed:
		v := decimal.NewFromFloat(c.Value)
		sub := decimal.NewFromFloat(subtotal)
		if v.GreaterThan(sub) {
			v = sub
		}
		return v.Round(2).InexactFloat64()
	}
	return 0
}

// Quote is an evaluated coupon for one subtotal.
type Quote struct {
	Code     string  `json:"code"`
	Type     Type    `json:"type"`
	Value    float64 `json:"value"`
	Discount float64 `json:"discount"`
	// Stored coupons count their redemptions; built-ins do not.
	Stored bool `json:"-"`
}

func (q Quote) PricingDiscount() pricing.Discount {
	return pricing.Discount{Code: q.Code, Amount: q.Discount}
}
