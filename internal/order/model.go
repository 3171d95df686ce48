package order

import (
	"errors"
	"strings"
	"time"

	"github.com/abdalwely/online-store/internal/pricing"
)

var (
	ErrNotFound  = errors.New("order not found")
	ErrForbidden = errors.New("not allowed to access this order")
)

// Item is the line snapshot taken at checkout.
type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
}

type ShippingAddress struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode,omitempty"`
}

// Missing returns the names of required fields left blank.
func (a ShippingAddress) Missing() []string {
	var out []string
	for _, f := range []struct {
		name, value string
	}{
		{"name", a.Name},
		{"phone", a.Phone},
		{"address", a.Address},
		{"city", a.City},
	} {
		if strings.TrimSpace(f.value) == "" {
			out = append(out, f.name)
		}
	}
	return out
}

type Order struct {
	ID            string          `json:"id"`
	StoreID       string          `json:"storeId"`
	CustomerID    string          `json:"customerId"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	Shipping      ShippingAddress `json:"shippingAddress"`
	Items         []Item          `json:"items"`

	pricing.Breakdown

	PaymentMethod  string    `json:"paymentMethod"`
	Notes          string    `json:"notes,omitempty"`
	Status         Status    `json:"status"`
	IdempotencyKey string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Units is the quantity ordered per product id, summed across variants.
func (o Order) Units() map[string]int {
	out := make(map[string]int, len(o.Items))
	for _, it := range o.Items {
		out[it.ProductID] += it.Quantity
	}
	return out
}
