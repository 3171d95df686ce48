package product

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

var (
	ErrNotFound       = errors.New("product not found")
	ErrInvalidProduct = errors.New("invalid product")
)

type Options struct {
	Sizes  []string `json:"sizes,omitempty"`
	Colors []string `json:"colors,omitempty"`
}

type Product struct {
	ID          string    `json:"id"`
	StoreID     string    `json:"storeId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Images      []string  `json:"images"`
	Price       float64   `json:"price"`
	SalePrice   float64   `json:"salePrice,omitempty"`
	Stock       int       `json:"stock"`
	Status      string    `json:"status"`
	Options     Options   `json:"options"`
	Rating      float64   `json:"rating"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p Product) Active() bool { return p.Status == StatusActive }

// EffectivePrice is the sale price when it undercuts the list price.
func (p Product) EffectivePrice() float64 {
	if p.SalePrice > 0 && p.SalePrice < p.Price {
		return p.SalePrice
	}
	return p.Price
}

func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// OffersVariant reports whether size and color are valid selections.
// Empty selectors are always accepted.
func (p Product) OffersVariant(size, color string) bool {
	return (size == "" || contains(p.Options.Sizes, size)) &&
		(color == "" || contains(p.Options.Colors, color))
}

func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidProduct)
	}
	if p.SalePrice < 0 || (p.SalePrice > 0 && p.SalePrice > p.Price) {
		return fmt.Errorf("%w: salePrice must be between 0 and price", ErrInvalidProduct)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	if p.Status != StatusActive && p.Status != StatusInactive {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidProduct, p.Status)
	}
	return nil
}

type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// DemoProducts is the sample catalog of a materialized demo store.
func DemoProducts() []Product {
	return []Product{
		{
			Name:        "Smart Watch",
			Description: "Water-resistant smart watch with a touch screen.",
			Category:    "Electronics",
			Tags:        []string{"new", "sale"},
			Images:      []string{"https://via.placeholder.com/300x300?text=Watch"},
			Price:       299,
			SalePrice:   249,
			Stock:       10,
			Status:      StatusActive,
			Options:     Options{Colors: []string{"Black", "Silver"}, Sizes: []string{"Small", "Large"}},
		},
		{
			Name:        "Backpack",
			Description: "Modern backpack for school or work.",
			Category:    "Accessories",
			Tags:        []string{"new"},
			Images:      []string{"https://via.placeholder.com/300x300?text=Backpack"},
			Price:       120,
			SalePrice:   120,
			Stock:       25,
			Status:      StatusActive,
			Options:     Options{Colors: []string{"Red", "Blue"}},
		},
	}
}
