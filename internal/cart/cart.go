package cart

import (
	"errors"
	"fmt"
	"time"

	"github.com/abdalwely/online-store/internal/pricing"
	"github.com/abdalwely/online-store/internal/product"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrProductUnavailable = errors.New("product is not available")
	ErrInvalidVariant     = errors.New("selected size or color is not offered")
	ErrItemNotFound       = errors.New("cart item not found")
	ErrNoOwner            = errors.New("cart owner is required")
)

// StockLimitError rejects a quantity above the product's stock.
type StockLimitError struct {
	ProductID string
	Requested int
	Available int
}

func (e *StockLimitError) Error() string {
	return fmt.Sprintf("requested quantity exceeds stock (available: %d)", e.Available)
}

type Variant struct {
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

// Item is one cart line. Name, price and image are copied from the product when the line is created.
type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
}

func (it Item) matches(productID string, v Variant) bool {
	return it.ProductID == productID && it.Size == v.Size && it.Color == v.Color
}

type Cart struct {
	StoreID   string    `json:"storeId"`
	OwnerID   string    `json:"ownerId"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func New(storeID, ownerID string) Cart {
	return Cart{StoreID: storeID, OwnerID: ownerID, Items: []Item{}}
}

func (c Cart) Empty() bool { return len(c.Items) == 0 }

// Count is the number of units across all lines.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c Cart) Lines() []pricing.Line {
	lines := make([]pricing.Line, len(c.Items))
	for i, it := range c.Items {
		lines[i] = pricing.Line{Price: it.Price, Quantity: it.Quantity}
	}
	return lines
}

func (c Cart) clone() Cart {
	out := c
	out.Items = append([]Item{}, c.Items...)
	return out
}

// Add puts quantity units of p into the cart, merging with an existing
// line for the same product and variant.
func (c *Cart) Add(p product.Product, quantity int, v Variant) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !p.Active() {
		return ErrProductUnavailable
	}
	if p.Stock <= 0 {
		return ErrOutOfStock
	}
	if !p.OffersVariant(v.Size, v.Color) {
		return ErrInvalidVariant
	}

	for i := range c.Items {
		if !c.Items[i].matches(p.ID, v) {
			continue
		}
		next := c.Items[i].Quantity + quantity
		if next > p.Stock {
			return &StockLimitError{ProductID: p.ID, Requested: next, Available: p.Stock}
		}
		c.Items[i].Quantity = next
		return nil
	}

	if quantity > p.Stock {
		return &StockLimitError{ProductID: p.ID, Requested: quantity, Available: p.Stock}
	}
	c.Items = append(c.Items, Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.EffectivePrice(),
		Image:     p.Image(),
		Quantity:  quantity,
		Size:      v.Size,
		Color:     v.Color,
	})
	return nil
}

// ChangeQuantity adjusts line index by delta. A line reaching zero is removed.
func (c *Cart) ChangeQuantity(index, delta, stock int) error {
	if index < 0 || index >= len(c.Items) {
		return ErrItemNotFound
	}
	next := c.Items[index].Quantity + delta
	if next <= 0 {
		return c.Remove(index)
	}
	if delta > 0 && next > stock {
		return &StockLimitError{ProductID: c.Items[index].ProductID, Requested: next, Available: stock}
	}
	c.Items[index].Quantity = next
	return nil
}

func (c *Cart) Remove(index int) error {
	if index < 0 || index >= len(c.Items) {
		return ErrItemNotFound
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
	return nil
}

func (c *Cart) Clear() {
	c.Items = []Item{}
}

// merge folds other's lines into c without stock checks.
func (c *Cart) merge(other Cart) {
	for _, o := range other.Items {
		v := Variant{Size: o.Size, Color: o.Color}
		found := false
		for i := range c.Items {
			if c.Items[i].matches(o.ProductID, v) {
				c.Items[i].Quantity += o.Quantity
				found = true
				break
			}
		}
		if !found {
			c.Items = append(c.Items, o)
		}
	}
}

// View is the cart as shown to the shopper, priced with the store rules.
type View struct {
	StoreID string            `json:"storeId"`
	Items   []Item            `json:"items"`
	Count   int               `json:"count"`
	Empty   bool              `json:"empty"`
	Totals  pricing.Breakdown `json:"totals"`
}

func (c Cart) View(rules pricing.Rules) View {
	v := View{
		StoreID: c.StoreID,
		Items:   c.Items,
		Count:   c.Count(),
		Empty:   c.Empty(),
	}
	if v.Items == nil {
		v.Items = []Item{}
	}
	if !v.Empty {
		v.Totals = pricing.Calculate(c.Lines(), rules, pricing.Discount{})
	}
	return v
}
