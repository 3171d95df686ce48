package checkout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrNotSignedIn         = errors.New("sign in to this store to place an order")
	ErrUnsupportedPayment  = errors.New("payment method is not offered by this store")
	ErrDuplicateSubmission = errors.New("order already submitted with this idempotency key")
)

type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing shipping fields: " + strings.Join(e.Fields, ", ")
}

// DepletedLine is a product whose stock could not cover the order.
type DepletedLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name,omitempty"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

type InsufficientStockError struct {
	Lines []DepletedLine
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		name := l.Name
		if name == "" {
			name = l.ProductID
		}
		parts[i] = fmt.Sprintf("%s (requested %d, available %d)", name, l.Requested, l.Available)
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}
