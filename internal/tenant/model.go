package tenant

import (
	"errors"
	"fmt"
	"time"

	"github.com/abdalwely/online-store/internal/pricing"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

var (
	ErrNotFound      = errors.New("store not found")
	ErrInactive      = errors.New("store is not active")
	ErrInvalidStore  = errors.New("invalid store")
	ErrAlreadyExists = errors.New("store already exists")
)

type Colors struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
}

type Notifications struct {
	OrderAccepted      bool `json:"orderAccepted"`
	OrderStatusChanged bool `json:"orderStatusChanged"`
}

type Settings struct {
	Colors      Colors `json:"colors"`
	Logo        string `json:"logo"`
	Description string `json:"description"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Language    string `json:"language"`
	Currency    string `json:"defaultCurrency"`

	ShippingFee           float64 `json:"shippingFee"`
	FreeShippingThreshold float64 `json:"freeShippingThreshold"`
	TaxEnabled            bool    `json:"taxEnabled"`
	TaxRate               float64 `json:"taxRate"`

	EnableCoupons        bool     `json:"enableCoupons"`
	EnableWishlist       bool     `json:"enableWishlist"`
	CODEnabled           bool     `json:"codEnabled"`
	OnlinePaymentEnabled bool     `json:"onlinePaymentEnabled"`
	PaymentMethods       []string `json:"paymentMethods"`

	Notifications Notifications `json:"notifications"`
}

func (s Settings) PricingRules() pricing.Rules {
	return pricing.Rules{
		ShippingFee:           s.ShippingFee,
		FreeShippingThreshold: s.FreeShippingThreshold,
		TaxEnabled:            s.TaxEnabled,
		TaxRate:               s.TaxRate,
	}
}

// AcceptsPayment reports whether method is offered by the store.
func (s Settings) AcceptsPayment(method string) bool {
	for _, m := range s.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

func (s Settings) Validate() error {
	if s.ShippingFee < 0 {
		return fmt.Errorf("%w: shippingFee must not be negative", ErrInvalidStore)
	}
	if s.FreeShippingThreshold < 0 {
		return fmt.Errorf("%w: freeShippingThreshold must not be negative", ErrInvalidStore)
	}
	if s.TaxRate < 0 || s.TaxRate > 100 {
		return fmt.Errorf("%w: taxRate must be between 0 and 100", ErrInvalidStore)
	}
	if len(s.PaymentMethods) == 0 {
		return fmt.Errorf("%w: at least one payment method is required", ErrInvalidStore)
	}
	return nil
}

type Store struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	OwnerID    string    `json:"ownerId,omitempty"`
	OwnerName  string    `json:"ownerName,omitempty"`
	OwnerEmail string    `json:"ownerEmail,omitempty"`
	Status     string    `json:"status"`
	Template   string    `json:"template"`
	Plan       string    `json:"plan"`
	Demo       bool      `json:"demo"`
	Settings   Settings  `json:"settings"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (s Store) Active() bool { return s.Status == StatusActive }

// NewStore is the trader registration input.
type NewStore struct {
	Name       string
	Category   string
	OwnerID    string
	OwnerName  string
	OwnerEmail string
}

// Appearance is what a trader may change on their own store.
type Appearance struct {
	Name     string   `json:"name"`
	Template string   `json:"template"`
	Settings Settings `json:"settings"`
}

func DefaultSettings() Settings {
	return Settings{
		Colors:                Colors{Primary: "#1E40AF", Secondary: "#0891B2", Background: "#F8FAFC"},
		Language:              "ar",
		Currency:              "SAR",
		ShippingFee:           0,
		FreeShippingThreshold: 200,
		EnableCoupons:         true,
		EnableWishlist:        true,
		CODEnabled:            true,
		PaymentMethods:        []string{"cod"},
		Notifications:         Notifications{OrderAccepted: true, OrderStatusChanged: true},
	}
}

func DemoStore(id string) Store {
	s := DefaultSettings()
	s.Description = "Demo storefront, fully editable from the trader dashboard."
	s.ShippingFee = 15
	s.OnlinePaymentEnabled = true
	s.PaymentMethods = []string{"cod", "stripe", "paypal"}

	return Store{
		ID:       id,
		Name:     "My Demo Store",
		Status:   StatusActive,
		Template: "base-v2",
		Plan:     "free",
		Demo:     true,
		Settings: s,
	}
}
