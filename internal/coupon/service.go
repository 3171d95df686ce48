package coupon

import (
	"context"
	"errors"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Evaluate quotes code against subtotal. enabled is the store's coupon switch.
func (s *Service) Evaluate(ctx context.Context, storeID, code string, subtotal float64, enabled bool) (Quote, error) {
	if !enabled {
		return Quote{}, ErrDisabled
	}
	code = Normalize(code)
	if code == "" {
		return Quote{}, ErrNotFound
	}

	stored := true
	c, err := s.repo.Get(ctx, storeID, code)
	if errors.Is(err, ErrNotFound) {
		builtin, ok := Builtins[code]
		if !ok {
			return Quote{}, ErrNotFound
		}
		c, err, stored = builtin, nil, false
	}
	if err != nil {
		return Quote{}, err
	}

	if err := c.Check(subtotal); err != nil {
		return Quote{}, err
	}
	return Quote{Code: c.Code, Type: c.Type, Value: c.Value, Discount: c.Discount(subtotal), Stored: stored}, nil
}

func (s *Service) List(ctx context.Context, storeID string) ([]Coupon, error) {
	return s.repo.List(ctx, storeID)
}

func (s *Service) Add(ctx context.Context, storeID string, c Coupon) (Coupon, error) {
	c.StoreID = storeID
	c.Code = Normalize(c.Code)
	c.Status = StatusActive
	c.UsedCount = 0
	if err := c.Validate(); err != nil {
		return Coupon{}, err
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return Coupon{}, err
	}
	if !created {
		return Coupon{}, ErrDuplicate
	}
	return s.repo.Get(ctx, storeID, c.Code)
}

func (s *Service) Delete(ctx context.Context, storeID, code string) error {
	return s.repo.Delete(ctx, storeID, Normalize(code))
}

func (s *Service) SetStatus(ctx context.Context, storeID, code, status string) error {
	if status != StatusActive && status != StatusInactive {
		return ErrInvalidCoupon
	}
	return s.repo.SetStatus(ctx, storeID, Normalize(code), status)
}
