package analytics

import (
	"context"
	"fmt"
	"time"
)

type Counter interface {
	Count(ctx context.Context, storeID string) (int, error)
}

type Projections interface {
	Get(ctx context.Context, storeID string) (Projection, error)
}

// Stats is the trader dashboard summary.
type Stats struct {
	Products       int       `json:"products"`
	Customers      int       `json:"customers"`
	Orders         int       `json:"orders"`
	Revenue        float64   `json:"revenue"`
	CancelledCount int       `json:"cancelled"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Service struct {
	products    Counter
	customers   Counter
	projections Projections
}

func NewService(products, customers Counter, projections Projections) *Service {
	return &Service{products: products, customers: customers, projections: projections}
}

func (s *Service) Stats(ctx context.Context, storeID string) (Stats, error) {
	products, err := s.products.Count(ctx, storeID)
	if err != nil {
		return Stats{}, fmt.Errorf("count products: %w", err)
	}
	customers, err := s.customers.Count(ctx, storeID)
	if err != nil {
		return Stats{}, fmt.Errorf("count customers: %w", err)
	}
	p, err := s.projections.Get(ctx, storeID)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Products:       products,
		Customers:      customers,
		Orders:         p.OrdersCount,
		Revenue:        p.Revenue,
		CancelledCount: p.CancelledCount,
		UpdatedAt:      p.UpdatedAt,
	}, nil
}
