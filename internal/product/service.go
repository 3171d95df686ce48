package product

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo   Repository
	logger *log.Logger
}

func NewService(repo Repository, logger *log.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Browse lists the active catalog of a store.
func (s *Service) Browse(ctx context.Context, storeID string, f Filter) ([]Product, error) {
	f.IncludeInactive = false
	return s.repo.List(ctx, storeID, f)
}

// ListAll is the trader view, inactive products included.
func (s *Service) ListAll(ctx context.Context, storeID string, f Filter) ([]Product, error) {
	f.IncludeInactive = true
	return s.repo.List(ctx, storeID, f)
}

func (s *Service) Get(ctx context.Context, storeID, id string) (Product, error) {
	return s.repo.Get(ctx, storeID, id)
}

// GetVisible returns a product only when shoppers may see it.
func (s *Service) GetVisible(ctx context.Context, storeID, id string) (Product, error) {
	p, err := s.repo.Get(ctx, storeID, id)
	if err != nil {
		return Product{}, err
	}
	if !p.Active() {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) Categories(ctx context.Context, storeID string) ([]Category, error) {
	return s.repo.Categories(ctx, storeID)
}

func (s *Service) Count(ctx context.Context, storeID string) (int, error) {
	return s.repo.Count(ctx, storeID)
}

func (s *Service) Create(ctx context.Context, storeID string, p Product) (Product, error) {
	p = normalize(p)
	p.ID = uuid.NewString()
	p.StoreID = storeID
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	s.logger.Printf("product created store=%s id=%s", storeID, p.ID)
	return s.repo.Get(ctx, storeID, p.ID)
}

func (s *Service) Update(ctx context.Context, storeID, id string, p Product) (Product, error) {
	p = normalize(p)
	p.ID = id
	p.StoreID = storeID
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, storeID, id)
}

func (s *Service) Delete(ctx context.Context, storeID, id string) error {
	if err := s.repo.Delete(ctx, storeID, id); err != nil {
		return err
	}
	s.logger.Printf("product deleted store=%s id=%s", storeID, id)
	return nil
}

func (s *Service) SetStock(ctx context.Context, storeID, id string, stock int) error {
	if stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	return s.repo.SetStock(ctx, storeID, id, stock)
}

// SeedDemo writes the demo catalog into storeID.
func (s *Service) SeedDemo(ctx context.Context, storeID string) error {
	for _, p := range DemoProducts() {
		p.ID = uuid.NewString()
		p.StoreID = storeID
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("seed %s: %w", p.Name, err)
		}
	}
	return nil
}

func normalize(p Product) Product {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if p.Status == "" {
		p.Status = StatusActive
	}
	p.Tags = trimAll(p.Tags)
	p.Options.Sizes = trimAll(p.Options.Sizes)
	p.Options.Colors = trimAll(p.Options.Colors)
	return p
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
