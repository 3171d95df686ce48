// Package platform manages the operator-level catalogs shared by every store:
// storefront templates and subscription plans.
package platform

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/abdalwely/online-store/internal/tenant"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid catalog entry")
)

// Unlimited marks a plan without a product cap.
const Unlimited = -1

type Template struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Colors      tenant.Colors `json:"colors"`
	Sections    []string      `json:"sections"`
	Features    []string      `json:"features"`
}

type Plan struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	MaxProducts int      `json:"maxProducts"`
	Storage     string   `json:"storage"`
	Support     string   `json:"support"`
	Features    []string `json:"features"`
}

func (t Template) Validate() error {
	if strings.TrimSpace(t.ID) == "" || strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: id and name are required", ErrInvalid)
	}
	return nil
}

func (p Plan) Validate() error {
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: id and name are required", ErrInvalid)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalid)
	}
	if p.MaxProducts < Unlimited {
		return fmt.Errorf("%w: maxProducts must be -1 (unlimited) or positive", ErrInvalid)
	}
	return nil
}

func DefaultTemplates() []Template {
	return []Template{
		{
			ID:          "fashion",
			Name:        "Fashion",
			Description: "Template for clothing and fashion stores",
			Colors:      tenant.Colors{Primary: "#E91E63", Secondary: "#9C27B0", Background: "#FAFAFA"},
			Sections:    []string{"home", "categories", "offers", "about"},
			Features:    []string{"gallery", "advanced-filters", "ratings"},
		},
		{
			ID:          "electronics",
			Name:        "Electronics",
			Description: "Template for electronics stores",
			Colors:      tenant.Colors{Primary: "#2196F3", Secondary: "#03A9F4", Background: "#F5F5F5"},
			Sections:    []string{"home", "products", "brands", "support"},
			Features:    []string{"product-compare", "tech-specs", "warranty"},
		},
	}
}

func DefaultPlans() []Plan {
	return []Plan{
		{ID: "free", Name: "Free", Price: 0, MaxProducts: 50, Storage: "1 GB", Support: "email", Features: []string{"basic store", "cash on delivery"}},
		{ID: "premium", Name: "Premium", Price: 99, MaxProducts: 500, Storage: "10 GB", Support: "phone and email", Features: []string{"advanced store", "online payment", "detailed reports"}},
		{ID: "enterprise", Name: "Enterprise", Price: 299, MaxProducts: Unlimited, Storage: "unlimited", Support: "24/7", Features: []string{"all features", "custom API", "dedicated support"}},
	}
}

type Repository interface {
	ListTemplates(ctx context.Context) ([]Template, error)
	UpsertTemplate(ctx context.Context, t Template) error
	DeleteTemplate(ctx context.Context, id string) error
	ListPlans(ctx context.Context) ([]Plan, error)
	UpsertPlan(ctx context.Context, p Plan) error
	DeletePlan(ctx context.Context, id string) error
}

type Service struct {
	repo   Repository
	logger *log.Logger
}

func NewService(repo Repository, logger *log.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Templates lists the template catalog, writing the defaults when it is empty.
func (s *Service) Templates(ctx context.Context) ([]Template, error) {
	list, err := s.repo.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		return list, nil
	}
	defaults := DefaultTemplates()
	for _, t := range defaults {
		if err := s.repo.UpsertTemplate(ctx, t); err != nil {
			return nil, fmt.Errorf("create default template %s: %w", t.ID, err)
		}
	}
	s.logger.Printf("created default templates count=%d", len(defaults))
	return defaults, nil
}

// Plans lists the plan catalog, writing the defaults when it is empty.
func (s *Service) Plans(ctx context.Context) ([]Plan, error) {
	list, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		return list, nil
	}
	defaults := DefaultPlans()
	for _, p := range defaults {
		if err := s.repo.UpsertPlan(ctx, p); err != nil {
			return nil, fmt.Errorf("create default plan %s: %w", p.ID, err)
		}
	}
	s.logger.Printf("created default plans count=%d", len(defaults))
	return defaults, nil
}

func (s *Service) SaveTemplate(ctx context.Context, t Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.repo.UpsertTemplate(ctx, t)
}

func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	return s.repo.DeleteTemplate(ctx, id)
}

func (s *Service) SavePlan(ctx context.Context, p Plan) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.repo.UpsertPlan(ctx, p)
}

func (s *Service) DeletePlan(ctx context.Context, id string) error {
	return s.repo.DeletePlan(ctx, id)
}
