package tenant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// CatalogSeeder fills a freshly materialized demo store with sample products.
type CatalogSeeder interface {
	SeedDemo(ctx context.Context, storeID string) error
}

type Service struct {
	repo   Repository
	seeder CatalogSeeder
	demoID string
	logger *log.Logger

	group singleflight.Group
}

func NewService(repo Repository, seeder CatalogSeeder, demoID string, logger *log.Logger) *Service {
	return &Service{repo: repo, seeder: seeder, demoID: demoID, logger: logger}
}

func (s *Service) DemoID() string { return s.demoID }

// Resolve loads a store by id. An empty id selects the demo store, and a
// missing demo store is materialized with its sample catalog.
func (s *Service) Resolve(ctx context.Context, id string) (Store, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = s.demoID
	}

	st, err := s.repo.Get(ctx, id)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, ErrNotFound) || id != s.demoID {
		return Store{}, err
	}

	v, err, _ := s.group.Do(id, func() (any, error) {
		return s.materializeDemo(ctx, id)
	})
	if err != nil {
		return Store{}, err
	}
	return v.(Store), nil
}

// ForStorefront resolves a store that may be shown to shoppers.
func (s *Service) ForStorefront(ctx context.Context, id string) (Store, error) {
	st, err := s.Resolve(ctx, id)
	if err != nil {
		return Store{}, err
	}
	if !st.Active() {
		return Store{}, ErrInactive
	}
	return st, nil
}

func (s *Service) materializeDemo(ctx context.Context, id string) (Store, error) {
	demo := DemoStore(id)
	created, err := s.repo.Create(ctx, demo)
	if err != nil {
		return Store{}, fmt.Errorf("create demo store: %w", err)
	}
	if created {
		if s.seeder != nil {
			if err := s.seeder.SeedDemo(ctx, id); err != nil {
				return Store{}, fmt.Errorf("seed demo catalog: %w", err)
			}
		}
		s.logger.Printf("materialized demo store id=%s", id)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (Store, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Store, error) {
	return s.repo.List(ctx)
}

// Register creates the store owned by a newly signed-up trader.
func (s *Service) Register(ctx context.Context, in NewStore) (Store, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" || in.Category == "" || in.OwnerID == "" {
		return Store{}, fmt.Errorf("%w: name, category and owner are required", ErrInvalidStore)
	}

	st := Store{
		ID:         uuid.NewString(),
		Name:       in.Name,
		Category:   in.Category,
		OwnerID:    in.OwnerID,
		OwnerName:  in.OwnerName,
		OwnerEmail: in.OwnerEmail,
		Status:     StatusActive,
		Template:   "default",
		Plan:       "free",
		Settings:   DefaultSettings(),
	}
	created, err := s.repo.Create(ctx, st)
	if err != nil {
		return Store{}, fmt.Errorf("create store: %w", err)
	}
	if !created {
		return Store{}, ErrAlreadyExists
	}
	s.logger.Printf("registered store id=%s owner=%s", st.ID, st.OwnerID)
	return s.repo.Get(ctx, st.ID)
}

// ToggleStatus flips a store between active and inactive.
func (s *Service) ToggleStatus(ctx context.Context, id string) (Store, error) {
	st, err := s.repo.Get(ctx, id)
	if err != nil {
		return Store{}, err
	}
	next := StatusInactive
	if st.Status == StatusInactive {
		next = StatusActive
	}
	if err := s.repo.SetStatus(ctx, id, next); err != nil {
		return Store{}, err
	}
	s.logger.Printf("store status changed id=%s from=%s to=%s", id, st.Status, next)
	st.Status = next
	return st, nil
}

func (s *Service) UpdateAppearance(ctx context.Context, id string, a Appearance) (Store, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return Store{}, fmt.Errorf("%w: name is required", ErrInvalidStore)
	}
	if a.Template == "" {
		a.Template = "default"
	}
	if err := a.Settings.Validate(); err != nil {
		return Store{}, err
	}
	if err := s.repo.UpdateAppearance(ctx, id, a); err != nil {
		return Store{}, err
	}
	return s.repo.Get(ctx, id)
}
