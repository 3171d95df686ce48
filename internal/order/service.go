package order

import (
	"context"
	"log"

	"github.com/abdalwely/online-store/internal/session"
)

// Publisher announces status changes. Failures are logged, never returned to the caller.
type Publisher interface {
	PublishStatusChanged(ctx context.Context, o Order, previous Status) error
}

type Service struct {
	repo      Repository
	publisher Publisher
	logger    *log.Logger
}

func NewService(repo Repository, publisher Publisher, logger *log.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

func (s *Service) ListForStore(ctx context.Context, storeID string, status Status) ([]Order, error) {
	return s.repo.ListByStore(ctx, storeID, status)
}

func (s *Service) GetForStore(ctx context.Context, storeID, id string) (Order, error) {
	return s.repo.Get(ctx, storeID, id)
}

// History lists the signed-in customer's orders in the active store, newest first.
func (s *Service) History(ctx context.Context, sess *session.Session) ([]Order, error) {
	if !sess.CustomerOfStore() {
		return nil, ErrForbidden
	}
	return s.repo.ListByCustomer(ctx, sess.StoreID, sess.Actor.AccountID)
}

// GetForCustomer hides orders of other customers behind ErrNotFound.
func (s *Service) GetForCustomer(ctx context.Context, sess *session.Session, id string) (Order, error) {
	if !sess.CustomerOfStore() {
		return Order{}, ErrForbidden
	}
	o, err := s.repo.Get(ctx, sess.StoreID, id)
	if err != nil {
		return Order{}, err
	}
	if o.CustomerID != sess.Actor.AccountID {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (s *Service) UpdateStatus(ctx context.Context, sess *session.Session, storeID, id string, next Status) (Order, error) {
	if !sess.TraderOf(storeID) {
		return Order{}, ErrForbidden
	}
	if _, err := ParseStatus(string(next)); err != nil {
		return Order{}, err
	}

	o, prev, err := s.repo.UpdateStatus(ctx, storeID, id, next)
	if err != nil {
		return Order{}, err
	}
	if prev == next {
		return o, nil
	}
	s.logger.Printf("order status changed store=%s order=%s from=%s to=%s", storeID, id, prev, next)

	if s.publisher != nil {
		if err := s.publisher.PublishStatusChanged(ctx, o, prev); err != nil {
			s.logger.Printf("publish order.status_changed failed order=%s: %v", id, err)
		}
	}
	return o, nil
}
