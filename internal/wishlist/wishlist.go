// Package wishlist keeps the products a shopper saved for later, per store.
package wishlist

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abdalwely/online-store/internal/product"
	"github.com/abdalwely/online-store/internal/session"
)

var (
	ErrNoOwner  = errors.New("wishlist owner is required")
	ErrDisabled = errors.New("wishlist is disabled for this store")
)

type Catalog interface {
	Get(ctx context.Context, storeID, id string) (product.Product, error)
}

type Service struct {
	client  redis.Cmdable
	catalog Catalog
	ttl     time.Duration
}

func NewService(client redis.Cmdable, catalog Catalog, ttl time.Duration) *Service {
	return &Service{client: client, catalog: catalog, ttl: ttl}
}

// Toggle adds productID when absent and removes it otherwise. It reports whether the product is now saved.
func (s *Service) Toggle(ctx context.Context, sess *session.Session, productID string) (bool, error) {
	key, err := storageKey(sess)
	if err != nil {
		return false, err
	}

	removed, err := s.client.SRem(ctx, key, productID).Result()
	if err != nil {
		return false, fmt.Errorf("redis srem wishlist: %w", err)
	}
	if removed > 0 {
		return false, nil
	}

	p, err := s.catalog.Get(ctx, sess.StoreID, productID)
	if err != nil {
		return false, err
	}
	if !p.Active() {
		return false, product.ErrNotFound
	}

	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, key, productID)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis sadd wishlist: %w", err)
	}
	return true, nil
}

// IDs returns the saved product ids in lexical order.
func (s *Service) IDs(ctx context.Context, sess *session.Session) ([]string, error) {
	key, err := storageKey(sess)
	if err != nil {
		return nil, err
	}
	ids, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers wishlist: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Products resolves the saved ids against the catalog, dropping products that are gone or hidden.
func (s *Service) Products(ctx context.Context, sess *session.Session) ([]product.Product, error) {
	ids, err := s.IDs(ctx, sess)
	if err != nil {
		return nil, err
	}
	out := make([]product.Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.catalog.Get(ctx, sess.StoreID, id)
		if errors.Is(err, product.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if p.Active() {
			out = append(out, p)
		}
	}
	return out, nil
}

func storageKey(sess *session.Session) (string, error) {
	owner := sess.CartOwner()
	if owner == "" {
		return "", ErrNoOwner
	}
	return fmt.Sprintf("wishlist:%s:%s", sess.StoreID, owner), nil
}
