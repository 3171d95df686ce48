package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists cart snapshots.
type Store interface {
	// Load returns an empty cart when none is stored.
	Load(ctx context.Context, storeID, ownerID string) (Cart, error)
	Save(ctx context.Context, c Cart) error
	Delete(ctx context.Context, storeID, ownerID string) error
}

type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context, storeID, ownerID string) (Cart, error) {
	data, err := r.client.Get(ctx, storageKey(storeID, ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(storeID, ownerID), nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("redis get cart: %w", err)
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("unmarshal cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	return c, nil
}

func (r *RedisStore) Save(ctx context.Context, c Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := r.client.Set(ctx, storageKey(c.StoreID, c.OwnerID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, storeID, ownerID string) error {
	if err := r.client.Del(ctx, storageKey(storeID, ownerID)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

func storageKey(storeID, ownerID string) string {
	return fmt.Sprintf("cart:%s:%s", storeID, ownerID)
}
