package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Hour), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	empty, err := store.Load(ctx, "s1", "v1")
	require.NoError(t, err)
	assert.True(t, empty.Empty())
	assert.Equal(t, "s1", empty.StoreID)

	c := New("s1", "v1")
	c.Items = append(c.Items, Item{ProductID: "watch", Name: "Smart Watch", Price: 249, Quantity: 2, Color: "Black"})
	require.NoError(t, store.Save(ctx, c))

	assert.True(t, mr.Exists("cart:s1:v1"))
	assert.Equal(t, time.Hour, mr.TTL("cart:s1:v1"))

	got, err := store.Load(ctx, "s1", "v1")
	require.NoError(t, err)
	assert.Equal(t, c.Items, got.Items)

	other, err := store.Load(ctx, "s2", "v1")
	require.NoError(t, err)
	assert.True(t, other.Empty())

	require.NoError(t, store.Delete(ctx, "s1", "v1"))
	assert.False(t, mr.Exists("cart:s1:v1"))
}

func TestRedisStoreCorruptValue(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, mr.Set("cart:s1:v1", "{not json"))

	_, err := store.Load(context.Background(), "s1", "v1")
	assert.Error(t, err)
}
