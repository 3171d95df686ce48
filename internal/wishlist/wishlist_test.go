package wishlist

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdalwely/online-store/internal/product"
	"github.com/abdalwely/online-store/internal/session"
)

type fakeCatalog map[string]product.Product

func (f fakeCatalog) Get(ctx context.Context, storeID, id string) (product.Product, error) {
	p, ok := f[id]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	return p, nil
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	catalog := fakeCatalog{
		"watch": {ID: "watch", Name: "Smart Watch", Status: product.StatusActive},
		"bag":   {ID: "bag", Name: "Backpack", Status: product.StatusActive},
		"old":   {ID: "old", Name: "Old Hat", Status: product.StatusInactive},
	}
	svc := NewService(client, catalog, time.Hour)
	sess := &session.Session{StoreID: "s1", VisitorID: "v1"}

	saved, err := svc.Toggle(ctx, sess, "watch")
	require.NoError(t, err)
	assert.True(t, saved)
	saved, err = svc.Toggle(ctx, sess, "bag")
	require.NoError(t, err)
	assert.True(t, saved)

	assert.True(t, mr.Exists("wishlist:s1:v1"))
	assert.Equal(t, time.Hour, mr.TTL("wishlist:s1:v1"))

	ids, err := svc.IDs(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, []string{"bag", "watch"}, ids)

	saved, err = svc.Toggle(ctx, sess, "watch")
	require.NoError(t, err)
	assert.False(t, saved)

	_, err = svc.Toggle(ctx, sess, "old")
	assert.ErrorIs(t, err, product.ErrNotFound)
	_, err = svc.Toggle(ctx, sess, "ghost")
	assert.ErrorIs(t, err, product.ErrNotFound)

	delete(catalog, "bag")
	products, err := svc.Products(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, products)

	_, err = svc.Toggle(ctx, &session.Session{StoreID: "s1"}, "watch")
	assert.ErrorIs(t, err, ErrNoOwner)
}
