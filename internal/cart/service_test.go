package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdalwely/online-store/internal/order"
	"github.com/abdalwely/online-store/internal/product"
	"github.com/abdalwely/online-store/internal/session"
)

type fakeCatalog struct {
	products map[string]product.Product
}

func (f *fakeCatalog) Get(ctx context.Context, storeID, id string) (product.Product, error) {
	p, ok := f.products[id]
	if !ok || p.StoreID != storeID {
		return product.Product{}, product.ErrNotFound
	}
	return p, nil
}

func newFixture(t *testing.T) (*Service, *RedisStore, *fakeCatalog) {
	t.Helper()
	store, _ := newRedisStore(t)
	bag := product.Product{ID: "bag", StoreID: "s1", Name: "Backpack", Price: 120, Stock: 25, Status: product.StatusActive,
		Options: product.Options{Colors: []string{"Blue"}}}
	catalog := &fakeCatalog{products: map[string]product.Product{"watch": watch(10), "bag": bag}}

	svc := NewService(store, catalog, log.New(io.Discard, "", 0))
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc, store, catalog
}

func guest(visitor string) *session.Session {
	return &session.Session{StoreID: "s1", VisitorID: visitor}
}

func customer(id, visitor string) *session.Session {
	return &session.Session{StoreID: "s1", VisitorID: visitor, Actor: &session.Actor{AccountID: id, Role: session.RoleCustomer, StoreID: "s1"}}
}

func TestServiceRequiresOwner(t *testing.T) {
	svc, _, _ := newFixture(t)
	_, err := svc.Get(context.Background(), &session.Session{StoreID: "s1"})
	assert.ErrorIs(t, err, ErrNoOwner)
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _, _ := newFixture(t)
	_, err := svc.AddItem(context.Background(), guest("v1"), "ghost", 1, Variant{})
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestChangeQuantityUsesCurrentStock(t *testing.T) {
	ctx := context.Background()
	svc, _, catalog := newFixture(t)
	sess := guest("v1")

	_, err := svc.AddItem(ctx, sess, "watch", 2, Variant{})
	require.NoError(t, err)

	p := catalog.products["watch"]
	p.Stock = 2
	catalog.products["watch"] = p

	_, err = svc.ChangeQuantity(ctx, sess, 0, 1)
	var limit *StockLimitError
	require.True(t, errors.As(err, &limit))
	assert.Equal(t, 2, limit.Available)

	c, err := svc.ChangeQuantity(ctx, sess, 0, -2)
	require.NoError(t, err)
	assert.True(t, c.Empty())
}

// Persisted state must match what the service handed back, and rejected
// mutations must leave the stored cart untouched.
func TestPersistedCartMatchesInMemory(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newFixture(t)
	sess := guest("v1")
	rng := rand.New(rand.NewSource(42))

	ids := []string{"watch", "bag", "ghost"}
	colors := map[string][]string{"watch": {"", "Black", "Silver", "Gold"}, "bag": {"", "Blue"}, "ghost": {""}}

	expected := New("s1", "v1")
	for i := 0; i < 300; i++ {
		var (
			got Cart
			err error
		)
		switch op := rng.Intn(4); op {
		case 0, 1:
			id := ids[rng.Intn(len(ids))]
			cs := colors[id]
			got, err = svc.AddItem(ctx, sess, id, rng.Intn(4), Variant{Color: cs[rng.Intn(len(cs))]})
		case 2:
			got, err = svc.ChangeQuantity(ctx, sess, rng.Intn(len(expected.Items)+1), rng.Intn(5)-2)
		case 3:
			got, err = svc.RemoveItem(ctx, sess, rng.Intn(len(expected.Items)+1))
		}

		stored, lerr := store.Load(ctx, "s1", "v1")
		require.NoError(t, lerr)
		if err == nil {
			expected = got
		}
		require.Equal(t, expected.Items, stored.Items, "step %d", i)

		for _, it := range stored.Items {
			limit := map[string]int{"watch": 10, "bag": 25}[it.ProductID]
			require.LessOrEqual(t, it.Quantity, limit)
			require.Positive(t, it.Quantity)
		}
	}
}

func TestAddItemNeverExceedsStock(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newFixture(t)
	sess := guest("v2")

	for i := 0; i < 20; i++ {
		c, err := svc.AddItem(ctx, sess, "watch", 3, Variant{})
		if err != nil {
			var limit *StockLimitError
			require.True(t, errors.As(err, &limit))
			continue
		}
		require.LessOrEqual(t, c.Count(), 10)
	}

	c, err := svc.Get(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 9, c.Count())
}

func TestClearAndDiscard(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newFixture(t)
	sess := guest("v1")

	_, err := svc.AddItem(ctx, sess, "bag", 1, Variant{})
	require.NoError(t, err)

	c, err := svc.Clear(ctx, sess)
	require.NoError(t, err)
	assert.True(t, c.Empty())

	_, err = svc.AddItem(ctx, sess, "bag", 1, Variant{})
	require.NoError(t, err)
	require.NoError(t, svc.Discard(ctx, "s1", "v1"))

	stored, err := store.Load(ctx, "s1", "v1")
	require.NoError(t, err)
	assert.True(t, stored.Empty())
}

func TestAdoptMergesGuestCart(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newFixture(t)

	_, err := svc.AddItem(ctx, guest("v1"), "bag", 2, Variant{})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, customer("c1", "other"), "bag", 1, Variant{})
	require.NoError(t, err)

	require.NoError(t, svc.Adopt(ctx, "s1", "v1", "c1"))

	c, err := svc.Get(ctx, customer("c1", "v1"))
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)

	left, err := store.Load(ctx, "s1", "v1")
	require.NoError(t, err)
	assert.True(t, left.Empty())

	require.NoError(t, svc.Adopt(ctx, "s1", "", "c1"))
}

func TestReorder(t *testing.T) {
	ctx := context.Background()
	svc, _, catalog := newFixture(t)
	sess := customer("c1", "v1")

	delivered := order.Order{
		ID:     "o1",
		Status: order.StatusDelivered,
		Items: []order.Item{
			{ProductID: "watch", Name: "Smart Watch", Price: 299, Quantity: 1, Color: "Black"},
			{ProductID: "bag", Name: "Backpack", Price: 120, Quantity: 30},
			{ProductID: "retired", Name: "Old Hat", Price: 10, Quantity: 1},
		},
	}

	c, skipped, err := svc.Reorder(ctx, sess, delivered)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "watch", c.Items[0].ProductID)
	assert.Equal(t, catalog.products["watch"].EffectivePrice(), c.Items[0].Price)

	require.Len(t, skipped, 2)
	assert.Equal(t, "bag", skipped[0].ProductID)
	assert.Contains(t, skipped[0].Reason, "available: 25")
	assert.Equal(t, "retired", skipped[1].ProductID)

	pending := delivered
	pending.Status = order.StatusPending
	_, _, err = svc.Reorder(ctx, sess, pending)
	assert.ErrorIs(t, err, ErrReorderNotAllowed)
}
