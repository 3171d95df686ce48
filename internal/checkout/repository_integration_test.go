//go:build integration

package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdalwely/online-store/internal/order"
	"github.com/abdalwely/online-store/internal/pricing"
	"github.com/abdalwely/online-store/internal/testutil"
)

func TestPostgresRepository_ReserveAndInsert(t *testing.T) {
	ctx := context.Background()
	pool := testutil.StartPostgres(t)

	_, err := pool.Exec(ctx, `INSERT INTO stores (id, name) VALUES ('s1', 'Shop')`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO products (store_id, id, name, price, stock) VALUES ('s1', 'mug', 'Mug', 25, 2)`)
	require.NoError(t, err)

	repo := NewPostgresRepository(pool)

	tx, err := repo.Begin(ctx)
	require.NoError(t, err)
	depleted, err := tx.ReserveStock(ctx, "s1", []Line{{ProductID: "mug", Quantity: 3}, {ProductID: "ghost", Quantity: 1}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []DepletedLine{
		{ProductID: "mug", Requested: 3, Available: 2},
		{ProductID: "ghost", Requested: 1, Available: 0},
	}, depleted)
	require.NoError(t, tx.Rollback(ctx))

	o := order.Order{
		ID:             "o1",
		StoreID:        "s1",
		CustomerID:     "c1",
		Shipping:       order.ShippingAddress{Name: "Sara", Phone: "0500", Address: "1 Main", City: "Riyadh"},
		Items:          []order.Item{{ProductID: "mug", Name: "Mug", Price: 25, Quantity: 2}},
		Breakdown:      pricing.Breakdown{Subtotal: 50, Total: 50},
		PaymentMethod:  "cod",
		Status:         order.StatusPending,
		IdempotencyKey: "key-1",
		CreatedAt:      time.Now().UTC(),
	}

	tx, err = repo.Begin(ctx)
	require.NoError(t, err)
	depleted, err = tx.ReserveStock(ctx, "s1", []Line{{ProductID: "mug", Quantity: 2}})
	require.NoError(t, err)
	assert.Empty(t, depleted)
	require.NoError(t, tx.InsertOrder(ctx, o))
	require.NoError(t, tx.Commit(ctx))

	var stock int
	require.NoError(t, pool.QueryRow(ctx, `SELECT stock FROM products WHERE store_id='s1' AND id='mug'`).Scan(&stock))
	assert.Equal(t, 0, stock)

	got, err := repo.FindOrderByIdempotencyKey(ctx, "s1", "key-1")
	require.NoError(t, err)
	assert.Equal(t, "o1", got.ID)
	assert.Equal(t, 50.0, got.Total)

	tx, err = repo.Begin(ctx)
	require.NoError(t, err)
	o.ID = "o2"
	assert.ErrorIs(t, tx.InsertOrder(ctx, o), ErrDuplicateSubmission)
	require.NoError(t, tx.Rollback(ctx))
}
