//go:build integration

package analytics

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdalwely/online-store/internal/events"
	"github.com/abdalwely/online-store/internal/order"
	"github.com/abdalwely/online-store/internal/pricing"
	"github.com/abdalwely/online-store/internal/testutil"
)

func TestProjectorConsumesPublishedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := log.New(io.Discard, "", 0)
	pool := testutil.StartPostgres(t)
	conn := testutil.StartRabbitMQ(t)

	pubCh, err := conn.Channel()
	require.NoError(t, err)
	consumeCh, err := conn.Channel()
	require.NoError(t, err)

	projector := NewProjector(pool, logger)
	require.NoError(t, events.StartConsumer(ctx, consumeCh, "analytics", events.OrderCreatedRoutingKey, projector.HandleOrderCreated, logger))
	require.NoError(t, events.StartConsumer(ctx, consumeCh, "analytics", events.OrderStatusChangedRoutingKey, projector.HandleStatusChanged, logger))

	publisher, err := events.NewPublisher(pubCh, events.NewSequenceRepository(pool), "storefront-test", logger)
	require.NoError(t, err)

	o := order.Order{
		ID:         "o-int-1",
		StoreID:    "demo-store",
		CustomerID: "c1",
		Items:      []order.Item{{ProductID: "bag", Name: "Backpack", Price: 120, Quantity: 2}},
		Breakdown:  pricing.Breakdown{Subtotal: 240, Total: 240},
		Status:     order.StatusPending,
	}
	require.NoError(t, publisher.PublishOrderCreated(ctx, o))

	repo := NewRepository(pool)
	require.Eventually(t, func() bool {
		p, err := repo.Get(ctx, "demo-store")
		return err == nil && p.OrdersCount == 1
	}, 30*time.Second, 200*time.Millisecond)

	o.Status = order.StatusCancelled
	require.NoError(t, publisher.PublishStatusChanged(ctx, o, order.StatusPending))

	require.Eventually(t, func() bool {
		p, err := repo.Get(ctx, "demo-store")
		return err == nil && p.CancelledCount == 1
	}, 30*time.Second, 200*time.Millisecond)

	p, err := repo.Get(ctx, "demo-store")
	require.NoError(t, err)
	assert.Equal(t, 1, p.OrdersCount)
	assert.Equal(t, 0.0, p.Revenue)
}
