package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/abdalwely/online-store/internal/db"
)

// Projection is the event-fed order summary of one store.
type Projection struct {
	StoreID        string    `json:"-"`
	OrdersCount    int       `json:"orders"`
	Revenue        float64   `json:"revenue"`
	CancelledCount int       `json:"cancelled"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Repository struct {
	pool db.DBPool
}

func NewRepository(pool db.DBPool) *Repository {
	return &Repository{pool: pool}
}

// Get reads the projection, falling back to a live aggregate over orders for
// stores no event has reached yet.
func (r *Repository) Get(ctx context.Context, storeID string) (Projection, error) {
	p := Projection{StoreID: storeID}
	err := r.pool.QueryRow(ctx, `
		SELECT orders_count, revenue::float8, cancelled_count, updated_at
		FROM store_stats WHERE store_id=$1`, storeID).
		Scan(&p.OrdersCount, &p.Revenue, &p.CancelledCount, &p.UpdatedAt)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Projection{}, fmt.Errorf("select store_stats: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total) FILTER (WHERE status <> 'cancelled'), 0)::float8,
		       COUNT(*) FILTER (WHERE status = 'cancelled')
		FROM orders WHERE store_id=$1`, storeID).
		Scan(&p.OrdersCount, &p.Revenue, &p.CancelledCount)
	if err != nil {
		return Projection{}, fmt.Errorf("aggregate orders: %w", err)
	}
	p.UpdatedAt = time.Now().UTC()
	return p, nil
}

func recordCreated(ctx context.Context, exec db.Executor, storeID string, total float64) error {
	_, err := exec.Exec(ctx, `
		INSERT INTO store_stats (store_id, orders_count, revenue, cancelled_count, updated_at)
		VALUES ($1, 1, $2, 0, NOW())
		ON CONFLICT (store_id) DO UPDATE SET
			orders_count = store_stats.orders_count + 1,
			revenue = store_stats.revenue + EXCLUDED.revenue,
			updated_at = NOW()`, storeID, total)
	if err != nil {
		return fmt.Errorf("record created: %w", err)
	}
	return nil
}

func recordCancelled(ctx context.Context, exec db.Executor, storeID string, total float64) error {
	_, err := exec.Exec(ctx, `
		INSERT INTO store_stats (store_id, orders_count, revenue, cancelled_count, updated_at)
		VALUES ($1, 0, 0, 1, NOW())
		ON CONFLICT (store_id) DO UPDATE SET
			revenue = GREATEST(store_stats.revenue - $2, 0),
			cancelled_count = store_stats.cancelled_count + 1,
			updated_at = NOW()`, storeID, total)
	if err != nil {
		return fmt.Errorf("record cancelled: %w", err)
	}
	return nil
}
