package checkout

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/abdalwely/online-store/internal/coupon"
	"github.com/abdalwely/online-store/internal/customer"
	"github.com/abdalwely/online-store/internal/db"
	"github.com/abdalwely/online-store/internal/order"
	"github.com/abdalwely/online-store/internal/product"
)

// Line is the quantity of one product to reserve, summed across variants.
type Line struct {
	ProductID string
	Quantity  int
}

// Tx is one checkout attempt. Nothing it writes is visible until Commit.
type Tx interface {
	FindOrderByIdempotencyKey(ctx context.Context, storeID, key string) (order.Order, error)
	// ReserveStock decrements every line, or nothing when any line is depleted.
	ReserveStock(ctx context.Context, storeID string, lines []Line) ([]DepletedLine, error)
	RedeemCoupon(ctx context.Context, storeID, code string) error
	InsertOrder(ctx context.Context, o order.Order) error
	RecordCustomerOrder(ctx context.Context, c customer.Customer, amount float64) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Repository interface {
	Begin(ctx context.Context) (Tx, error)
	FindOrderByIdempotencyKey(ctx context.Context, storeID, key string) (order.Order, error)
}

type PostgresRepository struct {
	pool db.DBPool
}

func NewPostgresRepository(pool db.DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Begin(ctx context.Context) (Tx, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &pgTx{tx: tx}, nil
}

func (r *PostgresRepository) FindOrderByIdempotencyKey(ctx context.Context, storeID, key string) (order.Order, error) {
	return order.FindByIdempotencyKey(ctx, r.pool, storeID, key)
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) FindOrderByIdempotencyKey(ctx context.Context, storeID, key string) (order.Order, error) {
	return order.FindByIdempotencyKey(ctx, t.tx, storeID, key)
}

func (t *pgTx) ReserveStock(ctx context.Context, storeID string, lines []Line) ([]DepletedLine, error) {
	sorted := append([]Line{}, lines...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	var depleted []DepletedLine
	for _, line := range sorted {
		var (
			available int
			status    string
		)
		err := t.tx.QueryRow(ctx, `
			SELECT stock, status
			FROM products
			WHERE store_id=$1 AND id=$2
			FOR UPDATE
		`, storeID, line.ProductID).Scan(&available, &status)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("lock product %s: %w", line.ProductID, err)
			}
			available = 0
		}
		if status != product.StatusActive {
			available = 0
		}
		if available < line.Quantity {
			depleted = append(depleted, DepletedLine{ProductID: line.ProductID, Requested: line.Quantity, Available: available})
		}
	}
	if len(depleted) > 0 {
		return depleted, nil
	}

	for _, line := range sorted {
		if err := product.AdjustStock(ctx, t.tx, storeID, line.ProductID, -line.Quantity); err != nil {
			return nil, fmt.Errorf("reserve %s: %w", line.ProductID, err)
		}
	}
	return nil, nil
}

func (t *pgTx) RedeemCoupon(ctx context.Context, storeID, code string) error {
	return coupon.Redeem(ctx, t.tx, storeID, code)
}

func (t *pgTx) InsertOrder(ctx context.Context, o order.Order) error {
	err := order.Insert(ctx, t.tx, o)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateSubmission
	}
	return err
}

func (t *pgTx) RecordCustomerOrder(ctx context.Context, c customer.Customer, amount float64) error {
	return customer.RecordOrder(ctx, t.tx, c, amount)
}

func (t *pgTx) Commit(ctx context.Context) error { return t.tx.Commit(ctx) }

func (t *pgTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }
