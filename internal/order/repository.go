package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/abdalwely/online-store/internal/customer"
	"github.com/abdalwely/online-store/internal/db"
	"github.com/abdalwely/online-store/internal/product"
)

type Repository interface {
	Get(ctx context.Context, storeID, id string) (Order, error)
	// ListByStore returns the store's orders newest first; an empty status matches all.
	ListByStore(ctx context.Context, storeID string, status Status) ([]Order, error)
	ListByCustomer(ctx context.Context, storeID, customerID string) ([]Order, error)
	// UpdateStatus moves the order to next and returns it with its previous status.
	UpdateStatus(ctx context.Context, storeID, id string, next Status) (Order, Status, error)
}

type PostgresRepository struct {
	pool db.DBPool
}

func NewPostgresRepository(pool db.DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const orderColumns = `id, store_id, customer_id, customer_name, customer_email, customer_phone, shipping_address, items,
	subtotal, coupon_code, discount, shipping_cost, tax_amount, total, payment_method, notes, status,
	COALESCE(idempotency_key, ''), created_at, updated_at`

func (r *PostgresRepository) Get(ctx context.Context, storeID, id string) (Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE store_id=$1 AND id=$2`, storeID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return o, nil
}

func (r *PostgresRepository) ListByStore(ctx context.Context, storeID string, status Status) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE store_id=$1`
	args := []any{storeID}
	if status != "" {
		query += ` AND status=$2`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`
	return r.list(ctx, query, args...)
}

func (r *PostgresRepository) ListByCustomer(ctx context.Context, storeID, customerID string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE store_id=$1 AND customer_id=$2 ORDER BY created_at DESC`, storeID, customerID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, storeID, id string, next Status) (Order, Status, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE store_id=$1 AND id=$2 FOR UPDATE`, storeID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, "", ErrNotFound
		}
		return Order{}, "", err
	}

	prev := o.Status
	if prev == next {
		return o, prev, nil
	}
	if !prev.CanTransitionTo(next) {
		return Order{}, prev, &IllegalTransitionError{From: prev, To: next}
	}

	if err := tx.QueryRow(ctx, `UPDATE orders SET status=$3, updated_at=now() WHERE store_id=$1 AND id=$2 RETURNING updated_at`,
		storeID, id, string(next)).Scan(&o.UpdatedAt); err != nil {
		return Order{}, prev, fmt.Errorf("update status: %w", err)
	}
	o.Status = next

	if next == StatusCancelled {
		if err := restock(ctx, tx, o); err != nil {
			return Order{}, prev, err
		}
		if err := customer.ReverseOrder(ctx, tx, o.StoreID, o.CustomerID, o.Total); err != nil {
			return Order{}, prev, fmt.Errorf("reverse customer counters: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, prev, fmt.Errorf("commit: %w", err)
	}
	return o, prev, nil
}

// restock returns the order's units to the shelf, in product id order.
func restock(ctx context.Context, exec db.Executor, o Order) error {
	units := o.Units()
	ids := make([]string, 0, len(units))
	for id := range units {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := product.AdjustStock(ctx, exec, o.StoreID, id, units[id]); err != nil {
			return fmt.Errorf("restock %s: %w", id, err)
		}
	}
	return nil
}

// Insert writes a new order through exec, usually the checkout transaction.
func Insert(ctx context.Context, exec db.Executor, o Order) error {
	shipping, err := json.Marshal(o.Shipping)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	var key any
	if o.IdempotencyKey != "" {
		key = o.IdempotencyKey
	}

	_, err = exec.Exec(ctx, `
		INSERT INTO orders (id, store_id, customer_id, customer_name, customer_email, customer_phone, shipping_address, items,
			subtotal, coupon_code, discount, shipping_cost, tax_amount, total, payment_method, notes, status, idempotency_key,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $19)
	`, o.ID, o.StoreID, o.CustomerID, o.CustomerName, o.CustomerEmail, o.CustomerPhone, shipping, items,
		o.Subtotal, o.CouponCode, o.Discount, o.ShippingCost, o.TaxAmount, o.Total, o.PaymentMethod, o.Notes,
		string(o.Status), key, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// FindByIdempotencyKey returns ErrNotFound when no order was submitted with key.
func FindByIdempotencyKey(ctx context.Context, exec db.Executor, storeID, key string) (Order, error) {
	o, err := scanOrder(exec.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE store_id=$1 AND idempotency_key=$2`, storeID, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return o, nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o               Order
		shipping, items []byte
		status          string
	)
	err := row.Scan(&o.ID, &o.StoreID, &o.CustomerID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &shipping, &items,
		&o.Subtotal, &o.CouponCode, &o.Discount, &o.ShippingCost, &o.TaxAmount, &o.Total, &o.PaymentMethod, &o.Notes, &status,
		&o.IdempotencyKey, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	if err := json.Unmarshal(shipping, &o.Shipping); err != nil {
		return Order{}, fmt.Errorf("unmarshal shipping address: %w", err)
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, fmt.Errorf("unmarshal items: %w", err)
	}
	return o, nil
}
