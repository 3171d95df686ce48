package coupon

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/abdalwely/online-store/internal/db"
)

type Repository interface {
	Get(ctx context.Context, storeID, code string) (Coupon, error)
	List(ctx context.Context, storeID string) ([]Coupon, error)
	// Create reports false when the code already exists in the store.
	Create(ctx context.Context, c Coupon) (bool, error)
	Delete(ctx context.Context, storeID, code string) error
	SetStatus(ctx context.Context, storeID, code, status string) error
}

type PostgresRepository struct {
	pool db.DBPool
}

func NewPostgresRepository(pool db.DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const couponColumns = `store_id, code, type, value, minimum_amount, max_uses, used_count, status, created_at`

func (r *PostgresRepository) Get(ctx context.Context, storeID, code string) (Coupon, error) {
	c, err := scanCoupon(r.pool.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE store_id=$1 AND code=$2`, storeID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Coupon{}, ErrNotFound
		}
		return Coupon{}, err
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context, storeID string) ([]Coupon, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+couponColumns+` FROM coupons WHERE store_id=$1 ORDER BY created_at DESC`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, c Coupon) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO coupons (store_id, code, type, value, minimum_amount, max_uses, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (store_id, code) DO NOTHING
	`, c.StoreID, c.Code, string(c.Type), c.Value, c.MinimumAmount, c.MaxUses, c.Status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, storeID, code string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE store_id=$1 AND code=$2`, storeID, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, storeID, code, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE coupons SET status=$3 WHERE store_id=$1 AND code=$2`, storeID, code, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Redeem counts one use of a stored coupon inside the caller's transaction.
// It fails with ErrExhausted when the coupon was deactivated or used up since it was quoted.
func Redeem(ctx context.Context, exec db.Executor, storeID, code string) error {
	tag, err := exec.Exec(ctx, `
		UPDATE coupons SET used_count = used_count + 1
		WHERE store_id=$1 AND code=$2 AND status='active' AND (max_uses = 0 OR used_count < max_uses)
	`, storeID, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExhausted
	}
	return nil
}

func scanCoupon(row pgx.Row) (Coupon, error) {
	var (
		c   Coupon
		typ string
	)
	err := row.Scan(&c.StoreID, &c.Code, &typ, &c.Value, &c.MinimumAmount, &c.MaxUses, &c.UsedCount, &c.Status, &c.CreatedAt)
	c.Type = Type(typ)
	return c, err
}
