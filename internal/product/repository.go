package product

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/abdalwely/online-store/internal/db"
)

type Repository interface {
	Get(ctx context.Context, storeID, id string) (Product, error)
	List(ctx context.Context, storeID string, f Filter) ([]Product, error)
	Categories(ctx context.Context, storeID string) ([]Category, error)
	Count(ctx context.Context, storeID string) (int, error)
	Create(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	Delete(ctx context.Context, storeID, id string) error
	SetStock(ctx context.Context, storeID, id string, stock int) error
}

type PostgresRepository struct {
	pool db.DBPool
}

func NewPostgresRepository(pool db.DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const productColumns = `id, store_id, name, description, category, tags, images, price, sale_price, stock, status, sizes, colors, rating, featured, created_at, updated_at`

func (r *PostgresRepository) Get(ctx context.Context, storeID, id string) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE store_id=$1 AND id=$2`, storeID, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context, storeID string, f Filter) ([]Product, error) {
	query, args := listQuery(storeID, f)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Categories(ctx context.Context, storeID string) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT category, count(*)
		FROM products
		WHERE store_id=$1 AND status='active' AND category <> ''
		GROUP BY category
		ORDER BY category
	`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Count(ctx context.Context, storeID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products WHERE store_id=$1`, storeID).Scan(&n)
	return n, err
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO products (id, store_id, name, description, category, tags, images, price, sale_price, stock, status, sizes, colors, rating, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, p.ID, p.StoreID, p.Name, p.Description, p.Category, nonNil(p.Tags), nonNil(p.Images), p.Price, p.SalePrice,
		p.Stock, p.Status, nonNil(p.Options.Sizes), nonNil(p.Options.Colors), p.Rating, p.Featured)
	return err
}

func (r *PostgresRepository) Update(ctx context.Context, p Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET
			name=$3, description=$4, category=$5, tags=$6, images=$7, price=$8, sale_price=$9,
			stock=$10, status=$11, sizes=$12, colors=$13, featured=$14, updated_at=now()
		WHERE store_id=$1 AND id=$2
	`, p.StoreID, p.ID, p.Name, p.Description, p.Category, nonNil(p.Tags), nonNil(p.Images), p.Price, p.SalePrice,
		p.Stock, p.Status, nonNil(p.Options.Sizes), nonNil(p.Options.Colors), p.Featured)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, storeID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE store_id=$1 AND id=$2`, storeID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) SetStock(ctx context.Context, storeID, id string, stock int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET stock=$3, updated_at=now() WHERE store_id=$1 AND id=$2`, storeID, id, stock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.StoreID, &p.Name, &p.Description, &p.Category, &p.Tags, &p.Images,
		&p.Price, &p.SalePrice, &p.Stock, &p.Status, &p.Options.Sizes, &p.Options.Colors,
		&p.Rating, &p.Featured, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// AdjustStock adds delta units to a product inside the caller's transaction.
// A product deleted since is skipped.
func AdjustStock(ctx context.Context, exec db.Executor, storeID, id string, delta int) error {
	_, err := exec.Exec(ctx, `UPDATE products SET stock = stock + $3, updated_at=now() WHERE store_id=$1 AND id=$2`, storeID, id, delta)
	return err
}
