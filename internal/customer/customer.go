package customer

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/abdalwely/online-store/internal/db"
)

var ErrNotFound = errors.New("customer not found")

// Customer is one shopper's record in one store.
type Customer struct {
	StoreID     string    `json:"storeId"`
	AccountID   string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	TotalOrders int       `json:"totalOrders"`
	TotalSpent  float64   `json:"totalSpent"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Repository interface {
	// Register creates the record with zeroed counters and reports false when it already exists.
	Register(ctx context.Context, c Customer) (bool, error)
	Get(ctx context.Context, storeID, accountID string) (Customer, error)
	List(ctx context.Context, storeID string) ([]Customer, error)
	Count(ctx context.Context, storeID string) (int, error)
}

type PostgresRepository struct {
	pool db.DBPool
}

func NewPostgresRepository(pool db.DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const customerColumns = `store_id, account_id, name, email, phone, total_orders, total_spent, created_at`

func (r *PostgresRepository) Register(ctx context.Context, c Customer) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO customers (store_id, account_id, name, email, phone)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (store_id, account_id) DO NOTHING
	`, c.StoreID, c.AccountID, c.Name, c.Email, c.Phone)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepository) Get(ctx context.Context, storeID, accountID string) (Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE store_id=$1 AND account_id=$2`, storeID, accountID).
		Scan(&c.StoreID, &c.AccountID, &c.Name, &c.Email, &c.Phone, &c.TotalOrders, &c.TotalSpent, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, err
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context, storeID string) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers WHERE store_id=$1 ORDER BY total_spent DESC, created_at`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.StoreID, &c.AccountID, &c.Name, &c.Email, &c.Phone, &c.TotalOrders, &c.TotalSpent, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Count(ctx context.Context, storeID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM customers WHERE store_id=$1`, storeID).Scan(&n)
	return n, err
}

// RecordOrder adds one order of amount to the customer's counters, creating the record if needed.
func RecordOrder(ctx context.Context, exec db.Executor, c Customer, amount float64) error {
	_, err := exec.Exec(ctx, `
		INSERT INTO customers (store_id, account_id, name, email, phone, total_orders, total_spent)
		VALUES ($1, $2, $3, $4, $5, 1, $6)
		ON CONFLICT (store_id, account_id) DO UPDATE SET
			total_orders = customers.total_orders + 1,
			total_spent = customers.total_spent + EXCLUDED.total_spent
	`, c.StoreID, c.AccountID, c.Name, c.Email, c.Phone, amount)
	return err
}

// ReverseOrder undoes RecordOrder for a cancelled order.
func ReverseOrder(ctx context.Context, exec db.Executor, storeID, accountID string, amount float64) error {
	_, err := exec.Exec(ctx, `
		UPDATE customers SET
			total_orders = GREATEST(total_orders - 1, 0),
			total_spent = GREATEST(total_spent - $3, 0)
		WHERE store_id=$1 AND account_id=$2
	`, storeID, accountID, amount)
	return err
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(ctx context.Context, c Customer) error {
	_, err := s.repo.Register(ctx, c)
	return err
}

func (s *Service) Get(ctx context.Context, storeID, accountID string) (Customer, error) {
	return s.repo.Get(ctx, storeID, accountID)
}

func (s *Service) List(ctx context.Context, storeID string) ([]Customer, error) {
	return s.repo.List(ctx, storeID)
}

func (s *Service) Count(ctx context.Context, storeID string) (int, error) {
	return s.repo.Count(ctx, storeID)
}
