package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/abdalwely/online-store/internal/db"
	"github.com/abdalwely/online-store/internal/session"
)

type Account struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Role         session.Role `json:"role"`
	Name         string       `json:"name"`
	// StoreID is the trader's store or the store a customer first signed up in.
	StoreID   string    `json:"storeId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type AccountRepository interface {
	// Create reports false when the email is taken.
	Create(ctx context.Context, a Account) (bool, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	List(ctx context.Context) ([]Account, error)
}

type PostgresAccounts struct {
	pool db.DBPool
}

func NewPostgresAccounts(pool db.DBPool) *PostgresAccounts {
	return &PostgresAccounts{pool: pool}
}

const accountColumns = `id, email, password_hash, role, name, store_id, created_at`

func (r *PostgresAccounts) Create(ctx context.Context, a Account) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (id, email, password_hash, role, name, store_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO NOTHING
	`, a.ID, a.Email, a.PasswordHash, string(a.Role), a.Name, a.StoreID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresAccounts) GetByEmail(ctx context.Context, email string) (Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email=$1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrUserNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *PostgresAccounts) List(ctx context.Context) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		a    Account
		role string
	)
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &role, &a.Name, &a.StoreID, &a.CreatedAt)
	a.Role = session.Role(role)
	return a, err
}
