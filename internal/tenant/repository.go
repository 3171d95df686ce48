package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/abdalwely/online-store/internal/db"
)

type Repository interface {
	Get(ctx context.Context, id string) (Store, error)
	List(ctx context.Context) ([]Store, error)
	// Create inserts the store and reports false when the id is already taken.
	Create(ctx context.Context, s Store) (bool, error)
	SetStatus(ctx context.Context, id, status string) error
	UpdateAppearance(ctx context.Context, id string, a Appearance) error
}

type PostgresRepository struct {
	pool db.DBPool
}

func NewPostgresRepository(pool db.DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const storeColumns = `id, name, category, owner_id, owner_name, owner_email, status, template, plan, demo, settings, created_at, updated_at`

func (r *PostgresRepository) Get(ctx context.Context, id string) (Store, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE id=$1`, id)
	s, err := scanStore(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Store{}, ErrNotFound
		}
		return Store{}, err
	}
	return s, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Store, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+storeColumns+` FROM stores ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, s Store) (bool, error) {
	settings, err := json.Marshal(s.Settings)
	if err != nil {
		return false, fmt.Errorf("marshal settings: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO stores (id, name, category, owner_id, owner_name, owner_email, status, template, plan, demo, settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`, s.ID, s.Name, s.Category, s.OwnerID, s.OwnerName, s.OwnerEmail, s.Status, s.Template, s.Plan, s.Demo, settings)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE stores SET status=$2, updated_at=now() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateAppearance(ctx context.Context, id string, a Appearance) error {
	settings, err := json.Marshal(a.Settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE stores SET name=$2, template=$3, settings=$4, updated_at=now()
		WHERE id=$1
	`, id, a.Name, a.Template, settings)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanStore(row pgx.Row) (Store, error) {
	var (
		s        Store
		settings []byte
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Category, &s.OwnerID, &s.OwnerName, &s.OwnerEmail,
		&s.Status, &s.Template, &s.Plan, &s.Demo, &settings, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return Store{}, err
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &s.Settings); err != nil {
			return Store{}, fmt.Errorf("decode settings for store %s: %w", s.ID, err)
		}
	}
	return s, nil
}
