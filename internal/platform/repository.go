package platform

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abdalwely/online-store/internal/db"
)

type PostgresRepository struct {
	pool db.DBPool
}

func NewPostgresRepository(pool db.DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) ListTemplates(ctx context.Context) ([]Template, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, colors, sections, features FROM templates ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var (
			t      Template
			colors []byte
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &colors, &t.Sections, &t.Features); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(colors, &t.Colors); err != nil {
			return nil, fmt.Errorf("decode colors for template %s: %w", t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpsertTemplate(ctx context.Context, t Template) error {
	colors, err := json.Marshal(t.Colors)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO templates (id, name, description, colors, sections, features)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name=EXCLUDED.name, description=EXCLUDED.description, colors=EXCLUDED.colors,
			sections=EXCLUDED.sections, features=EXCLUDED.features, updated_at=now()
	`, t.ID, t.Name, t.Description, colors, nonNil(t.Sections), nonNil(t.Features))
	return err
}

func (r *PostgresRepository) DeleteTemplate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM templates WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) ListPlans(ctx context.Context) ([]Plan, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, price, max_products, storage, support, features FROM plans ORDER BY price`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Plan
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.MaxProducts, &p.Storage, &p.Support, &p.Features); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpsertPlan(ctx context.Context, p Plan) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO plans (id, name, price, max_products, storage, support, features)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name=EXCLUDED.name, price=EXCLUDED.price, max_products=EXCLUDED.max_products,
			storage=EXCLUDED.storage, support=EXCLUDED.support, features=EXCLUDED.features, updated_at=now()
	`, p.ID, p.Name, p.Price, p.MaxProducts, p.Storage, p.Support, nonNil(p.Features))
	return err
}

func (r *PostgresRepository) DeletePlan(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM plans WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
