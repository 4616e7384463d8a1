// Package categories serves the shared category catalogue. Categories are
// global rows, not per user; only admins may change them.
package categories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/Shavkat07/Moneta/internal/domain"
)

type Repo struct {
	Pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{Pool: pool}
}

func (r *Repo) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT id, name, icon_slug, parent_id FROM categories ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	defer rows.Close()

	out := make([]domain.Category, 0, 32)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.IconSlug, &c.ParentID); err != nil {
			return nil, errors.Wrap(err, "scan category")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := r.Pool.QueryRow(ctx,
		`SELECT id, name, icon_slug, parent_id FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.IconSlug, &c.ParentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errors.New("category not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get category")
	}
	return &c, nil
}

func (r *Repo) Create(ctx context.Context, name string, iconSlug *string, parentID *int64) (*domain.Category, error) {
	c := domain.Category{Name: name, IconSlug: iconSlug, ParentID: parentID}
	err := r.Pool.QueryRow(ctx,
		`INSERT INTO categories (name, icon_slug, parent_id) VALUES ($1, $2, $3) RETURNING id`,
		name, iconSlug, parentID,
	).Scan(&c.ID)
	if err != nil {
		return nil, errors.Wrap(err, "insert category")
	}
	return &c, nil
}
