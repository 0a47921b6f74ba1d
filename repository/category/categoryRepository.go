package categoryrepo

import (
	"context"

	"clothesrental/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo interface {
	Create(ctx context.Context, name string) (int64, error)
	List(ctx context.Context) ([]model.Category, error)
	Update(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}

type repo struct{ db *pgxpool.Pool }

func New(db *pgxpool.Pool) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, name string) (int64, error) {
	const q = `
		INSERT INTO categories (name)
		VALUES ($1)
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, q, name).Scan(&id)
	return id, err
}

func (r *repo) List(ctx context.Context) ([]model.Category, error) {
	const q = `
		SELECT id, name
		FROM categories
		ORDER BY name`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repo) Update(ctx context.Context, id int64, name string) error {
	const q = `UPDATE categories SET name = $2 WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id, name)
	return err
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM categories WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id)
	return err
}
