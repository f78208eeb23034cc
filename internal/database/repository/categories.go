package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// CategoryRepo handles categories.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) Upsert(ctx context.Context, c Category) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO categories(id, name, sort_order)
	VALUES (?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
	 sort_order=excluded.sort_order;
	`, c.ID, c.Name, c.SortOrder)
	return err
}

// EnsureByName returns the id of the named category, inserting it if absent.
func (r *CategoryRepo) EnsureByName(ctx context.Context, name string) (string, error) {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO categories(id, name) VALUES (?, ?)
	ON CONFLICT(name) DO NOTHING;
	`, uuid.NewString(), name)
	if err != nil {
		return "", err
	}
	row := r.db.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = ?`, name)
	var id string
	if err := row.Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, sort_order FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
