package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// PayeeRepo handles payees. Payee names are unique; EnsureByName relies on
// that constraint instead of check-then-insert.
type PayeeRepo struct {
	db *sql.DB
}

func NewPayeeRepo(db *sql.DB) *PayeeRepo { return &PayeeRepo{db: db} }

// EnsureByName returns the id of the payee with the given name, inserting it
// first if needed. Idempotent: concurrent callers converge on one row.
func (r *PayeeRepo) EnsureByName(ctx context.Context, name string) (string, error) {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO payees(id, name) VALUES (?, ?)
	ON CONFLICT(name) DO NOTHING;
	`, uuid.NewString(), name)
	if err != nil {
		return "", err
	}
	row := r.db.QueryRowContext(ctx, `SELECT id FROM payees WHERE name = ?`, name)
	var id string
	if err := row.Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *PayeeRepo) ByName(ctx context.Context, name string) (*Payee, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name FROM payees WHERE name = ?`, name)
	var p Payee
	if err := row.Scan(&p.ID, &p.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PayeeRepo) List(ctx context.Context) ([]Payee, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM payees ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payee
	for rows.Next() {
		var p Payee
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
