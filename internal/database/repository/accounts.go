package repository

import (
	"context"
	"database/sql"
)

// AccountRepo handles accounts.
type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

const accountColumns = `id, name, offbudget, closed, tombstone, debt, debt_type, apr,
 COALESCE(interest_scheme, 'compound_monthly'), COALESCE(compounding_frequency, 'monthly'),
 interest_posting_day, apr_last_updated, created_at, updated_at`

func (r *AccountRepo) Upsert(ctx context.Context, a Account) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO accounts(id, name, offbudget, closed, tombstone, debt, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 offbudget=excluded.offbudget,
	 closed=excluded.closed,
	 tombstone=excluded.tombstone,
	 debt=excluded.debt,
	 updated_at=CURRENT_TIMESTAMP;
	`, a.ID, a.Name, a.OffBudget, a.Closed, a.Tombstone, a.Debt)
	return err
}

func (r *AccountRepo) Get(ctx context.Context, id string) (*Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// ByName returns the account with the given name, or nil. Names are not
// unique in the schema; the first match by insertion order wins.
func (r *AccountRepo) ByName(ctx context.Context, name string) (*Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts
	 WHERE tombstone = 0 AND name = ? ORDER BY created_at LIMIT 1`, name)
	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) List(ctx context.Context) ([]Account, error) {
	return r.list(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tombstone = 0 ORDER BY name`)
}

// ListDetectable returns open, non-debt accounts eligible for candidate
// scoring.
func (r *AccountRepo) ListDetectable(ctx context.Context) ([]Account, error) {
	return r.list(ctx, `SELECT `+accountColumns+` FROM accounts
	 WHERE tombstone = 0 AND closed = 0 AND debt = 0 ORDER BY name`)
}

func (r *AccountRepo) list(ctx context.Context, query string) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAccount(row scanner) (Account, error) {
	var a Account
	var debtType sql.NullString
	var apr sql.NullFloat64
	var postingDay sql.NullInt64
	var aprUpdated sql.NullTime
	if err := row.Scan(&a.ID, &a.Name, &a.OffBudget, &a.Closed, &a.Tombstone, &a.Debt,
		&debtType, &apr, &a.InterestScheme, &a.CompoundingFrequency,
		&postingDay, &aprUpdated, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Account{}, err
	}
	if debtType.Valid {
		a.DebtType = &debtType.String
	}
	if apr.Valid {
		a.APR = &apr.Float64
	}
	if postingDay.Valid {
		day := int(postingDay.Int64)
		a.InterestPostingDay = &day
	}
	if aprUpdated.Valid {
		a.APRLastUpdated = &aprUpdated.Time
	}
	return a, nil
}
