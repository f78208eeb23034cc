package repository

import (
	"context"
	"database/sql"
	"time"
)

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(
	 id, account_id, amount, date, payee_id, category_id, notes, cleared, tombstone,
	 created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`, t.ID, t.AccountID, t.AmountCents, t.Date, t.PayeeID, t.CategoryID, t.Notes, t.Cleared, t.Tombstone)
	return err
}

func (r *TransactionRepo) Get(ctx context.Context, id string) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, account_id, amount, date, payee_id, category_id, notes, cleared, tombstone, created_at, updated_at
	FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// BalanceCents sums the account's non-tombstoned transaction amounts.
func (r *TransactionRepo) BalanceCents(ctx context.Context, accountID string) (int64, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT COALESCE(SUM(amount), 0) FROM transactions
	WHERE account_id = ? AND tombstone = 0`, accountID)
	var balance int64
	if err := row.Scan(&balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// ExistsSimilar reports whether the account already holds a live transaction
// with the same calendar date and amount. Import dedup uses this; it is
// deliberately loose so re-running the same export is safe.
func (r *TransactionRepo) ExistsSimilar(ctx context.Context, accountID string, date time.Time, amountCents int64) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM transactions
	WHERE account_id = ? AND tombstone = 0 AND amount = ? AND date(date) = ?`,
		accountID, amountCents, date.Format("2006-01-02"))
	var n int
	if err := row.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecentPositive returns the account's most recent positive-amount
// transactions, newest first, capped at limit.
func (r *TransactionRepo) RecentPositive(ctx context.Context, accountID string, limit int) ([]Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, account_id, amount, date, payee_id, category_id, notes, cleared, tombstone, created_at, updated_at
	FROM transactions
	WHERE account_id = ? AND tombstone = 0 AND amount > 0
	ORDER BY date DESC, created_at DESC
	LIMIT ?`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// RecentNegativeDetailed returns the account's most recent negative-amount
// transactions joined to payee and category names, newest first.
func (r *TransactionRepo) RecentNegativeDetailed(ctx context.Context, accountID string, limit int) ([]TransactionDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT t.id, t.account_id, t.amount, t.date, t.payee_id, t.category_id, t.notes,
	 t.cleared, t.tombstone, t.created_at, t.updated_at, p.name, c.name
	FROM transactions t
	LEFT JOIN payees p ON p.id = t.payee_id
	LEFT JOIN categories c ON c.id = t.category_id
	WHERE t.account_id = ? AND t.tombstone = 0 AND t.amount < 0
	ORDER BY t.date DESC, t.created_at DESC
	LIMIT ?`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows)
}

func collectDetails(rows *sql.Rows) ([]TransactionDetail, error) {
	var out []TransactionDetail
	for rows.Next() {
		var d TransactionDetail
		var payeeID, categoryID, notes, payeeName, categoryName sql.NullString
		if err := rows.Scan(&d.ID, &d.AccountID, &d.AmountCents, &d.Date, &payeeID, &categoryID,
			&notes, &d.Cleared, &d.Tombstone, &d.CreatedAt, &d.UpdatedAt, &payeeName, &categoryName); err != nil {
			return nil, err
		}
		if payeeID.Valid {
			d.PayeeID = &payeeID.String
		}
		if categoryID.Valid {
			d.CategoryID = &categoryID.String
		}
		if notes.Valid {
			d.Notes = &notes.String
		}
		if payeeName.Valid {
			d.PayeeName = &payeeName.String
		}
		if categoryName.Valid {
			d.CategoryName = &categoryName.String
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// RecentDetailed returns the account's most recent transactions of either
// sign joined to payee and category names, newest first.
func (r *TransactionRepo) RecentDetailed(ctx context.Context, accountID string, limit int) ([]TransactionDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT t.id, t.account_id, t.amount, t.date, t.payee_id, t.category_id, t.notes,
	 t.cleared, t.tombstone, t.created_at, t.updated_at, p.name, c.name
	FROM transactions t
	LEFT JOIN payees p ON p.id = t.payee_id
	LEFT JOIN categories c ON c.id = t.category_id
	WHERE t.account_id = ? AND t.tombstone = 0
	ORDER BY t.date DESC, t.created_at DESC
	LIMIT ?`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDetails(rows)
}

// ListByAccount returns all live transactions for an account, newest first.
func (r *TransactionRepo) ListByAccount(ctx context.Context, accountID string) ([]Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, account_id, amount, date, payee_id, category_id, notes, cleared, tombstone, created_at, updated_at
	FROM transactions
	WHERE account_id = ? AND tombstone = 0
	ORDER BY date DESC, created_at DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// scanner handles nullable fields for both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	var payeeID, categoryID, notes sql.NullString
	if err := row.Scan(&t.ID, &t.AccountID, &t.AmountCents, &t.Date, &payeeID, &categoryID,
		&notes, &t.Cleared, &t.Tombstone, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Transaction{}, err
	}
	if payeeID.Valid {
		t.PayeeID = &payeeID.String
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.String
	}
	if notes.Valid {
		t.Notes = &notes.String
	}
	return t, nil
}
