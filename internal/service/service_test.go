package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jask/debtsense/internal/database"
	"github.com/jask/debtsense/internal/database/repository"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func seedAccount(t *testing.T, db *sql.DB, name string, offBudget bool) string {
	t.Helper()
	id := uuid.NewString()
	repo := repository.NewAccountRepo(db)
	require.NoError(t, repo.Upsert(context.Background(), repository.Account{
		ID:        id,
		Name:      name,
		OffBudget: offBudget,
	}))
	return id
}

type seedTx struct {
	amount   int64
	date     string
	payee    string
	category string
	notes    string
}

func seedTransactions(t *testing.T, db *sql.DB, accountID string, txs []seedTx) {
	t.Helper()
	ctx := context.Background()
	txRepo := repository.NewTransactionRepo(db)
	payeeRepo := repository.NewPayeeRepo(db)
	catRepo := repository.NewCategoryRepo(db)
	for _, s := range txs {
		date, err := time.Parse("2006-01-02", s.date)
		require.NoError(t, err)
		tx := repository.Transaction{
			ID:          uuid.NewString(),
			AccountID:   accountID,
			AmountCents: s.amount,
			Date:        date,
		}
		if s.payee != "" {
			id, err := payeeRepo.EnsureByName(ctx, s.payee)
			require.NoError(t, err)
			tx.PayeeID = &id
		}
		if s.category != "" {
			id, err := catRepo.EnsureByName(ctx, s.category)
			require.NoError(t, err)
			tx.CategoryID = &id
		}
		if s.notes != "" {
			notes := s.notes
			tx.Notes = &notes
		}
		require.NoError(t, txRepo.Insert(ctx, tx))
	}
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}
