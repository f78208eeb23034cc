package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/debtsense/internal/database/repository"
	"github.com/jask/debtsense/internal/interest"
)

func TestPostInterestCharge(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	acct := seedAccount(t, db, "Visa", true)
	seedTransactions(t, db, acct, []seedTx{{amount: -250000, date: "2024-05-01"}})
	catID, err := repository.NewCategoryRepo(db).EnsureByName(ctx, "Interest & Fees")
	require.NoError(t, err)

	txRepo := repository.NewTransactionRepo(db)
	poster := &InterestPoster{Transactions: txRepo, Payees: repository.NewPayeeRepo(db)}

	when := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	id, err := poster.Post(ctx, acct, PostParams{
		APR:        18.5,
		Scheme:     interest.SchemeSimple,
		CategoryID: catID,
		Date:       when,
	})
	require.NoError(t, err)

	posted, err := txRepo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, posted)
	// $2,500 at 18.5% simple is $38.54 for the month, posted as a charge.
	require.Equal(t, int64(-3854), posted.AmountCents)
	require.True(t, posted.Cleared)
	require.Equal(t, when.Format("2006-01-02"), posted.Date.Format("2006-01-02"))
	require.NotNil(t, posted.CategoryID)
	require.Equal(t, catID, *posted.CategoryID)
	require.NotNil(t, posted.Notes)
	require.Contains(t, *posted.Notes, "18.50% APR")
	require.Contains(t, *posted.Notes, "simple")

	payee, err := repository.NewPayeeRepo(db).ByName(ctx, InterestPayeeName)
	require.NoError(t, err)
	require.NotNil(t, payee)
	require.NotNil(t, posted.PayeeID)
	require.Equal(t, payee.ID, *posted.PayeeID)

	balance, err := txRepo.BalanceCents(ctx, acct)
	require.NoError(t, err)
	require.Equal(t, int64(-253854), balance)
}

func TestPostChargesRegardlessOfBalanceSign(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	acct := seedAccount(t, db, "Odd Ledger", false)
	seedTransactions(t, db, acct, []seedTx{{amount: 250000, date: "2024-05-01"}})

	poster := &InterestPoster{
		Transactions: repository.NewTransactionRepo(db),
		Payees:       repository.NewPayeeRepo(db),
	}
	id, err := poster.Post(ctx, acct, PostParams{APR: 18.0, Scheme: interest.SchemeCompoundMonthly})
	require.NoError(t, err)

	posted, err := poster.Transactions.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(-3750), posted.AmountCents)
}

func TestPostNothingToPost(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	acct := seedAccount(t, db, "Paid Off", false)

	poster := &InterestPoster{
		Transactions: repository.NewTransactionRepo(db),
		Payees:       repository.NewPayeeRepo(db),
	}

	// Zero balance.
	_, err := poster.Post(ctx, acct, PostParams{APR: 18.5, Scheme: interest.SchemeSimple})
	require.ErrorIs(t, err, ErrNothingToPost)

	// Zero APR on a real balance.
	seedTransactions(t, db, acct, []seedTx{{amount: -100000, date: "2024-05-01"}})
	_, err = poster.Post(ctx, acct, PostParams{APR: 0, Scheme: interest.SchemeSimple})
	require.ErrorIs(t, err, ErrNothingToPost)

	// Neither attempt wrote anything.
	require.Equal(t, 1, countRows(t, db, "transactions"))
}

func TestPostReusesInterestPayee(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	a := seedAccount(t, db, "Visa", true)
	b := seedAccount(t, db, "Car Loan", false)
	seedTransactions(t, db, a, []seedTx{{amount: -250000, date: "2024-05-01"}})
	seedTransactions(t, db, b, []seedTx{{amount: -50000, date: "2024-05-01"}})

	poster := &InterestPoster{
		Transactions: repository.NewTransactionRepo(db),
		Payees:       repository.NewPayeeRepo(db),
	}
	_, err := poster.Post(ctx, a, PostParams{APR: 18.5, Scheme: interest.SchemeSimple})
	require.NoError(t, err)
	_, err = poster.Post(ctx, b, PostParams{APR: 6.0, Scheme: interest.SchemeSimple})
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM payees WHERE name = ?`, InterestPayeeName).Scan(&n))
	require.Equal(t, 1, n)
}
