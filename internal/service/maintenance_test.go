package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/debtsense/internal/database/repository"
	"github.com/jask/debtsense/internal/interest"
)

func TestMaintenanceReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	acct := seedAccount(t, db, "Visa", true)
	seedTransactions(t, db, acct, []seedTx{{amount: -250000, date: "2024-05-01", payee: "Store"}})
	enableDebt(t, db, acct, repository.DebtParams{
		DebtType: "credit_card", APR: 18.5, InterestScheme: string(interest.SchemeSimple),
	})

	svc := &MaintenanceService{DB: db}
	require.NoError(t, svc.Reset(ctx))

	for _, table := range []string{
		"accounts", "payees", "categories", "transactions",
		"rules", "rule_conditions", "rule_actions", "schedules", "schedule_next_dates",
	} {
		require.Zero(t, countRows(t, db, table), table)
	}

	// Schema is intact: the ledger keeps working after a reset.
	again := seedAccount(t, db, "Fresh Start", false)
	seedTransactions(t, db, again, []seedTx{{amount: 1000, date: "2024-06-01"}})
	require.Equal(t, 1, countRows(t, db, "transactions"))
}
