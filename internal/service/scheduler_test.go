package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/debtsense/internal/database/repository"
	"github.com/jask/debtsense/internal/interest"
)

func TestScheduleSetupCreatesFullStructure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	acct := seedAccount(t, db, "Visa", true)
	catID, err := repository.NewCategoryRepo(db).EnsureByName(ctx, "Interest & Fees")
	require.NoError(t, err)

	mgr := &ScheduleManager{DB: db}
	scheduleID, err := mgr.Setup(ctx, acct, ScheduleParams{
		APR:                  18.5,
		Scheme:               interest.SchemeCompoundMonthly,
		CompoundingFrequency: "monthly",
		PostingDay:           15,
		CategoryID:           catID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, scheduleID)

	require.Equal(t, 1, countRows(t, db, "rules"))
	require.Equal(t, 1, countRows(t, db, "rule_conditions"))
	require.Equal(t, 3, countRows(t, db, "rule_actions"))
	require.Equal(t, 1, countRows(t, db, "schedules"))
	require.Equal(t, 1, countRows(t, db, "schedule_next_dates"))

	ref, err := mgr.Find(ctx, acct)
	require.NoError(t, err)
	require.NotNil(t, ref)
	require.Equal(t, scheduleID, ref.ScheduleID)

	var config string
	require.NoError(t, db.QueryRow(
		`SELECT value FROM rule_actions WHERE rule_id = ? AND field = 'interest-config'`,
		ref.RuleID).Scan(&config))
	decoded, err := interest.DecodeConfig(config)
	require.NoError(t, err)
	require.InDelta(t, 18.5, decoded.APR, 0.001)
	require.Equal(t, interest.SchemeCompoundMonthly, decoded.Scheme)

	next, err := mgr.NextDate(ctx, scheduleID)
	require.NoError(t, err)
	require.Equal(t, 15, next.Day())
	require.True(t, next.After(time.Now().AddDate(0, 0, -1)))
}

func TestScheduleSetupIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	acct := seedAccount(t, db, "Visa", true)
	catID, err := repository.NewCategoryRepo(db).EnsureByName(ctx, "Interest & Fees")
	require.NoError(t, err)

	mgr := &ScheduleManager{DB: db}
	params := ScheduleParams{APR: 18.5, Scheme: interest.SchemeCompoundMonthly, PostingDay: 15, CategoryID: catID}
	first, err := mgr.Setup(ctx, acct, params)
	require.NoError(t, err)

	// Re-running with new terms updates the existing rows instead of
	// creating a second schedule.
	params.APR = 21.0
	params.Scheme = interest.SchemeSimple
	second, err := mgr.Setup(ctx, acct, params)
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.Equal(t, 1, countRows(t, db, "schedules"))
	require.Equal(t, 1, countRows(t, db, "rules"))
	require.Equal(t, 3, countRows(t, db, "rule_actions"))
	require.Equal(t, 1, countRows(t, db, "schedule_next_dates"))

	ref, err := mgr.Find(ctx, acct)
	require.NoError(t, err)
	var config string
	require.NoError(t, db.QueryRow(
		`SELECT value FROM rule_actions WHERE rule_id = ? AND field = 'interest-config'`,
		ref.RuleID).Scan(&config))
	decoded, err := interest.DecodeConfig(config)
	require.NoError(t, err)
	require.InDelta(t, 21.0, decoded.APR, 0.001)
	require.Equal(t, interest.SchemeSimple, decoded.Scheme)
}

func TestScheduleSetupReusesInterestPayee(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	a := seedAccount(t, db, "Visa", true)
	b := seedAccount(t, db, "Car Loan", false)
	catID, err := repository.NewCategoryRepo(db).EnsureByName(ctx, "Interest & Fees")
	require.NoError(t, err)

	mgr := &ScheduleManager{DB: db}
	params := ScheduleParams{APR: 10, Scheme: interest.SchemeSimple, PostingDay: 1, CategoryID: catID}
	_, err = mgr.Setup(ctx, a, params)
	require.NoError(t, err)
	_, err = mgr.Setup(ctx, b, params)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM payees WHERE name = ?`, InterestPayeeName).Scan(&n))
	require.Equal(t, 1, n)
	require.Equal(t, 2, countRows(t, db, "schedules"))
}

func TestScheduleDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	acct := seedAccount(t, db, "Visa", true)
	other := seedAccount(t, db, "Mortgage", false)
	catID, err := repository.NewCategoryRepo(db).EnsureByName(ctx, "Interest & Fees")
	require.NoError(t, err)

	mgr := &ScheduleManager{DB: db}
	params := ScheduleParams{APR: 18.5, Scheme: interest.SchemeCompoundMonthly, PostingDay: interest.LastDayOfMonth, CategoryID: catID}
	_, err = mgr.Setup(ctx, acct, params)
	require.NoError(t, err)
	_, err = mgr.Setup(ctx, other, params)
	require.NoError(t, err)

	require.NoError(t, mgr.Delete(ctx, acct))

	// Only the other account's schedule survives.
	require.Equal(t, 1, countRows(t, db, "schedules"))
	require.Equal(t, 1, countRows(t, db, "rules"))
	require.Equal(t, 1, countRows(t, db, "rule_conditions"))
	require.Equal(t, 3, countRows(t, db, "rule_actions"))
	require.Equal(t, 1, countRows(t, db, "schedule_next_dates"))

	ref, err := mgr.Find(ctx, acct)
	require.NoError(t, err)
	require.Nil(t, ref)

	// Deleting again, or for an account that never had one, is a no-op.
	require.NoError(t, mgr.Delete(ctx, acct))
	require.Equal(t, 1, countRows(t, db, "schedules"))
}
