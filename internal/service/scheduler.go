package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jask/debtsense/internal/database"
	"github.com/jask/debtsense/internal/interest"
)

// InterestPayeeName is the singleton payee interest charges are attributed
// to. Looked up by the unique name constraint, created on first use.
const InterestPayeeName = "Interest Charge"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ScheduleParams configures the recurring interest obligation for one
// account.
type ScheduleParams struct {
	APR                  float64
	Scheme               interest.Scheme
	CompoundingFrequency string
	PostingDay           int // interest.LastDayOfMonth for end of month
	CategoryID           string
}

// ScheduleManager owns the persisted rule + schedule pair that drives
// recurring interest postings. At most one such schedule exists per account;
// Setup finds-or-creates, never duplicates. Mutations for a single account
// must not run concurrently with themselves.
type ScheduleManager struct {
	DB  *sql.DB
	Log *logrus.Logger
}

type ScheduleRef struct {
	ScheduleID string
	RuleID     string
}

// Setup creates the interest schedule for an account, or updates the
// existing one in place. Returns the schedule id.
func (m *ScheduleManager) Setup(ctx context.Context, accountID string, p ScheduleParams) (string, error) {
	var id string
	err := database.WithTx(m.DB, func(tx *sql.Tx) error {
		var err error
		id, err = m.setupInTx(ctx, tx, accountID, p)
		return err
	})
	return id, err
}

// SetupInTx is Setup running inside a caller-owned transaction, so account
// flag changes and schedule changes can commit atomically.
func (m *ScheduleManager) SetupInTx(ctx context.Context, tx *sql.Tx, accountID string, p ScheduleParams) (string, error) {
	return m.setupInTx(ctx, tx, accountID, p)
}

func (m *ScheduleManager) setupInTx(ctx context.Context, tx querier, accountID string, p ScheduleParams) (string, error) {
	config, err := interest.EncodeConfig(p.APR, p.Scheme, p.CompoundingFrequency)
	if err != nil {
		return "", err
	}
	nextDate := interest.NextPostingDate(p.PostingDay, database.Now()).Format("2006-01-02")

	existing, err := findScheduleForAccount(ctx, tx, accountID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if err := m.updateInTx(ctx, tx, *existing, p.CategoryID, config, nextDate); err != nil {
			return "", err
		}
		return existing.ScheduleID, nil
	}

	payeeID, err := ensurePayee(ctx, tx, InterestPayeeName)
	if err != nil {
		return "", err
	}

	ruleID := uuid.NewString()
	scheduleID := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `INSERT INTO rules(id, stage, conditions_op) VALUES(?, NULL, 'and')`, ruleID); err != nil {
		return "", fmt.Errorf("insert rule: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO rule_conditions(id, rule_id, field, op, value) VALUES(?, ?, 'account', 'is', ?)`,
		uuid.NewString(), ruleID, accountID); err != nil {
		return "", fmt.Errorf("insert condition: %w", err)
	}
	actions := []struct{ field, value string }{
		{"payee", payeeID},
		{"category", p.CategoryID},
		{"interest-config", config},
	}
	for _, a := range actions {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO rule_actions(id, rule_id, op, field, value) VALUES(?, ?, 'set', ?, ?)`,
			uuid.NewString(), ruleID, a.field, a.value); err != nil {
			return "", fmt.Errorf("insert action %s: %w", a.field, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO schedules(id, rule_id, posts_transaction, completed, tombstone) VALUES(?, ?, 1, 0, 0)`,
		scheduleID, ruleID); err != nil {
		return "", fmt.Errorf("insert schedule: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO schedule_next_dates(schedule_id, next_date) VALUES(?, ?)`,
		scheduleID, nextDate); err != nil {
		return "", fmt.Errorf("insert next date: %w", err)
	}

	if m.Log != nil {
		m.Log.WithFields(logrus.Fields{"account": accountID, "schedule": scheduleID, "next": nextDate}).Info("interest schedule created")
	}
	return scheduleID, nil
}

// updateInTx rewrites the configuration and category actions of an existing
// schedule in place and recomputes its next due date. It never creates
// duplicate actions or conditions.
func (m *ScheduleManager) updateInTx(ctx context.Context, tx querier, ref ScheduleRef, categoryID, config, nextDate string) error {
	if _, err := tx.ExecContext(ctx, `
	UPDATE rule_actions SET value = ? WHERE rule_id = ? AND field = 'category'`,
		categoryID, ref.RuleID); err != nil {
		return fmt.Errorf("update category action: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
	UPDATE rule_actions SET value = ? WHERE rule_id = ? AND field = 'interest-config'`,
		config, ref.RuleID); err != nil {
		return fmt.Errorf("update config action: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO schedule_next_dates(schedule_id, next_date) VALUES(?, ?)
	ON CONFLICT(schedule_id) DO UPDATE SET next_date=excluded.next_date`,
		ref.ScheduleID, nextDate); err != nil {
		return fmt.Errorf("update next date: %w", err)
	}
	if m.Log != nil {
		m.Log.WithFields(logrus.Fields{"schedule": ref.ScheduleID, "next": nextDate}).Info("interest schedule updated")
	}
	return nil
}

// Delete removes the interest schedule for an account: next date, schedule,
// actions, conditions, then the rule, children before parents. No-op if the
// account has no schedule.
func (m *ScheduleManager) Delete(ctx context.Context, accountID string) error {
	return database.WithTx(m.DB, func(tx *sql.Tx) error {
		return m.DeleteInTx(ctx, tx, accountID)
	})
}

// DeleteInTx is Delete inside a caller-owned transaction.
func (m *ScheduleManager) DeleteInTx(ctx context.Context, tx *sql.Tx, accountID string) error {
	ref, err := findScheduleForAccount(ctx, tx, accountID)
	if err != nil {
		return err
	}
	if ref == nil {
		return nil
	}
	steps := []struct{ query, arg string }{
		{`DELETE FROM schedule_next_dates WHERE schedule_id = ?`, ref.ScheduleID},
		{`DELETE FROM schedules WHERE id = ?`, ref.ScheduleID},
		{`DELETE FROM rule_actions WHERE rule_id = ?`, ref.RuleID},
		{`DELETE FROM rule_conditions WHERE rule_id = ?`, ref.RuleID},
		{`DELETE FROM rules WHERE id = ?`, ref.RuleID},
	}
	for _, s := range steps {
		if _, err := tx.ExecContext(ctx, s.query, s.arg); err != nil {
			return fmt.Errorf("delete schedule %s: %w", ref.ScheduleID, err)
		}
	}
	if m.Log != nil {
		m.Log.WithFields(logrus.Fields{"account": accountID, "schedule": ref.ScheduleID}).Info("interest schedule deleted")
	}
	return nil
}

// Find returns the schedule governing an account, or nil.
func (m *ScheduleManager) Find(ctx context.Context, accountID string) (*ScheduleRef, error) {
	return findScheduleForAccount(ctx, m.DB, accountID)
}

// findScheduleForAccount locates the one live transaction-posting schedule
// whose rule has exactly one condition matching this account.
func findScheduleForAccount(ctx context.Context, q querier, accountID string) (*ScheduleRef, error) {
	row := q.QueryRowContext(ctx, `
	SELECT s.id, r.id
	FROM schedules s
	JOIN rules r ON r.id = s.rule_id
	JOIN rule_conditions c ON c.rule_id = r.id
	WHERE s.tombstone = 0 AND s.completed = 0 AND s.posts_transaction = 1
	 AND r.stage IS NULL
	 AND c.field = 'account' AND c.value = ?
	 AND (SELECT COUNT(*) FROM rule_conditions c2 WHERE c2.rule_id = r.id) = 1
	LIMIT 1`, accountID)
	var ref ScheduleRef
	if err := row.Scan(&ref.ScheduleID, &ref.RuleID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &ref, nil
}

func ensurePayee(ctx context.Context, q querier, name string) (string, error) {
	if _, err := q.ExecContext(ctx, `
	INSERT INTO payees(id, name) VALUES(?, ?) ON CONFLICT(name) DO NOTHING`,
		uuid.NewString(), name); err != nil {
		return "", err
	}
	var id string
	if err := q.QueryRowContext(ctx, `SELECT id FROM payees WHERE name = ?`, name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// NextDate reads the schedule's next due date.
func (m *ScheduleManager) NextDate(ctx context.Context, scheduleID string) (time.Time, error) {
	var next time.Time
	err := m.DB.QueryRowContext(ctx, `SELECT next_date FROM schedule_next_dates WHERE schedule_id = ?`, scheduleID).Scan(&next)
	if err != nil {
		return time.Time{}, err
	}
	return next, nil
}
