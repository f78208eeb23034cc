package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jask/debtsense/internal/database/repository"
	"github.com/jask/debtsense/internal/interest"
)

// DueSchedule is one interest schedule whose next date has arrived, with its
// stored configuration decoded.
type DueSchedule struct {
	ScheduleID string
	RuleID     string
	AccountID  string
	CategoryID string
	Config     interest.Config
	DueDate    time.Time
}

// ScheduleRunner fires due interest schedules: it decodes each schedule's
// stored configuration, posts the charge against the live balance, and
// advances the next due date one month.
type ScheduleRunner struct {
	DB       *sql.DB
	Accounts *repository.AccountRepo
	Poster   *InterestPoster
	Log      *logrus.Logger
}

// Due returns decoded interest schedules due on or before asOf. Schedules
// with unreadable configuration are skipped and logged, not fatal.
func (r *ScheduleRunner) Due(ctx context.Context, asOf time.Time) ([]DueSchedule, error) {
	rows, err := r.DB.QueryContext(ctx, `
	SELECT s.id, r.id, c.value, d.next_date
	FROM schedules s
	JOIN rules r ON r.id = s.rule_id
	JOIN rule_conditions c ON c.rule_id = r.id AND c.field = 'account'
	JOIN schedule_next_dates d ON d.schedule_id = s.id
	WHERE s.tombstone = 0 AND s.completed = 0 AND s.posts_transaction = 1
	 AND r.stage IS NULL
	 AND d.next_date <= ?
	ORDER BY d.next_date`, asOf.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DueSchedule
	for rows.Next() {
		var d DueSchedule
		if err := rows.Scan(&d.ScheduleID, &d.RuleID, &d.AccountID, &d.DueDate); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	kept := out[:0]
	for _, d := range out {
		cfg, categoryID, err := r.loadRuleConfig(ctx, d.RuleID)
		if err != nil {
			if r.Log != nil {
				r.Log.WithError(err).WithField("schedule", d.ScheduleID).Warn("skipping schedule with unreadable config")
			}
			continue
		}
		d.Config = cfg
		d.CategoryID = categoryID
		kept = append(kept, d)
	}
	return kept, nil
}

func (r *ScheduleRunner) loadRuleConfig(ctx context.Context, ruleID string) (interest.Config, string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT field, value FROM rule_actions WHERE rule_id = ?`, ruleID)
	if err != nil {
		return interest.Config{}, "", err
	}
	defer rows.Close()

	var raw, categoryID string
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return interest.Config{}, "", err
		}
		switch field {
		case "interest-config":
			raw = value
		case "category":
			categoryID = value
		}
	}
	if err := rows.Err(); err != nil {
		return interest.Config{}, "", err
	}
	if raw == "" {
		return interest.Config{}, "", fmt.Errorf("rule %s has no interest-config action", ruleID)
	}
	cfg, err := interest.DecodeConfig(raw)
	if err != nil {
		return interest.Config{}, "", err
	}
	return cfg, categoryID, nil
}

// RunDue posts every due schedule and advances its next date. A zero-interest
// schedule (paid-off account) is logged and advanced without a posting.
// Returns the number of postings made.
func (r *ScheduleRunner) RunDue(ctx context.Context, asOf time.Time) (int, error) {
	due, err := r.Due(ctx, asOf)
	if err != nil {
		return 0, err
	}
	posted := 0
	for _, d := range due {
		_, err := r.Poster.Post(ctx, d.AccountID, PostParams{
			APR:                  d.Config.APR,
			Scheme:               d.Config.Scheme,
			CompoundingFrequency: d.Config.Compounding,
			CategoryID:           d.CategoryID,
			Date:                 d.DueDate,
		})
		switch {
		case errors.Is(err, ErrNothingToPost):
			if r.Log != nil {
				r.Log.WithField("account", d.AccountID).Info("no interest to post; advancing schedule")
			}
		case err != nil:
			return posted, fmt.Errorf("post schedule %s: %w", d.ScheduleID, err)
		default:
			posted++
		}

		if err := r.advance(ctx, d); err != nil {
			return posted, err
		}
	}
	return posted, nil
}

func (r *ScheduleRunner) advance(ctx context.Context, d DueSchedule) error {
	postingDay := interest.LastDayOfMonth
	account, err := r.Accounts.Get(ctx, d.AccountID)
	if err != nil {
		return err
	}
	if account != nil && account.InterestPostingDay != nil {
		postingDay = *account.InterestPostingDay
	}
	next := interest.NextPostingDate(postingDay, d.DueDate).Format("2006-01-02")
	_, err = r.DB.ExecContext(ctx, `
	UPDATE schedule_next_dates SET next_date = ? WHERE schedule_id = ?`, next, d.ScheduleID)
	return err
}
