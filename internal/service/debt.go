package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jask/debtsense/internal/database"
	"github.com/jask/debtsense/internal/database/repository"
	"github.com/jask/debtsense/internal/interest"
)

// DebtService converts accounts to and from debt accounts. The debt flag
// update and the schedule mutation commit in one transaction so a failure
// leaves no partial state.
type DebtService struct {
	DB        *sql.DB
	Accounts  *repository.AccountRepo
	Schedules *ScheduleManager
	Log       *logrus.Logger
}

// Enable marks an account as debt and sets up its interest schedule.
// Returns the schedule id.
func (s *DebtService) Enable(ctx context.Context, accountID string, p repository.DebtParams, categoryID string) (string, error) {
	account, err := s.Accounts.Get(ctx, accountID)
	if err != nil {
		return "", err
	}
	if account == nil {
		return "", fmt.Errorf("account %s not found", accountID)
	}

	var postingDay interface{}
	if p.InterestPostingDay > 0 {
		postingDay = p.InterestPostingDay
	}
	var scheduleID string
	err = database.WithTx(s.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
		UPDATE accounts SET
		 debt = 1,
		 debt_type = ?,
		 apr = ?,
		 interest_scheme = ?,
		 compounding_frequency = ?,
		 interest_posting_day = ?,
		 apr_last_updated = CURRENT_TIMESTAMP,
		 updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, p.DebtType, p.APR, p.InterestScheme, p.CompoundingFrequency, postingDay, accountID); err != nil {
			return fmt.Errorf("mark account debt: %w", err)
		}
		scheduleID, err = s.Schedules.SetupInTx(ctx, tx, accountID, ScheduleParams{
			APR:                  p.APR,
			Scheme:               interest.ParseScheme(p.InterestScheme),
			CompoundingFrequency: p.CompoundingFrequency,
			PostingDay:           p.InterestPostingDay,
			CategoryID:           categoryID,
		})
		return err
	})
	if err != nil {
		return "", err
	}
	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{"account": accountID, "type": p.DebtType, "apr": p.APR}).Info("account converted to debt")
	}
	return scheduleID, nil
}

// Disable clears the debt flag and deletes the account's interest schedule.
func (s *DebtService) Disable(ctx context.Context, accountID string) error {
	err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
		UPDATE accounts SET
		 debt = 0,
		 debt_type = NULL,
		 apr = NULL,
		 interest_posting_day = NULL,
		 apr_last_updated = NULL,
		 updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, accountID); err != nil {
			return fmt.Errorf("clear account debt: %w", err)
		}
		return s.Schedules.DeleteInTx(ctx, tx, accountID)
	})
	if err != nil {
		return err
	}
	if s.Log != nil {
		s.Log.WithField("account", accountID).Info("debt disabled")
	}
	return nil
}
