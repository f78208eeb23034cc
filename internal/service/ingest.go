package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jask/debtsense/internal/database/repository"
)

// ImportService loads ledger history from CSV exports so detection and
// posting have transactions to work against.
type ImportService struct {
	Transactions *repository.TransactionRepo
	Payees       *repository.PayeeRepo
	Categories   *repository.CategoryRepo
	Accounts     *repository.AccountRepo
	Log          *logrus.Logger

	accountCache map[string]string
}

// ImportResult summarizes one import run. Row-level problems collect in
// Errors; they never abort the rest of the file.
type ImportResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

// ImportCSV reads rows of: date, amount, payee, category, notes, account.
// amount is dollars with an optional minus, converted to cents. The account
// column may be omitted when defaultAccount is set. Rows matching an existing
// transaction on (account, date, amount) are skipped, so re-importing the
// same export is safe.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader, defaultAccount string) (ImportResult, error) {
	res := ImportResult{}
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1

	line := 0
	for {
		line++
		rec, err := csvr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if len(rec) < 2 {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: expected at least date and amount", line))
			continue
		}
		field := func(i int) string {
			if i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}

		date, err := time.Parse("2006-01-02", field(0))
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d date: %w", line, err))
			continue
		}
		amountCents, err := dollarsToCents(field(1))
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d amount: %w", line, err))
			continue
		}
		accountName := field(5)
		if accountName == "" {
			accountName = defaultAccount
		}
		accountID, err := s.accountForName(ctx, accountName)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d account: %w", line, err))
			continue
		}

		dup, err := s.Transactions.ExistsSimilar(ctx, accountID, date, amountCents)
		if err != nil {
			return res, err
		}
		if dup {
			res.Skipped++
			continue
		}

		t := repository.Transaction{
			ID:          uuid.NewString(),
			AccountID:   accountID,
			AmountCents: amountCents,
			Date:        date,
		}
		if payee := field(2); payee != "" {
			id, err := s.Payees.EnsureByName(ctx, payee)
			if err != nil {
				return res, err
			}
			t.PayeeID = &id
		}
		if category := field(3); category != "" {
			id, err := s.Categories.EnsureByName(ctx, category)
			if err != nil {
				return res, err
			}
			t.CategoryID = &id
		}
		if notes := field(4); notes != "" {
			t.Notes = &notes
		}
		if err := s.Transactions.Insert(ctx, t); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d insert: %w", line, err))
			continue
		}
		res.Imported++
	}

	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"imported": res.Imported,
			"skipped":  res.Skipped,
			"errors":   len(res.Errors),
		}).Info("csv import complete")
	}
	return res, nil
}

func dollarsToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(f * 100)), nil
}

// accountForName resolves an account by name, creating it on first sight.
// Existing accounts keep their flags and debt metadata untouched.
func (s *ImportService) accountForName(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("account name required")
	}
	if s.accountCache == nil {
		s.accountCache = make(map[string]string)
	}
	if id, ok := s.accountCache[name]; ok {
		return id, nil
	}
	existing, err := s.Accounts.ByName(ctx, name)
	if err != nil {
		return "", err
	}
	if existing != nil {
		s.accountCache[name] = existing.ID
		return existing.ID, nil
	}
	acct := repository.Account{ID: uuid.NewString(), Name: name}
	if err := s.Accounts.Upsert(ctx, acct); err != nil {
		return "", err
	}
	s.accountCache[name] = acct.ID
	return acct.ID, nil
}
