package testdata

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/jask/debtsense/internal/database/repository"
)

// Repos bundles the repositories Seed writes through.
type Repos struct {
	Accounts     *repository.AccountRepo
	Payees       *repository.PayeeRepo
	Categories   *repository.CategoryRepo
	Transactions *repository.TransactionRepo
}

// Seed populates a demo ledger: a checking account, a credit card with the
// classic debt fingerprint (negative balance, monthly payments, interest
// charges), and a small loan. Detection on the result surfaces the card
// as a high-confidence candidate.
func Seed(ctx context.Context, repos Repos) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC()

	checking := repository.Account{ID: uuid.NewString(), Name: "Everyday Checking"}
	if err := repos.Accounts.Upsert(ctx, checking); err != nil {
		return err
	}
	card := repository.Account{ID: uuid.NewString(), Name: "Sunrise Visa", OffBudget: true}
	if err := repos.Accounts.Upsert(ctx, card); err != nil {
		return err
	}
	loan := repository.Account{ID: uuid.NewString(), Name: "Car Loan"}
	if err := repos.Accounts.Upsert(ctx, loan); err != nil {
		return err
	}

	interestCat, err := repos.Categories.EnsureByName(ctx, "Interest & Fees")
	if err != nil {
		return err
	}

	type entry struct {
		account  string
		amount   int64
		date     time.Time
		payee    string
		category *string
	}
	var entries []entry

	for i := 1; i <= 6; i++ {
		when := now.AddDate(0, -i, 0)
		entries = append(entries,
			entry{checking.ID, 350000, when, "Acme Payroll", nil},
			entry{checking.ID, -int64(5000 + rng.Intn(20000)), when.AddDate(0, 0, 3), "Grocer", nil},
		)
	}

	entries = append(entries, entry{card.ID, -420000, now.AddDate(0, -7, 0), "Electronics Store", nil})
	for i := 1; i <= 5; i++ {
		when := now.AddDate(0, -i, 0)
		entries = append(entries,
			entry{card.ID, 30000, when, "Payment", nil},
			entry{card.ID, -int64(5500 + rng.Intn(1000)), when.AddDate(0, 0, 4), "Interest Charged", &interestCat},
		)
	}

	entries = append(entries, entry{loan.ID, -1450000, now.AddDate(0, -8, 0), "Dealership Finance", nil})
	for i := 1; i <= 4; i++ {
		entries = append(entries, entry{loan.ID, 25000, now.AddDate(0, -i, 0), "Payment", nil})
	}

	for _, e := range entries {
		tx := repository.Transaction{
			ID:          uuid.NewString(),
			AccountID:   e.account,
			AmountCents: e.amount,
			Date:        e.date,
			CategoryID:  e.category,
			Cleared:     true,
		}
		if e.payee != "" {
			payeeID, err := repos.Payees.EnsureByName(ctx, e.payee)
			if err != nil {
				return err
			}
			tx.PayeeID = &payeeID
		}
		if err := repos.Transactions.Insert(ctx, tx); err != nil {
			return fmt.Errorf("seed transaction: %w", err)
		}
	}
	return nil
}
