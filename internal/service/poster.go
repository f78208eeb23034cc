package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jask/debtsense/internal/database"
	"github.com/jask/debtsense/internal/database/repository"
	"github.com/jask/debtsense/internal/interest"
)

// ErrNothingToPost signals that the computed interest for an account is
// exactly zero (zero balance or zero APR). Callers must be able to tell this
// apart from a successful posting, so it is an error, not a silent no-op.
var ErrNothingToPost = errors.New("nothing to post: computed interest is zero")

// PostParams configures a single interest posting.
type PostParams struct {
	APR                  float64
	Scheme               interest.Scheme
	CompoundingFrequency string
	CategoryID           string
	Date                 time.Time // zero means today
}

// InterestPoster computes one interest charge against an account's live
// balance and writes it as a cleared transaction.
type InterestPoster struct {
	Transactions *repository.TransactionRepo
	Payees       *repository.PayeeRepo
	Log          *logrus.Logger
}

// Post writes one interest transaction and returns its id. Interest always
// increases debt magnitude: the posted amount is negative regardless of the
// stored balance sign.
func (p *InterestPoster) Post(ctx context.Context, accountID string, params PostParams) (string, error) {
	balance, err := p.Transactions.BalanceCents(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("balance for %s: %w", accountID, err)
	}
	amount := interest.Calculate(balance, params.APR, params.Scheme)
	if amount == 0 {
		return "", ErrNothingToPost
	}

	payeeID, err := p.Payees.EnsureByName(ctx, InterestPayeeName)
	if err != nil {
		return "", fmt.Errorf("ensure payee: %w", err)
	}

	date := params.Date
	if date.IsZero() {
		date = database.Now()
	}
	scheme := interest.ParseScheme(string(params.Scheme))
	note := fmt.Sprintf("Interest charge at %.2f%% APR (%s)", params.APR, scheme)

	t := repository.Transaction{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		AmountCents: -amount,
		Date:        date,
		PayeeID:     &payeeID,
		Notes:       &note,
		Cleared:     true,
	}
	if params.CategoryID != "" {
		t.CategoryID = &params.CategoryID
	}
	if err := p.Transactions.Insert(ctx, t); err != nil {
		return "", fmt.Errorf("insert interest transaction: %w", err)
	}
	if p.Log != nil {
		p.Log.WithFields(logrus.Fields{
			"account": accountID,
			"amount":  -amount,
			"scheme":  scheme,
			"apr":     params.APR,
		}).Info("interest posted")
	}
	return t.ID, nil
}
