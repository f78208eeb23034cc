package repository

import "time"

// Account represents an account row. Debt metadata columns are nullable and
// only populated once an account has been marked as debt.
type Account struct {
	ID                   string
	Name                 string
	OffBudget            bool
	Closed               bool
	Tombstone            bool
	Debt                 bool
	DebtType             *string
	APR                  *float64
	InterestScheme       string
	CompoundingFrequency string
	InterestPostingDay   *int
	APRLastUpdated       *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// DebtParams carries the debt metadata written when an account is converted.
type DebtParams struct {
	DebtType             string
	APR                  float64
	InterestScheme       string
	CompoundingFrequency string
	InterestPostingDay   int // 0 means last day of month, stored as NULL
}

// Payee represents a payee row. Names are unique.
type Payee struct {
	ID   string
	Name string
}

// Category represents a category row.
type Category struct {
	ID        string
	Name      string
	SortOrder int
}

// Transaction represents a transaction row.
type Transaction struct {
	ID          string
	AccountID   string
	AmountCents int64
	Date        time.Time
	PayeeID     *string
	CategoryID  *string
	Notes       *string
	Cleared     bool
	Tombstone   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TransactionDetail is a transaction joined to its payee and category names,
// used by keyword matching in the detector.
type TransactionDetail struct {
	Transaction
	PayeeName    *string
	CategoryName *string
}
