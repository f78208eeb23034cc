package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/sirupsen/logrus"

	"github.com/jask/debtsense/internal/database/repository"
	"github.com/jask/debtsense/internal/interest"
)

// Confidence buckets a candidate's score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// DebtType is the kind of debt an account is suspected or declared to be.
type DebtType string

const (
	DebtCreditCard   DebtType = "credit_card"
	DebtMortgage     DebtType = "mortgage"
	DebtAutoLoan     DebtType = "auto_loan"
	DebtStudentLoan  DebtType = "student_loan"
	DebtLineOfCredit DebtType = "line_of_credit"
	DebtPersonalLoan DebtType = "personal_loan"
)

// DebtCandidate is a non-debt account the detector believes is actually a
// loan or credit line. Produced fresh on each detection run, never persisted.
type DebtCandidate struct {
	AccountID     string
	AccountName   string
	BalanceCents  int64
	OffBudget     bool
	Confidence    Confidence
	Score         int
	Reasons       []string
	SuggestedType DebtType
	EstimatedAPR  *float64
}

// Frequency classifies the cadence of payments into an account.
type Frequency string

const (
	FreqMonthly   Frequency = "monthly"
	FreqBiweekly  Frequency = "biweekly"
	FreqIrregular Frequency = "irregular"
)

// paymentPattern summarizes the account's recent positive transactions.
type paymentPattern struct {
	AvgAmountCents float64
	Frequency      Frequency
	Consistency    float64 // [0,1]
	Samples        int
}

// historyWindow caps how many transactions each signal inspects.
const historyWindow = 12

const (
	scoreFloor      = 40
	mediumThreshold = 50
	highThreshold   = 70
)

// accountFacts is everything the scoring rules look at for one account.
type accountFacts struct {
	account      repository.Account
	balance      int64
	nameMatched  bool
	pattern      paymentPattern
	interestTxs  int
	debtCategory bool
}

// scoreRule is one independent scoring signal. The rule set is data: every
// matching rule contributes its weight and reason, in order.
type scoreRule struct {
	weight int
	reason string
	match  func(f accountFacts) bool
}

var scoreRules = []scoreRule{
	{30, "balance below -$1,000", func(f accountFacts) bool {
		return f.balance < -100_000
	}},
	{15, "balance below -$100", func(f accountFacts) bool {
		return f.balance >= -100_000 && f.balance < -10_000
	}},
	{25, "account name matches a debt keyword", func(f accountFacts) bool {
		return f.nameMatched
	}},
	{10, "account is off-budget", func(f accountFacts) bool {
		return f.account.OffBudget
	}},
	{15, "off-budget account with a debt-keyword name", func(f accountFacts) bool {
		return f.account.OffBudget && f.nameMatched
	}},
	{20, "highly consistent monthly payments", func(f accountFacts) bool {
		return f.pattern.Frequency == FreqMonthly && f.pattern.Consistency > 0.8
	}},
	{10, "fairly consistent monthly payments", func(f accountFacts) bool {
		return f.pattern.Frequency == FreqMonthly && f.pattern.Consistency > 0.6 && f.pattern.Consistency <= 0.8
	}},
	{25, "recent interest or finance charges", func(f accountFacts) bool {
		return f.interestTxs > 0
	}},
	{15, "transactions categorized under a debt category", func(f accountFacts) bool {
		return f.debtCategory
	}},
}

var nameKeywords = []string{
	"visa", "mastercard", "amex", "american express", "discover",
	"credit card",
	"loan", "mortgage", "student", "auto", "car payment", "debt",
	"line of credit", "loc", "heloc",
}

var interestKeywords = []string{
	"interest", "finance charge", "apr", "interest charged",
}

var debtCategoryKeywords = []string{
	"debt", "interest", "loan", "credit card", "finance",
}

// DebtDetector scores ledger accounts for debt candidacy. Read-only and safe
// to run repeatedly.
type DebtDetector struct {
	Accounts     *repository.AccountRepo
	Transactions *repository.TransactionRepo
	Log          *logrus.Logger
}

// Detect scores every open non-debt account and returns candidates at or
// above the inclusion floor, ordered by descending score. Ties keep account
// encounter order.
func (d *DebtDetector) Detect(ctx context.Context) ([]DebtCandidate, error) {
	accounts, err := d.Accounts.ListDetectable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	var out []DebtCandidate
	for _, a := range accounts {
		c, err := d.scoreAccount(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("score account %s: %w", a.ID, err)
		}
		if c == nil {
			continue
		}
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if d.Log != nil {
		d.Log.WithFields(logrus.Fields{"scanned": len(accounts), "candidates": len(out)}).Debug("debt detection complete")
	}
	return out, nil
}

func (d *DebtDetector) scoreAccount(ctx context.Context, a repository.Account) (*DebtCandidate, error) {
	balance, err := d.Transactions.BalanceCents(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	// Debt accounts carry negative balances; anything else is out.
	if balance >= 0 {
		return nil, nil
	}

	positives, err := d.Transactions.RecentPositive(ctx, a.ID, historyWindow)
	if err != nil {
		return nil, err
	}
	negatives, err := d.Transactions.RecentNegativeDetailed(ctx, a.ID, historyWindow)
	if err != nil {
		return nil, err
	}
	recent, err := d.Transactions.RecentDetailed(ctx, a.ID, historyWindow)
	if err != nil {
		return nil, err
	}

	interestCharges := filterInterestCharges(negatives)
	facts := accountFacts{
		account:      a,
		balance:      balance,
		nameMatched:  matchesAnyKeyword(a.Name, nameKeywords),
		pattern:      analyzePayments(positives),
		interestTxs:  len(interestCharges),
		debtCategory: hasDebtCategory(recent),
	}

	score := 0
	var reasons []string
	for _, rule := range scoreRules {
		if rule.match(facts) {
			score += rule.weight
			reasons = append(reasons, rule.reason)
		}
	}
	if score < scoreFloor {
		return nil, nil
	}

	c := &DebtCandidate{
		AccountID:     a.ID,
		AccountName:   a.Name,
		BalanceCents:  balance,
		OffBudget:     a.OffBudget,
		Confidence:    confidenceFor(score),
		Score:         score,
		Reasons:       reasons,
		SuggestedType: suggestDebtType(a.Name, balance, facts.pattern),
	}

	if apr, ok := estimateAPR(interestCharges, balance); ok {
		c.EstimatedAPR = &apr
		c.Reasons = append(c.Reasons, fmt.Sprintf("estimated APR ~%.2f%% from recent interest charges", apr))
	}
	return c, nil
}

func confidenceFor(score int) Confidence {
	switch {
	case score >= highThreshold:
		return ConfidenceHigh
	case score >= mediumThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// analyzePayments classifies payment cadence and amount consistency from the
// most recent positive transactions (newest first).
func analyzePayments(payments []repository.Transaction) paymentPattern {
	p := paymentPattern{Frequency: FreqIrregular, Samples: len(payments)}
	if len(payments) < 3 {
		return p
	}

	var gapSum float64
	for i := 0; i < len(payments)-1; i++ {
		gap := payments[i].Date.Sub(payments[i+1].Date).Hours() / 24
		gapSum += math.Abs(gap)
	}
	avgGap := gapSum / float64(len(payments)-1)
	switch {
	case avgGap < 18:
		p.Frequency = FreqBiweekly
	case avgGap < 35:
		p.Frequency = FreqMonthly
	}

	var sum float64
	for _, t := range payments {
		sum += float64(t.AmountCents)
	}
	mean := sum / float64(len(payments))
	p.AvgAmountCents = mean

	var variance float64
	for _, t := range payments {
		diff := float64(t.AmountCents) - mean
		variance += diff * diff
	}
	stdDev := math.Sqrt(variance / float64(len(payments)))
	if mean != 0 {
		p.Consistency = 1 - math.Min(stdDev/mean, 1)
	}
	return p
}

func filterInterestCharges(negatives []repository.TransactionDetail) []repository.TransactionDetail {
	var out []repository.TransactionDetail
	for _, t := range negatives {
		var haystack []string
		if t.PayeeName != nil {
			haystack = append(haystack, *t.PayeeName)
		}
		if t.Notes != nil {
			haystack = append(haystack, *t.Notes)
		}
		for _, text := range haystack {
			if containsAnyKeyword(text, interestKeywords) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

func hasDebtCategory(recent []repository.TransactionDetail) bool {
	for _, t := range recent {
		if t.CategoryName != nil && containsAnyKeyword(*t.CategoryName, debtCategoryKeywords) {
			return true
		}
	}
	return false
}

// estimateAPR annualizes the average observed interest charge against the
// current balance. Requires at least three observed charges; implausible
// results outside [0.1, 50] percent are suppressed.
func estimateAPR(charges []repository.TransactionDetail, balance int64) (float64, bool) {
	if len(charges) < 3 || balance == 0 {
		return 0, false
	}
	var sum float64
	for _, t := range charges {
		sum += math.Abs(float64(t.AmountCents))
	}
	avgMonthly := int64(math.Round(sum / float64(len(charges))))
	apr, ok := interest.APRFromInterest(avgMonthly, balance, interest.SchemeSimple)
	if !ok || apr < 0.1 || apr > 50 {
		return 0, false
	}
	return apr, true
}

func suggestDebtType(name string, balance int64, pattern paymentPattern) DebtType {
	// Brand names only: a bare "credit" would swallow "Line of Credit".
	switch {
	case matchesAnyKeyword(name, []string{"visa", "mastercard", "amex", "american express", "discover", "credit card"}):
		return DebtCreditCard
	case matchesAnyKeyword(name, []string{"mortgage", "home loan"}) ||
		(balance < -10_000_000 && pattern.Frequency == FreqMonthly):
		return DebtMortgage
	case matchesAnyKeyword(name, []string{"auto", "car", "vehicle"}):
		return DebtAutoLoan
	case matchesAnyKeyword(name, []string{"student", "education", "tuition"}):
		return DebtStudentLoan
	case matchesAnyKeyword(name, []string{"line of credit", "loc", "heloc"}):
		return DebtLineOfCredit
	default:
		return DebtPersonalLoan
	}
}

// containsAnyKeyword reports a plain case-insensitive substring match.
func containsAnyKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// matchesAnyKeyword matches account names against keywords. Short keywords
// ("loc", "car") must match a whole word to avoid false hits inside longer
// words; longer single-word keywords also tolerate one typo, so "mortage"
// still counts as "mortgage".
func matchesAnyKeyword(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, kw := range keywords {
		if strings.ContainsRune(kw, ' ') {
			if strings.Contains(lower, kw) {
				return true
			}
			continue
		}
		if len(kw) <= 4 {
			for _, w := range words {
				if w == kw {
					return true
				}
			}
			continue
		}
		if strings.Contains(lower, kw) {
			return true
		}
		for _, w := range words {
			if levenshtein.ComputeDistance(w, kw) <= 1 {
				return true
			}
		}
	}
	return false
}
