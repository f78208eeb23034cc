// Package interest implements the per-period interest math and calendar
// arithmetic used by the debt engine. Everything here is pure; callers own
// persistence and sign conventions.
package interest

import (
	"math"
	"strings"
)

// Scheme selects the accrual formula. Unknown values degrade to SchemeSimple
// because scheme strings round-trip through loosely typed storage.
type Scheme string

const (
	SchemeSimple           Scheme = "simple"
	SchemeCompoundMonthly  Scheme = "compound_monthly"
	SchemeCompoundDaily    Scheme = "compound_daily"
	SchemeCompoundAnnually Scheme = "compound_annually"
)

// ParseScheme normalizes a stored scheme string.
func ParseScheme(s string) Scheme {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case SchemeCompoundMonthly:
		return SchemeCompoundMonthly
	case SchemeCompoundDaily:
		return SchemeCompoundDaily
	case SchemeCompoundAnnually:
		return SchemeCompoundAnnually
	default:
		return SchemeSimple
	}
}

// daysPerMonth is the fixed 30/365 day-count approximation; real day counts
// are out of scope.
const daysPerMonth = 30

// Calculate returns one month of interest in cents for the given balance and
// APR. The sign of balanceCents is ignored; callers apply their own sign when
// posting. Amounts round half away from zero.
func Calculate(balanceCents int64, aprPercent float64, scheme Scheme) int64 {
	principal := math.Abs(float64(balanceCents))
	if principal == 0 || aprPercent == 0 {
		return 0
	}
	rate := aprPercent / 100

	var amount float64
	switch scheme {
	case SchemeCompoundDaily:
		daily := rate / 365
		amount = principal*math.Pow(1+daily, daysPerMonth) - principal
	case SchemeCompoundAnnually:
		amount = principal*math.Pow(1+rate, 1.0/12) - principal
	case SchemeCompoundMonthly:
		amount = principal * rate / 12
	default:
		amount = principal * rate / 12
	}
	return int64(math.Round(amount))
}

// APRFromInterest recovers an implied annual rate from a single observed
// one-month charge. It assumes one uniform month: it cannot reproduce
// amortization, average-daily-balance, or fee-inclusive bank methodologies,
// so treat the result as an estimate. Returns ok=false when either input is
// zero or the scheme inverse leaves its numeric domain.
func APRFromInterest(interestCents, principalCents int64, scheme Scheme) (float64, bool) {
	if interestCents == 0 || principalCents == 0 {
		return 0, false
	}
	interest := math.Abs(float64(interestCents))
	principal := math.Abs(float64(principalCents))
	monthlyRate := interest / principal

	var apr float64
	switch scheme {
	case SchemeCompoundDaily:
		daily := math.Pow(1+monthlyRate, 1.0/daysPerMonth) - 1
		apr = daily * 365 * 100
	case SchemeCompoundAnnually:
		apr = (math.Pow(1+monthlyRate, 12) - 1) * 100
	default:
		apr = monthlyRate * 12 * 100
	}
	if math.IsNaN(apr) || math.IsInf(apr, 0) {
		return 0, false
	}
	return math.Round(apr*100) / 100, true
}
