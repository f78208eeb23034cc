package interest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateKnownAmounts(t *testing.T) {
	t.Parallel()

	// $2,500 balance, amounts in cents for one month.
	require.Equal(t, int64(3854), Calculate(-250000, 18.5, SchemeSimple))
	require.Equal(t, int64(3750), Calculate(-250000, 18.0, SchemeCompoundMonthly))

	daily := Calculate(-250000, 18.0, SchemeCompoundDaily)
	require.Greater(t, daily, int64(3700))
	require.Less(t, daily, int64(3800))

	annually := Calculate(-250000, 18.0, SchemeCompoundAnnually)
	require.Greater(t, annually, int64(3400))
	require.Less(t, annually, int64(3500))
	require.Less(t, annually, Calculate(-250000, 18.0, SchemeSimple))
}

func TestCalculateSignAndZeroes(t *testing.T) {
	t.Parallel()

	schemes := []Scheme{SchemeSimple, SchemeCompoundMonthly, SchemeCompoundDaily, SchemeCompoundAnnually}
	for _, s := range schemes {
		require.Equal(t, Calculate(-250000, 18.5, s), Calculate(250000, 18.5, s), "sign of balance must not change magnitude for %s", s)
		require.Zero(t, Calculate(0, 18.5, s))
		require.Zero(t, Calculate(-250000, 0, s))
		require.GreaterOrEqual(t, Calculate(-123456, 7.25, s), int64(0))
	}
}

func TestCalculateUnknownSchemeFallsBackToSimple(t *testing.T) {
	t.Parallel()

	require.Equal(t, Calculate(-250000, 18.5, SchemeSimple), Calculate(-250000, 18.5, Scheme("daily-ish")))
	require.Equal(t, SchemeSimple, ParseScheme("whatever"))
	require.Equal(t, SchemeCompoundDaily, ParseScheme(" Compound_Daily "))
}

func TestAPRFromInterestRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		principal int64
		apr       float64
	}{
		{250000, 18.5},
		{1500000, 6.0},
		{40000, 29.99},
		{10000000, 3.25},
	}
	for _, scheme := range []Scheme{SchemeSimple, SchemeCompoundMonthly, SchemeCompoundDaily, SchemeCompoundAnnually} {
		for _, tc := range cases {
			charged := Calculate(-tc.principal, tc.apr, scheme)
			got, ok := APRFromInterest(charged, tc.principal, scheme)
			require.True(t, ok, "%s principal=%d", scheme, tc.principal)
			// The inverse works from a cent-rounded observation, so allow
			// one decimal place of slack.
			require.InDelta(t, tc.apr, got, 0.1, "%s principal=%d", scheme, tc.principal)
		}
	}
}

func TestAPRFromInterestZeroInputs(t *testing.T) {
	t.Parallel()

	for _, s := range []Scheme{SchemeSimple, SchemeCompoundMonthly, SchemeCompoundDaily, SchemeCompoundAnnually} {
		_, ok := APRFromInterest(0, 250000, s)
		require.False(t, ok)
		_, ok = APRFromInterest(3854, 0, s)
		require.False(t, ok)
	}
}

func TestAPRFromInterestRounding(t *testing.T) {
	t.Parallel()

	apr, ok := APRFromInterest(3854, 250000, SchemeSimple)
	require.True(t, ok)
	// Exactly two decimal places.
	require.Equal(t, apr, math.Round(apr*100)/100)
	require.InDelta(t, 18.5, apr, 0.01)
}
