package interest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigRoundTrip(t *testing.T) {
	t.Parallel()

	raw, err := EncodeConfig(18.5, SchemeCompoundMonthly, "monthly")
	require.NoError(t, err)

	c, err := DecodeConfig(raw)
	require.NoError(t, err)
	require.Equal(t, ConfigVersion, c.Version)
	require.Equal(t, 18.5, c.APR)
	require.Equal(t, SchemeCompoundMonthly, c.Scheme)
	require.Equal(t, "monthly", c.Compounding)
}

func TestDecodeConfigDefensive(t *testing.T) {
	t.Parallel()

	_, err := DecodeConfig("{not json")
	require.Error(t, err)

	// Unknown scheme degrades to simple, missing compounding defaults.
	c, err := DecodeConfig(`{"version":1,"apr":9.9,"interestScheme":"tiered"}`)
	require.NoError(t, err)
	require.Equal(t, SchemeSimple, c.Scheme)
	require.Equal(t, "monthly", c.Compounding)
}
