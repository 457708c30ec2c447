package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAmountRoundTrip(t *testing.T) {
	var a = New(12.5)
	var buf, err = json.Marshal(a)
	require.NoError(t, err)

	var b Amount
	require.NoError(t, json.Unmarshal(buf, &b))
	require.Equal(t, "12.50", b.String())
}

func TestAmountAcceptsBareNumberAndString(t *testing.T) {
	var a Amount
	require.NoError(t, json.Unmarshal([]byte(`10`), &a))
	require.Equal(t, "10.00", a.String())

	var b Amount
	require.NoError(t, json.Unmarshal([]byte(`"7.25"`), &b))
	require.Equal(t, "7.25", b.String())
}

func TestAmountPrefersStringWhenDisagreeing(t *testing.T) {
	// Simulates a document written by a buggy peer where the float and the
	// compliance string disagree; the string form must win per §6.
	var raw = `{"value":10.0,"string":"10.01"}`
	var a Amount
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	require.Equal(t, "10.01", a.String())
}

func TestSignedAccounting(t *testing.T) {
	require.Equal(t, "10.00", Signed("WIN", New(10)).String())
	require.Equal(t, "-10.00", Signed("BET", New(10)).String())
	require.Equal(t, "-5.00", Signed("FEE", New(5)).String())
	require.Equal(t, "25.00", Signed("JACKPOT", New(25)).String())
}

func TestAddSubExactness(t *testing.T) {
	var bal = New(100)
	bal = bal.Add(Signed("WIN", New(0.1)))
	bal = bal.Add(Signed("BET", New(0.1)))
	require.Equal(t, "100.00", bal.String())
}
