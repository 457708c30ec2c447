package generator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextBurstsBeforeRotatingRound(t *testing.T) {
	var s = NewClientSession("run1", 0, 42)

	var first = s.Next().RoundID
	var sameRoundCount = 1
	for i := 0; i < 10 && s.Next().RoundID == first; i++ {
		sameRoundCount++
	}

	require.GreaterOrEqual(t, sameRoundCount, 3)
	require.LessOrEqual(t, sameRoundCount, 5)
}

func TestNextCyclesThroughTypes(t *testing.T) {
	var s = NewClientSession("run1", 0, 1)
	var seen = make(map[string]bool)
	for i := 0; i < len(cycleTypes); i++ {
		seen[string(s.Next().TxnType)] = true
	}
	require.Len(t, seen, len(cycleTypes))
}

func TestNextIsDeterministicGivenSeed(t *testing.T) {
	var a = NewClientSession("run1", 3, 99)
	var b = NewClientSession("run1", 3, 99)

	for i := 0; i < 20; i++ {
		var ea, eb = a.Next(), b.Next()
		require.Equal(t, ea.RoundID, eb.RoundID)
		require.Equal(t, ea.TxnType, eb.TxnType)
		require.Equal(t, ea.Amount.String(), eb.Amount.String())
	}
}

func TestRoundIDFormat(t *testing.T) {
	var s = NewClientSession("bench1", 7, 5)
	var ev = s.Next()
	require.Equal(t, "bench1-client7-round1", ev.RoundID)
}

func TestAmountFormulaIsWithinExpectedBand(t *testing.T) {
	var s = NewClientSession("run1", 0, 7)
	for i := 0; i < 5; i++ {
		var ev = s.Next()
		var f = ev.Amount.Float64()
		var lower = 10.0 + float64(i)*5.0
		var upper = lower + 50.0
		require.GreaterOrEqual(t, f, lower)
		require.Less(t, f, upper)
	}
}
