package model

import (
	"testing"

	"github.com/arcadia-games/txcore/internal/money"
	"github.com/arcadia-games/txcore/internal/txnerr"
	"github.com/stretchr/testify/require"
)

func TestAppendIndexedRefSequenceAndBalance(t *testing.T) {
	var round = NewIndexedRound("R1", "", "", "", "USD", money.New(100), 1000)

	round, ref1, status1, bal1, rejected, err := AppendIndexedRef(round, "TXN1", TxnBet, money.New(10), 1001, false, money.Zero, 0)
	require.NoError(t, err)
	require.False(t, rejected)
	require.Equal(t, TxnStatusCompleted, status1)
	require.Equal(t, 1, ref1.SequenceNumber)
	require.Equal(t, "90.00", bal1.String())
	require.Equal(t, "90.00", round.CurrentBalance.String())

	round, ref2, _, bal2, _, err := AppendIndexedRef(round, "TXN2", TxnWin, money.New(20), 1002, false, money.Zero, 0)
	require.NoError(t, err)
	require.Equal(t, 2, ref2.SequenceNumber)
	require.Equal(t, "110.00", bal2.String())
	require.Len(t, round.Refs, 2)
}

func TestAppendIndexedRefDuplicateTxn(t *testing.T) {
	var round = NewIndexedRound("R1", "", "", "", "USD", money.New(100), 1000)
	round, _, _, _, _, err := AppendIndexedRef(round, "TXN1", TxnBet, money.New(10), 1001, false, money.Zero, 0)
	require.NoError(t, err)

	_, _, _, _, _, err = AppendIndexedRef(round, "TXN1", TxnBet, money.New(5), 1002, false, money.Zero, 0)
	require.ErrorIs(t, err, txnerr.ErrDuplicateTxn)
}

func TestAppendIndexedRefDerivesMetricsAndRisk(t *testing.T) {
	var round = NewIndexedRound("R1", "", "", "", "USD", money.New(1000), 1000)
	round, _, _, _, _, err := AppendIndexedRef(round, "TXN1", TxnBet, money.New(10), 1001, false, money.Zero, 0)
	require.NoError(t, err)
	round, _, _, _, _, err = AppendIndexedRef(round, "TXN2", TxnWin, money.New(30), 1002, false, money.Zero, 0)
	require.NoError(t, err)

	require.Equal(t, "30.00", round.Metrics.MaxTxnAmount.String())
	require.Equal(t, "LOW", round.Risk.RiskTier)
}
