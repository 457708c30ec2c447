package model

import (
	"encoding/json"
	"testing"

	"github.com/arcadia-games/txcore/internal/money"
	"github.com/arcadia-games/txcore/internal/txnerr"
	"github.com/nsf/jsondiff"
	"github.com/stretchr/testify/require"
)

func TestAppendEmbeddedSequenceAndBalance(t *testing.T) {
	var round = NewEmbeddedRound("R1", "p1", "o1", "v1", "USD", money.New(100), 1000)

	round, txn1, rejected, err := AppendEmbedded(round, "T1", TxnBet, money.New(10), "USD", 1001, false, money.Zero, 0)
	require.NoError(t, err)
	require.False(t, rejected)
	require.Equal(t, 1, txn1.SequenceNumber)
	require.Equal(t, "90.00", round.CurrentBalance.String())

	round, txn2, rejected, err := AppendEmbedded(round, "T2", TxnWin, money.New(25), "USD", 1002, false, money.Zero, 0)
	require.NoError(t, err)
	require.False(t, rejected)
	require.Equal(t, 2, txn2.SequenceNumber)
	require.Equal(t, "115.00", round.CurrentBalance.String())

	require.Equal(t, 2, round.Summary.TotalTransactions)
	require.Equal(t, 1, round.Summary.TotalBets)
	require.Equal(t, 1, round.Summary.TotalWins)
	require.Equal(t, "15.00", round.Summary.NetAmount.String())
}

func TestAppendEmbeddedDuplicateTxn(t *testing.T) {
	var round = NewEmbeddedRound("R1", "", "", "", "USD", money.New(100), 1000)
	round, _, _, err := AppendEmbedded(round, "T1", TxnBet, money.New(10), "USD", 1001, false, money.Zero, 0)
	require.NoError(t, err)

	_, _, _, err = AppendEmbedded(round, "T1", TxnBet, money.New(5), "USD", 1002, false, money.Zero, 0)
	require.ErrorIs(t, err, txnerr.ErrDuplicateTxn)
}

func TestAppendEmbeddedBusinessReject(t *testing.T) {
	var round = NewEmbeddedRound("R1", "", "", "", "USD", money.New(5), 1000)

	round, txn, rejected, err := AppendEmbedded(round, "T1", TxnBet, money.New(10), "USD", 1001, true, money.Zero, 0)
	require.NoError(t, err)
	require.True(t, rejected)
	require.Equal(t, TxnStatusFailed, txn.Status)
	require.Equal(t, "5.00", round.CurrentBalance.String(), "balance unchanged on business reject")
	require.Len(t, round.Transactions, 1, "attempt is still recorded")
}

func TestAppendEmbeddedRoundFull(t *testing.T) {
	var round = NewEmbeddedRound("R1", "", "", "", "USD", money.New(100), 1000)
	var err error
	round, _, _, err = AppendEmbedded(round, "T1", TxnBet, money.New(1), "USD", 1001, false, money.Zero, 1)
	require.NoError(t, err)

	_, _, _, err = AppendEmbedded(round, "T2", TxnBet, money.New(1), "USD", 1002, false, money.Zero, 1)
	require.ErrorIs(t, err, txnerr.ErrRoundFull)
}

func TestAppendEmbeddedSequenceNumbersContiguous(t *testing.T) {
	var round = NewEmbeddedRound("R1", "", "", "", "USD", money.New(1000), 1000)
	for i := 1; i <= 20; i++ {
		var err error
		round, _, _, err = AppendEmbedded(round, string(rune('a'+i)), TxnBet, money.New(1), "USD", int64(1000+i), false, money.Zero, 0)
		require.NoError(t, err)
	}
	for i, txn := range round.Transactions {
		require.Equal(t, i+1, txn.SequenceNumber)
	}
}

func TestAppendEmbeddedMarshalsExpectedShape(t *testing.T) {
	var round = NewEmbeddedRound("R1", "p1", "o1", "v1", "USD", money.New(100), 1000)
	round, _, _, err := AppendEmbedded(round, "T1", TxnBet, money.New(10), "USD", 1001, false, money.Zero, 0)
	require.NoError(t, err)

	actual, err := json.Marshal(round)
	require.NoError(t, err)

	var expected = []byte(`{
		"roundId": "R1",
		"playerId": "p1",
		"currency": "USD",
		"currentBalance": {"value": 90, "string": "90.00"},
		"transactions": [
			{"id": "T1", "sequenceNumber": 1, "type": "BET"}
		]
	}`)

	var opts = jsondiff.DefaultConsoleOptions()
	mode, diff := jsondiff.Compare(actual, expected, &opts)
	require.Contains(t, []jsondiff.Difference{jsondiff.FullMatch, jsondiff.SupersetMatch}, mode, diff)
}

func TestAppendEmbeddedIsPure(t *testing.T) {
	var original = NewEmbeddedRound("R1", "", "", "", "USD", money.New(100), 1000)
	var originalCopy = original.Clone()

	_, _, _, err := AppendEmbedded(original, "T1", TxnBet, money.New(10), "USD", 1001, false, money.Zero, 0)
	require.NoError(t, err)
	require.Equal(t, originalCopy, original, "AppendEmbedded must not mutate its input")
}
