package reader

import (
	"context"
	"testing"

	"github.com/arcadia-games/txcore/internal/clock"
	"github.com/arcadia-games/txcore/internal/kv/memstore"
	"github.com/arcadia-games/txcore/internal/model"
	"github.com/arcadia-games/txcore/internal/money"
	"github.com/arcadia-games/txcore/internal/txnerr"
	"github.com/arcadia-games/txcore/internal/writer"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedReaderReturnsNotFound(t *testing.T) {
	var store = memstore.New()
	var r = EmbeddedReader{Store: store}

	_, err := r.GetRound(context.Background(), "R1")
	require.ErrorIs(t, err, txnerr.ErrRoundNotFound)
}

func TestEmbeddedReaderReturnsAppendedTxn(t *testing.T) {
	var store = memstore.New()
	var w = writer.NewEmbeddedWriter(store, clock.NewFake(1000))
	w.Append(context.Background(), "R1", "TXN1", model.TxnBet, money.New(10), "USD")

	var r = EmbeddedReader{Store: store}
	round, err := r.GetRound(context.Background(), "R1")
	require.NoError(t, err)
	require.Len(t, round.Transactions, 1)
	require.Equal(t, "TXN1", round.Transactions[0].ID)
}

func TestIndexReaderFetchesAllDetailsConcurrently(t *testing.T) {
	var store = memstore.New()
	var w = writer.NewIndexWriter(store, clock.NewFake(1000))
	w.Append(context.Background(), "R1", "TXN1", model.TxnBet, money.New(10), "USD")
	w.Append(context.Background(), "R1", "TXN2", model.TxnWin, money.New(20), "USD")

	var r = IndexReader{Store: store}
	view, err := r.GetRound(context.Background(), "R1")
	require.NoError(t, err)
	require.False(t, view.Degraded)
	require.Len(t, view.Details, 2)
	require.Contains(t, view.Details, "TXN1")
	require.Contains(t, view.Details, "TXN2")
}

func TestIndexReaderDegradesOnMissingDetail(t *testing.T) {
	var store = memstore.New()
	var w = writer.NewIndexWriter(store, clock.NewFake(1000))
	w.Append(context.Background(), "R1", "TXN1", model.TxnBet, money.New(10), "USD")

	// Simulate a detail lost out-of-band (e.g. a sweep bug): remove it while
	// its ref still lives in the round.
	store.Remove(context.Background(), "TXN1")

	var r = IndexReader{Store: store}
	view, err := r.GetRound(context.Background(), "R1")
	require.NoError(t, err)
	require.True(t, view.Degraded)
	require.Equal(t, []string{"TXN1"}, view.MissingTxns)
	require.Len(t, view.Round.Refs, 1)
}

func TestIndexReaderReturnsNotFound(t *testing.T) {
	var store = memstore.New()
	var r = IndexReader{Store: store}

	_, err := r.GetRound(context.Background(), "R1")
	require.ErrorIs(t, err, txnerr.ErrRoundNotFound)
}
