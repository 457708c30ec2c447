package bench

import (
	"context"
	"testing"

	"github.com/arcadia-games/txcore/internal/clock"
	"github.com/arcadia-games/txcore/internal/kv/memstore"
	"github.com/arcadia-games/txcore/internal/ops"
	"github.com/arcadia-games/txcore/internal/writer"
	"github.com/stretchr/testify/require"
)

func TestDriverRunEmbeddedProducesSuccessfulReport(t *testing.T) {
	var store = memstore.New()
	var w = writer.NewEmbeddedWriter(store, clock.System{})
	var d = Driver{
		Appender:          EmbeddedAdapter{Writer: w},
		Clock:             clock.System{},
		Log:               ops.NewLogger(nil),
		RunTag:            "t",
		ConcurrentClients: 3,
		DurationSeconds:   1,
		Currency:          "USD",
		Seed:              1,
	}

	var rep = d.Run(context.Background())

	require.Greater(t, rep.TotalAttempted, int64(0))
	require.Equal(t, rep.TotalAttempted, rep.TotalSuccessful+rep.TotalFailed)
	require.True(t, rep.Meets100PctSuccess)
}

func TestDriverRunIndexedVerifiesConsistency(t *testing.T) {
	var store = memstore.New()
	var w = writer.NewIndexWriter(store, clock.System{})
	var d = Driver{
		Appender:              IndexAdapter{Writer: w},
		Store:                 store,
		Clock:                 clock.System{},
		Log:                   ops.NewLogger(nil),
		RunTag:                "t",
		ConcurrentClients:     3,
		DurationSeconds:       1,
		Currency:              "USD",
		Seed:                  1,
		ConsistencySampleSize: 20,
		IndexVariant:          true,
	}

	var rep = d.Run(context.Background())

	require.Greater(t, rep.TotalAttempted, int64(0))
	require.True(t, rep.IndexConsistencyVerified)
	require.Equal(t, int64(0), rep.IndexOrphanCount)
}
