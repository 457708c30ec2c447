package bench

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/arcadia-games/txcore/internal/clock"
	"github.com/arcadia-games/txcore/internal/generator"
	"github.com/arcadia-games/txcore/internal/kv"
	"github.com/arcadia-games/txcore/internal/ops"
	"github.com/arcadia-games/txcore/internal/reader"
)

// roundSet is a bounded, concurrency-safe set of round ids observed during
// a run, sampled for the post-run consistency check (§4.7).
type roundSet struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	order    []string
	capacity int
}

func newRoundSet(capacity int) *roundSet {
	return &roundSet{seen: make(map[string]struct{}), capacity: capacity}
}

func (s *roundSet) add(roundID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[roundID]; ok {
		return
	}
	if len(s.order) >= s.capacity {
		return
	}
	s.seen[roundID] = struct{}{}
	s.order = append(s.order, roundID)
}

func (s *roundSet) list() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out = make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Driver implements §4.7's K-parallel-worker benchmark loop (§5 "parallel
// workers" scheduling model): one goroutine per virtual client, each
// sequential, continuously appending via the Generator until the run's
// wall-clock deadline.
type Driver struct {
	Appender              Appender
	Store                 kv.Store // only needed when IndexVariant, for the consistency pass
	Clock                 clock.Clock
	Log                   ops.Logger
	RunTag                string
	ConcurrentClients     int
	DurationSeconds       int
	Currency              string
	Seed                  int64
	ConsistencySampleSize int
	IndexVariant          bool
}

// Run spawns ConcurrentClients workers and blocks until all have observed
// the deadline, then returns the aggregated Report.
func (d *Driver) Run(ctx context.Context) Report {
	var agg = NewAggregator()
	var start = d.Clock.Mono()
	var deadline = time.Duration(d.DurationSeconds) * time.Second
	var sampled = newRoundSet(d.ConsistencySampleSize)

	var wg sync.WaitGroup
	for c := 0; c < d.ConcurrentClients; c++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			var session = generator.NewClientSession(d.RunTag, clientID, d.Seed+int64(clientID))
			var localSamples = make([]float64, 0, 256)

			for d.Clock.Since(start) < deadline {
				var ev = session.Next()
				var res = d.Appender.Append(ctx, ev.RoundID, ev.TxnType, ev.Amount, d.Currency)
				localSamples = append(localSamples, float64(res.ResponseTimeMs))
				agg.Record(res)
				sampled.add(ev.RoundID)
			}

			agg.AddSamples(localSamples)
		}(c)
	}
	wg.Wait()

	var actualDurationSec = d.Clock.Since(start).Seconds()

	var consistency ConsistencyReport
	if d.IndexVariant {
		var idxReader = &reader.IndexReader{Store: d.Store}
		consistency = VerifyIndexConsistency(ctx, idxReader, sampled.list())
	}

	var rep = agg.Report(actualDurationSec, d.IndexVariant, consistency)
	if !rep.IndexConsistencyVerified && d.IndexVariant {
		d.Log.With(map[string]interface{}{"mismatches": len(rep.ConsistencyMismatches)}).Warn("index consistency verification failed")
	}
	d.Log.With(map[string]interface{}{
		"totalAttempted":  rep.TotalAttempted,
		"totalSuccessful": rep.TotalSuccessful,
		"successRatePct":  fmt.Sprintf("%.2f", rep.SuccessRatePct),
	}).Info("benchmark run complete")

	return rep
}
