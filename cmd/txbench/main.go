// Command txbench drives the Benchmark Driver & Aggregator (§4.7) against
// either writer variant (§4.3, §4.4) over a selectable KV backend.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/arcadia-games/txcore/internal/bench"
	"github.com/arcadia-games/txcore/internal/clock"
	"github.com/arcadia-games/txcore/internal/config"
	"github.com/arcadia-games/txcore/internal/kv"
	"github.com/arcadia-games/txcore/internal/kv/etcdstore"
	"github.com/arcadia-games/txcore/internal/kv/memstore"
	"github.com/arcadia-games/txcore/internal/kv/sqlitestore"
	"github.com/arcadia-games/txcore/internal/ops"
	"github.com/arcadia-games/txcore/internal/writer"
	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// cfg is the top-level configuration object, parsed by go-flags from CLI
// flags or environment variables — the same shape estuary-flow's own
// service binaries use.
var cfg = new(config.Config)

type cmdRun struct{}

func (cmdRun) Execute(_ []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.InitLog(); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}

	log.WithFields(log.Fields{
		"writerMode":        cfg.Writer.Mode,
		"kvBackend":         cfg.KV.Backend,
		"concurrentClients": cfg.Bench.ConcurrentClients,
		"durationSeconds":   cfg.Bench.DurationSeconds,
	}).Info("txbench configuration")

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening kv store: %w", err)
	}
	defer closeStore()

	var clk = clock.System{}
	var logger = ops.NewLogger(log.Fields{"component": "txbench"})

	var appender bench.Appender
	switch cfg.Writer.Mode {
	case config.WriterEmbedded:
		var w = writer.NewEmbeddedWriter(store, clk)
		w.Policy.MaxRetries = cfg.Writer.MaxRetries
		w.Policy.OperationDeadlineMs = cfg.Writer.OperationDeadlineMs
		w.RejectOnNegativeBalance = cfg.Writer.RejectOnNegativeBalance
		w.MaxTransactionsPerRound = cfg.Writer.MaxTransactionsPerRound
		w.Log = logger
		appender = bench.EmbeddedAdapter{Writer: w}
	case config.WriterIndexed:
		var w = writer.NewIndexWriter(store, clk)
		w.RoundMaxRetries = cfg.Writer.MaxRetries
		w.DetailMaxRetries = cfg.Writer.MaxRetries
		w.OperationDeadlineMs = cfg.Writer.OperationDeadlineMs
		w.RejectOnNegativeBalance = cfg.Writer.RejectOnNegativeBalance
		w.MaxTransactionsPerRound = cfg.Writer.MaxTransactionsPerRound
		w.Log = logger
		appender = bench.IndexAdapter{Writer: w}
	}

	var driver = bench.Driver{
		Appender:              appender,
		Store:                 store,
		Clock:                 clk,
		Log:                   logger,
		RunTag:                cfg.Bench.RunTag,
		ConcurrentClients:     cfg.Bench.ConcurrentClients,
		DurationSeconds:       cfg.Bench.DurationSeconds,
		Currency:              "USD",
		Seed:                  cfg.Bench.Seed,
		ConsistencySampleSize: cfg.Bench.ConsistencySampleSize,
		IndexVariant:          cfg.Writer.Mode == config.WriterIndexed,
	}

	var rep = driver.Run(context.Background())
	bench.PrintReport(os.Stdout, rep)

	if !rep.Meets100PctSuccess || (rep.IndexVariant && !rep.IndexConsistencyVerified) {
		return fmt.Errorf("benchmark run did not meet its pass criteria")
	}
	return nil
}

// openStore builds the configured kv.Store and returns a cleanup func.
func openStore(cfg *config.Config) (kv.Store, func(), error) {
	switch cfg.KV.Backend {
	case config.KVBackendMemory:
		return memstore.New(), func() {}, nil

	case config.KVBackendEtcd:
		var ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.KV.ConnectTimeoutMs)*time.Millisecond)
		defer cancel()
		client, err := clientv3.New(clientv3.Config{
			Endpoints:   cfg.KV.EtcdEndpoints,
			DialTimeout: time.Duration(cfg.KV.ConnectTimeoutMs) * time.Millisecond,
			Context:     ctx,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("dialing etcd: %w", err)
		}
		return etcdstore.New(client, cfg.KV.EtcdPrefix), func() { client.Close() }, nil

	case config.KVBackendSqlite:
		var ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.KV.ConnectTimeoutMs)*time.Millisecond)
		defer cancel()
		store, err := sqlitestore.Open(ctx, cfg.KV.SqlitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, func() { store.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown kv backend %q", cfg.KV.Backend)
	}
}

func main() {
	var parser = flags.NewParser(cfg, flags.Default)

	_, _ = parser.AddCommand("run", "Run a benchmark", `
Run the configured benchmark: spawn the configured number of concurrent
virtual clients, each continuously appending transactions via the
configured writer variant until the configured duration elapses, then
print the aggregated report.
`, &cmdRun{})

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
