// Package config is the txbench configuration surface (§6), laid out as
// nested go-flags groups the way estuary-flow's own service binaries
// (go/flow-ingester/main.go, go/flowctl/main.go) structure theirs.
package config

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// WriterMode selects the document layout a run exercises (§4.3 vs §4.4).
type WriterMode string

const (
	WriterEmbedded WriterMode = "embedded"
	WriterIndexed  WriterMode = "indexed"
)

// KVBackend selects the concrete kv.Store implementation wired up at
// startup.
type KVBackend string

const (
	KVBackendMemory KVBackend = "memory"
	KVBackendEtcd   KVBackend = "etcd"
	KVBackendSqlite KVBackend = "sqlite"
)

// Config is the top-level txbench configuration object, parsed by
// jessevdk/go-flags from CLI flags or environment variables.
type Config struct {
	Writer struct {
		Mode                            WriterMode `long:"mode" env:"MODE" default:"embedded" description:"document layout: embedded or indexed"`
		MaxRetries                      int        `long:"max-retries" env:"MAX_RETRIES" default:"3" description:"retries per document after the first attempt"`
		OperationDeadlineMs             int64      `long:"operation-deadline-ms" env:"OPERATION_DEADLINE_MS" default:"50" description:"wall-clock budget for one append, inclusive of all retries"`
		RejectOnNegativeBalance         bool       `long:"reject-negative-balance" env:"REJECT_NEGATIVE_BALANCE" description:"fail a debit that would drive the balance below the floor instead of allowing it"`
		MaxTransactionsPerRound         int        `long:"max-transactions-per-round" env:"MAX_TRANSACTIONS_PER_ROUND" default:"0" description:"0 disables the cap"`
	} `group:"Writer" namespace:"writer" env-namespace:"WRITER"`

	KV struct {
		Backend          KVBackend `long:"backend" env:"BACKEND" default:"memory" description:"memory, etcd, or sqlite"`
		ConnectTimeoutMs int       `long:"connect-timeout-ms" env:"CONNECT_TIMEOUT_MS" default:"10000"`
		OpTimeoutMs      int       `long:"op-timeout-ms" env:"OP_TIMEOUT_MS" default:"1500"`
		EtcdEndpoints    []string  `long:"etcd-endpoint" env:"ETCD_ENDPOINTS" env-delim:"," default:"localhost:2379" description:"repeatable; comma-separated in the env form"`
		EtcdPrefix       string    `long:"etcd-prefix" env:"ETCD_PREFIX" default:"/txcore/"`
		SqlitePath       string    `long:"sqlite-path" env:"SQLITE_PATH" default:"txcore-bench.db"`
	} `group:"KV Store" namespace:"kv" env-namespace:"KV"`

	Bench struct {
		ConcurrentClients           int    `long:"concurrent-clients" env:"CONCURRENT_CLIENTS" default:"10" description:"1..1000"`
		DurationSeconds             int    `long:"duration-seconds" env:"DURATION_SECONDS" default:"60"`
		RunTag                      string `long:"run-tag" env:"RUN_TAG" default:"bench"`
		Seed                        int64  `long:"seed" env:"SEED" default:"1" description:"generator seed, for reproducible runs"`
		ConsistencySampleSize       int    `long:"consistency-sample-size" env:"CONSISTENCY_SAMPLE_SIZE" default:"50" description:"rounds sampled for the post-run index consistency check"`
	} `group:"Benchmark" namespace:"bench" env-namespace:"BENCH"`

	Log struct {
		Level  string `long:"level" env:"LEVEL" default:"info"`
		Format string `long:"format" env:"FORMAT" default:"text" description:"text or json"`
	} `group:"Logging" namespace:"log" env-namespace:"LOG"`
}

// Validate checks the §6 bounds that go-flags' own tags can't express
// (cross-field and ranged constraints).
func (c *Config) Validate() error {
	if c.Bench.ConcurrentClients < 1 || c.Bench.ConcurrentClients > 1000 {
		return fmt.Errorf("bench.concurrent-clients must be in [1,1000], got %d", c.Bench.ConcurrentClients)
	}
	if c.Bench.DurationSeconds < 1 {
		return fmt.Errorf("bench.duration-seconds must be >= 1, got %d", c.Bench.DurationSeconds)
	}
	switch c.Writer.Mode {
	case WriterEmbedded, WriterIndexed:
	default:
		return fmt.Errorf("writer.mode must be %q or %q, got %q", WriterEmbedded, WriterIndexed, c.Writer.Mode)
	}
	switch c.KV.Backend {
	case KVBackendMemory, KVBackendEtcd, KVBackendSqlite:
	default:
		return fmt.Errorf("kv.backend must be one of memory/etcd/sqlite, got %q", c.KV.Backend)
	}
	return nil
}

// InitLog applies the Log group to logrus's global logger, mirroring
// mainboilerplate.InitLog's role in the teacher's own binaries without
// pulling in the rest of that package's gazette-specific diagnostics.
func (c *Config) InitLog() error {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return fmt.Errorf("parsing log.level %q: %w", c.Log.Level, err)
	}
	log.SetLevel(level)

	switch c.Log.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&log.TextFormatter{})
	default:
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}
	return nil
}
