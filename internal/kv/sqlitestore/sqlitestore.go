// Package sqlitestore backs the KV Client Contract with an embedded SQLite
// database, for local development and CI where standing up an etcd cluster
// is overkill. A monotonic "version" column stands in for etcd's
// ModRevision; every Replace is guarded by a SQL UPDATE ... WHERE version = ?
// so the same compare-and-swap semantics hold.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/arcadia-games/txcore/internal/kv"
	_ "github.com/mattn/go-sqlite3" // Import for registration side-effects.
)

// sqliteOpenMu serializes sql.Open calls. go-sqlite3 is known to return
// spurious "database is locked" errors when two opens of a freshly created
// database race, the same workaround go/materialize/driver/sqlite/sqlite.go
// applies.
var sqliteOpenMu sync.Mutex

// Store is a kv.Store backed by a SQLite table.
type Store struct {
	db *sql.DB
}

var _ kv.Store = (*Store)(nil)

// Open creates (if needed) the backing table at path and returns a Store.
// path may be ":memory:" for a process-local, non-durable instance, which
// is all unit tests need.
func Open(ctx context.Context, path string) (*Store, error) {
	sqliteOpenMu.Lock()
	db, err := sql.Open("sqlite3", path)
	if err == nil {
		err = db.PingContext(ctx)
	}
	sqliteOpenMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database %q: %w", path, err)
	}

	// A single shared connection avoids "database is locked" errors under
	// concurrent writers; SQLite serializes writes internally regardless.
	db.SetMaxOpenConns(1)

	const schema = `
CREATE TABLE IF NOT EXISTS documents (
	key     TEXT PRIMARY KEY,
	value   BLOB NOT NULL,
	version INTEGER NOT NULL
);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("creating documents table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Get(ctx context.Context, key string) ([]byte, kv.Version, bool, error) {
	var value []byte
	var version kv.Version
	var err = s.db.QueryRowContext(ctx,
		`SELECT value, version FROM documents WHERE key = ?`, key).Scan(&value, &version)
	switch {
	case err == sql.ErrNoRows:
		return nil, kv.NoVersion, false, nil
	case err != nil:
		return nil, kv.NoVersion, false, fmt.Errorf("%w: %v", kv.ErrFatal, err)
	}
	return value, version, true, nil
}

func (s *Store) Insert(ctx context.Context, key string, value []byte) (kv.Version, error) {
	var _, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (key, value, version) VALUES (?, ?, 1)`, key, value)
	if err != nil {
		if isUniqueViolation(err) {
			return kv.NoVersion, kv.ErrAlreadyExists
		}
		return kv.NoVersion, fmt.Errorf("%w: %v", kv.ErrFatal, err)
	}
	return 1, nil
}

func (s *Store) Replace(ctx context.Context, key string, value []byte, verExpected kv.Version) (kv.Version, error) {
	var next = verExpected + 1
	var result, err = s.db.ExecContext(ctx,
		`UPDATE documents SET value = ?, version = ? WHERE key = ? AND version = ?`,
		value, next, key, verExpected)
	if err != nil {
		return kv.NoVersion, fmt.Errorf("%w: %v", kv.ErrFatal, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return kv.NoVersion, fmt.Errorf("%w: %v", kv.ErrFatal, err)
	}
	if n == 0 {
		// Either the key does not exist, or its version has moved on.
		if _, _, exists, getErr := s.Get(ctx, key); getErr == nil && !exists {
			return kv.NoVersion, kv.ErrNotFound
		}
		return kv.NoVersion, kv.ErrCasMismatch
	}
	return next, nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	var result, err = s.db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("%w: %v", kv.ErrFatal, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", kv.ErrFatal, err)
	}
	if n == 0 {
		return kv.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	// go-sqlite3 reports constraint violations with this substring; we avoid
	// importing the driver's internal error type to keep this check cheap
	// and dependency-light.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
