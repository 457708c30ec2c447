// Package kv defines the KV Client Contract (§4.1): a thin abstraction over
// the external document store that every Writer and Reader drives, and that
// is the only non-trivial external boundary of the core (§6). Concrete
// backends live in the etcdstore, sqlitestore, and memstore subpackages.
package kv

import (
	"context"
	"errors"
)

// Version identifies the revision of a stored document for compare-and-
// swap. Its zero value means "the document does not exist"; Get reports it
// for an absent key, and Insert takes no expected version at all.
type Version = int64

// NoVersion is the sentinel Version meaning "document does not exist yet".
const NoVersion Version = 0

var (
	// ErrAlreadyExists is returned by Insert when the key is already present.
	ErrAlreadyExists = errors.New("kv: already exists")
	// ErrCasMismatch is returned by Replace when verExpected no longer
	// matches the stored version.
	ErrCasMismatch = errors.New("kv: cas mismatch")
	// ErrNotFound is returned by Replace or Remove when the key is absent.
	ErrNotFound = errors.New("kv: not found")
	// ErrTransient wraps an error the caller should retry under the same
	// policy as a Conflict, but must count separately (§4.1, §7).
	ErrTransient = errors.New("kv: transient failure")
	// ErrFatal wraps an error the store itself considers unrecoverable:
	// store unreachable, or a corrupted/undecodable stored value.
	ErrFatal = errors.New("kv: fatal failure")
)

// Store is the synchronous-in-semantics document store contract. A backend
// may use non-blocking I/O internally, but every method here returns only
// after its operation (including any network round-trip) has completed or
// failed.
type Store interface {
	// Get fetches the current value and version for key. exists is false
	// (with a nil error) when the key is absent.
	Get(ctx context.Context, key string) (value []byte, version Version, exists bool, err error)

	// Insert creates key with value, failing with ErrAlreadyExists if the
	// key is already present.
	Insert(ctx context.Context, key string, value []byte) (Version, error)

	// Replace updates key to value only if its current version equals
	// verExpected, failing with ErrCasMismatch otherwise and ErrNotFound if
	// the key does not exist.
	Replace(ctx context.Context, key string, value []byte, verExpected Version) (Version, error)

	// Remove deletes key, failing with ErrNotFound if it is not present.
	Remove(ctx context.Context, key string) error
}
