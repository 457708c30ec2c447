// Package memstore is an in-memory kv.Store used by unit tests of the
// Writer and Reader state machines. It linearizes operations per key with a
// mutex (as the KV Client Contract requires, §4.1) and assigns monotonic
// versions starting at 1, so CAS semantics match a real store exactly.
package memstore

import (
	"context"
	"sync"

	"github.com/arcadia-games/txcore/internal/kv"
)

type entry struct {
	value   []byte
	version kv.Version
}

// Store is a plain, fault-free in-memory kv.Store.
type Store struct {
	mu   sync.Mutex
	docs map[string]entry
}

var _ kv.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{docs: make(map[string]entry)}
}

func (s *Store) Get(_ context.Context, key string) ([]byte, kv.Version, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.docs[key]
	if !ok {
		return nil, kv.NoVersion, false, nil
	}
	var cp = make([]byte, len(e.value))
	copy(cp, e.value)
	return cp, e.version, true, nil
}

func (s *Store) Insert(_ context.Context, key string, value []byte) (kv.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[key]; ok {
		return kv.NoVersion, kv.ErrAlreadyExists
	}
	var cp = make([]byte, len(value))
	copy(cp, value)
	s.docs[key] = entry{value: cp, version: 1}
	return 1, nil
}

func (s *Store) Replace(_ context.Context, key string, value []byte, verExpected kv.Version) (kv.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.docs[key]
	if !ok {
		return kv.NoVersion, kv.ErrNotFound
	}
	if e.version != verExpected {
		return kv.NoVersion, kv.ErrCasMismatch
	}
	var cp = make([]byte, len(value))
	copy(cp, value)
	var next = e.version + 1
	s.docs[key] = entry{value: cp, version: next}
	return next, nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[key]; !ok {
		return kv.ErrNotFound
	}
	delete(s.docs, key)
	return nil
}

// Len reports the number of documents currently stored, for test assertions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// Has reports whether key currently exists, for test assertions.
func (s *Store) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[key]
	return ok
}
