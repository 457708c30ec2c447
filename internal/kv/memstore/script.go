package memstore

import (
	"context"
	"sync/atomic"

	"github.com/arcadia-games/txcore/internal/kv"
)

// Scripted wraps a kv.Store and injects canned failures on specific keys,
// the way §9's "stub KV contract that scripts the sequence of responses"
// calls for. It is used to drive the Writer state machines through Conflict,
// Transient, and Fatal paths without a real contended store.
type Scripted struct {
	base kv.Store

	// AlwaysCasMismatch, when set for a key, makes every Replace against
	// that key fail with ErrCasMismatch regardless of verExpected. Used for
	// the §8 scenario 5 deadline-exhaustion test.
	AlwaysCasMismatch map[string]bool

	// TransientBudget, when positive for a key, makes operations (Get,
	// Insert, Replace, Remove) against that key fail with ErrTransient that
	// many times in total before passing through to the base store.
	TransientBudget map[string]*int32

	// FatalOn, when set for a key, makes every operation against that key
	// fail with ErrFatal.
	FatalOn map[string]bool
}

var _ kv.Store = (*Scripted)(nil)

// NewScripted wraps base with an initially-empty fault script.
func NewScripted(base kv.Store) *Scripted {
	return &Scripted{
		base:              base,
		AlwaysCasMismatch: make(map[string]bool),
		TransientBudget:   make(map[string]*int32),
		FatalOn:           make(map[string]bool),
	}
}

// SetTransientBudget configures key to fail n more times with ErrTransient
// before the underlying store is consulted.
func (s *Scripted) SetTransientBudget(key string, n int32) {
	var budget = n
	s.TransientBudget[key] = &budget
}

func (s *Scripted) consumeTransient(key string) bool {
	var p, ok = s.TransientBudget[key]
	if !ok {
		return false
	}
	for {
		var cur = atomic.LoadInt32(p)
		if cur <= 0 {
			return false
		}
		if atomic.CompareAndSwapInt32(p, cur, cur-1) {
			return true
		}
	}
}

func (s *Scripted) Get(ctx context.Context, key string) ([]byte, kv.Version, bool, error) {
	if s.FatalOn[key] {
		return nil, kv.NoVersion, false, kv.ErrFatal
	}
	if s.consumeTransient(key) {
		return nil, kv.NoVersion, false, kv.ErrTransient
	}
	return s.base.Get(ctx, key)
}

func (s *Scripted) Insert(ctx context.Context, key string, value []byte) (kv.Version, error) {
	if s.FatalOn[key] {
		return kv.NoVersion, kv.ErrFatal
	}
	if s.consumeTransient(key) {
		return kv.NoVersion, kv.ErrTransient
	}
	return s.base.Insert(ctx, key, value)
}

func (s *Scripted) Replace(ctx context.Context, key string, value []byte, verExpected kv.Version) (kv.Version, error) {
	if s.FatalOn[key] {
		return kv.NoVersion, kv.ErrFatal
	}
	if s.AlwaysCasMismatch[key] {
		return kv.NoVersion, kv.ErrCasMismatch
	}
	if s.consumeTransient(key) {
		return kv.NoVersion, kv.ErrTransient
	}
	return s.base.Replace(ctx, key, value, verExpected)
}

func (s *Scripted) Remove(ctx context.Context, key string) error {
	if s.FatalOn[key] {
		return kv.ErrFatal
	}
	if s.consumeTransient(key) {
		return kv.ErrTransient
	}
	return s.base.Remove(ctx, key)
}
