package memstore

import (
	"context"
	"testing"

	"github.com/arcadia-games/txcore/internal/kv"
	"github.com/stretchr/testify/require"
)

func TestInsertThenGet(t *testing.T) {
	var ctx = context.Background()
	var s = New()

	ver, err := s.Insert(ctx, "k1", []byte("v1"))
	require.NoError(t, err)
	require.Equal(t, kv.Version(1), ver)

	val, ver2, exists, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, ver, ver2)
	require.Equal(t, []byte("v1"), val)
}

func TestInsertTwiceFails(t *testing.T) {
	var ctx = context.Background()
	var s = New()

	_, err := s.Insert(ctx, "k1", []byte("v1"))
	require.NoError(t, err)

	_, err = s.Insert(ctx, "k1", []byte("v2"))
	require.ErrorIs(t, err, kv.ErrAlreadyExists)
}

func TestReplaceCasMismatch(t *testing.T) {
	var ctx = context.Background()
	var s = New()

	ver, _ := s.Insert(ctx, "k1", []byte("v1"))
	_, err := s.Replace(ctx, "k1", []byte("v2"), ver+1)
	require.ErrorIs(t, err, kv.ErrCasMismatch)
}

func TestReplaceNotFound(t *testing.T) {
	var ctx = context.Background()
	var s = New()

	_, err := s.Replace(ctx, "missing", []byte("v"), 1)
	require.ErrorIs(t, err, kv.ErrNotFound)
}

func TestScriptedAlwaysCasMismatch(t *testing.T) {
	var ctx = context.Background()
	var s = NewScripted(New())

	_, err := s.Insert(ctx, "R", []byte("v0"))
	require.NoError(t, err)

	s.AlwaysCasMismatch["R"] = true
	_, err = s.Replace(ctx, "R", []byte("v1"), 1)
	require.ErrorIs(t, err, kv.ErrCasMismatch)
}

func TestScriptedTransientBudget(t *testing.T) {
	var ctx = context.Background()
	var s = NewScripted(New())
	s.SetTransientBudget("k1", 2)

	_, err := s.Insert(ctx, "k1", []byte("v"))
	require.ErrorIs(t, err, kv.ErrTransient)
	_, err = s.Insert(ctx, "k1", []byte("v"))
	require.ErrorIs(t, err, kv.ErrTransient)
	_, err = s.Insert(ctx, "k1", []byte("v"))
	require.NoError(t, err)
}
