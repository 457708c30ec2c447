package sqlitestore

import (
	"context"
	"testing"

	"github.com/arcadia-games/txcore/internal/kv"
	"github.com/stretchr/testify/require"
)

func TestInsertGetReplace(t *testing.T) {
	var ctx = context.Background()
	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	ver, err := s.Insert(ctx, "k1", []byte("v1"))
	require.NoError(t, err)
	require.Equal(t, kv.Version(1), ver)

	val, ver2, exists, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, ver, ver2)
	require.Equal(t, []byte("v1"), val)

	ver3, err := s.Replace(ctx, "k1", []byte("v2"), ver2)
	require.NoError(t, err)
	require.Equal(t, kv.Version(2), ver3)

	_, err = s.Replace(ctx, "k1", []byte("v3"), ver2)
	require.ErrorIs(t, err, kv.ErrCasMismatch)
}

func TestInsertDuplicate(t *testing.T) {
	var ctx = context.Background()
	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Insert(ctx, "k1", []byte("v1"))
	require.NoError(t, err)
	_, err = s.Insert(ctx, "k1", []byte("v2"))
	require.ErrorIs(t, err, kv.ErrAlreadyExists)
}

func TestRemoveNotFound(t *testing.T) {
	var ctx = context.Background()
	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	err = s.Remove(ctx, "missing")
	require.ErrorIs(t, err, kv.ErrNotFound)
}
