package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/storycircle/internal/errs"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := New("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNew_BadURL(t *testing.T) {
	t.Parallel()
	_, err := New("not-a-url")
	require.Error(t, err)
}

func TestStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	_, err := s.Get(ctx, "community_data")
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, s.Set(ctx, "community_data", []byte(`{"likes":{}}`)))
	b, err := s.Get(ctx, "community_data")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"likes":{}}`), b)

	require.NoError(t, s.Remove(ctx, "community_data"))
	_, err = s.Get(ctx, "community_data")
	require.ErrorIs(t, err, errs.ErrNotFound)

	// removing a missing key is not an error
	require.NoError(t, s.Remove(ctx, "community_data"))
}

func TestStore_KeysAreScoped(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	require.NoError(t, s.Set(ctx, "bookmarks_u1", []byte(`["s1"]`)))
	require.NoError(t, s.Set(ctx, "bookmarks_u2", []byte(`["s2"]`)))

	b, err := s.Get(ctx, "bookmarks_u1")
	require.NoError(t, err)
	require.Equal(t, []byte(`["s1"]`), b)
}
