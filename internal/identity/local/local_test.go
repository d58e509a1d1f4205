package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avelichko/storycircle/internal/errs"
	"github.com/avelichko/storycircle/internal/identity"
	"github.com/avelichko/storycircle/internal/storage"
	filestore "github.com/avelichko/storycircle/internal/storage/file"
)

func newProvider(t *testing.T) (*Provider, storage.Store) {
	t.Helper()
	blobs, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	return New(blobs, []byte("test-key"), time.Hour, zap.NewNop()), blobs
}

// recorder collects emitted identity events.
type recorder struct {
	events []*identity.ProviderUser
}

func (r *recorder) handle(u *identity.ProviderUser) { r.events = append(r.events, u) }

func TestSignup_EmitsIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p, _ := newProvider(t)

	rec := &recorder{}
	p.Subscribe(rec.handle)

	require.NoError(t, p.Signup(ctx, "ann@example.com", "secret"))
	require.Len(t, rec.events, 1)
	require.NotNil(t, rec.events[0])
	require.Equal(t, "ann@example.com", rec.events[0].Email)
	require.NotEmpty(t, rec.events[0].ID)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p, _ := newProvider(t)

	require.NoError(t, p.Signup(ctx, "ann@example.com", "secret"))
	require.ErrorIs(t, p.Signup(ctx, "ann@example.com", "other"), errs.ErrAlreadyExists)
}

func TestLogin_MasksUserExistence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p, _ := newProvider(t)

	require.NoError(t, p.Signup(ctx, "ann@example.com", "secret"))

	// wrong password and unknown user map to the same sentinel
	require.ErrorIs(t, p.Login(ctx, "ann@example.com", "bad"), errs.ErrUnauthorized)
	require.ErrorIs(t, p.Login(ctx, "nobody@example.com", "secret"), errs.ErrUnauthorized)

	require.NoError(t, p.Login(ctx, "ann@example.com", "secret"))
}

func TestLogout_EmitsNil(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p, _ := newProvider(t)

	rec := &recorder{}
	p.Subscribe(rec.handle)

	require.NoError(t, p.Signup(ctx, "ann@example.com", "secret"))
	require.NoError(t, p.Logout(ctx))

	require.Len(t, rec.events, 2)
	require.Nil(t, rec.events[1])

	// logging out twice is fine
	require.NoError(t, p.Logout(ctx))
}

func TestRestore_ReplaysPersistedSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	blobs, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	p1 := New(blobs, []byte("test-key"), time.Hour, zap.NewNop())
	require.NoError(t, p1.Signup(ctx, "ann@example.com", "secret"))

	// a fresh provider over the same storage restores the session
	p2 := New(blobs, []byte("test-key"), time.Hour, zap.NewNop())
	rec := &recorder{}
	p2.Subscribe(rec.handle)
	p2.Restore(ctx)

	require.Len(t, rec.events, 1)
	require.NotNil(t, rec.events[0])
	require.Equal(t, "ann@example.com", rec.events[0].Email)
}

func TestRestore_WrongKeySignsOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	blobs, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	p1 := New(blobs, []byte("test-key"), time.Hour, zap.NewNop())
	require.NoError(t, p1.Signup(ctx, "ann@example.com", "secret"))

	p2 := New(blobs, []byte("other-key"), time.Hour, zap.NewNop())
	rec := &recorder{}
	p2.Subscribe(rec.handle)
	p2.Restore(ctx)

	require.Len(t, rec.events, 1)
	require.Nil(t, rec.events[0])
}

func TestRestore_NoSessionSignsOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p, _ := newProvider(t)

	rec := &recorder{}
	p.Subscribe(rec.handle)
	p.Restore(ctx)

	require.Len(t, rec.events, 1)
	require.Nil(t, rec.events[0])
}

func TestUpdateDisplayName(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p, _ := newProvider(t)

	require.ErrorIs(t, p.UpdateDisplayName(ctx, "Ann"), errs.ErrUnauthenticated)

	require.NoError(t, p.Signup(ctx, "ann@example.com", "secret"))
	require.NoError(t, p.UpdateDisplayName(ctx, "Ann"))

	// the stored name survives a new session
	rec := &recorder{}
	p.Subscribe(rec.handle)
	require.NoError(t, p.Login(ctx, "ann@example.com", "secret"))
	require.Equal(t, "Ann", rec.events[0].DisplayName)
}
