package community

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avelichko/storycircle/internal/bookmark"
	"github.com/avelichko/storycircle/internal/errs"
	"github.com/avelichko/storycircle/internal/identity"
	"github.com/avelichko/storycircle/internal/identity/local"
	"github.com/avelichko/storycircle/internal/model"
	"github.com/avelichko/storycircle/internal/profile"
	filestore "github.com/avelichko/storycircle/internal/storage/file"
)

// newTestService wires the full stack over one temp directory so sign-out and
// sign-in flows behave as in the real application.
func newTestService(t *testing.T) *Service {
	t.Helper()
	blobs, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	log := zap.NewNop()
	profiles := profile.New(blobs, log)
	bookmarks := bookmark.New(blobs, log)
	provider := local.New(blobs, []byte("test-key"), time.Hour, log)
	session := identity.NewAdapter(provider, profiles, bookmarks, log)
	store := NewStore(blobs, log)
	store.Load(context.Background())
	return NewService(provider, session, store, bookmarks, profiles, log)
}

func signIn(t *testing.T, svc *Service, email string) model.User {
	t.Helper()
	require.NoError(t, svc.Signup(context.Background(), email, "secret-pass"))
	u, ok := svc.CurrentUser()
	require.True(t, ok)
	return u
}

func TestService_SignedOutMutationsAreNoOps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.AddStory(ctx, StoryInput{Title: "x"})
	require.ErrorIs(t, err, errs.ErrUnauthenticated)

	svc.AddComment(ctx, "story-1", "hello")
	svc.ToggleLike(ctx, "story-1")
	svc.ToggleBookmark(ctx, "story-1")
	svc.ReportContent(ctx, "story-1", "x")
	svc.RateEmpathy(ctx, "story-1", 3)

	require.Empty(t, svc.Stories())
	require.Empty(t, svc.Comments())
	require.Empty(t, svc.Likes())
	require.Empty(t, svc.Bookmarks())
	require.Empty(t, svc.Reports())
	require.Empty(t, svc.EmpathyRatings())

	require.ErrorIs(t, svc.UpdateUserProfile(ctx, "Name", nil, ""), errs.ErrUnauthenticated)
}

func TestService_AddStoryAndRate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)
	u := signIn(t, svc, "ann@example.com")

	st, err := svc.AddStory(ctx, StoryInput{
		Title:    "A Quiet Morning",
		Category: "life",
		Content:  "body",
		Tags:     []string{"calm"},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(st.ID, "story-"))
	require.Equal(t, u.ID, st.AuthorID)
	require.Equal(t, u.DisplayName, st.AuthorName)
	require.Equal(t, model.StatusPendingReview, st.Status)
	require.Equal(t, "https://picsum.photos/seed/"+st.ID+"/400/300", st.ImageURL)

	svc.RateEmpathy(ctx, st.ID, 4)
	sum := svc.RatingSummary(st.ID)
	require.Equal(t, 4.0, sum.Average)
	require.Equal(t, 1, sum.Count)
	require.True(t, sum.Rated)
	require.Equal(t, 4, sum.Own)

	// Re-rating replaces the entry; the count stays at one.
	svc.RateEmpathy(ctx, st.ID, 2)
	sum = svc.RatingSummary(st.ID)
	require.Equal(t, 2.0, sum.Average)
	require.Equal(t, 1, sum.Count)
	require.Equal(t, 2, sum.Own)
}

func TestService_RateEmpathyRejectsOutOfRange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)
	signIn(t, svc, "ann@example.com")

	svc.RateEmpathy(ctx, "story-1", 0)
	svc.RateEmpathy(ctx, "story-1", 6)
	require.Empty(t, svc.EmpathyRatings())

	svc.RateEmpathy(ctx, "story-1", 5)
	require.Len(t, svc.EmpathyRatings()["story-1"], 1)
}

func TestService_ToggleLikeIsIdempotentPairwise(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)
	u := signIn(t, svc, "ann@example.com")

	svc.ToggleLike(ctx, "story-1")
	require.Equal(t, []string{u.ID}, svc.Likes()["story-1"])
	svc.ToggleLike(ctx, "story-1")
	require.Empty(t, svc.Likes()["story-1"])
}

func TestService_ReportContentDeduplicates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)
	signIn(t, svc, "ann@example.com")

	svc.ReportContent(ctx, "story-1", "A Quiet Morning")
	svc.ReportContent(ctx, "story-1", "A Quiet Morning")
	require.Len(t, svc.Reports(), 1)
}

func TestService_AddCommentSnapshotsAuthor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)
	u := signIn(t, svc, "ann@example.com")

	svc.AddComment(ctx, "story-1", "thanks for sharing")
	cs := svc.CommentsFor("story-1")
	require.Len(t, cs, 1)
	require.True(t, strings.HasPrefix(cs[0].ID, "comment-"))
	require.Equal(t, u.ID, cs[0].AuthorID)
	require.Equal(t, u.DisplayName, cs[0].AuthorName)
	require.Equal(t, u.AvatarURL, cs[0].AuthorImageURL)
	require.NotZero(t, cs[0].Timestamp)
}

func TestService_BookmarksSurviveSignOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)
	signIn(t, svc, "ann@example.com")

	svc.ToggleBookmark(ctx, "story-1")
	require.Equal(t, []string{"story-1"}, svc.Bookmarks())

	require.NoError(t, svc.Logout(ctx))
	require.Empty(t, svc.Bookmarks())

	require.NoError(t, svc.Login(ctx, "ann@example.com", "secret-pass"))
	require.Equal(t, []string{"story-1"}, svc.Bookmarks())
}

func TestService_UpdateUserProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)
	signIn(t, svc, "ann@example.com")

	require.NoError(t, svc.UpdateUserProfile(ctx, "Annie", []byte{0xff, 0xd8}, "image/jpeg"))
	u, ok := svc.CurrentUser()
	require.True(t, ok)
	require.Equal(t, "Annie", u.DisplayName)
	require.True(t, strings.HasPrefix(u.AvatarURL, "data:image/jpeg;base64,"))

	// The override survives a fresh sign-in.
	require.NoError(t, svc.Logout(ctx))
	require.NoError(t, svc.Login(ctx, "ann@example.com", "secret-pass"))
	u, _ = svc.CurrentUser()
	require.Equal(t, "Annie", u.DisplayName)
}

func TestService_UpdateUserProfileRejectsHugeImage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)
	signIn(t, svc, "ann@example.com")

	big := bytes.Repeat([]byte{1}, maxInlineImageBytes+1)
	require.Error(t, svc.UpdateUserProfile(ctx, "Annie", big, "image/png"))
}

func TestService_UpdateStory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)
	signIn(t, svc, "ann@example.com")

	st, err := svc.AddStory(ctx, StoryInput{Title: "Draft"})
	require.NoError(t, err)

	status := model.StatusPublished
	svc.UpdateStory(ctx, st.ID, StoryUpdate{Status: &status})
	got, ok := svc.StoryByID(st.ID)
	require.True(t, ok)
	require.Equal(t, model.StatusPublished, got.Status)

	// Unknown ids are silently ignored.
	svc.UpdateStory(ctx, "story-missing", StoryUpdate{Status: &status})
}
