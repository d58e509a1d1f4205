package community

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/avelichko/storycircle/internal/bookmark"
	"github.com/avelichko/storycircle/internal/errs"
	"github.com/avelichko/storycircle/internal/identity"
	"github.com/avelichko/storycircle/internal/model"
	"github.com/avelichko/storycircle/internal/profile"
	"github.com/avelichko/storycircle/internal/rating"
)

// maxInlineImageBytes caps profile images converted to data URIs.
const maxInlineImageBytes = 2 << 20

// StoryInput is the caller-supplied part of a new story. Identity, status
// and derived fields are filled in by AddStory.
type StoryInput struct {
	Title            string
	Category         string
	ShortDescription string
	Content          string
	Summary          string
	Tags             []string
	FileName         string
}

// Service is the public operation surface. It reads the current identity
// from the adapter, validates it, and mutates the stores; it is the single
// writer path for all community state.
type Service struct {
	provider  identity.Provider
	session   *identity.Adapter
	store     *Store
	bookmarks *bookmark.Store
	profiles  *profile.Store
	log       *zap.Logger
}

// NewService wires the facade over its stores.
func NewService(provider identity.Provider, session *identity.Adapter, store *Store,
	bookmarks *bookmark.Store, profiles *profile.Store, log *zap.Logger) *Service {
	return &Service{
		provider:  provider,
		session:   session,
		store:     store,
		bookmarks: bookmarks,
		profiles:  profiles,
		log:       log,
	}
}

// Login delegates to the identity provider; failures propagate to the caller.
func (s *Service) Login(ctx context.Context, email, password string) error {
	return s.provider.Login(ctx, email, password)
}

// Signup delegates to the identity provider.
func (s *Service) Signup(ctx context.Context, email, password string) error {
	return s.provider.Signup(ctx, email, password)
}

// Logout ends the session; the adapter clears the derived user and bookmarks.
func (s *Service) Logout(ctx context.Context) error {
	return s.provider.Logout(ctx)
}

// requireUser is the single authorization guard for mutators that must be
// silent no-ops when signed out.
func (s *Service) requireUser(op string) (model.User, bool) {
	u, ok := s.session.Current()
	if !ok {
		s.log.Warn("not signed in", zap.String("op", op))
	}
	return u, ok
}

// AddStory appends a new story authored by the current user with a fresh
// unique id, pending-review status and a generated placeholder image.
func (s *Service) AddStory(ctx context.Context, in StoryInput) (model.Story, error) {
	u, ok := s.session.Current()
	if !ok {
		return model.Story{}, errs.ErrUnauthenticated
	}

	id, err := uuid.NewV4()
	if err != nil {
		return model.Story{}, err
	}
	storyID := "story-" + id.String()

	st := model.Story{
		ID:               storyID,
		Title:            in.Title,
		Category:         in.Category,
		ShortDescription: in.ShortDescription,
		Content:          in.Content,
		Summary:          in.Summary,
		Tags:             append([]string(nil), in.Tags...),
		FileName:         in.FileName,
		AuthorID:         u.ID,
		AuthorName:       u.DisplayName,
		Status:           model.StatusPendingReview,
		ImageURL:         "https://picsum.photos/seed/" + storyID + "/400/300",
	}
	s.store.AppendStory(ctx, st)
	return st, nil
}

// UpdateStory merges the given fields into the matching story; a missing id
// is a no-op. No authorization check happens at this layer: moderation
// callers are responsible for their own gating.
func (s *Service) UpdateStory(ctx context.Context, storyID string, upd StoryUpdate) {
	if !s.store.MergeStory(ctx, storyID, upd) {
		s.log.Debug("update story: no match", zap.String("story", storyID))
	}
}

// AddComment appends a comment by the current user; signed out it only logs.
func (s *Service) AddComment(ctx context.Context, resourceID, text string) {
	u, ok := s.requireUser("comment")
	if !ok {
		return
	}
	id, err := uuid.NewV4()
	if err != nil {
		s.log.Error("generate comment id", zap.Error(err))
		return
	}
	s.store.AppendComment(ctx, model.Comment{
		ID:             "comment-" + id.String(),
		ResourceID:     resourceID,
		AuthorID:       u.ID,
		AuthorName:     u.DisplayName,
		AuthorImageURL: u.AvatarURL,
		Text:           text,
		Timestamp:      time.Now().UnixMilli(),
	})
}

// ToggleLike flips the current user's like on the resource.
func (s *Service) ToggleLike(ctx context.Context, resourceID string) {
	u, ok := s.requireUser("like")
	if !ok {
		return
	}
	s.store.ToggleLike(ctx, resourceID, u.ID)
}

// ToggleBookmark flips the resource in the current user's bookmark set.
func (s *Service) ToggleBookmark(ctx context.Context, resourceID string) {
	if _, ok := s.requireUser("bookmark"); !ok {
		return
	}
	s.bookmarks.Toggle(ctx, resourceID)
}

// ReportContent files a report by the current user. A repeat report for the
// same resource is a logged no-op, not an error.
func (s *Service) ReportContent(ctx context.Context, resourceID, resourceTitle string) {
	u, ok := s.requireUser("report")
	if !ok {
		return
	}
	r := model.Report{
		ResourceID:    resourceID,
		ReporterID:    u.ID,
		Timestamp:     time.Now().UnixMilli(),
		ResourceTitle: resourceTitle,
	}
	if !s.store.AddReport(ctx, r) {
		s.log.Info("already reported",
			zap.String("resource", resourceID),
			zap.String("uid", u.ID),
		)
	}
}

// RateEmpathy records the current user's 1..5 rating for the resource,
// replacing any previous rating in place. Out-of-range values are logged
// no-ops.
func (s *Service) RateEmpathy(ctx context.Context, resourceID string, value int) {
	u, ok := s.requireUser("rate")
	if !ok {
		return
	}
	if value < 1 || value > 5 {
		s.log.Warn("rating out of range",
			zap.Int("rating", value),
			zap.Error(errs.ErrInvalidRating),
		)
		return
	}
	s.store.SetRating(ctx, resourceID, u.ID, value)
}

// UpdateUserProfile stores a new display name and optional avatar image for
// the current user. On success the provider and the in-memory user agree on
// the display name.
func (s *Service) UpdateUserProfile(ctx context.Context, name string, image []byte, imageMIME string) error {
	u, ok := s.session.Current()
	if !ok {
		return errs.ErrUnauthenticated
	}

	imageURL := u.AvatarURL
	if len(image) > 0 {
		uri, err := encodeDataURI(image, imageMIME)
		if err != nil {
			return fmt.Errorf("encode image: %w", err)
		}
		imageURL = uri
	}

	if err := s.provider.UpdateDisplayName(ctx, name); err != nil {
		return fmt.Errorf("update provider name: %w", err)
	}

	u.DisplayName = name
	u.AvatarURL = imageURL
	s.session.SetCurrent(u)

	if err := s.profiles.Save(ctx, u.ID, model.Profile{Name: name, ImageURL: imageURL}); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// encodeDataURI converts an image payload to a persistable inline data URI.
func encodeDataURI(data []byte, mime string) (string, error) {
	if len(data) > maxInlineImageBytes {
		return "", fmt.Errorf("image too large: %d bytes", len(data))
	}
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// CurrentUser returns the signed-in user, if any.
func (s *Service) CurrentUser() (model.User, bool) { return s.session.Current() }

// Stories returns a copy of the story list.
func (s *Service) Stories() []model.Story { return s.store.Stories() }

// StoryByID returns one story by id.
func (s *Service) StoryByID(id string) (model.Story, bool) { return s.store.StoryByID(id) }

// Comments returns a copy of the comment list.
func (s *Service) Comments() []model.Comment { return s.store.Comments() }

// CommentsFor returns the comments attached to a resource.
func (s *Service) CommentsFor(resourceID string) []model.Comment {
	return s.store.CommentsFor(resourceID)
}

// Likes returns a copy of the like sets.
func (s *Service) Likes() map[string][]string { return s.store.Likes() }

// Reports returns a copy of the report list.
func (s *Service) Reports() []model.Report { return s.store.Reports() }

// Bookmarks returns the current user's bookmark list.
func (s *Service) Bookmarks() []string { return s.bookmarks.List() }

// EmpathyRatings returns a copy of the rating sequences.
func (s *Service) EmpathyRatings() map[string][]model.EmpathyRating {
	return s.store.EmpathyRatings()
}

// RatingSummary derives the average, count and the current user's own rating
// for a resource.
func (s *Service) RatingSummary(resourceID string) rating.Summary {
	uid := ""
	if u, ok := s.session.Current(); ok {
		uid = u.ID
	}
	return rating.Summarize(s.store.RatingsFor(resourceID), uid)
}
