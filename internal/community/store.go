// Package community holds the shared content pool and the facade that
// mutates it.
package community

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/avelichko/storycircle/internal/errs"
	"github.com/avelichko/storycircle/internal/model"
	"github.com/avelichko/storycircle/internal/storage"
)

// blobKey is the storage key of the shared community blob.
const blobKey = "community_data"

// Store is the in-memory pool of stories, comments, likes, reports and
// empathy ratings, backed by a single persisted blob. The facade is its only
// writer; reads return copies.
type Store struct {
	mu    sync.Mutex
	blobs storage.Store
	log   *zap.Logger
	data  model.CommunityData
}

// NewStore constructs an empty store over the given blob store.
func NewStore(blobs storage.Store, log *zap.Logger) *Store {
	return &Store{
		blobs: blobs,
		log:   log,
		data: model.CommunityData{
			Likes:          map[string][]string{},
			EmpathyRatings: map[string][]model.EmpathyRating{},
		},
	}
}

// Load reads the shared blob once at startup. A missing key or malformed
// blob leaves the store empty; neither is fatal.
func (s *Store) Load(ctx context.Context) {
	b, err := s.blobs.Get(ctx, blobKey)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			s.log.Warn("load community data", zap.Error(err))
		}
		return
	}

	var data model.CommunityData
	if err := json.Unmarshal(b, &data); err != nil {
		s.log.Warn("parse community data", zap.Error(err))
		return
	}
	if data.Likes == nil {
		data.Likes = map[string][]string{}
	}
	if data.EmpathyRatings == nil {
		data.EmpathyRatings = map[string][]model.EmpathyRating{}
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
}

// save persists the blob. Failures are logged and never propagate so the
// per-user bookmark path stays unaffected. Called with mu held.
func (s *Store) save(ctx context.Context) {
	b, err := json.Marshal(s.data)
	if err != nil {
		s.log.Error("marshal community data", zap.Error(err))
		return
	}
	if err := s.blobs.Set(ctx, blobKey, b); err != nil {
		s.log.Error("save community data", zap.Error(err))
	}
}

// AppendStory adds a new story and persists.
func (s *Store) AppendStory(ctx context.Context, st model.Story) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Stories = append(s.data.Stories, st)
	s.save(ctx)
}

// MergeStory merges non-nil update fields into the story with the given id.
// It reports whether a story matched; the id itself never changes.
func (s *Store) MergeStory(ctx context.Context, id string, upd StoryUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.Stories {
		if s.data.Stories[i].ID != id {
			continue
		}
		upd.apply(&s.data.Stories[i])
		s.save(ctx)
		return true
	}
	return false
}

// AppendComment adds a comment and persists.
func (s *Store) AppendComment(ctx context.Context, c model.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Comments = append(s.data.Comments, c)
	s.save(ctx)
}

// ToggleLike flips userID's membership in the resource's like set and
// persists. Membership is exact; it reports the new state.
func (s *Store) ToggleLike(ctx context.Context, resourceID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.data.Likes[resourceID]
	member := false
	out := cur[:0:0]
	for _, uid := range cur {
		if uid == userID {
			member = true
			continue
		}
		out = append(out, uid)
	}
	if !member {
		out = append(out, userID)
	}
	s.data.Likes[resourceID] = out
	s.save(ctx)
	return !member
}

// AddReport appends the report unless the (resource, reporter) pair already
// reported. It reports whether the report was added.
func (s *Store) AddReport(ctx context.Context, r model.Report) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, have := range s.data.Reports {
		if have.ResourceID == r.ResourceID && have.ReporterID == r.ReporterID {
			return false
		}
	}
	s.data.Reports = append(s.data.Reports, r)
	s.save(ctx)
	return true
}

// SetRating records userID's rating for the resource. An existing entry is
// replaced in place, preserving its position; otherwise the entry is
// appended. The rating value is validated by the facade.
func (s *Store) SetRating(ctx context.Context, resourceID, userID string, rating int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.data.EmpathyRatings[resourceID]
	for i := range cur {
		if cur[i].UserID == userID {
			cur[i].Rating = rating
			s.save(ctx)
			return
		}
	}
	s.data.EmpathyRatings[resourceID] = append(cur, model.EmpathyRating{UserID: userID, Rating: rating})
	s.save(ctx)
}

// Stories returns a copy of the story list.
func (s *Store) Stories() []model.Story {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Story, len(s.data.Stories))
	copy(out, s.data.Stories)
	for i := range out {
		out[i].Tags = append([]string(nil), out[i].Tags...)
	}
	return out
}

// StoryByID returns the story with the given id.
func (s *Store) StoryByID(id string) (model.Story, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.data.Stories {
		if st.ID == id {
			st.Tags = append([]string(nil), st.Tags...)
			return st, true
		}
	}
	return model.Story{}, false
}

// Comments returns a copy of the comment list.
func (s *Store) Comments() []model.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Comment(nil), s.data.Comments...)
}

// CommentsFor returns the comments attached to a resource, in append order.
func (s *Store) CommentsFor(resourceID string) []model.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Comment
	for _, c := range s.data.Comments {
		if c.ResourceID == resourceID {
			out = append(out, c)
		}
	}
	return out
}

// Likes returns a copy of the like sets.
func (s *Store) Likes() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]string, len(s.data.Likes))
	for k, v := range s.data.Likes {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Reports returns a copy of the report list.
func (s *Store) Reports() []model.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Report(nil), s.data.Reports...)
}

// EmpathyRatings returns a copy of the rating sequences.
func (s *Store) EmpathyRatings() map[string][]model.EmpathyRating {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]model.EmpathyRating, len(s.data.EmpathyRatings))
	for k, v := range s.data.EmpathyRatings {
		out[k] = append([]model.EmpathyRating(nil), v...)
	}
	return out
}

// RatingsFor returns a copy of one resource's rating sequence.
func (s *Store) RatingsFor(resourceID string) []model.EmpathyRating {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.EmpathyRating(nil), s.data.EmpathyRatings[resourceID]...)
}

// Snapshot returns a deep copy of every collection.
func (s *Store) Snapshot() model.CommunityData {
	return model.CommunityData{
		Stories:        s.Stories(),
		Comments:       s.Comments(),
		Likes:          s.Likes(),
		Reports:        s.Reports(),
		EmpathyRatings: s.EmpathyRatings(),
	}
}
