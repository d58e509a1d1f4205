// Package bookmark maintains the signed-in user's saved story set.
package bookmark

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/avelichko/storycircle/internal/errs"
	"github.com/avelichko/storycircle/internal/storage"
)

// Store holds the per-user bookmark sequence, persisted under a user-scoped
// key independently of the shared community blob. Writes happen only after
// the load phase for the current user has completed.
type Store struct {
	mu     sync.Mutex
	blobs  storage.Store
	log    *zap.Logger
	uid    string
	ids    []string
	loaded bool
}

// New constructs an empty, signed-out bookmark store.
func New(blobs storage.Store, log *zap.Logger) *Store {
	return &Store{blobs: blobs, log: log}
}

func key(uid string) string { return "bookmarks_" + uid }

// LoadFor replaces the in-memory set with the persisted set for uid.
// A missing key or malformed blob yields an empty set.
func (s *Store) LoadFor(ctx context.Context, uid string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.uid = uid
	s.ids = nil
	s.loaded = false

	b, err := s.blobs.Get(ctx, key(uid))
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			s.log.Warn("load bookmarks", zap.String("uid", uid), zap.Error(err))
		}
		s.loaded = true
		return
	}

	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		s.log.Warn("parse bookmarks", zap.String("uid", uid), zap.Error(err))
		s.loaded = true
		return
	}
	s.ids = ids
	s.loaded = true
}

// Clear drops the in-memory set on sign-out. The persisted key is left in
// place so the next sign-in restores it.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uid, s.ids, s.loaded = "", nil, false
}

// Toggle flips membership of id and persists the result. It reports the new
// membership state; with no loaded user it is a no-op reporting false.
func (s *Store) Toggle(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded || s.uid == "" {
		return false
	}

	member := false
	out := s.ids[:0:0]
	for _, v := range s.ids {
		if v == id {
			member = true
			continue
		}
		out = append(out, v)
	}
	if !member {
		out = append(out, id)
	}
	s.ids = out
	s.save(ctx)
	return !member
}

// List returns a copy of the current set, in insertion order.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids...)
}

// Contains reports exact membership of id.
func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// save persists the set; failures are logged and never propagate so the
// shared blob path stays unaffected. Called with mu held.
func (s *Store) save(ctx context.Context) {
	ids := s.ids
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		s.log.Error("marshal bookmarks", zap.Error(err))
		return
	}
	if err := s.blobs.Set(ctx, key(s.uid), b); err != nil {
		s.log.Error("save bookmarks", zap.String("uid", s.uid), zap.Error(err))
	}
}
