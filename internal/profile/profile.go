// Package profile persists per-user display overrides.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/avelichko/storycircle/internal/errs"
	"github.com/avelichko/storycircle/internal/model"
	"github.com/avelichko/storycircle/internal/storage"
)

// Store reads and writes profile overrides under user-scoped keys.
type Store struct {
	blobs storage.Store
	log   *zap.Logger
}

// New constructs a profile store over the given blob store.
func New(blobs storage.Store, log *zap.Logger) *Store {
	return &Store{blobs: blobs, log: log}
}

func key(uid string) string { return "profile_" + uid }

// Load returns the stored override for uid. Absent keys and malformed data
// both surface as errs.ErrNotFound so callers fall back to provider defaults;
// malformed data is additionally logged.
func (s *Store) Load(ctx context.Context, uid string) (model.Profile, error) {
	b, err := s.blobs.Get(ctx, key(uid))
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			s.log.Warn("load profile", zap.String("uid", uid), zap.Error(err))
		}
		return model.Profile{}, errs.ErrNotFound
	}
	var p model.Profile
	if err := json.Unmarshal(b, &p); err != nil {
		s.log.Warn("parse stored profile", zap.String("uid", uid), zap.Error(err))
		return model.Profile{}, errs.ErrNotFound
	}
	return p, nil
}

// Save persists the override under the user-scoped key.
func (s *Store) Save(ctx context.Context, uid string, p model.Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return s.blobs.Set(ctx, key(uid), b)
}
