package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/avelichko/storycircle/internal/errs"
)

// Store keeps blobs in the blobs(key, value) table.
type Store struct{ db *DB }

// NewStore constructs a blob store over the given pool.
func NewStore(db *DB) *Store { return &Store{db: db} }

// Get returns the blob stored under key, or errs.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM blobs WHERE key=$1`
	var b []byte
	if err := s.db.Pool.QueryRow(ctx, q, key).Scan(&b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// Set upserts the blob under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO blobs (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value=$2, updated_at=now()`
	_, err := s.db.Pool.Exec(ctx, q, key, value)
	return err
}

// Remove deletes the blob. Removing an absent key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	const q = `DELETE FROM blobs WHERE key=$1`
	_, err := s.db.Pool.Exec(ctx, q, key)
	return err
}
