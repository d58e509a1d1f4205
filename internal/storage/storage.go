// Package storage defines the blob store boundary implemented by concrete backends.
package storage

import "context"

// Store is a flat key/value blob store. Implementations must return
// errs.ErrNotFound from Get for absent keys; Remove of an absent key is not
// an error.
type Store interface {
	// Get returns the blob stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores the blob under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes the blob stored under key.
	Remove(ctx context.Context, key string) error
}
