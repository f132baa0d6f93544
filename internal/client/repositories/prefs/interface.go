package prefs

import "context"

// Repository is a small key/value store for device-local settings and the
// persisted identity. The entries live in the same SQLite database as the
// data so they share its transactional discipline.
type Repository interface {
	// Get returns the value for key, or common.ErrorNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores the value, replacing any previous one.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
