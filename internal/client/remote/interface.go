// Package remote abstracts push/pull of records to and from the cloud
// mirror, keyed by user and collection.
package remote

import (
	"context"
	"time"
)

// Record is the wire shape of one mirrored document. Fields round-trips the
// local entity shape; UpdatedAt drives last-writer-wins on pull.
type Record struct {
	ID        string         `json:"id"`
	Fields    map[string]any `json:"fields"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Client is the boundary contract to the mirror store. Implementations must
// make Upsert idempotent under retry: applying the same upsert twice yields
// the same stored state.
//
// Failures map onto the common sentinels: common.ErrorUnauthorized,
// common.ErrorNotFound, common.ErrorRateLimited and common.ErrorUnavailable
// (the transient one).
type Client interface {
	Upsert(ctx context.Context, userID, collection string, rec Record) error
	List(ctx context.Context, userID, collection string) ([]Record, error)
	Delete(ctx context.Context, userID, collection, recordID string) error
}

// TokenSource provides the bearer token attached to every mirror call.
// *session.Manager satisfies this.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}
