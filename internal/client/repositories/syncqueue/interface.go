package syncqueue

import (
	"context"

	"github.com/weathermood/weathermood/internal/client/models"
)

// Repository is the durability aid for mutations that could not be mirrored
// immediately (deletes issued offline, mostly). Entries are consumed by the
// reconciliation engine in creation order.
type Repository interface {
	// Enqueue stores a new entry and fills in its id.
	Enqueue(ctx context.Context, e *models.SyncQueueEntry) error

	// Pending returns the user's unprocessed entries, oldest first.
	Pending(ctx context.Context, userID string) ([]models.SyncQueueEntry, error)

	// MarkDone marks an entry as processed.
	MarkDone(ctx context.Context, id int64) error

	// IncrementRetry bumps an entry's retry counter after a failed attempt.
	IncrementRetry(ctx context.Context, id int64) error
}
