package records

import (
	"context"

	"github.com/weathermood/weathermood/internal/server/models"
)

// Repository describes operations on collection documents. All writes are
// idempotent: an upsert with the same key replaces the row, a delete of a
// missing row is a no-op at the storage level (callers decide whether to
// report it).
type Repository interface {
	// Upsert inserts or replaces the record identified by
	// (user_id, collection, record_id).
	Upsert(ctx context.Context, rec *models.Record) error

	// List returns every record in the user's collection, most recently
	// updated first.
	List(ctx context.Context, userID, collection string) ([]models.Record, error)

	// Get returns one record, or common.ErrorNotFound.
	Get(ctx context.Context, userID, collection, recordID string) (*models.Record, error)

	// Delete removes a record. Deleting a missing record yields
	// common.ErrorNotFound so the API can report 404.
	Delete(ctx context.Context, userID, collection, recordID string) error
}
