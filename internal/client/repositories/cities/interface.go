package cities

import (
	"context"
	"time"

	"github.com/weathermood/weathermood/internal/client/models"
)

// Repository describes CRUD and query operations for FavoriteCity records.
// Implementations are typically backed by the local SQLite database.
type Repository interface {
	// Upsert inserts a city or, on (user_id, city_key) conflict, updates the
	// existing row in place.
	Upsert(ctx context.Context, city *models.FavoriteCity) error

	// ListByUser returns the user's cities, default city first, then most
	// recently updated.
	ListByUser(ctx context.Context, userID string) ([]models.FavoriteCity, error)

	// GetByKey returns the city for (userID, cityKey), or common.ErrorNotFound.
	GetByKey(ctx context.Context, userID, cityKey string) (*models.FavoriteCity, error)

	// Pending returns the user's cities awaiting push (sync_status = 0).
	Pending(ctx context.Context, userID string) ([]models.FavoriteCity, error)

	// MarkSynced advances a city's sync status to done. The transition is
	// one-way; rows already marked are left untouched.
	MarkSynced(ctx context.Context, id int64) error

	// Delete removes a city by local id (hard delete).
	Delete(ctx context.Context, id int64) error

	// ClearDefault drops the default flag from all of the user's cities,
	// marking the changed rows pending with the given update time.
	ClearDefault(ctx context.Context, userID string, updatedAt time.Time) error

	// SetDefault marks one city as the default, marking it pending with the
	// given update time.
	SetDefault(ctx context.Context, id int64, updatedAt time.Time) error

	// ReassignUser moves all rows from one user id to another and resets
	// their sync status to pending so the next sync pushes them.
	ReassignUser(ctx context.Context, fromUserID, toUserID string) error
}
