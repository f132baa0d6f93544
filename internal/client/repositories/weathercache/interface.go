package weathercache

import (
	"context"

	"github.com/weathermood/weathermood/internal/client/models"
)

// Repository stores the single current weather snapshot per city key.
// Entries are only ever replaced by a newer fetch, never evicted.
type Repository interface {
	// Upsert replaces any prior entry for the same city key.
	Upsert(ctx context.Context, e *models.WeatherCacheEntry) error

	// Get returns the entry for the city key, or common.ErrorNotFound.
	Get(ctx context.Context, cityKey string) (*models.WeatherCacheEntry, error)

	// All returns every cached entry (used by the background refresh).
	All(ctx context.Context) ([]models.WeatherCacheEntry, error)
}
