// Package weather implements the live weather provider boundary and the
// TTL cache that backs it when the provider is unreachable.
package weather

import (
	"context"

	"github.com/weathermood/weathermood/internal/client/models"
)

// Provider fetches current weather from a live source. Failures surface as
// the common sentinels (unauthorized, not found, rate limited, unavailable)
// so the caller can map them to cache-fallback behavior.
type Provider interface {
	FetchCurrent(ctx context.Context, cityKey string) (*models.WeatherSnapshot, error)
}
