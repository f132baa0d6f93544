package weather

import (
	"context"
	"time"

	"github.com/weathermood/weathermood/internal/logging"
)

// Service combines the live provider with the cache: live fetches write the
// cache opportunistically, and any provider failure degrades to the cached
// snapshot when one exists.
type Service struct {
	provider     Provider
	cache        *Cache
	log          logging.Logger
	ttl          time.Duration
	fetchTimeout time.Duration
}

func NewService(provider Provider, cache *Cache, log logging.Logger, ttl, fetchTimeout time.Duration) *Service {
	if log == nil {
		log = logging.NewDiscardLogger()
	}
	return &Service{provider: provider, cache: cache, log: log, ttl: ttl, fetchTimeout: fetchTimeout}
}

// Current returns the current weather for cityKey, live if possible. On a
// live failure it falls back to the cache (possibly stale); an unknown key
// with no live result surfaces the provider's error.
func (s *Service) Current(ctx context.Context, cityKey string) (*CachedWeather, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	snap, fetchErr := s.provider.FetchCurrent(fetchCtx, cityKey)
	if fetchErr == nil {
		if err := s.cache.Put(ctx, *snap, s.ttl); err != nil {
			s.log.Warn(ctx, "failed to cache weather", "city", cityKey, "error", err)
		}
		return &CachedWeather{Snapshot: *snap, Freshness: Fresh, FetchedAt: s.cache.now().UTC()}, nil
	}

	s.log.Warn(ctx, "live weather fetch failed, trying cache", "city", cityKey, "error", fetchErr)

	cached, err := s.cache.Get(ctx, cityKey)
	if err != nil {
		return nil, fetchErr
	}
	return cached, nil
}

// RefreshAll re-fetches every cached location and rewrites the cache.
// Individual failures are logged and do not stop the refresh. Returns the
// number of entries refreshed.
func (s *Service) RefreshAll(ctx context.Context) (int, error) {
	keys, err := s.cache.Keys(ctx)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, key := range keys {
		fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		snap, err := s.provider.FetchCurrent(fetchCtx, key)
		cancel()
		if err != nil {
			s.log.Warn(ctx, "weather refresh failed", "city", key, "error", err)
			continue
		}
		if err := s.cache.Put(ctx, *snap, s.ttl); err != nil {
			s.log.Warn(ctx, "failed to cache weather", "city", key, "error", err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}
