package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/weathermood/weathermood/internal/client/models"
	"github.com/weathermood/weathermood/internal/client/repositories/weathercache"
	"github.com/weathermood/weathermood/internal/common"
)

// Freshness classifies a cache read relative to the entry's TTL.
type Freshness int

const (
	Fresh Freshness = iota
	Stale
)

func (f Freshness) String() string {
	if f == Stale {
		return "stale"
	}
	return "fresh"
}

// CachedWeather is a cache read annotated with its age since fetch, so the
// caller can communicate staleness down the pipeline. Staleness is
// informational only; callers decide whether to still display the result.
type CachedWeather struct {
	Snapshot  models.WeatherSnapshot
	Freshness Freshness
	Age       time.Duration
	FetchedAt time.Time
}

// Cache is the TTL-bounded cache of last-known weather per city key. A Get
// never consults the live provider; it is a pure local lookup.
type Cache struct {
	repo weathercache.Repository
	now  func() time.Time
}

func NewCache(repo weathercache.Repository) *Cache {
	return &Cache{repo: repo, now: time.Now}
}

// WithClock overrides the cache's clock. Tests only.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Put replaces any prior entry for the snapshot's city key.
func (c *Cache) Put(ctx context.Context, snap models.WeatherSnapshot, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", common.ErrorConstraint)
	}
	now := c.now().UTC()
	return c.repo.Upsert(ctx, &models.WeatherCacheEntry{
		Snapshot:  snap,
		FetchedAt: now,
		ExpiresAt: now.Add(ttl),
	})
}

// Get returns the cached snapshot for cityKey, marked fresh or stale, or
// common.ErrorNotFound for an unknown key.
func (c *Cache) Get(ctx context.Context, cityKey string) (*CachedWeather, error) {
	entry, err := c.repo.Get(ctx, cityKey)
	if err != nil {
		return nil, err
	}

	now := c.now()
	freshness := Fresh
	if now.After(entry.ExpiresAt) {
		freshness = Stale
	}
	return &CachedWeather{
		Snapshot:  entry.Snapshot,
		Freshness: freshness,
		Age:       now.Sub(entry.FetchedAt),
		FetchedAt: entry.FetchedAt,
	}, nil
}

// Keys returns every cached city key, for the background refresh.
func (c *Cache) Keys(ctx context.Context) ([]string, error) {
	entries, err := c.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Snapshot.CityKey)
	}
	return keys, nil
}
