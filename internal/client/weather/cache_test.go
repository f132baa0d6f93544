package weather

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weathermood/weathermood/internal/client/models"
	"github.com/weathermood/weathermood/internal/client/repositories/weathercache"
	"github.com/weathermood/weathermood/internal/common"

	_ "modernc.org/sqlite"
)

func setupCache(t *testing.T) *Cache {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE weather_cache (
  city_key    TEXT PRIMARY KEY,
  city_name   TEXT NOT NULL,
  latitude    REAL NOT NULL DEFAULT 0,
  longitude   REAL NOT NULL DEFAULT 0,
  temperature REAL NOT NULL DEFAULT 0,
  feels_like  REAL NOT NULL DEFAULT 0,
  condition   TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  icon        TEXT NOT NULL DEFAULT '',
  wind_speed  REAL NOT NULL DEFAULT 0,
  humidity    INTEGER NOT NULL DEFAULT 0,
  pressure    INTEGER NOT NULL DEFAULT 0,
  visibility  INTEGER NOT NULL DEFAULT 0,
  fetched_at  INTEGER NOT NULL,
  expires_at  INTEGER NOT NULL
);
`)
	require.NoError(t, err)

	return NewCache(weathercache.NewSQLiteRepository(db))
}

func snapshot(cityKey string) models.WeatherSnapshot {
	return models.WeatherSnapshot{CityKey: cityKey, CityName: "Moscow", Temperature: 20, Condition: "Clear"}
}

func TestCache_FreshWithinTTL(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.WithClock(func() time.Time { return now })

	require.NoError(t, cache.Put(ctx, snapshot("524901"), 30*time.Minute))

	// ten minutes later the entry is still fresh
	cache.WithClock(func() time.Time { return now.Add(10 * time.Minute) })
	got, err := cache.Get(ctx, "524901")
	require.NoError(t, err)
	assert.Equal(t, Fresh, got.Freshness)
	assert.Equal(t, 10*time.Minute, got.Age)
	assert.Equal(t, 20.0, got.Snapshot.Temperature)
}

func TestCache_StaleAfterTTL(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.WithClock(func() time.Time { return now })
	require.NoError(t, cache.Put(ctx, snapshot("524901"), 30*time.Minute))

	// past the TTL the entry is served stale, not deleted
	cache.WithClock(func() time.Time { return now.Add(2 * time.Hour) })
	got, err := cache.Get(ctx, "524901")
	require.NoError(t, err)
	assert.Equal(t, Stale, got.Freshness)
	assert.Equal(t, 2*time.Hour, got.Age)
}

func TestCache_MissAndInvalidTTL(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	_, err := cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	assert.ErrorIs(t, cache.Put(ctx, snapshot("1"), 0), common.ErrorConstraint)
}

func TestCache_Keys(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, snapshot("2"), time.Hour))
	require.NoError(t, cache.Put(ctx, snapshot("1"), time.Hour))

	keys, err := cache.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, keys)
}
