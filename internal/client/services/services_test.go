package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weathermood/weathermood/internal/client/remote"
	"github.com/weathermood/weathermood/internal/common"

	_ "modernc.org/sqlite"
)

// setupDB creates an in-memory store with the full client schema.
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// one connection so transactions and queries share the in-memory database
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
CREATE TABLE users (
  user_id      TEXT PRIMARY KEY,
  email        TEXT NOT NULL DEFAULT '',
  display_name TEXT NOT NULL DEFAULT '',
  created_at   INTEGER NOT NULL,
  last_login   INTEGER NOT NULL,
  sync_enabled INTEGER NOT NULL DEFAULT 0,
  anonymous    INTEGER NOT NULL DEFAULT 1,
  theme_mode   INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE favorite_cities (
  id           INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id      TEXT NOT NULL,
  city_key     TEXT NOT NULL,
  name         TEXT NOT NULL,
  country_code TEXT NOT NULL DEFAULT '',
  latitude     REAL NOT NULL DEFAULT 0,
  longitude    REAL NOT NULL DEFAULT 0,
  is_default   INTEGER NOT NULL DEFAULT 0,
  created_at   INTEGER NOT NULL,
  updated_at   INTEGER NOT NULL,
  sync_status  INTEGER NOT NULL DEFAULT 0,
  UNIQUE (user_id, city_key)
);
CREATE TABLE mood_ratings (
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  record_id   TEXT NOT NULL UNIQUE,
  user_id     TEXT NOT NULL,
  rating      INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
  condition   TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  temperature REAL NOT NULL DEFAULT 0,
  feels_like  REAL NOT NULL DEFAULT 0,
  humidity    INTEGER NOT NULL DEFAULT 0,
  pressure    INTEGER NOT NULL DEFAULT 0,
  wind_speed  REAL NOT NULL DEFAULT 0,
  note        TEXT NOT NULL DEFAULT '',
  city_key    TEXT NOT NULL DEFAULT '',
  city_name   TEXT NOT NULL DEFAULT '',
  created_at  INTEGER NOT NULL,
  updated_at  INTEGER NOT NULL,
  sync_status INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE sync_queue (
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id     TEXT NOT NULL,
  collection  TEXT NOT NULL,
  record_id   TEXT NOT NULL,
  op          INTEGER NOT NULL,
  payload     BLOB,
  created_at  INTEGER NOT NULL,
  retry_count INTEGER NOT NULL DEFAULT 0,
  status      INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE prefs (key TEXT PRIMARY KEY, value TEXT NOT NULL);
`)
	require.NoError(t, err)

	return db
}

// fakeRemote is a minimal in-memory remote.Client for the service tests,
// keyed by collection then record id.
type fakeRemote struct {
	stored   map[string]map[string]remote.Record
	upserts  int
	deletes  int
	failNext error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{stored: map[string]map[string]remote.Record{}}
}

func (f *fakeRemote) put(collection string, rec remote.Record) {
	if f.stored[collection] == nil {
		f.stored[collection] = map[string]remote.Record{}
	}
	f.stored[collection][rec.ID] = rec
}

func (f *fakeRemote) Upsert(_ context.Context, _, collection string, rec remote.Record) error {
	f.upserts++
	if f.failNext != nil {
		return f.failNext
	}
	f.put(collection, rec)
	return nil
}

func (f *fakeRemote) List(_ context.Context, _, collection string) ([]remote.Record, error) {
	if f.failNext != nil {
		return nil, f.failNext
	}
	var out []remote.Record
	for _, rec := range f.stored[collection] {
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeRemote) Delete(_ context.Context, _, collection, recordID string) error {
	f.deletes++
	if f.failNext != nil {
		return f.failNext
	}
	if _, ok := f.stored[collection][recordID]; !ok {
		return common.ErrorNotFound
	}
	delete(f.stored[collection], recordID)
	return nil
}
