package moods

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weathermood/weathermood/internal/client/models"
	"github.com/weathermood/weathermood/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
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
`)
	require.NoError(t, err)

	return db
}

func sampleMood(userID, recordID string, rating int) *models.MoodRating {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) // a Monday
	return &models.MoodRating{
		RecordID:   recordID,
		UserID:     userID,
		Rating:     rating,
		Condition:  "Clear",
		CreatedAt:  now,
		UpdatedAt:  now,
		SyncStatus: models.SyncPending,
	}
}

func TestInsert_AssignsID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	m := sampleMood("u1", "r1", 4)
	require.NoError(t, r.Insert(ctx, m))
	assert.NotZero(t, m.ID)

	got, err := r.GetByRecordID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, "Clear", got.Condition)
}

func TestInsert_RatingOutOfRange(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	m := sampleMood("u1", "r1", 6)
	assert.Error(t, r.Insert(context.Background(), m))
}

func TestUpsertByRecordID_Replaces(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	m := sampleMood("u1", "r1", 2)
	require.NoError(t, r.Insert(ctx, m))

	m2 := sampleMood("u1", "r1", 5)
	m2.SyncStatus = models.SyncDone
	require.NoError(t, r.UpsertByRecordID(ctx, m2))

	got, err := r.GetByRecordID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)
	assert.Equal(t, models.SyncDone, got.SyncStatus)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM mood_ratings`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestGetByRecordID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.GetByRecordID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPendingAndMarkSynced(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, sampleMood("u1", "r1", 3)))
	require.NoError(t, r.Insert(ctx, sampleMood("u1", "r2", 4)))

	pending, err := r.Pending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pending, 2)

	require.NoError(t, r.MarkSynced(ctx, "r1"))

	pending, err = r.Pending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "r2", pending[0].RecordID)
}

func TestByCondition(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	for i, c := range []struct {
		condition string
		rating    int
	}{
		{"Clear", 5},
		{"Clear", 3},
		{"Rain", 2},
	} {
		m := sampleMood("u1", fmt.Sprintf("r%d", i), c.rating)
		m.Condition = c.condition
		require.NoError(t, r.Insert(ctx, m))
	}

	stats, err := r.ByCondition(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "Clear", stats[0].Condition)
	assert.InDelta(t, 4.0, stats[0].AvgRating, 0.001)
	assert.Equal(t, 2, stats[0].Count)
	assert.Equal(t, "Rain", stats[1].Condition)
	assert.InDelta(t, 2.0, stats[1].AvgRating, 0.001)
}

func TestByWeekday(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	monday := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	m1 := sampleMood("u1", "r1", 5)
	m1.CreatedAt = monday
	m2 := sampleMood("u1", "r2", 3)
	m2.CreatedAt = monday
	m3 := sampleMood("u1", "r3", 1)
	m3.CreatedAt = sunday
	for _, m := range []*models.MoodRating{m1, m2, m3} {
		require.NoError(t, r.Insert(ctx, m))
	}

	stats, err := r.ByWeekday(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 0, stats[0].Weekday) // Sunday
	assert.InDelta(t, 1.0, stats[0].AvgRating, 0.001)
	assert.Equal(t, 1, stats[1].Weekday) // Monday
	assert.InDelta(t, 4.0, stats[1].AvgRating, 0.001)
	assert.Equal(t, 2, stats[1].Count)
}

func TestReassignUser(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, sampleMood("anon-1", "r1", 3)))
	require.NoError(t, r.MarkSynced(ctx, "r1"))

	require.NoError(t, r.ReassignUser(ctx, "anon-1", "u1"))

	list, err := r.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.SyncPending, list[0].SyncStatus)
}
