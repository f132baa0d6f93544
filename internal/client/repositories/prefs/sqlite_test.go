package prefs

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weathermood/weathermood/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE prefs (key TEXT PRIMARY KEY, value TEXT NOT NULL);`)
	require.NoError(t, err)

	return db
}

func TestSetGetDelete(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "theme_mode", "1"))

	v, err := r.Get(ctx, "theme_mode")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	// overwrite
	require.NoError(t, r.Set(ctx, "theme_mode", "2"))
	v, err = r.Get(ctx, "theme_mode")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	require.NoError(t, r.Delete(ctx, "theme_mode"))
	_, err = r.Get(ctx, "theme_mode")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	// deleting a missing key is not an error
	require.NoError(t, r.Delete(ctx, "theme_mode"))
}
