// Package store opens the local SQLite database, applies the embedded
// migrations, and hands out the per-entity repositories. The store is
// opened once at process start and passed by reference to all components;
// nothing else constructs database handles.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/weathermood/weathermood/internal/client/migrations"
	"github.com/weathermood/weathermood/internal/client/repositories/cities"
	"github.com/weathermood/weathermood/internal/client/repositories/moods"
	"github.com/weathermood/weathermood/internal/client/repositories/prefs"
	"github.com/weathermood/weathermood/internal/client/repositories/syncqueue"
	"github.com/weathermood/weathermood/internal/client/repositories/users"
	"github.com/weathermood/weathermood/internal/client/repositories/weathercache"
)

// Repositories bundles the per-entity repositories backed by one database.
type Repositories struct {
	Users        users.Repository
	Cities       cities.Repository
	Moods        moods.Repository
	WeatherCache weathercache.Repository
	SyncQueue    syncqueue.Repository
	Prefs        prefs.Repository
}

// Store owns the database handle and its repositories.
type Store struct {
	Repositories
	db *sql.DB
}

// DB exposes the raw handle for transactions via dbx.WithTx.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Open opens (creating if needed) the database at dsn and runs migrations.
//
// WAL keeps readers unblocked during writes; busy_timeout makes concurrent
// writers queue instead of failing immediately.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &Store{
		db: db,
		Repositories: Repositories{
			Users:        users.NewSQLiteRepository(db),
			Cities:       cities.NewSQLiteRepository(db),
			Moods:        moods.NewSQLiteRepository(db),
			WeatherCache: weathercache.NewSQLiteRepository(db),
			SyncQueue:    syncqueue.NewSQLiteRepository(db),
			Prefs:        prefs.NewSQLiteRepository(db),
		},
	}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}
