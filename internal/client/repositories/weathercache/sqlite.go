package weathercache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/weathermood/weathermood/internal/client/models"
	"github.com/weathermood/weathermood/internal/common"
	"github.com/weathermood/weathermood/internal/dbx"
	"github.com/weathermood/weathermood/internal/timex"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const cacheColumns = `city_key, city_name, latitude, longitude, temperature, feels_like,
	condition, description, icon, wind_speed, humidity, pressure, visibility,
	fetched_at, expires_at`

func scanEntry(row interface{ Scan(...any) error }) (*models.WeatherCacheEntry, error) {
	e := &models.WeatherCacheEntry{}
	s := &e.Snapshot
	var fetchedAt, expiresAt int64
	err := row.Scan(&s.CityKey, &s.CityName, &s.Latitude, &s.Longitude, &s.Temperature,
		&s.FeelsLike, &s.Condition, &s.Description, &s.Icon, &s.WindSpeed,
		&s.Humidity, &s.Pressure, &s.Visibility, &fetchedAt, &expiresAt)
	if err != nil {
		return nil, err
	}
	e.FetchedAt = timex.FromMillis(fetchedAt)
	e.ExpiresAt = timex.FromMillis(expiresAt)
	return e, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, e *models.WeatherCacheEntry) error {
	if !e.ExpiresAt.After(e.FetchedAt) {
		return fmt.Errorf("upsert weather cache: expires_at not after fetched_at: %w", common.ErrorConstraint)
	}
	query := `INSERT INTO weather_cache
			(city_key, city_name, latitude, longitude, temperature, feels_like, condition,
			 description, icon, wind_speed, humidity, pressure, visibility, fetched_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(city_key) DO UPDATE SET
			city_name = excluded.city_name,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			temperature = excluded.temperature,
			feels_like = excluded.feels_like,
			condition = excluded.condition,
			description = excluded.description,
			icon = excluded.icon,
			wind_speed = excluded.wind_speed,
			humidity = excluded.humidity,
			pressure = excluded.pressure,
			visibility = excluded.visibility,
			fetched_at = excluded.fetched_at,
			expires_at = excluded.expires_at`
	s := e.Snapshot
	_, err := r.db.ExecContext(ctx, query,
		s.CityKey, s.CityName, s.Latitude, s.Longitude, s.Temperature, s.FeelsLike,
		s.Condition, s.Description, s.Icon, s.WindSpeed, s.Humidity, s.Pressure,
		s.Visibility, timex.ToMillis(e.FetchedAt), timex.ToMillis(e.ExpiresAt))
	if err != nil {
		return fmt.Errorf("failed to upsert weather cache: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, cityKey string) (*models.WeatherCacheEntry, error) {
	query := `SELECT ` + cacheColumns + ` FROM weather_cache WHERE city_key = ?`
	e, err := scanEntry(r.db.QueryRowContext(ctx, query, cityKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) All(ctx context.Context) ([]models.WeatherCacheEntry, error) {
	query := `SELECT ` + cacheColumns + ` FROM weather_cache ORDER BY city_key`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select weather cache: %w", err)
	}
	defer rows.Close()

	var result []models.WeatherCacheEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
