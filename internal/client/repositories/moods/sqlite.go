package moods

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

const moodColumns = `id, record_id, user_id, rating, condition, description, temperature,
	feels_like, humidity, pressure, wind_speed, note, city_key, city_name,
	created_at, updated_at, sync_status`

func scanMood(row interface{ Scan(...any) error }) (*models.MoodRating, error) {
	m := &models.MoodRating{}
	var createdAt, updatedAt int64
	var syncStatus int
	err := row.Scan(&m.ID, &m.RecordID, &m.UserID, &m.Rating, &m.Condition, &m.Description,
		&m.Temperature, &m.FeelsLike, &m.Humidity, &m.Pressure, &m.WindSpeed,
		&m.Note, &m.CityKey, &m.CityName, &createdAt, &updatedAt, &syncStatus)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = timex.FromMillis(createdAt)
	m.UpdatedAt = timex.FromMillis(updatedAt)
	m.SyncStatus = models.SyncStatus(syncStatus)
	return m, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, m *models.MoodRating) error {
	query := `INSERT INTO mood_ratings
			(record_id, user_id, rating, condition, description, temperature, feels_like,
			 humidity, pressure, wind_speed, note, city_key, city_name, created_at, updated_at, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		m.RecordID, m.UserID, m.Rating, m.Condition, m.Description, m.Temperature, m.FeelsLike,
		m.Humidity, m.Pressure, m.WindSpeed, m.Note, m.CityKey, m.CityName,
		timex.ToMillis(m.CreatedAt), timex.ToMillis(m.UpdatedAt), int(m.SyncStatus))
	if err != nil {
		return fmt.Errorf("failed to insert mood rating: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert id: %w", err)
	}
	m.ID = id
	return nil
}

func (r *SQLiteRepository) UpsertByRecordID(ctx context.Context, m *models.MoodRating) error {
	query := `INSERT INTO mood_ratings
			(record_id, user_id, rating, condition, description, temperature, feels_like,
			 humidity, pressure, wind_speed, note, city_key, city_name, created_at, updated_at, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(record_id) DO UPDATE SET
			rating = excluded.rating,
			condition = excluded.condition,
			description = excluded.description,
			temperature = excluded.temperature,
			feels_like = excluded.feels_like,
			humidity = excluded.humidity,
			pressure = excluded.pressure,
			wind_speed = excluded.wind_speed,
			note = excluded.note,
			city_key = excluded.city_key,
			city_name = excluded.city_name,
			updated_at = excluded.updated_at,
			sync_status = excluded.sync_status`
	_, err := r.db.ExecContext(ctx, query,
		m.RecordID, m.UserID, m.Rating, m.Condition, m.Description, m.Temperature, m.FeelsLike,
		m.Humidity, m.Pressure, m.WindSpeed, m.Note, m.CityKey, m.CityName,
		timex.ToMillis(m.CreatedAt), timex.ToMillis(m.UpdatedAt), int(m.SyncStatus))
	if err != nil {
		return fmt.Errorf("failed to upsert mood rating: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByRecordID(ctx context.Context, recordID string) (*models.MoodRating, error) {
	query := `SELECT ` + moodColumns + ` FROM mood_ratings WHERE record_id = ?`
	m, err := scanMood(r.db.QueryRowContext(ctx, query, recordID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]models.MoodRating, error) {
	query := `SELECT ` + moodColumns + ` FROM mood_ratings WHERE user_id = ? ORDER BY created_at DESC`
	return r.queryMany(ctx, query, userID)
}

func (r *SQLiteRepository) Pending(ctx context.Context, userID string) ([]models.MoodRating, error) {
	query := `SELECT ` + moodColumns + ` FROM mood_ratings
		WHERE user_id = ? AND sync_status = 0 ORDER BY created_at`
	return r.queryMany(ctx, query, userID)
}

func (r *SQLiteRepository) queryMany(ctx context.Context, query string, args ...any) ([]models.MoodRating, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select mood ratings: %w", err)
	}
	defer rows.Close()

	var result []models.MoodRating
	for rows.Next() {
		m, err := scanMood(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, recordID string) error {
	query := `UPDATE mood_ratings SET sync_status = 1 WHERE record_id = ? AND sync_status = 0`
	if _, err := r.db.ExecContext(ctx, query, recordID); err != nil {
		return fmt.Errorf("failed to mark mood rating synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mood_ratings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete mood rating: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) ByCondition(ctx context.Context, userID string) ([]ConditionStat, error) {
	query := `SELECT condition, AVG(CAST(rating AS REAL)), COUNT(*)
		FROM mood_ratings
		WHERE user_id = ? AND condition != ''
		GROUP BY condition
		ORDER BY condition`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select mood stats: %w", err)
	}
	defer rows.Close()

	var result []ConditionStat
	for rows.Next() {
		var s ConditionStat
		if err := rows.Scan(&s.Condition, &s.AvgRating, &s.Count); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ByWeekday(ctx context.Context, userID string) ([]WeekdayStat, error) {
	query := `SELECT CAST(strftime('%w', datetime(created_at/1000, 'unixepoch')) AS INTEGER) AS weekday,
			AVG(CAST(rating AS REAL)), COUNT(*)
		FROM mood_ratings
		WHERE user_id = ?
		GROUP BY weekday
		ORDER BY weekday`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select mood stats: %w", err)
	}
	defer rows.Close()

	var result []WeekdayStat
	for rows.Next() {
		var s WeekdayStat
		if err := rows.Scan(&s.Weekday, &s.AvgRating, &s.Count); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ReassignUser(ctx context.Context, fromUserID, toUserID string) error {
	query := `UPDATE mood_ratings SET user_id = ?, sync_status = 0 WHERE user_id = ?`
	if _, err := r.db.ExecContext(ctx, query, toUserID, fromUserID); err != nil {
		return fmt.Errorf("failed to reassign mood ratings: %w", err)
	}
	return nil
}
