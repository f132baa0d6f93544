package cities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

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

const cityColumns = `id, user_id, city_key, name, country_code, latitude, longitude,
	is_default, created_at, updated_at, sync_status`

func scanCity(row interface{ Scan(...any) error }) (*models.FavoriteCity, error) {
	c := &models.FavoriteCity{}
	var createdAt, updatedAt int64
	var isDefault, syncStatus int
	err := row.Scan(&c.ID, &c.UserID, &c.CityKey, &c.Name, &c.CountryCode,
		&c.Latitude, &c.Longitude, &isDefault, &createdAt, &updatedAt, &syncStatus)
	if err != nil {
		return nil, err
	}
	c.IsDefault = isDefault != 0
	c.CreatedAt = timex.FromMillis(createdAt)
	c.UpdatedAt = timex.FromMillis(updatedAt)
	c.SyncStatus = models.SyncStatus(syncStatus)
	return c, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, c *models.FavoriteCity) error {
	query := `INSERT INTO favorite_cities
			(user_id, city_key, name, country_code, latitude, longitude, is_default, created_at, updated_at, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, city_key) DO UPDATE SET
			name = excluded.name,
			country_code = excluded.country_code,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			is_default = excluded.is_default,
			updated_at = excluded.updated_at,
			sync_status = excluded.sync_status`
	_, err := r.db.ExecContext(ctx, query,
		c.UserID, c.CityKey, c.Name, c.CountryCode, c.Latitude, c.Longitude,
		boolToInt(c.IsDefault), timex.ToMillis(c.CreatedAt), timex.ToMillis(c.UpdatedAt), int(c.SyncStatus))
	if err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("upsert city: %w", common.ErrorConstraint)
		}
		return fmt.Errorf("failed to upsert city: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]models.FavoriteCity, error) {
	query := `SELECT ` + cityColumns + ` FROM favorite_cities
		WHERE user_id = ? ORDER BY is_default DESC, updated_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select cities: %w", err)
	}
	defer rows.Close()

	var result []models.FavoriteCity
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByKey(ctx context.Context, userID, cityKey string) (*models.FavoriteCity, error) {
	query := `SELECT ` + cityColumns + ` FROM favorite_cities WHERE user_id = ? AND city_key = ?`
	c, err := scanCity(r.db.QueryRowContext(ctx, query, userID, cityKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) Pending(ctx context.Context, userID string) ([]models.FavoriteCity, error) {
	query := `SELECT ` + cityColumns + ` FROM favorite_cities
		WHERE user_id = ? AND sync_status = 0 ORDER BY updated_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending cities: %w", err)
	}
	defer rows.Close()

	var result []models.FavoriteCity
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkSynced only moves 0 -> 1; the WHERE clause keeps the transition
// monotonic even under concurrent callers.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	query := `UPDATE favorite_cities SET sync_status = 1 WHERE id = ? AND sync_status = 0`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark city synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM favorite_cities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete city: %w", err)
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

// ClearDefault and SetDefault also bump updated_at and reset sync_status so
// the flag change wins last-writer-wins against the mirror's older copy and
// gets pushed by the next pass.
func (r *SQLiteRepository) ClearDefault(ctx context.Context, userID string, updatedAt time.Time) error {
	query := `UPDATE favorite_cities SET is_default = 0, sync_status = 0, updated_at = ?
		WHERE user_id = ? AND is_default = 1`
	if _, err := r.db.ExecContext(ctx, query, timex.ToMillis(updatedAt), userID); err != nil {
		return fmt.Errorf("failed to clear default city: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetDefault(ctx context.Context, id int64, updatedAt time.Time) error {
	query := `UPDATE favorite_cities SET is_default = 1, sync_status = 0, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, timex.ToMillis(updatedAt), id)
	if err != nil {
		return fmt.Errorf("failed to set default city: %w", err)
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

func (r *SQLiteRepository) ReassignUser(ctx context.Context, fromUserID, toUserID string) error {
	query := `UPDATE favorite_cities SET user_id = ?, sync_status = 0 WHERE user_id = ?`
	if _, err := r.db.ExecContext(ctx, query, toUserID, fromUserID); err != nil {
		if isConstraintErr(err) {
			return fmt.Errorf("reassign cities: %w", common.ErrorConstraint)
		}
		return fmt.Errorf("failed to reassign cities: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isConstraintErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "constraint")
}
