package users

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

func (r *SQLiteRepository) Upsert(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (user_id, email, display_name, created_at, last_login, sync_enabled, anonymous, theme_mode)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			email = excluded.email,
			display_name = excluded.display_name,
			last_login = excluded.last_login,
			sync_enabled = excluded.sync_enabled,
			anonymous = excluded.anonymous,
			theme_mode = excluded.theme_mode`
	_, err := r.db.ExecContext(ctx, query,
		u.UserID, u.Email, u.DisplayName, timex.ToMillis(u.CreatedAt), timex.ToMillis(u.LastLogin),
		boolToInt(u.SyncEnabled), boolToInt(u.Anonymous), u.ThemeMode)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT user_id, email, display_name, created_at, last_login, sync_enabled, anonymous, theme_mode
		FROM users WHERE user_id = ?`
	u := &models.User{}
	var createdAt, lastLogin int64
	var syncEnabled, anonymous int
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&u.UserID, &u.Email, &u.DisplayName,
		&createdAt, &lastLogin, &syncEnabled, &anonymous, &u.ThemeMode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	u.CreatedAt = timex.FromMillis(createdAt)
	u.LastLogin = timex.FromMillis(lastLogin)
	u.SyncEnabled = syncEnabled != 0
	u.Anonymous = anonymous != 0
	return u, nil
}

func (r *SQLiteRepository) UpdateTheme(ctx context.Context, userID string, themeMode int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET theme_mode = ? WHERE user_id = ?`, themeMode, userID)
	if err != nil {
		return fmt.Errorf("failed to update theme: %w", err)
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

func (r *SQLiteRepository) UpdateLastLogin(ctx context.Context, userID string, lastLoginMillis int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE user_id = ?`, lastLoginMillis, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
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

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
