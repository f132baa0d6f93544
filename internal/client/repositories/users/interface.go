package users

import (
	"context"

	"github.com/weathermood/weathermood/internal/client/models"
)

// Repository describes operations for local User records. Users are never
// hard-deleted here; sign-out only changes the active identity.
type Repository interface {
	// Upsert inserts a user or replaces the mutable fields of an existing one.
	Upsert(ctx context.Context, u *models.User) error

	// GetByID returns the user, or common.ErrorNotFound.
	GetByID(ctx context.Context, userID string) (*models.User, error)

	// UpdateTheme sets the user's theme preference.
	UpdateTheme(ctx context.Context, userID string, themeMode int) error

	// UpdateLastLogin bumps the user's last-login timestamp.
	UpdateLastLogin(ctx context.Context, userID string, lastLoginMillis int64) error
}
