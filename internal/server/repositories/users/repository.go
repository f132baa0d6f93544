package users

import (
	"context"

	"github.com/weathermood/weathermood/internal/server/models"
)

// Repository describes operations for mirror accounts.
type Repository interface {
	// Create stores a new account and fills in its generated id. A duplicate
	// email yields common.ErrorConstraint.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the account, or common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the account, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)
}
