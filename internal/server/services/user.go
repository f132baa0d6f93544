// Package services implements the mirror server's application logic on top
// of the repositories.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/weathermood/weathermood/internal/common"
	"github.com/weathermood/weathermood/internal/server/auth"
	"github.com/weathermood/weathermood/internal/server/config"
	"github.com/weathermood/weathermood/internal/server/models"
	"github.com/weathermood/weathermood/internal/server/repositories/users"
)

// UserService handles account registration and login.
type UserService struct {
	users  users.Repository
	config *config.Config
}

func NewUserService(users users.Repository, config *config.Config) *UserService {
	return &UserService{users: users, config: config}
}

// Register creates an account. The email is normalized to lower case; the
// password is stored as a bcrypt hash.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email: %w", common.ErrorConstraint)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("password too short: %w", common.ErrorConstraint)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, PasswordHash: string(hash)}
	return s.users.Create(ctx, user)
}

// Login verifies credentials and mints an access token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", common.ErrorUnauthorized
	}

	return auth.GenerateToken(user.ID, user.Email,
		[]byte(s.config.SecretKey), s.config.AccessTokenValidityDuration)
}
