package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/weathermood/weathermood/internal/common"
	"github.com/weathermood/weathermood/internal/server/auth"
	"github.com/weathermood/weathermood/internal/server/config"
)

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                   "test-secret",
		AccessTokenValidityDuration: time.Hour,
	}
}

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, testConfig())
	ctx := context.Background()

	user, err := svc.Register(ctx, "  User@Example.COM ", "password1")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email, "email is normalized")
	assert.NotEmpty(t, user.ID)

	// stored hash verifies against the original password
	stored, err := repo.GetByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password1")))
}

func TestRegister_Validation(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), testConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, "no-at-sign", "password1")
	assert.ErrorIs(t, err, common.ErrorConstraint)

	_, err = svc.Register(ctx, "a@b.com", "short")
	assert.ErrorIs(t, err, common.ErrorConstraint)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), testConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "password1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "A@B.com", "password2")
	assert.ErrorIs(t, err, common.ErrorConstraint)
}

func TestLogin(t *testing.T) {
	cfg := testConfig()
	svc := NewUserService(newFakeUserRepo(), cfg)
	ctx := context.Background()

	user, err := svc.Register(ctx, "a@b.com", "password1")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "a@b.com", "password1")
	require.NoError(t, err)

	claims, err := auth.ParseToken(token, []byte(cfg.SecretKey))
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), testConfig())
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "password1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@b.com", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	// unknown email reports the same error as a wrong password
	_, err = svc.Login(ctx, "nobody@b.com", "password1")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}
