package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/weathermood/weathermood/internal/client/repositories/cities"
	"github.com/weathermood/weathermood/internal/client/repositories/moods"
	"github.com/weathermood/weathermood/internal/client/repositories/prefs"
	"github.com/weathermood/weathermood/internal/client/repositories/users"
	"github.com/weathermood/weathermood/internal/client/session"
	"github.com/weathermood/weathermood/internal/common"
	"github.com/weathermood/weathermood/internal/dbx"
	"github.com/weathermood/weathermood/internal/logging"
)

const prefThemeMode = "theme_mode"

// UserService covers user preferences and the explicit migration of
// anonymous data into an authenticated account.
type UserService struct {
	db    *sql.DB
	users users.Repository
	prefs prefs.Repository
	log   logging.Logger
}

func NewUserService(db *sql.DB, users users.Repository, prefs prefs.Repository,
	log logging.Logger) *UserService {
	if log == nil {
		log = logging.NewDiscardLogger()
	}
	return &UserService{db: db, users: users, prefs: prefs, log: log}
}

// SetTheme stores the theme preference on the device and, for authenticated
// identities, on the user row too.
func (s *UserService) SetTheme(ctx context.Context, id session.Identity, themeMode int) error {
	if themeMode < 0 || themeMode > 2 {
		return fmt.Errorf("theme mode %d out of range: %w", themeMode, common.ErrorConstraint)
	}
	if err := s.prefs.Set(ctx, prefThemeMode, strconv.Itoa(themeMode)); err != nil {
		return err
	}
	if id.Anonymous {
		return nil
	}
	return s.users.UpdateTheme(ctx, id.UserID, themeMode)
}

// ClaimAnonymousData re-keys the rows created under an anonymous identity to
// the authenticated one, in one transaction so a failure cannot strand
// cities and moods under different user ids. Every moved row drops back to
// pending so the next sync pushes it. The operation is an explicit opt-in
// after sign-in; it is never performed automatically.
func (s *UserService) ClaimAnonymousData(ctx context.Context, from, to session.Identity) error {
	if !from.Anonymous {
		return fmt.Errorf("source identity %s is not anonymous: %w", from.UserID, common.ErrorConstraint)
	}
	if !to.CanSync() {
		return fmt.Errorf("target identity %s cannot sync: %w", to.UserID, common.ErrorConstraint)
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := cities.NewSQLiteRepository(tx).ReassignUser(ctx, from.UserID, to.UserID); err != nil {
			return fmt.Errorf("reassign cities: %w", err)
		}
		if err := moods.NewSQLiteRepository(tx).ReassignUser(ctx, from.UserID, to.UserID); err != nil {
			return fmt.Errorf("reassign moods: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "claimed anonymous data", "from", from.UserID, "to", to.UserID)
	return nil
}
