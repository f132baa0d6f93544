package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/weathermood/weathermood/internal/client/models"
	"github.com/weathermood/weathermood/internal/client/repositories/cities"
	"github.com/weathermood/weathermood/internal/client/repositories/prefs"
	"github.com/weathermood/weathermood/internal/client/repositories/users"
	"github.com/weathermood/weathermood/internal/common"
	"github.com/weathermood/weathermood/internal/logging"
)

// Pref keys used by the manager.
const (
	prefIdentity    = "identity"
	prefAccessToken = "access_token"
	prefThemeMode   = "theme_mode"
)

// Every new account starts with Moscow as the default city.
var defaultCity = models.FavoriteCity{
	CityKey:     "524901",
	Name:        "Moscow",
	CountryCode: "RU",
	Latitude:    55.7558,
	Longitude:   37.6173,
	IsDefault:   true,
}

// Manager persists and resolves the active identity.
type Manager struct {
	users  users.Repository
	cities cities.Repository
	prefs  prefs.Repository
	log    logging.Logger
	now    func() time.Time
}

func NewManager(users users.Repository, cities cities.Repository, prefs prefs.Repository, log logging.Logger) *Manager {
	if log == nil {
		log = logging.NewDiscardLogger()
	}
	return &Manager{users: users, cities: cities, prefs: prefs, log: log, now: time.Now}
}

// WithClock overrides the manager's clock. Tests only.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Current returns the persisted identity. The first call on a fresh device
// mints a device-scoped anonymous id and persists it.
func (m *Manager) Current(ctx context.Context) (Identity, error) {
	raw, err := m.prefs.Get(ctx, prefIdentity)
	if err == nil {
		var id Identity
		if err := json.Unmarshal([]byte(raw), &id); err != nil {
			return Identity{}, fmt.Errorf("corrupt identity pref: %w", err)
		}
		return id, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return Identity{}, err
	}

	id := Identity{UserID: "anon-" + uuid.NewString(), Anonymous: true}
	if err := m.persist(ctx, id); err != nil {
		return Identity{}, err
	}
	m.log.Info(ctx, "minted anonymous identity", "user", id.UserID)
	return id, nil
}

// SignIn parses the access token, upserts the local user row and switches
// the persisted identity to the authenticated account. A first sign-in
// creates the user with the device's theme preference and seeds the default
// city (pending push). Existing anonymous data is NOT merged; see
// UserService.ClaimAnonymousData for the explicit opt-in.
func (m *Manager) SignIn(ctx context.Context, token string) (Identity, error) {
	claims, err := ParseClaims(token)
	if err != nil {
		return Identity{}, err
	}

	id := Identity{UserID: claims.UserID, Email: claims.Email}
	now := m.now().UTC()

	existing, err := m.users.GetByID(ctx, id.UserID)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		user := &models.User{
			UserID:      id.UserID,
			Email:       id.Email,
			DisplayName: displayNameFromEmail(id.Email),
			CreatedAt:   now,
			LastLogin:   now,
			SyncEnabled: true,
			Anonymous:   false,
			ThemeMode:   m.savedTheme(ctx),
		}
		if err := m.users.Upsert(ctx, user); err != nil {
			return Identity{}, err
		}
		if err := m.seedDefaultCity(ctx, id.UserID, now); err != nil {
			return Identity{}, err
		}
		m.log.Info(ctx, "created local user", "user", id.UserID)
	case err != nil:
		return Identity{}, err
	default:
		if err := m.users.UpdateLastLogin(ctx, existing.UserID, now.UnixMilli()); err != nil {
			return Identity{}, err
		}
	}

	if err := m.persist(ctx, id); err != nil {
		return Identity{}, err
	}
	if err := m.prefs.Set(ctx, prefAccessToken, token); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// SignOut clears the persisted identity and token. The next Current call
// mints a fresh anonymous identity; local rows are left untouched.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.prefs.Delete(ctx, prefIdentity); err != nil {
		return err
	}
	return m.prefs.Delete(ctx, prefAccessToken)
}

// Token returns the stored access token for authenticated mirror calls.
// Anonymous sessions have none; callers get common.ErrorUnauthorized.
func (m *Manager) Token(ctx context.Context) (string, error) {
	token, err := m.prefs.Get(ctx, prefAccessToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", err
	}
	return token, nil
}

func (m *Manager) persist(ctx context.Context, id Identity) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	return m.prefs.Set(ctx, prefIdentity, string(raw))
}

func (m *Manager) savedTheme(ctx context.Context) int {
	raw, err := m.prefs.Get(ctx, prefThemeMode)
	if err != nil {
		return 0
	}
	theme, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return theme
}

func (m *Manager) seedDefaultCity(ctx context.Context, userID string, now time.Time) error {
	city := defaultCity
	city.UserID = userID
	city.CreatedAt = now
	city.UpdatedAt = now
	city.SyncStatus = models.SyncPending
	return m.cities.Upsert(ctx, &city)
}

func displayNameFromEmail(email string) string {
	if email == "" {
		return "Guest"
	}
	name, _, _ := strings.Cut(email, "@")
	if name == "" {
		return "Guest"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
