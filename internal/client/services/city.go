// Package services implements the application-level operations on top of the
// repositories, the session manager and the remote mirror.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/weathermood/weathermood/internal/client/models"
	"github.com/weathermood/weathermood/internal/client/remote"
	"github.com/weathermood/weathermood/internal/client/repositories/cities"
	"github.com/weathermood/weathermood/internal/client/repositories/syncqueue"
	"github.com/weathermood/weathermood/internal/client/session"
	"github.com/weathermood/weathermood/internal/common"
	"github.com/weathermood/weathermood/internal/dbx"
	"github.com/weathermood/weathermood/internal/logging"
)

// CityInput is the caller-facing shape for adding a favorite city.
type CityInput struct {
	CityKey     string
	Name        string
	CountryCode string
	Latitude    float64
	Longitude   float64
}

// CityService manages the favorite-city list. Writes are local-first: the
// row lands in the store immediately, and the mirror is updated
// opportunistically, never blocking the caller on a failed remote call.
type CityService struct {
	db     *sql.DB
	cities cities.Repository
	queue  syncqueue.Repository
	remote remote.Client
	log    logging.Logger
	now    func() time.Time
}

func NewCityService(db *sql.DB, cities cities.Repository, queue syncqueue.Repository,
	remoteClient remote.Client, log logging.Logger) *CityService {
	if log == nil {
		log = logging.NewDiscardLogger()
	}
	return &CityService{db: db, cities: cities, queue: queue, remote: remoteClient, log: log, now: time.Now}
}

// WithClock overrides the service clock. Tests only.
func (s *CityService) WithClock(now func() time.Time) *CityService {
	s.now = now
	return s
}

// AddFavorite saves a city for the identity. Duplicates are rejected by city
// key and by a case-insensitive match on the city's base name (the part
// before the first comma). The first city a user
// saves becomes the default automatically.
func (s *CityService) AddFavorite(ctx context.Context, id session.Identity, in CityInput) (*models.FavoriteCity, error) {
	if in.CityKey == "" || in.Name == "" {
		return nil, fmt.Errorf("city key and name are required: %w", common.ErrorConstraint)
	}

	existing, err := s.cities.ListByUser(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	base := baseName(in.Name)
	for _, c := range existing {
		if c.CityKey == in.CityKey || strings.EqualFold(baseName(c.Name), base) {
			return nil, fmt.Errorf("city %q already saved: %w", in.Name, common.ErrorConstraint)
		}
	}

	now := s.now().UTC()
	city := &models.FavoriteCity{
		UserID:      id.UserID,
		CityKey:     in.CityKey,
		Name:        in.Name,
		CountryCode: in.CountryCode,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		IsDefault:   len(existing) == 0,
		CreatedAt:   now,
		UpdatedAt:   now,
		SyncStatus:  models.SyncPending,
	}
	if err := s.cities.Upsert(ctx, city); err != nil {
		return nil, err
	}

	s.pushOpportunistic(ctx, id, city)
	return city, nil
}

// List returns the identity's saved cities, default first.
func (s *CityService) List(ctx context.Context, id session.Identity) ([]models.FavoriteCity, error) {
	return s.cities.ListByUser(ctx, id.UserID)
}

// SetDefault makes the city with the given key the default, clearing the
// flag from the rest. Both writes run in one transaction, and both rows go
// back to pending with a fresh updated_at so the change wins against the
// mirror's older copies and gets pushed by the next pass.
func (s *CityService) SetDefault(ctx context.Context, id session.Identity, cityKey string) error {
	city, err := s.cities.GetByKey(ctx, id.UserID, cityKey)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := cities.NewSQLiteRepository(tx)
		if err := repo.ClearDefault(ctx, id.UserID, now); err != nil {
			return err
		}
		return repo.SetDefault(ctx, city.ID, now)
	})
}

// Remove deletes a saved city locally and mirrors the delete. If the remote
// call fails the delete is queued and replayed by the next sync pass, so the
// row cannot silently reappear on pull.
func (s *CityService) Remove(ctx context.Context, id session.Identity, cityKey string) error {
	city, err := s.cities.GetByKey(ctx, id.UserID, cityKey)
	if err != nil {
		return err
	}
	if err := s.cities.Delete(ctx, city.ID); err != nil {
		return err
	}

	if !id.CanSync() {
		return nil
	}

	err = s.remote.Delete(ctx, id.UserID, models.CollectionCities, cityKey)
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		return nil
	}

	s.log.Warn(ctx, "remote delete failed, queueing", "city", cityKey, "error", err)
	entry := &models.SyncQueueEntry{
		UserID:     id.UserID,
		Collection: models.CollectionCities,
		RecordID:   cityKey,
		Op:         models.OpDelete,
		CreatedAt:  s.now().UTC(),
	}
	return s.queue.Enqueue(ctx, entry)
}

// pushOpportunistic tries to mirror a freshly saved city right away. Failure
// is fine; the row stays pending and the engine pushes it later.
func (s *CityService) pushOpportunistic(ctx context.Context, id session.Identity, city *models.FavoriteCity) {
	if !id.CanSync() {
		return
	}
	rec := remote.Record{
		ID: city.CityKey,
		Fields: map[string]any{
			"city_key":     city.CityKey,
			"name":         city.Name,
			"country_code": city.CountryCode,
			"latitude":     city.Latitude,
			"longitude":    city.Longitude,
			"is_default":   city.IsDefault,
			"created_at":   city.CreatedAt.UnixMilli(),
		},
		UpdatedAt: city.UpdatedAt,
	}
	if err := s.remote.Upsert(ctx, id.UserID, models.CollectionCities, rec); err != nil {
		s.log.Debug(ctx, "opportunistic push failed", "city", city.CityKey, "error", err)
		return
	}
	if err := s.cities.MarkSynced(ctx, city.ID); err != nil {
		s.log.Warn(ctx, "failed to mark city synced", "city", city.CityKey, "error", err)
		return
	}
	city.SyncStatus = models.SyncDone
}

// baseName strips the region/country suffix from a display name, so
// "Moscow, RU" and "moscow" compare equal.
func baseName(name string) string {
	base, _, _ := strings.Cut(name, ",")
	return strings.TrimSpace(base)
}
