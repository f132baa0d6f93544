package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/weathermood/weathermood/internal/client/models"
	"github.com/weathermood/weathermood/internal/client/remote"
	"github.com/weathermood/weathermood/internal/client/repositories/moods"
	"github.com/weathermood/weathermood/internal/client/repositories/syncqueue"
	"github.com/weathermood/weathermood/internal/client/session"
	"github.com/weathermood/weathermood/internal/common"
	"github.com/weathermood/weathermood/internal/logging"
)

// MoodInput is the caller-facing shape for recording a mood.
type MoodInput struct {
	Rating int
	Note   string
}

// MoodService records mood ratings and serves the history and analytics
// views. A rating is immutable once stored; the only mutations are deletion
// and the sync-status transition.
type MoodService struct {
	moods  moods.Repository
	queue  syncqueue.Repository
	remote remote.Client
	log    logging.Logger
	now    func() time.Time
	newID  func() string
}

func NewMoodService(moods moods.Repository, queue syncqueue.Repository,
	remoteClient remote.Client, log logging.Logger) *MoodService {
	if log == nil {
		log = logging.NewDiscardLogger()
	}
	return &MoodService{moods: moods, queue: queue, remote: remoteClient,
		log: log, now: time.Now, newID: uuid.NewString}
}

// WithClock overrides the service clock. Tests only.
func (s *MoodService) WithClock(now func() time.Time) *MoodService {
	s.now = now
	return s
}

// WithIDGenerator overrides the record id source. Tests only.
func (s *MoodService) WithIDGenerator(newID func() string) *MoodService {
	s.newID = newID
	return s
}

// Add records a rating against the weather observed at the moment of entry.
// The snapshot's condition fields are copied into the row so history stays
// meaningful even if the cache entry is replaced. Ratings outside 1..5 are
// rejected.
func (s *MoodService) Add(ctx context.Context, id session.Identity, in MoodInput, weather *models.WeatherSnapshot) (*models.MoodRating, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("rating %d out of range 1..5: %w", in.Rating, common.ErrorConstraint)
	}

	now := s.now().UTC()
	m := &models.MoodRating{
		RecordID:   s.newID(),
		UserID:     id.UserID,
		Rating:     in.Rating,
		Note:       in.Note,
		CreatedAt:  now,
		UpdatedAt:  now,
		SyncStatus: models.SyncPending,
	}
	if weather != nil {
		m.Condition = weather.Condition
		m.Description = weather.Description
		m.Temperature = weather.Temperature
		m.FeelsLike = weather.FeelsLike
		m.Humidity = weather.Humidity
		m.Pressure = weather.Pressure
		m.WindSpeed = weather.WindSpeed
		m.CityKey = weather.CityKey
		m.CityName = weather.CityName
	}

	if err := s.moods.Insert(ctx, m); err != nil {
		return nil, err
	}
	s.log.Debug(ctx, "mood recorded", "record", m.RecordID, "rating", m.Rating)
	return m, nil
}

// Delete removes a rating locally and mirrors the delete. If the remote call
// fails the delete is queued and replayed by the next sync pass, so the row
// cannot silently reappear on pull.
func (s *MoodService) Delete(ctx context.Context, id session.Identity, recordID string) error {
	m, err := s.moods.GetByRecordID(ctx, recordID)
	if err != nil {
		return err
	}
	if m.UserID != id.UserID {
		return fmt.Errorf("rating %s: %w", recordID, common.ErrorNotFound)
	}
	if err := s.moods.Delete(ctx, m.ID); err != nil {
		return err
	}

	if !id.CanSync() {
		return nil
	}

	err = s.remote.Delete(ctx, id.UserID, models.CollectionMoods, recordID)
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		return nil
	}

	s.log.Warn(ctx, "remote delete failed, queueing", "record", recordID, "error", err)
	entry := &models.SyncQueueEntry{
		UserID:     id.UserID,
		Collection: models.CollectionMoods,
		RecordID:   recordID,
		Op:         models.OpDelete,
		CreatedAt:  s.now().UTC(),
	}
	return s.queue.Enqueue(ctx, entry)
}

// History returns the identity's ratings, most recent first.
func (s *MoodService) History(ctx context.Context, id session.Identity) ([]models.MoodRating, error) {
	return s.moods.ListByUser(ctx, id.UserID)
}

// ByCondition returns average ratings grouped by weather condition.
func (s *MoodService) ByCondition(ctx context.Context, id session.Identity) ([]moods.ConditionStat, error) {
	return s.moods.ByCondition(ctx, id.UserID)
}

// ByWeekday returns average ratings grouped by day of week (0 = Sunday).
func (s *MoodService) ByWeekday(ctx context.Context, id session.Identity) ([]moods.WeekdayStat, error) {
	return s.moods.ByWeekday(ctx, id.UserID)
}
