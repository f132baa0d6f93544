package moods

import (
	"context"

	"github.com/weathermood/weathermood/internal/client/models"
)

// ConditionStat is the average rating observed under one weather condition.
type ConditionStat struct {
	Condition string
	AvgRating float64
	Count     int
}

// WeekdayStat is the average rating for one day of the week (0 = Sunday).
type WeekdayStat struct {
	Weekday   int
	AvgRating float64
	Count     int
}

// Repository describes operations for MoodRating records. A rating is
// immutable after creation; the only permitted updates are the sync-status
// transition and re-keying to another user. There is deliberately no
// general update method.
type Repository interface {
	// Insert stores a new rating and fills in its local id.
	Insert(ctx context.Context, m *models.MoodRating) error

	// UpsertByRecordID inserts or replaces a rating by its remote document
	// id. Used by the pull phase.
	UpsertByRecordID(ctx context.Context, m *models.MoodRating) error

	// GetByRecordID returns the rating with the given remote document id,
	// or common.ErrorNotFound.
	GetByRecordID(ctx context.Context, recordID string) (*models.MoodRating, error)

	// ListByUser returns the user's ratings, most recent first.
	ListByUser(ctx context.Context, userID string) ([]models.MoodRating, error)

	// Pending returns ratings awaiting push (sync_status = 0).
	Pending(ctx context.Context, userID string) ([]models.MoodRating, error)

	// MarkSynced advances a rating's sync status to done (one-way).
	MarkSynced(ctx context.Context, recordID string) error

	// Delete removes a rating by local id.
	Delete(ctx context.Context, id int64) error

	// ByCondition returns average ratings grouped by weather condition.
	ByCondition(ctx context.Context, userID string) ([]ConditionStat, error)

	// ByWeekday returns average ratings grouped by day of week.
	ByWeekday(ctx context.Context, userID string) ([]WeekdayStat, error)

	// ReassignUser moves all rows from one user id to another and resets
	// their sync status to pending.
	ReassignUser(ctx context.Context, fromUserID, toUserID string) error
}
