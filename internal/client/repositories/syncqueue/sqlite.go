package syncqueue

import (
	"context"
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

func (r *SQLiteRepository) Enqueue(ctx context.Context, e *models.SyncQueueEntry) error {
	query := `INSERT INTO sync_queue (user_id, collection, record_id, op, payload, created_at, retry_count, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		e.UserID, e.Collection, e.RecordID, int(e.Op), e.Payload,
		timex.ToMillis(e.CreatedAt), e.RetryCount, e.Status)
	if err != nil {
		return fmt.Errorf("failed to enqueue sync entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert id: %w", err)
	}
	e.ID = id
	return nil
}

func (r *SQLiteRepository) Pending(ctx context.Context, userID string) ([]models.SyncQueueEntry, error) {
	query := `SELECT id, user_id, collection, record_id, op, payload, created_at, retry_count, status
		FROM sync_queue WHERE user_id = ? AND status = 0 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select sync queue: %w", err)
	}
	defer rows.Close()

	var result []models.SyncQueueEntry
	for rows.Next() {
		var e models.SyncQueueEntry
		var op int
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.UserID, &e.Collection, &e.RecordID, &op,
			&e.Payload, &createdAt, &e.RetryCount, &e.Status); err != nil {
			return nil, err
		}
		e.Op = models.QueueOp(op)
		e.CreatedAt = timex.FromMillis(createdAt)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) MarkDone(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sync_queue SET status = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark sync entry done: %w", err)
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

func (r *SQLiteRepository) IncrementRetry(ctx context.Context, id int64) error {
	query := `UPDATE sync_queue SET retry_count = retry_count + 1 WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to increment retry count: %w", err)
	}
	return nil
}
