package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/weathermood/weathermood/internal/common"
	"github.com/weathermood/weathermood/internal/dbx"
	"github.com/weathermood/weathermood/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, rec *models.Record) error {
	query :=
		`INSERT INTO records (user_id, collection, record_id, payload, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, collection, record_id)
		 DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
		 `

	_, err := r.db.ExecContext(ctx, query,
		rec.UserID, rec.Collection, rec.RecordID, rec.Payload, rec.UpdatedAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) List(ctx context.Context, userID, collection string) ([]models.Record, error) {
	query :=
		`SELECT user_id, collection, record_id, payload, updated_at FROM records
		 WHERE user_id = $1 AND collection = $2
		 ORDER BY updated_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, collection)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Record
	for rows.Next() {
		var rec models.Record
		if err := rows.Scan(&rec.UserID, &rec.Collection, &rec.RecordID, &rec.Payload, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, collection, recordID string) (*models.Record, error) {
	query :=
		`SELECT user_id, collection, record_id, payload, updated_at FROM records
		 WHERE user_id = $1 AND collection = $2 AND record_id = $3
		 `

	rec := &models.Record{}
	err := r.db.QueryRowContext(ctx, query, userID, collection, recordID).
		Scan(&rec.UserID, &rec.Collection, &rec.RecordID, &rec.Payload, &rec.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, collection, recordID string) error {
	query :=
		`DELETE FROM records
		 WHERE user_id = $1 AND collection = $2 AND record_id = $3
		 `

	res, err := r.db.ExecContext(ctx, query, userID, collection, recordID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}
