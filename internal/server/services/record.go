package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/weathermood/weathermood/internal/common"
	"github.com/weathermood/weathermood/internal/server/models"
	"github.com/weathermood/weathermood/internal/server/repositories/records"
)

// RecordService stores and serves collection documents. The payload is
// opaque to the server beyond being valid JSON.
type RecordService struct {
	records records.Repository
}

func NewRecordService(records records.Repository) *RecordService {
	return &RecordService{records: records}
}

// Upsert stores a document. UpdatedAt defaults to now when the client did
// not supply one.
func (s *RecordService) Upsert(ctx context.Context, userID, collection, recordID string, payload []byte, updatedAt time.Time) error {
	if recordID == "" || collection == "" {
		return fmt.Errorf("collection and record id are required: %w", common.ErrorConstraint)
	}
	if !json.Valid(payload) {
		return fmt.Errorf("payload is not valid JSON: %w", common.ErrorConstraint)
	}
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	return s.records.Upsert(ctx, &models.Record{
		UserID:     userID,
		Collection: collection,
		RecordID:   recordID,
		Payload:    payload,
		UpdatedAt:  updatedAt,
	})
}

// List returns every document in the collection.
func (s *RecordService) List(ctx context.Context, userID, collection string) ([]models.Record, error) {
	return s.records.List(ctx, userID, collection)
}

// Delete removes a document; a missing one yields common.ErrorNotFound.
func (s *RecordService) Delete(ctx context.Context, userID, collection, recordID string) error {
	return s.records.Delete(ctx, userID, collection, recordID)
}
