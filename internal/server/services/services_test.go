package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/weathermood/weathermood/internal/common"
	"github.com/weathermood/weathermood/internal/server/models"
)

// fakeUserRepo is an in-memory users.Repository keyed by email.
type fakeUserRepo struct {
	byEmail map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*models.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, fmt.Errorf("email taken: %w", common.ErrorConstraint)
	}
	stored := *user
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	r.byEmail[stored.Email] = &stored
	return &stored, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

// fakeRecordRepo is an in-memory records.Repository.
type fakeRecordRepo struct {
	rows map[string]*models.Record
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{rows: map[string]*models.Record{}}
}

func recordKey(userID, collection, recordID string) string {
	return userID + "/" + collection + "/" + recordID
}

func (r *fakeRecordRepo) Upsert(_ context.Context, rec *models.Record) error {
	stored := *rec
	r.rows[recordKey(rec.UserID, rec.Collection, rec.RecordID)] = &stored
	return nil
}

func (r *fakeRecordRepo) List(_ context.Context, userID, collection string) ([]models.Record, error) {
	var out []models.Record
	for _, rec := range r.rows {
		if rec.UserID == userID && rec.Collection == collection {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *fakeRecordRepo) Get(_ context.Context, userID, collection, recordID string) (*models.Record, error) {
	rec, ok := r.rows[recordKey(userID, collection, recordID)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return rec, nil
}

func (r *fakeRecordRepo) Delete(_ context.Context, userID, collection, recordID string) error {
	key := recordKey(userID, collection, recordID)
	if _, ok := r.rows[key]; !ok {
		return common.ErrorNotFound
	}
	delete(r.rows, key)
	return nil
}
