package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weathermood/weathermood/internal/client/models"
	"github.com/weathermood/weathermood/internal/client/repositories/cities"
	"github.com/weathermood/weathermood/internal/client/repositories/moods"
	"github.com/weathermood/weathermood/internal/client/repositories/syncqueue"
	"github.com/weathermood/weathermood/internal/client/session"
	"github.com/weathermood/weathermood/internal/client/sync"
	"github.com/weathermood/weathermood/internal/common"
)

func setupCityService(t *testing.T) (*CityService, cities.Repository, syncqueue.Repository, *fakeRemote) {
	t.Helper()
	db := setupDB(t)
	cityRepo := cities.NewSQLiteRepository(db)
	queueRepo := syncqueue.NewSQLiteRepository(db)
	mirror := newFakeRemote()
	return NewCityService(db, cityRepo, queueRepo, mirror, nil), cityRepo, queueRepo, mirror
}

func authed(userID string) session.Identity {
	return session.Identity{UserID: userID, Email: userID + "@example.com"}
}

func anonymous() session.Identity {
	return session.Identity{UserID: "anon-1", Anonymous: true}
}

func TestAddFavorite_FirstCityBecomesDefault(t *testing.T) {
	svc, _, _, mirror := setupCityService(t)
	ctx := context.Background()

	city, err := svc.AddFavorite(ctx, authed("u1"), CityInput{CityKey: "524901", Name: "Moscow"})
	require.NoError(t, err)
	assert.True(t, city.IsDefault)

	// pushed opportunistically and acknowledged
	assert.Equal(t, 1, mirror.upserts)
	assert.Equal(t, models.SyncDone, city.SyncStatus)

	second, err := svc.AddFavorite(ctx, authed("u1"), CityInput{CityKey: "2950159", Name: "Berlin"})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)
}

func TestAddFavorite_AnonymousStaysLocal(t *testing.T) {
	svc, repo, _, mirror := setupCityService(t)
	ctx := context.Background()

	city, err := svc.AddFavorite(ctx, anonymous(), CityInput{CityKey: "1", Name: "Oslo"})
	require.NoError(t, err)
	assert.Zero(t, mirror.upserts, "anonymous data never reaches the mirror")
	assert.Equal(t, models.SyncPending, city.SyncStatus)

	got, err := repo.GetByKey(ctx, "anon-1", "1")
	require.NoError(t, err)
	assert.Equal(t, "Oslo", got.Name)
}

func TestAddFavorite_FailedPushKeepsPending(t *testing.T) {
	svc, repo, _, mirror := setupCityService(t)
	ctx := context.Background()

	mirror.failNext = fmt.Errorf("%w: down", common.ErrorUnavailable)
	city, err := svc.AddFavorite(ctx, authed("u1"), CityInput{CityKey: "1", Name: "Oslo"})
	require.NoError(t, err, "a failed opportunistic push must not fail the save")
	assert.Equal(t, models.SyncPending, city.SyncStatus)

	pending, err := repo.Pending(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestAddFavorite_RejectsDuplicates(t *testing.T) {
	svc, _, _, _ := setupCityService(t)
	ctx := context.Background()

	_, err := svc.AddFavorite(ctx, authed("u1"), CityInput{CityKey: "1", Name: "Moscow, RU"})
	require.NoError(t, err)

	// same key
	_, err = svc.AddFavorite(ctx, authed("u1"), CityInput{CityKey: "1", Name: "Other"})
	assert.ErrorIs(t, err, common.ErrorConstraint)

	// same base name, different case and suffix
	_, err = svc.AddFavorite(ctx, authed("u1"), CityInput{CityKey: "2", Name: "moscow"})
	assert.ErrorIs(t, err, common.ErrorConstraint)

	// missing fields
	_, err = svc.AddFavorite(ctx, authed("u1"), CityInput{Name: "NoKey"})
	assert.ErrorIs(t, err, common.ErrorConstraint)
}

func TestSetDefault_MovesFlag(t *testing.T) {
	svc, repo, _, _ := setupCityService(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return base })

	// both cities synced; the flip must make them pending again
	_, err := svc.AddFavorite(ctx, authed("u1"), CityInput{CityKey: "1", Name: "Moscow"})
	require.NoError(t, err)
	_, err = svc.AddFavorite(ctx, authed("u1"), CityInput{CityKey: "2", Name: "Berlin"})
	require.NoError(t, err)

	svc.WithClock(func() time.Time { return base.Add(time.Hour) })
	require.NoError(t, svc.SetDefault(ctx, authed("u1"), "2"))

	list, err := svc.List(ctx, authed("u1"))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[0].CityKey)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)

	// the change is pushed by the next pass and, with the bumped timestamp,
	// wins last-writer-wins against the mirror's pre-flip copies
	pending, err := repo.Pending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, c := range list {
		assert.Equal(t, models.SyncPending, c.SyncStatus, "city %s", c.CityKey)
		assert.Equal(t, base.Add(time.Hour), c.UpdatedAt, "city %s", c.CityKey)
	}
}

func TestSetDefault_SurvivesSync(t *testing.T) {
	db := setupDB(t)
	cityRepo := cities.NewSQLiteRepository(db)
	queueRepo := syncqueue.NewSQLiteRepository(db)
	moodRepo := moods.NewSQLiteRepository(db)
	mirror := newFakeRemote()
	svc := NewCityService(db, cityRepo, queueRepo, mirror, nil)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return base })

	// both cities reach the mirror with city 1 as the default
	_, err := svc.AddFavorite(ctx, authed("u1"), CityInput{CityKey: "1", Name: "Moscow"})
	require.NoError(t, err)
	_, err = svc.AddFavorite(ctx, authed("u1"), CityInput{CityKey: "2", Name: "Berlin"})
	require.NoError(t, err)

	svc.WithClock(func() time.Time { return base.Add(time.Hour) })
	require.NoError(t, svc.SetDefault(ctx, authed("u1"), "2"))

	// the flip must be pushed by the next pass; the pull that follows must
	// not revert it to the mirror's pre-flip copies
	engine := sync.NewEngine(cityRepo, moodRepo, queueRepo, mirror, nil)
	report, err := engine.Synchronize(ctx, authed("u1"))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Collections[models.CollectionCities].Pushed)

	list, err := svc.List(ctx, authed("u1"))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[0].CityKey, "default flip must survive a full sync pass")
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)
}

func TestRemove_DeletesRemotely(t *testing.T) {
	svc, repo, queueRepo, mirror := setupCityService(t)
	ctx := context.Background()

	_, err := svc.AddFavorite(ctx, authed("u1"), CityInput{CityKey: "1", Name: "Moscow"})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, authed("u1"), "1"))

	_, err = repo.GetByKey(ctx, "u1", "1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, 1, mirror.deletes)

	entries, err := queueRepo.Pending(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, entries, "successful remote delete needs no queue entry")
}

func TestRemove_QueuesDeleteWhenRemoteFails(t *testing.T) {
	svc, _, queueRepo, mirror := setupCityService(t)
	ctx := context.Background()

	_, err := svc.AddFavorite(ctx, authed("u1"), CityInput{CityKey: "1", Name: "Moscow"})
	require.NoError(t, err)

	mirror.failNext = fmt.Errorf("%w: down", common.ErrorUnavailable)
	require.NoError(t, svc.Remove(ctx, authed("u1"), "1"))

	entries, err := queueRepo.Pending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].RecordID)
	assert.Equal(t, models.OpDelete, entries[0].Op)
	assert.Equal(t, models.CollectionCities, entries[0].Collection)
}

func TestRemove_AnonymousSkipsRemote(t *testing.T) {
	svc, _, queueRepo, mirror := setupCityService(t)
	ctx := context.Background()

	_, err := svc.AddFavorite(ctx, anonymous(), CityInput{CityKey: "1", Name: "Oslo"})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, anonymous(), "1"))
	assert.Zero(t, mirror.deletes)

	entries, err := queueRepo.Pending(ctx, "anon-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
