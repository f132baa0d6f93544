// Package sync drives push-then-pull reconciliation between the local store
// and the remote mirror, one user at a time.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/weathermood/weathermood/internal/client/models"
	"github.com/weathermood/weathermood/internal/client/remote"
	"github.com/weathermood/weathermood/internal/client/repositories/cities"
	"github.com/weathermood/weathermood/internal/client/repositories/moods"
	"github.com/weathermood/weathermood/internal/client/repositories/syncqueue"
	"github.com/weathermood/weathermood/internal/client/session"
	"github.com/weathermood/weathermood/internal/common"
	"github.com/weathermood/weathermood/internal/logging"
)

const defaultOpTimeout = 10 * time.Second

// Engine is the reconciliation engine. Synchronize is idempotent, safe to
// call concurrently for different users, and single-flighted per user.
type Engine struct {
	cities cities.Repository
	moods  moods.Repository
	queue  syncqueue.Repository
	remote remote.Client
	log    logging.Logger

	// opTimeout bounds each individual remote call so one unresponsive
	// record cannot starve the rest of the batch.
	opTimeout time.Duration

	group singleflight.Group
	now   func() time.Time
}

func NewEngine(cities cities.Repository, moods moods.Repository, queue syncqueue.Repository,
	remoteClient remote.Client, log logging.Logger) *Engine {
	if log == nil {
		log = logging.NewDiscardLogger()
	}
	return &Engine{
		cities:    cities,
		moods:     moods,
		queue:     queue,
		remote:    remoteClient,
		log:       log,
		opTimeout: defaultOpTimeout,
		now:       time.Now,
	}
}

// WithOpTimeout overrides the per-call network timeout.
func (e *Engine) WithOpTimeout(d time.Duration) *Engine {
	e.opTimeout = d
	return e
}

// WithClock overrides the engine's clock. Tests only.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Synchronize runs one push-then-pull pass for the identity's data. An
// anonymous identity is a no-op success: the phases are skipped entirely
// and no remote call is made.
//
// Concurrent calls for the same user share a single in-flight pass and
// receive the same report. Per-record failures never abort the pass; they
// are accumulated into the report. The error return is reserved for
// whole-call preconditions (local store unreachable).
func (e *Engine) Synchronize(ctx context.Context, id session.Identity) (*Report, error) {
	if !id.CanSync() {
		e.log.Debug(ctx, "skipping sync for anonymous identity", "user", id.UserID)
		report := newReport(id.UserID, e.now().UTC())
		report.FinishedAt = report.StartedAt
		return report, nil
	}

	v, err, shared := e.group.Do(id.UserID, func() (any, error) {
		return e.run(ctx, id.UserID)
	})
	if shared {
		e.log.Debug(ctx, "joined in-flight sync", "user", id.UserID)
	}
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

func (e *Engine) run(ctx context.Context, userID string) (*Report, error) {
	report := newReport(userID, e.now().UTC())
	log := e.log.With("user", userID)

	log.Info(ctx, "sync started")

	if err := e.syncCities(ctx, userID, report); err != nil {
		return nil, err
	}
	if err := e.syncMoods(ctx, userID, report); err != nil {
		return nil, err
	}

	report.FinishedAt = e.now().UTC()

	cs := report.stats(models.CollectionCities)
	ms := report.stats(models.CollectionMoods)
	log.Info(ctx, "sync finished",
		"status", string(report.Status()),
		"cities_pushed", cs.Pushed, "cities_pulled", cs.Pulled, "cities_failed", cs.Failed,
		"moods_pushed", ms.Pushed, "moods_pulled", ms.Pulled, "moods_failed", ms.Failed,
	)
	return report, nil
}

// syncCities pushes pending cities, drains queued city deletes, then pulls
// the authoritative remote state. Push strictly precedes pull so a pull
// cannot clobber an unpushed local change.
func (e *Engine) syncCities(ctx context.Context, userID string, report *Report) error {
	const collection = models.CollectionCities
	stats := report.stats(collection)

	pending, err := e.cities.Pending(ctx, userID)
	if err != nil {
		return fmt.Errorf("list pending cities: %w", err)
	}

	for _, c := range pending {
		if err := e.push(ctx, userID, collection, cityRecord(c)); err != nil {
			e.recordFailure(ctx, report, collection, err)
			continue
		}
		if err := e.cities.MarkSynced(ctx, c.ID); err != nil {
			// The remote already holds the record; the status stays
			// pending and the next pass re-pushes idempotently.
			e.recordFailure(ctx, report, collection, err)
			continue
		}
		stats.Pushed++
	}

	e.drainQueue(ctx, userID, collection, report)

	records, err := e.list(ctx, userID, collection)
	if err != nil {
		e.recordFailure(ctx, report, collection, err)
		return nil
	}

	for _, rec := range records {
		city, err := cityFromRecord(userID, rec)
		if err != nil {
			// Malformed remote data would fail identically on retry.
			e.log.Warn(ctx, "skipping malformed remote record", "collection", collection, "error", err)
			stats.Failed++
			report.addError(collection, err)
			continue
		}
		local, err := e.cities.GetByKey(ctx, userID, city.CityKey)
		if err == nil && local.UpdatedAt.After(city.UpdatedAt) {
			// Last writer wins: the local copy is newer.
			continue
		}
		if err := e.cities.Upsert(ctx, city); err != nil {
			e.recordFailure(ctx, report, collection, err)
			continue
		}
		stats.Pulled++
	}
	return nil
}

func (e *Engine) syncMoods(ctx context.Context, userID string, report *Report) error {
	const collection = models.CollectionMoods
	stats := report.stats(collection)

	pending, err := e.moods.Pending(ctx, userID)
	if err != nil {
		return fmt.Errorf("list pending moods: %w", err)
	}

	for _, m := range pending {
		if err := e.push(ctx, userID, collection, moodRecord(m)); err != nil {
			e.recordFailure(ctx, report, collection, err)
			continue
		}
		if err := e.moods.MarkSynced(ctx, m.RecordID); err != nil {
			e.recordFailure(ctx, report, collection, err)
			continue
		}
		stats.Pushed++
	}

	e.drainQueue(ctx, userID, collection, report)

	records, err := e.list(ctx, userID, collection)
	if err != nil {
		e.recordFailure(ctx, report, collection, err)
		return nil
	}

	for _, rec := range records {
		mood, err := moodFromRecord(userID, rec)
		if err != nil {
			e.log.Warn(ctx, "skipping malformed remote record", "collection", collection, "error", err)
			stats.Failed++
			report.addError(collection, err)
			continue
		}
		local, err := e.moods.GetByRecordID(ctx, mood.RecordID)
		if err == nil && local.UpdatedAt.After(mood.UpdatedAt) {
			continue
		}
		if err := e.moods.UpsertByRecordID(ctx, mood); err != nil {
			e.recordFailure(ctx, report, collection, err)
			continue
		}
		stats.Pulled++
	}
	return nil
}

// drainQueue replays queued mutations (deletes issued offline) for one
// collection. It runs between push and pull so a drained delete is not
// resurrected by the pull that follows.
func (e *Engine) drainQueue(ctx context.Context, userID, collection string, report *Report) {
	entries, err := e.queue.Pending(ctx, userID)
	if err != nil {
		e.recordFailure(ctx, report, collection, err)
		return
	}

	stats := report.stats(collection)
	for _, entry := range entries {
		if entry.Collection != collection || entry.Op != models.OpDelete {
			continue
		}

		opCtx, cancel := context.WithTimeout(ctx, e.opTimeout)
		err := e.remote.Delete(opCtx, userID, collection, entry.RecordID)
		cancel()

		// A record already gone remotely counts as done.
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			if common.Transient(err) {
				report.Transient = true
			}
			stats.Failed++
			report.addError(collection, err)
			if qerr := e.queue.IncrementRetry(ctx, entry.ID); qerr != nil {
				e.log.Warn(ctx, "failed to bump queue retry", "error", qerr)
			}
			continue
		}
		if err := e.queue.MarkDone(ctx, entry.ID); err != nil {
			e.recordFailure(ctx, report, collection, err)
			continue
		}
		stats.Pushed++
	}
}

func (e *Engine) push(ctx context.Context, userID, collection string, rec remote.Record) error {
	opCtx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()
	return e.remote.Upsert(opCtx, userID, collection, rec)
}

func (e *Engine) list(ctx context.Context, userID, collection string) ([]remote.Record, error) {
	opCtx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()
	return e.remote.List(opCtx, userID, collection)
}

func (e *Engine) recordFailure(ctx context.Context, report *Report, collection string, err error) {
	if common.Transient(err) {
		report.Transient = true
	}
	report.stats(collection).Failed++
	report.addError(collection, err)
	e.log.Warn(ctx, "sync record failure", "collection", collection, "error", err)
}
