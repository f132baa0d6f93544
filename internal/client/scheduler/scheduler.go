// Package scheduler registers periodic and one-shot synchronization jobs
// with execution constraints and an exponential retry/backoff policy.
package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	stdsync "sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/weathermood/weathermood/internal/client/session"
	"github.com/weathermood/weathermood/internal/client/sync"
	"github.com/weathermood/weathermood/internal/common"
	"github.com/weathermood/weathermood/internal/logging"
)

// Job tags. A tag identifies one registered job; re-registering a tag is a
// no-op.
const (
	TagPeriodic  = "weather_sync"
	TagImmediate = "immediate_sync"
)

// Synchronizer runs one reconciliation pass. *sync.Engine satisfies this.
type Synchronizer interface {
	Synchronize(ctx context.Context, id session.Identity) (*sync.Report, error)
}

// IdentitySource resolves the active identity. *session.Manager satisfies this.
type IdentitySource interface {
	Current(ctx context.Context) (session.Identity, error)
}

// CacheRefresher refreshes the weather cache after a successful pass.
// *weather.Service satisfies this.
type CacheRefresher interface {
	RefreshAll(ctx context.Context) (int, error)
}

// Options tune the scheduler's intervals. Zero values fall back to the
// defaults below (15 minute interval, 5 minute flex window, 30 second
// minimum backoff).
type Options struct {
	Interval   time.Duration
	Tolerance  time.Duration
	JobTimeout time.Duration
	MinBackoff time.Duration
	MaxRetries uint64
}

func (o *Options) applyDefaults() {
	if o.Interval <= 0 {
		o.Interval = 15 * time.Minute
	}
	if o.Tolerance < 0 {
		o.Tolerance = 0
	} else if o.Tolerance == 0 {
		o.Tolerance = 5 * time.Minute
	}
	if o.JobTimeout <= 0 {
		o.JobTimeout = 2 * time.Minute
	}
	if o.MinBackoff <= 0 {
		o.MinBackoff = 30 * time.Second
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 5
	}
}

// Scheduler owns the background jobs. It does not interpret error kinds
// itself: the engine's report classifies failures, and the scheduler honors
// that as "retry" vs "fail".
type Scheduler struct {
	engine    Synchronizer
	identity  IdentitySource
	refresher CacheRefresher
	net       Network
	battery   Battery
	log       logging.Logger
	opts      Options

	mu   stdsync.Mutex
	jobs map[string]context.CancelFunc
	wg   stdsync.WaitGroup
}

func New(engine Synchronizer, identity IdentitySource, refresher CacheRefresher,
	net Network, battery Battery, log logging.Logger, opts Options) *Scheduler {
	if net == nil {
		net = AlwaysOnline{}
	}
	if battery == nil {
		battery = NeverLow{}
	}
	if log == nil {
		log = logging.NewDiscardLogger()
	}
	opts.applyDefaults()
	return &Scheduler{
		engine:    engine,
		identity:  identity,
		refresher: refresher,
		net:       net,
		battery:   battery,
		log:       log,
		opts:      opts,
		jobs:      map[string]context.CancelFunc{},
	}
}

// SchedulePeriodic registers the recurring sync job under the constraints
// {network connected, battery not low}. Registration is idempotent: if the
// tag is already scheduled the existing schedule is kept.
func (s *Scheduler) SchedulePeriodic(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[TagPeriodic]; ok {
		s.log.Debug(ctx, "periodic sync already scheduled, keeping existing schedule")
		return
	}

	jobCtx, cancel := context.WithCancel(ctx)
	s.jobs[TagPeriodic] = cancel
	s.wg.Add(1)
	go s.runPeriodic(jobCtx)
	s.log.Info(ctx, "periodic sync scheduled", "interval", s.opts.Interval.String())
}

// ScheduleImmediate enqueues a one-shot sync under the weaker constraint
// {network connected}. It is independent of the periodic job's tag.
func (s *Scheduler) ScheduleImmediate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[TagImmediate]; ok {
		s.log.Debug(ctx, "immediate sync already running")
		return
	}

	jobCtx, cancel := context.WithCancel(ctx)
	s.jobs[TagImmediate] = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.clear(TagImmediate)
		if err := s.runOnce(jobCtx, false); err != nil {
			s.log.Error(jobCtx, "immediate sync failed", "error", err)
		}
	}()
}

// CancelAll cancels both the periodic and immediate jobs by tag and waits
// for them to stop.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	for tag, cancel := range s.jobs {
		cancel()
		delete(s.jobs, tag)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Scheduler) clear(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, tag)
}

func (s *Scheduler) runPeriodic(ctx context.Context) {
	defer s.wg.Done()

	timer := time.NewTimer(s.nextDelay())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := s.runOnce(ctx, true); err != nil && ctx.Err() == nil {
			s.log.Error(ctx, "periodic sync failed", "error", err)
		}

		timer.Reset(s.nextDelay())
	}
}

// nextDelay spreads runs across the tolerance window so periodic work does
// not fire at a fixed phase.
func (s *Scheduler) nextDelay() time.Duration {
	delay := s.opts.Interval
	if s.opts.Tolerance > 0 {
		delay += time.Duration(rand.Int63n(int64(s.opts.Tolerance)))
	}
	return delay
}

// runOnce executes one job: constraint check, synchronize, cache refresh.
// Transient failures (as classified by the engine's report) are retried
// with exponential backoff from the configured floor; everything else is
// terminal for this run.
func (s *Scheduler) runOnce(ctx context.Context, requireBattery bool) error {
	backoff := retry.WithMaxRetries(s.opts.MaxRetries, retry.NewExponential(s.opts.MinBackoff))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if !s.net.Online(ctx) {
			return retry.RetryableError(fmt.Errorf("constraint not met: %w", common.ErrorUnavailable))
		}
		if requireBattery && s.battery.Low(ctx) {
			return retry.RetryableError(fmt.Errorf("constraint not met: battery low"))
		}

		jobCtx, cancel := context.WithTimeout(ctx, s.opts.JobTimeout)
		defer cancel()

		id, err := s.identity.Current(jobCtx)
		if err != nil {
			// Bad identity is not retryable; it would fail identically.
			return err
		}

		report, err := s.engine.Synchronize(jobCtx, id)
		if err != nil {
			if common.Transient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		if report.Retryable() {
			return retry.RetryableError(fmt.Errorf("sync %s: %w", report.Status(), common.ErrorUnavailable))
		}

		if s.refresher != nil {
			if n, err := s.refresher.RefreshAll(jobCtx); err != nil {
				s.log.Warn(jobCtx, "weather cache refresh failed", "error", err)
			} else if n > 0 {
				s.log.Debug(jobCtx, "weather cache refreshed", "entries", n)
			}
		}
		return nil
	})
}
