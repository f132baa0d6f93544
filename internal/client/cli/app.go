// Package cli wires the client components together and exposes them as a
// small subcommand-driven terminal application.
package cli

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/weathermood/weathermood/internal/client/config"
	"github.com/weathermood/weathermood/internal/client/remote"
	"github.com/weathermood/weathermood/internal/client/scheduler"
	"github.com/weathermood/weathermood/internal/client/services"
	"github.com/weathermood/weathermood/internal/client/session"
	"github.com/weathermood/weathermood/internal/client/store"
	"github.com/weathermood/weathermood/internal/client/sync"
	"github.com/weathermood/weathermood/internal/client/weather"
	"github.com/weathermood/weathermood/internal/logging"
)

type App struct {
	config    *config.Config
	store     *store.Store
	session   *session.Manager
	remote    *remote.HTTPClient
	engine    *sync.Engine
	scheduler *scheduler.Scheduler
	weather   *weather.Service
	cities    *services.CityService
	moods     *services.MoodService
	users     *services.UserService
	log       logging.Logger
	reader    *bufio.Reader
	out       io.Writer
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	sess := session.NewManager(st.Users, st.Cities, st.Prefs, log)
	mirror := remote.NewHTTPClient(cfg.MirrorBaseURL, cfg.FetchTimeout, sess)
	engine := sync.NewEngine(st.Cities, st.Moods, st.SyncQueue, mirror, log)

	provider := weather.NewOpenWeatherProvider(cfg.WeatherBaseURL, cfg.WeatherAPIKey, cfg.FetchTimeout)
	cache := weather.NewCache(st.WeatherCache)
	weatherSvc := weather.NewService(provider, cache, log, cfg.WeatherTTL, cfg.FetchTimeout)

	sched := scheduler.New(engine, sess, weatherSvc, nil, nil, log, scheduler.Options{
		Interval:   cfg.SyncInterval,
		Tolerance:  cfg.SyncTolerance,
		JobTimeout: cfg.JobTimeout,
		MinBackoff: cfg.MinBackoff,
	})

	return &App{
		config:    cfg,
		store:     st,
		session:   sess,
		remote:    mirror,
		engine:    engine,
		scheduler: sched,
		weather:   weatherSvc,
		cities:    services.NewCityService(st.DB(), st.Cities, st.SyncQueue, mirror, log),
		moods:     services.NewMoodService(st.Moods, st.SyncQueue, mirror, log),
		users:     services.NewUserService(st.DB(), st.Users, st.Prefs, log),
		log:       log,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
	}, nil
}

func (a *App) Close() error {
	a.scheduler.CancelAll()
	return a.store.Close()
}
