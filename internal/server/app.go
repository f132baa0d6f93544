// Package server initializes and runs the mirror server: it opens the
// database, runs migrations, wires the services and starts the HTTP API,
// shutting everything down on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/weathermood/weathermood/internal/logging"
	"github.com/weathermood/weathermood/internal/server/config"
	"github.com/weathermood/weathermood/internal/server/httpapi"
	"github.com/weathermood/weathermood/internal/server/repositories/repomanager"
	"github.com/weathermood/weathermood/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	us := services.NewUserService(rm.Users(db), c)
	rs := services.NewRecordService(rm.Records(db))
	api := httpapi.NewServer(c.EndpointAddr, []byte(c.SecretKey), us, rs, logger)

	return &App{config: c, logger: logger, db: db, api: api}, nil
}

func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "starting mirror server", "addr", app.config.EndpointAddr)
	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}()

	return app.api.Run(ctx)
}
