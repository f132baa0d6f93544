// Package httpapi exposes the mirror's document store over HTTP:
//
//	POST   /api/register
//	POST   /api/login
//	PUT    /api/users/:uid/collections/:collection/records/:id
//	GET    /api/users/:uid/collections/:collection/records
//	DELETE /api/users/:uid/collections/:collection/records/:id
package httpapi

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/weathermood/weathermood/internal/logging"
	"github.com/weathermood/weathermood/internal/server/services"
)

type Server struct {
	app     *fiber.App
	users   *services.UserService
	records *services.RecordService
	log     logging.Logger
	addr    string
}

func NewServer(addr string, secretKey []byte, users *services.UserService,
	records *services.RecordService, log logging.Logger) *Server {
	if log == nil {
		log = logging.NewDiscardLogger()
	}

	s := &Server{
		users:   users,
		records: records,
		log:     log,
		addr:    addr,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	app.Get("/health", s.health)
	app.Post("/api/register", s.register)
	app.Post("/api/login", s.login)

	api := app.Group("/api/users/:uid", authRequired(secretKey), userMatches)
	api.Put("/collections/:collection/records/:id", s.upsertRecord)
	api.Get("/collections/:collection/records", s.listRecords)
	api.Delete("/collections/:collection/records/:id", s.deleteRecord)

	s.app = app
	return s
}

// App exposes the fiber instance for tests (app.Test).
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case <-ctx.Done():
		return s.app.Shutdown()
	case err := <-errCh:
		return err
	}
}

// errorHandler maps unhandled errors to JSON responses. fiber.Error keeps
// its status; anything else is a 500 with the detail kept out of the body.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	} else {
		s.log.Error(c.Context(), "request failed", "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}
