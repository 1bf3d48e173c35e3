package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/quizpaper/pkg/logger"
	"github.com/papercomputeco/quizpaper/pkg/storage"
)

// Server is the API server for browsing stored papers.
type Server struct {
	config Config
	driver storage.Driver
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The driver is injected so it can be shared with a generation running in
// the same process.
func NewServer(config Config, driver storage.Driver, log *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		driver: driver,
		logger: logger.OrNop(log).With("component", "api"),
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/v1/papers", s.handleListPapers)
	app.Get("/v1/papers/:id", s.handleGetPaper)
	app.Get("/v1/papers/:id/preview", s.handlePreviewPaper)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
