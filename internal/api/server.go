package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/illegalcall/shot-tracker/internal/config"
	"github.com/illegalcall/shot-tracker/internal/pkg/supabase"
	"github.com/illegalcall/shot-tracker/internal/repository"
	"github.com/illegalcall/shot-tracker/internal/storage"
	"github.com/illegalcall/shot-tracker/pkg/database"
)

type Server struct {
	app      *fiber.App
	cfg      *config.Config
	db       *database.Clients
	repo     *repository.Repository
	producer sarama.SyncProducer
	storage  storage.Storage
	auth     supabase.Authenticator
	logger   *slog.Logger
	now      func() time.Time
}

func NewServer(
	cfg *config.Config,
	db *database.Clients,
	producer sarama.SyncProducer,
	store storage.Storage,
	auth supabase.Authenticator,
	logger *slog.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status}\n",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Server.MaxRequests,
		Expiration: cfg.Server.RequestTimeout,
	}))

	server := &Server{
		app:      app,
		cfg:      cfg,
		db:       db,
		repo:     repository.New(db.DB),
		producer: producer,
		storage:  store,
		auth:     auth,
		logger:   logger,
		now:      time.Now,
	}

	// Routes
	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.app.Get("/healthz", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.app.Group("/api")

	// Public routes
	api.Post("/auth/magic-link", s.handleMagicLink)
	api.Post("/auth/verify", s.handleVerify)

	// Protected routes
	protected := api.Use(s.requireAuth())
	protected.Get("/profile", s.handleGetProfile)
	protected.Put("/profile", s.handleUpdateProfile)
	protected.Post("/onboarding", s.handleOnboarding)

	protected.Get("/medications", s.handleListMedications)
	protected.Post("/medications", s.handleCreateMedication)
	protected.Put("/medications/:id", s.handleUpdateMedication)
	protected.Delete("/medications/:id", s.handleDeleteMedication)

	protected.Get("/injections", s.handleListInjections)
	protected.Post("/injections", s.handleLogInjection)

	protected.Get("/dashboard", s.handleDashboard)
	protected.Get("/calendar", s.handleCalendar)
	protected.Get("/stats", s.handleStats)

	protected.Get("/reminders", s.handleListReminders)
	protected.Post("/reminders", s.handleCreateReminder)
	protected.Delete("/reminders/:id", s.handleDeleteReminder)

	protected.Post("/exports", s.handleCreateExport)
	protected.Get("/exports/:id", s.handleGetExport)
	protected.Get("/exports/:id/download", s.handleDownloadExport)
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Port)
}

func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := s.db.DB.PingContext(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "error": "database"})
	}
	if err := s.db.Redis.Ping(ctx).Err(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "error": "redis"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// errorHandler keeps stray errors in the {"error": ...} shape.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}
