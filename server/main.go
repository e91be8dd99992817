// Command server runs the camguard HTTP backend: REST API, bridge link
// endpoints, feed streams and the Telegram webhook.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/camguard/camguard"
	"github.com/camguard/camguard/postgres"
	"github.com/camguard/camguard/telegram"
)

type server struct {
	store camguard.Store
	bot   *telegram.Client
	cfg   Config
	log   *slog.Logger
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Error("connect", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	srv := &server{
		store: postgres.New(pool),
		cfg:   cfg,
		log:   log,
	}
	if cfg.TelegramToken != "" {
		srv.bot = telegram.NewClient(cfg.TelegramToken)
	} else {
		log.Warn("TELEGRAM_TOKEN not set, notifications disabled")
	}

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(logger.New())

	srv.routes(app)

	log.Info("listening", "addr", cfg.ListenAddr)
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Error("listen", "error", err)
		os.Exit(1)
	}
}

// routes registers the HTTP surface. Authentication happens inside each
// handler through the auth helpers: user routes take a Bearer token, bridge
// ("link") routes take the Access-Token header.
func (s *server) routes(app *fiber.App) {
	app.Get("/status", s.status)
	app.Post("/hooks/telegram/:secret", s.telegramHook)

	api := app.Group("/api/v1")

	api.Post("/schema", s.createSchema)
	api.Delete("/schema", s.dropSchema)

	companies := api.Group("/companies")
	companies.Get("/", s.listCompanies)
	companies.Post("/", s.createCompany)
	companies.Get("/:id", s.getCompany)
	companies.Put("/:id", s.updateCompany)
	companies.Delete("/:id", s.removeCompany)

	users := api.Group("/users")
	users.Get("/me", s.currentUser)
	users.Get("/", s.listUsers)
	users.Post("/", s.createUser)

	camServers := api.Group("/cam-servers")
	camServers.Get("/me", s.currentCamServer)
	camServers.Get("/", s.listCamServers)
	camServers.Post("/", s.createCamServer)
	camServers.Get("/:id", s.getCamServer)
	camServers.Put("/:id", s.updateCamServer)
	camServers.Delete("/:id", s.removeCamServer)

	cameras := api.Group("/cameras")
	cameras.Get("/link", s.linkCameras)
	cameras.Get("/stream/link", s.streamCameras)
	cameras.Put("/:id/status", s.cameraStatus)
	cameras.Get("/", s.listCameras)
	cameras.Post("/", s.createCamera)
	cameras.Get("/:id", s.getCamera)
	cameras.Put("/:id", s.updateCamera)
	cameras.Delete("/:id", s.removeCamera)

	aiServers := api.Group("/ai-servers")
	aiServers.Get("/", s.listAIServers)
	aiServers.Post("/", s.createAIServer)
	aiServers.Get("/:id", s.getAIServer)
	aiServers.Put("/:id", s.updateAIServer)
	aiServers.Delete("/:id", s.removeAIServer)

	aiTypes := api.Group("/ai-types")
	aiTypes.Get("/", s.listAITypes)
	aiTypes.Post("/", s.createAIType)
	aiTypes.Get("/:id", s.getAIType)
	aiTypes.Put("/:id", s.updateAIType)
	aiTypes.Delete("/:id", s.removeAIType)

	sequences := api.Group("/ai-sequences")
	sequences.Get("/link", s.linkSequences)
	sequences.Get("/stream/link", s.streamSequences)
	sequences.Get("/", s.listSequences)
	sequences.Post("/", s.createSequence)
	sequences.Get("/:id", s.getSequence)
	sequences.Put("/:id", s.updateSequence)
	sequences.Delete("/:id", s.removeSequence)

	mappings := api.Group("/mappings")
	mappings.Get("/link", s.linkMappings)
	mappings.Get("/", s.listMappings)
	mappings.Post("/", s.createMapping)
	mappings.Get("/:id", s.getMapping)
	mappings.Put("/:id", s.updateMapping)
	mappings.Delete("/:id", s.removeMapping)

	incidents := api.Group("/incidents")
	incidents.Get("/stream/link", s.streamIncidents)
	incidents.Post("/", s.createIncident)
	incidents.Get("/", s.listIncidents)
	incidents.Get("/:id", s.getIncident)
	incidents.Put("/:id", s.updateIncident)
	incidents.Delete("/:id", s.removeIncident)
	incidents.Get("/:id/acknowledged", s.acknowledgeIncident)
	incidents.Get("/:id/inaccurate", s.inaccurateIncident)
}

func (s *server) createSchema(c fiber.Ctx) error {
	if _, err := s.superuser(c); err != nil {
		return s.fail(c, err)
	}
	if err := s.store.CreateSchema(c.Context()); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "schema created"})
}

func (s *server) dropSchema(c fiber.Ctx) error {
	if _, err := s.superuser(c); err != nil {
		return s.fail(c, err)
	}
	if err := s.store.DropSchema(c.Context()); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "schema dropped"})
}
