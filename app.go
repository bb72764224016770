package main

import (
	"time"

	"herboscope/internal/config"
	"herboscope/internal/handlers"
	"herboscope/internal/lookup"
	"herboscope/internal/middleware"
	"herboscope/internal/repositories"
	"herboscope/internal/services"
	"herboscope/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

// Deps are the collaborators NewApp wires into the HTTP routes.
type Deps struct {
	Users      repositories.UserRepository
	Plants     repositories.PlantRepository
	Identifier lookup.Identifier
	Searcher   lookup.ImageSearcher
	// Events may be nil.
	Events services.EventPublisher
	Log    *zap.Logger
}

// NewApp builds the Fiber application: middleware, static image mount,
// catalog, account and lookup routes and the health check.
func NewApp(cfg *config.Config, deps Deps) (*fiber.App, error) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	store, err := storage.NewImageStore(cfg.UploadDir, cfg.StaticPrefix)
	if err != nil {
		return nil, err
	}

	// --- Initialize Services ---
	authService := services.NewAuthService(deps.Users, cfg.JWTSecret, cfg.TokenTTL)
	userService := services.NewUserService(deps.Users, authService)
	plantService := services.NewPlantService(deps.Plants, store.Mount(), deps.Events, log)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      "herboscope",
		BodyLimit:    cfg.BodyLimitMB << 20,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	// --- Middleware ---
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Static(store.Mount(), store.Dir())

	// --- Routes ---
	handlers.NewAuthHandler(userService, authService).RegisterRoutes(app)
	handlers.NewPlantHandler(plantService).RegisterRoutes(app)
	handlers.NewUploadHandler(store).RegisterRoutes(app)
	handlers.NewLookupHandler(deps.Identifier, deps.Searcher).RegisterRoutes(app)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app, nil
}
