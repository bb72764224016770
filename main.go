package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"herboscope/internal/config"
	"herboscope/internal/database"
	"herboscope/internal/lookup"
	"herboscope/internal/repositories"
	"herboscope/pkg/logger"
	"herboscope/pkg/rabbitmq"

	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users, plants, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer closeStore()

	httpClient := &http.Client{}
	deps := Deps{
		Users:      users,
		Plants:     plants,
		Identifier: lookup.NewPlantNetClient(cfg.PlantNetURL, cfg.PlantNetAPIKey, httpClient),
		Searcher:   lookup.NewWikimediaClient(cfg.WikimediaURL, httpClient, log),
		Log:        log,
	}
	if cfg.PlantNetAPIKey == "" {
		log.Warn("PLANTNET_API_KEY is not set; /identify will fail")
	}

	// Catalog events are best effort: without a broker the app still serves.
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			log.Warn("catalog events disabled", zap.Error(err))
		} else {
			defer mq.Close()
			deps.Events = mq
		}
	}

	app, err := NewApp(cfg, deps)
	if err != nil {
		log.Fatal("failed to build app", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", cfg.AppPort), zap.String("env", cfg.AppEnv))
		serverErr <- app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("shutting down server")
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			log.Error("error during shutdown", zap.Error(err))
		}
	}
	log.Info("server stopped")
}

// openStore connects to the configured store and returns its repositories
// plus a function releasing the connection. Failing to connect is fatal to
// the caller; there is no retry.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repositories.UserRepository, repositories.PlantRepository, func(), error) {
	switch cfg.DBDriver {
	case "postgres", "sqlite":
		db, err := database.OpenGORM(cfg.DBDriver, cfg.DatabaseDSN, log)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := database.CloseGORM(db); err != nil {
				log.Warn("failed to close database", zap.Error(err))
			}
		}
		return repositories.NewGORMUserRepository(db), repositories.NewGORMPlantRepository(db), closeFn, nil

	case "mongo":
		client, db, err := database.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn("failed to disconnect mongo", zap.Error(err))
			}
		}
		return repositories.NewMongoUserRepository(db), repositories.NewMongoPlantRepository(db), closeFn, nil

	case "memory":
		log.Warn("using in-memory store; data is lost on restart")
		return repositories.NewMemoryUserRepository(), repositories.NewMemoryPlantRepository(), func() {}, nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
