// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"train-booking/cmd"
	"train-booking/internal/data/cache"
	"train-booking/internal/data/repository"
	"train-booking/internal/event"
	"train-booking/internal/wire"
	"train-booking/migrations"
	"train-booking/pkg/database"
	"train-booking/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	if config.Database.Migrate {
		if err := database.RunMigrations(database.DSN(config.Database), migrations.FS); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		logger.Info("Migrations applied")
	}

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Redis only caches stop sequences, run without it when absent
	var topologyCache cache.TopologyCache
	rdb, err := database.InitRedis(config.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, topology cache disabled", zap.Error(err))
	} else if rdb != nil {
		defer rdb.Close()
		topologyCache = cache.NewTopologyCache(rdb, config.Redis.TopologyTTL, logger)
		logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
	}

	publisher := event.NewNopPublisher()
	if config.Broker.URL != "" {
		p, err := event.NewAMQPPublisher(config.Broker.URL, config.Broker.Queue, logger)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, sweep events disabled", zap.Error(err))
		} else {
			publisher = p
			logger.Info("RabbitMQ connected", zap.String("queue", config.Broker.Queue))
		}
	}
	defer publisher.Close()

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, config, topologyCache, publisher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.Sweeper.Start(ctx)
	defer app.Sweeper.Stop()

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("HTTP server stopped", zap.Error(err))
	}
}
