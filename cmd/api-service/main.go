package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/faenaapp/faena-backend/internal/api/handler"
	"github.com/faenaapp/faena-backend/internal/api/router"
	"github.com/faenaapp/faena-backend/internal/catalog"
	"github.com/faenaapp/faena-backend/internal/config"
	"github.com/faenaapp/faena-backend/internal/files"
	"github.com/faenaapp/faena-backend/internal/identity"
	"github.com/faenaapp/faena-backend/internal/jobs"
	"github.com/faenaapp/faena-backend/internal/matching"
	"github.com/faenaapp/faena-backend/internal/notify"
	"github.com/faenaapp/faena-backend/internal/offers"
	"github.com/faenaapp/faena-backend/internal/storage"
	"github.com/faenaapp/faena-backend/internal/users"
	"github.com/faenaapp/faena-backend/internal/workers"
	"github.com/faenaapp/faena-backend/shared/logger"
	"github.com/faenaapp/faena-backend/shared/postgresql"
	"github.com/faenaapp/faena-backend/shared/rabbitmq"
	"github.com/faenaapp/faena-backend/shared/redisconn"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	dbClient, err := initPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	appLogger.Info("Database connection established")

	rabbitClient, err := initRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}

	appLogger.Info("RabbitMQ connection established")

	// Redis is optional: without it the finder just skips caching.
	var cache *redis.Client
	if cfg.Redis.URL != "" {
		cache, err = redisconn.New(context.Background(), cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		appLogger.Info("Redis connection established")
	}

	deps, err := buildServices(cfg, appLogger.Logger, dbClient, rabbitClient, cache)
	if err != nil {
		return fmt.Errorf("failed to build services: %w", err)
	}

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	r := router.SetupRouter(deps)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed to start",
				slog.Any("error", err),
			)
			os.Exit(1)
		}
	}()

	appLogger.Info("API service is running",
		slog.String("address", addr),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer func() {
		cancel()
		dbClient.Close()
		rabbitClient.Close()
		if cache != nil {
			cache.Close()
		}
	}()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// buildServices wires the repositories and services behind the handlers.
func buildServices(cfg *config.Config, log *slog.Logger, dbClient *postgresql.Client, rabbitClient *rabbitmq.Client, cache *redis.Client) (*handler.Dependencies, error) {
	store := storage.NewStorage(dbClient)
	notifier := notify.NewPublisher(rabbitClient, log)

	matchingSvc := matching.NewService(matching.Config{
		Jobs:     store,
		Workers:  store,
		Matches:  store,
		Users:    store,
		Cache:    cache,
		CacheTTL: cfg.Redis.CacheTTL,
		Logger:   log,
	})

	offerSvc := offers.NewService(offers.Config{
		Offers:   store,
		Jobs:     store,
		Users:    store,
		Matcher:  matchingSvc,
		Notifier: notifier,
		Logger:   log,
	})

	var verifier users.Verifier
	if cfg.Identity.BaseURL != "" {
		verifier = identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.Token, cfg.Identity.Timeout)
	}

	// Uploads are optional: without a directory the upload route is not mounted.
	var fileStore files.Store
	if cfg.Uploads.Dir != "" {
		localStore, err := files.NewLocalStore(cfg.Uploads.Dir)
		if err != nil {
			return nil, fmt.Errorf("init upload store: %w", err)
		}
		fileStore = localStore
	}

	return &handler.Dependencies{
		Logger:   log,
		Jobs:     jobs.NewService(store, store, offerSvc, log),
		Matching: matchingSvc,
		Offers:   offerSvc,
		Workers:  workers.NewService(store, store, offerSvc, log),
		Users:    users.NewService(store, verifier, notifier, log),
		Catalog:  catalog.NewService(store),
		Files:    fileStore,
	}, nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	})
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	return postgresql.NewClient(&postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}, logger)
}

// initRabbitMQ initializes the RabbitMQ client
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	return rabbitmq.NewClient(&rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		RoutingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
	}, logger)
}
