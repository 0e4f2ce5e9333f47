package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/wikistats/shorturls/internal/config"
	"github.com/wikistats/shorturls/internal/server"
	"github.com/wikistats/shorturls/internal/stats"
)

// App holds the application dependencies and configuration.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Redis   *redis.Client
	Server  *server.Server
	Handler *stats.Handler
}

// New initializes and returns a new App instance with all dependencies wired up.
func New(ctx context.Context) (*App, error) {
	if err := loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.App.LogLevel)

	logger.Info("starting application",
		"env", cfg.App.Environment,
		"dumps_dir", cfg.Paths.DumpsDir,
		"cache_dir", cfg.Paths.CacheDir,
	)

	// Optional hot cache. A dead Redis is not fatal: the service degrades
	// to the file cache alone.
	rdb := connectRedis(ctx, cfg, logger)

	var hot stats.Store
	if rdb != nil {
		hot = stats.NewRedisStore(rdb, cfg.Redis.TTL)
	}

	// Setup application dependencies
	svc := stats.NewService(stats.ServiceConfig{
		DumpsDir: cfg.Paths.DumpsDir,
		Files:    stats.NewFileStore(cfg.Paths.CacheDir),
		Hot:      hot,
		Logger:   logger,
	})
	handler := stats.NewHandler(stats.HandlerConfig{
		Service: svc,
		Logger:  logger,
	})

	// Create server
	srv := server.New(cfg, logger, handler)

	logger.Info("application initialized",
		"port", cfg.Server.Port,
		"redis", cfg.Redis.Enabled(),
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Redis:   rdb,
		Server:  srv,
		Handler: handler,
	}, nil
}

// Start starts the application server.
func (a *App) Start(ctx context.Context) error {
	a.Logger.Info("server starting", "port", a.Config.Server.Port)

	if err := a.Server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down application")

	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("failed to close redis client", "error", err)
		} else {
			a.Logger.Info("redis connection closed")
		}
	}

	return nil
}

// loadEnv loads .env file only in non-production environments.
func loadEnv() error {
	env := os.Getenv("APP_ENV")
	if env == "development" || env == "test" {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("no .env file found.")
		}
	}
	return nil
}

// setupLogger creates a structured logger based on the log level.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

// connectRedis builds the hot-cache client when one is configured. Returns
// nil (hot cache disabled) when Redis is unconfigured or unreachable.
func connectRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) *redis.Client {
	if !cfg.Redis.Enabled() {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Password: cfg.Redis.Password,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, continuing without hot cache",
			"addr", cfg.Redis.Addr,
			"error", err,
		)
		_ = rdb.Close()
		return nil
	}

	logger.Info("redis connection established", "addr", cfg.Redis.Addr)
	return rdb
}
