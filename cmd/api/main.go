// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the manga site HTTP server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Open the media root and the image optimiser.
//  7. Wire repositories, services and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aischii/mangaWebsite/internal/api"
	"github.com/Aischii/mangaWebsite/internal/core/content"
	"github.com/Aischii/mangaWebsite/internal/core/library"
	"github.com/Aischii/mangaWebsite/internal/core/shelf"
	"github.com/Aischii/mangaWebsite/internal/platform/config"
	"github.com/Aischii/mangaWebsite/internal/platform/constants"
	"github.com/Aischii/mangaWebsite/internal/platform/imageopt"
	"github.com/Aischii/mangaWebsite/internal/platform/migration"
	pgstore "github.com/Aischii/mangaWebsite/internal/platform/postgres"
	redisstore "github.com/Aischii/mangaWebsite/internal/platform/redis"
	"github.com/Aischii/mangaWebsite/internal/platform/sec"
	"github.com/Aischii/mangaWebsite/internal/platform/storage"
	"github.com/Aischii/mangaWebsite/internal/social"
	"github.com/Aischii/mangaWebsite/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("media_root", cfg.MediaRoot),
	)

	// Startup deadline so misconfiguration fails fast instead of hanging
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("postgres_pool_closing")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("redis_client_closing")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.NewRunner(cfg.DatabaseURL, cfg.MigrationPath, log).Up(), "run migrations")

	// ── 6. Media & Images ─────────────────────────────────────────────────
	disk, err := storage.NewDisk(cfg.MediaRoot, cfg.MediaURLPrefix)
	must(log, err, "open media root")

	var optimizer imageopt.Optimizer = imageopt.Noop{}
	if cfg.ImageOptimize {
		optimizer = imageopt.NewResizer(cfg.ImageMaxWidth, cfg.ImageQuality, log)
	}

	tokens, err := sec.NewTokenService(cfg.SessionSecret, constants.AuthIssuer)
	must(log, err, "initialize token service")

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(
		auth.NewUserRepository(pool),
		auth.NewSessionRepository(rdb),
		tokens,
		disk,
		cfg.SessionTTL,
		log,
	)

	catalog := library.NewRepository(pool)
	cachedCatalog := library.NewCachedRepository(catalog, rdb, cfg.CacheTTL, log)

	shelfService := shelf.NewService(shelf.NewRepository(pool), disk, log)
	socialService := social.NewService(social.NewRepository(pool), disk, log)
	libraryService := library.NewService(cachedCatalog, shelfService, socialService, disk, cfg.LatestChaptersPerManga, log)
	contentService := content.NewService(content.NewRepository(pool), catalog, disk, optimizer, cachedCatalog, log)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		CheckCache:    func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
		CheckMedia: func(context.Context) error {
			_, err := os.Stat(disk.Root())
			return err
		},
	}, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Media:     api.MediaHandler(disk.Root()),
		Auth:      auth.NewHandler(authService, cfg.MaxUploadBytes, cfg.IsProduction()),
		Library:   library.NewHandler(libraryService),
		Shelf:     shelf.NewHandler(shelfService),
		Social:    social.NewHandler(socialService),
		Content:   content.NewHandler(contentService, cfg.MaxUploadBytes),
	}

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, api.Identity{
		Verifier:    tokens,
		Sessions:    authService,
		Preferences: authService,
	}, handlers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", "mangasite"))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// Only for startup wiring. After startup, errors are returned and handled.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
