package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/pressdesk/internal/api"
	"github.com/bilgisen/pressdesk/internal/backend"
	"github.com/bilgisen/pressdesk/internal/backend/localfs"
	"github.com/bilgisen/pressdesk/internal/backend/r2"
	"github.com/bilgisen/pressdesk/internal/backend/supabase"
	"github.com/bilgisen/pressdesk/internal/cache"
	"github.com/bilgisen/pressdesk/internal/config"
	"github.com/bilgisen/pressdesk/internal/logger"
	"github.com/bilgisen/pressdesk/internal/middleware"
	"github.com/bilgisen/pressdesk/internal/views"
)

// localFilesPrefix is where the local storage driver is served from
const localFilesPrefix = "/files"

func main() {
	// Load and validate configuration
	cfg := config.Load()

	output := "stdout"
	if cfg.LogFile != "" {
		output = cfg.LogFile
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: output,
		Pretty: cfg.LogPretty,
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Str("env", cfg.Env).Msg("Starting application...")

	ctx := context.Background()

	client := supabase.New(cfg.SupabaseURL, cfg.SupabaseAnonKey, supabase.WithTimeout(cfg.HTTPTimeout)).Backend()

	var routes api.RouteOptions
	storage, filesRoot, err := newObjectStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to initialize object storage")
	}
	if storage != nil {
		client.Storage = storage
	}
	routes.FilesRoot = filesRoot
	log.Info().Str("driver", cfg.StorageDriver).Msg("Object storage ready")

	sessionStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.SessionStore).Msg("Failed to initialize session store")
	}
	defer func() {
		log.Info().Msg("Closing session store...")
		if err := sessionStore.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing session store")
		}
	}()

	sessions := middleware.NewSessions(sessionStore, client.Auth, cfg.SessionTTL, cfg.CookieSecure)

	app := fiber.New(fiber.Config{
		AppName:      "pressdesk",
		Views:        views.New(),
		BodyLimit:    cfg.BodyLimit,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})

	api.SetupRoutes(app, api.NewHandlers(client, sessions), routes)

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// newObjectStore returns the store for the configured driver, or nil to keep
// the hosted backend's storage. filesRoot is set when files are served locally.
func newObjectStore(ctx context.Context, cfg *config.Config) (store backend.ObjectStore, filesRoot string, err error) {
	switch cfg.StorageDriver {
	case config.StorageR2:
		s, err := r2.New(ctx, r2.Config{
			Endpoint:        cfg.R2ResolvedEndpoint(),
			AccessKeyID:     cfg.R2AccessKey,
			SecretAccessKey: cfg.R2SecretKey,
			Bucket:          cfg.R2Bucket,
			PublicURL:       cfg.R2PublicURL,
		})
		if err != nil {
			return nil, "", err
		}
		return s, "", nil
	case config.StorageLocal:
		s, err := localfs.New(cfg.StoragePath, localFilesPrefix)
		if err != nil {
			return nil, "", err
		}
		return s, s.Root(), nil
	default:
		return nil, "", nil
	}
}

func newSessionStore(ctx context.Context, cfg *config.Config) (cache.SessionStore, error) {
	if cfg.SessionStore == config.SessionMemory {
		if cfg.IsProduction() {
			logger.Get().Warn().Msg("In-memory sessions do not survive restarts")
		}
		return cache.NewMemoryStore(), nil
	}
	store, err := cache.NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix)
	if err != nil {
		return nil, err
	}
	logger.Get().Debug().Str("prefix", cfg.RedisPrefix).Msg("Redis session store connected")
	return store, nil
}
