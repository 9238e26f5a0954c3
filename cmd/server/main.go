package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cf_mashup/internal/api"
	"cf_mashup/internal/app/selector"
	"cf_mashup/internal/app/service"
	"cf_mashup/internal/domain/repository"
	"cf_mashup/internal/platform/cache"
	"cf_mashup/internal/platform/codeforces"
	"cf_mashup/internal/platform/config"
	"cf_mashup/internal/platform/database"
	"cf_mashup/internal/platform/logging"

	"github.com/redis/go-redis/v9"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 2. Initialize Logging
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logging.Info().Str("storage", cfg.Storage.Driver).Msg("Configuration loaded")

	ctx := context.Background()

	// 3. Initialize Mashup Store
	var mashupRepo repository.MashupRepository
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		mashupRepo = repository.NewMemoryMashupRepository()
		logging.Warn().Msg("Using in-memory mashup store; mashups are lost on restart")
	default:
		var db *sql.DB
		db, err = database.Connect(ctx, cfg.Database)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer database.Close(db)

		if err := database.EnsureSchema(ctx, db); err != nil {
			logging.Fatal().Err(err).Msg("Failed to create schema")
		}
		mashupRepo = repository.NewPgMashupRepository(db)
	}

	// 4. Initialize Redis (optional)
	var mashupCache cache.MashupCache = cache.NoopMashupCache{}
	if cfg.Redis.Enabled() {
		var rdb *redis.Client
		rdb, err = cache.Connect(ctx, cfg.Redis)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer cache.Close(rdb)
		mashupCache = cache.NewRedisMashupCache(rdb, cfg.Redis.CacheTTL)
	}

	// 5. Initialize Codeforces Client
	var cfAPI codeforces.API = codeforces.NewClient(cfg.Codeforces)
	if cfg.Codeforces.BreakerEnabled {
		cfAPI = codeforces.NewCircuitBreakerClient(cfAPI, codeforces.DefaultBreakerConfig(cfg.Codeforces.BreakerTimeout))
	}

	// 6. Initialize Services
	var selectorOpts []selector.Option
	if cfg.Selector.Seed != 0 {
		selectorOpts = append(selectorOpts, selector.WithSeed(cfg.Selector.Seed))
	}
	mashupService := service.NewMashupService(selector.New(cfAPI, selectorOpts...), mashupRepo, mashupCache)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(cfg.API, mashupService)

	server := &http.Server{
		Addr:         ":" + cfg.API.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.API.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logging.Info().Str("port", cfg.API.Port).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Str("port", cfg.API.Port).Msg("Could not listen")
		}
	}()

	<-stop // Wait for interrupt signal

	logging.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Server shutdown failed")
		return
	}

	logging.Info().Msg("Server stopped gracefully")
}
