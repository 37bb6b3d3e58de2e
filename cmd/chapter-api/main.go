// main is the entry point of the chapter website API.
//
// STARTUP SEQUENCE:
//  1. Load configuration (.env, then the YAML file, then env overrides)
//  2. Initialise the logger
//  3. Open the configured document store
//  4. Build the route table
//  5. Start the HTTP server in a separate goroutine
//  6. Block until SIGINT / SIGTERM
//  7. Gracefully shut down, then close the store
//
// RUNNING THE SERVER:
//
//	go run ./cmd/chapter-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/chapter-api
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/aanand-mishra/chapter-api/internal/auth"
	"github.com/aanand-mishra/chapter-api/internal/config"
	"github.com/aanand-mishra/chapter-api/internal/http/router"
	"github.com/aanand-mishra/chapter-api/internal/storage"
	"github.com/aanand-mishra/chapter-api/internal/storage/memory"
	"github.com/aanand-mishra/chapter-api/internal/storage/mongodb"
	"github.com/aanand-mishra/chapter-api/internal/storage/postgres"
	"github.com/aanand-mishra/chapter-api/internal/storage/sqlite"
)

const version = "1.0.0"

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := setupLogger(cfg.Env)
	defer log.Sync()

	log.Info("starting chapter-api",
		zap.String("env", cfg.Env),
		zap.String("version", version),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	// Handlers only see the storage.Storage interface; the driver is
	// picked here from config.
	store, err := openStorage(context.Background(), cfg)
	if err != nil {
		log.Error("failed to initialise storage", zap.Error(err))
		os.Exit(1)
	}

	log.Info("storage initialised", zap.String("driver", cfg.Storage.Driver))

	// ── 4. Build Routes ───────────────────────────────────────────────────
	token := auth.NewStaticToken(cfg.AdminToken)

	handler := router.New(router.Deps{
		Store:          store,
		Catalog:        storage.NewCatalog(cfg.CollectionPrefix),
		Verifier:       token,
		Issuer:         token,
		Log:            log,
		StaticDir:      cfg.StaticDir,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	// ── 5. Create the HTTP Server ─────────────────────────────────────────
	server := &http.Server{
		Addr:     cfg.HTTPServer.Addr,
		Handler:  handler,
		ErrorLog: zap.NewStdLog(log),

		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	// ── 6. Start Server in a Goroutine ────────────────────────────────────
	go func() {
		log.Info("server started",
			zap.String("address", cfg.HTTPServer.Addr),
			zap.String("static_dir", cfg.StaticDir))

		// ListenAndServe returns http.ErrServerClosed once Shutdown is called.
		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// ── 7. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully", zap.Error(err))
	}

	if err := store.Close(); err != nil {
		log.Error("failed to close storage", zap.Error(err))
	}

	log.Info("server stopped gracefully")
}

// openStorage returns the backend named by cfg.Storage.Driver.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg)
	case config.DriverMongo:
		return mongodb.New(ctx, cfg)
	case config.DriverPostgres:
		return postgres.New(ctx, cfg)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// setupLogger returns a *zap.Logger configured for the given environment.
//
// Development (dev): human-readable console output at DEBUG level.
// Staging: JSON output at DEBUG level.
// Production (prod): JSON output at INFO level.
func setupLogger(env string) *zap.Logger {
	switch env {
	case "prod":
		return zap.Must(zap.NewProduction())
	case "staging":
		c := zap.NewProductionConfig()
		c.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		return zap.Must(c.Build())
	default: // "dev" and anything unrecognised
		return zap.Must(zap.NewDevelopment())
	}
}
