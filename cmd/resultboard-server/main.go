// Package main runs the result board API server. "resultboard-server db ..."
// runs the admin CLI instead.
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resultboard/cmd/resultboard-server/cli"
	"resultboard/internal/server/aggregate"
	"resultboard/internal/server/catalog"
	"resultboard/internal/server/config"
	"resultboard/internal/server/http"
	"resultboard/internal/server/logging"
	"resultboard/internal/server/metrics"
	"resultboard/internal/server/service"
	"resultboard/internal/server/storage"
)

const (
	serviceName             = "resultboard"
	version                 = "1.0.0"
	gracefulShutdownTimeout = 5 * time.Second
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "CLI error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "resultboard-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, os.Stdout).
		With(logging.FieldService, serviceName, logging.FieldVersion, version)
	slog.SetDefault(logger)

	if cfg.PIDPath != "" {
		pid, err := acquirePIDFile(cfg.PIDPath, cfg.PIDLock)
		if err != nil {
			return err
		}
		defer pid.Release()
		logger.Info("pid file written", "path", cfg.PIDPath, "lock", cfg.PIDLock)
	}

	store, err := storage.NewStore(cfg.StoragePath, cfg.Dev)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	if err := store.InitDB(); err != nil {
		store.Close()
		return fmt.Errorf("initialize schema: %w", err)
	}
	if v, err := store.SchemaVersion(); err == nil {
		logger.Info("storage ready", "path", cfg.StoragePath, "schema_version", v)
	}

	jwtSecret, err := loadJWTSecret(cfg, logger)
	if err != nil {
		store.Close()
		return err
	}

	rec := metrics.NewRecorder()
	cat := catalog.New(store, catalog.WithShiftHook(rec.RanksShifted))
	engine := aggregate.New(store, cat, aggregate.WithHomeOffset(cfg.HomeOffsetMinutes))
	svc := service.New(store, cat, engine, jwtSecret,
		service.WithLogger(logger),
		service.WithUpsertHook(rec.ResultUpserted),
	)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go svc.RunCleanupJob(cleanupCtx, service.CleanupJobInterval)

	app := http.NewFiberApp(svc, http.AppConfig{
		Dev:         cfg.Dev,
		RateLimit:   cfg.RateLimit,
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     rec,
		Logger:      logger,
		AccessLog:   cfg.Dev,
	})

	addr := cfg.Addr()
	listenErr := make(chan error, 1)
	go func() {
		logger.Info("api server starting",
			logging.FieldAddr, addr,
			"rate_limit", cfg.RateLimit,
			"home_offset_minutes", cfg.HomeOffsetMinutes,
			"dev", cfg.Dev,
		)
		listenErr <- app.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutting down")
	case err := <-listenErr:
		if err != nil {
			logging.Error(logger, "api server listen failed", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logging.Error(logger, "server forced to shutdown", err)
	}

	cleanupCancel()
	if err := svc.Shutdown(); err != nil {
		logging.Error(logger, "storage close failed", err)
	}

	logger.Info("server exited")
	return nil
}

// loadJWTSecret prefers the configured secret, then the fixed dev secret,
// then a random one that invalidates tokens on restart
func loadJWTSecret(cfg config.Config, logger *slog.Logger) ([]byte, error) {
	switch {
	case cfg.JWTSecret != "":
		logger.Info("using configured JWT secret")
		return []byte(cfg.JWTSecret), nil
	case cfg.Dev:
		logger.Warn("using fixed JWT secret (dev mode)")
		return []byte("dev-secret-minimum-32-characters-long"), nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate JWT secret: %w", err)
	}
	logger.Info("JWT secret generated, sessions valid until restart")
	return secret, nil
}
