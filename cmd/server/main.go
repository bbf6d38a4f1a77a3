// Command server runs the inventory backend: the HTTP API, the alert
// reconciliation scheduler, and the retention jobs.
//
// Startup sequence:
//  1. Load .env (if present) and environment configuration
//  2. Configure zerolog
//  3. Initialize OpenTelemetry (optional)
//  4. Open SQLite and run migrations
//  5. Build services and the background scheduler
//  6. Serve HTTP with graceful shutdown on SIGINT/SIGTERM
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freshkeeper/go-inventory-backend/internal/config"
	httpapi "github.com/freshkeeper/go-inventory-backend/internal/http"
	"github.com/freshkeeper/go-inventory-backend/internal/observability"
	"github.com/freshkeeper/go-inventory-backend/internal/repo"
	"github.com/freshkeeper/go-inventory-backend/internal/scheduler"
	"github.com/freshkeeper/go-inventory-backend/internal/services"
	"github.com/freshkeeper/go-inventory-backend/internal/sysutil"
)

var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(c); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	scanSvc := services.NewScanService(db, httpapi.SnapshotRepo{}, httpapi.AlertRepo{}, cfg.Alerts.SoonWindowDays)
	retentionSvc := services.NewRetentionService(db, httpapi.AlertRepo{}, cfg.Alerts.RetentionDays, cfg.Alerts.PurgeAfterDays)

	var sched *scheduler.Scheduler
	if cfg.Alerts.SchedulerEnabled {
		sched, err = scheduler.New(
			scheduler.Job{
				Name:       "alert_scan",
				Interval:   cfg.Alerts.ScanInterval,
				RunAtStart: cfg.Alerts.RunAtStartup,
				Run: func(ctx context.Context) error {
					_, err := scanSvc.RunScan(ctx)
					if errors.Is(err, services.ErrScanInProgress) {
						return scheduler.ErrSkipped
					}
					return err
				},
			},
			scheduler.Job{
				Name:     "alert_retention",
				Interval: cfg.Alerts.RetentionInterval,
				Run: func(ctx context.Context) error {
					_, err := retentionSvc.RunRetention(ctx, nil)
					return err
				},
			},
		)
		if err != nil {
			log.Fatal().Err(err).Msg("scheduler setup failed")
		}
		sched.Start()
	} else {
		log.Info().Msg("background scheduler disabled")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:        db,
		Cfg:       cfg,
		Scan:      scanSvc,
		Retention: retentionSvc,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("scheduler stop")
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info().Msg("stopped")
}
