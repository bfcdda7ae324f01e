package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pablini31/papelria/internal/config"
	"github.com/pablini31/papelria/internal/infra"
	"github.com/pablini31/papelria/internal/repository"
	"github.com/pablini31/papelria/internal/router"
	"github.com/pablini31/papelria/internal/worker"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: cfg.CBFailureThreshold,
		OpenTimeout:      time.Duration(cfg.CBOpenTimeoutSecs) * time.Second,
	})

	db, err := infra.NewDatabase(cfg, cb)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Startup capability check. Without DB_REQUIRED the server comes up
	// degraded: reads answer empty, writes answer 503.
	if err := infra.CheckDatabase(ctx, db); err != nil {
		if cfg.DBRequired {
			log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("database unreachable")
		}
		log.Warn().Err(err).Str("driver", cfg.DBDriver).Msg("database unreachable, starting degraded")
		if cfg.DBAutoMigrate {
			go func() {
				if err := infra.MigrateWhenReachable(ctx, db, 10*time.Second); err != nil && !errors.Is(err, context.Canceled) {
					log.Error().Err(err).Msg("deferred migrations failed, run `papeleriactl migrate`")
				}
			}()
		} else {
			log.Warn().Msg("DB_AUTO_MIGRATE=false: run `papeleriactl migrate` once the database is up")
		}
	} else if cfg.DBAutoMigrate {
		if err := infra.RunMigrations(db); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
		log.Info().Msg("migrations applied")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without cache and job queue")
		rdb = nil
	}

	// Worker handlers are wired here (composition root) so the pool has
	// access to the repositories and the mailer.
	var workers *sync.WaitGroup
	if rdb != nil {
		mailer := infra.NewMailer(cfg)
		if !mailer.Configured() {
			log.Warn().Msg("SMTP_HOST empty, receipt emails will land in the DLQ")
		}
		emailWorker := worker.NewEmailWorker(repository.NewVentaRepository(db), mailer, cfg.TiendaNombre)
		workers = worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, worker.Handlers{
			worker.JobReciboEmail: emailWorker.Process,
		})
	}

	r := router.New(cfg, db, rdb, cb)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("papeleria backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	if workers != nil {
		workers.Wait()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}
