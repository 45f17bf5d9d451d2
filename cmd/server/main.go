package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fumiakihyodo/meiwaproducts/internal/config"
	"github.com/fumiakihyodo/meiwaproducts/internal/infra"
	"github.com/fumiakihyodo/meiwaproducts/internal/repository"
	"github.com/fumiakihyodo/meiwaproducts/internal/router"
	"github.com/fumiakihyodo/meiwaproducts/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := infra.NewQuoteStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to object storage")
	}
	storageCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	// Worker handlers are wired here (composition root) so the pool has full
	// access to all infrastructure dependencies.
	worker.StartWorkerPool(ctx, worker.PoolConfig{
		RDB:     rdb,
		Email:   worker.NewEmailWorker(mailer),
		Cleanup: worker.NewCleanupWorker(store, storageCB),
	}, cfg.WorkerPoolSize)

	// Hourly sweep deactivating price rows whose end date lapsed without a
	// save touching them.
	priceRepo := repository.NewPriceHistoryRepository(db)
	priceCache := infra.NewPriceCache(rdb)
	worker.StartExpiryCron(ctx, worker.ExpiryCronConfig{
		Prices: priceRepo,
		Invalidate: func(ctx context.Context, partID string) {
			if id, err := uuid.Parse(partID); err == nil {
				priceCache.Invalidate(ctx, id)
			}
		},
	})

	r := router.New(cfg, db, rdb, store, storageCB, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("meiwaproducts backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
