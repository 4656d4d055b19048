package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"profiled/internal/platform/config"
	"profiled/internal/platform/httpserver"
	"profiled/internal/platform/logger"
	platformredis "profiled/internal/platform/redis"
	"profiled/internal/profile/handler"
	"profiled/internal/profile/metrics"
	"profiled/internal/profile/resolver"
	"profiled/internal/profile/snapshot"
	"profiled/internal/profile/source"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Resolution logic lives in internal/profile; main only decides which
// collaborators are available in this deployment.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	resolverOpts := []resolver.Option{
		resolver.WithLogger(log),
		resolver.WithMetrics(metrics.New()),
	}
	if redisClient != nil {
		defer redisClient.Close()
		resolverOpts = append(resolverOpts, resolver.WithSnapshots(snapshot.NewRedisStore(redisClient.Client)))
	}

	var src source.Source
	if cfg.PostgresDSN != "" {
		pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		src = source.NewPostgresSource(pool)
	} else {
		log.Warn("no profile source configured; preloads will fail and lookups degrade to fallbacks")
	}

	profiles := resolver.New(src, resolverOpts...)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())
	handler.New(profiles, log, cfg.PreloadTimeout).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting profiled", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
