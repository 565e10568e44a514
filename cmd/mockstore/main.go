package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/userdash/internal/cache"
	"github.com/geocoder89/userdash/internal/config"
	"github.com/geocoder89/userdash/internal/db"
	httpx "github.com/geocoder89/userdash/internal/http"
	"github.com/geocoder89/userdash/internal/http/handlers"
	"github.com/geocoder89/userdash/internal/observability"
	"github.com/geocoder89/userdash/internal/repo/memory"
	"github.com/geocoder89/userdash/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env, "userdash-mockstore")

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, "userdash-mockstore", cfg.OTLPEndpoint, cfg.OTelEnabled)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	checks := map[string]handlers.Pinger{}

	repo, closeRepo, err := openRepo(ctx, cfg, log, prom, checks)
	if err != nil {
		log.Error("store backend", "backend", cfg.StoreBackend, "err", err)
		os.Exit(1)
	}
	defer closeRepo()

	pages := openCache(cfg, log, checks)

	router := httpx.NewMockstoreRouter(httpx.Deps{
		Env:         cfg.Env,
		ServiceName: "userdash-mockstore",
		Log:         log,
		Prom:        prom,
		Gatherer:    reg,
		Checks:      checks,
	}, handlers.NewUsersHandlerWithCache(repo, pages), cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MockstorePort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("mockstore starting", "port", cfg.MockstorePort, "backend", cfg.StoreBackend)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("mockstore shutting down")

	shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", "err", err)
	}

	log.Info("shutdown complete")
}

func openRepo(ctx context.Context, cfg config.Config, log *slog.Logger, prom *observability.Prom, checks map[string]handlers.Pinger) (handlers.UsersRepo, func(), error) {
	switch cfg.StoreBackend {
	case "", "memory":
		return memory.NewUsersRepo(), func() {}, nil

	case "postgres":
		if err := db.Migrate(ctx, cfg.DBURL, log); err != nil {
			return nil, nil, err
		}

		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db connect: %w", err)
		}

		checks["postgres"] = func(ctx context.Context) error { return pool.Ping(ctx) }

		return postgres.NewUsersRepo(pool, prom), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// redis when configured, otherwise an in-process cache
func openCache(cfg config.Config, log *slog.Logger, checks map[string]handlers.Pinger) cache.Pages {
	if cfg.RedisAddr == "" {
		return cache.New(cfg.CacheTTL)
	}

	rc := cache.NewRedis(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
		Prefix:   "userdash:mockstore:",
	}, log)

	checks["redis"] = rc.Ping

	return rc
}
