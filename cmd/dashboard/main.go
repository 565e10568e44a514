package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/userdash/internal/config"
	"github.com/geocoder89/userdash/internal/dashboard"
	httpx "github.com/geocoder89/userdash/internal/http"
	"github.com/geocoder89/userdash/internal/observability"
	"github.com/geocoder89/userdash/internal/recordstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env, cfg.ServiceName)

	shutdownTracer, err := observability.InitTracer(context.Background(), cfg.ServiceName, cfg.OTLPEndpoint, cfg.OTelEnabled)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	store, err := recordstore.New(cfg.StoreBaseURL,
		recordstore.WithTimeout(cfg.StoreTimeout),
		recordstore.WithLogger(log),
		recordstore.WithMetrics(prom),
	)
	if err != nil {
		log.Error("record store client", "err", err)
		os.Exit(1)
	}

	ctrl := dashboard.NewController(dashboard.Config{
		PageSize:     cfg.PageSize,
		DiscardStale: cfg.DiscardStale,
	}, store, log, prom)

	// first page; a failure only lands in the dashboard's error banner
	st := ctrl.Mount(context.Background())
	log.Info("dashboard mounted", "records", len(st.Records), "error", st.Status.Error, "store", cfg.StoreBaseURL)

	router := httpx.NewDashboardRouter(httpx.Deps{
		Env:         cfg.Env,
		ServiceName: cfg.ServiceName,
		Log:         log,
		Prom:        prom,
		Gatherer:    reg,
	}, ctrl)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
