package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmutuku/campushub/internal/config"
	"github.com/mmutuku/campushub/internal/db"
	httpx "github.com/mmutuku/campushub/internal/http"
	"github.com/mmutuku/campushub/internal/observability"
	"github.com/mmutuku/campushub/internal/queue/redisclient"
)

func main() {
	// local profiles keep settings in a .env file; absence is fine
	_ = godotenv.Load()

	cfg, err := config.Load()

	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)

	// tracing is optional; without an endpoint spans stay local no-ops
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "campushub-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("init tracer", "err", err)
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdownTracer(ctx)
			}()
		}
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("connect to postgres", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	seedCtx, cancelSeed := config.WithTimeout(5 * time.Second)

	if err := db.EnsureSuperAdmin(seedCtx, pool, cfg); err != nil {
		log.Error("seed super admin", "err", err)
	}
	cancelSeed()

	redisClient := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancelPing := config.WithTimeout(2 * time.Second)

	if err := redisClient.Ping(pingCtx); err != nil {
		// mail falls back to poll-only dispatch
		log.Warn("redis unreachable, worker nudges disabled", "err", err)
		_ = redisClient.Close()
		redisClient = nil
	}
	cancelPing()

	if redisClient != nil {
		defer redisClient.Close()
	}

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	router := httpx.NewRouter(cfg, log, pool, redisClient, prom, reg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)

		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

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
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
