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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmutuku/campushub/internal/config"
	"github.com/mmutuku/campushub/internal/db"
	"github.com/mmutuku/campushub/internal/mail"
	"github.com/mmutuku/campushub/internal/observability"
	"github.com/mmutuku/campushub/internal/queue/redisclient"
	"github.com/mmutuku/campushub/internal/queue/worker"
	"github.com/mmutuku/campushub/internal/repo/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()

	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)

	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "campushub-worker", cfg.OTLPEndpoint)

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

	redisClient := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancelPing := config.WithTimeout(2 * time.Second)

	var nudger worker.NudgeWaiter

	if err := redisClient.Ping(pingCtx); err != nil {
		log.Warn("redis unreachable, polling only", "err", err)
		_ = redisClient.Close()
	} else {
		nudger = redisClient
		defer redisClient.Close()
	}
	cancelPing()

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// the transport chain: smtp (or log-only when unconfigured) behind a
	// circuit breaker
	var sender mail.Sender = mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})

	if cfg.SMTPHost == "" && cfg.Env == "dev" {
		sender = mail.NewLogSender(log)
	}

	sender = mail.NewProtectedSender(sender, mail.ProtectedSenderConfig{})

	host, _ := os.Hostname()

	w := worker.New(worker.Config{
		WorkerID:     fmt.Sprintf("%s-%d", host, os.Getpid()),
		PollInterval: 5 * time.Second,
	}, postgres.NewMailJobsRepo(pool, prom), sender, nudger, prom, log)

	// health + metrics sidecar server

	mux := http.NewServeMux()
	mux.Handle("/", w.HealthHandler())
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("worker health server starting", "port", cfg.WorkerPort)

		err := healthSrv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("worker health server failed", "err", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped", "err", err)
	}

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("health server shutdown", "err", err)
	}

	log.Info("worker shutdown complete")
}
