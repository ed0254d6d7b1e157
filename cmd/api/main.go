package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carrier-gateway/internal/auth"
	"carrier-gateway/internal/calls"
	"carrier-gateway/internal/config"
	"carrier-gateway/internal/delivery"
	"carrier-gateway/internal/events"
	"carrier-gateway/internal/metrics"
	"carrier-gateway/internal/sms"
	"carrier-gateway/internal/telephony"
	"carrier-gateway/pkg/logger"
	"carrier-gateway/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env, cfg.App.LogLevel)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Events.Backend == "redis" {
		rdb, err = utils.OpenRedis(rootCtx, utils.RedisOptions{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
	}

	var emitter events.Emitter
	if rdb != nil {
		emitter, err = events.FromConfig(cfg.Events, rdb)
	} else {
		emitter, err = events.FromConfig(cfg.Events, nil)
	}
	if err != nil {
		log.Error("events init failed", "err", err)
		os.Exit(1)
	}
	if k, ok := emitter.(*events.KafkaEmitter); ok {
		defer k.Close()
	}

	registry, err := sms.BuildRegistry(cfg.Carriers, cfg.CallbackURL("/webhooks/sms/status"))
	if err != nil {
		log.Error("carrier registry init failed", "err", err)
		os.Exit(1)
	}
	log.Info("carriers enabled", "order", registry.Names())

	messages := delivery.NewPostgresStore(db)
	sessions := calls.NewPostgresStore(db)

	voice := telephony.NewTwilioClient(cfg.Carriers.Twilio, telephony.NewHTTPClient(cfg.Carriers.Timeout))

	deps := deps{
		auth:       authManager,
		dispatcher: sms.NewDispatcher(registry, messages),
		correlator: delivery.NewCorrelator(messages, emitter),
		calls: calls.NewOrchestrator(calls.OrchestratorConfig{
			StatusCallbackURL: cfg.CallbackURL(cfg.Calls.StatusCallbackPath),
			ContinuationURL:   cfg.CallbackURL(cfg.Calls.ContinuationPath),
		}, voice, sessions, sessions, emitter),
		ready: func(ctx context.Context) error {
			return utils.HealthCheck(ctx, db, 2*time.Second)
		},
		webhookSecret:    cfg.Webhook.Secret,
		webhookTolerance: cfg.Webhook.Tolerance,
		callsCfg:         cfg.Calls,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	registerRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
