package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimecore/internal/config"
	"github.com/hamed0406/uptimecore/internal/distributed"
	"github.com/hamed0406/uptimecore/internal/httpapi"
	apimw "github.com/hamed0406/uptimecore/internal/httpapi/middleware"
	"github.com/hamed0406/uptimecore/internal/logging"
	"github.com/hamed0406/uptimecore/internal/notify"
	"github.com/hamed0406/uptimecore/internal/probe"
	"github.com/hamed0406/uptimecore/internal/scheduler"
	"github.com/hamed0406/uptimecore/internal/status"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store_open_failed", zap.String("kind", cfg.StoreKind()), zap.Error(err))
	}
	defer store.Close()
	logger.Info("store_ready", zap.String("kind", cfg.StoreKind()))

	if cfg.MonitorsFile != "" {
		seed, err := config.LoadSeed(cfg.MonitorsFile)
		if err != nil {
			logger.Fatal("seed_load_failed", zap.Error(err))
		}
		if err := seed.Apply(ctx, store); err != nil {
			logger.Fatal("seed_apply_failed", zap.Error(err))
		}
		logger.Info("seed_applied", zap.Int("monitors", len(seed.Monitors)))
	}

	opts := probe.Options{
		HTTPTimeout:     cfg.HTTPTimeout,
		Pinger:          probe.ICMPPinger{Count: 1, Timeout: 5 * time.Second, Privileged: cfg.PingPrivileged},
		PagespeedAPIKey: cfg.PagespeedAPIKey,
		Logger:          logger,
	}
	if docker, err := probe.NewDockerClient(cfg.DockerHost); err != nil {
		logger.Warn("docker_client_unavailable", zap.Error(err))
	} else {
		defer docker.Close()
		opts.Docker = docker
	}
	probes := probe.NewDefaultDispatcher(opts)

	var email notify.EmailSender = notify.LogOnlyEmail{Logger: logger}
	var mailer *notify.Mailer
	if cfg.SMTP.Enabled() {
		mailer, err = notify.NewMailer(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, logger)
		if err != nil {
			logger.Fatal("mailer_init_failed", zap.Error(err))
		}
		email = mailer
	}

	webhooks := probe.NewWebhookClient(cfg.HTTPTimeout, logger)
	notifier := notify.New(store, email, webhooks, logger, notify.WithTelegramAPIBase(cfg.TelegramAPIBase))
	engine := status.New(store, store, logger)
	ingestor := distributed.NewIngestor(engine, notifier, logger)

	runner := scheduler.NewRunner(logger, store, probes, engine, cfg.CheckInterval, cfg.CheckTimeout, cfg.MaxConcurrentChecks)
	runner.Notifier = notifier
	if cfg.UpRockAPIKey != "" && cfg.CallbackURL != "" {
		runner.Distributed = distributed.NewDispatcher(cfg.UpRockEndpoint, cfg.UpRockAPIKey, cfg.CallbackURL, logger)
	} else {
		logger.Info("distributed_probes_disabled")
	}

	api := httpapi.NewServer(logger, ingestor, notifier, apimw.Keys{Read: cfg.ReadAPIKeys, Admin: cfg.AdminAPIKeys})
	api.Monitors = store
	api.CallbackRPM, api.CallbackBurst = cfg.CallbackRPM, cfg.CallbackBurst
	api.TrustedProxies = cfg.TrustedProxies
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		runner.Run(ctx)
	}()

	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_listen_failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown_started")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("api_shutdown_error", zap.Error(err))
	}
	<-done
	if err := engine.Drain(shutdownCtx); err != nil {
		logger.Warn("check_writes_not_drained", zap.Error(err))
	}
	if mailer != nil {
		if err := mailer.Wait(shutdownCtx); err != nil {
			logger.Warn("emails_not_drained", zap.Error(err))
		}
	}
	logger.Info("shutdown_complete")
}
