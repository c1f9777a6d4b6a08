package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/superapp/marketplace-approvals/internal/api"
	"github.com/superapp/marketplace-approvals/internal/catalog"
	"github.com/superapp/marketplace-approvals/internal/httpclient"
	"github.com/superapp/marketplace-approvals/internal/jobs"
	"github.com/superapp/marketplace-approvals/internal/notifier"
	"github.com/superapp/marketplace-approvals/internal/publisher"
	"github.com/superapp/marketplace-approvals/internal/rabbitmq"
	"github.com/superapp/marketplace-approvals/internal/rate"
	internalsecrets "github.com/superapp/marketplace-approvals/internal/secrets"
	"github.com/superapp/marketplace-approvals/internal/store"
	"github.com/superapp/marketplace-approvals/internal/workflow"
	"github.com/superapp/marketplace-approvals/pkg/config"
	"github.com/superapp/marketplace-approvals/pkg/logger"
	"github.com/superapp/marketplace-approvals/pkg/secrets"
	"github.com/superapp/marketplace-approvals/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	logg := logger.S()
	logg.Info("starting [approval-service]...")
	logg.Info("connection to DSN: ", utils.MaskDSN(cfg.DatabaseURL))

	// --- AWS Secrets Manager provider ---
	awsProvider, err := secrets.NewAWSProvider(cfg.AWSRegion)
	if err != nil {
		logg.Fatalw("failed to create AWS Secrets Manager provider", "error", err)
	}

	// --- Per-partner webhook credential resolver (secrets cached in-memory) ---
	credsCache := secrets.NewCache[notifier.Credentials](cfg.CacheTTL)
	stopCleaner := make(chan struct{})
	go credsCache.StartCleaner(cfg.CleanupFreq, stopCleaner)

	resolver := internalsecrets.NewAWSResolver(
		logg.Desugar(),
		cfg.Env,
		"webhook",
		awsProvider,
		credsCache,
	)

	// --- Discover partners with signing keys configured ---
	partners, err := resolver.DiscoverPartners(ctx)
	if err != nil {
		logg.Warnw("failed to discover partners from AWS Secrets Manager", "error", err)
	} else {
		logg.Infow("discovered webhook partners", "count", len(partners))
	}

	// --- Connect to NATS ---
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		logg.Fatalw("failed to connect to NATS", "error", err)
	}

	// --- Publisher ---
	pub, err := publisher.New(nc, cfg.OutboundSubject, cfg.ServiceName)
	if err != nil {
		logg.Fatalw("failed to init publisher", "error", err)
	}
	if err := pub.EnsureStream(cfg.StreamName, []string{"evt.approval.>"}); err != nil {
		logg.Warnw("failed to ensure JetStream stream", "stream", cfg.StreamName, "error", err)
	}

	// --- Store (Redis + Postgres hybrid) ---
	st, err := store.NewHybrid(cfg.RedisAddr, cfg.RedisDB, cfg.RedisPass, cfg.DatabaseURL, store.PGPoolConfig{
		MaxConns:          int32(cfg.PGMaxConns),
		MinConns:          int32(cfg.PGMinConns),
		MaxConnLifetime:   cfg.PGMaxConnLifetime,
		MaxConnIdleTime:   cfg.PGMaxConnIdleTime,
		HealthCheckPeriod: cfg.PGHealthCheckPeriod,
	}, cfg.EntityTTL, logg.Desugar())
	if err != nil {
		logg.Fatalw("failed to init store", "error", err)
	}

	// --- Partner webhook notifier ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: 5,
		Burst:             10,
		Cooldown:          1 * time.Second,
	})
	webhookExec := httpclient.New(
		logg.Desugar(),
		rateMgr,
		&http.Client{Timeout: cfg.WebhookTimeout},
		cfg.WebhookRetryMax,
		"webhook",
		nil,
	)
	notif := notifier.New(logg.Desugar(), webhookExec, resolver, cfg.WebhookSignatureHeader)

	// --- Approval coordinator ---
	coord := workflow.NewCoordinator(st, pub, notif, logg.Desugar())

	// --- Catalog (entity onboarding) ---
	catalogSvc := catalog.NewService(st, logg.Desugar())

	// --- AMQP decision intake ---
	var consumer *rabbitmq.Consumer
	if cfg.AMQPURL != "" {
		consumer, err = rabbitmq.NewConsumer(cfg.AMQPURL, cfg.AMQPQueuePrefix, coord, logg.Desugar())
		if err != nil {
			logg.Fatalw("failed to init RabbitMQ consumer", "error", err)
		}
		if err := consumer.Start(ctx); err != nil {
			logg.Fatalw("failed to start RabbitMQ consumer", "error", err)
		}
	} else {
		logg.Warn("AMQP_URL not configured; decision queue intake disabled")
	}

	// --- Pending summary refresher ---
	refresher := jobs.NewSummaryRefresher(logg.Desugar(), st, pub, cfg.SummaryRefreshInterval)
	go refresher.Start(ctx)

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})

	handler := api.NewApprovalHandler(logg.Desugar(), coord, catalogSvc, st)
	api.RegisterRoutes(app, nc, st, handler)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	// --- Main process stays alive until interrupted ---
	logg.Infow("[approval-service] running",
		"nats", cfg.NATSURL,
		"env", cfg.Env,
		"summary_interval", cfg.SummaryRefreshInterval)

	<-ctx.Done()
	logg.Info("shutting down [approval-service]...")

	close(stopCleaner)
	refresher.Stop()
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logg.Warnw("amqp.close_failed", "error", err)
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if err := nc.Drain(); err != nil {
		logg.Warnw("nats.drain_failed", "error", err)
	}
	if err := st.Close(); err != nil {
		logg.Warnw("store.close_failed", "error", err)
	}
}
