package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/calebmoran/tunewave-backend/api/controllers"
	"github.com/calebmoran/tunewave-backend/api/routes"
	"github.com/calebmoran/tunewave-backend/internal/billing"
	"github.com/calebmoran/tunewave-backend/internal/catalog"
	"github.com/calebmoran/tunewave-backend/internal/customers"
	"github.com/calebmoran/tunewave-backend/internal/entitlements"
	"github.com/calebmoran/tunewave-backend/internal/songs"
	"github.com/calebmoran/tunewave-backend/internal/subscriptions"
	"github.com/calebmoran/tunewave-backend/internal/users"
	stripewebhook "github.com/calebmoran/tunewave-backend/internal/webhooks/stripe"
	"github.com/calebmoran/tunewave-backend/pkg/config"
	"github.com/calebmoran/tunewave-backend/pkg/db"
	"github.com/calebmoran/tunewave-backend/pkg/logger"
	"github.com/calebmoran/tunewave-backend/pkg/metrics"
	"github.com/calebmoran/tunewave-backend/pkg/migrate"
	"github.com/calebmoran/tunewave-backend/pkg/redis"
	"github.com/calebmoran/tunewave-backend/pkg/storage/gcs"
	"github.com/calebmoran/tunewave-backend/pkg/stripe"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	var gcsClient *gcs.Client
	if cfg.GCS.SongBucket != "" {
		gcsClient, err = gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap gcs", err)
			os.Exit(1)
		}
		defer gcsClient.Close()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	usersRepo := users.NewRepository(dbClient.DB())
	customersRepo := customers.NewRepository(dbClient.DB())
	subscriptionsRepo := subscriptions.NewRepository(dbClient.DB())
	songsRepo := songs.NewRepository(dbClient.DB())

	customerService, err := customers.NewService(customers.ServiceParams{
		Repo:         customersRepo,
		StripeClient: customers.NewStripeClient(stripeClient),
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create customer service", err)
		os.Exit(1)
	}

	subscriptionService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Repo:         subscriptionsRepo,
		UsersRepo:    usersRepo,
		Customers:    customerService,
		StripeClient: subscriptions.NewStripeClient(stripeClient),
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscription service", err)
		os.Exit(1)
	}

	entitlementService, err := entitlements.NewService(entitlements.ServiceParams{
		Subscriptions: subscriptionsRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create entitlement service", err)
		os.Exit(1)
	}

	songService, err := songs.NewService(songs.ServiceParams{
		Repo:         songsRepo,
		Entitlements: entitlementService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create song service", err)
		os.Exit(1)
	}

	billingService, err := billing.NewService(billing.ServiceParams{
		Customers:    customerService,
		Catalog:      catalogRepo,
		StripeClient: billing.NewStripeClient(stripeClient),
		BaseURL:      cfg.App.BaseURL,
		StripeConfig: cfg.Stripe,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Catalog:       catalogRepo,
		Subscriptions: subscriptionService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Stripe.WebhookEventTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	var gcsPinger controllers.Pinger
	var storage controllers.SongStorage
	if gcsClient != nil {
		gcsPinger = gcsClient
		storage = gcsClient
	}

	handler := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		GCS:            gcsPinger,
		Registry:       registry,
		CatalogRepo:    catalogRepo,
		UsersRepo:      usersRepo,
		Songs:          songService,
		Storage:        storage,
		Billing:        billingService,
		Entitlements:   entitlementService,
		StripeClient:   stripeClient,
		WebhookService: webhookService,
		WebhookGuard:   webhookGuard,
		WebhookMetrics: webhookMetrics,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}
