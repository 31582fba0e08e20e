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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/waveforge/waveforge/internal/adapter/docgen"
	"github.com/waveforge/waveforge/internal/adapter/email"
	"github.com/waveforge/waveforge/internal/adapter/files"
	wfhttp "github.com/waveforge/waveforge/internal/adapter/http"
	wfnats "github.com/waveforge/waveforge/internal/adapter/nats"
	"github.com/waveforge/waveforge/internal/adapter/otel"
	"github.com/waveforge/waveforge/internal/adapter/paypal"
	"github.com/waveforge/waveforge/internal/adapter/postgres"
	"github.com/waveforge/waveforge/internal/adapter/ristretto"
	"github.com/waveforge/waveforge/internal/adapter/stripe"
	"github.com/waveforge/waveforge/internal/config"
	"github.com/waveforge/waveforge/internal/logger"
	"github.com/waveforge/waveforge/internal/middleware"
	"github.com/waveforge/waveforge/internal/port/messagequeue"
	"github.com/waveforge/waveforge/internal/resilience"
	"github.com/waveforge/waveforge/internal/service"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"root_domains", cfg.Platform.RootDomains,
		"download_window", cfg.Platform.DownloadWindow,
	)

	ctx := context.Background()

	// --- Observability ---
	otelShutdown, err := otel.Init(ctx, cfg.Otel, cfg.Logging.Service)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("otel shutdown failed", "error", err)
		}
	}()

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("otel metrics: %w", err)
	}

	// --- Infrastructure ---
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	// Event publishing is best-effort; the storefront runs without NATS.
	var publisher messagequeue.Publisher
	if queue, err := wfnats.Connect(ctx, cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, events disabled", "error", err)
	} else {
		publisher = queue
		defer func() { _ = queue.Close() }()
	}

	cache, err := ristretto.New(cfg.Cache.MaxCostBytes)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cache.Close()

	// --- Outbound collaborators ---
	stripeGw := stripe.New(cfg.Stripe, cfg.Checkout.Currency)

	paypalClient := paypal.NewClient(cfg.PayPal)
	paypalClient.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	docgenClient := docgen.NewClient(cfg.Docgen)
	docgenClient.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	notifier := email.NewNotifier(cfg.SMTP)
	signer := files.NewSigner(cfg.Files)

	// --- Services ---
	store := postgres.NewStore(pool)

	fulfillment := service.NewFulfillment(store, docgenClient, notifier, publisher, cfg.Server.PublicBaseURL)
	checkout := service.NewCheckout(store, stripeGw, paypalClient, service.CheckoutConfig{
		PublicBaseURL:  cfg.Server.PublicBaseURL,
		Currency:       cfg.Checkout.Currency,
		DownloadWindow: cfg.Platform.DownloadWindow,
	})
	confirm := service.NewConfirm(store, stripeGw, paypalClient, fulfillment, cfg.Platform.DownloadWindow)
	download := service.NewDownload(store, signer)
	offers := service.NewOffers(store, notifier)
	tenants := service.NewTenants(store, publisher)
	resolver := service.NewResolver(store, cache, cfg.Cache.TenantTTL,
		cfg.Platform.RootDomains, cfg.Platform.PreviewHosts)

	fulfillment.SetMetrics(metrics)
	checkout.SetMetrics(metrics)
	confirm.SetMetrics(metrics)

	// --- Rate limiting ---
	verifyLimiter := middleware.NewWindowLimiter(cfg.Rate.VerifyPerWindow, cfg.Rate.Window)
	offerLimiter := middleware.NewWindowLimiter(cfg.Rate.OfferPerWindow, cfg.Rate.Window)
	downloadLimiter := middleware.NewWindowLimiter(cfg.Rate.DownloadPerWindow, cfg.Rate.Window)
	stopVerifyCleanup := verifyLimiter.StartCleanup(10*time.Minute, 2*cfg.Rate.Window)
	defer stopVerifyCleanup()
	stopOfferCleanup := offerLimiter.StartCleanup(10*time.Minute, 2*cfg.Rate.Window)
	defer stopOfferCleanup()
	stopDownloadCleanup := downloadLimiter.StartCleanup(10*time.Minute, 2*cfg.Rate.Window)
	defer stopDownloadCleanup()

	// --- HTTP ---
	handlers := wfhttp.NewHandlers(resolver, checkout, confirm, download, offers, tenants,
		store, verifyLimiter, offerLimiter, downloadLimiter, metrics)

	r := chi.NewRouter()
	r.Use(wfhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(wfhttp.RequestID)
	r.Use(wfhttp.Logger)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	if cfg.Otel.Enabled {
		r.Use(otel.HTTPMiddleware(cfg.Logging.Service))
	}
	r.Use(middleware.Auth(store))

	wfhttp.MountRoutes(r, handlers)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
