package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/alankar-storefront/internal/cache"
	"github.com/xenking/alankar-storefront/internal/catalogapi"
	"github.com/xenking/alankar-storefront/internal/domain/enquiry"
	"github.com/xenking/alankar-storefront/internal/domain/product"
	"github.com/xenking/alankar-storefront/internal/storage/postgres"
	"github.com/xenking/alankar-storefront/internal/storage/zaplog"
	"github.com/xenking/alankar-storefront/internal/web"
	"github.com/xenking/alankar-storefront/pkg/health"
	"github.com/xenking/alankar-storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	healthSvc := health.New(health.WithLogger(lg))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Catalog source: upstream API or the built-in sample.
	var upstream product.Source
	if cfg.UpstreamURL != "" {
		client := catalogapi.NewClient(cfg.UpstreamURL, catalogapi.WithHTTPClient(&http.Client{
			Timeout: cfg.UpstreamTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
		}))
		healthSvc.AddReadinessCheck("catalog", 5*time.Second, health.PingCheck("catalog api", client))
		upstream = client
	} else {
		lg.Warn("No upstream URL configured, serving the sample catalog")
		upstream = catalogapi.NewSample(nil)
	}

	// Response cache: Redis when configured, in-process otherwise.
	var store cache.Store
	if cfg.RedisURL != "" {
		rdb, err := cache.DialRedis(ctx, cfg.RedisURL, cfg.Cache.RedisPrefix)
		if err != nil {
			return errors.Wrap(err, "connect redis")
		}
		defer func() { _ = rdb.Close() }()
		healthSvc.AddReadinessCheck("redis", 2*time.Second, health.PingCheck("redis", rdb))
		store = rdb
	} else {
		store = cache.NewMemory(cfg.Cache.MaxEntries)
	}
	src, err := cache.NewSource(upstream, store, cache.Config{
		ListTTL:    cfg.Cache.ListTTL,
		ProductTTL: cfg.Cache.ProductTTL,
		FiltersTTL: cfg.Cache.FiltersTTL,
	}, m.MeterProvider(), m.TracerProvider())
	if err != nil {
		return errors.Wrap(err, "create catalog cache")
	}

	// Enquiry storage: PostgreSQL when configured, the log otherwise.
	var enquiries enquiry.Repository = zaplog.EnquiryRepository{}
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		repo := postgres.NewEnquiryRepository(pool)
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck("postgres", repo))
		enquiries = repo
	} else {
		lg.Warn("No database configured, enquiries are only logged")
	}

	site, err := web.New(src, enquiry.NewService(src, enquiries), web.Config{
		PublicURL:      cfg.PublicURL,
		PageSize:       cfg.PageSize,
		SearchDebounce: cfg.SearchDebounce,
		Brand:          cfg.Brand,
		Phone:          cfg.WhatsAppPhone,
	})
	if err != nil {
		return errors.Wrap(err, "create web server")
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: newHandler(ctx, site, healthSvc, handlerConfig{
			RateLimit:      cfg.RateLimit,
			TracerProvider: m.TracerProvider(),
			MeterProvider:  m.MeterProvider(),
		}),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

type handlerConfig struct {
	RateLimit      RateLimitConfig
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// newHandler mounts the health endpoints next to the storefront pages and
// applies the middleware chain. Only form submissions are rate limited.
func newHandler(ctx context.Context, site *web.Server, healthSvc *health.Health, cfg handlerConfig) http.Handler {
	r := chi.NewRouter()
	r.Get("/livez", healthSvc.LiveEndpoint)
	r.Get("/readyz", healthSvc.ReadyEndpoint)
	r.Mount("/", site.Routes())

	return httpmiddleware.Wrap(r,
		httpmiddleware.Recovery(),
		httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
			Max:     cfg.RateLimit.Max,
			Window:  cfg.RateLimit.Window,
			Methods: []string{http.MethodPost},
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.Instrument("storefront", cfg.TracerProvider, cfg.MeterProvider),
		httpmiddleware.LogRequests(),
	)
}
