package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ledgerapp "github.com/papererp/backend/internal/application/ledger"
	"github.com/papererp/backend/internal/infrastructure/auth"
	"github.com/papererp/backend/internal/infrastructure/cache"
	"github.com/papererp/backend/internal/infrastructure/config"
	"github.com/papererp/backend/internal/infrastructure/event"
	"github.com/papererp/backend/internal/infrastructure/logger"
	"github.com/papererp/backend/internal/infrastructure/persistence"
	"github.com/papererp/backend/internal/infrastructure/telemetry"
	"github.com/papererp/backend/internal/interfaces/http/handler"
	"github.com/papererp/backend/internal/interfaces/http/middleware"
	"github.com/papererp/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Ledger Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry providers. Each is a no-op when telemetry is disabled.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		if err := loggerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()

	// Database with zap-backed GORM logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithGormLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.EnableDBTracing(db.DB, log); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}

	// Summary cache: Redis preferred, in-memory fallback
	var summaryCache ledgerapp.SummaryCache
	if cfg.Cache.Enabled {
		cacheFactory := cache.NewSummaryCacheFactory(cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(true),
		)
		summaryCache, err = cacheFactory.CreateCache()
		if err != nil {
			log.Warn("Summary cache unavailable, continuing without cache", zap.Error(err))
		}
	}

	// Business metrics with periodic gauge collection
	var businessMetrics *telemetry.BusinessMetrics
	if meterProvider.IsEnabled() {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:          meterProvider.Meter("ledger-business"),
			Logger:         log,
			LedgerProvider: persistence.NewLedgerMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
			businessMetrics = nil
		} else {
			businessMetrics.StartPeriodicCollection(ctx, 0)
			defer businessMetrics.Stop()
		}
	}

	// Event pipeline: bus, serializer and outbox processor
	eventBus := event.NewInMemoryEventBus(log)

	// Every dispatched event leaves an audit trail
	auditHandler := ledgerapp.NewAuditLogHandler(log)
	eventBus.Subscribe(auditHandler)

	if businessMetrics != nil {
		metricsHandler := ledgerapp.NewBusinessMetricsHandler(businessMetrics, log)
		eventBus.Subscribe(metricsHandler)
		log.Info("Event handlers registered",
			zap.Strings("metrics_events", metricsHandler.EventTypes()),
		)
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	eventSerializer := event.NewLedgerEventSerializer()
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	if cfg.Event.ProcessorEnabled {
		processorConfig := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			processorConfig.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			processorConfig.PollInterval = cfg.Event.PollInterval
		}
		processorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		if cfg.Event.CleanupRetention > 0 {
			processorConfig.CleanupRetention = cfg.Event.CleanupRetention
		}
		if cfg.Event.CleanupInterval > 0 {
			processorConfig.CleanupInterval = cfg.Event.CleanupInterval
		}

		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, processorConfig, log)
		if err := outboxProcessor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	// Application services
	scope := persistence.NewGormTransactionScope(db.DB)
	paymentService := ledgerapp.NewPaymentService(scope, log,
		ledgerapp.WithPaymentSummaryCache(summaryCache),
	)
	invoiceService := ledgerapp.NewInvoiceService(scope, log,
		ledgerapp.WithInvoiceSummaryCache(summaryCache),
	)
	creditService := ledgerapp.NewCreditService(scope, log,
		ledgerapp.WithCreditSummaryCache(summaryCache),
	)
	accountService := ledgerapp.NewAccountService(scope, summaryCache, log)
	queryService := ledgerapp.NewLedgerQueryService(scope, log,
		ledgerapp.WithQuerySummaryCache(summaryCache),
	)
	sweepService := ledgerapp.NewOverdueSweepService(scope, summaryCache, log)

	// Periodic overdue sweep
	sweepCtx, sweepCancel := context.WithCancel(ctx)
	defer sweepCancel()
	if cfg.Sweep.Enabled {
		go sweepService.Run(sweepCtx, cfg.Sweep.CheckInterval)
		log.Info("Overdue sweep scheduled", zap.Duration("interval", cfg.Sweep.CheckInterval))
	}

	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP engine and middleware
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))

	// Handlers and routes
	ledgerHandler := handler.NewLedgerHandler(
		paymentService,
		invoiceService,
		creditService,
		accountService,
		queryService,
	)
	systemHandler := handler.NewSystemHandler(db, outboxRepo, sweepService)

	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}))
	r.Register(ledgerHandler).
		Register(systemHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
