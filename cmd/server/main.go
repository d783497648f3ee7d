package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/auctionhouse/backend/internal/application/billing"
	eventapp "github.com/auctionhouse/backend/internal/application/event"
	notificationapp "github.com/auctionhouse/backend/internal/application/notification"
	settlementapp "github.com/auctionhouse/backend/internal/application/settlement"
	"github.com/auctionhouse/backend/internal/domain/billing"
	"github.com/auctionhouse/backend/internal/infrastructure/cache"
	"github.com/auctionhouse/backend/internal/infrastructure/config"
	"github.com/auctionhouse/backend/internal/infrastructure/event"
	"github.com/auctionhouse/backend/internal/infrastructure/logger"
	"github.com/auctionhouse/backend/internal/infrastructure/notify"
	"github.com/auctionhouse/backend/internal/infrastructure/payment"
	"github.com/auctionhouse/backend/internal/infrastructure/persistence"
	"github.com/auctionhouse/backend/internal/infrastructure/telemetry"
	"github.com/auctionhouse/backend/internal/interfaces/http/handler"
	"github.com/auctionhouse/backend/internal/interfaces/http/middleware"
	"github.com/auctionhouse/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

//	@title			Auction House Billing API
//	@version		1.0
//	@description	Invoice lifecycle, payment reconciliation, batch dispatch, seller settlement and notifications for an online auction marketplace.

//	@contact.name	API Support
//	@contact.url	https://github.com/auctionhouse/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
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
		_ = logger.Sync(log)
	}()

	log.Info("Starting Auction House Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Telemetry: tracing and metrics via the OTLP collector
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
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
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Database query tracing (span per query with table/operation attributes)
	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DefaultDBTracingConfig(), log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Redis backs webhook dedupe and real-time notification pushes
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unreachable at startup, continuing", zap.Error(err))
		}
		cancel()
	}

	// Initialize repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	statementRepo := persistence.NewGormStatementRepository(db.DB)
	attemptRepo := persistence.NewGormPaymentAttemptRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	itemRepo := persistence.NewGormAuctionItemRepository(db.DB)
	bidRepo := persistence.NewGormWinningBidRepository(db.DB)
	buyerRepo := persistence.NewGormBuyerRepository(db.DB)
	termsRepo := persistence.NewGormSellerTermsRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Create outbox publisher for transactional event saving
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)

	// Inject outbox publisher into repositories that need transactional event publishing
	invoiceRepo.SetOutboxEventSaver(outboxPublisher)
	statementRepo.SetOutboxEventSaver(outboxPublisher)

	// Payment gateway
	stripeConfig := payment.DefaultStripeConfig()
	stripeConfig.APIKey = cfg.Stripe.APIKey
	stripeConfig.WebhookSecret = cfg.Stripe.WebhookSecret
	gateway, err := payment.NewStripeAdapter(stripeConfig, log)
	if err != nil {
		log.Fatal("Failed to initialize payment gateway", zap.Error(err))
	}

	// Initialize application services
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, itemRepo, bidRepo, termsRepo, log)
	reconcileService := billingapp.NewReconcileService(
		invoiceRepo, buyerRepo, attemptRepo, gateway, billing.MostRecentVerifiedPolicy{}, log,
	)
	settlementService := settlementapp.NewSettlementService(statementRepo, itemRepo, bidRepo, termsRepo, log)
	notifyService := notificationapp.NewNotifyService(
		notificationRepo,
		notify.NewRedisPublisherWithClient(redisClient, log),
		log,
	)
	dispatchService := billingapp.NewDispatchService(invoiceRepo, reconcileService, notifyService, log)
	webhookService := billingapp.NewStripeWebhookService(billingapp.StripeWebhookServiceConfig{
		Config:      stripeConfig,
		Payer:       invoiceService,
		Idempotency: cache.NewRedisWebhookDedupeStore(redisClient, ""),
		Logger:      log,
	})
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Handlers are wrapped with idempotency so outbox redelivery cannot
	// double-notify. Falls back to an in-memory store when Redis is down.
	idempotencyFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := idempotencyFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Invoice lifecycle events -> buyer notifications
	invoiceEventsHandler := notificationapp.NewInvoiceEventsHandler(notifyService, log)
	eventBus.Subscribe(event.NewIdempotentHandler(invoiceEventsHandler, idempotencyStore, log))

	// Statement lifecycle events -> seller notifications
	statementEventsHandler := notificationapp.NewStatementEventsHandler(notifyService, log)
	eventBus.Subscribe(event.NewIdempotentHandler(statementEventsHandler, idempotencyStore, log))

	log.Info("Event handlers registered",
		zap.Strings("invoice_events", invoiceEventsHandler.EventTypes()),
		zap.Strings("statement_events", statementEventsHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize and start outbox processor for guaranteed event delivery.
	// It reads events from the outbox table and publishes them to the event bus.
	if cfg.Event.ProcessorEnabled {
		outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			outboxProcessorConfig.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			outboxProcessorConfig.PollInterval = cfg.Event.PollInterval
		}
		outboxProcessorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		if cfg.Event.CleanupRetention > 0 {
			outboxProcessorConfig.CleanupRetention = cfg.Event.CleanupRetention
		}
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxProcessorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", outboxProcessorConfig.BatchSize),
			zap.Duration("poll_interval", outboxProcessorConfig.PollInterval),
		)
	}

	// Initialize HTTP handlers
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, reconcileService)
	dispatchHandler := handler.NewDispatchHandler(dispatchService)
	settlementHandler := handler.NewSettlementHandler(settlementService)
	notificationHandler := handler.NewNotificationHandler(notifyService)
	webhookHandler := handler.NewStripeWebhookHandler(webhookService)
	outboxHandler := handler.NewOutboxHandler(outboxService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - Span per request, error marking
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. Metrics - HTTP RED metrics
	// 9. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// HTTP metrics
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		ServiceName:   cfg.Telemetry.ServiceName,
		Enabled:       cfg.Telemetry.Enabled,
	}))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Gateway webhook endpoint. Lives outside the versioned API surface
	// because the URL is registered with Stripe and must stay stable.
	engine.POST("/webhooks/stripe", webhookHandler.HandleStripeWebhook)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Billing domain (invoices, reconciliation, batch dispatch)
	billingRoutes := router.NewDomainGroup("billing", "/billing")
	billingRoutes.POST("/invoices", invoiceHandler.Create)
	billingRoutes.GET("/invoices", invoiceHandler.List)
	billingRoutes.GET("/invoices/:id", invoiceHandler.GetByID)
	billingRoutes.POST("/invoices/:id/cancel", invoiceHandler.Cancel)
	billingRoutes.POST("/invoices/:id/mark-paid", invoiceHandler.MarkPaid)
	billingRoutes.POST("/invoices/:id/mark-sent", invoiceHandler.MarkSent)
	billingRoutes.POST("/invoices/:id/reconcile", invoiceHandler.Reconcile)
	billingRoutes.POST("/auctions/:id/dispatch", dispatchHandler.SendAll)

	// Settlement domain (seller payout statements)
	settlementRoutes := router.NewDomainGroup("settlement", "/settlement")
	settlementRoutes.POST("/statements", settlementHandler.Compute)
	settlementRoutes.GET("/statements/:id", settlementHandler.GetByID)
	settlementRoutes.POST("/statements/:id/mark-sent", settlementHandler.MarkSent)
	settlementRoutes.POST("/statements/:id/mark-paid", settlementHandler.MarkPaid)
	settlementRoutes.GET("/auctions/:id/statements", settlementHandler.ListByAuction)

	// Notification domain (durable per-recipient records)
	notificationRoutes := router.NewDomainGroup("notification", "/notifications")
	notificationRoutes.GET("", notificationHandler.List)
	notificationRoutes.POST("/:id/read", notificationHandler.MarkRead)

	// System routes (health metadata, outbox administration)
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/outbox/dead", outboxHandler.GetDeadLetterEntries)
	systemRoutes.GET("/outbox/stats", outboxHandler.GetStats)
	systemRoutes.GET("/outbox/:id", outboxHandler.GetEntry)
	systemRoutes.POST("/outbox/:id/retry", outboxHandler.RetryDeadEntry)
	systemRoutes.POST("/outbox/dead/retry-all", outboxHandler.RetryAllDeadEntries)

	// Register all domain groups
	r.Register(billingRoutes).
		Register(settlementRoutes).
		Register(notificationRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
