// Server entrypoint. Wires configuration, database, the outbox pipeline,
// application services and the HTTP API, then serves until SIGINT/SIGTERM.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	billingapp "github.com/kellertobias/servobill-sub000/internal/application/billing"
	catalogapp "github.com/kellertobias/servobill-sub000/internal/application/catalog"
	eventapp "github.com/kellertobias/servobill-sub000/internal/application/event"
	financeapp "github.com/kellertobias/servobill-sub000/internal/application/finance"
	partnerapp "github.com/kellertobias/servobill-sub000/internal/application/partner"
	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
	"github.com/kellertobias/servobill-sub000/internal/infrastructure/cache"
	"github.com/kellertobias/servobill-sub000/internal/infrastructure/config"
	"github.com/kellertobias/servobill-sub000/internal/infrastructure/email"
	"github.com/kellertobias/servobill-sub000/internal/infrastructure/event"
	csvimport "github.com/kellertobias/servobill-sub000/internal/infrastructure/import"
	"github.com/kellertobias/servobill-sub000/internal/infrastructure/logger"
	"github.com/kellertobias/servobill-sub000/internal/infrastructure/pdf"
	"github.com/kellertobias/servobill-sub000/internal/infrastructure/persistence"
	"github.com/kellertobias/servobill-sub000/internal/infrastructure/scheduler"
	"github.com/kellertobias/servobill-sub000/internal/infrastructure/storage"
	"github.com/kellertobias/servobill-sub000/internal/interfaces/http/handler"
	"github.com/kellertobias/servobill-sub000/internal/interfaces/http/middleware"
	"github.com/kellertobias/servobill-sub000/internal/interfaces/http/router"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: time.RFC3339,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync(log) }()

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", zap.Error(err))
		}
	}()

	// event serialization and the transactional outbox
	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	outboxPublisher := event.NewOutboxPublisher(serializer)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB, outboxPublisher)
	settingsRepo := persistence.NewGormSettingsRepository(db.DB)
	jobRepo := persistence.NewGormDeferredJobRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB, outboxPublisher)
	productRepo := persistence.NewGormProductRepository(db.DB, outboxPublisher)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB, outboxPublisher)
	categoryRepo := persistence.NewGormExpenseCategoryRepository(db.DB)

	// document storage: S3 when a bucket is configured, in-memory otherwise
	var objectStorage billingapp.DocumentStorageService
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ObjectStorage(cfg.Storage)
		if err != nil {
			log.Fatal("failed to create object storage", zap.Error(err))
		}
		objectStorage = s3Storage
	} else {
		log.Warn("no storage bucket configured, rendered documents are held in memory")
		objectStorage = storage.NewInMemoryObjectStorage("local", "local")
	}

	// application services
	invoiceService := billingapp.NewInvoiceService(
		invoiceRepo, settingsRepo, jobRepo, customerRepo,
		objectStorage, cfg.Pdf.DebounceWindow, log)
	settingsService := billingapp.NewSettingsService(settingsRepo)
	customerService := partnerapp.NewCustomerService(customerRepo)
	importSessions := csvimport.NewInMemorySessionStore(24 * time.Hour)
	defer importSessions.Stop()
	customerImportService := partnerapp.NewCustomerImportService(customerRepo, importSessions, log)
	productService := catalogapp.NewProductService(productRepo)
	expenseService := financeapp.NewExpenseService(expenseRepo, categoryRepo)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	templateEngine, err := pdf.NewTemplateEngine()
	if err != nil {
		log.Fatal("failed to create template engine", zap.Error(err))
	}
	pdfService := billingapp.NewPdfService(
		templateEngine,
		pdf.NewChromedpRenderer(cfg.Pdf, log),
		objectStorage,
		log,
	)

	var emailSender billingapp.EmailSender
	if cfg.Email.SMTPHost != "" {
		emailSender = email.NewSMTPSender(cfg.Email, log)
	} else {
		log.Warn("no smtp host configured, outbound mail is recorded in memory")
		emailSender = email.NewRecordingSender()
	}

	// duplicate suppression for event consumers and the delivery webhook
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Host != "" {
		redisStore, err := cache.NewRedisIdempotencyStore(cfg.Redis)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisStore.Close() }()
		idempotencyStore = redisStore
	} else {
		log.Warn("no redis configured, idempotency keys are held in memory")
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
	}

	webhookService := billingapp.NewEmailWebhookService(invoiceService, idempotencyStore, log)

	// event bus and consumers
	eventBus := event.NewInMemoryEventBus(log)
	consumers := []shared.EventHandler{
		billingapp.NewPdfRequestedHandler(invoiceRepo, pdfService, log),
		billingapp.NewInvoiceSendHandler(invoiceRepo, pdfService, emailSender, log),
		billingapp.NewSendLaterHandler(invoiceService, log),
		billingapp.NewInvoicePublishedHandler(invoiceRepo, expenseRepo, log),
	}
	for _, consumer := range event.WrapHandlersWithIdempotency(consumers, idempotencyStore, log) {
		eventBus.Subscribe(consumer)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("failed to start event bus", zap.Error(err))
	}

	var outboxProcessor *event.OutboxProcessor
	if cfg.Event.ProcessorEnabled {
		processorCfg := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			processorCfg.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			processorCfg.PollInterval = cfg.Event.PollInterval
		}
		processorCfg.CleanupEnabled = cfg.Event.CleanupEnabled
		if cfg.Event.CleanupRetention > 0 {
			processorCfg.CleanupRetention = cfg.Event.CleanupRetention
		}

		outboxProcessor = event.NewOutboxProcessor(outboxRepo, eventBus, serializer, processorCfg, log)
		if err := outboxProcessor.Start(ctx); err != nil {
			log.Fatal("failed to start outbox processor", zap.Error(err))
		}
	}

	var jobScheduler *scheduler.DeferredJobScheduler
	if cfg.Scheduler.Enabled {
		jobScheduler = scheduler.NewDeferredJobScheduler(jobRepo, eventBus, serializer, cfg.Scheduler, log)
		if err := jobScheduler.Start(ctx); err != nil {
			log.Fatal("failed to start deferred job scheduler", zap.Error(err))
		}
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	engine.Use(middleware.Tenant(middleware.DefaultTenantConfig()))

	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("failed to set trusted proxies", zap.Error(err))
	}

	handler.NewSystemHandler(db.DB).Register(engine)

	api := router.NewRouter(engine)
	api.Register(handler.NewInvoiceHandler(invoiceService))
	api.Register(handler.NewCustomerHandler(customerService))
	api.Register(handler.NewCustomerImportHandler(customerImportService))
	api.Register(handler.NewProductHandler(productService))
	api.Register(handler.NewExpenseHandler(expenseService))
	api.Register(handler.NewSettingsHandler(settingsService))
	api.Register(handler.NewWebhookHandler(webhookService))
	api.Register(handler.NewOutboxHandler(outboxService))
	api.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
	if jobScheduler != nil {
		if err := jobScheduler.Stop(shutdownCtx); err != nil {
			log.Error("scheduler shutdown failed", zap.Error(err))
		}
	}
	if outboxProcessor != nil {
		if err := outboxProcessor.Stop(shutdownCtx); err != nil {
			log.Error("outbox processor shutdown failed", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("event bus shutdown failed", zap.Error(err))
	}

	log.Info("server stopped")
}
