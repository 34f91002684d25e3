package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	appcustomer "github.com/ledgerbook/backend/internal/application/customer"
	appdocument "github.com/ledgerbook/backend/internal/application/document"
	appfinance "github.com/ledgerbook/backend/internal/application/finance"
	appidentity "github.com/ledgerbook/backend/internal/application/identity"
	appledger "github.com/ledgerbook/backend/internal/application/ledger"
	apppartner "github.com/ledgerbook/backend/internal/application/partner"
	appreport "github.com/ledgerbook/backend/internal/application/report"
	"github.com/ledgerbook/backend/internal/infrastructure/auth"
	"github.com/ledgerbook/backend/internal/infrastructure/cache"
	"github.com/ledgerbook/backend/internal/infrastructure/config"
	"github.com/ledgerbook/backend/internal/infrastructure/event"
	"github.com/ledgerbook/backend/internal/infrastructure/logger"
	"github.com/ledgerbook/backend/internal/infrastructure/persistence"
	"github.com/ledgerbook/backend/internal/infrastructure/storage"
	"github.com/ledgerbook/backend/internal/infrastructure/telemetry"
	"github.com/ledgerbook/backend/internal/interfaces/http/handler"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
	"github.com/ledgerbook/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Ledgerbook API
//	@version		1.0
//	@description	Bookkeeping backend for a small business: customers, invoices, payments, partner expenses and reports.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	providers, err := telemetry.Setup(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			bootLog.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	// Re-create the logger so entries are also exported over OTLP
	level, _ := logger.ParseLevel(cfg.Log.Level)
	log, err := logger.New(logCfg, providers.Logs.ZapCore(level))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ledgerbook",
		zap.String("app", cfg.App.Name),
		zap.String("version", version),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	clock := clockwork.NewRealClock()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(ctx, &cfg.Database, log, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.NewDBTracingPlugin(cfg.Telemetry, dbSystem(db.Dialect()), log).Register(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}
	if cfg.App.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
		log.Info("Schema migrated from models")
	}
	log.Info("Database connected", zap.String("dialect", db.Dialect()))

	// Redis is optional; without it revocations and summaries stay in process
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = cache.NewRedisClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn("Redis unavailable, continuing without it", zap.Error(err))
			rdb = nil
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Error("Error closing redis", zap.Error(err))
				}
			}()
		}
	}

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklistWithClock(clock)
	cacheOpts := []cache.SummaryCacheFactoryOption{
		cache.WithLogger(log),
		cache.WithClock(clock),
		cache.WithInMemoryFallback(true),
	}
	if rdb != nil {
		blacklist = auth.NewRedisTokenBlacklist(rdb)
		cacheOpts = append(cacheOpts, cache.WithRedisClient(rdb))
	}
	summaryCache, err := cache.NewSummaryCacheFactory(cfg.Cache, cacheOpts...).Create()
	if err != nil {
		log.Fatal("Failed to create summary cache", zap.Error(err))
	}

	objectStorage, err := storage.NewObjectStorage(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	// Repositories
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	partnerRepo := persistence.NewGormPartnerRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	activityRepo := persistence.NewGormActivityLogRepository(db.DB)
	fileRepo := persistence.NewGormFileRepository(db.DB)
	transactor := persistence.NewGormFinanceTransactor(db.DB)

	// Event bus and its subscribers
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(appfinance.NewSummaryInvalidator(summaryCache, log))
	eventBus.Subscribe(appidentity.NewActivityRecorder(activityRepo, log))

	ledgerMetrics, err := telemetry.NewLedgerMetrics(providers.Meter.Meter("ledgerbook"))
	if err != nil {
		log.Warn("Ledger metrics disabled", zap.Error(err))
	} else {
		eventBus.Subscribe(ledgerMetrics)
	}

	if cfg.Event.AMQPEnabled {
		conn, err := event.DialAMQP(ctx, cfg.Event.AMQPURL, cfg.Event.AMQPExchange, log)
		if err != nil {
			log.Fatal("Failed to connect to AMQP broker", zap.Error(err))
		}
		defer func() {
			if err := conn.Close(); err != nil {
				log.Error("Error closing AMQP connection", zap.Error(err))
			}
		}()
		forwarder := event.NewAMQPForwarder(conn.Channel, cfg.Event.AMQPExchange, cfg.Event.QueueSize, log,
			event.WithPublishTimeout(cfg.Event.PublishTimeout))
		forwarder.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := forwarder.Stop(stopCtx); err != nil {
				log.Error("Error stopping event forwarder", zap.Error(err))
			}
			forwarded, dropped := forwarder.Stats()
			log.Info("Event forwarder stopped", zap.Int64("forwarded", forwarded), zap.Int64("dropped", dropped))
		}()
		eventBus.Subscribe(forwarder)
	}

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	jwtService := auth.NewJWTServiceWithClock(cfg.JWT, clock)
	authService := appidentity.NewAuthService(userRepo, jwtService, blacklist, eventBus, clock, log)
	userService := appidentity.NewUserService(userRepo, blacklist, eventBus, cfg.JWT.RefreshTokenExpiration, log)
	activityService := appidentity.NewActivityLogService(activityRepo, log)
	customerService := appcustomer.NewCustomerService(customerRepo, projectRepo, invoiceRepo, paymentRepo, transactionRepo, eventBus, log)
	projectService := appcustomer.NewProjectService(projectRepo, customerRepo, invoiceRepo, paymentRepo, eventBus, log)
	invoiceService := appfinance.NewInvoiceService(invoiceRepo, paymentRepo, customerRepo, projectRepo, fileRepo, eventBus, clock, log)
	paymentService := appfinance.NewPaymentService(transactor, paymentRepo, customerRepo, projectRepo, eventBus, clock, log)
	summaryService := appfinance.NewAccountSummaryService(customerRepo, projectRepo, invoiceRepo, paymentRepo, summaryCache, clock, log)
	partnerService := apppartner.NewPartnerService(partnerRepo, expenseRepo, eventBus, log)
	expenseService := apppartner.NewExpenseService(expenseRepo, partnerRepo, categoryRepo, fileRepo, eventBus, clock, log)
	categoryService := appledger.NewCategoryService(categoryRepo, transactionRepo, expenseRepo, eventBus, log)
	transactionService := appledger.NewTransactionService(transactionRepo, categoryRepo, customerRepo, projectRepo, eventBus, clock, log)
	reportService := appreport.NewReportService(transactionRepo, categoryRepo, expenseRepo, invoiceRepo, customerRepo, projectRepo, clock, log)
	fileService := appdocument.NewFileService(fileRepo, objectStorage, eventBus, clock, appdocument.FileServiceConfig{
		MaxUploadSize:     cfg.Storage.MaxUploadSize,
		AllowedTypes:      cfg.Storage.AllowedTypes,
		PresignExpiration: cfg.Storage.PresignExpiration,
	}, log)

	if created, err := userService.BootstrapAdmin(ctx, cfg.App.BootstrapAdminEmail, cfg.App.BootstrapAdminPassword); err != nil {
		log.Fatal("Failed to create bootstrap administrator", zap.Error(err))
	} else if created {
		log.Warn("Bootstrap administrator created; change its password after the first login")
	}

	// Health checks: the database is critical, the cache is not
	checks := []handler.HealthCheck{{Name: "database", Critical: true, Check: db.Ping}}
	if rdb != nil {
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order matters: the request ID must exist before logging,
	// and the span must exist before the attribute injector runs
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: providers.Meter,
		Enabled:       cfg.Telemetry.MetricsEnabled,
		Logger:        log,
	}))
	if providers.Profiler.IsEnabled() {
		engine.Use(middleware.ProfilingLabels())
	}
	engine.Use(middleware.Secure(cfg.App.Env == "production"))
	engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-Checksum-SHA256"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiterWithClock(
			cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, clock)))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	apiCfg := router.APIConfig{
		Authenticate: middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
			JWTService: jwtService,
			Sessions:   authService,
			Logger:     log,
		}),
		MaxBodySize: cfg.HTTP.MaxBodySize,
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		apiCfg.AuthRateLimit = middleware.RateLimit(middleware.NewRateLimiterWithClock(
			cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow, clock))
	}

	router.RegisterAPI(engine, router.Handlers{
		System:      handler.NewSystemHandler(cfg.App.Name, version, clock, checks...),
		Auth:        handler.NewAuthHandler(authService),
		User:        handler.NewUserHandler(userService),
		ActivityLog: handler.NewActivityLogHandler(activityService),
		Customer:    handler.NewCustomerHandler(customerService, summaryService),
		Project:     handler.NewProjectHandler(projectService),
		Invoice:     handler.NewInvoiceHandler(invoiceService),
		Payment:     handler.NewPaymentHandler(paymentService),
		Partner:     handler.NewPartnerHandler(partnerService),
		Expense:     handler.NewExpenseHandler(expenseService),
		Category:    handler.NewCategoryHandler(categoryService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Report:      handler.NewReportHandler(reportService),
		File:        handler.NewFileHandler(fileService),
	}, apiCfg)

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// dbSystem maps a gorm dialect name to the OpenTelemetry db.system value
func dbSystem(dialect string) string {
	if dialect == "postgres" {
		return "postgresql"
	}
	return dialect
}
