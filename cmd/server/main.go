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
	connectorapp "github.com/madhugraj/transact-ai-nexus-sub002/internal/application/connector"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/application/extraction"
	matchingapp "github.com/madhugraj/transact-ai-nexus-sub002/internal/application/matching"
	procurementapp "github.com/madhugraj/transact-ai-nexus-sub002/internal/application/procurement"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/matching"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/auth"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/cache"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/config"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/crypto"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/logger"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/oauth"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/persistence"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/scheduler"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/storage"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/telemetry"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/vision"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/interfaces/http/handler"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/interfaces/http/middleware"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Transact Nexus API
//	@version		1.0
//	@description	Purchase order and invoice matching with document extraction
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

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
		_ = log.Sync()
	}()

	ctx := context.Background()

	// Telemetry: traces, metrics and OTLP logs share one exporter config
	telCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}
	logProvider, err := telemetry.NewLoggerProvider(ctx, telCfg, cfg.Telemetry.LogsEnabled, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	log = logger.Tee(log, logProvider.ZapCore(cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)))

	log.Info("Starting document matching backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeEndpoint,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Warn("Profiler unavailable, continuing without it", zap.Error(err))
	} else if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if profiler != nil {
			_ = profiler.Stop()
		}
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
		if err := logProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down log provider", zap.Error(err))
		}
	}()

	meter := meterProvider.Meter("transact-nexus")
	metrics, err := telemetry.NewMatchingMetrics(meter, log)
	if err != nil {
		log.Warn("Matching metrics unavailable", zap.Error(err))
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))

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
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Warn("Database tracing unavailable", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Redis backs the OAuth state replay guard and is part of the health check
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		_ = redisClient.Close()
	}()

	extractionCache, err := cache.NewExtractionCacheFactory(cfg.Redis, cfg.Cache,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	).CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize extraction cache", zap.Error(err))
	}

	// Object storage
	store, err := storage.NewS3DocumentStore(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		log.Fatal("Failed to initialize document storage", zap.Error(err))
	}
	if err := store.EnsureBucket(ctx); err != nil {
		log.Warn("Document bucket check failed", zap.String("bucket", store.Bucket()), zap.Error(err))
	}

	// Vision model
	visionClient, err := vision.NewClient(ctx, vision.ClientConfig{
		APIKey:      cfg.Vision.APIKey,
		Model:       cfg.Vision.Model,
		Timeout:     cfg.Vision.Timeout,
		Temperature: cfg.Vision.Temperature,
		MaxRetries:  cfg.Vision.MaxRetries,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize vision client", zap.Error(err))
	}
	extractor := vision.NewExtractor(visionClient, log, 0)

	// Initialize repositories
	poRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	comparisonRepo := persistence.NewGormComparisonRepository(db.DB)
	sourceRepo := persistence.NewGormSourceDocumentRepository(db.DB)
	targetRepo := persistence.NewGormTargetDocumentRepository(db.DB)
	tableRepo := persistence.NewGormExtractedTableRepository(db.DB)
	connectionRepo := persistence.NewGormConnectionRepository(db.DB)

	// Initialize application services
	matcher := matching.NewMatcher(cfg.Matching.ComparisonConfig())

	purchaseOrderService := procurementapp.NewPurchaseOrderService(poRepo)
	invoiceService := procurementapp.NewInvoiceService(invoiceRepo)

	matchingService := matchingapp.NewService(poRepo, invoiceRepo, comparisonRepo, matcher)
	matchingService.SetLogger(log)
	matchingService.SetBatchSize(cfg.Matching.AutoMatchBatchSize)

	extractionService := extraction.NewService(extraction.Repositories{
		Sources:        sourceRepo,
		Targets:        targetRepo,
		Tables:         tableRepo,
		PurchaseOrders: poRepo,
		Invoices:       invoiceRepo,
	}, store, extractor, matcher, extraction.Config{
		MaxUploadSize: cfg.Storage.MaxUploadSize,
		CacheTTL:      cfg.Cache.TTL,
		URLExpiry:     cfg.Storage.PresignExpiration,
	})
	extractionService.SetLogger(log)
	if extractionCache != nil {
		extractionService.SetCache(extractionCache)
	}

	cipher, err := crypto.NewTokenCipher(cfg.Connectors.EncryptionKey)
	if err != nil {
		log.Fatal("Failed to initialize token cipher", zap.Error(err))
	}
	connectorService := connectorapp.NewService(
		connectionRepo,
		oauth.NewRelay(cfg.Connectors),
		auth.NewStateSigner(cfg.JWT.Secret, cfg.Connectors.StateTTL),
		cipher,
	)
	connectorService.SetLogger(log)
	if err := redisClient.Ping(ctx).Err(); err == nil {
		connectorService.SetStateStore(auth.NewRedisStateStore(redisClient))
	} else {
		log.Warn("Redis unavailable, OAuth state replay guard is process-local", zap.Error(err))
		connectorService.SetStateStore(auth.NewInMemoryStateStore())
	}

	if metrics != nil {
		matchingService.SetMetrics(metrics)
		extractionService.SetMetrics(metrics)
		connectorService.SetMetrics(metrics)
	}

	// Scheduled auto-matching (if enabled)
	if cfg.Scheduler.Enabled {
		trigger, err := scheduler.NewCronTrigger(scheduler.CronTriggerConfig{
			Schedule:   cfg.Scheduler.AutoMatchCron,
			JobTimeout: cfg.Scheduler.JobTimeout,
		}, invoiceRepo, matchingService, log)
		if err != nil {
			log.Fatal("Failed to create auto-match scheduler", zap.Error(err))
		}
		if err := trigger.Start(ctx); err != nil {
			log.Fatal("Failed to start auto-match scheduler", zap.Error(err))
		}
		defer func() {
			if err := trigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping auto-match scheduler", zap.Error(err))
			}
		}()
		log.Info("Auto-match scheduler started",
			zap.String("schedule", cfg.Scheduler.AutoMatchCron),
			zap.Duration("job_timeout", cfg.Scheduler.JobTimeout),
		)
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Logger - Request-scoped logger and access log
	// 3. Recovery - Catch panics
	// 4. Tracing, metrics and profiling labels
	// 5. Security headers, CORS and body size limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	})...)
	if httpMetrics, err := middleware.HTTPMetrics(meter); err != nil {
		log.Warn("HTTP metrics unavailable", zap.Error(err))
	} else {
		engine.Use(httpMetrics)
	}
	engine.Use(middleware.Profiling(cfg.Telemetry.ProfilingEnabled))
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	healthHandler := handler.NewHealthHandler(version, map[string]handler.HealthCheck{
		"database": db.Ping,
		"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	})
	engine.GET("/health", healthHandler.Check)

	// API routes require a bearer token
	jwtConfig := middleware.DefaultJWTConfig(auth.NewJWTService(cfg.JWT))
	jwtConfig.AllowUserHeader = cfg.JWT.AllowUserHeader && !cfg.IsProduction()
	jwtConfig.Logger = log
	apiMiddleware := []gin.HandlerFunc{middleware.JWTAuthMiddleware(jwtConfig)}

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	router.NewRouter(engine, router.WithAPIVersion("v1"), router.WithMiddleware(apiMiddleware...)).
		RegisterAll(router.Handlers{
			PurchaseOrders: handler.NewPurchaseOrderHandler(purchaseOrderService),
			Invoices:       handler.NewInvoiceHandler(invoiceService),
			Matching:       handler.NewMatchingHandler(matchingService),
			Documents:      handler.NewDocumentHandler(extractionService, cfg.Storage.MaxUploadSize),
			Connectors:     handler.NewConnectorHandler(connectorService),
		}).
		Setup()

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
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
