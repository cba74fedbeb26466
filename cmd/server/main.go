package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/infrastructure/cache"
	"github.com/billing/backend/internal/infrastructure/config"
	"github.com/billing/backend/internal/infrastructure/logger"
	"github.com/billing/backend/internal/infrastructure/persistence"
	"github.com/billing/backend/internal/infrastructure/telemetry"
	"github.com/billing/backend/internal/interfaces/http/handler"
	"github.com/billing/backend/internal/interfaces/http/middleware"
	"github.com/billing/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

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

	log.Info("Starting Billing Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry providers. Disabled providers are no-ops, so the wiring
	// below stays unconditional.
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	var billingMetrics *telemetry.BillingMetrics
	if cfg.Telemetry.Enabled {
		billingMetrics, err = telemetry.NewBillingMetrics(telemetry.BillingMetricsConfig{
			Meter:  meterProvider.Meter("billing"),
			Logger: log,
		})
		if err != nil {
			log.Fatal("Failed to initialize billing metrics", zap.Error(err))
		}
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
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
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			SlowQueryThresh: 200 * time.Millisecond,
			DBName:          cfg.Database.DBName,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	vendorRepo := persistence.NewGormVendorRepository(db.DB)
	aliasRepo := persistence.NewGormAliasRepository(db.DB)
	sourceRepo := persistence.NewGormSourceRowRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	gormRateRepo := persistence.NewGormRateRepository(db.DB)

	// Rate-table cache. Rates change rarely and are read on every
	// calculation, so they sit behind a snapshot cache.
	cacheStore := cache.NewStoreFromConfig(cfg, log)
	cachedRateRepo := cache.NewCachedRateRepository(gormRateRepo, cacheStore, cfg.RateCache.TTL, log)
	defer func() {
		if err := cacheStore.Close(); err != nil {
			log.Error("Error closing cache store", zap.Error(err))
		}
	}()

	// Initialize application services
	calcService := billingapp.NewCalculationService(vendorRepo, aliasRepo, cachedRateRepo, sourceRepo, log)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, vendorRepo, log)
	vendorService := billingapp.NewVendorService(vendorRepo, aliasRepo, sourceRepo, log)
	rateService := billingapp.NewRateService(cachedRateRepo, log)
	rateService.SetCacheInvalidator(cachedRateRepo)

	// Rate limiter backend follows the cache backend: Redis when
	// configured, in-memory otherwise.
	var limiter middleware.Limiter
	if cfg.HTTP.RateLimitEnabled {
		if cfg.RateCache.Backend == "redis" {
			client := redis.NewClient(&redis.Options{
				Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			limiter = middleware.NewRedisLimiter(client, "ratelimit", cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		} else {
			limiter = middleware.NewMemoryLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		}
	}

	engine, err := router.NewEngine(cfg, log, limiter)
	if err != nil {
		log.Fatal("Failed to initialize HTTP engine", zap.Error(err))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewCalculationHandler(calcService, billingMetrics, cfg.Batch.Workers)).
		Register(handler.NewInvoiceHandler(invoiceService, calcService, billingMetrics)).
		Register(handler.NewVendorHandler(vendorService)).
		Register(handler.NewRateHandler(rateService)).
		Register(handler.NewSystemHandler(db))
	r.Setup()

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
