package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appcash "github.com/erp/pos/internal/application/cashregister"
	"github.com/erp/pos/internal/application/monitor"
	appshift "github.com/erp/pos/internal/application/shift"
	"github.com/erp/pos/internal/domain/shift"
	"github.com/erp/pos/internal/infrastructure/auth"
	"github.com/erp/pos/internal/infrastructure/cache"
	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/erp/pos/internal/infrastructure/event"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/infrastructure/persistence"
	"github.com/erp/pos/internal/infrastructure/scheduler"
	"github.com/erp/pos/internal/infrastructure/telemetry"
	"github.com/erp/pos/internal/interfaces/http/handler"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/erp/pos/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			POS Shift API
//	@version		1.0
//	@description	Shift lifecycle and cash-register ledger for point-of-sale branches
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

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
		_ = logger.Sync(log)
	}()

	log.Info("Starting POS backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.String("monitor_policy", cfg.ShiftMonitor.Policy),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
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
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	shiftMetrics, err := telemetry.NewShiftMetrics(meterProvider.Meter(telemetry.ShiftMeterName))
	if err != nil {
		log.Fatal("Failed to register shift metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.GormMode), 200*time.Millisecond)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:               cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		IncludeQueryVariables: cfg.App.Env == "development",
	}, log); err != nil {
		log.Warn("Failed to enable database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Repositories
	shiftRepo := persistence.NewGormShiftRepository(db.DB)
	auditRepo := persistence.NewGormShiftAuditLogRepository(db.DB)
	ledger := persistence.NewGormLedgerStore(db.DB)
	directory := persistence.NewGormDirectory(db.DB)
	orders := persistence.NewGormOrderReader(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(shiftMetrics)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	thresholds := shift.Thresholds{
		Warning:  cfg.ShiftMonitor.WarningThreshold,
		Critical: cfg.ShiftMonitor.CriticalThreshold,
	}
	shiftService := appshift.NewService(shiftRepo, auditRepo, directory, orders, txScope, log)
	shiftService.SetEventPublisher(eventBus)
	shiftService.SetThresholds(thresholds)
	cashService := appcash.NewService(ledger, txScope, log)

	// Monitors
	claims, err := cache.NewClaimStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create warning claim store", zap.Error(err))
	}
	defer func() {
		if err := claims.Close(); err != nil {
			log.Warn("Error closing claim store", zap.Error(err))
		}
	}()

	warningMonitor := monitor.NewWarningMonitor(shiftRepo, auditRepo, directory, claims, monitor.WarningConfig{
		Thresholds:     thresholds,
		WarningDedupe:  cfg.ShiftMonitor.WarningDedupeWindow,
		CriticalDedupe: cfg.ShiftMonitor.CriticalDedupeWindow,
		BatchSize:      cfg.ShiftMonitor.BatchSize,
	}, log)
	warningMonitor.SetRecorder(shiftMetrics)

	autoCloseMonitor := monitor.NewAutoCloseMonitor(shiftRepo, auditRepo, txScope, monitor.AutoCloseConfig{
		After:     cfg.ShiftMonitor.AutoCloseAfter,
		BatchSize: cfg.ShiftMonitor.BatchSize,
	}, log)
	autoCloseMonitor.SetRecorder(shiftMetrics)
	autoCloseMonitor.SetEventPublisher(eventBus)

	selected, schedCfg, err := scheduler.SelectMonitor(cfg.ShiftMonitor, warningMonitor, autoCloseMonitor)
	if err != nil {
		log.Fatal("Invalid shift monitor configuration", zap.Error(err))
	}
	var monitorScheduler *scheduler.MonitorScheduler
	if selected != nil {
		monitorScheduler, err = scheduler.NewMonitorScheduler(selected, schedCfg, log)
		if err != nil {
			log.Fatal("Failed to create monitor scheduler", zap.Error(err))
		}
		if err := monitorScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start monitor scheduler", zap.Error(err))
		}
	} else {
		log.Info("Shift monitor disabled")
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	jwtService := auth.NewJWTService(cfg.JWT)

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins

	health := handler.NewHealthHandler(version).
		AddCheck("database", db.Ping).
		AddCheck("claim_store", func(ctx context.Context) error {
			return cache.Ping(ctx, claims)
		})

	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		CORS:           cors,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Validator:      jwtService,
		Logger:         log,
	}, router.Handlers{
		Shift:        handler.NewShiftHandler(shiftService),
		CashRegister: handler.NewCashRegisterHandler(cashService),
		Health:       health,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

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

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if monitorScheduler != nil {
		if err := monitorScheduler.Stop(shutdownCtx); err != nil {
			log.Warn("Monitor scheduler did not stop cleanly", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush traces", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
