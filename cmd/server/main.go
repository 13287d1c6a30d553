package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	consoleapp "github.com/britrip/hotelier/internal/application/console"
	"github.com/britrip/hotelier/internal/domain/authflow"
	"github.com/britrip/hotelier/internal/domain/property"
	"github.com/britrip/hotelier/internal/infrastructure/ai"
	"github.com/britrip/hotelier/internal/infrastructure/auth"
	"github.com/britrip/hotelier/internal/infrastructure/cache"
	"github.com/britrip/hotelier/internal/infrastructure/config"
	"github.com/britrip/hotelier/internal/infrastructure/event"
	"github.com/britrip/hotelier/internal/infrastructure/logger"
	"github.com/britrip/hotelier/internal/infrastructure/persistence"
	"github.com/britrip/hotelier/internal/infrastructure/reporting"
	"github.com/britrip/hotelier/internal/infrastructure/storage"
	"github.com/britrip/hotelier/internal/infrastructure/telemetry"
	"github.com/britrip/hotelier/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is stamped at build time with -ldflags "-X main.version=..."
var version = "dev"

const (
	shutdownTimeout = 30 * time.Second
	reapInterval    = 5 * time.Minute
	slowQuery       = 200 * time.Millisecond
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}

	// The log bridge has to exist before the logger so every entry reaches the collector
	logProvider, err := telemetry.NewLoggerProvider(ctx, telCfg, zap.NewNop())
	if err != nil {
		panic("Failed to initialize log export: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, logProvider.Core(cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting hotelier console",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telCfg, cfg.Telemetry.MetricsInterval, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer shutdownTelemetry(log, tracerProvider, meterProvider, logProvider)

	store, closeStore := openPortfolioStore(cfg, log)
	defer closeStore()

	guard := cache.NewGuard(ctx, cfg.Redis, log)

	assets, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize photo storage", zap.Error(err))
	}
	log.Info("Photo storage ready", zap.String("driver", cfg.Storage.Driver))

	completer, err := ai.NewGeminiCompleter(ctx, ai.Config{
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize assistant", zap.Error(err))
	}

	renderer := reporting.NewChromedpRenderer(reporting.ChromedpConfig{
		DefaultTimeout: cfg.Report.Timeout,
		ExecPath:       cfg.Report.ChromePath,
		NoSandbox:      cfg.Report.NoSandbox,
		Logger:         log,
	})
	defer func() {
		if err := renderer.Close(); err != nil {
			log.Error("Error closing report renderer", zap.Error(err))
		}
	}()

	metrics, err := telemetry.NewConsoleMetrics(meterProvider.Meter("hotelier/console"))
	if err != nil {
		log.Fatal("Failed to register console metrics", zap.Error(err))
	}

	eventBus := event.NewInMemoryEventBus(log)
	logHandler := event.NewLogHandler(log)
	eventBus.Subscribe(logHandler)
	eventBus.Subscribe(metrics)
	log.Info("Event handlers registered",
		zap.Strings("log_events", logHandler.EventTypes()),
		zap.Strings("metric_events", metrics.EventTypes()),
	)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	console := consoleapp.NewService(
		consoleapp.WithLogger(log),
		consoleapp.WithBaseContext(ctx),
		consoleapp.WithPortfolioStore(store),
		consoleapp.WithGuard(guard, 0),
		consoleapp.WithAssetStore(assets, cfg.Storage.MaxPhotoBytes),
		consoleapp.WithAssistant(completer, ai.NewGeminiEnhancer(completer)),
		consoleapp.WithReportExporter(reporting.NewExporter(renderer, cfg.Report.Timeout)),
		consoleapp.WithEventPublisher(eventBus),
		consoleapp.WithMetrics(metrics),
		consoleapp.WithAuthTimings(authflow.Timings{
			SendCode: cfg.Auth.SendCodeDelay,
			Verify:   cfg.Auth.VerifyDelay,
			Redirect: cfg.Auth.RedirectDelay,
		}),
	)
	go reapIdleSessions(ctx, console, cfg.App.SessionIdleTimeout, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:      cfg.Telemetry.ServiceName,
		Version:          version,
		TracingEnabled:   tracerProvider.IsEnabled(),
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
		TrustedProxies:   cfg.HTTP.TrustedProxies,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		Logger:           log,
	}, router.Deps{
		Console: console,
		Tokens:  auth.NewJWTService(cfg.Auth),
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := console.Shutdown(shutdownCtx); err != nil {
		log.Error("Error closing console sessions", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// openPortfolioStore returns the snapshot store selected by database.driver
// and a func that releases it
func openPortfolioStore(cfg *config.Config, log *zap.Logger) (property.PortfolioStore, func()) {
	if cfg.Database.Driver == "memory" {
		log.Info("Portfolio snapshots kept in memory")
		return persistence.NewMemoryPortfolioStore(), func() {}
	}

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Database.LogLevel), slowQuery)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, cfg.Database.Driver, false); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected successfully", zap.String("driver", db.Driver))

	return persistence.NewGormPortfolioStore(db.DB), func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}
}

func reapIdleSessions(ctx context.Context, console *consoleapp.Service, maxIdle time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := console.ReapIdle(maxIdle); n > 0 {
				log.Debug("Reaped idle sessions",
					zap.Int("count", n),
					zap.Int("remaining", console.SessionCount()),
				)
			}
		}
	}
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

func shutdownTelemetry(log *zap.Logger, providers ...shutdowner) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, p := range providers {
		if err := p.Shutdown(ctx); err != nil {
			log.Warn("Error shutting down telemetry", zap.Error(err))
		}
	}
}
