package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/terryyin/meeting-plunger/internal/transcription/adapters/audiotranscriber"
	"github.com/terryyin/meeting-plunger/internal/transcription/adapters/metricscollector"
	"github.com/terryyin/meeting-plunger/internal/transcription/adapters/mockswitch"
	"github.com/terryyin/meeting-plunger/internal/transcription/config"
	"github.com/terryyin/meeting-plunger/internal/transcription/core"
	"github.com/terryyin/meeting-plunger/internal/transcription/infra/telemetry"
	"github.com/terryyin/meeting-plunger/internal/transcription/presentation/rest"
)

const serviceName = "meeting-plunger"

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := setupLogger(cfg.ApplicationConfig.SlogLevel())

	tel, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:  serviceName,
		Environment:  cfg.ApplicationConfig.Environment,
		Enabled:      cfg.TelemetryConfig.Enabled,
		OTLPEndpoint: cfg.TelemetryConfig.OTLPEndpoint,
		OTLPInsecure: cfg.TelemetryConfig.OTLPInsecure,
		TraceStdout:  cfg.TelemetryConfig.TraceStdout,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	deps, err := initializeDependencies(ctx, cfg, tel, logger)
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer deps.Cleanup(logger)

	service, err := core.NewService(core.ServiceConfig{
		MockSwitch:       mockswitch.NewSwitch(),
		Transcriber:      deps.Transcriber,
		MetricsCollector: deps.MetricsCollector,
		Logger:           logger,
		Model:            cfg.ProviderConfig.TranscriptionModel,
	})
	if err != nil {
		log.Fatalf("Failed to initialize transcription service: %v", err)
	}

	serverCfg := rest.ServerConfig{
		TranscriptionService: service,
		Logger:               logger,
		Port:                 cfg.ServerConfig.Port,
		ReadTimeout:          cfg.ServerConfig.ReadTimeoutDuration(),
		WriteTimeout:         cfg.ServerConfig.WriteTimeoutDuration(),
		ShutdownTimeout:      cfg.ServerConfig.ShutdownTimeoutDuration(),
		AllowedOrigins:       cfg.ServerConfig.AllowedOrigins(),
		EnableTestability:    cfg.ApplicationConfig.EnableTestability,
		MetricsHandler:       tel.MetricsHandler,
		Tracer:               tel.Tracer,
	}
	// Assigned only when present so the interface stays nil otherwise
	if deps.SQLiteMetrics != nil {
		serverCfg.StatsReader = deps.SQLiteMetrics
	}

	httpServer, err := rest.NewServer(serverCfg)
	if err != nil {
		log.Fatalf("Failed to create HTTP server: %v", err)
	}

	logger.InfoContext(ctx, "Starting Meeting Plunger API",
		"environment", cfg.ApplicationConfig.Environment,
		"port", cfg.ServerConfig.Port,
		"testability", cfg.ApplicationConfig.EnableTestability,
		"model", cfg.ProviderConfig.TranscriptionModel,
	)
	if !cfg.ApplicationConfig.EnableTestability {
		logger.InfoContext(ctx, "Testability endpoints disabled")
	} else if cfg.ApplicationConfig.Environment == "production" {
		logger.WarnContext(ctx, "Testability endpoints are enabled in production")
	}

	// Start server (this blocks until shutdown)
	if err := httpServer.Start(ctx); err != nil {
		logger.ErrorContext(ctx, "Server error", "error", err)
		deps.Cleanup(logger)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerConfig.ShutdownTimeoutDuration())
	defer cancel()
	if err := tel.Shutdown(shutdownCtx); err != nil {
		logger.WarnContext(ctx, "Telemetry shutdown failed", "error", err)
	}

	logger.InfoContext(ctx, "Application shutdown completed")
}

// Dependencies holds all initialized dependencies
type Dependencies struct {
	Transcriber      core.Transcriber
	MetricsCollector core.MetricsCollector
	SQLiteMetrics    *metricscollector.MetricsCollector

	stopRetention context.CancelFunc
}

// Cleanup stops background work and closes the metrics database
func (d *Dependencies) Cleanup(logger *slog.Logger) {
	if d.stopRetention != nil {
		d.stopRetention()
		d.stopRetention = nil
	}
	if d.SQLiteMetrics != nil {
		if err := d.SQLiteMetrics.Close(); err != nil {
			logger.Warn("Failed to close metrics database", "error", err)
		}
		d.SQLiteMetrics = nil
	}
}

// setupLogger creates and configures the logger
func setupLogger(level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Use JSON handler
	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(logger)

	return logger
}

// initializeDependencies initializes all external dependencies
func initializeDependencies(ctx context.Context, cfg *config.Configs, tel *telemetry.Telemetry, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	transcriber, err := audiotranscriber.NewOpenAITranscriber(audiotranscriber.OpenAIConfig{
		APIKey:  cfg.ProviderConfig.OpenAIAPIKey,
		BaseURL: cfg.ProviderConfig.OpenAIBaseURL,
		Timeout: cfg.ProviderConfig.Timeout(),
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize transcriber: %w", err)
	}
	if cfg.ProviderConfig.OpenAIAPIKey == "" {
		logger.WarnContext(ctx, "OPENAI_API_KEY is not set, transcription requests will fail until it is configured")
	}
	deps.Transcriber = transcriber

	var collectors []core.MetricsCollector

	if cfg.TelemetryConfig.Enabled {
		otelCollector, err := metricscollector.NewOTelCollector(tel.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize otel metrics collector: %w", err)
		}
		collectors = append(collectors, otelCollector)
	}

	if dbPath := cfg.TelemetryConfig.MetricsDBPath; dbPath != "" {
		sqliteMetrics, err := metricscollector.NewMetricsCollector(dbPath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize metrics collector: %w", err)
		}
		deps.SQLiteMetrics = sqliteMetrics
		collectors = append(collectors, sqliteMetrics)

		if retention := cfg.TelemetryConfig.MetricsRetention(); retention > 0 {
			retentionCtx, stop := context.WithCancel(ctx)
			deps.stopRetention = stop
			go runMetricsRetention(retentionCtx, sqliteMetrics, retention, logger)
		}
	}

	deps.MetricsCollector = metricscollector.Combine(collectors...)
	if len(collectors) == 0 {
		logger.InfoContext(ctx, "No metrics collectors configured, metrics are discarded")
	}

	return deps, nil
}

// runMetricsRetention deletes expired metrics at startup and then daily
func runMetricsRetention(ctx context.Context, collector *metricscollector.MetricsCollector, retention time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		if _, err := collector.CleanupOldMetrics(ctx, retention); err != nil {
			logger.WarnContext(ctx, "Metrics retention cleanup failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
