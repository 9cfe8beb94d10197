package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/validator.v2"

	"github.com/terryyin/meeting-plunger/internal/transcription/core"
	"github.com/terryyin/meeting-plunger/internal/transcription/presentation/rest/handlers"
)

type Server struct {
	port            int
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger

	router *gin.Engine
}

type ServerConfig struct {
	TranscriptionService core.TranscriptionService `validate:"nonnil"`
	Logger               *slog.Logger              `validate:"nonnil"`
	Port                 int                       `validate:"min=1,max=65535"`
	ReadTimeout          time.Duration             `validate:"nonzero"`
	WriteTimeout         time.Duration             `validate:"nonzero"`
	ShutdownTimeout      time.Duration             `validate:"nonzero"`
	AllowedOrigins       []string                  `validate:"nonzero"`

	// Registers /testability routes
	EnableTestability bool
	// Optional. /stats is registered when set
	StatsReader core.UsageStatsReader
	// Optional. /metrics is registered when set
	MetricsHandler http.Handler
	// Optional. Requests are traced when set
	Tracer trace.Tracer
}

func NewServer(config ServerConfig) (*Server, error) {
	if err := validator.Validate(config); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	s := &Server{
		port:            config.Port,
		readTimeout:     config.ReadTimeout,
		writeTimeout:    config.WriteTimeout,
		shutdownTimeout: config.ShutdownTimeout,
		logger:          config.Logger,
		router:          gin.New(),
	}
	s.setup(config)

	return s, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled or SIGINT/SIGTERM is received, then
// drains in-flight requests within the shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		s.logger.Warn("Shutdown signal received, draining requests")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	s.logger.Warn("Server closed")
	return nil
}

func (s *Server) setup(config ServerConfig) {
	s.router.Use(Recovery(s.logger), RequestID())
	if config.Tracer != nil {
		s.router.Use(Tracing(config.Tracer))
	}
	s.router.Use(Logging(s.logger), CORS(config.AllowedOrigins))

	s.router.GET("/", handlers.Root)
	s.router.GET("/health", handlers.Health)

	transcriptionHandler := handlers.NewTranscriptionHandler(config.TranscriptionService, s.logger)
	s.router.POST("/transcribe", transcriptionHandler.Transcribe)

	if config.EnableTestability {
		mockHandler := handlers.NewMockHandler(config.TranscriptionService, s.logger)
		testability := s.router.Group("/testability")
		testability.POST("/mock", mockHandler.SetMock)
		testability.GET("/mock", mockHandler.GetMock)
	}

	if config.StatsReader != nil {
		statsHandler := handlers.NewStatsHandler(config.StatsReader, s.logger)
		s.router.GET("/stats", statsHandler.GetStats)
	}

	if config.MetricsHandler != nil {
		s.router.GET("/metrics", gin.WrapH(config.MetricsHandler))
	}
}
