package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gopkg.in/validator.v2"
)

// Service implements the TranscriptionService interface
type Service struct {
	mockSwitch       MockSwitch
	transcriber      Transcriber
	metricsCollector MetricsCollector
	logger           *slog.Logger
	model            string
}

// ServiceConfig holds the dependencies of Service
type ServiceConfig struct {
	MockSwitch       MockSwitch       `validate:"nonnil"`
	Transcriber      Transcriber      `validate:"nonnil"`
	MetricsCollector MetricsCollector `validate:"nonnil"`
	Logger           *slog.Logger     `validate:"nonnil"`
	Model            string           `validate:"nonzero"`
}

// NewService creates a new transcription service with all dependencies
func NewService(config ServiceConfig) (*Service, error) {
	if err := validator.Validate(config); err != nil {
		return nil, fmt.Errorf("invalid service configuration: %w", err)
	}

	return &Service{
		mockSwitch:       config.MockSwitch,
		transcriber:      config.Transcriber,
		metricsCollector: config.MetricsCollector,
		logger:           config.Logger,
		model:            config.Model,
	}, nil
}

// Transcribe returns the canned transcript when the mock is enabled, otherwise
// it forwards the uploaded audio to the provider and relays its text.
func (s *Service) Transcribe(ctx context.Context, audio UploadedAudio) (*TranscriptResult, error) {
	startTime := time.Now()
	metrics := TranscriptionMetrics{
		RequestID:   RequestIDFromContext(ctx),
		Filename:    audio.Filename,
		ContentType: audio.ContentType,
		SizeBytes:   audio.Size,
		Timestamp:   startTime,
	}

	// The switch is read once so a concurrent update cannot change the answer mid-request
	if mockCfg := s.mockSwitch.Get(); mockCfg.Enabled {
		s.logger.DebugContext(ctx, "Serving mocked transcript",
			"filename", audio.Filename,
			"transcript_length", len(mockCfg.Transcript),
		)

		metrics.Source = SourceMock
		s.recordMetrics(ctx, metrics, startTime, nil)

		return &TranscriptResult{Transcript: mockCfg.Transcript}, nil
	}

	metrics.Source = SourceProvider

	if audio.Content == nil {
		s.recordMetrics(ctx, metrics, startTime, ErrMissingAudio)
		return nil, ErrMissingAudio
	}

	data, err := io.ReadAll(audio.Content)
	if err != nil {
		s.recordMetrics(ctx, metrics, startTime, err)
		return nil, fmt.Errorf("failed to read uploaded audio: %w", err)
	}
	metrics.SizeBytes = int64(len(data))

	s.logger.InfoContext(ctx, "Forwarding audio to transcription provider",
		"filename", audio.Filename,
		"content_type", audio.ContentType,
		"size_bytes", len(data),
		"model", s.model,
	)

	text, err := s.transcriber.Transcribe(ctx, TranscriptionRequest{
		Audio:       data,
		Filename:    audio.Filename,
		ContentType: audio.ContentType,
		Model:       s.model,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Transcription provider failed",
			"filename", audio.Filename,
			"error_kind", ProviderErrorKindOf(err),
			"error", err.Error(),
		)
		s.recordMetrics(ctx, metrics, startTime, err)
		return nil, fmt.Errorf("failed to transcribe audio: %w", err)
	}

	s.recordMetrics(ctx, metrics, startTime, nil)

	return &TranscriptResult{Transcript: text}, nil
}

// SetMock replaces the mock configuration
func (s *Service) SetMock(ctx context.Context, cfg MockConfiguration) MockStatus {
	s.mockSwitch.Set(cfg)

	s.logger.InfoContext(ctx, "Mock configuration replaced",
		"enabled", cfg.Enabled,
		"transcript_length", len(cfg.Transcript),
	)

	return MockStatus{
		Status:      "ok",
		MockEnabled: cfg.Enabled,
	}
}

// GetMock returns the mock configuration currently in effect
func (s *Service) GetMock(ctx context.Context) MockConfiguration {
	return s.mockSwitch.Get()
}

// recordMetrics records request metrics, failures are only logged
func (s *Service) recordMetrics(ctx context.Context, metrics TranscriptionMetrics, startTime time.Time, cause error) {
	metrics.ExecutionTime = time.Since(startTime)
	metrics.Success = cause == nil
	if cause != nil {
		metrics.ErrorKind = errorKind(cause)
	}

	if err := s.metricsCollector.RecordTranscription(ctx, metrics); err != nil {
		s.logger.WarnContext(ctx, "Failed to record transcription metrics",
			"request_id", metrics.RequestID,
			"error", err.Error(),
		)
	}
}

func errorKind(err error) string {
	if kind := ProviderErrorKindOf(err); kind != "" {
		return string(kind)
	}
	if errors.Is(err, ErrMissingAudio) {
		return "missing_audio"
	}
	return "internal"
}
