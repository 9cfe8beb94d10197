package core

import (
	"context"
)

// Primary Ports (APIs that drive our application)

// TranscriptionService defines the main business logic interface
type TranscriptionService interface {
	// Transcribe turns an uploaded audio file into a transcript
	Transcribe(ctx context.Context, audio UploadedAudio) (*TranscriptResult, error)

	// SetMock replaces the mock configuration
	SetMock(ctx context.Context, cfg MockConfiguration) MockStatus

	// GetMock returns the mock configuration currently in effect
	GetMock(ctx context.Context) MockConfiguration
}

// Secondary Ports (SPIs that are driven by our application)

// MockSwitch holds the process-wide mock configuration
type MockSwitch interface {
	// Get returns the current configuration
	Get() MockConfiguration

	// Set replaces the current configuration
	Set(cfg MockConfiguration)
}

// Transcriber defines interface for the external speech-to-text provider
type Transcriber interface {
	// Transcribe sends the audio to the provider and returns its text.
	// Failures are reported as ProviderError.
	Transcribe(ctx context.Context, req TranscriptionRequest) (string, error)
}

// MetricsCollector defines interface for collecting usage metrics
type MetricsCollector interface {
	// RecordTranscription records metrics for a transcription request
	RecordTranscription(ctx context.Context, metrics TranscriptionMetrics) error
}

// UsageStatsReader reports aggregated transcription metrics
type UsageStatsReader interface {
	// GetUsageStats aggregates metrics for "hour", "day", "week" or "month".
	// An unknown period is a ValidationError.
	GetUsageStats(ctx context.Context, period string) (*UsageStats, error)
}
