package core

import (
	"io"
	"time"
)

// MockConfiguration is the canned-transcript override used by tests.
// It is replaced wholesale on every update, never merged.
type MockConfiguration struct {
	Enabled    bool   `json:"enabled"`
	Transcript string `json:"transcript"`
}

// MockStatus is returned after the mock configuration has been replaced
type MockStatus struct {
	Status      string `json:"status"`
	MockEnabled bool   `json:"mock_enabled"`
}

// UploadedAudio is the file received by a single transcription request.
// Content is only read when the request reaches the provider.
type UploadedAudio struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// TranscriptResult represents the result of a transcription request
type TranscriptResult struct {
	Transcript string `json:"transcript"`
}

// TranscriptionRequest is what gets sent to the external provider
type TranscriptionRequest struct {
	Audio       []byte
	Filename    string
	ContentType string
	Model       string
}

// TranscriptSource tells where a transcript came from
type TranscriptSource string

const (
	SourceMock     TranscriptSource = "mock"
	SourceProvider TranscriptSource = "provider"
)

// TranscriptionMetrics represents metrics for a single transcription request
type TranscriptionMetrics struct {
	RequestID     string           `json:"request_id,omitempty"`
	Source        TranscriptSource `json:"source"`
	Filename      string           `json:"filename,omitempty"`
	ContentType   string           `json:"content_type,omitempty"`
	SizeBytes     int64            `json:"size_bytes"`
	ExecutionTime time.Duration    `json:"execution_time"`
	Success       bool             `json:"success"`
	ErrorKind     string           `json:"error_kind,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
}

// UsageStats aggregates transcription metrics over a period
type UsageStats struct {
	Period             string           `json:"period"`
	Transcriptions     int64            `json:"transcriptions"`
	SuccessRate        float64          `json:"success_rate"`
	AvgExecutionTimeMs float64          `json:"avg_execution_time_ms"`
	TotalAudioBytes    int64            `json:"total_audio_bytes"`
	BySource           map[string]int64 `json:"by_source"`
	TopErrorKinds      []ErrorKindCount `json:"top_error_kinds"`
}

type ErrorKindCount struct {
	ErrorKind string `json:"error_kind"`
	Count     int64  `json:"count"`
}
