package audiotranscriber

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"gopkg.in/validator.v2"

	"github.com/terryyin/meeting-plunger/internal/transcription/core"
)

const defaultFilename = "audio"

// OpenAITranscriber sends audio to the OpenAI transcription endpoint.
// The API client is built on first use, so the service can start without a key.
type OpenAITranscriber struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	logger  *slog.Logger

	once    sync.Once
	client  *openai.Client
	initErr error
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string `validate:"nonzero"`
	// Timeout of zero means no client-side timeout
	Timeout time.Duration
	Logger  *slog.Logger `validate:"nonnil"`
}

func NewOpenAITranscriber(cfg OpenAIConfig) (*OpenAITranscriber, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid transcriber configuration: %w", err)
	}

	return &OpenAITranscriber{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}, nil
}

// Transcribe converts audio to text
func (t *OpenAITranscriber) Transcribe(ctx context.Context, req core.TranscriptionRequest) (string, error) {
	client, err := t.getClient(ctx)
	if err != nil {
		return "", err
	}

	filename := req.Filename
	if filename == "" {
		filename = defaultFilename
	}

	resp, err := client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    req.Model,
		FilePath: filename,
		Reader: &audioReader{
			Reader:      bytes.NewReader(req.Audio),
			name:        filename,
			contentType: req.ContentType,
		},
	})
	if err != nil {
		providerErr := classifyError(err)
		t.logger.ErrorContext(ctx, "OpenAI transcription request failed",
			slog.String("kind", string(providerErr.Kind)),
			slog.Int("status_code", providerErr.StatusCode),
			slog.String("error", err.Error()))
		return "", providerErr
	}

	t.logger.DebugContext(ctx, "OpenAI transcription completed",
		slog.String("model", req.Model),
		slog.Int("transcript_length", len(resp.Text)))

	return resp.Text, nil
}

// getClient lazily builds the API client. A missing key is remembered and
// reported on every call.
func (t *OpenAITranscriber) getClient(ctx context.Context) (*openai.Client, error) {
	t.once.Do(func() {
		if t.apiKey == "" {
			t.initErr = core.NewProviderError(core.ProviderMisconfigured,
				"OPENAI_API_KEY is not set", core.ErrProviderNotConfigured)
			t.logger.ErrorContext(ctx, "Transcription provider is not configured")
			return
		}

		clientCfg := openai.DefaultConfig(t.apiKey)
		clientCfg.BaseURL = t.baseURL
		clientCfg.HTTPClient = &http.Client{Timeout: t.timeout}
		t.client = openai.NewClientWithConfig(clientCfg)
	})

	return t.client, t.initErr
}

// classifyError maps a go-openai error onto the provider error taxonomy
func classifyError(err error) *core.ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fromStatus(apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fromStatus(reqErr.HTTPStatusCode, http.StatusText(reqErr.HTTPStatusCode), err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return core.NewProviderError(core.ProviderUnavailable, "transcription request was cancelled or timed out", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return core.NewProviderError(core.ProviderUnavailable, "transcription provider is unreachable", err)
	}

	return core.NewProviderError(core.ProviderUnknown, "unexpected transcription provider failure", err)
}

func fromStatus(statusCode int, message string, cause error) *core.ProviderError {
	var kind core.ProviderErrorKind
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		kind = core.ProviderUnauthorized
	case statusCode == http.StatusTooManyRequests:
		kind = core.ProviderRateLimited
	case statusCode == http.StatusBadRequest,
		statusCode == http.StatusRequestEntityTooLarge,
		statusCode == http.StatusUnsupportedMediaType,
		statusCode == http.StatusUnprocessableEntity:
		kind = core.ProviderUnsupportedInput
	case statusCode >= http.StatusInternalServerError:
		kind = core.ProviderUnavailable
	default:
		kind = core.ProviderUnknown
	}

	providerErr := core.NewProviderError(kind, message, cause)
	providerErr.StatusCode = statusCode
	return providerErr
}

// audioReader exposes the upload's filename and content type to the
// multipart form builder of go-openai.
type audioReader struct {
	*bytes.Reader
	name        string
	contentType string
}

func (r *audioReader) Name() string {
	return r.name
}

func (r *audioReader) ContentType() string {
	return r.contentType
}
