package core

import (
	"errors"
	"fmt"
)

// Domain specific errors
var (
	// Request related errors
	ErrMissingAudio = errors.New("audio file is required")

	// Provider related errors
	ErrProviderNotConfigured = errors.New("transcription provider API key is not configured")
)

// ProviderErrorKind categorizes failures of the external transcription provider
type ProviderErrorKind string

const (
	ProviderUnauthorized     ProviderErrorKind = "unauthorized"
	ProviderUnavailable      ProviderErrorKind = "unavailable"
	ProviderUnsupportedInput ProviderErrorKind = "unsupported_input"
	ProviderRateLimited      ProviderErrorKind = "rate_limited"
	ProviderMisconfigured    ProviderErrorKind = "misconfigured"
	ProviderUnknown          ProviderErrorKind = "unknown"
)

// Error types for better error handling

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) ValidationError {
	return ValidationError{
		Field:   field,
		Message: message,
	}
}

// ProviderError represents a categorized failure of the transcription provider
type ProviderError struct {
	Kind       ProviderErrorKind
	Message    string
	StatusCode int
	Cause      error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transcription provider %s: %s (cause: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("transcription provider %s: %s", e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(kind ProviderErrorKind, message string, cause error) *ProviderError {
	return &ProviderError{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}

// ProviderErrorKindOf returns the kind of the first ProviderError in err's chain,
// or an empty kind when there is none.
func ProviderErrorKindOf(err error) ProviderErrorKind {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Kind
	}
	return ""
}
