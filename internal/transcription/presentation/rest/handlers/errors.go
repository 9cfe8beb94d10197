package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/terryyin/meeting-plunger/internal/transcription/core"
)

// retryAfterSeconds is sent with 429 responses, the provider does not tell us
const retryAfterSeconds = "60"

type providerStatus struct {
	status  int
	code    string
	message string
}

var providerStatuses = map[core.ProviderErrorKind]providerStatus{
	core.ProviderUnauthorized:     {http.StatusBadGateway, CodeProviderUnauthorized, "Transcription provider rejected the credentials"},
	core.ProviderUnavailable:      {http.StatusServiceUnavailable, CodeProviderUnavailable, "Transcription provider is unavailable"},
	core.ProviderUnsupportedInput: {http.StatusUnsupportedMediaType, CodeUnsupportedAudio, "Transcription provider could not process the audio"},
	core.ProviderRateLimited:      {http.StatusTooManyRequests, CodeProviderRateLimited, "Transcription provider rate limit exceeded"},
	core.ProviderMisconfigured:    {http.StatusInternalServerError, CodeProviderMisconfigured, "Transcription provider is not configured"},
	core.ProviderUnknown:          {http.StatusInternalServerError, CodeProviderError, "Transcription provider failed"},
}

// RespondServiceError maps an error returned by the core onto a response
func RespondServiceError(c *gin.Context, logger *slog.Logger, err error) {
	ctx := c.Request.Context()

	var validationErr core.ValidationError
	if errors.As(err, &validationErr) {
		RespondError(c, http.StatusUnprocessableEntity, CodeValidation, "Request validation failed",
			FieldError{Field: validationErr.Field, Message: validationErr.Message})
		return
	}

	if errors.Is(err, core.ErrMissingAudio) {
		RespondError(c, http.StatusUnprocessableEntity, CodeValidation, "Request validation failed",
			FieldError{Field: "file", Message: err.Error()})
		return
	}

	var providerErr *core.ProviderError
	if errors.As(err, &providerErr) {
		mapped, ok := providerStatuses[providerErr.Kind]
		if !ok {
			mapped = providerStatuses[core.ProviderUnknown]
		}

		logger.WarnContext(ctx, "Transcription provider error",
			"kind", providerErr.Kind,
			"status", mapped.status,
			"error", err.Error(),
		)

		if mapped.status == http.StatusTooManyRequests {
			c.Header("Retry-After", retryAfterSeconds)
		}
		RespondError(c, mapped.status, mapped.code, mapped.message)
		return
	}

	logger.ErrorContext(ctx, "Unexpected error", "error", err.Error())
	RespondError(c, http.StatusInternalServerError, CodeInternal, "Internal server error")
}

// bindingDetails turns a gin binding error into field level details
func bindingDetails(err error) []FieldError {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, FieldError{
				Field:   strings.ToLower(fe.Field()),
				Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
			})
		}
		return details
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []FieldError{{Field: typeErr.Field, Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value)}}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return []FieldError{{Field: "body", Message: "malformed JSON"}}
	}

	if errors.Is(err, io.EOF) {
		return []FieldError{{Field: "body", Message: "request body is required"}}
	}

	return []FieldError{{Field: "body", Message: err.Error()}}
}
