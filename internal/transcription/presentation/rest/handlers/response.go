package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/terryyin/meeting-plunger/internal/transcription/core"
)

// Error codes returned in ErrorResponse.Code
const (
	CodeValidation            = "validation_error"
	CodeProviderUnauthorized  = "provider_unauthorized"
	CodeProviderUnavailable   = "provider_unavailable"
	CodeUnsupportedAudio      = "unsupported_audio"
	CodeProviderRateLimited   = "provider_rate_limited"
	CodeProviderMisconfigured = "provider_misconfigured"
	CodeProviderError         = "provider_error"
	CodeInternal              = "internal_error"
)

type ErrorResponse struct {
	Success   bool         `json:"success"`
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Details   []FieldError `json:"details,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp int64        `json:"timestamp"`
}

// FieldError points at the request field that failed validation
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func NewErrorResponse(c *gin.Context, code, message string, details ...FieldError) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: core.RequestIDFromContext(c.Request.Context()),
		Timestamp: time.Now().Unix(),
	}
}

// RespondError aborts the request with an error body
func RespondError(c *gin.Context, status int, code, message string, details ...FieldError) {
	c.AbortWithStatusJSON(status, NewErrorResponse(c, code, message, details...))
}
