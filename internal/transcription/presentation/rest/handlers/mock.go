package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terryyin/meeting-plunger/internal/transcription/core"
)

// MockHandler serves the testability control plane
type MockHandler struct {
	service core.TranscriptionService
	logger  *slog.Logger
}

// setMockRequest uses a pointer so an explicit false passes the required check
type setMockRequest struct {
	Enabled    *bool  `json:"enabled" binding:"required"`
	Transcript string `json:"transcript"`
}

func NewMockHandler(service core.TranscriptionService, logger *slog.Logger) *MockHandler {
	return &MockHandler{
		service: service,
		logger:  logger,
	}
}

func (h *MockHandler) SetMock(c *gin.Context) {
	var req setMockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.DebugContext(c.Request.Context(), "Invalid mock configuration", "error", err.Error())
		RespondError(c, http.StatusUnprocessableEntity, CodeValidation, "Request validation failed", bindingDetails(err)...)
		return
	}

	status := h.service.SetMock(c.Request.Context(), core.MockConfiguration{
		Enabled:    *req.Enabled,
		Transcript: req.Transcript,
	})

	c.JSON(http.StatusOK, status)
}

func (h *MockHandler) GetMock(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetMock(c.Request.Context()))
}
