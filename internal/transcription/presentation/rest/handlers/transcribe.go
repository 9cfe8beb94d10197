package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terryyin/meeting-plunger/internal/transcription/core"
)

const audioFormField = "file"

type TranscriptionHandler struct {
	service core.TranscriptionService
	logger  *slog.Logger
}

func NewTranscriptionHandler(service core.TranscriptionService, logger *slog.Logger) *TranscriptionHandler {
	return &TranscriptionHandler{
		service: service,
		logger:  logger,
	}
}

// Transcribe handles POST /transcribe with the audio in the "file" part
func (h *TranscriptionHandler) Transcribe(c *gin.Context) {
	fileHeader, err := c.FormFile(audioFormField)
	if err != nil {
		h.logger.DebugContext(c.Request.Context(), "Transcription request without audio", "error", err.Error())
		RespondError(c, http.StatusUnprocessableEntity, CodeValidation, "Request validation failed",
			FieldError{Field: audioFormField, Message: "field required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}
	defer file.Close()

	result, err := h.service.Transcribe(c.Request.Context(), core.UploadedAudio{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Content:     file,
	})
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
