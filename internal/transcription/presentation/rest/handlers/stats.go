package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terryyin/meeting-plunger/internal/transcription/core"
)

const defaultStatsPeriod = "day"

type StatsHandler struct {
	reader core.UsageStatsReader
	logger *slog.Logger
}

func NewStatsHandler(reader core.UsageStatsReader, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		reader: reader,
		logger: logger,
	}
}

// GetStats handles GET /stats?period=hour|day|week|month
func (h *StatsHandler) GetStats(c *gin.Context) {
	period := c.DefaultQuery("period", defaultStatsPeriod)

	stats, err := h.reader.GetUsageStats(c.Request.Context(), period)
	if err != nil {
		RespondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
