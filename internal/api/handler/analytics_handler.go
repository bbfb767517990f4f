package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shiftdesk/backend/internal/dto"
	"shiftdesk/backend/internal/service"
	"shiftdesk/backend/pkg/response"
)

// AnalyticsHandler serves workflow summary reports. Manager only.
type AnalyticsHandler struct {
	svc    service.AnalyticsService
	logger *zap.Logger
}

func NewAnalyticsHandler(svc service.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, logger: logger}
}

// Summary handles GET /analytics/summary.
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	var req dto.AnalyticsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 40001, "invalid query parameters")
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			response.BadRequest(c, 40011, "invalid date range")
			return
		}
		h.logger.Error("analytics handler error", zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, summary)
}
