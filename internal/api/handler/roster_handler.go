package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shiftdesk/backend/internal/dto"
	"shiftdesk/backend/internal/service"
	"shiftdesk/backend/pkg/response"
)

// RosterHandler serves the rotating schedule generator. Manager only.
type RosterHandler struct {
	svc    service.RosterService
	logger *zap.Logger
}

func NewRosterHandler(svc service.RosterService, logger *zap.Logger) *RosterHandler {
	return &RosterHandler{svc: svc, logger: logger}
}

// Generate handles POST /roster/generate.
func (h *RosterHandler) Generate(c *gin.Context) {
	var req dto.GenerateRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "invalid request body")
		return
	}

	result, err := h.svc.Generate(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.handleRosterError(c, err)
		return
	}
	response.Created(c, result)
}

func (h *RosterHandler) handleRosterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 40401, "shift not found")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 40412, "employee not found")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 40011, "invalid date range")
	case errors.Is(err, service.ErrTooManyWeeks):
		response.BadRequest(c, 40041, "requested horizon exceeds the generator limit")
	case errors.Is(err, service.ErrEmployeeNotInBranch):
		response.BadRequest(c, 40042, "employee does not belong to the requested branch")
	case errors.Is(err, service.ErrShiftNotInBranch):
		response.BadRequest(c, 40043, "shift does not belong to the requested branch")
	case errors.Is(err, service.ErrEmployeeInactive):
		response.BadRequest(c, 40012, "employee is not active")
	default:
		h.logger.Error("roster handler error", zap.Error(err))
		response.InternalError(c)
	}
}
