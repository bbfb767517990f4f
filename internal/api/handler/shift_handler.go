package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shiftdesk/backend/internal/dto"
	"shiftdesk/backend/internal/service"
	pkgerrors "shiftdesk/backend/pkg/errors"
	"shiftdesk/backend/pkg/response"
)

// ShiftHandler serves the shift catalog endpoints.
type ShiftHandler struct {
	svc    service.ShiftService
	logger *zap.Logger
}

func NewShiftHandler(svc service.ShiftService, logger *zap.Logger) *ShiftHandler {
	return &ShiftHandler{svc: svc, logger: logger}
}

// Create handles POST /shifts.
func (h *ShiftHandler) Create(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "invalid request body")
		return
	}

	shift, err := h.svc.Create(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.handleShiftError(c, err)
		return
	}
	response.Created(c, shift)
}

// Get handles GET /shifts/:id.
func (h *ShiftHandler) Get(c *gin.Context) {
	shift, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleShiftError(c, err)
		return
	}
	response.OK(c, shift)
}

// List handles GET /shifts. Branch defaults to the caller's own.
func (h *ShiftHandler) List(c *gin.Context) {
	branchID := c.Query("branch_id")
	if branchID == "" {
		branchID = callerBranch(c)
	}

	shifts, err := h.svc.ListByBranch(c.Request.Context(), branchID)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}
	response.OK(c, shifts)
}

// Update handles PATCH /shifts/:id.
func (h *ShiftHandler) Update(c *gin.Context) {
	var req dto.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "invalid request body")
		return
	}

	shift, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req, callerID(c))
	if err != nil {
		h.handleShiftError(c, err)
		return
	}
	response.OK(c, shift)
}

// Delete handles DELETE /shifts/:id.
func (h *ShiftHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), callerID(c)); err != nil {
		h.handleShiftError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *ShiftHandler) handleShiftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 40401, "shift not found")
	case errors.Is(err, service.ErrDuplicateShiftName):
		response.Conflict(c, 40901, "shift name already used in this organization")
	case errors.Is(err, service.ErrInvalidShiftTimes):
		response.BadRequest(c, 40002, "invalid shift times")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 40902, "shift was modified concurrently, retry")
	default:
		h.logger.Error("shift handler error", zap.Error(err))
		response.InternalError(c)
	}
}
