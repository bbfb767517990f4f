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

// AssignmentHandler serves assignment lifecycle and conflict endpoints.
type AssignmentHandler struct {
	svc    service.AssignmentService
	logger *zap.Logger
}

func NewAssignmentHandler(svc service.AssignmentService, logger *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{svc: svc, logger: logger}
}

// Assign handles POST /assignments.
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req dto.AssignEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "invalid request body")
		return
	}

	assignment, err := h.svc.Assign(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.Created(c, assignment)
}

// BulkAssign handles POST /assignments/bulk.
func (h *AssignmentHandler) BulkAssign(c *gin.Context) {
	var req dto.BulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "invalid request body")
		return
	}

	result, err := h.svc.BulkAssign(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.Created(c, result)
}

// Get handles GET /assignments/:id.
func (h *AssignmentHandler) Get(c *gin.Context) {
	assignment, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.OK(c, assignment)
}

// ListMine handles GET /assignments. Employees see their own schedule;
// managers may pass employee_id to inspect someone else's.
func (h *AssignmentHandler) ListMine(c *gin.Context) {
	employeeID := c.Query("employee_id")
	if employeeID == "" {
		employeeID = callerID(c)
	}

	assignments, err := h.svc.ListByEmployee(c.Request.Context(), employeeID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.OK(c, assignments)
}

// Remove handles DELETE /assignments/:id.
func (h *AssignmentHandler) Remove(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), c.Param("id"), callerID(c)); err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.OK(c, nil)
}

// DetectConflicts handles GET /assignments/conflicts.
func (h *AssignmentHandler) DetectConflicts(c *gin.Context) {
	var req dto.DetectConflictsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 40001, "invalid query parameters")
		return
	}

	conflicts, err := h.svc.DetectConflicts(c.Request.Context(), &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.OK(c, conflicts)
}

// ConflictReport handles GET /assignments/conflicts/report.
func (h *AssignmentHandler) ConflictReport(c *gin.Context) {
	var req dto.ConflictReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 40001, "invalid query parameters")
		return
	}

	conflicts, err := h.svc.ConflictReport(c.Request.Context(), &req)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	response.OK(c, conflicts)
}

func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 40411, "assignment not found")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 40412, "employee not found")
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 40401, "shift not found")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 40011, "invalid date range")
	case errors.Is(err, service.ErrEmployeeInactive):
		response.BadRequest(c, 40012, "employee is not active")
	case errors.Is(err, service.ErrAssignmentConflict):
		response.Conflict(c, 40911, "employee already has an overlapping assignment")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 40912, "assignment was modified concurrently, retry")
	default:
		h.logger.Error("assignment handler error", zap.Error(err))
		response.InternalError(c)
	}
}
