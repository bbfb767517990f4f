package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shiftdesk/backend/internal/dto"
	"shiftdesk/backend/internal/service"
	"shiftdesk/backend/pkg/response"
)

// CoverageHandler serves the coverage workflow endpoints, including the
// emergency broadcast.
type CoverageHandler struct {
	svc    service.CoverageService
	logger *zap.Logger
}

func NewCoverageHandler(svc service.CoverageService, logger *zap.Logger) *CoverageHandler {
	return &CoverageHandler{svc: svc, logger: logger}
}

// Create handles POST /coverage.
func (h *CoverageHandler) Create(c *gin.Context) {
	var req dto.CreateCoverageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "invalid request body")
		return
	}

	coverage, err := h.svc.Create(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.handleCoverageError(c, err)
		return
	}
	response.Created(c, coverage)
}

// Get handles GET /coverage/:id.
func (h *CoverageHandler) Get(c *gin.Context) {
	coverage, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCoverageError(c, err)
		return
	}
	response.OK(c, coverage)
}

// ListMine handles GET /coverage.
func (h *CoverageHandler) ListMine(c *gin.Context) {
	var req dto.CoverageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 40001, "invalid query parameters")
		return
	}

	reqs, total, err := h.svc.ListByRequester(c.Request.Context(), callerID(c), &req)
	if err != nil {
		h.handleCoverageError(c, err)
		return
	}
	response.OKPage(c, reqs, total, req.GetPage(), req.GetPageSize())
}

// Respond handles POST /coverage/:id/respond.
func (h *CoverageHandler) Respond(c *gin.Context) {
	var req dto.RespondCoverageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "invalid request body")
		return
	}

	coverage, err := h.svc.Respond(c.Request.Context(), c.Param("id"), &req, callerID(c))
	if err != nil {
		h.handleCoverageError(c, err)
		return
	}
	response.OK(c, coverage)
}

// Approve handles POST /coverage/:id/approve. Manager only.
func (h *CoverageHandler) Approve(c *gin.Context) {
	var req dto.ApproveCoverageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "invalid request body")
		return
	}

	coverage, err := h.svc.Approve(c.Request.Context(), c.Param("id"), &req, callerID(c))
	if err != nil {
		h.handleCoverageError(c, err)
		return
	}
	response.OK(c, coverage)
}

// Cancel handles POST /coverage/:id/cancel.
func (h *CoverageHandler) Cancel(c *gin.Context) {
	if err := h.svc.Cancel(c.Request.Context(), c.Param("id"), callerID(c)); err != nil {
		h.handleCoverageError(c, err)
		return
	}
	response.OK(c, nil)
}

// Broadcast handles POST /coverage/broadcast. Manager only.
func (h *CoverageHandler) Broadcast(c *gin.Context) {
	var req dto.BroadcastCoverageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "invalid request body")
		return
	}

	result, err := h.svc.Broadcast(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.handleCoverageError(c, err)
		return
	}
	response.Created(c, result)
}

func (h *CoverageHandler) handleCoverageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCoverageNotFound):
		response.NotFound(c, 40431, "coverage request not found")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 40411, "assignment not found")
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 40401, "shift not found")
	case errors.Is(err, service.ErrNotAssignmentOwner):
		response.Forbidden(c, 40321, "caller does not own the cited assignment")
	case errors.Is(err, service.ErrNotRequester):
		response.Forbidden(c, 40322, "only the requester may cancel this request")
	case errors.Is(err, service.ErrSelfResponse):
		response.BadRequest(c, 40021, "requester cannot respond to their own request")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 40011, "invalid date range")
	case errors.Is(err, service.ErrDateOutsideRange):
		response.BadRequest(c, 40031, "shift date falls outside the assignment's range")
	case errors.Is(err, service.ErrBroadcastShiftMismatch):
		response.BadRequest(c, 40032, "shift does not belong to the requested branch")
	case errors.Is(err, service.ErrNoEligibleEmployees):
		response.BadRequest(c, 40033, "no eligible employees for this broadcast")
	case errors.Is(err, service.ErrInvalidStateTransition):
		response.Conflict(c, 40921, "request is not in a state that allows this action")
	case errors.Is(err, service.ErrRequestExpired):
		response.Conflict(c, 40922, "request has expired")
	case errors.Is(err, service.ErrAlreadyAccepted):
		response.Conflict(c, 40931, "coverage request was already accepted")
	case errors.Is(err, service.ErrCoverageConflict):
		response.Conflict(c, 40932, "accepting would create an overlapping assignment")
	default:
		h.logger.Error("coverage handler error", zap.Error(err))
		response.InternalError(c)
	}
}
