package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shiftdesk/backend/internal/dto"
	"shiftdesk/backend/internal/service"
	"shiftdesk/backend/pkg/response"
)

// SwapHandler serves the shift swap workflow endpoints.
type SwapHandler struct {
	svc    service.SwapService
	logger *zap.Logger
}

func NewSwapHandler(svc service.SwapService, logger *zap.Logger) *SwapHandler {
	return &SwapHandler{svc: svc, logger: logger}
}

// Create handles POST /swaps.
func (h *SwapHandler) Create(c *gin.Context) {
	var req dto.CreateSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "invalid request body")
		return
	}

	swap, err := h.svc.Create(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.handleSwapError(c, err)
		return
	}
	response.Created(c, swap)
}

// Get handles GET /swaps/:id.
func (h *SwapHandler) Get(c *gin.Context) {
	swap, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSwapError(c, err)
		return
	}
	response.OK(c, swap)
}

// ListMine handles GET /swaps.
func (h *SwapHandler) ListMine(c *gin.Context) {
	var req dto.SwapListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 40001, "invalid query parameters")
		return
	}

	swaps, total, err := h.svc.ListByRequester(c.Request.Context(), callerID(c), &req)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}
	response.OKPage(c, swaps, total, req.GetPage(), req.GetPageSize())
}

// Respond handles POST /swaps/:id/respond.
func (h *SwapHandler) Respond(c *gin.Context) {
	var req dto.RespondSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "invalid request body")
		return
	}

	swap, err := h.svc.Respond(c.Request.Context(), c.Param("id"), &req, callerID(c))
	if err != nil {
		h.handleSwapError(c, err)
		return
	}
	response.OK(c, swap)
}

// Approve handles POST /swaps/:id/approve. Manager only.
func (h *SwapHandler) Approve(c *gin.Context) {
	var req dto.ApproveSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 40001, "invalid request body")
		return
	}

	swap, err := h.svc.Approve(c.Request.Context(), c.Param("id"), &req, callerID(c))
	if err != nil {
		h.handleSwapError(c, err)
		return
	}
	response.OK(c, swap)
}

// Cancel handles POST /swaps/:id/cancel.
func (h *SwapHandler) Cancel(c *gin.Context) {
	if err := h.svc.Cancel(c.Request.Context(), c.Param("id"), callerID(c)); err != nil {
		h.handleSwapError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *SwapHandler) handleSwapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSwapNotFound):
		response.NotFound(c, 40421, "swap request not found")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 40411, "assignment not found")
	case errors.Is(err, service.ErrNotAssignmentOwner):
		response.Forbidden(c, 40321, "caller does not own the cited assignment")
	case errors.Is(err, service.ErrNotRequester):
		response.Forbidden(c, 40322, "only the requester may cancel this request")
	case errors.Is(err, service.ErrNotTargetedResponder):
		response.Forbidden(c, 40323, "request is directed at a different employee")
	case errors.Is(err, service.ErrSelfResponse):
		response.BadRequest(c, 40021, "requester cannot respond to their own request")
	case errors.Is(err, service.ErrInvalidStateTransition):
		response.Conflict(c, 40921, "request is not in a state that allows this action")
	case errors.Is(err, service.ErrRequestExpired):
		response.Conflict(c, 40922, "request has expired")
	case errors.Is(err, service.ErrSwapWouldConflict):
		response.Conflict(c, 40923, "swap would create an overlapping assignment")
	default:
		h.logger.Error("swap handler error", zap.Error(err))
		response.InternalError(c)
	}
}
