package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shiftdesk/backend/internal/service"
	"shiftdesk/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves schedule exports.
type ExportHandler struct {
	svc    service.ExportService
	logger *zap.Logger
}

func NewExportHandler(svc service.ExportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{svc: svc, logger: logger}
}

// BranchAssignments handles GET /export/assignments. Manager only.
func (h *ExportHandler) BranchAssignments(c *gin.Context) {
	branchID := c.Query("branch_id")
	if branchID == "" {
		branchID = callerBranch(c)
	}

	buf, err := h.svc.BranchAssignmentsXLSX(c.Request.Context(),
		branchID, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	filename := fmt.Sprintf("assignments-%s.xlsx", c.Query("start_date"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// MyCalendar handles GET /export/calendar. Every employee can pull their
// own feed.
func (h *ExportHandler) MyCalendar(c *gin.Context) {
	ics, err := h.svc.EmployeeCalendarICS(c.Request.Context(),
		callerID(c), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="shifts.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 40412, "employee not found")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 40011, "invalid date range")
	default:
		h.logger.Error("export handler error", zap.Error(err))
		response.InternalError(c)
	}
}
