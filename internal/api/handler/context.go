package handler

import (
	"github.com/gin-gonic/gin"

	"shiftdesk/backend/internal/api/middleware"
)

// callerID returns the authenticated employee id set by the auth middleware.
func callerID(c *gin.Context) string {
	return c.GetString(middleware.CtxEmployeeID)
}

// callerBranch returns the authenticated caller's branch id.
func callerBranch(c *gin.Context) string {
	return c.GetString(middleware.CtxBranchID)
}
