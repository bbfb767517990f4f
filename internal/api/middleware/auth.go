package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"shiftdesk/backend/pkg/jwt"
	"shiftdesk/backend/pkg/response"
)

// Context keys set by the auth middleware.
const (
	CtxEmployeeID = "employee_id"
	CtxRole       = "role"
	CtxBranchID   = "branch_id"
)

// Auth verifies the Bearer token and stores the caller's identity on the
// request context.
func Auth(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, 40101, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, 40102, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := manager.ParseToken(parts[1])
		if err != nil {
			if err == jwt.ErrTokenExpired {
				response.Unauthorized(c, 40103, "token expired")
			} else {
				response.Unauthorized(c, 40104, "token invalid")
			}
			c.Abort()
			return
		}

		c.Set(CtxEmployeeID, claims.EmployeeID)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxBranchID, claims.BranchID)
		c.Next()
	}
}

// RequireRole restricts a route to the given roles. Runs after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if !allowed[role] {
			response.Forbidden(c, 40301, "insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}
