package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"shiftdesk/backend/config"
	"shiftdesk/backend/pkg/jwt"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *jwt.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-at-least-16-chars",
		AccessTokenTTL: time.Hour,
	})

	r := gin.New()
	r.GET("/me", Auth(manager), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"employee_id": c.GetString(CtxEmployeeID),
			"role":        c.GetString(CtxRole),
		})
	})
	r.GET("/admin", Auth(manager), RequireRole("manager", "admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, manager
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic abc123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthAcceptsValidToken(t *testing.T) {
	r, manager := newAuthTestRouter(t)

	token, err := manager.GenerateToken("emp-1", "employee", "branch-1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestRequireRoleBlocksEmployees(t *testing.T) {
	r, manager := newAuthTestRouter(t)

	employeeToken, _ := manager.GenerateToken("emp-1", "employee", "branch-1")
	managerToken, _ := manager.GenerateToken("mgr-1", "manager", "branch-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+employeeToken)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("employee status = %d, want 403", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+managerToken)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("manager status = %d, want 200", w.Code)
	}
}
