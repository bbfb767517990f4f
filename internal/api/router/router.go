package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shiftdesk/backend/config"
	"shiftdesk/backend/internal/api/handler"
	"shiftdesk/backend/internal/api/middleware"
	"shiftdesk/backend/pkg/jwt"
)

// New builds the gin engine with every route registered.
func New(cfg *config.Config, h *handler.Handler, jwtManager *jwt.Manager, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.Recovery(logger),
		middleware.CORS(&cfg.Server.CORS),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(jwtManager))

	manager := middleware.RequireRole("manager", "admin")

	shifts := api.Group("/shifts")
	{
		shifts.GET("", h.Shift.List)
		shifts.GET("/:id", h.Shift.Get)
		shifts.POST("", manager, h.Shift.Create)
		shifts.PATCH("/:id", manager, h.Shift.Update)
		shifts.DELETE("/:id", manager, h.Shift.Delete)
	}

	assignments := api.Group("/assignments")
	{
		assignments.GET("", h.Assignment.ListMine)
		assignments.GET("/conflicts", h.Assignment.DetectConflicts)
		assignments.GET("/conflicts/report", manager, h.Assignment.ConflictReport)
		assignments.GET("/:id", h.Assignment.Get)
		assignments.POST("", manager, h.Assignment.Assign)
		assignments.POST("/bulk", manager, h.Assignment.BulkAssign)
		assignments.DELETE("/:id", manager, h.Assignment.Remove)
	}

	swaps := api.Group("/swaps")
	{
		swaps.GET("", h.Swap.ListMine)
		swaps.GET("/:id", h.Swap.Get)
		swaps.POST("", h.Swap.Create)
		swaps.POST("/:id/respond", h.Swap.Respond)
		swaps.POST("/:id/approve", manager, h.Swap.Approve)
		swaps.POST("/:id/cancel", h.Swap.Cancel)
	}

	coverage := api.Group("/coverage")
	{
		coverage.GET("", h.Coverage.ListMine)
		coverage.GET("/:id", h.Coverage.Get)
		coverage.POST("", h.Coverage.Create)
		coverage.POST("/broadcast", manager, h.Coverage.Broadcast)
		coverage.POST("/:id/respond", h.Coverage.Respond)
		coverage.POST("/:id/approve", manager, h.Coverage.Approve)
		coverage.POST("/:id/cancel", h.Coverage.Cancel)
	}

	api.POST("/roster/generate", manager, h.Roster.Generate)
	api.GET("/analytics/summary", manager, h.Analytics.Summary)

	export := api.Group("/export")
	{
		export.GET("/assignments", manager, h.Export.BranchAssignments)
		export.GET("/calendar", h.Export.MyCalendar)
	}

	return r
}
