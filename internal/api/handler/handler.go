package handler

import (
	"go.uber.org/zap"

	"shiftdesk/backend/internal/service"
)

// Handler aggregates every HTTP handler group.
type Handler struct {
	Shift      *ShiftHandler
	Assignment *AssignmentHandler
	Swap       *SwapHandler
	Coverage   *CoverageHandler
	Roster     *RosterHandler
	Analytics  *AnalyticsHandler
	Export     *ExportHandler
}

// NewHandler wires the handler groups against the service set.
func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Shift:      NewShiftHandler(svc.Shift, logger),
		Assignment: NewAssignmentHandler(svc.Assignment, logger),
		Swap:       NewSwapHandler(svc.Swap, logger),
		Coverage:   NewCoverageHandler(svc.Coverage, logger),
		Roster:     NewRosterHandler(svc.Roster, logger),
		Analytics:  NewAnalyticsHandler(svc.Analytics, logger),
		Export:     NewExportHandler(svc.Export, logger),
	}
}
