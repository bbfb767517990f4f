package service

import (
	"go.uber.org/zap"

	"shiftdesk/backend/config"
	"shiftdesk/backend/internal/repository"
)

// Service aggregates every business service.
type Service struct {
	Shift      ShiftService
	Assignment AssignmentService
	Swap       SwapService
	Coverage   CoverageService
	Roster     RosterService
	Analytics  AnalyticsService
	Export     ExportService
}

// NewService wires the business services against one repository set.
func NewService(cfg *config.Config, repo *repository.Repository, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		Shift:      NewShiftService(repo, logger),
		Assignment: NewAssignmentService(repo, logger),
		Swap:       NewSwapService(&cfg.Workflow, repo, notifier, logger),
		Coverage:   NewCoverageService(&cfg.Workflow, repo, notifier, logger),
		Roster:     NewRosterService(&cfg.Workflow, repo, logger),
		Analytics:  NewAnalyticsService(repo, logger),
		Export:     NewExportService(repo, logger),
	}
}
