package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shiftdesk/backend/internal/dto"
	"shiftdesk/backend/internal/model"
	"shiftdesk/backend/internal/repository"
)

// AnalyticsService computes flat workflow summaries by scanning the records
// created in a date range. No materialized aggregates: volumes here are
// small enough that a scan per report is the simpler design.
type AnalyticsService interface {
	Summary(ctx context.Context, req *dto.AnalyticsRequest) (*dto.ShiftAnalyticsResponse, error)
}

type analyticsService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAnalyticsService creates an AnalyticsService.
func NewAnalyticsService(repo *repository.Repository, logger *zap.Logger) AnalyticsService {
	return &analyticsService{repo: repo, logger: logger}
}

func (s *analyticsService) Summary(ctx context.Context, req *dto.AnalyticsRequest) (*dto.ShiftAnalyticsResponse, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date: %w", ErrInvalidDateRange)
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end_date: %w", ErrInvalidDateRange)
	}
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}
	// The range is inclusive of the end date's full day.
	endExclusive := end.AddDate(0, 0, 1)

	resp := &dto.ShiftAnalyticsResponse{
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		SwapsByStatus:    map[string]int{},
		CoverageByStatus: map[string]int{},
	}

	assignments, err := s.repo.Assignment.ListCreatedBetween(ctx, start, endExclusive)
	if err != nil {
		return nil, err
	}
	resp.TotalAssignments = len(assignments)
	for i := range assignments {
		if assignments[i].AutoGenerated {
			resp.AutoGeneratedCount++
		}
		if assignments[i].IsActive {
			resp.ActiveAssignments++
		}
	}

	swaps, err := s.repo.Swap.ListCreatedBetween(ctx, start, endExclusive)
	if err != nil {
		return nil, err
	}
	resp.SwapRequests = len(swaps)
	var swapDecided, swapApproved int
	for i := range swaps {
		status := swaps[i].Status
		resp.SwapsByStatus[status]++
		if swaps[i].IsEmergency {
			resp.EmergencyRequests++
		}
		switch status {
		case model.SwapStatusApproved:
			swapDecided++
			swapApproved++
		case model.SwapStatusRejected:
			swapDecided++
		}
	}
	resp.SwapApprovalRate = rate(swapApproved, swapDecided)

	coverages, err := s.repo.Coverage.ListCreatedBetween(ctx, start, endExclusive)
	if err != nil {
		return nil, err
	}
	resp.CoverageRequests = len(coverages)
	var covDecided, covApproved int
	for i := range coverages {
		status := coverages[i].Status
		resp.CoverageByStatus[status]++
		if coverages[i].IsEmergency {
			resp.EmergencyRequests++
		}
		switch status {
		case model.CoverageStatusApproved:
			covDecided++
			covApproved++
		case model.CoverageStatusRejected:
			covDecided++
		}
	}
	resp.CoverageApprovalRate = rate(covApproved, covDecided)

	return resp, nil
}

// rate computes approved/decided, 0 when nothing was decided.
func rate(approved, decided int) float64 {
	if decided == 0 {
		return 0
	}
	return float64(approved) / float64(decided)
}
