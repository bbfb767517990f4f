package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftdesk/backend/config"
	"shiftdesk/backend/internal/dto"
	"shiftdesk/backend/internal/model"
	"shiftdesk/backend/internal/repository"
)

// ── roster generation business errors ──

var (
	ErrTooManyWeeks        = errors.New("requested horizon exceeds the generator limit")
	ErrEmployeeNotInBranch = errors.New("employee does not belong to the requested branch")
	ErrShiftNotInBranch    = errors.New("shift does not belong to the requested branch")
)

// RosterService generates rotating schedules. Employees cycle through the
// shift list week by week, staggered by their position in the employee list,
// so over len(shifts) weeks everyone works every shift.
type RosterService interface {
	Generate(ctx context.Context, req *dto.GenerateRosterRequest, callerID string) (*dto.GenerateRosterResponse, error)
}

type rosterService struct {
	cfg    *config.WorkflowConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRosterService creates a RosterService.
func NewRosterService(cfg *config.WorkflowConfig, repo *repository.Repository, logger *zap.Logger) RosterService {
	return &rosterService{cfg: cfg, repo: repo, logger: logger}
}

func (s *rosterService) Generate(ctx context.Context, req *dto.GenerateRosterRequest, callerID string) (*dto.GenerateRosterResponse, error) {
	if req.Weeks > s.cfg.GeneratorMaxWeeks {
		return nil, ErrTooManyWeeks
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date: %w", ErrInvalidDateRange)
	}

	shifts := make([]*model.Shift, 0, len(req.ShiftIDs))
	for _, id := range req.ShiftIDs {
		shift, err := s.repo.Shift.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrShiftNotFound
			}
			return nil, err
		}
		if shift.BranchID != req.BranchID {
			return nil, ErrShiftNotInBranch
		}
		shifts = append(shifts, shift)
	}

	for _, id := range req.EmployeeIDs {
		emp, err := s.repo.Employee.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrEmployeeNotFound
			}
			return nil, err
		}
		if emp.BranchID != req.BranchID {
			return nil, ErrEmployeeNotInBranch
		}
		if !emp.IsActive {
			return nil, ErrEmployeeInactive
		}
	}

	existing, err := s.repo.Assignment.ListActiveByEmployees(ctx, req.EmployeeIDs)
	if err != nil {
		return nil, err
	}
	byEmployee := make(map[string][]model.ShiftAssignment)
	for i := range existing {
		byEmployee[existing[i].EmployeeID] = append(byEmployee[existing[i].EmployeeID], existing[i])
	}

	result := &dto.GenerateRosterResponse{Created: []dto.AssignmentResponse{}}
	var batch []model.ShiftAssignment

	for week := 0; week < req.Weeks; week++ {
		rotationWeek := week
		for empIdx, empID := range req.EmployeeIDs {
			// The stagger: each employee starts one position later in the
			// cycle, so every shift is held by someone each week.
			shift := shifts[(week+empIdx)%len(shifts)]

			for day := 0; day < 7; day++ {
				date := startDate.AddDate(0, 0, week*7+day)
				weekday := int(date.Weekday())
				if len(shift.WorkingDays) > 0 && !shift.WorkingDays.Contains(weekday) {
					continue
				}
				result.TotalSlots++

				if hasConflict(byEmployee[empID], date, &date) {
					result.SkippedSlots++
					result.Warnings = append(result.Warnings, fmt.Sprintf(
						"employee %s skipped on %s: overlapping assignment",
						empID, date.Format(dateLayout),
					))
					continue
				}

				d := date
				rw := rotationWeek
				assignment := model.ShiftAssignment{
					EmployeeID:    empID,
					ShiftID:       shift.ShiftID,
					StartDate:     d,
					EndDate:       &d,
					IsActive:      true,
					AutoGenerated: true,
					RotationWeek:  &rw,
					AssignedBy:    &callerID,
				}
				assignment.CreatedBy = &callerID
				assignment.UpdatedBy = &callerID
				batch = append(batch, assignment)

				// Later slots in this run must not collide with earlier ones.
				byEmployee[empID] = append(byEmployee[empID], assignment)
			}
		}
	}

	if err := s.repo.Assignment.BatchCreate(ctx, batch); err != nil {
		s.logger.Error("roster batch create failed", zap.Error(err))
		return nil, err
	}
	for i := range batch {
		result.Created = append(result.Created, toAssignmentResponse(&batch[i]))
	}

	s.logger.Info("roster generated",
		zap.String("branch_id", req.BranchID),
		zap.Int("weeks", req.Weeks),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", result.SkippedSlots),
	)
	return result, nil
}
