package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftdesk/backend/internal/dto"
	"shiftdesk/backend/internal/model"
	"shiftdesk/backend/internal/repository"
)

// ── assignment business errors ──

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrInvalidDateRange   = errors.New("end date must not precede start date")
	ErrAssignmentConflict = errors.New("employee already has an overlapping assignment")
	ErrEmployeeInactive   = errors.New("employee is not active")
)

// AssignmentService manages assignment lifecycle and conflict detection.
type AssignmentService interface {
	Assign(ctx context.Context, req *dto.AssignEmployeeRequest, callerID string) (*dto.AssignmentResponse, error)
	BulkAssign(ctx context.Context, req *dto.BulkAssignRequest, callerID string) (*dto.BulkAssignResponse, error)
	Get(ctx context.Context, id string) (*dto.AssignmentResponse, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]dto.AssignmentResponse, error)
	Remove(ctx context.Context, id string, callerID string) error
	DetectConflicts(ctx context.Context, req *dto.DetectConflictsRequest) ([]dto.Conflict, error)
	ConflictReport(ctx context.Context, req *dto.ConflictReportRequest) ([]dto.Conflict, error)
}

type assignmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewAssignmentService creates an AssignmentService.
func NewAssignmentService(repo *repository.Repository, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, logger: logger, now: time.Now}
}

func (s *assignmentService) Assign(ctx context.Context, req *dto.AssignEmployeeRequest, callerID string) (*dto.AssignmentResponse, error) {
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	emp, err := s.repo.Employee.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	if !emp.IsActive {
		return nil, ErrEmployeeInactive
	}

	if _, err := s.repo.Shift.GetByID(ctx, req.ShiftID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}

	existing, err := s.repo.Assignment.ListActiveByEmployee(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if hasConflict(existing, start, end) {
		return nil, ErrAssignmentConflict
	}

	assignment := &model.ShiftAssignment{
		EmployeeID: req.EmployeeID,
		ShiftID:    req.ShiftID,
		StartDate:  start,
		EndDate:    end,
		IsActive:   true,
		Notes:      req.Notes,
		AssignedBy: &callerID,
	}
	assignment.CreatedBy = &callerID
	assignment.UpdatedBy = &callerID

	if err := s.repo.Assignment.Create(ctx, assignment); err != nil {
		s.logger.Error("assignment create failed", zap.Error(err))
		return nil, err
	}

	resp := toAssignmentResponse(assignment)
	return &resp, nil
}

// BulkAssign creates assignments for every conflict-free candidate and
// reports the rest as skipped. One bad candidate never blocks the batch.
func (s *assignmentService) BulkAssign(ctx context.Context, req *dto.BulkAssignRequest, callerID string) (*dto.BulkAssignResponse, error) {
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Shift.GetByID(ctx, req.ShiftID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}

	existing, err := s.repo.Assignment.ListActiveByEmployees(ctx, req.EmployeeIDs)
	if err != nil {
		return nil, err
	}
	byEmployee := make(map[string][]model.ShiftAssignment)
	for i := range existing {
		byEmployee[existing[i].EmployeeID] = append(byEmployee[existing[i].EmployeeID], existing[i])
	}

	result := &dto.BulkAssignResponse{
		Created: []dto.AssignmentResponse{},
		Skipped: []dto.SkippedAssignment{},
	}
	seen := make(map[string]bool, len(req.EmployeeIDs))
	var batch []model.ShiftAssignment

	for _, empID := range req.EmployeeIDs {
		if seen[empID] {
			result.Skipped = append(result.Skipped, dto.SkippedAssignment{
				EmployeeID: empID, Reason: "duplicate employee in request",
			})
			continue
		}
		seen[empID] = true

		emp, err := s.repo.Employee.GetByID(ctx, empID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Skipped = append(result.Skipped, dto.SkippedAssignment{
					EmployeeID: empID, Reason: "employee not found",
				})
				continue
			}
			return nil, err
		}
		if !emp.IsActive {
			result.Skipped = append(result.Skipped, dto.SkippedAssignment{
				EmployeeID: empID, Reason: "employee is not active",
			})
			continue
		}
		if hasConflict(byEmployee[empID], start, end) {
			result.Skipped = append(result.Skipped, dto.SkippedAssignment{
				EmployeeID: empID, Reason: "overlapping assignment",
			})
			continue
		}

		assignment := model.ShiftAssignment{
			EmployeeID: empID,
			ShiftID:    req.ShiftID,
			StartDate:  start,
			EndDate:    end,
			IsActive:   true,
			Notes:      req.Notes,
			AssignedBy: &callerID,
		}
		assignment.CreatedBy = &callerID
		assignment.UpdatedBy = &callerID
		batch = append(batch, assignment)
	}

	if err := s.repo.Assignment.BatchCreate(ctx, batch); err != nil {
		s.logger.Error("bulk assignment create failed", zap.Error(err))
		return nil, err
	}
	for i := range batch {
		result.Created = append(result.Created, toAssignmentResponse(&batch[i]))
	}

	s.logger.Info("bulk assignment completed",
		zap.String("shift_id", req.ShiftID),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func (s *assignmentService) Get(ctx context.Context, id string) (*dto.AssignmentResponse, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	resp := toAssignmentResponse(assignment)
	return &resp, nil
}

func (s *assignmentService) ListByEmployee(ctx context.Context, employeeID string) ([]dto.AssignmentResponse, error) {
	assignments, err := s.repo.Assignment.ListActiveByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		result = append(result, toAssignmentResponse(&assignments[i]))
	}
	return result, nil
}

// Remove soft-ends an assignment: it is deactivated and its end date is
// pulled back to yesterday so the range no longer covers future dates.
// Rows are kept for workflow history.
func (s *assignmentService) Remove(ctx context.Context, id string, callerID string) error {
	assignment, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}
	if !assignment.IsActive {
		return nil
	}

	yesterday := s.now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	assignment.IsActive = false
	if assignment.EndDate == nil || assignment.EndDate.After(yesterday) {
		assignment.EndDate = &yesterday
	}
	assignment.UpdatedBy = &callerID
	if err := s.repo.Assignment.Update(ctx, assignment); err != nil {
		s.logger.Error("assignment remove failed", zap.String("assignment_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *assignmentService) DetectConflicts(ctx context.Context, req *dto.DetectConflictsRequest) ([]dto.Conflict, error) {
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	assignments, err := s.repo.Assignment.ListActiveByEmployee(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	conflicts := findConflicts(assignments, req.EmployeeID, start, end)
	if conflicts == nil {
		conflicts = []dto.Conflict{}
	}
	return conflicts, nil
}

func (s *assignmentService) ConflictReport(ctx context.Context, req *dto.ConflictReportRequest) ([]dto.Conflict, error) {
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

	employees, err := s.repo.Employee.ListActiveByBranch(ctx, req.BranchID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(employees))
	for i := range employees {
		ids = append(ids, employees[i].EmployeeID)
	}

	assignments, err := s.repo.Assignment.ListActiveByEmployees(ctx, ids)
	if err != nil {
		return nil, err
	}

	conflicts := branchConflicts(assignments, start, &end)
	if conflicts == nil {
		conflicts = []dto.Conflict{}
	}
	return conflicts, nil
}

// parseRange parses a start date plus an optional end date into the
// inclusive range used throughout conflict detection.
func parseRange(startStr, endStr string) (time.Time, *time.Time, error) {
	start, err := parseDate(startStr)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("invalid start_date: %w", ErrInvalidDateRange)
	}
	if endStr == "" {
		return start, nil, nil
	}
	end, err := parseDate(endStr)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("invalid end_date: %w", ErrInvalidDateRange)
	}
	if end.Before(start) {
		return time.Time{}, nil, ErrInvalidDateRange
	}
	return start, &end, nil
}

func toAssignmentResponse(a *model.ShiftAssignment) dto.AssignmentResponse {
	resp := dto.AssignmentResponse{
		ID:            a.AssignmentID,
		EmployeeID:    a.EmployeeID,
		ShiftID:       a.ShiftID,
		StartDate:     a.StartDate.Format(dateLayout),
		IsActive:      a.IsActive,
		Notes:         a.Notes,
		AutoGenerated: a.AutoGenerated,
		RotationWeek:  a.RotationWeek,
		CreatedAt:     a.CreatedAt.Format(timestampLayout),
	}
	if a.EndDate != nil {
		end := a.EndDate.Format(dateLayout)
		resp.EndDate = &end
	}
	if a.Employee != nil {
		resp.Employee = &dto.EmployeeBrief{
			ID:    a.Employee.EmployeeID,
			Name:  a.Employee.Name,
			Email: a.Employee.Email,
		}
	}
	if a.Shift != nil {
		resp.Shift = &dto.ShiftBrief{
			ID:        a.Shift.ShiftID,
			Name:      a.Shift.Name,
			ShiftType: a.Shift.ShiftType,
			StartTime: a.Shift.StartTime,
			EndTime:   a.Shift.EndTime,
		}
	}
	return resp
}
