package service

import (
	"context"
	"errors"
	"regexp"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftdesk/backend/internal/dto"
	"shiftdesk/backend/internal/model"
	"shiftdesk/backend/internal/repository"
)

// ── shift catalog business errors ──

var (
	ErrShiftNotFound      = errors.New("shift not found")
	ErrDuplicateShiftName = errors.New("shift name already used in this organization")
	ErrInvalidShiftTimes  = errors.New("shift end time must be after start time unless the shift is overnight")
	ErrShiftInUse         = errors.New("shift has active assignments")
)

var timeOfDayRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ShiftService owns the shift catalog.
type ShiftService interface {
	Create(ctx context.Context, req *dto.CreateShiftRequest, callerID string) (*dto.ShiftResponse, error)
	Get(ctx context.Context, id string) (*dto.ShiftResponse, error)
	ListByBranch(ctx context.Context, branchID string) ([]dto.ShiftResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateShiftRequest, callerID string) (*dto.ShiftResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type shiftService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShiftService creates a ShiftService.
func NewShiftService(repo *repository.Repository, logger *zap.Logger) ShiftService {
	return &shiftService{repo: repo, logger: logger}
}

func (s *shiftService) Create(ctx context.Context, req *dto.CreateShiftRequest, callerID string) (*dto.ShiftResponse, error) {
	if err := validateShiftTimes(req.StartTime, req.EndTime, req.IsOvernight); err != nil {
		return nil, err
	}

	count, err := s.repo.Shift.CountByOrganizationAndName(ctx, req.OrganizationID, req.Name, "")
	if err != nil {
		s.logger.Error("shift name lookup failed", zap.Error(err))
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateShiftName
	}

	shift := &model.Shift{
		Name:           req.Name,
		ShiftType:      req.ShiftType,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		IsOvernight:    req.IsOvernight,
		WorkingDays:    model.IntArray(req.WorkingDays),
		OrganizationID: req.OrganizationID,
		BranchID:       req.BranchID,
		IsActive:       true,
	}
	shift.CreatedBy = &callerID
	shift.UpdatedBy = &callerID

	if err := s.repo.Shift.Create(ctx, shift); err != nil {
		s.logger.Error("shift create failed", zap.Error(err))
		return nil, err
	}

	resp := toShiftResponse(shift)
	return &resp, nil
}

func (s *shiftService) Get(ctx context.Context, id string) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	resp := toShiftResponse(shift)
	return &resp, nil
}

func (s *shiftService) ListByBranch(ctx context.Context, branchID string) ([]dto.ShiftResponse, error) {
	shifts, err := s.repo.Shift.ListByBranch(ctx, branchID)
	if err != nil {
		s.logger.Error("shift list failed", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, toShiftResponse(&shifts[i]))
	}
	return result, nil
}

func (s *shiftService) Update(ctx context.Context, id string, req *dto.UpdateShiftRequest, callerID string) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		count, err := s.repo.Shift.CountByOrganizationAndName(ctx, shift.OrganizationID, *req.Name, shift.ShiftID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrDuplicateShiftName
		}
		shift.Name = *req.Name
	}
	if req.ShiftType != nil {
		shift.ShiftType = *req.ShiftType
	}
	if req.StartTime != nil {
		shift.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		shift.EndTime = *req.EndTime
	}
	if req.IsOvernight != nil {
		shift.IsOvernight = *req.IsOvernight
	}
	if req.WorkingDays != nil {
		shift.WorkingDays = model.IntArray(req.WorkingDays)
	}
	if req.IsActive != nil {
		shift.IsActive = *req.IsActive
	}

	if err := validateShiftTimes(shift.StartTime, shift.EndTime, shift.IsOvernight); err != nil {
		return nil, err
	}

	shift.UpdatedBy = &callerID
	if err := s.repo.Shift.Update(ctx, shift); err != nil {
		s.logger.Error("shift update failed", zap.String("shift_id", id), zap.Error(err))
		return nil, err
	}

	resp := toShiftResponse(shift)
	return &resp, nil
}

func (s *shiftService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Shift.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		return err
	}
	if err := s.repo.Shift.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("shift delete failed", zap.String("shift_id", id), zap.Error(err))
		return err
	}
	return nil
}

// validateShiftTimes enforces HH:MM format and ordering. An overnight shift
// legitimately ends before it starts (22:00–06:00).
func validateShiftTimes(start, end string, overnight bool) error {
	if !timeOfDayRe.MatchString(start) || !timeOfDayRe.MatchString(end) {
		return ErrInvalidShiftTimes
	}
	if !overnight && end <= start {
		return ErrInvalidShiftTimes
	}
	return nil
}

func toShiftResponse(shift *model.Shift) dto.ShiftResponse {
	return dto.ShiftResponse{
		ID:             shift.ShiftID,
		Name:           shift.Name,
		ShiftType:      shift.ShiftType,
		StartTime:      shift.StartTime,
		EndTime:        shift.EndTime,
		IsOvernight:    shift.IsOvernight,
		WorkingDays:    []int(shift.WorkingDays),
		OrganizationID: shift.OrganizationID,
		BranchID:       shift.BranchID,
		IsActive:       shift.IsActive,
		CreatedAt:      shift.CreatedAt.Format(timestampLayout),
		UpdatedAt:      shift.UpdatedAt.Format(timestampLayout),
	}
}
