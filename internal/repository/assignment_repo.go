package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shiftdesk/backend/internal/model"
	pkgerrors "shiftdesk/backend/pkg/errors"
)

// AssignmentRepository is the data-access interface for shift assignments.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.ShiftAssignment) error
	BatchCreate(ctx context.Context, assignments []model.ShiftAssignment) error
	GetByID(ctx context.Context, id string) (*model.ShiftAssignment, error)
	ListActiveByEmployee(ctx context.Context, employeeID string) ([]model.ShiftAssignment, error)
	ListActiveByEmployees(ctx context.Context, employeeIDs []string) ([]model.ShiftAssignment, error)
	ListCreatedBetween(ctx context.Context, start, end time.Time) ([]model.ShiftAssignment, error)
	Update(ctx context.Context, assignment *model.ShiftAssignment) error
}

type assignmentRepo struct {
	db *gorm.DB
}

func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *model.ShiftAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepo) BatchCreate(ctx context.Context, assignments []model.ShiftAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&assignments).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.ShiftAssignment, error) {
	var assignment model.ShiftAssignment
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Preload("Employee").
		Where("assignment_id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepo) ListActiveByEmployee(ctx context.Context, employeeID string) ([]model.ShiftAssignment, error) {
	var assignments []model.ShiftAssignment
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Where("employee_id = ? AND is_active", employeeID).
		Order("start_date ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) ListActiveByEmployees(ctx context.Context, employeeIDs []string) ([]model.ShiftAssignment, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	var assignments []model.ShiftAssignment
	err := r.db.WithContext(ctx).
		Preload("Shift").
		Where("employee_id IN ? AND is_active", employeeIDs).
		Order("employee_id ASC, start_date ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]model.ShiftAssignment, error) {
	var assignments []model.ShiftAssignment
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) Update(ctx context.Context, assignment *model.ShiftAssignment) error {
	oldVersion := assignment.Version
	result := r.db.WithContext(ctx).
		Model(assignment).
		Where("assignment_id = ? AND version = ?", assignment.AssignmentID, oldVersion).
		Updates(map[string]interface{}{
			"employee_id": assignment.EmployeeID,
			"start_date":  assignment.StartDate,
			"end_date":    assignment.EndDate,
			"is_active":   assignment.IsActive,
			"notes":       assignment.Notes,
			"updated_by":  assignment.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	assignment.Version = oldVersion + 1
	return nil
}
