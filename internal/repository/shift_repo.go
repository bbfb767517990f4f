package repository

import (
	"context"

	"gorm.io/gorm"

	"shiftdesk/backend/internal/model"
	pkgerrors "shiftdesk/backend/pkg/errors"
)

// ShiftRepository is the data-access interface for the shift catalog.
type ShiftRepository interface {
	Create(ctx context.Context, shift *model.Shift) error
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	ListByBranch(ctx context.Context, branchID string) ([]model.Shift, error)
	CountByOrganizationAndName(ctx context.Context, organizationID, name, excludeID string) (int64, error)
	Update(ctx context.Context, shift *model.Shift) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type shiftRepo struct {
	db *gorm.DB
}

func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) Create(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Where("shift_id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) ListByBranch(ctx context.Context, branchID string) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("start_time ASC, name ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) CountByOrganizationAndName(ctx context.Context, organizationID, name, excludeID string) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Shift{}).
		Where("organization_id = ? AND name = ?", organizationID, name)
	if excludeID != "" {
		q = q.Where("shift_id != ?", excludeID)
	}
	err := q.Count(&count).Error
	return count, err
}

func (r *shiftRepo) Update(ctx context.Context, shift *model.Shift) error {
	oldVersion := shift.Version
	result := r.db.WithContext(ctx).
		Model(shift).
		Where("shift_id = ? AND version = ?", shift.ShiftID, oldVersion).
		Updates(map[string]interface{}{
			"name":         shift.Name,
			"shift_type":   shift.ShiftType,
			"start_time":   shift.StartTime,
			"end_time":     shift.EndTime,
			"is_overnight": shift.IsOvernight,
			"working_days": shift.WorkingDays,
			"is_active":    shift.IsActive,
			"updated_by":   shift.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	shift.Version = oldVersion + 1
	return nil
}

func (r *shiftRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("shift_id = ?", id).
		Update("deleted_by", deletedBy)
	if result.Error != nil {
		return result.Error
	}
	return r.db.WithContext(ctx).
		Where("shift_id = ?", id).
		Delete(&model.Shift{}).Error
}
