package repository

import (
	"context"

	"gorm.io/gorm"

	"shiftdesk/backend/internal/model"
)

// EmployeeRepository reads the employee directory mirror. The directory is
// owned by the HR platform, so there are no write methods.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	ListActiveByBranch(ctx context.Context, branchID string) ([]model.Employee, error)
}

type employeeRepo struct {
	db *gorm.DB
}

func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	var emp model.Employee
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", id).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) ListActiveByBranch(ctx context.Context, branchID string) ([]model.Employee, error) {
	var emps []model.Employee
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND is_active", branchID).
		Order("name ASC").
		Find(&emps).Error
	return emps, err
}
