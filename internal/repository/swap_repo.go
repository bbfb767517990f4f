package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shiftdesk/backend/internal/model"
	pkgerrors "shiftdesk/backend/pkg/errors"
)

// SwapRepository is the data-access interface for swap requests/responses.
type SwapRepository interface {
	Create(ctx context.Context, req *model.ShiftSwapRequest) error
	GetByID(ctx context.Context, id string) (*model.ShiftSwapRequest, error)
	ListByRequester(ctx context.Context, requesterID string, offset, limit int) ([]model.ShiftSwapRequest, int64, error)
	ListCreatedBetween(ctx context.Context, start, end time.Time) ([]model.ShiftSwapRequest, error)
	// TransitionStatus applies updates only if the request is still in
	// fromStatus. A miss returns pkg/errors.ErrOptimisticLock.
	TransitionStatus(ctx context.Context, id, fromStatus, toStatus string, updates map[string]interface{}) error
	// ApproveAndExchange moves the request from fromStatus to toStatus and
	// swaps the employee columns of the two assignments in one transaction.
	// The status precondition and the assignment version checks all use
	// compare-and-set; any miss rolls the whole transaction back with
	// pkg/errors.ErrOptimisticLock, so the request is never marked approved
	// with the exchange unapplied.
	ApproveAndExchange(ctx context.Context, id, fromStatus, toStatus string, updates map[string]interface{}, firstAssignmentID, secondAssignmentID, updatedBy string) error
	CreateResponse(ctx context.Context, resp *model.ShiftSwapResponse) error
	ListResponses(ctx context.Context, swapRequestID string) ([]model.ShiftSwapResponse, error)
}

type swapRepo struct {
	db *gorm.DB
}

func NewSwapRepo(db *gorm.DB) SwapRepository {
	return &swapRepo{db: db}
}

func (r *swapRepo) Create(ctx context.Context, req *model.ShiftSwapRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *swapRepo) GetByID(ctx context.Context, id string) (*model.ShiftSwapRequest, error) {
	var req model.ShiftSwapRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("RequesterAssignment").Preload("RequesterAssignment.Shift").
		Preload("TargetEmployee").
		Preload("TargetAssignment").Preload("TargetAssignment.Shift").
		Where("swap_request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *swapRepo) ListByRequester(ctx context.Context, requesterID string, offset, limit int) ([]model.ShiftSwapRequest, int64, error) {
	var reqs []model.ShiftSwapRequest
	var total int64

	q := r.db.WithContext(ctx).Model(&model.ShiftSwapRequest{}).
		Where("requester_id = ?", requesterID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, total, err
}

func (r *swapRepo) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]model.ShiftSwapRequest, error) {
	var reqs []model.ShiftSwapRequest
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Find(&reqs).Error
	return reqs, err
}

func (r *swapRepo) TransitionStatus(ctx context.Context, id, fromStatus, toStatus string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = toStatus

	result := r.db.WithContext(ctx).
		Model(&model.ShiftSwapRequest{}).
		Where("swap_request_id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *swapRepo) ApproveAndExchange(ctx context.Context, id, fromStatus, toStatus string, updates map[string]interface{}, firstAssignmentID, secondAssignmentID, updatedBy string) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = toStatus

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.ShiftSwapRequest{}).
			Where("swap_request_id = ? AND status = ?", id, fromStatus).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}

		var first, second model.ShiftAssignment
		if err := tx.Where("assignment_id = ?", firstAssignmentID).First(&first).Error; err != nil {
			return err
		}
		if err := tx.Where("assignment_id = ?", secondAssignmentID).First(&second).Error; err != nil {
			return err
		}

		reassign := func(a *model.ShiftAssignment, employeeID string) error {
			result := tx.Model(&model.ShiftAssignment{}).
				Where("assignment_id = ? AND version = ?", a.AssignmentID, a.Version).
				Updates(map[string]interface{}{
					"employee_id": employeeID,
					"updated_by":  updatedBy,
					"version":     a.Version + 1,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return pkgerrors.ErrOptimisticLock
			}
			return nil
		}
		if err := reassign(&first, second.EmployeeID); err != nil {
			return err
		}
		return reassign(&second, first.EmployeeID)
	})
}

func (r *swapRepo) CreateResponse(ctx context.Context, resp *model.ShiftSwapResponse) error {
	return r.db.WithContext(ctx).Create(resp).Error
}

func (r *swapRepo) ListResponses(ctx context.Context, swapRequestID string) ([]model.ShiftSwapResponse, error) {
	var resps []model.ShiftSwapResponse
	err := r.db.WithContext(ctx).
		Preload("Responder").
		Where("swap_request_id = ?", swapRequestID).
		Order("created_at ASC").
		Find(&resps).Error
	return resps, err
}
