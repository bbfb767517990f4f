package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shiftdesk/backend/internal/model"
	pkgerrors "shiftdesk/backend/pkg/errors"
)

// CoverageRepository is the data-access interface for coverage
// requests/responses.
type CoverageRepository interface {
	Create(ctx context.Context, req *model.ShiftCoverageRequest) error
	BatchCreate(ctx context.Context, reqs []model.ShiftCoverageRequest) error
	GetByID(ctx context.Context, id string) (*model.ShiftCoverageRequest, error)
	ListByRequester(ctx context.Context, requesterID string, offset, limit int) ([]model.ShiftCoverageRequest, int64, error)
	ListSiblings(ctx context.Context, broadcastID, excludeID string) ([]model.ShiftCoverageRequest, error)
	ListCreatedBetween(ctx context.Context, start, end time.Time) ([]model.ShiftCoverageRequest, error)
	// TransitionStatus applies updates only if the request is still in
	// fromStatus. A miss returns pkg/errors.ErrOptimisticLock.
	TransitionStatus(ctx context.Context, id, fromStatus, toStatus string, updates map[string]interface{}) error
	CreateResponse(ctx context.Context, resp *model.ShiftCoverageResponse) error
	ListResponses(ctx context.Context, coverageRequestID string) ([]model.ShiftCoverageResponse, error)
}

type coverageRepo struct {
	db *gorm.DB
}

func NewCoverageRepo(db *gorm.DB) CoverageRepository {
	return &coverageRepo{db: db}
}

func (r *coverageRepo) Create(ctx context.Context, req *model.ShiftCoverageRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *coverageRepo) BatchCreate(ctx context.Context, reqs []model.ShiftCoverageRequest) error {
	if len(reqs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&reqs).Error
}

func (r *coverageRepo) GetByID(ctx context.Context, id string) (*model.ShiftCoverageRequest, error) {
	var req model.ShiftCoverageRequest
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Assignment").Preload("Assignment.Shift").
		Preload("Acceptor").
		Where("coverage_request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *coverageRepo) ListByRequester(ctx context.Context, requesterID string, offset, limit int) ([]model.ShiftCoverageRequest, int64, error) {
	var reqs []model.ShiftCoverageRequest
	var total int64

	q := r.db.WithContext(ctx).Model(&model.ShiftCoverageRequest{}).
		Where("requester_id = ?", requesterID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, total, err
}

func (r *coverageRepo) ListSiblings(ctx context.Context, broadcastID, excludeID string) ([]model.ShiftCoverageRequest, error) {
	var reqs []model.ShiftCoverageRequest
	err := r.db.WithContext(ctx).
		Where("broadcast_id = ? AND coverage_request_id != ?", broadcastID, excludeID).
		Find(&reqs).Error
	return reqs, err
}

func (r *coverageRepo) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]model.ShiftCoverageRequest, error) {
	var reqs []model.ShiftCoverageRequest
	err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Find(&reqs).Error
	return reqs, err
}

func (r *coverageRepo) TransitionStatus(ctx context.Context, id, fromStatus, toStatus string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = toStatus

	result := r.db.WithContext(ctx).
		Model(&model.ShiftCoverageRequest{}).
		Where("coverage_request_id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *coverageRepo) CreateResponse(ctx context.Context, resp *model.ShiftCoverageResponse) error {
	return r.db.WithContext(ctx).Create(resp).Error
}

func (r *coverageRepo) ListResponses(ctx context.Context, coverageRequestID string) ([]model.ShiftCoverageResponse, error) {
	var resps []model.ShiftCoverageResponse
	err := r.db.WithContext(ctx).
		Preload("Responder").
		Where("coverage_request_id = ?", coverageRequestID).
		Order("created_at ASC").
		Find(&resps).Error
	return resps, err
}
