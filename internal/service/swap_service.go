package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftdesk/backend/config"
	"shiftdesk/backend/internal/dto"
	"shiftdesk/backend/internal/model"
	"shiftdesk/backend/internal/repository"
	pkgerrors "shiftdesk/backend/pkg/errors"
)

// ── swap workflow business errors ──

var (
	ErrSwapNotFound           = errors.New("swap request not found")
	ErrNotAssignmentOwner     = errors.New("caller does not own the cited assignment")
	ErrNotRequester           = errors.New("only the requester may cancel this request")
	ErrSelfResponse           = errors.New("requester cannot respond to their own request")
	ErrInvalidStateTransition = errors.New("request is not in a state that allows this action")
	ErrRequestExpired         = errors.New("request has expired")
	ErrNotTargetedResponder   = errors.New("request is directed at a different employee")
	ErrSwapWouldConflict      = errors.New("swap would create an overlapping assignment")
)

// SwapService runs the shift swap workflow:
// pending → manager_approval → approved | rejected, plus cancelled and
// expired terminal states. All transitions go through a status-precondition
// update so concurrent actors cannot double-apply one.
type SwapService interface {
	Create(ctx context.Context, req *dto.CreateSwapRequest, requesterID string) (*dto.SwapRequestResponse, error)
	Get(ctx context.Context, id string) (*dto.SwapRequestResponse, error)
	ListByRequester(ctx context.Context, requesterID string, page *dto.SwapListRequest) ([]dto.SwapRequestResponse, int64, error)
	Respond(ctx context.Context, id string, req *dto.RespondSwapRequest, responderID string) (*dto.SwapRequestResponse, error)
	Approve(ctx context.Context, id string, req *dto.ApproveSwapRequest, managerID string) (*dto.SwapRequestResponse, error)
	Cancel(ctx context.Context, id string, callerID string) error
}

type swapService struct {
	cfg      *config.WorkflowConfig
	repo     *repository.Repository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewSwapService creates a SwapService.
func NewSwapService(cfg *config.WorkflowConfig, repo *repository.Repository, notifier Notifier, logger *zap.Logger) SwapService {
	return &swapService{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *swapService) Create(ctx context.Context, req *dto.CreateSwapRequest, requesterID string) (*dto.SwapRequestResponse, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, req.RequesterAssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.EmployeeID != requesterID {
		return nil, ErrNotAssignmentOwner
	}

	if req.TargetAssignmentID != nil {
		target, err := s.repo.Assignment.GetByID(ctx, *req.TargetAssignmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssignmentNotFound
			}
			return nil, err
		}
		if req.TargetEmployeeID != nil && target.EmployeeID != *req.TargetEmployeeID {
			return nil, ErrNotAssignmentOwner
		}
	}

	expiry := s.cfg.SwapExpiry
	if req.IsEmergency {
		expiry = s.cfg.EmergencyExpiry
	}

	swap := &model.ShiftSwapRequest{
		RequesterID:           requesterID,
		RequesterAssignmentID: req.RequesterAssignmentID,
		TargetEmployeeID:      req.TargetEmployeeID,
		TargetAssignmentID:    req.TargetAssignmentID,
		IsEmergency:           req.IsEmergency,
		ExpiresAt:             s.now().Add(expiry),
		Status:                model.SwapStatusPending,
	}
	swap.CreatedBy = &requesterID
	swap.UpdatedBy = &requesterID

	if err := s.repo.Swap.Create(ctx, swap); err != nil {
		s.logger.Error("swap create failed", zap.Error(err))
		return nil, err
	}

	if req.TargetEmployeeID != nil {
		priority := PriorityNormal
		if req.IsEmergency {
			priority = PriorityUrgent
		}
		s.notifier.Notify(ctx, *req.TargetEmployeeID,
			"Shift swap requested",
			"A colleague has asked to swap a shift with you.",
			priority,
		)
	}

	s.logger.Info("swap request created",
		zap.String("swap_request_id", swap.SwapRequestID),
		zap.String("requester_id", requesterID),
		zap.Bool("is_emergency", swap.IsEmergency),
	)
	return s.Get(ctx, swap.SwapRequestID)
}

func (s *swapService) Get(ctx context.Context, id string) (*dto.SwapRequestResponse, error) {
	swap, err := s.repo.Swap.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSwapNotFound
		}
		return nil, err
	}
	responses, err := s.repo.Swap.ListResponses(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toSwapResponse(swap, responses)
	return &resp, nil
}

func (s *swapService) ListByRequester(ctx context.Context, requesterID string, page *dto.SwapListRequest) ([]dto.SwapRequestResponse, int64, error) {
	swaps, total, err := s.repo.Swap.ListByRequester(ctx, requesterID, page.GetOffset(), page.GetPageSize())
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.SwapRequestResponse, 0, len(swaps))
	for i := range swaps {
		result = append(result, toSwapResponse(&swaps[i], nil))
	}
	return result, total, nil
}

// Respond answers a pending request. An acceptance advances it to
// manager_approval and records the responder's assignment as the exchange
// counterpart; a rejection is recorded but leaves the request pending so
// other employees can still answer.
func (s *swapService) Respond(ctx context.Context, id string, req *dto.RespondSwapRequest, responderID string) (*dto.SwapRequestResponse, error) {
	swap, err := s.getLive(ctx, id)
	if err != nil {
		return nil, err
	}
	if swap.Status != model.SwapStatusPending {
		return nil, ErrInvalidStateTransition
	}
	if responderID == swap.RequesterID {
		return nil, ErrSelfResponse
	}
	if swap.TargetEmployeeID != nil && *swap.TargetEmployeeID != responderID {
		return nil, ErrNotTargetedResponder
	}

	responderAssignment, err := s.repo.Assignment.GetByID(ctx, req.ResponderAssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if responderAssignment.EmployeeID != responderID {
		return nil, ErrNotAssignmentOwner
	}

	response := &model.ShiftSwapResponse{
		SwapRequestID:         id,
		ResponderID:           responderID,
		ResponderAssignmentID: req.ResponderAssignmentID,
		Accepted:              req.Accept,
		Notes:                 req.Notes,
	}
	if err := s.repo.Swap.CreateResponse(ctx, response); err != nil {
		return nil, err
	}

	if req.Accept {
		err := s.repo.Swap.TransitionStatus(ctx, id,
			model.SwapStatusPending, model.SwapStatusManagerApproval,
			map[string]interface{}{
				"target_employee_id":   responderID,
				"target_assignment_id": req.ResponderAssignmentID,
				"updated_by":           responderID,
			})
		if err != nil {
			if errors.Is(err, pkgerrors.ErrOptimisticLock) {
				return nil, ErrInvalidStateTransition
			}
			return nil, err
		}
		s.notifier.Notify(ctx, swap.RequesterID,
			"Swap accepted",
			"Your swap request was accepted and is awaiting manager approval.",
			PriorityNormal,
		)
	}

	return s.Get(ctx, id)
}

// Approve applies the manager decision. Approval re-checks that the exchange
// would not create overlaps, then moves the request to approved and swaps the
// two assignments' employees in one transaction, so an approved request always
// has the exchange applied.
func (s *swapService) Approve(ctx context.Context, id string, req *dto.ApproveSwapRequest, managerID string) (*dto.SwapRequestResponse, error) {
	swap, err := s.getLive(ctx, id)
	if err != nil {
		return nil, err
	}
	if swap.Status != model.SwapStatusManagerApproval {
		return nil, ErrInvalidStateTransition
	}
	if swap.TargetEmployeeID == nil || swap.TargetAssignmentID == nil {
		return nil, ErrInvalidStateTransition
	}

	now := s.now()
	decision := map[string]interface{}{
		"approved_by":    managerID,
		"approved_at":    now,
		"approval_notes": req.Notes,
		"updated_by":     managerID,
	}

	if !req.Approve {
		err := s.repo.Swap.TransitionStatus(ctx, id,
			model.SwapStatusManagerApproval, model.SwapStatusRejected, decision)
		if err != nil {
			if errors.Is(err, pkgerrors.ErrOptimisticLock) {
				return nil, ErrInvalidStateTransition
			}
			return nil, err
		}
		s.notifier.Notify(ctx, swap.RequesterID,
			"Swap rejected", "Your swap request was rejected by a manager.", PriorityNormal)
		return s.Get(ctx, id)
	}

	if err := s.checkExchangeConflicts(ctx, swap); err != nil {
		return nil, err
	}

	err = s.repo.Swap.ApproveAndExchange(ctx, id,
		model.SwapStatusManagerApproval, model.SwapStatusApproved, decision,
		swap.RequesterAssignmentID, *swap.TargetAssignmentID, managerID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrInvalidStateTransition
		}
		s.logger.Error("swap approval failed",
			zap.String("swap_request_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	s.notifier.Notify(ctx, swap.RequesterID,
		"Swap approved", "Your shift swap was approved.", PriorityNormal)
	s.notifier.Notify(ctx, *swap.TargetEmployeeID,
		"Swap approved", "A shift swap involving you was approved.", PriorityNormal)

	s.logger.Info("swap approved",
		zap.String("swap_request_id", id),
		zap.String("approved_by", managerID),
	)
	return s.Get(ctx, id)
}

func (s *swapService) Cancel(ctx context.Context, id string, callerID string) error {
	swap, err := s.getLive(ctx, id)
	if err != nil {
		return err
	}
	if swap.RequesterID != callerID {
		return ErrNotRequester
	}
	if swap.Status != model.SwapStatusPending && swap.Status != model.SwapStatusManagerApproval {
		return ErrInvalidStateTransition
	}

	err = s.repo.Swap.TransitionStatus(ctx, id, swap.Status, model.SwapStatusCancelled,
		map[string]interface{}{"updated_by": callerID})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return ErrInvalidStateTransition
		}
		return err
	}
	return nil
}

// getLive loads a request and lazily expires it: a request past its deadline
// in a non-terminal state is flipped to expired before the caller acts.
func (s *swapService) getLive(ctx context.Context, id string) (*model.ShiftSwapRequest, error) {
	swap, err := s.repo.Swap.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSwapNotFound
		}
		return nil, err
	}

	live := swap.Status == model.SwapStatusPending || swap.Status == model.SwapStatusManagerApproval
	if live && s.now().After(swap.ExpiresAt) {
		err := s.repo.Swap.TransitionStatus(ctx, id, swap.Status, model.SwapStatusExpired, nil)
		if err != nil && !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, err
		}
		return nil, ErrRequestExpired
	}
	return swap, nil
}

// checkExchangeConflicts verifies that giving each party the other's
// assignment does not overlap their remaining schedules. The two traded
// assignments themselves are excluded from the check.
func (s *swapService) checkExchangeConflicts(ctx context.Context, swap *model.ShiftSwapRequest) error {
	requesterAssignment, err := s.repo.Assignment.GetByID(ctx, swap.RequesterAssignmentID)
	if err != nil {
		return err
	}
	targetAssignment, err := s.repo.Assignment.GetByID(ctx, *swap.TargetAssignmentID)
	if err != nil {
		return err
	}

	check := func(employeeID string, incoming *model.ShiftAssignment) error {
		existing, err := s.repo.Assignment.ListActiveByEmployee(ctx, employeeID)
		if err != nil {
			return err
		}
		kept := existing[:0]
		for i := range existing {
			aid := existing[i].AssignmentID
			if aid == swap.RequesterAssignmentID || aid == *swap.TargetAssignmentID {
				continue
			}
			kept = append(kept, existing[i])
		}
		if hasConflict(kept, incoming.StartDate, incoming.EndDate) {
			return ErrSwapWouldConflict
		}
		return nil
	}

	if err := check(swap.RequesterID, targetAssignment); err != nil {
		return err
	}
	return check(*swap.TargetEmployeeID, requesterAssignment)
}

func toSwapResponse(swap *model.ShiftSwapRequest, responses []model.ShiftSwapResponse) dto.SwapRequestResponse {
	resp := dto.SwapRequestResponse{
		ID:                    swap.SwapRequestID,
		RequesterAssignmentID: swap.RequesterAssignmentID,
		TargetAssignmentID:    swap.TargetAssignmentID,
		IsEmergency:           swap.IsEmergency,
		ExpiresAt:             swap.ExpiresAt.UTC().Format(timestampLayout),
		Status:                swap.Status,
		ApprovedBy:            swap.ApprovedBy,
		ApprovalNotes:         swap.ApprovalNotes,
		CreatedAt:             swap.CreatedAt.Format(timestampLayout),
	}
	if swap.ApprovedAt != nil {
		at := swap.ApprovedAt.UTC().Format(timestampLayout)
		resp.ApprovedAt = &at
	}
	if swap.Requester != nil {
		resp.Requester = &dto.EmployeeBrief{
			ID:    swap.Requester.EmployeeID,
			Name:  swap.Requester.Name,
			Email: swap.Requester.Email,
		}
	}
	if swap.TargetEmployee != nil {
		resp.TargetEmployee = &dto.EmployeeBrief{
			ID:    swap.TargetEmployee.EmployeeID,
			Name:  swap.TargetEmployee.Name,
			Email: swap.TargetEmployee.Email,
		}
	}
	for i := range responses {
		r := &responses[i]
		resp.Responses = append(resp.Responses, dto.SwapResponseBrief{
			ID:                    r.SwapResponseID,
			ResponderID:           r.ResponderID,
			ResponderAssignmentID: r.ResponderAssignmentID,
			Accepted:              r.Accepted,
			Notes:                 r.Notes,
			CreatedAt:             r.CreatedAt.Format(timestampLayout),
		})
	}
	return resp
}
