package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftdesk/backend/config"
	"shiftdesk/backend/internal/dto"
	"shiftdesk/backend/internal/model"
	"shiftdesk/backend/internal/repository"
	pkgerrors "shiftdesk/backend/pkg/errors"
)

// ── coverage workflow business errors ──

var (
	ErrCoverageNotFound       = errors.New("coverage request not found")
	ErrDateOutsideRange       = errors.New("shift date falls outside the assignment's date range")
	ErrAlreadyAccepted        = errors.New("coverage request was already accepted by someone else")
	ErrCoverageConflict       = errors.New("accepting would create an overlapping assignment")
	ErrNoEligibleEmployees    = errors.New("no eligible employees for this broadcast")
	ErrBroadcastShiftMismatch = errors.New("shift does not belong to the requested branch")
)

// CoverageService runs the coverage workflow:
// open → accepted → approved | rejected, plus cancelled and expired. The
// open → accepted edge is first-accept-wins: the status-precondition update
// lets exactly one acceptor through.
type CoverageService interface {
	Create(ctx context.Context, req *dto.CreateCoverageRequest, requesterID string) (*dto.CoverageRequestResponse, error)
	Get(ctx context.Context, id string) (*dto.CoverageRequestResponse, error)
	ListByRequester(ctx context.Context, requesterID string, page *dto.CoverageListRequest) ([]dto.CoverageRequestResponse, int64, error)
	Respond(ctx context.Context, id string, req *dto.RespondCoverageRequest, responderID string) (*dto.CoverageRequestResponse, error)
	Approve(ctx context.Context, id string, req *dto.ApproveCoverageRequest, managerID string) (*dto.CoverageRequestResponse, error)
	Cancel(ctx context.Context, id string, callerID string) error
	Broadcast(ctx context.Context, req *dto.BroadcastCoverageRequest, managerID string) (*dto.BroadcastCoverageResponse, error)
}

type coverageService struct {
	cfg      *config.WorkflowConfig
	repo     *repository.Repository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewCoverageService creates a CoverageService.
func NewCoverageService(cfg *config.WorkflowConfig, repo *repository.Repository, notifier Notifier, logger *zap.Logger) CoverageService {
	return &coverageService{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *coverageService) Create(ctx context.Context, req *dto.CreateCoverageRequest, requesterID string) (*dto.CoverageRequestResponse, error) {
	shiftDate, err := parseDate(req.ShiftDate)
	if err != nil {
		return nil, fmt.Errorf("invalid shift_date: %w", ErrInvalidDateRange)
	}

	assignment, err := s.repo.Assignment.GetByID(ctx, req.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.EmployeeID != requesterID {
		return nil, ErrNotAssignmentOwner
	}
	if shiftDate.Before(assignment.StartDate) ||
		(assignment.EndDate != nil && shiftDate.After(*assignment.EndDate)) {
		return nil, ErrDateOutsideRange
	}

	expiry := s.cfg.CoverageExpiry
	if req.IsEmergency {
		expiry = s.cfg.EmergencyExpiry
	}

	coverage := &model.ShiftCoverageRequest{
		RequesterID:  requesterID,
		AssignmentID: req.AssignmentID,
		ShiftDate:    shiftDate,
		Reason:       req.Reason,
		IsEmergency:  req.IsEmergency,
		ExpiresAt:    s.now().Add(expiry),
		Status:       model.CoverageStatusOpen,
	}
	coverage.CreatedBy = &requesterID
	coverage.UpdatedBy = &requesterID

	if err := s.repo.Coverage.Create(ctx, coverage); err != nil {
		s.logger.Error("coverage create failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("coverage request created",
		zap.String("coverage_request_id", coverage.CoverageRequestID),
		zap.String("requester_id", requesterID),
		zap.Bool("is_emergency", coverage.IsEmergency),
	)
	return s.Get(ctx, coverage.CoverageRequestID)
}

func (s *coverageService) Get(ctx context.Context, id string) (*dto.CoverageRequestResponse, error) {
	coverage, err := s.repo.Coverage.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCoverageNotFound
		}
		return nil, err
	}
	resp := toCoverageResponse(coverage)
	return &resp, nil
}

func (s *coverageService) ListByRequester(ctx context.Context, requesterID string, page *dto.CoverageListRequest) ([]dto.CoverageRequestResponse, int64, error) {
	reqs, total, err := s.repo.Coverage.ListByRequester(ctx, requesterID, page.GetOffset(), page.GetPageSize())
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.CoverageRequestResponse, 0, len(reqs))
	for i := range reqs {
		result = append(result, toCoverageResponse(&reqs[i]))
	}
	return result, total, nil
}

// Respond answers an open request. Acceptance is first-accept-wins: a
// concurrent acceptor whose transition misses sees ErrAlreadyAccepted.
// Declines are recorded and leave the request open.
func (s *coverageService) Respond(ctx context.Context, id string, req *dto.RespondCoverageRequest, responderID string) (*dto.CoverageRequestResponse, error) {
	coverage, err := s.getLive(ctx, id)
	if err != nil {
		return nil, err
	}
	if coverage.Status != model.CoverageStatusOpen {
		return nil, ErrInvalidStateTransition
	}
	if responderID == coverage.RequesterID {
		return nil, ErrSelfResponse
	}

	if req.Accept {
		// The acceptor takes over one day, so that day must be free.
		existing, err := s.repo.Assignment.ListActiveByEmployee(ctx, responderID)
		if err != nil {
			return nil, err
		}
		day := coverage.ShiftDate
		if hasConflict(existing, day, &day) {
			return nil, ErrCoverageConflict
		}
	}

	response := &model.ShiftCoverageResponse{
		CoverageRequestID: id,
		ResponderID:       responderID,
		Accepted:          req.Accept,
		Notes:             req.Notes,
	}
	if err := s.repo.Coverage.CreateResponse(ctx, response); err != nil {
		return nil, err
	}

	if req.Accept {
		now := s.now()
		err := s.repo.Coverage.TransitionStatus(ctx, id,
			model.CoverageStatusOpen, model.CoverageStatusAccepted,
			map[string]interface{}{
				"accepted_by":      responderID,
				"accepted_at":      now,
				"acceptance_notes": req.Notes,
				"updated_by":       responderID,
			})
		if err != nil {
			if errors.Is(err, pkgerrors.ErrOptimisticLock) {
				return nil, ErrAlreadyAccepted
			}
			return nil, err
		}
		s.notifier.Notify(ctx, coverage.RequesterID,
			"Coverage accepted",
			"Your coverage request was accepted and is awaiting manager approval.",
			PriorityNormal,
		)
	}

	return s.Get(ctx, id)
}

// Approve applies the manager decision. Approval creates a one-day
// assignment for the acceptor, annotates the original assignment, and
// closes any sibling requests from the same broadcast.
func (s *coverageService) Approve(ctx context.Context, id string, req *dto.ApproveCoverageRequest, managerID string) (*dto.CoverageRequestResponse, error) {
	coverage, err := s.getLive(ctx, id)
	if err != nil {
		return nil, err
	}
	if coverage.Status != model.CoverageStatusAccepted {
		return nil, ErrInvalidStateTransition
	}
	if coverage.AcceptedBy == nil {
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
		err := s.repo.Coverage.TransitionStatus(ctx, id,
			model.CoverageStatusAccepted, model.CoverageStatusRejected, decision)
		if err != nil {
			if errors.Is(err, pkgerrors.ErrOptimisticLock) {
				return nil, ErrInvalidStateTransition
			}
			return nil, err
		}
		s.notifier.Notify(ctx, coverage.RequesterID,
			"Coverage rejected", "Your coverage request was rejected by a manager.", PriorityNormal)
		s.notifier.Notify(ctx, *coverage.AcceptedBy,
			"Coverage rejected", "The coverage you accepted was rejected by a manager.", PriorityNormal)
		return s.Get(ctx, id)
	}

	original, err := s.repo.Assignment.GetByID(ctx, coverage.AssignmentID)
	if err != nil {
		return nil, err
	}

	// Re-check the acceptor's schedule at approval time.
	existing, err := s.repo.Assignment.ListActiveByEmployee(ctx, *coverage.AcceptedBy)
	if err != nil {
		return nil, err
	}
	day := coverage.ShiftDate
	if hasConflict(existing, day, &day) {
		return nil, ErrCoverageConflict
	}

	err = s.repo.Coverage.TransitionStatus(ctx, id,
		model.CoverageStatusAccepted, model.CoverageStatusApproved, decision)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	cover := &model.ShiftAssignment{
		EmployeeID: *coverage.AcceptedBy,
		ShiftID:    original.ShiftID,
		StartDate:  day,
		EndDate:    &day,
		IsActive:   true,
		Notes:      fmt.Sprintf("covering %s on %s", original.EmployeeID, day.Format(dateLayout)),
		AssignedBy: &managerID,
	}
	cover.CreatedBy = &managerID
	cover.UpdatedBy = &managerID
	if err := s.repo.Assignment.Create(ctx, cover); err != nil {
		s.logger.Error("coverage assignment create failed after approval",
			zap.String("coverage_request_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	original.Notes = appendNote(original.Notes,
		fmt.Sprintf("covered by %s on %s", *coverage.AcceptedBy, day.Format(dateLayout)))
	original.UpdatedBy = &managerID
	if err := s.repo.Assignment.Update(ctx, original); err != nil && !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		return nil, err
	}

	if coverage.BroadcastID != nil {
		s.closeSiblings(ctx, *coverage.BroadcastID, id, managerID)
	}

	s.notifier.Notify(ctx, coverage.RequesterID,
		"Coverage approved", "Your shift will be covered.", PriorityNormal)
	s.notifier.Notify(ctx, *coverage.AcceptedBy,
		"Coverage approved", "You are confirmed to cover the shift.", PriorityNormal)

	s.logger.Info("coverage approved",
		zap.String("coverage_request_id", id),
		zap.String("approved_by", managerID),
	)
	return s.Get(ctx, id)
}

func (s *coverageService) Cancel(ctx context.Context, id string, callerID string) error {
	coverage, err := s.getLive(ctx, id)
	if err != nil {
		return err
	}
	if coverage.RequesterID != callerID {
		return ErrNotRequester
	}
	if coverage.Status != model.CoverageStatusOpen && coverage.Status != model.CoverageStatusAccepted {
		return ErrInvalidStateTransition
	}

	err = s.repo.Coverage.TransitionStatus(ctx, id, coverage.Status, model.CoverageStatusCancelled,
		map[string]interface{}{"updated_by": callerID})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return ErrInvalidStateTransition
		}
		return err
	}

	if coverage.AcceptedBy != nil {
		s.notifier.Notify(ctx, *coverage.AcceptedBy,
			"Coverage cancelled", "A coverage request you accepted was cancelled.", PriorityNormal)
	}
	return nil
}

// Broadcast fans an urgent unfilled shift out: every eligible branch
// employee gets an open coverage request sharing one broadcast id, backed by
// an inactive placeholder assignment, plus an urgent notification. Eligible
// means active, free on the shift date, and inside the optional target list.
func (s *coverageService) Broadcast(ctx context.Context, req *dto.BroadcastCoverageRequest, managerID string) (*dto.BroadcastCoverageResponse, error) {
	shiftDate, err := parseDate(req.ShiftDate)
	if err != nil {
		return nil, fmt.Errorf("invalid shift_date: %w", ErrInvalidDateRange)
	}

	shift, err := s.repo.Shift.GetByID(ctx, req.ShiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	if shift.BranchID != req.BranchID {
		return nil, ErrBroadcastShiftMismatch
	}

	employees, err := s.repo.Employee.ListActiveByBranch(ctx, req.BranchID)
	if err != nil {
		return nil, err
	}

	targeted := make(map[string]bool, len(req.TargetEmployeeIDs))
	for _, id := range req.TargetEmployeeIDs {
		targeted[id] = true
	}

	ids := make([]string, 0, len(employees))
	for i := range employees {
		if len(targeted) > 0 && !targeted[employees[i].EmployeeID] {
			continue
		}
		ids = append(ids, employees[i].EmployeeID)
	}

	assignments, err := s.repo.Assignment.ListActiveByEmployees(ctx, ids)
	if err != nil {
		return nil, err
	}
	busy := make(map[string]bool)
	for i := range assignments {
		a := &assignments[i]
		if rangesOverlap(a.StartDate, a.EndDate, shiftDate, &shiftDate) {
			busy[a.EmployeeID] = true
		}
	}

	eligible := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == managerID || busy[id] {
			continue
		}
		eligible = append(eligible, id)
		if len(eligible) >= s.cfg.BroadcastMaxRecipients {
			break
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoEligibleEmployees
	}

	broadcastID := uuid.NewString()
	expiresAt := s.now().Add(s.cfg.EmergencyExpiry)

	// The broadcast is anchored to one placeholder assignment the manager
	// holds, inactive so it never collides with real schedules.
	placeholder := &model.ShiftAssignment{
		EmployeeID: managerID,
		ShiftID:    req.ShiftID,
		StartDate:  shiftDate,
		EndDate:    &shiftDate,
		IsActive:   false,
		Notes:      fmt.Sprintf("broadcast placeholder: %s", req.Reason),
		AssignedBy: &managerID,
	}
	placeholder.CreatedBy = &managerID
	placeholder.UpdatedBy = &managerID
	if err := s.repo.Assignment.Create(ctx, placeholder); err != nil {
		return nil, err
	}

	requests := make([]model.ShiftCoverageRequest, 0, len(eligible))
	for range eligible {
		cr := model.ShiftCoverageRequest{
			RequesterID:  managerID,
			AssignmentID: placeholder.AssignmentID,
			ShiftDate:    shiftDate,
			Reason:       req.Reason,
			IsEmergency:  true,
			ExpiresAt:    expiresAt,
			BroadcastID:  &broadcastID,
			Status:       model.CoverageStatusOpen,
		}
		cr.CreatedBy = &managerID
		cr.UpdatedBy = &managerID
		requests = append(requests, cr)
	}
	if err := s.repo.Coverage.BatchCreate(ctx, requests); err != nil {
		s.logger.Error("broadcast batch create failed", zap.Error(err))
		return nil, err
	}

	for _, id := range eligible {
		s.notifier.Notify(ctx, id,
			"Urgent shift needs coverage",
			fmt.Sprintf("Shift %q on %s needs coverage: %s", shift.Name, req.ShiftDate, req.Reason),
			PriorityUrgent,
		)
	}

	result := &dto.BroadcastCoverageResponse{BroadcastID: broadcastID}
	for i := range requests {
		result.Requests = append(result.Requests, toCoverageResponse(&requests[i]))
	}

	s.logger.Info("coverage broadcast sent",
		zap.String("broadcast_id", broadcastID),
		zap.String("shift_id", req.ShiftID),
		zap.Int("recipients", len(eligible)),
	)
	return result, nil
}

// closeSiblings cancels the still-open requests fanned out by the same
// broadcast once one of them is approved. Failures are logged, not
// surfaced: the approval already happened.
func (s *coverageService) closeSiblings(ctx context.Context, broadcastID, approvedID, managerID string) {
	siblings, err := s.repo.Coverage.ListSiblings(ctx, broadcastID, approvedID)
	if err != nil {
		s.logger.Warn("broadcast sibling lookup failed",
			zap.String("broadcast_id", broadcastID),
			zap.Error(err),
		)
		return
	}
	for i := range siblings {
		sib := &siblings[i]
		if sib.Status != model.CoverageStatusOpen && sib.Status != model.CoverageStatusAccepted {
			continue
		}
		err := s.repo.Coverage.TransitionStatus(ctx, sib.CoverageRequestID,
			sib.Status, model.CoverageStatusCancelled,
			map[string]interface{}{"updated_by": managerID})
		if err != nil && !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Warn("broadcast sibling close failed",
				zap.String("coverage_request_id", sib.CoverageRequestID),
				zap.Error(err),
			)
		}
	}
}

// getLive loads a request and lazily expires it, mirroring the swap side.
func (s *coverageService) getLive(ctx context.Context, id string) (*model.ShiftCoverageRequest, error) {
	coverage, err := s.repo.Coverage.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCoverageNotFound
		}
		return nil, err
	}

	live := coverage.Status == model.CoverageStatusOpen || coverage.Status == model.CoverageStatusAccepted
	if live && s.now().After(coverage.ExpiresAt) {
		err := s.repo.Coverage.TransitionStatus(ctx, id, coverage.Status, model.CoverageStatusExpired, nil)
		if err != nil && !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, err
		}
		return nil, ErrRequestExpired
	}
	return coverage, nil
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}

func toCoverageResponse(c *model.ShiftCoverageRequest) dto.CoverageRequestResponse {
	resp := dto.CoverageRequestResponse{
		ID:              c.CoverageRequestID,
		AssignmentID:    c.AssignmentID,
		ShiftDate:       c.ShiftDate.Format(dateLayout),
		Reason:          c.Reason,
		IsEmergency:     c.IsEmergency,
		ExpiresAt:       c.ExpiresAt.UTC().Format(timestampLayout),
		BroadcastID:     c.BroadcastID,
		Status:          c.Status,
		AcceptedBy:      c.AcceptedBy,
		AcceptanceNotes: c.AcceptanceNotes,
		ApprovedBy:      c.ApprovedBy,
		ApprovalNotes:   c.ApprovalNotes,
		CreatedAt:       c.CreatedAt.Format(timestampLayout),
	}
	if c.AcceptedAt != nil {
		at := c.AcceptedAt.UTC().Format(timestampLayout)
		resp.AcceptedAt = &at
	}
	if c.ApprovedAt != nil {
		at := c.ApprovedAt.UTC().Format(timestampLayout)
		resp.ApprovedAt = &at
	}
	if c.Requester != nil {
		resp.Requester = &dto.EmployeeBrief{
			ID:    c.Requester.EmployeeID,
			Name:  c.Requester.Name,
			Email: c.Requester.Email,
		}
	}
	return resp
}
