package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"shiftdesk/backend/internal/dto"
	"shiftdesk/backend/internal/model"
)

func newCoverageServiceForTest(tr *testRepos, notifier Notifier) *coverageService {
	if notifier == nil {
		notifier = NewLogNotifier(zap.NewNop())
	}
	return NewCoverageService(testWorkflowConfig(), tr.repo, notifier, zap.NewNop()).(*coverageService)
}

func seedCoverageFixture(tr *testRepos) {
	addEmployee(tr, "alice", "branch-1")
	addEmployee(tr, "bob", "branch-1")
	addEmployee(tr, "carol", "branch-1")
	addShift(tr, "s1", "Morning", "branch-1", nil)
	addAssignment(tr, "a-alice", "alice", "s1", day("2026-01-01"), dayPtr("2026-01-31"))
}

func TestCoverageCreateValidatesDateWithinAssignment(t *testing.T) {
	tr := newTestRepos()
	seedCoverageFixture(tr)
	svc := newCoverageServiceForTest(tr, nil)

	_, err := svc.Create(context.Background(), &dto.CreateCoverageRequest{
		AssignmentID: "a-alice",
		ShiftDate:    "2026-02-15",
	}, "alice")
	if !errors.Is(err, ErrDateOutsideRange) {
		t.Fatalf("expected ErrDateOutsideRange, got %v", err)
	}

	got, err := svc.Create(context.Background(), &dto.CreateCoverageRequest{
		AssignmentID: "a-alice",
		ShiftDate:    "2026-01-15",
		Reason:       "medical appointment",
	}, "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.Status != model.CoverageStatusOpen {
		t.Errorf("status = %s, want open", got.Status)
	}
}

func TestCoverageCreateRequiresOwnership(t *testing.T) {
	tr := newTestRepos()
	seedCoverageFixture(tr)
	svc := newCoverageServiceForTest(tr, nil)

	_, err := svc.Create(context.Background(), &dto.CreateCoverageRequest{
		AssignmentID: "a-alice",
		ShiftDate:    "2026-01-15",
	}, "bob")
	if !errors.Is(err, ErrNotAssignmentOwner) {
		t.Fatalf("expected ErrNotAssignmentOwner, got %v", err)
	}
}

func TestCoverageFirstAcceptWins(t *testing.T) {
	tr := newTestRepos()
	seedCoverageFixture(tr)
	svc := newCoverageServiceForTest(tr, nil)

	created, err := svc.Create(context.Background(), &dto.CreateCoverageRequest{
		AssignmentID: "a-alice",
		ShiftDate:    "2026-01-15",
	}, "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Respond(context.Background(), created.ID, &dto.RespondCoverageRequest{Accept: true}, "bob")
	if err != nil {
		t.Fatalf("first Respond: %v", err)
	}
	if got.Status != model.CoverageStatusAccepted {
		t.Errorf("status = %s, want accepted", got.Status)
	}
	if got.AcceptedBy == nil || *got.AcceptedBy != "bob" {
		t.Errorf("accepted_by = %v, want bob", got.AcceptedBy)
	}

	_, err = svc.Respond(context.Background(), created.ID, &dto.RespondCoverageRequest{Accept: true}, "carol")
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("second acceptor: expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestCoverageDeclineLeavesRequestOpen(t *testing.T) {
	tr := newTestRepos()
	seedCoverageFixture(tr)
	svc := newCoverageServiceForTest(tr, nil)

	created, _ := svc.Create(context.Background(), &dto.CreateCoverageRequest{
		AssignmentID: "a-alice",
		ShiftDate:    "2026-01-15",
	}, "alice")

	got, err := svc.Respond(context.Background(), created.ID, &dto.RespondCoverageRequest{Accept: false}, "bob")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if got.Status != model.CoverageStatusOpen {
		t.Errorf("status = %s, want open after decline", got.Status)
	}

	// Someone else can still accept.
	got, err = svc.Respond(context.Background(), created.ID, &dto.RespondCoverageRequest{Accept: true}, "carol")
	if err != nil {
		t.Fatalf("Respond after decline: %v", err)
	}
	if got.Status != model.CoverageStatusAccepted {
		t.Errorf("status = %s, want accepted", got.Status)
	}
}

func TestCoverageAcceptRejectedWhenResponderBusy(t *testing.T) {
	tr := newTestRepos()
	seedCoverageFixture(tr)
	// Bob is already working the requested day.
	addAssignment(tr, "a-bob", "bob", "s1", day("2026-01-10"), dayPtr("2026-01-20"))
	svc := newCoverageServiceForTest(tr, nil)

	created, _ := svc.Create(context.Background(), &dto.CreateCoverageRequest{
		AssignmentID: "a-alice",
		ShiftDate:    "2026-01-15",
	}, "alice")

	_, err := svc.Respond(context.Background(), created.ID, &dto.RespondCoverageRequest{Accept: true}, "bob")
	if !errors.Is(err, ErrCoverageConflict) {
		t.Fatalf("expected ErrCoverageConflict, got %v", err)
	}
}

func TestCoverageApprovalCreatesSingleDayAssignment(t *testing.T) {
	tr := newTestRepos()
	seedCoverageFixture(tr)
	notifier := &recordingNotifier{}
	svc := newCoverageServiceForTest(tr, notifier)

	created, _ := svc.Create(context.Background(), &dto.CreateCoverageRequest{
		AssignmentID: "a-alice",
		ShiftDate:    "2026-01-15",
	}, "alice")
	if _, err := svc.Respond(context.Background(), created.ID, &dto.RespondCoverageRequest{Accept: true}, "bob"); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	got, err := svc.Approve(context.Background(), created.ID, &dto.ApproveCoverageRequest{Approve: true}, "manager-1")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if got.Status != model.CoverageStatusApproved {
		t.Errorf("status = %s, want approved", got.Status)
	}

	// Bob got a one-day assignment on the covered date.
	var coverAssignment *model.ShiftAssignment
	for _, a := range tr.assignments.assignments {
		if a.EmployeeID == "bob" && a.IsActive {
			coverAssignment = a
		}
	}
	if coverAssignment == nil {
		t.Fatal("no assignment created for the acceptor")
	}
	if !coverAssignment.StartDate.Equal(day("2026-01-15")) {
		t.Errorf("cover start = %v", coverAssignment.StartDate)
	}
	if coverAssignment.EndDate == nil || !coverAssignment.EndDate.Equal(day("2026-01-15")) {
		t.Errorf("cover end = %v", coverAssignment.EndDate)
	}

	var requesterNotified, acceptorNotified bool
	for _, n := range notifier.sent {
		if n.Title == "Coverage approved" {
			switch n.EmployeeID {
			case "alice":
				requesterNotified = true
			case "bob":
				acceptorNotified = true
			}
		}
	}
	if !requesterNotified || !acceptorNotified {
		t.Error("both parties should be notified of approval")
	}
}

func TestCoverageManagerRejection(t *testing.T) {
	tr := newTestRepos()
	seedCoverageFixture(tr)
	svc := newCoverageServiceForTest(tr, nil)

	created, _ := svc.Create(context.Background(), &dto.CreateCoverageRequest{
		AssignmentID: "a-alice",
		ShiftDate:    "2026-01-15",
	}, "alice")
	svc.Respond(context.Background(), created.ID, &dto.RespondCoverageRequest{Accept: true}, "bob")

	got, err := svc.Approve(context.Background(), created.ID, &dto.ApproveCoverageRequest{Approve: false}, "manager-1")
	if err != nil {
		t.Fatalf("Approve(reject): %v", err)
	}
	if got.Status != model.CoverageStatusRejected {
		t.Errorf("status = %s, want rejected", got.Status)
	}

	// No assignment was created for Bob.
	for _, a := range tr.assignments.assignments {
		if a.EmployeeID == "bob" {
			t.Errorf("unexpected assignment for bob: %+v", a)
		}
	}
}

func TestCoverageCancelRules(t *testing.T) {
	tr := newTestRepos()
	seedCoverageFixture(tr)
	svc := newCoverageServiceForTest(tr, nil)

	created, _ := svc.Create(context.Background(), &dto.CreateCoverageRequest{
		AssignmentID: "a-alice",
		ShiftDate:    "2026-01-15",
	}, "alice")

	if err := svc.Cancel(context.Background(), created.ID, "bob"); !errors.Is(err, ErrNotRequester) {
		t.Fatalf("expected ErrNotRequester, got %v", err)
	}
	if err := svc.Cancel(context.Background(), created.ID, "alice"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if tr.coverage.requests[created.ID].Status != model.CoverageStatusCancelled {
		t.Errorf("status = %s, want cancelled", tr.coverage.requests[created.ID].Status)
	}
}

func TestCoverageLazyExpiry(t *testing.T) {
	tr := newTestRepos()
	seedCoverageFixture(tr)
	svc := newCoverageServiceForTest(tr, nil)

	created, _ := svc.Create(context.Background(), &dto.CreateCoverageRequest{
		AssignmentID: "a-alice",
		ShiftDate:    "2026-01-15",
	}, "alice")

	svc.now = func() time.Time { return time.Now().Add(100 * time.Hour) }

	_, err := svc.Respond(context.Background(), created.ID, &dto.RespondCoverageRequest{Accept: true}, "bob")
	if !errors.Is(err, ErrRequestExpired) {
		t.Fatalf("expected ErrRequestExpired, got %v", err)
	}
	if tr.coverage.requests[created.ID].Status != model.CoverageStatusExpired {
		t.Errorf("status = %s, want expired", tr.coverage.requests[created.ID].Status)
	}
}

// ── broadcast ──

func TestBroadcastFansOutToEligibleEmployees(t *testing.T) {
	tr := newTestRepos()
	seedCoverageFixture(tr)
	// Carol is busy on the shift date and must be excluded.
	addAssignment(tr, "a-carol", "carol", "s1", day("2026-01-10"), dayPtr("2026-01-20"))
	notifier := &recordingNotifier{}
	svc := newCoverageServiceForTest(tr, notifier)

	result, err := svc.Broadcast(context.Background(), &dto.BroadcastCoverageRequest{
		ShiftID:   "s1",
		BranchID:  "branch-1",
		ShiftDate: "2026-01-15",
		Reason:    "no-show",
	}, "manager-1")
	if err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if result.BroadcastID == "" {
		t.Fatal("expected broadcast id")
	}

	// Alice is busy on 2026-01-15 too, so only Bob is eligible.
	if len(result.Requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(result.Requests))
	}
	req := result.Requests[0]
	if !req.IsEmergency {
		t.Error("broadcast requests must be emergencies")
	}
	if req.BroadcastID == nil || *req.BroadcastID != result.BroadcastID {
		t.Errorf("broadcast id not propagated: %v", req.BroadcastID)
	}

	var urgent int
	for _, n := range notifier.sent {
		if n.Priority == PriorityUrgent {
			urgent++
		}
	}
	if urgent != 1 {
		t.Errorf("urgent notifications = %d, want 1", urgent)
	}
}

func TestBroadcastHonorsRecipientCap(t *testing.T) {
	tr := newTestRepos()
	addShift(tr, "s1", "Morning", "branch-1", nil)
	for _, id := range []string{"e1", "e2", "e3", "e4", "e5"} {
		addEmployee(tr, id, "branch-1")
	}
	cfg := testWorkflowConfig()
	cfg.BroadcastMaxRecipients = 3
	svc := NewCoverageService(cfg, tr.repo, NewLogNotifier(zap.NewNop()), zap.NewNop()).(*coverageService)

	result, err := svc.Broadcast(context.Background(), &dto.BroadcastCoverageRequest{
		ShiftID:   "s1",
		BranchID:  "branch-1",
		ShiftDate: "2026-01-15",
		Reason:    "no-show",
	}, "manager-1")
	if err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if len(result.Requests) != 3 {
		t.Errorf("requests = %d, want capped at 3", len(result.Requests))
	}
}

func TestBroadcastNoEligibleEmployees(t *testing.T) {
	tr := newTestRepos()
	addShift(tr, "s1", "Morning", "branch-1", nil)
	svc := newCoverageServiceForTest(tr, nil)

	_, err := svc.Broadcast(context.Background(), &dto.BroadcastCoverageRequest{
		ShiftID:   "s1",
		BranchID:  "branch-1",
		ShiftDate: "2026-01-15",
		Reason:    "no-show",
	}, "manager-1")
	if !errors.Is(err, ErrNoEligibleEmployees) {
		t.Fatalf("expected ErrNoEligibleEmployees, got %v", err)
	}
}

func TestBroadcastApprovalClosesSiblings(t *testing.T) {
	tr := newTestRepos()
	seedCoverageFixture(tr)
	addEmployee(tr, "dave", "branch-1")
	svc := newCoverageServiceForTest(tr, nil)

	result, err := svc.Broadcast(context.Background(), &dto.BroadcastCoverageRequest{
		ShiftID:   "s1",
		BranchID:  "branch-1",
		ShiftDate: "2026-02-15",
		Reason:    "no-show",
	}, "manager-1")
	if err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if len(result.Requests) < 2 {
		t.Fatalf("need at least 2 fanned-out requests, got %d", len(result.Requests))
	}

	first := result.Requests[0].ID
	if _, err := svc.Respond(context.Background(), first, &dto.RespondCoverageRequest{Accept: true}, "bob"); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if _, err := svc.Approve(context.Background(), first, &dto.ApproveCoverageRequest{Approve: true}, "manager-1"); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	for _, r := range result.Requests[1:] {
		status := tr.coverage.requests[r.ID].Status
		if status != model.CoverageStatusCancelled {
			t.Errorf("sibling %s status = %s, want cancelled", r.ID, status)
		}
	}
}
