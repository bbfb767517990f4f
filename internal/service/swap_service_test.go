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

func newSwapServiceForTest(tr *testRepos, notifier Notifier) *swapService {
	if notifier == nil {
		notifier = NewLogNotifier(zap.NewNop())
	}
	return NewSwapService(testWorkflowConfig(), tr.repo, notifier, zap.NewNop()).(*swapService)
}

// seedSwapFixture sets up two employees with disjoint assignments.
func seedSwapFixture(tr *testRepos) {
	addEmployee(tr, "alice", "branch-1")
	addEmployee(tr, "bob", "branch-1")
	addShift(tr, "s1", "Morning", "branch-1", nil)
	addShift(tr, "s2", "Evening", "branch-1", nil)
	addAssignment(tr, "a-alice", "alice", "s1", day("2026-01-01"), dayPtr("2026-01-31"))
	addAssignment(tr, "a-bob", "bob", "s2", day("2026-02-01"), dayPtr("2026-02-28"))
}

func TestSwapCreateRequiresOwnership(t *testing.T) {
	tr := newTestRepos()
	seedSwapFixture(tr)
	svc := newSwapServiceForTest(tr, nil)

	_, err := svc.Create(context.Background(), &dto.CreateSwapRequest{
		RequesterAssignmentID: "a-bob",
	}, "alice")
	if !errors.Is(err, ErrNotAssignmentOwner) {
		t.Fatalf("expected ErrNotAssignmentOwner, got %v", err)
	}
}

func TestSwapCreateSetsExpiryByUrgency(t *testing.T) {
	tr := newTestRepos()
	seedSwapFixture(tr)
	svc := newSwapServiceForTest(tr, nil)
	base := day("2026-01-05")
	svc.now = func() time.Time { return base }

	normal, err := svc.Create(context.Background(), &dto.CreateSwapRequest{
		RequesterAssignmentID: "a-alice",
	}, "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	stored := tr.swaps.swaps[normal.ID]
	if !stored.ExpiresAt.Equal(base.Add(168 * time.Hour)) {
		t.Errorf("normal expiry = %v", stored.ExpiresAt)
	}

	emergency, err := svc.Create(context.Background(), &dto.CreateSwapRequest{
		RequesterAssignmentID: "a-alice",
		IsEmergency:           true,
	}, "alice")
	if err != nil {
		t.Fatalf("Create emergency: %v", err)
	}
	stored = tr.swaps.swaps[emergency.ID]
	if !stored.ExpiresAt.Equal(base.Add(24 * time.Hour)) {
		t.Errorf("emergency expiry = %v", stored.ExpiresAt)
	}
}

func TestSwapAcceptAdvancesToManagerApproval(t *testing.T) {
	tr := newTestRepos()
	seedSwapFixture(tr)
	notifier := &recordingNotifier{}
	svc := newSwapServiceForTest(tr, notifier)

	created, err := svc.Create(context.Background(), &dto.CreateSwapRequest{
		RequesterAssignmentID: "a-alice",
	}, "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Respond(context.Background(), created.ID, &dto.RespondSwapRequest{
		ResponderAssignmentID: "a-bob",
		Accept:                true,
	}, "bob")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if got.Status != model.SwapStatusManagerApproval {
		t.Errorf("status = %s, want manager_approval", got.Status)
	}
	if got.TargetAssignmentID == nil || *got.TargetAssignmentID != "a-bob" {
		t.Errorf("target assignment = %v", got.TargetAssignmentID)
	}
	if len(got.Responses) != 1 || !got.Responses[0].Accepted {
		t.Errorf("responses = %+v", got.Responses)
	}

	var notified bool
	for _, n := range notifier.sent {
		if n.EmployeeID == "alice" && n.Title == "Swap accepted" {
			notified = true
		}
	}
	if !notified {
		t.Error("requester was not notified of acceptance")
	}
}

func TestSwapRejectionKeepsRequestPending(t *testing.T) {
	tr := newTestRepos()
	seedSwapFixture(tr)
	svc := newSwapServiceForTest(tr, nil)

	created, _ := svc.Create(context.Background(), &dto.CreateSwapRequest{
		RequesterAssignmentID: "a-alice",
	}, "alice")

	got, err := svc.Respond(context.Background(), created.ID, &dto.RespondSwapRequest{
		ResponderAssignmentID: "a-bob",
		Accept:                false,
		Notes:                 "can't make it",
	}, "bob")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if got.Status != model.SwapStatusPending {
		t.Errorf("status = %s, want pending after rejection", got.Status)
	}
	if len(got.Responses) != 1 || got.Responses[0].Accepted {
		t.Errorf("responses = %+v", got.Responses)
	}
}

func TestSwapSelfResponseRejected(t *testing.T) {
	tr := newTestRepos()
	seedSwapFixture(tr)
	svc := newSwapServiceForTest(tr, nil)

	created, _ := svc.Create(context.Background(), &dto.CreateSwapRequest{
		RequesterAssignmentID: "a-alice",
	}, "alice")

	_, err := svc.Respond(context.Background(), created.ID, &dto.RespondSwapRequest{
		ResponderAssignmentID: "a-alice",
		Accept:                true,
	}, "alice")
	if !errors.Is(err, ErrSelfResponse) {
		t.Fatalf("expected ErrSelfResponse, got %v", err)
	}
}

func TestSwapTargetedRequestBlocksOthers(t *testing.T) {
	tr := newTestRepos()
	seedSwapFixture(tr)
	addEmployee(tr, "carol", "branch-1")
	addAssignment(tr, "a-carol", "carol", "s1", day("2026-03-01"), dayPtr("2026-03-31"))
	svc := newSwapServiceForTest(tr, nil)

	bob := "bob"
	created, _ := svc.Create(context.Background(), &dto.CreateSwapRequest{
		RequesterAssignmentID: "a-alice",
		TargetEmployeeID:      &bob,
	}, "alice")

	_, err := svc.Respond(context.Background(), created.ID, &dto.RespondSwapRequest{
		ResponderAssignmentID: "a-carol",
		Accept:                true,
	}, "carol")
	if !errors.Is(err, ErrNotTargetedResponder) {
		t.Fatalf("expected ErrNotTargetedResponder, got %v", err)
	}
}

func TestSwapApprovalExchangesAssignments(t *testing.T) {
	tr := newTestRepos()
	seedSwapFixture(tr)
	svc := newSwapServiceForTest(tr, nil)

	created, _ := svc.Create(context.Background(), &dto.CreateSwapRequest{
		RequesterAssignmentID: "a-alice",
	}, "alice")
	if _, err := svc.Respond(context.Background(), created.ID, &dto.RespondSwapRequest{
		ResponderAssignmentID: "a-bob",
		Accept:                true,
	}, "bob"); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	got, err := svc.Approve(context.Background(), created.ID, &dto.ApproveSwapRequest{
		Approve: true,
	}, "manager-1")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if got.Status != model.SwapStatusApproved {
		t.Errorf("status = %s, want approved", got.Status)
	}

	// The employee columns must have traded places.
	if tr.assignments.assignments["a-alice"].EmployeeID != "bob" {
		t.Errorf("a-alice now belongs to %s, want bob", tr.assignments.assignments["a-alice"].EmployeeID)
	}
	if tr.assignments.assignments["a-bob"].EmployeeID != "alice" {
		t.Errorf("a-bob now belongs to %s, want alice", tr.assignments.assignments["a-bob"].EmployeeID)
	}
}

func TestSwapApprovalNotAppliedWhenExchangeFails(t *testing.T) {
	tr := newTestRepos()
	seedSwapFixture(tr)
	svc := newSwapServiceForTest(tr, nil)

	created, _ := svc.Create(context.Background(), &dto.CreateSwapRequest{
		RequesterAssignmentID: "a-alice",
	}, "alice")
	if _, err := svc.Respond(context.Background(), created.ID, &dto.RespondSwapRequest{
		ResponderAssignmentID: "a-bob",
		Accept:                true,
	}, "bob"); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	tr.swaps.exchangeErr = errors.New("connection reset")
	_, err := svc.Approve(context.Background(), created.ID, &dto.ApproveSwapRequest{Approve: true}, "manager-1")
	if err == nil {
		t.Fatal("expected Approve to fail")
	}

	// The failed transaction must leave both the status and the
	// assignments untouched.
	if tr.swaps.swaps[created.ID].Status != model.SwapStatusManagerApproval {
		t.Errorf("status = %s, want manager_approval", tr.swaps.swaps[created.ID].Status)
	}
	if tr.assignments.assignments["a-alice"].EmployeeID != "alice" {
		t.Error("a-alice changed hands despite the failed approval")
	}
	if tr.assignments.assignments["a-bob"].EmployeeID != "bob" {
		t.Error("a-bob changed hands despite the failed approval")
	}
}

func TestSwapApprovalRejectedWhenExchangeWouldConflict(t *testing.T) {
	tr := newTestRepos()
	seedSwapFixture(tr)
	// Alice has a second assignment covering Bob's dates, so taking Bob's
	// shift would double-book her.
	addAssignment(tr, "a-alice-2", "alice", "s2", day("2026-02-01"), dayPtr("2026-02-28"))
	svc := newSwapServiceForTest(tr, nil)

	created, _ := svc.Create(context.Background(), &dto.CreateSwapRequest{
		RequesterAssignmentID: "a-alice",
	}, "alice")
	if _, err := svc.Respond(context.Background(), created.ID, &dto.RespondSwapRequest{
		ResponderAssignmentID: "a-bob",
		Accept:                true,
	}, "bob"); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	_, err := svc.Approve(context.Background(), created.ID, &dto.ApproveSwapRequest{Approve: true}, "manager-1")
	if !errors.Is(err, ErrSwapWouldConflict) {
		t.Fatalf("expected ErrSwapWouldConflict, got %v", err)
	}
	// Nothing moved.
	if tr.assignments.assignments["a-alice"].EmployeeID != "alice" {
		t.Error("assignments were exchanged despite the conflict")
	}
}

func TestSwapManagerRejection(t *testing.T) {
	tr := newTestRepos()
	seedSwapFixture(tr)
	svc := newSwapServiceForTest(tr, nil)

	created, _ := svc.Create(context.Background(), &dto.CreateSwapRequest{
		RequesterAssignmentID: "a-alice",
	}, "alice")
	svc.Respond(context.Background(), created.ID, &dto.RespondSwapRequest{
		ResponderAssignmentID: "a-bob",
		Accept:                true,
	}, "bob")

	got, err := svc.Approve(context.Background(), created.ID, &dto.ApproveSwapRequest{
		Approve: false,
		Notes:   "coverage too thin",
	}, "manager-1")
	if err != nil {
		t.Fatalf("Approve(reject): %v", err)
	}
	if got.Status != model.SwapStatusRejected {
		t.Errorf("status = %s, want rejected", got.Status)
	}
	if got.ApprovalNotes != "coverage too thin" {
		t.Errorf("approval notes = %q", got.ApprovalNotes)
	}
	if tr.assignments.assignments["a-alice"].EmployeeID != "alice" {
		t.Error("assignments were exchanged despite rejection")
	}
}

func TestSwapApproveRequiresManagerApprovalState(t *testing.T) {
	tr := newTestRepos()
	seedSwapFixture(tr)
	svc := newSwapServiceForTest(tr, nil)

	created, _ := svc.Create(context.Background(), &dto.CreateSwapRequest{
		RequesterAssignmentID: "a-alice",
	}, "alice")

	_, err := svc.Approve(context.Background(), created.ID, &dto.ApproveSwapRequest{Approve: true}, "manager-1")
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition for pending request, got %v", err)
	}
}

func TestSwapCancelOnlyByRequester(t *testing.T) {
	tr := newTestRepos()
	seedSwapFixture(tr)
	svc := newSwapServiceForTest(tr, nil)

	created, _ := svc.Create(context.Background(), &dto.CreateSwapRequest{
		RequesterAssignmentID: "a-alice",
	}, "alice")

	if err := svc.Cancel(context.Background(), created.ID, "bob"); !errors.Is(err, ErrNotRequester) {
		t.Fatalf("expected ErrNotRequester, got %v", err)
	}
	if err := svc.Cancel(context.Background(), created.ID, "alice"); err != nil {
		t.Fatalf("Cancel by requester: %v", err)
	}
	if tr.swaps.swaps[created.ID].Status != model.SwapStatusCancelled {
		t.Errorf("status = %s, want cancelled", tr.swaps.swaps[created.ID].Status)
	}
}

func TestSwapLazyExpiry(t *testing.T) {
	tr := newTestRepos()
	seedSwapFixture(tr)
	svc := newSwapServiceForTest(tr, nil)

	created, _ := svc.Create(context.Background(), &dto.CreateSwapRequest{
		RequesterAssignmentID: "a-alice",
	}, "alice")

	// Move the clock past the deadline.
	svc.now = func() time.Time { return time.Now().Add(200 * time.Hour) }

	_, err := svc.Respond(context.Background(), created.ID, &dto.RespondSwapRequest{
		ResponderAssignmentID: "a-bob",
		Accept:                true,
	}, "bob")
	if !errors.Is(err, ErrRequestExpired) {
		t.Fatalf("expected ErrRequestExpired, got %v", err)
	}
	if tr.swaps.swaps[created.ID].Status != model.SwapStatusExpired {
		t.Errorf("status = %s, want expired", tr.swaps.swaps[created.ID].Status)
	}
}

func TestSwapTerminalStatesAreImmutable(t *testing.T) {
	tr := newTestRepos()
	seedSwapFixture(tr)
	svc := newSwapServiceForTest(tr, nil)

	created, _ := svc.Create(context.Background(), &dto.CreateSwapRequest{
		RequesterAssignmentID: "a-alice",
	}, "alice")
	if err := svc.Cancel(context.Background(), created.ID, "alice"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if _, err := svc.Respond(context.Background(), created.ID, &dto.RespondSwapRequest{
		ResponderAssignmentID: "a-bob",
		Accept:                true,
	}, "bob"); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("Respond after cancel: expected ErrInvalidStateTransition, got %v", err)
	}
	if err := svc.Cancel(context.Background(), created.ID, "alice"); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("double Cancel: expected ErrInvalidStateTransition, got %v", err)
	}
}
