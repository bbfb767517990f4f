package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"shiftdesk/backend/config"
	"shiftdesk/backend/internal/model"
	"shiftdesk/backend/internal/repository"
	pkgerrors "shiftdesk/backend/pkg/errors"
)

// In-memory repository doubles. The Transition/Update methods emulate the
// status and version preconditions of the real implementations so the
// concurrency paths can be exercised without a database.

// ── employees ──

type mockEmployeeRepo struct {
	employees map[string]*model.Employee
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: map[string]*model.Employee{}}
}

func (m *mockEmployeeRepo) add(emp *model.Employee) *model.Employee {
	m.employees[emp.EmployeeID] = emp
	return emp
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id string) (*model.Employee, error) {
	emp, ok := m.employees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *emp
	return &cp, nil
}

func (m *mockEmployeeRepo) ListActiveByBranch(_ context.Context, branchID string) ([]model.Employee, error) {
	var out []model.Employee
	for _, emp := range m.employees {
		if emp.BranchID == branchID && emp.IsActive {
			out = append(out, *emp)
		}
	}
	return out, nil
}

// ── shifts ──

type mockShiftRepo struct {
	shifts map[string]*model.Shift
	nextID int
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{shifts: map[string]*model.Shift{}}
}

func (m *mockShiftRepo) Create(_ context.Context, shift *model.Shift) error {
	if shift.ShiftID == "" {
		m.nextID++
		shift.ShiftID = fmt.Sprintf("shift-%d", m.nextID)
	}
	if shift.Version == 0 {
		shift.Version = 1
	}
	shift.CreatedAt = time.Now()
	cp := *shift
	m.shifts[shift.ShiftID] = &cp
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	shift, ok := m.shifts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *shift
	return &cp, nil
}

func (m *mockShiftRepo) ListByBranch(_ context.Context, branchID string) ([]model.Shift, error) {
	var out []model.Shift
	for _, shift := range m.shifts {
		if shift.BranchID == branchID {
			out = append(out, *shift)
		}
	}
	return out, nil
}

func (m *mockShiftRepo) CountByOrganizationAndName(_ context.Context, organizationID, name, excludeID string) (int64, error) {
	var count int64
	for _, shift := range m.shifts {
		if shift.OrganizationID == organizationID && shift.Name == name && shift.ShiftID != excludeID {
			count++
		}
	}
	return count, nil
}

func (m *mockShiftRepo) Update(_ context.Context, shift *model.Shift) error {
	stored, ok := m.shifts[shift.ShiftID]
	if !ok || stored.Version != shift.Version {
		return pkgerrors.ErrOptimisticLock
	}
	shift.Version++
	cp := *shift
	m.shifts[shift.ShiftID] = &cp
	return nil
}

func (m *mockShiftRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.shifts, id)
	return nil
}

// ── assignments ──

type mockAssignmentRepo struct {
	assignments map[string]*model.ShiftAssignment
	nextID      int
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{assignments: map[string]*model.ShiftAssignment{}}
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.ShiftAssignment) error {
	if a.AssignmentID == "" {
		m.nextID++
		a.AssignmentID = fmt.Sprintf("assignment-%d", m.nextID)
	}
	if a.Version == 0 {
		a.Version = 1
	}
	a.CreatedAt = time.Now()
	cp := *a
	m.assignments[a.AssignmentID] = &cp
	return nil
}

func (m *mockAssignmentRepo) BatchCreate(ctx context.Context, assignments []model.ShiftAssignment) error {
	for i := range assignments {
		if err := m.Create(ctx, &assignments[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.ShiftAssignment, error) {
	a, ok := m.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAssignmentRepo) ListActiveByEmployee(_ context.Context, employeeID string) ([]model.ShiftAssignment, error) {
	var out []model.ShiftAssignment
	for _, a := range m.assignments {
		if a.EmployeeID == employeeID && a.IsActive {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAssignmentRepo) ListActiveByEmployees(_ context.Context, employeeIDs []string) ([]model.ShiftAssignment, error) {
	set := make(map[string]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		set[id] = true
	}
	var out []model.ShiftAssignment
	for _, a := range m.assignments {
		if set[a.EmployeeID] && a.IsActive {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAssignmentRepo) ListCreatedBetween(_ context.Context, start, end time.Time) ([]model.ShiftAssignment, error) {
	var out []model.ShiftAssignment
	for _, a := range m.assignments {
		if !a.CreatedAt.Before(start) && a.CreatedAt.Before(end) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, a *model.ShiftAssignment) error {
	stored, ok := m.assignments[a.AssignmentID]
	if !ok || stored.Version != a.Version {
		return pkgerrors.ErrOptimisticLock
	}
	a.Version++
	cp := *a
	m.assignments[a.AssignmentID] = &cp
	return nil
}

// ── swaps ──

type mockSwapRepo struct {
	swaps       map[string]*model.ShiftSwapRequest
	responses   []model.ShiftSwapResponse
	assignments *mockAssignmentRepo
	exchangeErr error
	nextID      int
}

func newMockSwapRepo(assignments *mockAssignmentRepo) *mockSwapRepo {
	return &mockSwapRepo{
		swaps:       map[string]*model.ShiftSwapRequest{},
		assignments: assignments,
	}
}

func (m *mockSwapRepo) Create(_ context.Context, req *model.ShiftSwapRequest) error {
	if req.SwapRequestID == "" {
		m.nextID++
		req.SwapRequestID = fmt.Sprintf("swap-%d", m.nextID)
	}
	req.CreatedAt = time.Now()
	cp := *req
	m.swaps[req.SwapRequestID] = &cp
	return nil
}

func (m *mockSwapRepo) GetByID(_ context.Context, id string) (*model.ShiftSwapRequest, error) {
	req, ok := m.swaps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *req
	return &cp, nil
}

func (m *mockSwapRepo) ListByRequester(_ context.Context, requesterID string, offset, limit int) ([]model.ShiftSwapRequest, int64, error) {
	var all []model.ShiftSwapRequest
	for _, req := range m.swaps {
		if req.RequesterID == requesterID {
			all = append(all, *req)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockSwapRepo) ListCreatedBetween(_ context.Context, start, end time.Time) ([]model.ShiftSwapRequest, error) {
	var out []model.ShiftSwapRequest
	for _, req := range m.swaps {
		if !req.CreatedAt.Before(start) && req.CreatedAt.Before(end) {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *mockSwapRepo) TransitionStatus(_ context.Context, id, fromStatus, toStatus string, updates map[string]interface{}) error {
	req, ok := m.swaps[id]
	if !ok || req.Status != fromStatus {
		return pkgerrors.ErrOptimisticLock
	}
	req.Status = toStatus
	for key, value := range updates {
		switch key {
		case "target_employee_id":
			v := value.(string)
			req.TargetEmployeeID = &v
		case "target_assignment_id":
			v := value.(string)
			req.TargetAssignmentID = &v
		case "approved_by":
			v := value.(string)
			req.ApprovedBy = &v
		case "approved_at":
			v := value.(time.Time)
			req.ApprovedAt = &v
		case "approval_notes":
			req.ApprovalNotes = value.(string)
		case "updated_by":
			v := value.(string)
			req.UpdatedBy = &v
		}
	}
	req.Version++
	return nil
}

// ApproveAndExchange checks every precondition before touching anything,
// emulating the all-or-nothing transaction of the real implementation.
func (m *mockSwapRepo) ApproveAndExchange(ctx context.Context, id, fromStatus, toStatus string, updates map[string]interface{}, firstID, secondID, updatedBy string) error {
	if m.exchangeErr != nil {
		return m.exchangeErr
	}
	req, ok := m.swaps[id]
	if !ok || req.Status != fromStatus {
		return pkgerrors.ErrOptimisticLock
	}
	first, ok := m.assignments.assignments[firstID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	second, ok := m.assignments.assignments[secondID]
	if !ok {
		return gorm.ErrRecordNotFound
	}

	if err := m.TransitionStatus(ctx, id, fromStatus, toStatus, updates); err != nil {
		return err
	}
	first.EmployeeID, second.EmployeeID = second.EmployeeID, first.EmployeeID
	first.UpdatedBy = &updatedBy
	second.UpdatedBy = &updatedBy
	first.Version++
	second.Version++
	return nil
}

func (m *mockSwapRepo) CreateResponse(_ context.Context, resp *model.ShiftSwapResponse) error {
	if resp.SwapResponseID == "" {
		resp.SwapResponseID = fmt.Sprintf("swap-response-%d", len(m.responses)+1)
	}
	resp.CreatedAt = time.Now()
	m.responses = append(m.responses, *resp)
	return nil
}

func (m *mockSwapRepo) ListResponses(_ context.Context, swapRequestID string) ([]model.ShiftSwapResponse, error) {
	var out []model.ShiftSwapResponse
	for _, resp := range m.responses {
		if resp.SwapRequestID == swapRequestID {
			out = append(out, resp)
		}
	}
	return out, nil
}

// ── coverage ──

type mockCoverageRepo struct {
	requests  map[string]*model.ShiftCoverageRequest
	responses []model.ShiftCoverageResponse
	nextID    int
}

func newMockCoverageRepo() *mockCoverageRepo {
	return &mockCoverageRepo{requests: map[string]*model.ShiftCoverageRequest{}}
}

func (m *mockCoverageRepo) Create(_ context.Context, req *model.ShiftCoverageRequest) error {
	if req.CoverageRequestID == "" {
		m.nextID++
		req.CoverageRequestID = fmt.Sprintf("coverage-%d", m.nextID)
	}
	req.CreatedAt = time.Now()
	cp := *req
	m.requests[req.CoverageRequestID] = &cp
	return nil
}

func (m *mockCoverageRepo) BatchCreate(ctx context.Context, reqs []model.ShiftCoverageRequest) error {
	for i := range reqs {
		if err := m.Create(ctx, &reqs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockCoverageRepo) GetByID(_ context.Context, id string) (*model.ShiftCoverageRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *req
	return &cp, nil
}

func (m *mockCoverageRepo) ListByRequester(_ context.Context, requesterID string, offset, limit int) ([]model.ShiftCoverageRequest, int64, error) {
	var all []model.ShiftCoverageRequest
	for _, req := range m.requests {
		if req.RequesterID == requesterID {
			all = append(all, *req)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockCoverageRepo) ListSiblings(_ context.Context, broadcastID, excludeID string) ([]model.ShiftCoverageRequest, error) {
	var out []model.ShiftCoverageRequest
	for _, req := range m.requests {
		if req.BroadcastID != nil && *req.BroadcastID == broadcastID && req.CoverageRequestID != excludeID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *mockCoverageRepo) ListCreatedBetween(_ context.Context, start, end time.Time) ([]model.ShiftCoverageRequest, error) {
	var out []model.ShiftCoverageRequest
	for _, req := range m.requests {
		if !req.CreatedAt.Before(start) && req.CreatedAt.Before(end) {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (m *mockCoverageRepo) TransitionStatus(_ context.Context, id, fromStatus, toStatus string, updates map[string]interface{}) error {
	req, ok := m.requests[id]
	if !ok || req.Status != fromStatus {
		return pkgerrors.ErrOptimisticLock
	}
	req.Status = toStatus
	for key, value := range updates {
		switch key {
		case "accepted_by":
			v := value.(string)
			req.AcceptedBy = &v
		case "accepted_at":
			v := value.(time.Time)
			req.AcceptedAt = &v
		case "acceptance_notes":
			req.AcceptanceNotes = value.(string)
		case "approved_by":
			v := value.(string)
			req.ApprovedBy = &v
		case "approved_at":
			v := value.(time.Time)
			req.ApprovedAt = &v
		case "approval_notes":
			req.ApprovalNotes = value.(string)
		case "updated_by":
			v := value.(string)
			req.UpdatedBy = &v
		}
	}
	req.Version++
	return nil
}

func (m *mockCoverageRepo) CreateResponse(_ context.Context, resp *model.ShiftCoverageResponse) error {
	if resp.CoverageResponseID == "" {
		resp.CoverageResponseID = fmt.Sprintf("coverage-response-%d", len(m.responses)+1)
	}
	resp.CreatedAt = time.Now()
	m.responses = append(m.responses, *resp)
	return nil
}

func (m *mockCoverageRepo) ListResponses(_ context.Context, coverageRequestID string) ([]model.ShiftCoverageResponse, error) {
	var out []model.ShiftCoverageResponse
	for _, resp := range m.responses {
		if resp.CoverageRequestID == coverageRequestID {
			out = append(out, resp)
		}
	}
	return out, nil
}

// ── fixture wiring ──

type testRepos struct {
	employees   *mockEmployeeRepo
	shifts      *mockShiftRepo
	assignments *mockAssignmentRepo
	swaps       *mockSwapRepo
	coverage    *mockCoverageRepo
	repo        *repository.Repository
}

func newTestRepos() *testRepos {
	assignments := newMockAssignmentRepo()
	tr := &testRepos{
		employees:   newMockEmployeeRepo(),
		shifts:      newMockShiftRepo(),
		assignments: assignments,
		swaps:       newMockSwapRepo(assignments),
		coverage:    newMockCoverageRepo(),
	}
	tr.repo = &repository.Repository{
		Employee:   tr.employees,
		Shift:      tr.shifts,
		Assignment: tr.assignments,
		Swap:       tr.swaps,
		Coverage:   tr.coverage,
	}
	return tr
}

func testWorkflowConfig() *config.WorkflowConfig {
	return &config.WorkflowConfig{
		SwapExpiry:             168 * time.Hour,
		CoverageExpiry:         72 * time.Hour,
		EmergencyExpiry:        24 * time.Hour,
		BroadcastMaxRecipients: 200,
		GeneratorMaxWeeks:      52,
	}
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	sent []sentNotification
}

type sentNotification struct {
	EmployeeID string
	Title      string
	Priority   string
}

func (n *recordingNotifier) Notify(_ context.Context, employeeID, title, _, priority string) {
	n.sent = append(n.sent, sentNotification{
		EmployeeID: employeeID,
		Title:      title,
		Priority:   priority,
	})
}

// ── shared fixtures ──

func addEmployee(tr *testRepos, id, branchID string) *model.Employee {
	return tr.employees.add(&model.Employee{
		EmployeeID: id,
		Name:       "Employee " + id,
		Email:      id + "@example.com",
		Role:       "employee",
		BranchID:   branchID,
		IsActive:   true,
	})
}

func addShift(tr *testRepos, id, name, branchID string, workingDays []int) *model.Shift {
	shift := &model.Shift{
		ShiftID:        id,
		Name:           name,
		ShiftType:      model.ShiftTypeFixed,
		StartTime:      "09:00",
		EndTime:        "17:00",
		WorkingDays:    model.IntArray(workingDays),
		OrganizationID: "org-1",
		BranchID:       branchID,
		IsActive:       true,
	}
	shift.Version = 1
	tr.shifts.shifts[id] = shift
	return shift
}

func addAssignment(tr *testRepos, id, employeeID, shiftID string, start time.Time, end *time.Time) *model.ShiftAssignment {
	a := &model.ShiftAssignment{
		AssignmentID: id,
		EmployeeID:   employeeID,
		ShiftID:      shiftID,
		StartDate:    start,
		EndDate:      end,
		IsActive:     true,
	}
	a.Version = 1
	a.CreatedAt = time.Now()
	tr.assignments.assignments[id] = a
	return a
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}
