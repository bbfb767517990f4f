package dto

// CreateCoverageRequest asks for one day of the caller's assignment to be
// covered by someone else.
type CreateCoverageRequest struct {
	AssignmentID string `json:"assignment_id" binding:"required,uuid"`
	ShiftDate    string `json:"shift_date"    binding:"required"` // "2006-01-02"
	Reason       string `json:"reason"        binding:"omitempty,max=500"`
	IsEmergency  bool   `json:"is_emergency"`
}

// RespondCoverageRequest answers an open coverage request.
type RespondCoverageRequest struct {
	Accept bool   `json:"accept"`
	Notes  string `json:"notes" binding:"omitempty,max=500"`
}

// ApproveCoverageRequest records the manager decision.
type ApproveCoverageRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes" binding:"omitempty,max=500"`
}

// BroadcastCoverageRequest fans an urgent unfilled shift out to every
// eligible employee in a branch.
type BroadcastCoverageRequest struct {
	ShiftID           string   `json:"shift_id"            binding:"required,uuid"`
	BranchID          string   `json:"branch_id"           binding:"required,uuid"`
	ShiftDate         string   `json:"shift_date"          binding:"required"`
	Reason            string   `json:"reason"              binding:"required,max=500"`
	TargetEmployeeIDs []string `json:"target_employee_ids" binding:"omitempty,dive,uuid"`
}

// BroadcastCoverageResponse lists the coverage requests created by one
// broadcast.
type BroadcastCoverageResponse struct {
	BroadcastID string                    `json:"broadcast_id"`
	Requests    []CoverageRequestResponse `json:"requests"`
}

// CoverageRequestResponse is the full coverage request representation.
type CoverageRequestResponse struct {
	ID              string         `json:"id"`
	Requester       *EmployeeBrief `json:"requester,omitempty"`
	AssignmentID    string         `json:"assignment_id"`
	ShiftDate       string         `json:"shift_date"`
	Reason          string         `json:"reason,omitempty"`
	IsEmergency     bool           `json:"is_emergency"`
	ExpiresAt       string         `json:"expires_at"`
	BroadcastID     *string        `json:"broadcast_id,omitempty"`
	Status          string         `json:"status"`
	AcceptedBy      *string        `json:"accepted_by,omitempty"`
	AcceptedAt      *string        `json:"accepted_at,omitempty"`
	AcceptanceNotes string         `json:"acceptance_notes,omitempty"`
	ApprovedBy      *string        `json:"approved_by,omitempty"`
	ApprovedAt      *string        `json:"approved_at,omitempty"`
	ApprovalNotes   string         `json:"approval_notes,omitempty"`
	CreatedAt       string         `json:"created_at"`
}

// CoverageListRequest pages through the caller's coverage requests.
type CoverageListRequest struct {
	PaginationRequest
}
