package dto

// CreateSwapRequest opens a swap negotiation for the caller's assignment.
// Target fields are optional: a swap may be offered to a specific colleague
// or left open for anyone to answer.
type CreateSwapRequest struct {
	RequesterAssignmentID string  `json:"requester_assignment_id" binding:"required,uuid"`
	TargetEmployeeID      *string `json:"target_employee_id"      binding:"omitempty,uuid"`
	TargetAssignmentID    *string `json:"target_assignment_id"    binding:"omitempty,uuid"`
	IsEmergency           bool    `json:"is_emergency"`
}

// RespondSwapRequest answers a pending swap request.
type RespondSwapRequest struct {
	ResponderAssignmentID string `json:"responder_assignment_id" binding:"required,uuid"`
	Accept                bool   `json:"accept"`
	Notes                 string `json:"notes" binding:"omitempty,max=500"`
}

// ApproveSwapRequest records the manager decision.
type ApproveSwapRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes" binding:"omitempty,max=500"`
}

// SwapRequestResponse is the full swap request representation.
type SwapRequestResponse struct {
	ID                    string              `json:"id"`
	Requester             *EmployeeBrief      `json:"requester,omitempty"`
	RequesterAssignmentID string              `json:"requester_assignment_id"`
	TargetEmployee        *EmployeeBrief      `json:"target_employee,omitempty"`
	TargetAssignmentID    *string             `json:"target_assignment_id,omitempty"`
	IsEmergency           bool                `json:"is_emergency"`
	ExpiresAt             string              `json:"expires_at"`
	Status                string              `json:"status"`
	ApprovedBy            *string             `json:"approved_by,omitempty"`
	ApprovedAt            *string             `json:"approved_at,omitempty"`
	ApprovalNotes         string              `json:"approval_notes,omitempty"`
	Responses             []SwapResponseBrief `json:"responses,omitempty"`
	CreatedAt             string              `json:"created_at"`
}

// SwapResponseBrief is one recorded answer to a swap request.
type SwapResponseBrief struct {
	ID                    string `json:"id"`
	ResponderID           string `json:"responder_id"`
	ResponderAssignmentID string `json:"responder_assignment_id"`
	Accepted              bool   `json:"accepted"`
	Notes                 string `json:"notes,omitempty"`
	CreatedAt             string `json:"created_at"`
}

// SwapListRequest pages through the caller's swap requests.
type SwapListRequest struct {
	PaginationRequest
}
