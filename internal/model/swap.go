package model

import "time"

// Swap request statuses. Transitions are enforced in the service layer and
// guarded by a status-precondition update in the repository.
const (
	SwapStatusPending         = "pending"
	SwapStatusManagerApproval = "manager_approval"
	SwapStatusApproved        = "approved"
	SwapStatusRejected        = "rejected"
	SwapStatusCancelled       = "cancelled"
	SwapStatusExpired         = "expired"
)

// ShiftSwapRequest is one requester's offer to exchange an assignment.
// Target fields are filled in when a responder accepts.
type ShiftSwapRequest struct {
	SwapRequestID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"swap_request_id"`
	RequesterID           string     `gorm:"type:uuid;not null"                             json:"requester_id"`
	RequesterAssignmentID string     `gorm:"type:uuid;not null"                             json:"requester_assignment_id"`
	TargetEmployeeID      *string    `gorm:"type:uuid"                                      json:"target_employee_id,omitempty"`
	TargetAssignmentID    *string    `gorm:"type:uuid"                                      json:"target_assignment_id,omitempty"`
	IsEmergency           bool       `gorm:"not null;default:false"                         json:"is_emergency"`
	ExpiresAt             time.Time  `gorm:"not null"                                       json:"expires_at"`
	Status                string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	ApprovedBy            *string    `gorm:"type:uuid"                                      json:"approved_by,omitempty"`
	ApprovedAt            *time.Time `json:"approved_at,omitempty"`
	ApprovalNotes         string     `gorm:"type:varchar(500)"                              json:"approval_notes,omitempty"`
	VersionedModel

	Requester           *Employee        `gorm:"foreignKey:RequesterID;references:EmployeeID"               json:"requester,omitempty"`
	RequesterAssignment *ShiftAssignment `gorm:"foreignKey:RequesterAssignmentID;references:AssignmentID"   json:"requester_assignment,omitempty"`
	TargetEmployee      *Employee        `gorm:"foreignKey:TargetEmployeeID;references:EmployeeID"          json:"target_employee,omitempty"`
	TargetAssignment    *ShiftAssignment `gorm:"foreignKey:TargetAssignmentID;references:AssignmentID"      json:"target_assignment,omitempty"`
}

func (ShiftSwapRequest) TableName() string { return "shift_swap_requests" }

// ShiftSwapResponse records one employee's answer to a swap request.
// Rejections are kept as history; an acceptance advances the parent.
type ShiftSwapResponse struct {
	SwapResponseID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"swap_response_id"`
	SwapRequestID         string    `gorm:"type:uuid;not null"                             json:"swap_request_id"`
	ResponderID           string    `gorm:"type:uuid;not null"                             json:"responder_id"`
	ResponderAssignmentID string    `gorm:"type:uuid;not null"                             json:"responder_assignment_id"`
	Accepted              bool      `gorm:"not null"                                       json:"accepted"`
	Notes                 string    `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	CreatedAt             time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	Responder *Employee `gorm:"foreignKey:ResponderID;references:EmployeeID" json:"responder,omitempty"`
}

func (ShiftSwapResponse) TableName() string { return "shift_swap_responses" }
