package model

import "time"

// Coverage request statuses.
const (
	CoverageStatusOpen      = "open"
	CoverageStatusAccepted  = "accepted"
	CoverageStatusApproved  = "approved"
	CoverageStatusRejected  = "rejected"
	CoverageStatusCancelled = "cancelled"
	CoverageStatusExpired   = "expired"
)

// ShiftCoverageRequest asks any eligible employee to take over a single day
// of an assignment. BroadcastID groups the requests fanned out by one
// emergency broadcast.
type ShiftCoverageRequest struct {
	CoverageRequestID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"coverage_request_id"`
	RequesterID       string     `gorm:"type:uuid;not null"                             json:"requester_id"`
	AssignmentID      string     `gorm:"type:uuid;not null"                             json:"assignment_id"`
	ShiftDate         time.Time  `gorm:"type:date;not null"                             json:"shift_date"`
	Reason            string     `gorm:"type:varchar(500)"                              json:"reason,omitempty"`
	IsEmergency       bool       `gorm:"not null;default:false"                         json:"is_emergency"`
	ExpiresAt         time.Time  `gorm:"not null"                                       json:"expires_at"`
	BroadcastID       *string    `gorm:"type:uuid"                                      json:"broadcast_id,omitempty"`
	Status            string     `gorm:"type:varchar(20);not null;default:'open'"       json:"status"`
	AcceptedBy        *string    `gorm:"type:uuid"                                      json:"accepted_by,omitempty"`
	AcceptedAt        *time.Time `json:"accepted_at,omitempty"`
	AcceptanceNotes   string     `gorm:"type:varchar(500)"                              json:"acceptance_notes,omitempty"`
	ApprovedBy        *string    `gorm:"type:uuid"                                      json:"approved_by,omitempty"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	ApprovalNotes     string     `gorm:"type:varchar(500)"                              json:"approval_notes,omitempty"`
	VersionedModel

	Requester  *Employee        `gorm:"foreignKey:RequesterID;references:EmployeeID"      json:"requester,omitempty"`
	Assignment *ShiftAssignment `gorm:"foreignKey:AssignmentID;references:AssignmentID"   json:"assignment,omitempty"`
	Acceptor   *Employee        `gorm:"foreignKey:AcceptedBy;references:EmployeeID"       json:"acceptor,omitempty"`
}

func (ShiftCoverageRequest) TableName() string { return "shift_coverage_requests" }

// ShiftCoverageResponse records one employee's answer to a coverage request.
type ShiftCoverageResponse struct {
	CoverageResponseID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"coverage_response_id"`
	CoverageRequestID  string    `gorm:"type:uuid;not null"                             json:"coverage_request_id"`
	ResponderID        string    `gorm:"type:uuid;not null"                             json:"responder_id"`
	Accepted           bool      `gorm:"not null"                                       json:"accepted"`
	Notes              string    `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	CreatedAt          time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	Responder *Employee `gorm:"foreignKey:ResponderID;references:EmployeeID" json:"responder,omitempty"`
}

func (ShiftCoverageResponse) TableName() string { return "shift_coverage_responses" }
