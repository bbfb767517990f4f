package dto

// AssignEmployeeRequest binds one employee to a shift over a date range.
// EndDate empty means open-ended.
type AssignEmployeeRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	ShiftID    string `json:"shift_id"    binding:"required,uuid"`
	StartDate  string `json:"start_date"  binding:"required"` // "2006-01-02"
	EndDate    string `json:"end_date"    binding:"omitempty"`
	Notes      string `json:"notes"       binding:"omitempty,max=1000"`
}

// BulkAssignRequest assigns many employees to one shift over one range.
type BulkAssignRequest struct {
	EmployeeIDs []string `json:"employee_ids" binding:"required,min=1,dive,uuid"`
	ShiftID     string   `json:"shift_id"     binding:"required,uuid"`
	StartDate   string   `json:"start_date"   binding:"required"`
	EndDate     string   `json:"end_date"     binding:"omitempty"`
	Notes       string   `json:"notes"        binding:"omitempty,max=1000"`
}

// BulkAssignResponse reports per-candidate outcomes: valid candidates are
// created even when others are skipped.
type BulkAssignResponse struct {
	Created []AssignmentResponse `json:"created"`
	Skipped []SkippedAssignment  `json:"skipped"`
}

// SkippedAssignment explains why one bulk candidate was not created.
type SkippedAssignment struct {
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

// AssignmentResponse is the full assignment representation.
type AssignmentResponse struct {
	ID            string         `json:"id"`
	Employee      *EmployeeBrief `json:"employee,omitempty"`
	Shift         *ShiftBrief    `json:"shift,omitempty"`
	EmployeeID    string         `json:"employee_id"`
	ShiftID       string         `json:"shift_id"`
	StartDate     string         `json:"start_date"`
	EndDate       *string        `json:"end_date,omitempty"`
	IsActive      bool           `json:"is_active"`
	Notes         string         `json:"notes,omitempty"`
	AutoGenerated bool           `json:"auto_generated"`
	RotationWeek  *int           `json:"rotation_week,omitempty"`
	CreatedAt     string         `json:"created_at"`
}

// Conflict is detection output. Conflicts are data, not errors: callers
// decide whether to block or warn.
type Conflict struct {
	EmployeeID              string `json:"employee_id"`
	ConflictDate            string `json:"conflict_date"`
	ConflictingAssignmentID string `json:"conflicting_assignment_id"`
	Reason                  string `json:"reason"`
}

// DetectConflictsRequest checks a candidate range for one employee.
type DetectConflictsRequest struct {
	EmployeeID string `form:"employee_id" binding:"required,uuid"`
	ShiftID    string `form:"shift_id"    binding:"omitempty,uuid"`
	StartDate  string `form:"start_date"  binding:"required"`
	EndDate    string `form:"end_date"    binding:"omitempty"`
}

// ConflictReportRequest scans a whole branch for overlapping assignments.
type ConflictReportRequest struct {
	BranchID  string `form:"branch_id"  binding:"required,uuid"`
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date"   binding:"required"`
}
