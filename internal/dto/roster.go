package dto

// GenerateRosterRequest produces a rotating schedule: each employee cycles
// through the shift list week by week, staggered so no two employees hold
// the same position in the cycle.
type GenerateRosterRequest struct {
	BranchID    string   `json:"branch_id"    binding:"required,uuid"`
	EmployeeIDs []string `json:"employee_ids" binding:"required,min=1,dive,uuid"`
	ShiftIDs    []string `json:"shift_ids"    binding:"required,min=1,dive,uuid"`
	StartDate   string   `json:"start_date"   binding:"required"` // "2006-01-02"
	Weeks       int      `json:"weeks"        binding:"required,min=1"`
}

// GenerateRosterResponse reports the generated batch plus the candidates
// skipped for conflicts.
type GenerateRosterResponse struct {
	Created      []AssignmentResponse `json:"created"`
	TotalSlots   int                  `json:"total_slots"`
	SkippedSlots int                  `json:"skipped_slots"`
	Warnings     []string             `json:"warnings,omitempty"`
}
