package dto

// CreateShiftRequest creates a shift definition.
type CreateShiftRequest struct {
	Name           string `json:"name"            binding:"required,max=100"`
	ShiftType      string `json:"shift_type"      binding:"required,oneof=fixed flexible rotating"`
	StartTime      string `json:"start_time"      binding:"required"`
	EndTime        string `json:"end_time"        binding:"required"`
	IsOvernight    bool   `json:"is_overnight"`
	WorkingDays    []int  `json:"working_days"    binding:"omitempty,dive,min=0,max=6"`
	OrganizationID string `json:"organization_id" binding:"required,uuid"`
	BranchID       string `json:"branch_id"       binding:"required,uuid"`
}

// UpdateShiftRequest patches a shift definition. Nil fields are untouched.
type UpdateShiftRequest struct {
	Name        *string `json:"name"         binding:"omitempty,max=100"`
	ShiftType   *string `json:"shift_type"   binding:"omitempty,oneof=fixed flexible rotating"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	IsOvernight *bool   `json:"is_overnight"`
	WorkingDays []int   `json:"working_days" binding:"omitempty,dive,min=0,max=6"`
	IsActive    *bool   `json:"is_active"`
}

// ShiftResponse is the full shift representation.
type ShiftResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ShiftType      string `json:"shift_type"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	IsOvernight    bool   `json:"is_overnight"`
	WorkingDays    []int  `json:"working_days"`
	OrganizationID string `json:"organization_id"`
	BranchID       string `json:"branch_id"`
	IsActive       bool   `json:"is_active"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}
