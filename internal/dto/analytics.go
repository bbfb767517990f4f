package dto

// AnalyticsRequest scopes the analytics scan to a date range.
type AnalyticsRequest struct {
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date"   binding:"required"`
}

// ShiftAnalyticsResponse is a flat summary computed by scanning workflow
// records created in the range.
type ShiftAnalyticsResponse struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	TotalAssignments     int `json:"total_assignments"`
	AutoGeneratedCount   int `json:"auto_generated_count"`
	ActiveAssignments    int `json:"active_assignments"`

	SwapRequests         int            `json:"swap_requests"`
	SwapsByStatus        map[string]int `json:"swaps_by_status"`
	SwapApprovalRate     float64        `json:"swap_approval_rate"`

	CoverageRequests     int            `json:"coverage_requests"`
	CoverageByStatus     map[string]int `json:"coverage_by_status"`
	CoverageApprovalRate float64        `json:"coverage_approval_rate"`
	EmergencyRequests    int            `json:"emergency_requests"`
}
